package domain

// Outbound shapes are the provider-agnostic message components shared by the
// usecase layer and the chat API integration.

// SelectOption is a single entry in a select menu.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SelectMenu is a dropdown component keyed by an interaction custom ID.
type SelectMenu struct {
	CustomID    string         `json:"custom_id"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []SelectOption `json:"options"`
}

// Button is a clickable component keyed by an interaction custom ID.
type Button struct {
	CustomID string `json:"custom_id"`
	Label    string `json:"label"`
	Style    string `json:"style,omitempty"`
}

// EmbedField is a labeled value inside an Embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a structured notice block.
type Embed struct {
	Title  string       `json:"title"`
	Color  string       `json:"color,omitempty"`
	Fields []EmbedField `json:"fields,omitempty"`
}

// Message is an outbound chat message with optional components.
type Message struct {
	Content   string      `json:"content,omitempty"`
	Embed     *Embed      `json:"embed,omitempty"`
	Menu      *SelectMenu `json:"menu,omitempty"`
	Buttons   []Button    `json:"buttons,omitempty"`
	Ephemeral bool        `json:"ephemeral,omitempty"`
}

// TextInput is a single field inside a modal prompt.
type TextInput struct {
	CustomID    string `json:"custom_id"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Paragraph   bool   `json:"paragraph,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Modal is a structured input prompt opened in response to an interaction.
type Modal struct {
	CustomID string      `json:"custom_id"`
	Title    string      `json:"title"`
	Inputs   []TextInput `json:"inputs"`
}
