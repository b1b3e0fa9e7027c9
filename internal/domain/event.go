package domain

// EventType identifies the kind of inbound interaction delivered by the chat
// platform's webhook.
type EventType string

const (
	EventMessage     EventType = "message"
	EventMenuSelect  EventType = "menu_select"
	EventButton      EventType = "button"
	EventModalSubmit EventType = "modal_submit"
	EventCommand     EventType = "command"
)

// User is the invoking principal attached to every interaction.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
	Bot   bool     `json:"bot,omitempty"`
}

// Command carries a slash-command invocation and its named options.
type Command struct {
	Name    string            `json:"name"`
	Options map[string]string `json:"options,omitempty"`
}

// Event is the platform-neutral interaction envelope posted to the webhook
// endpoint. CustomID, Values, Fields and Command are populated depending on
// Type; the identifier string is the only continuity between round-trips.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	ChannelID string            `json:"channel_id"`
	MessageID string            `json:"message_id,omitempty"`
	User      User              `json:"user"`
	CustomID  string            `json:"custom_id,omitempty"`
	Values    []string          `json:"values,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Command   *Command          `json:"command,omitempty"`
}
