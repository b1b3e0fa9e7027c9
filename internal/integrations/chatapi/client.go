// Package chatapi is a focused REST client for the chat platform's outbound
// surface: interaction replies, in-place updates, channel sends, direct
// messages and modal prompts.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"faq-agent/internal/domain"
)

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("chatapi: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Getter fetches a named parameter; satisfied by paramstore.Client.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Client talks to the chat platform's REST API. The API token is fetched from
// the parameter store on first use and reused for the process lifetime.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	getter      Getter
	paramPrefix string

	tokenOnce sync.Once
	token     string
	tokenErr  error
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for the platform API at baseURL, resolving its
// token from the parameter store under paramPrefix.
func NewClient(baseURL string, g Getter, paramPrefix string, opts ...Option) (*Client, error) {
	if g == nil {
		return nil, errors.New("chatapi: paramstore getter must not be nil")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("chatapi: base URL must not be empty")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("chatapi: parameter prefix must not be empty")
	}
	c := &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		getter:      g,
		paramPrefix: paramPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Reply sends a new reply to an interaction.
func (c *Client) Reply(ctx context.Context, interactionID string, msg domain.Message) error {
	return c.postInteraction(ctx, interactionID, "reply", msg)
}

// FollowUp sends an additional message after an interaction was replied to.
func (c *Client) FollowUp(ctx context.Context, interactionID string, msg domain.Message) error {
	return c.postInteraction(ctx, interactionID, "followup", msg)
}

// Update edits the message the interaction originated from in place.
func (c *Client) Update(ctx context.Context, interactionID string, msg domain.Message) error {
	return c.postInteraction(ctx, interactionID, "update", msg)
}

// OpenModal shows a structured input prompt to the interacting user.
func (c *Client) OpenModal(ctx context.Context, interactionID string, modal domain.Modal) error {
	return c.postInteraction(ctx, interactionID, "modal", modal)
}

// SendChannel posts a message to a channel.
func (c *Client) SendChannel(ctx context.Context, channelID string, msg domain.Message) error {
	return c.postJSON(ctx, c.baseURL+"/channels/"+url.PathEscape(channelID)+"/messages", msg)
}

// SendDirect sends a private message to a user. Callers treat failures here
// as best-effort; users can disable direct messages.
func (c *Client) SendDirect(ctx context.Context, userID, content string) error {
	return c.postJSON(ctx, c.baseURL+"/users/"+url.PathEscape(userID)+"/messages",
		domain.Message{Content: content})
}

func (c *Client) postInteraction(ctx context.Context, interactionID, action string, payload any) error {
	if strings.TrimSpace(interactionID) == "" {
		return errors.New("chatapi: interaction id must not be empty")
	}
	return c.postJSON(ctx, c.baseURL+"/interactions/"+url.PathEscape(interactionID)+"/"+action, payload)
}

// resolveToken fetches the API token on the first call and returns the cached
// result on every subsequent call within the same process lifetime.
func (c *Client) resolveToken(ctx context.Context) (string, error) {
	c.tokenOnce.Do(func() {
		token, err := c.getter.GetParameter(ctx, c.paramPrefix+"/api_token")
		if err != nil {
			c.tokenErr = fmt.Errorf("chatapi: resolve token: %w", err)
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.tokenErr = errors.New("chatapi: resolved token is empty")
			return
		}
		c.token = token
	})
	return c.token, c.tokenErr
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) error {
	token, err := c.resolveToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("chatapi: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chatapi: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.resolvedHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("chatapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			StatusCode: resp.StatusCode,
			URL:        endpoint,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	return nil
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// 10s timeout if none was set.
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
