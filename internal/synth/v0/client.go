package v0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Rrens/vibe-app-store/internal/domain"
)

const DefaultBaseURL = "https://api.v0.dev/v1"

// Client wraps HTTP communication with the v0 Platform API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a new v0 client
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// IsConfigured checks if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

type createChatRequest struct {
	Message string `json:"message"`
}

type messagesResponse struct {
	Data json.RawMessage `json:"data"`
}

// CreateChat opens a generation session seeded with message
func (c *Client) CreateChat(ctx context.Context, message string) (*domain.Chat, error) {
	var chat domain.Chat
	if err := c.do(ctx, http.MethodPost, "/chats", createChatRequest{Message: message}, &chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	if chat.ID == "" {
		return nil, fmt.Errorf("failed to create chat: response has no id")
	}
	return &chat, nil
}

// GetChat fetches a chat with its latest version
func (c *Client) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	var chat domain.Chat
	if err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID), nil, &chat); err != nil {
		return nil, fmt.Errorf("failed to get chat %s: %w", chatID, err)
	}
	return &chat, nil
}

// LookupChat fetches a chat as the raw upstream document
func (c *Client) LookupChat(ctx context.Context, chatID string) (json.RawMessage, error) {
	var chat json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID), nil, &chat); err != nil {
		return nil, fmt.Errorf("failed to get chat %s: %w", chatID, err)
	}
	return chat, nil
}

// FindMessages lists the messages of a chat untouched
func (c *Client) FindMessages(ctx context.Context, chatID string) (json.RawMessage, error) {
	var resp messagesResponse
	if err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID)+"/messages", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list messages of chat %s: %w", chatID, err)
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return json.RawMessage("[]"), nil
	}
	return resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("v0 error (HTTP %d): %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
