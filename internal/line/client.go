package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultAPIBase  = "https://api.line.me"
	defaultDataBase = "https://api-data.line.me"
	defaultTimeout  = 10 * time.Second
)

// Client sends messages and fetches media through the LINE Messaging API.
type Client struct {
	accessToken string
	apiBase     string
	dataBase    string
	httpClient  *http.Client
}

// NewClient creates a LINE API client with the channel access token.
func NewClient(accessToken string) *Client {
	return &Client{
		accessToken: accessToken,
		apiBase:     defaultAPIBase,
		dataBase:    defaultDataBase,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
}

// SetAPIBase overrides the message API base URL (useful for testing).
func (c *Client) SetAPIBase(base string) {
	c.apiBase = base
}

// SetDataBase overrides the content API base URL (useful for testing).
func (c *Client) SetDataBase(base string) {
	c.dataBase = base
}

// ReplyText replies to an event with plain text. Reply tokens are
// single-use and expire quickly, so replies happen inline with webhook
// handling.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	return c.Reply(ctx, replyToken, NewTextMessage(text))
}

// Reply replies to an event with up to five messages.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...Message) error {
	if replyToken == "" {
		return fmt.Errorf("line: reply token is required")
	}
	return c.post(ctx, "/v2/bot/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
}

// PushText sends a text message outside the reply window.
func (c *Client) PushText(ctx context.Context, userID, text string) error {
	return c.Push(ctx, userID, NewTextMessage(text))
}

// Push sends up to five messages to a user outside the reply window.
// Used for automation callbacks that land after the webhook returned.
func (c *Client) Push(ctx context.Context, userID string, messages ...Message) error {
	if userID == "" {
		return fmt.Errorf("line: push recipient is required")
	}
	return c.post(ctx, "/v2/bot/message/push", pushRequest{
		To:       userID,
		Messages: messages,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("line: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("line: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	var apiErr apiError
	if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
		return fmt.Errorf("line: API error %d: %s", resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("line: unexpected status %d: %s", resp.StatusCode, string(respBody))
}

// GetMessageContent streams the binary content of a media message.
// The caller owns the returned reader and must close it.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) (io.ReadCloser, string, error) {
	if messageID == "" {
		return nil, "", fmt.Errorf("line: message id is required")
	}

	url := fmt.Sprintf("%s/v2/bot/message/%s/content", c.dataBase, messageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("line: create content request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("line: fetch content: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, "", fmt.Errorf("line: content fetch status %d: %s", resp.StatusCode, string(respBody))
	}

	return resp.Body, resp.Header.Get("Content-Type"), nil
}
