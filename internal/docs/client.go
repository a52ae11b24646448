// Package docs talks to the downstream automation service that fills
// in and submits the permit paperwork. Submission is best-effort: a
// failure here never blocks the user's completion reply, and the
// service reports its real outcome later through a callback.
package docs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buskerbot/permit-assistant/internal/dates"
)

const defaultTimeout = 15 * time.Second

// SubmitRequest is the payload handed to the automation service.
type SubmitRequest struct {
	RequestID   string               `json:"request_id"`
	UserID      string               `json:"user_id"`
	TargetMonth string               `json:"target_month"`
	Dates       []dates.SelectedDate `json:"dates"`

	UseDefaultVideo bool   `json:"use_default_video"`
	VideoBucket     string `json:"video_bucket,omitempty"`
	VideoKey        string `json:"video_key,omitempty"`

	CallbackURL string `json:"callback_url,omitempty"`
}

// Client submits paperwork requests over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an automation client. An empty baseURL yields a
// disabled client whose Submit is a no-op, for environments without
// the automation service.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a service endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Submit sends one paperwork request. The bounded client timeout keeps
// a stuck automation service from pinning goroutines.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) error {
	if !c.Enabled() {
		return nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("docs: marshal submit request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("docs: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("docs: submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("docs: submit status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
