// Package notify delivers booking notifications to members through the
// LINE Messaging API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultLineAPIBaseURL is the public Messaging API endpoint.
const DefaultLineAPIBaseURL = "https://api.line.me"

// maxTextLength is the Messaging API limit for one text message.
const maxTextLength = 5000

// StatusError is a non-2xx response from the Messaging API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("LINE push rejected with status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether resending the same request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Pusher sends a text message to one user.
type Pusher interface {
	PushText(ctx context.Context, to, text string) error
}

// LineClient pushes messages with a channel access token.
type LineClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewLineClient creates a LineClient. An empty baseURL uses DefaultLineAPIBaseURL.
func NewLineClient(baseURL, channelAccessToken string) *LineClient {
	if baseURL == "" {
		baseURL = DefaultLineAPIBaseURL
	}
	return &LineClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      channelAccessToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// PushText sends text to the LINE user to.
func (c *LineClient) PushText(ctx context.Context, to, text string) error {
	if to == "" {
		return fmt.Errorf("push recipient is required")
	}
	if r := []rune(text); len(r) > maxTextLength {
		text = string(r[:maxTextLength])
	}

	body, err := json.Marshal(pushRequest{
		To:       to,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/bot/message/push", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to push LINE message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}
	return nil
}
