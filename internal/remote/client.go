package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"orion-console/internal/conversation"
)

const defaultTimeout = 10 * time.Second

// wireMessage is one history entry on the wire.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// askRequest is the assistant service request shape.
type askRequest struct {
	Message string        `json:"message"`
	History []wireMessage `json:"history"`
}

// askResponse is the assistant service response shape. Speak is a pointer so
// an absent field (or anything but literal false) means "speak".
type askResponse struct {
	Reply   string   `json:"reply"`
	Actions []string `json:"actions"`
	Intent  string   `json:"intent"`
	Speak   *bool    `json:"speak"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("remote: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client talks to the remote assistant service. It implements
// conversation.Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a Client for the assistant endpoint at baseURL. The
// default transport times out after 10s; a hung service resolves through the
// ordinary failure path instead of pinning the session in thinking.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("remote: base URL must not be empty")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) askURL() string {
	if strings.HasSuffix(c.baseURL, "/api/assistant") {
		return c.baseURL
	}
	return c.baseURL + "/api/assistant"
}

// Ask sends one command plus its context window and maps the response onto
// the orchestrator's Reply. Transport errors and non-2xx statuses are
// returned as-is; the caller treats both uniformly as failure.
func (c *Client) Ask(ctx context.Context, message string, history []conversation.Message) (conversation.Reply, error) {
	wire := make([]wireMessage, 0, len(history))
	for _, m := range history {
		wire = append(wire, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(askRequest{Message: message, History: wire})
	if err != nil {
		return conversation.Reply{}, fmt.Errorf("remote: marshal request: %w", err)
	}

	url := c.askURL()
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return conversation.Reply{}, fmt.Errorf("remote: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return conversation.Reply{}, fmt.Errorf("remote: request failed: %w", err)
	}

	var payload askResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return conversation.Reply{}, fmt.Errorf("remote: decode response: %w", decErr)
	}

	speak := payload.Speak == nil || *payload.Speak
	return conversation.Reply{
		Text:    payload.Reply,
		Notices: payload.Actions,
		Intent:  payload.Intent,
		Speak:   speak,
	}, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
