package sheets

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
)

const (
	defaultSendTimeout    = 10 * time.Second
	responseBodyReadLimit = 1024
	headerAuthorization   = "Authorization"
	headerContentType     = "Content-Type"
	contentTypeJSON       = "application/json"
)

var errWebhookURLRequired = errors.New("sheet webhook url is required")

// Client posts booking snapshots to the spreadsheet webhook. Apps Script web
// apps answer successful posts with a 302 to a result page, so the redirect
// status counts as delivered.
type Client struct {
	httpClient *http.Client
	webhookURL string
	token      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithToken attaches a bearer token to outgoing requests.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout bounds each send attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the spreadsheet webhook client.
func NewClient(webhookURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(webhookURL)
	if trimmed == "" {
		return nil, errWebhookURLRequired
	}

	client := &Client{
		webhookURL: trimmed,
		httpClient: &http.Client{
			Timeout: defaultSendTimeout,
			// Delivery is judged on the first response; redirects are not followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Send posts one payload and reports delivery success or failure.
func (c *Client) Send(ctx context.Context, payload json.RawMessage) error {
	if len(payload) == 0 {
		return errors.New("payload is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(headerContentType, contentTypeJSON)
	if c.token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send to sheet webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
		_ = resp.Body.Close()
	}()

	if delivered(resp.StatusCode) {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	return fmt.Errorf("sheet webhook responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func delivered(status int) bool {
	if status >= 200 && status < 300 {
		return true
	}
	return status == http.StatusFound
}
