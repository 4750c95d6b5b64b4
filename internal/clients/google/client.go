// Package google provides a client for the Google Workspace APIs used
// by the dashboard: Calendar, Tasks, Drive, Gmail and Userinfo. All
// calls authenticate with the bearer token supplied by the TokenSource.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the GoogleClient interface
type Client struct {
	calendarBase string
	tasksBase    string
	driveBase    string
	gmailBase    string
	userinfoBase string
	revokeURL    string

	tokens     interfaces.TokenSource
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL points every service at the given host. Test hook.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.calendarBase = baseURL + "/calendar/v3"
		c.tasksBase = baseURL + "/tasks/v1"
		c.driveBase = baseURL + "/drive/v3"
		c.gmailBase = baseURL + "/gmail/v1"
		c.userinfoBase = baseURL
		c.revokeURL = baseURL + "/revoke"
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Google Workspace client
func NewClient(tokens interfaces.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		calendarBase: "https://www.googleapis.com/calendar/v3",
		tasksBase:    "https://tasks.googleapis.com/tasks/v1",
		driveBase:    "https://www.googleapis.com/drive/v3",
		gmailBase:    "https://gmail.googleapis.com/gmail/v1",
		userinfoBase: "https://www.googleapis.com",
		revokeURL:    "https://oauth2.googleapis.com/revoke",
		tokens:       tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a Google API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("google API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsNotFound reports whether err is a Google API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// do performs an authenticated request, decoding any JSON result into
// result when non-nil. body is JSON-encoded when non-nil.
func (c *Client) do(ctx context.Context, method, rawURL string, body interface{}, result interface{}) error {
	raw, err := c.doRaw(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	if result == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doRaw performs an authenticated request and returns the raw body.
func (c *Client) doRaw(ctx context.Context, method, rawURL string, body interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("url", rawURL).Msg("Google API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(data),
			Endpoint:   req.URL.Path,
		}
	}

	return data, nil
}

// RevokeToken invalidates the current bearer token. Best-effort: the
// caller clears local state regardless of the outcome.
func (c *Client) RevokeToken(ctx context.Context) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	form := url.Values{}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.revokeURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   "/revoke",
		}
	}
	return nil
}
