// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/chatfmt/internal/model"
)

// Configuration constants for the chat backend.
const (
	// DefaultBaseURL is where the chat backend listens by default.
	DefaultBaseURL = "http://localhost:5000"

	// DefaultTimeout bounds a single request, image generation included.
	DefaultTimeout = 120 * time.Second

	// DefaultMaxRetries is the number of attempts for transient failures of
	// GET and DELETE. POST /chat is retried only when the backend cannot
	// have seen it.
	DefaultMaxRetries = 3

	// DefaultRequestsPerSec is the client-side request rate ceiling.
	DefaultRequestsPerSec = 2.0

	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 10 * time.Second

	// MaxResponseSize caps a response body. Inline data: image URLs make
	// replies large, so this is generous.
	MaxResponseSize = 32 * 1024 * 1024
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// wireMessage is one entry of GET /chat/history and the body of a POST /chat
// reply. The backend labels its own messages "ai".
type wireMessage struct {
	Role  string `json:"role"`
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
	Type  string `json:"type,omitempty"`
}

type sendRequest struct {
	Message string `json:"message"`
}

// toMessage converts a wire entry. An entry is an image message only when it
// says so and actually carries an image; otherwise it is text.
func (w wireMessage) toMessage(defaultRole model.Role) model.Message {
	role := defaultRole
	if w.Role != "" {
		role = model.ParseRole(w.Role)
	}

	var msg model.Message
	if strings.EqualFold(w.Type, string(model.KindImage)) && w.Image != "" {
		msg = model.NewImageMessage(w.Image, w.Text)
	} else {
		msg = model.NewMessage(role, w.Text)
	}
	msg.Role = role
	return msg
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat backend over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryBase  time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a client for the backend at baseURL. An empty baseURL
// selects DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxRetries: DefaultMaxRetries,
		retryBase:  retryBaseDelay,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSec), 1),
		logger:     slog.Default(),
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithMaxRetries sets the number of attempts; values below one mean one.
func (c *Client) WithMaxRetries(n int) *Client {
	if n < 1 {
		n = 1
	}
	c.maxRetries = n
	return c
}

// WithRateLimit caps outgoing requests per second. Zero or less disables
// the limiter.
func (c *Client) WithRateLimit(perSec float64) *Client {
	if perSec <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
		return c
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	return c
}

// WithLogger sets the structured logger for request logging.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// History fetches the persisted conversation.
func (c *Client) History(ctx context.Context) ([]model.Message, error) {
	body, err := c.do(ctx, http.MethodGet, "/chat/history", nil)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var wire []wireMessage
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("load history: %w: %v", ErrBadResponse, err)
	}

	msgs := make([]model.Message, 0, len(wire))
	for _, w := range wire {
		msgs = append(msgs, w.toMessage(model.RoleAssistant))
	}
	return msgs, nil
}

// Send posts one user message and returns the assistant's reply.
func (c *Client) Send(ctx context.Context, text string) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, ErrEmptyMessage
	}

	payload, err := json.Marshal(sendRequest{Message: text})
	if err != nil {
		return model.Message{}, fmt.Errorf("send: failed to marshal request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/chat", payload)
	if err != nil {
		return model.Message{}, fmt.Errorf("send: %w", err)
	}

	var reply wireMessage
	if err := json.Unmarshal(body, &reply); err != nil {
		return model.Message{}, fmt.Errorf("send: %w: %v", ErrBadResponse, err)
	}
	reply.Role = ""
	return reply.toMessage(model.RoleAssistant), nil
}

// Clear deletes the persisted conversation on the backend.
func (c *Client) Clear(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodDelete, "/chat/history", nil); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one logical request with rate limiting and retries, and
// returns the response body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}

		body, err := c.attempt(ctx, method, path, payload)
		if err == nil {
			return body, nil
		}
		if !isRetryable(ctx, method, err) {
			return nil, err
		}
		lastErr = err
		c.logger.Warn("backend request failed, retrying",
			"method", method, "path", path, "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// attempt performs a single HTTP exchange.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request", "method", method, "path", path,
			"duration", time.Since(start), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w: response exceeded %d bytes", ErrBadResponse, MaxResponseSize)
	}
	return body, nil
}

// isRetryable reports whether err is transient: transport failures, rate
// limiting and 5xx replies. Cancellation is never retried.
//
// POST /chat stores the message and may start an image generation, so a
// non-idempotent request is retried only when it never reached the backend:
// a failed dial or a 429.
func isRetryable(ctx context.Context, method string, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	isAPIErr := errors.As(err, &apiErr)

	if !isIdempotent(method) {
		if isAPIErr {
			return apiErr.Status == http.StatusTooManyRequests
		}
		return isDialError(err)
	}

	if errors.Is(err, ErrUnavailable) {
		return true
	}
	if isAPIErr {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	return false
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodPut:
		return true
	}
	return false
}

// isDialError reports whether the connection was never established.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// backoff returns the delay before retry attempt n (n >= 1).
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.retryBase * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
