// Package client is a Go client for the journal API.
//
// [Client] speaks the versioned response envelope, keeps the access and
// refresh tokens of the signed-in user, and refreshes an expired access
// token once before giving up. Element methods satisfy
// [github.com/journalapp/journal-server/pkg/editor.Backend] and
// [github.com/journalapp/journal-server/pkg/editor.BatchSaver], so a Client
// can back an editing session directly:
//
//	c := client.New("http://localhost:8080")
//	if _, err := c.Login(ctx, "ana@example.com", "correct-horse-battery"); err != nil {
//		return err
//	}
//	session := editor.NewSession(c, editor.Options{})
//	err := session.Open(ctx, pageID)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/journalapp/journal-server/pkg/editor"
	"github.com/journalapp/journal-server/pkg/retry"
)

// APIPrefix is the path prefix of every versioned endpoint.
const APIPrefix = "/api/v1"

// Client talks to a journal server. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	retrier    *retry.Retrier
	policy     retry.Policy

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	refreshing   sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for retries and token refreshes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRetryPolicy sets the backoff used for batch saves and uploads.
// A nil Retryable is replaced with [Retryable].
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithTokens starts the client with an existing token pair.
func WithTokens(access, refresh string) Option {
	return func(c *Client) {
		c.accessToken = access
		c.refreshToken = refresh
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.policy.Retryable == nil {
		c.policy.Retryable = Retryable
	}
	c.retrier = retry.New(c.policy, c.logger)
	return c
}

// Tokens returns the current access and refresh tokens.
func (c *Client) Tokens() (access, refresh string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) setTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Version int             `json:"v"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// request describes one API call. body is JSON-encoded unless raw is set.
type request struct {
	method      string
	path        string
	body        any
	raw         []byte
	contentType string
	anonymous   bool
}

// do sends req, refreshing the access token once on TOKEN_EXPIRED, and
// decodes the envelope data into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	err := c.send(ctx, req, out)
	if !isTokenExpired(err) || req.anonymous {
		return err
	}

	stale, _ := c.Tokens()
	if rerr := c.refreshOnce(ctx, stale); rerr != nil {
		c.logger.Debug("token refresh failed", "error", rerr)
		return err
	}
	return c.send(ctx, req, out)
}

func (c *Client) send(ctx context.Context, req request, out any) error {
	var body io.Reader
	contentType := req.contentType
	switch {
	case req.raw != nil:
		body = bytes.NewReader(req.raw)
	case req.body != nil:
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if access, _ := c.Tokens(); access != "" && !req.anonymous {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s: %w: %w", req.method, req.path, editor.ErrNetwork, err)
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w: %w", editor.ErrNetwork, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Code: "HTTP_" + http.StatusText(resp.StatusCode), Message: strings.TrimSpace(string(data))}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func isTokenExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeTokenExpired
}
