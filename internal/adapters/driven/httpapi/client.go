// Package httpapi implements the backend ports over the marketplace HTTP
// API. One client carries the session cookie for all of them; the cookie
// is HttpOnly and never inspected, only replayed by the jar.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/malcha/dagu-client/internal/core/domain"
)

// Config holds client settings.
type Config struct {
	// BaseURL is the backend root, e.g. "https://dagu.example.com".
	BaseURL string

	// Timeout bounds each request end to end.
	Timeout time.Duration

	// Viewer returns the authenticated user's ID for ownership marking,
	// zero for anonymous. May be nil.
	Viewer func(ctx context.Context) int64

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the standard request timeout.
func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second}
}

// Client talks to the marketplace backend. It implements SearchAPI,
// MutationAPI and AuthProbe.
type Client struct {
	base   *url.URL
	http   *http.Client
	viewer func(ctx context.Context) int64
	logger *slog.Logger
}

// New creates a client with a fresh cookie jar.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("httpapi: base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("httpapi: parse base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("httpapi: cookie jar: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base: base,
		http: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
		},
		viewer: cfg.Viewer,
		logger: logger,
	}, nil
}

// SetViewer wires the ownership lookup after construction; the auth
// service needs the client first.
func (c *Client) SetViewer(fn func(ctx context.Context) int64) {
	c.viewer = fn
}

func (c *Client) viewerID(ctx context.Context) int64 {
	if c.viewer == nil {
		return 0
	}
	return c.viewer(ctx)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do runs one JSON request. Transport failures map to ErrUnreachable,
// HTTP error statuses to the matching sentinel. out may be nil when the
// response body is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(method, path, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// errorEnvelope covers both backend error shapes:
// {"error": {"code": "...", "message": "..."}} and {"error": "message"}.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) errorFromResponse(method, path string, resp *http.Response) error {
	message := resp.Status

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	if err == nil && len(raw) > 0 {
		var envelope errorEnvelope
		if json.Unmarshal(raw, &envelope) == nil && len(envelope.Error) > 0 {
			var detail errorDetail
			var plain string
			switch {
			case json.Unmarshal(envelope.Error, &detail) == nil && detail.Message != "":
				message = detail.Message
			case json.Unmarshal(envelope.Error, &plain) == nil && plain != "":
				message = plain
			}
		}
	}

	return fmt.Errorf("%w: %s %s: %s", sentinelForStatus(resp.StatusCode), method, path, message)
}

func sentinelForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	case http.StatusUnauthorized:
		return domain.ErrUnauthenticated
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrDuplicate
	default:
		// Unlisted 4xx codes are still request faults, not backend ones.
		if status < 500 {
			return domain.ErrInvalidInput
		}
		return domain.ErrServerFault
	}
}
