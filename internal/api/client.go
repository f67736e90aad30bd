// Package api is the identity-aware gateway to the storefront backend.
// It merges caller-supplied headers with headers derived from session
// state, issues the call, and normalizes response decoding. It never
// retries, caches, or interprets domain errors beyond carrying the raw
// body; that is the caller's job via Error.Detail.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mercato-dev/mercato/internal/session"
)

// Client issues requests against baseURL + path.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport. Timeouts, if any,
// belong there; the gateway enforces none of its own.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a gateway client bound to a session.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		session: sess,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request describes one outgoing call. Body may be nil (no body), an
// io.Reader (sent as-is, e.g. a pre-encoded multipart form whose content
// type the caller has already set), or any other value, which is
// JSON-marshaled.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   any
}

// Do executes the request and decodes a 2xx JSON response into out.
// A 204 response never touches out. Non-2xx responses come back as
// *Error carrying the raw body text. Caller-supplied headers are never
// overwritten by derived ones.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var body io.Reader
	hasBody := false
	switch b := req.Body.(type) {
	case nil:
	case io.Reader:
		body = b
		hasBody = true
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
		hasBody = true
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	// Derived headers, each only when the caller has not set it already.
	if hasBody && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" && httpReq.Header.Get("Authorization") == "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if email := c.session.OrderEmail(); email != "" && httpReq.Header.Get("X-User-Email") == "" {
		httpReq.Header.Set("X-User-Email", email)
	}
	if httpReq.Header.Get("X-Request-ID") == "" {
		httpReq.Header.Set("X-Request-ID", uuid.NewString())
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := ""
		if raw, err := io.ReadAll(resp.Body); err == nil {
			text = string(raw)
		}
		return &Error{Status: resp.StatusCode, Body: text}
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.Path, err)
	}
	return nil
}
