// Package rest implements the template and employee stores against the EMS
// HTTP backend (`/forms/` and `/employees/`).
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-emsforms/pkg/store"
)

const defaultTimeout = 15 * time.Second

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to the backend on behalf of a session.
type Client struct {
	base    *url.URL
	session store.Session
	http    *http.Client
	logger  *zap.Logger
}

// New constructs a Client for baseURL. The session is consulted on every
// call; calls fail with store.ErrUnauthenticated while it has no credential.
func New(baseURL string, session store.Session, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("rest: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(trimmed, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("rest: parse base URL: %w", err)
	}
	if session == nil {
		session = store.StaticSession("")
	}
	c := &Client{
		base:    parsed,
		session: session,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Templates returns the TemplateStore backed by c.
func (c *Client) Templates() store.TemplateStore { return templateStore{c} }

// Employees returns the EmployeeStore backed by c.
func (c *Client) Employees() store.EmployeeStore { return employeeStore{c} }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, ok := c.session.Credential()
	if !ok {
		return &store.CollaboratorError{Message: "Authentication required", Cause: store.ErrUnauthenticated}
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: strings.TrimLeft(path, "/")})
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("rest: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return store.Newf(err, "Unable to reach the server")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return store.Newf(err, "Unable to read the server response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Debug("backend rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return decodeError(resp.StatusCode, payload)
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return store.Newf(err, "Unexpected server response")
	}
	return nil
}
