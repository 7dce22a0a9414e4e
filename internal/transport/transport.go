// Package transport issues authenticated JSON requests against the
// hiring API and normalizes every failure into an apperr.Error.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// Session holds the bearer credential for one client. It is injected at
// Client construction rather than held in package state, so independent
// clients (and test runs) cannot observe each other's token.
type Session struct {
	mu    sync.RWMutex
	token string
}

// NewSession returns an empty, unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// SetToken stores the bearer token used for subsequent requests.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear drops the stored token.
func (s *Session) Clear() {
	s.SetToken("")
}

// Token returns the current bearer token, or empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Client sends JSON requests to a single API base URL.
type Client struct {
	base    *url.URL
	http    *http.Client
	session *Session
}

// New creates a Client for the given base URL. A zero timeout leaves the
// underlying http.Client without one.
func New(baseURL string, timeout time.Duration, session *Session) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("transport: parse base url: %w", err)
	}
	if session == nil {
		session = NewSession()
	}
	return &Client{
		base:    u,
		http:    &http.Client{Timeout: timeout},
		session: session,
	}, nil
}

// Session returns the session this client attaches credentials from.
func (c *Client) Session() *Session {
	return c.session
}

// Send issues one request and returns the parsed response body. A body
// that is empty or not valid JSON yields nil, never an error. Any
// non-2xx status yields an *apperr.Error carrying the status and raw
// body; a failure before a response arrives yields a network-kind error.
func (c *Client) Send(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("transport: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Network(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Network(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.FromStatus(resp.StatusCode, raw)
	}

	// Defensive parse: a non-JSON success body is treated as empty.
	if len(raw) == 0 || !json.Valid(raw) {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// Get is shorthand for Send with GET and no body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Send(ctx, http.MethodGet, path, query, nil)
}

// DecodePage resolves the two collection response shapes the API may
// produce, a bare array or an already-paginated object, into the
// canonical Page. The shape is decided here once so callers never
// re-check it.
func DecodePage[T any](raw json.RawMessage, page, pageSize int) (models.Page[T], error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return models.Page[T]{}, fmt.Errorf("transport: decode collection: %w", err)
		}
		return models.NewPage(items, page, pageSize), nil
	}
	var p models.Page[T]
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Page[T]{}, fmt.Errorf("transport: decode page: %w", err)
	}
	return p, nil
}
