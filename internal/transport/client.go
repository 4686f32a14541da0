// Package transport provides the authenticated HTTP client shared by all
// service clients. It injects the bearer credential into every outgoing
// request and offers common body construction and response decoding.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"docsage/internal/session"
)

// placeholderToken is sent when no credential is stored. The backends expect
// the Authorization header to always be present; an unauthenticated call
// carries this literal placeholder and is rejected server-side.
const placeholderToken = "undefined"

// Client performs HTTP requests with the stored credential attached.
// It does not inspect status codes or parse bodies; that is the caller's
// responsibility. There is no retry, timeout, or backoff at this layer —
// callers bound requests via context.
type Client struct {
	sessions   session.Store
	httpClient *http.Client
}

// New creates a Client reading credentials from the given session store.
func New(sessions session.Store) *Client {
	return &Client{
		sessions: sessions,
		httpClient: &http.Client{
			Timeout: 0,
		},
	}
}

// Do sends a request with the Authorization header set from the session
// store. contentType may be empty, in which case no Content-Type header is
// set (required for multipart bodies, where the writer owns the boundary).
func (c *Client) Do(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	token, ok := c.sessions.Token()
	if !ok {
		token = placeholderToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// Get issues an authenticated GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil, "")
}

// Delete issues an authenticated DELETE request.
func (c *Client) Delete(ctx context.Context, url string) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, url, nil, "")
}

// PostJSON issues an authenticated POST with a JSON-encoded body.
// payload may be nil for body-less POSTs.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	if payload == nil {
		return c.Do(ctx, http.MethodPost, url, nil, "")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}
	return c.Do(ctx, http.MethodPost, url, bytes.NewReader(data), "application/json")
}

// PostForm issues an authenticated POST with a multipart form body. The
// Content-Type (with boundary) comes from the finished form.
func (c *Client) PostForm(ctx context.Context, url string, form *Form) (*http.Response, error) {
	body, contentType, err := form.Finish()
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, http.MethodPost, url, body, contentType)
}
