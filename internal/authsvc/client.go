// Package authsvc is the client for the authentication microservice.
// Login and Register exchange email/password for a bearer credential;
// Logout invalidates it remotely and always removes the stored copy.
package authsvc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"docsage/internal/session"
	"docsage/internal/transport"
)

// Client communicates with the auth service.
type Client struct {
	baseURL    string
	httpClient *transport.Client
	sessions   session.Store
}

// New creates a Client for the auth service at the given base URL.
func New(baseURL string, httpClient *transport.Client, sessions session.Store) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		sessions:   sessions,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse mirrors the JSON returned by POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates with email/password and stores the returned
// credential for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/auth/login", credentialsRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("login request: %w", err)
	}

	var out LoginResponse
	if err := transport.DecodeJSON(resp, &out, "login failed"); err != nil {
		return LoginResponse{}, err
	}

	if out.AccessToken != "" {
		if err := c.sessions.SetToken(out.AccessToken); err != nil {
			return LoginResponse{}, fmt.Errorf("storing credential: %w", err)
		}
	}
	return out, nil
}

// Register creates a new account. It does not log the user in.
func (c *Client) Register(ctx context.Context, email, password string) error {
	resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/auth/register", credentialsRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("register request: %w", err)
	}
	return transport.DecodeJSON(resp, nil, "registration failed")
}

// Logout invalidates the session remotely. The stored credential is
// removed in every outcome, including remote failure — a dead local
// credential must never outlive a logout attempt.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.httpClient.Do(ctx, http.MethodPost, c.baseURL+"/auth/logout", nil, "")
	if err != nil {
		c.sessions.Clear()
		return fmt.Errorf("logout request: %w", err)
	}

	if clearErr := c.sessions.Clear(); clearErr != nil {
		resp.Body.Close()
		return fmt.Errorf("clearing credential: %w", clearErr)
	}
	return transport.DecodeJSON(resp, nil, "logout failed")
}
