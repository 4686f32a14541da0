// Package history is the client for the analysis-history service.
package history

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"docsage/internal/transport"
)

// Item is one saved history entry.
type Item struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// Client communicates with the history service.
type Client struct {
	baseURL    string
	httpClient *transport.Client
}

// New creates a Client for the history service at the given base URL.
func New(baseURL string, httpClient *transport.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// List returns all history items for the current user.
func (c *Client) List(ctx context.Context) ([]Item, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/api/history")
	if err != nil {
		return nil, fmt.Errorf("history request: %w", err)
	}

	var items []Item
	if err := transport.DecodeJSON(resp, &items, "failed to fetch history"); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a single history item by id.
func (c *Client) Get(ctx context.Context, id string) (Item, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/api/history/"+url.PathEscape(id))
	if err != nil {
		return Item{}, fmt.Errorf("history request: %w", err)
	}

	var item Item
	if err := transport.DecodeJSON(resp, &item, "failed to fetch history item"); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Delete removes a history item.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.httpClient.Delete(ctx, c.baseURL+"/api/history/"+url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return transport.CheckStatus(resp, "failed to delete history item")
}

// Search returns history items matching the query string.
func (c *Client) Search(ctx context.Context, query string) ([]Item, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/api/history/search?q="+url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}

	var items []Item
	if err := transport.DecodeJSON(resp, &items, "history search failed"); err != nil {
		return nil, err
	}
	return items, nil
}
