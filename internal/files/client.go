// Package files is the client for the files/analysis service: uploads,
// file metadata, and analysis threads over uploaded files.
package files

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"docsage/internal/transport"
)

// FileDescriptor is the backend's metadata record for an uploaded file.
// It is immutable once returned; downstream calls reference it by ID.
type FileDescriptor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploadedAt"`
}

// AnalysisRequest starts an analysis over previously uploaded files.
type AnalysisRequest struct {
	Title   string   `json:"title,omitempty"`
	Message string   `json:"message,omitempty"`
	FileIDs []string `json:"fileIds"`
}

// AnalysisResponse is the generated content for one analysis request,
// with the file metadata echoed back.
type AnalysisResponse struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Content string           `json:"content"`
	Files   []FileDescriptor `json:"files"`
}

// Client communicates with the files/analysis service.
type Client struct {
	baseURL    string
	httpClient *transport.Client
}

// New creates a Client for the files service at the given base URL.
func New(baseURL string, httpClient *transport.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Upload sends the file contents as a multipart request and returns the
// backend's descriptor for it.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (FileDescriptor, error) {
	form := transport.NewForm()
	if err := form.AddFile("file", filename, r); err != nil {
		return FileDescriptor{}, err
	}

	resp, err := c.httpClient.PostForm(ctx, c.baseURL+"/api/files/upload", form)
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("upload request: %w", err)
	}

	var fd FileDescriptor
	if err := transport.DecodeJSON(resp, &fd, "file upload failed"); err != nil {
		return FileDescriptor{}, err
	}
	return fd, nil
}

// Get fetches the descriptor for a previously uploaded file.
func (c *Client) Get(ctx context.Context, id string) (FileDescriptor, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/api/files/"+url.PathEscape(id))
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("file request: %w", err)
	}

	var fd FileDescriptor
	if err := transport.DecodeJSON(resp, &fd, "failed to fetch file"); err != nil {
		return FileDescriptor{}, err
	}
	return fd, nil
}

// Delete removes an uploaded file. Deleting an already-deleted id surfaces
// the backend's error; it is not suppressed here.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.httpClient.Delete(ctx, c.baseURL+"/api/files/"+url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return transport.CheckStatus(resp, "failed to delete file")
}

// CreateAnalysis starts a new analysis over the given file ids.
func (c *Client) CreateAnalysis(ctx context.Context, req AnalysisRequest) (AnalysisResponse, error) {
	resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/api/analysis", req)
	if err != nil {
		return AnalysisResponse{}, fmt.Errorf("analysis request: %w", err)
	}

	var out AnalysisResponse
	if err := transport.DecodeJSON(resp, &out, "analysis failed"); err != nil {
		return AnalysisResponse{}, err
	}
	return out, nil
}

// AddMessage sends a follow-up message to an existing analysis thread.
func (c *Client) AddMessage(ctx context.Context, analysisID, message string) (AnalysisResponse, error) {
	body := struct {
		Message string `json:"message"`
	}{Message: message}

	resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/api/analysis/"+url.PathEscape(analysisID)+"/message", body)
	if err != nil {
		return AnalysisResponse{}, fmt.Errorf("message request: %w", err)
	}

	var out AnalysisResponse
	if err := transport.DecodeJSON(resp, &out, "failed to send message"); err != nil {
		return AnalysisResponse{}, err
	}
	return out, nil
}
