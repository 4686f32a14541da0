// Package orchestrator is the client for the file-orchestration/RAG
// service: document processing, question answering, search, transcription,
// and system administration.
//
// File-bearing operations send multipart bodies (the platform sets the
// boundary); structured operations send JSON. Every response carries a
// status discriminator; this layer returns responses as decoded, leaving
// the status branch to the caller.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"docsage/internal/transport"
)

// File pairs a filename with its content for multipart uploads.
type File struct {
	Name   string
	Reader io.Reader
}

// Client communicates with the orchestration service.
type Client struct {
	baseURL    string
	httpClient *transport.Client
}

// New creates a Client for the orchestration service at the given base URL
// (including the /api prefix).
func New(baseURL string, httpClient *transport.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ProcessFile submits one file for chunking and indexing.
func (c *Client) ProcessFile(ctx context.Context, file File, meta *Metadata) (ProcessResponse, error) {
	form := transport.NewForm()
	if err := form.AddFile("file", file.Name, file.Reader); err != nil {
		return ProcessResponse{}, err
	}
	if meta != nil {
		if err := form.AddJSONField("metadata", meta); err != nil {
			return ProcessResponse{}, err
		}
	}

	resp, err := c.httpClient.PostForm(ctx, c.baseURL+"/process", form)
	if err != nil {
		return ProcessResponse{}, fmt.Errorf("process request: %w", err)
	}

	var out ProcessResponse
	if err := transport.DecodeJSON(resp, &out, "file processing failed"); err != nil {
		return ProcessResponse{}, err
	}
	return out, nil
}

// AskQuestion poses a question over one or more files.
func (c *Client) AskQuestion(ctx context.Context, files []File, question string, meta *Metadata) (QuestionResponse, error) {
	form := transport.NewForm()
	for _, f := range files {
		if err := form.AddFile("file", f.Name, f.Reader); err != nil {
			return QuestionResponse{}, err
		}
	}
	if err := form.AddField("question", question); err != nil {
		return QuestionResponse{}, err
	}
	if meta != nil {
		if err := form.AddJSONField("metadata", meta); err != nil {
			return QuestionResponse{}, err
		}
	}

	resp, err := c.httpClient.PostForm(ctx, c.baseURL+"/question", form)
	if err != nil {
		return QuestionResponse{}, fmt.Errorf("question request: %w", err)
	}

	var out QuestionResponse
	if err := transport.DecodeJSON(resp, &out, "failed to get answer"); err != nil {
		return QuestionResponse{}, err
	}
	return out, nil
}

// SearchWithinFile finds occurrences of the given terms inside one file.
func (c *Client) SearchWithinFile(ctx context.Context, file File, searchTerms string) (SearchResponse, error) {
	form := transport.NewForm()
	if err := form.AddFile("file", file.Name, file.Reader); err != nil {
		return SearchResponse{}, err
	}
	if err := form.AddField("search_terms", searchTerms); err != nil {
		return SearchResponse{}, err
	}

	resp, err := c.httpClient.PostForm(ctx, c.baseURL+"/search", form)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search request: %w", err)
	}

	var out SearchResponse
	if err := transport.DecodeJSON(resp, &out, "search failed"); err != nil {
		return SearchResponse{}, err
	}
	return out, nil
}

// KeywordSearch searches across all processed documents.
func (c *Client) KeywordSearch(ctx context.Context, req KeywordSearchRequest) (SearchResponse, error) {
	resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/keyword-search", req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("keyword search request: %w", err)
	}

	var out SearchResponse
	if err := transport.DecodeJSON(resp, &out, "keyword search failed"); err != nil {
		return SearchResponse{}, err
	}
	return out, nil
}

// Transcribe submits an audio file for transcription.
func (c *Client) Transcribe(ctx context.Context, file File, meta *Metadata) (TranscriptionResponse, error) {
	form := transport.NewForm()
	if err := form.AddFile("file", file.Name, file.Reader); err != nil {
		return TranscriptionResponse{}, err
	}
	if meta != nil {
		if err := form.AddJSONField("metadata", meta); err != nil {
			return TranscriptionResponse{}, err
		}
	}

	resp, err := c.httpClient.PostForm(ctx, c.baseURL+"/audio/transcribe", form)
	if err != nil {
		return TranscriptionResponse{}, fmt.Errorf("transcribe request: %w", err)
	}

	var out TranscriptionResponse
	if err := transport.DecodeJSON(resp, &out, "transcription failed"); err != nil {
		return TranscriptionResponse{}, err
	}
	return out, nil
}

// ProcessedFiles lists files the backend has already processed.
func (c *Client) ProcessedFiles(ctx context.Context) (ProcessedFilesResponse, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/processed-files")
	if err != nil {
		return ProcessedFilesResponse{}, fmt.Errorf("processed-files request: %w", err)
	}

	var out ProcessedFilesResponse
	if err := transport.DecodeJSON(resp, &out, "failed to list processed files"); err != nil {
		return ProcessedFilesResponse{}, err
	}
	return out, nil
}

// Documents lists all indexed document filenames.
func (c *Client) Documents(ctx context.Context) (DocumentsResponse, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/documents")
	if err != nil {
		return DocumentsResponse{}, fmt.Errorf("documents request: %w", err)
	}

	var out DocumentsResponse
	if err := transport.DecodeJSON(resp, &out, "failed to list documents"); err != nil {
		return DocumentsResponse{}, err
	}
	return out, nil
}

// DeleteDocument removes one document and all its chunks from the index.
func (c *Client) DeleteDocument(ctx context.Context, filename string) (StatusMessage, error) {
	resp, err := c.httpClient.Delete(ctx, c.baseURL+"/documents/"+url.PathEscape(filename))
	if err != nil {
		return StatusMessage{}, fmt.Errorf("delete request: %w", err)
	}

	var out StatusMessage
	if err := transport.DecodeJSON(resp, &out, "failed to delete document"); err != nil {
		return StatusMessage{}, err
	}
	return out, nil
}

// ResetSystem wipes the entire index. The confirm flag is required by the
// backend and always sent.
func (c *Client) ResetSystem(ctx context.Context) (StatusMessage, error) {
	resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/system/reset?confirm=true", nil)
	if err != nil {
		return StatusMessage{}, fmt.Errorf("reset request: %w", err)
	}

	var out StatusMessage
	if err := transport.DecodeJSON(resp, &out, "failed to reset system"); err != nil {
		return StatusMessage{}, err
	}
	return out, nil
}

// ServiceMapping returns the extension-to-service routing table.
func (c *Client) ServiceMapping(ctx context.Context) (ServiceMapping, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/config/mapping")
	if err != nil {
		return nil, fmt.Errorf("mapping request: %w", err)
	}

	var out ServiceMapping
	if err := transport.DecodeJSON(resp, &out, "failed to get service mapping"); err != nil {
		return nil, err
	}
	return out, nil
}

// ReloadMapping reloads the routing table from disk on the backend.
func (c *Client) ReloadMapping(ctx context.Context) (StatusMessage, error) {
	resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/config/reload", nil)
	if err != nil {
		return StatusMessage{}, fmt.Errorf("reload request: %w", err)
	}

	var out StatusMessage
	if err := transport.DecodeJSON(resp, &out, "failed to reload service mapping"); err != nil {
		return StatusMessage{}, err
	}
	return out, nil
}

// Models lists the language models available to the backend.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/models")
	if err != nil {
		return nil, fmt.Errorf("models request: %w", err)
	}

	var out ModelsResponse
	if err := transport.DecodeJSON(resp, &out, "failed to list models"); err != nil {
		return nil, err
	}
	return out.Models, nil
}
