// Package analyze composes the orchestration client into the workflows the
// front ends use: batch processing, question answering, in-file search, and
// best-effort structured extraction from free-text model answers.
package analyze

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"docsage/internal/orchestrator"
)

const defaultFanOutLimit = 4

// Backend is the subset of the orchestration client the facade needs.
type Backend interface {
	ProcessFile(ctx context.Context, file orchestrator.File, meta *orchestrator.Metadata) (orchestrator.ProcessResponse, error)
	AskQuestion(ctx context.Context, files []orchestrator.File, question string, meta *orchestrator.Metadata) (orchestrator.QuestionResponse, error)
	SearchWithinFile(ctx context.Context, file orchestrator.File, searchTerms string) (orchestrator.SearchResponse, error)
}

// LocalFile is a file on the caller's side, opened lazily so the same file
// can back multiple requests.
type LocalFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FromPath creates a LocalFile reading from the filesystem.
func FromPath(path string) LocalFile {
	name := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		name = path[i+1:]
	}
	return LocalFile{
		Name: name,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FromReader creates a LocalFile over in-memory content.
func FromReader(name string, content string) LocalFile {
	return LocalFile{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// Service is the orchestration facade.
type Service struct {
	backend     Backend
	fanOutLimit int
	logger      *slog.Logger
}

// NewService creates a Service over the given backend. fanOutLimit bounds
// concurrent per-file requests during batch processing; values <= 0 use the
// default (4).
func NewService(backend Backend, fanOutLimit int) *Service {
	if fanOutLimit <= 0 {
		fanOutLimit = defaultFanOutLimit
	}
	return &Service{
		backend:     backend,
		fanOutLimit: fanOutLimit,
		logger:      slog.Default(),
	}
}

// BatchResult aggregates a multi-file processing run.
type BatchResult struct {
	FilesProcessed  int      `json:"filesProcessed"`
	TextChunks      int      `json:"textChunks"`
	FilesWithErrors []string `json:"filesWithErrors"`
	Summary         string   `json:"summary"`
}

// ProcessFiles submits every file for processing concurrently, bounded by
// the fan-out limit. One file's failure never aborts its siblings; failures
// are collected in FilesWithErrors. The call itself fails only for an empty
// input list.
func (s *Service) ProcessFiles(ctx context.Context, files []LocalFile, meta *orchestrator.Metadata) (BatchResult, error) {
	if len(files) == 0 {
		return BatchResult{}, fmt.Errorf("no files to process")
	}

	type itemResult struct {
		resp orchestrator.ProcessResponse
		err  error
	}
	results := make([]itemResult, len(files))

	g := &errgroup.Group{}
	g.SetLimit(s.fanOutLimit)
	for i, file := range files {
		g.Go(func() error {
			resp, err := s.processOne(ctx, file, meta)
			results[i] = itemResult{resp: resp, err: err}
			return nil
		})
	}
	g.Wait()

	var out BatchResult
	var failed int
	for i, r := range results {
		switch {
		case r.err != nil:
			s.logger.Warn("file processing failed", "file", files[i].Name, "error", r.err)
			out.FilesWithErrors = append(out.FilesWithErrors, files[i].Name)
			failed++
		case r.resp.Status == orchestrator.StatusError:
			s.logger.Warn("file processing rejected", "file", files[i].Name, "error", r.resp.Error)
			out.FilesWithErrors = append(out.FilesWithErrors, files[i].Name)
			failed++
		default:
			out.FilesProcessed++
			out.TextChunks += r.resp.Chunks
		}
	}

	out.Summary = fmt.Sprintf("Processed %d files successfully.", out.FilesProcessed)
	if failed > 0 {
		out.Summary += fmt.Sprintf(" Failed to process %d files.", failed)
	}
	return out, nil
}

func (s *Service) processOne(ctx context.Context, file LocalFile, meta *orchestrator.Metadata) (orchestrator.ProcessResponse, error) {
	r, err := file.Open()
	if err != nil {
		return orchestrator.ProcessResponse{}, fmt.Errorf("opening %s: %w", file.Name, err)
	}
	defer r.Close()
	return s.backend.ProcessFile(ctx, orchestrator.File{Name: file.Name, Reader: r}, meta)
}

// Answer is a question answer with its supporting passages.
type Answer struct {
	Answer  string                `json:"answer"`
	Sources []orchestrator.Source `json:"sources"`
}

// AskQuestion poses a question about one file.
func (s *Service) AskQuestion(ctx context.Context, file LocalFile, question string) (Answer, error) {
	resp, err := s.ask(ctx, file, question)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to get answer: %w", err)
	}
	return Answer{Answer: resp.Answer, Sources: resp.Sources}, nil
}

// SearchResult holds in-file search matches.
type SearchResult struct {
	Matches []orchestrator.Match `json:"matches"`
}

// SearchWithinFile finds the given terms inside one file.
func (s *Service) SearchWithinFile(ctx context.Context, file LocalFile, searchTerms string) (SearchResult, error) {
	r, err := file.Open()
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to search within file: %w", err)
	}
	defer r.Close()

	resp, err := s.backend.SearchWithinFile(ctx, orchestrator.File{Name: file.Name, Reader: r}, searchTerms)
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to search within file: %w", err)
	}
	if resp.Status == orchestrator.StatusError {
		return SearchResult{}, fmt.Errorf("failed to search within file: %s", resp.Error)
	}
	return SearchResult{Matches: resp.Matches}, nil
}

// ask opens the file, runs one question through the backend, and surfaces
// the response's error status as a Go error.
func (s *Service) ask(ctx context.Context, file LocalFile, question string) (orchestrator.QuestionResponse, error) {
	r, err := file.Open()
	if err != nil {
		return orchestrator.QuestionResponse{}, fmt.Errorf("opening %s: %w", file.Name, err)
	}
	defer r.Close()

	resp, err := s.backend.AskQuestion(ctx, []orchestrator.File{{Name: file.Name, Reader: r}}, question, nil)
	if err != nil {
		return orchestrator.QuestionResponse{}, err
	}
	if resp.Status == orchestrator.StatusError {
		return orchestrator.QuestionResponse{}, fmt.Errorf("%s", resp.Error)
	}
	return resp, nil
}
