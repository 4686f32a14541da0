// Package task tracks the state of facade operations for a front end:
// a running flag, coarse progress milestones, the most recent result, and
// the last error message. Each surface owns its own Tracker instance;
// concurrent actions on one instance race with last-write-wins semantics.
package task

import (
	"context"
	"sync"

	"docsage/internal/analyze"
	"docsage/internal/orchestrator"
)

// Facade is the subset of the analyze service a Tracker drives.
type Facade interface {
	ProcessFiles(ctx context.Context, files []analyze.LocalFile, meta *orchestrator.Metadata) (analyze.BatchResult, error)
	AskQuestion(ctx context.Context, file analyze.LocalFile, question string) (analyze.Answer, error)
	SearchWithinFile(ctx context.Context, file analyze.LocalFile, searchTerms string) (analyze.SearchResult, error)
	Summarize(ctx context.Context, file analyze.LocalFile) (analyze.Summary, error)
	ExtractEntities(ctx context.Context, file analyze.LocalFile) (analyze.Entities, error)
	ExtractText(ctx context.Context, file analyze.LocalFile) (analyze.TextExtract, error)
}

// Status is a snapshot of the tracker's state. Progress runs 0-100 in
// fixed milestones, not measured.
type Status struct {
	Running  bool   `json:"running"`
	Progress int    `json:"progress"`
	Result   any    `json:"result,omitempty"`
	Err      string `json:"error,omitempty"`
}

// Tracker wraps a Facade, recording operation state around each call.
type Tracker struct {
	mu     sync.Mutex
	facade Facade
	status Status
}

// NewTracker creates a Tracker over the given facade.
func NewTracker(facade Facade) *Tracker {
	return &Tracker{facade: facade}
}

// Status returns a snapshot of the current state.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Reset clears all state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{}
}

func (t *Tracker) begin(progress int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{Running: true, Progress: progress}
}

func (t *Tracker) setProgress(progress int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Progress = progress
}

// finish records the outcome. On success the result is stored and progress
// jumps to 100; on failure the error message is stored and progress stays
// at its last milestone. Running drops in both cases.
func (t *Tracker) finish(result any, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Running = false
	if err != nil {
		t.status.Err = err.Error()
		return
	}
	t.status.Progress = 100
	t.status.Result = result
}

// ProcessFiles runs batch processing with metadata derived from the chat
// thread context.
func (t *Tracker) ProcessFiles(ctx context.Context, files []analyze.LocalFile, threadTitle, username string) (analyze.BatchResult, error) {
	t.begin(10)
	meta := analyze.MetadataFromChat(threadTitle, username)
	t.setProgress(30)

	out, err := t.facade.ProcessFiles(ctx, files, &meta)
	t.finish(out, err)
	return out, err
}

// AskQuestion poses a question about one file.
func (t *Tracker) AskQuestion(ctx context.Context, file analyze.LocalFile, question string) (analyze.Answer, error) {
	t.begin(20)
	out, err := t.facade.AskQuestion(ctx, file, question)
	t.finish(out, err)
	return out, err
}

// SearchWithinFile searches one file for the given terms.
func (t *Tracker) SearchWithinFile(ctx context.Context, file analyze.LocalFile, searchTerms string) (analyze.SearchResult, error) {
	t.begin(20)
	out, err := t.facade.SearchWithinFile(ctx, file, searchTerms)
	t.finish(out, err)
	return out, err
}

// Summarize generates a summary with key points for one file.
func (t *Tracker) Summarize(ctx context.Context, file analyze.LocalFile) (analyze.Summary, error) {
	t.begin(20)
	out, err := t.facade.Summarize(ctx, file)
	t.finish(out, err)
	return out, err
}

// ExtractEntities extracts categorized entities from one file.
func (t *Tracker) ExtractEntities(ctx context.Context, file analyze.LocalFile) (analyze.Entities, error) {
	t.begin(20)
	out, err := t.facade.ExtractEntities(ctx, file)
	t.finish(out, err)
	return out, err
}

// ExtractText extracts the full text of one file.
func (t *Tracker) ExtractText(ctx context.Context, file analyze.LocalFile) (analyze.TextExtract, error) {
	t.begin(20)
	out, err := t.facade.ExtractText(ctx, file)
	t.finish(out, err)
	return out, err
}
