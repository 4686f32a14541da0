package task

import (
	"context"
	"fmt"
	"testing"

	"docsage/internal/analyze"
	"docsage/internal/orchestrator"
)

// fakeFacade returns canned results, or an error when fail is set.
type fakeFacade struct {
	fail bool
}

func (f *fakeFacade) outcome() error {
	if f.fail {
		return fmt.Errorf("backend unreachable")
	}
	return nil
}

func (f *fakeFacade) ProcessFiles(ctx context.Context, files []analyze.LocalFile, meta *orchestrator.Metadata) (analyze.BatchResult, error) {
	return analyze.BatchResult{FilesProcessed: len(files)}, f.outcome()
}

func (f *fakeFacade) AskQuestion(ctx context.Context, file analyze.LocalFile, question string) (analyze.Answer, error) {
	return analyze.Answer{Answer: "ok"}, f.outcome()
}

func (f *fakeFacade) SearchWithinFile(ctx context.Context, file analyze.LocalFile, terms string) (analyze.SearchResult, error) {
	return analyze.SearchResult{}, f.outcome()
}

func (f *fakeFacade) Summarize(ctx context.Context, file analyze.LocalFile) (analyze.Summary, error) {
	return analyze.Summary{Summary: "s"}, f.outcome()
}

func (f *fakeFacade) ExtractEntities(ctx context.Context, file analyze.LocalFile) (analyze.Entities, error) {
	return analyze.Entities{}, f.outcome()
}

func (f *fakeFacade) ExtractText(ctx context.Context, file analyze.LocalFile) (analyze.TextExtract, error) {
	return analyze.TextExtract{}, f.outcome()
}

func TestTracker_InitialState(t *testing.T) {
	tr := NewTracker(&fakeFacade{})
	st := tr.Status()
	if st.Running || st.Progress != 0 || st.Result != nil || st.Err != "" {
		t.Errorf("initial status = %+v, want zero", st)
	}
}

func TestTracker_Success(t *testing.T) {
	tr := NewTracker(&fakeFacade{})

	out, err := tr.AskQuestion(context.Background(), analyze.FromReader("a.txt", "x"), "q")
	if err != nil {
		t.Fatalf("AskQuestion: %v", err)
	}
	if out.Answer != "ok" {
		t.Errorf("answer = %q", out.Answer)
	}

	st := tr.Status()
	if st.Running {
		t.Error("Running = true after completion")
	}
	if st.Progress != 100 {
		t.Errorf("Progress = %d, want 100", st.Progress)
	}
	if st.Err != "" {
		t.Errorf("Err = %q, want empty", st.Err)
	}
	if _, ok := st.Result.(analyze.Answer); !ok {
		t.Errorf("Result = %T, want analyze.Answer", st.Result)
	}
}

func TestTracker_Failure(t *testing.T) {
	tr := NewTracker(&fakeFacade{fail: true})

	_, err := tr.Summarize(context.Background(), analyze.FromReader("a.txt", "x"))
	if err == nil {
		t.Fatal("Summarize succeeded, want error")
	}

	st := tr.Status()
	if st.Running {
		t.Error("Running = true after failure")
	}
	if st.Err != "backend unreachable" {
		t.Errorf("Err = %q", st.Err)
	}
	if st.Progress == 100 {
		t.Error("Progress = 100 after failure, want last milestone")
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(&fakeFacade{})
	tr.ProcessFiles(context.Background(), []analyze.LocalFile{analyze.FromReader("a.txt", "x")}, "Thread", "bob")

	tr.Reset()
	st := tr.Status()
	if st.Running || st.Progress != 0 || st.Result != nil || st.Err != "" {
		t.Errorf("status after Reset = %+v, want zero", st)
	}
}

func TestTracker_ErrorClearedByNextAction(t *testing.T) {
	f := &fakeFacade{fail: true}
	tr := NewTracker(f)

	tr.AskQuestion(context.Background(), analyze.FromReader("a.txt", "x"), "q")
	if tr.Status().Err == "" {
		t.Fatal("expected error recorded")
	}

	f.fail = false
	tr.AskQuestion(context.Background(), analyze.FromReader("a.txt", "x"), "q")
	if st := tr.Status(); st.Err != "" {
		t.Errorf("Err = %q after successful action, want empty", st.Err)
	}
}
