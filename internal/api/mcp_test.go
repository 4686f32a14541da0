package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"docsage/internal/analyze"
	"docsage/internal/task"
)

func newTestMCPDeps(facade *mockFacade) MCPDeps {
	return MCPDeps{Tracker: task.NewTracker(facade)}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPTool_ProcessFiles(t *testing.T) {
	facade := &mockFacade{}
	deps := newTestMCPDeps(facade)
	handler := mcpProcessFiles(deps)

	req := makeCallToolRequest("process_files", map[string]interface{}{
		"files":        `[{"name":"a.txt","content":"alpha"},{"name":"b.csv","content":"beta"}]`,
		"thread_title": "quarterly",
		"username":     "ada",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var batch analyze.BatchResult
	if err := json.Unmarshal([]byte(toolText(t, result)), &batch); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if batch.FilesProcessed != 2 {
		t.Errorf("FilesProcessed = %d, want 2", batch.FilesProcessed)
	}
	if facade.lastMeta == nil || facade.lastMeta.Context != "quarterly" {
		t.Errorf("metadata context = %+v", facade.lastMeta)
	}
}

func TestMCPTool_ProcessFiles_InvalidJSON(t *testing.T) {
	handler := mcpProcessFiles(newTestMCPDeps(&mockFacade{}))
	req := makeCallToolRequest("process_files", map[string]interface{}{
		"files": "not json",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for invalid files JSON")
	}
}

func TestMCPTool_ProcessFiles_UnsupportedType(t *testing.T) {
	handler := mcpProcessFiles(newTestMCPDeps(&mockFacade{}))
	req := makeCallToolRequest("process_files", map[string]interface{}{
		"files": `[{"name":"evil.exe","content":"x"}]`,
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for unsupported file type")
	}
}

func TestMCPTool_AskQuestion(t *testing.T) {
	facade := &mockFacade{}
	handler := mcpAskQuestion(newTestMCPDeps(facade))

	req := makeCallToolRequest("ask_question", map[string]interface{}{
		"name":     "report.txt",
		"content":  "the total is 42",
		"question": "what is the total?",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var answer analyze.Answer
	if err := json.Unmarshal([]byte(toolText(t, result)), &answer); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if answer.Answer != "42" {
		t.Errorf("Answer = %q, want 42", answer.Answer)
	}
	if facade.lastQuestion != "what is the total?" {
		t.Errorf("question = %q", facade.lastQuestion)
	}
}

func TestMCPTool_AskQuestion_MissingQuestion(t *testing.T) {
	handler := mcpAskQuestion(newTestMCPDeps(&mockFacade{}))
	req := makeCallToolRequest("ask_question", map[string]interface{}{
		"name":    "report.txt",
		"content": "text",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing question")
	}
}

func TestMCPTool_SummarizeFile_BackendFailure(t *testing.T) {
	handler := mcpSummarizeFile(newTestMCPDeps(&mockFacade{failAll: true}))
	req := makeCallToolRequest("summarize_file", map[string]interface{}{
		"name":    "report.txt",
		"content": "text",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error when backend fails")
	}
}

func TestMCPTool_ExtractEntities(t *testing.T) {
	handler := mcpExtractEntities(newTestMCPDeps(&mockFacade{}))
	req := makeCallToolRequest("extract_entities", map[string]interface{}{
		"name":    "report.txt",
		"content": "Ada went to London",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var entities analyze.Entities
	if err := json.Unmarshal([]byte(toolText(t, result)), &entities); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(entities.People) != 1 || entities.People[0] != "Ada" {
		t.Errorf("People = %v", entities.People)
	}
}

func TestMCPResource_Status(t *testing.T) {
	facade := &mockFacade{}
	deps := newTestMCPDeps(facade)

	if _, err := deps.Tracker.ExtractText(context.Background(), analyze.FromReader("a.txt", "body")); err != nil {
		t.Fatal(err)
	}

	handler := mcpResourceStatus(deps)
	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "task://status"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 resource content, got %d", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var status task.Status
	if err := json.Unmarshal([]byte(text.Text), &status); err != nil {
		t.Fatal(err)
	}
	if status.Progress != 100 {
		t.Errorf("Progress = %d, want 100", status.Progress)
	}
}
