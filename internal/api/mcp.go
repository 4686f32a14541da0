package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"docsage/internal/analyze"
	"docsage/internal/task"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Tracker *task.Tracker
}

// NewMCPServer creates an MCP server exposing the document analysis tools.
// File content is passed inline as text since MCP has no upload channel.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"docsage",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("docsage — document and audio analysis over the orchestration backend."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("process_files",
			mcp.WithDescription("Process one or more documents through the analysis backend."),
			mcp.WithString("files", mcp.Description("JSON array of {name, content} file objects"), mcp.Required()),
			mcp.WithString("thread_title", mcp.Description("Conversation title used as processing context")),
			mcp.WithString("username", mcp.Description("Name recorded in the processing metadata")),
		),
		mcpProcessFiles(deps),
	)

	s.AddTool(
		mcp.NewTool("ask_question",
			mcp.WithDescription("Ask a question about a document and return the model's answer with sources."),
			mcp.WithString("name", mcp.Description("File name, extension included"), mcp.Required()),
			mcp.WithString("content", mcp.Description("The document text"), mcp.Required()),
			mcp.WithString("question", mcp.Description("Question to ask"), mcp.Required()),
		),
		mcpAskQuestion(deps),
	)

	s.AddTool(
		mcp.NewTool("search_file",
			mcp.WithDescription("Search a document for the given terms."),
			mcp.WithString("name", mcp.Description("File name, extension included"), mcp.Required()),
			mcp.WithString("content", mcp.Description("The document text"), mcp.Required()),
			mcp.WithString("query", mcp.Description("Search terms"), mcp.Required()),
		),
		mcpSearchFile(deps),
	)

	s.AddTool(
		mcp.NewTool("summarize_file",
			mcp.WithDescription("Summarize a document and extract its key points."),
			mcp.WithString("name", mcp.Description("File name, extension included"), mcp.Required()),
			mcp.WithString("content", mcp.Description("The document text"), mcp.Required()),
		),
		mcpSummarizeFile(deps),
	)

	s.AddTool(
		mcp.NewTool("extract_entities",
			mcp.WithDescription("Extract people, organizations, locations, dates, and products from a document."),
			mcp.WithString("name", mcp.Description("File name, extension included"), mcp.Required()),
			mcp.WithString("content", mcp.Description("The document text"), mcp.Required()),
		),
		mcpExtractEntities(deps),
	)

	s.AddTool(
		mcp.NewTool("extract_text",
			mcp.WithDescription("Extract the full plain text of a document, split into paragraphs."),
			mcp.WithString("name", mcp.Description("File name, extension included"), mcp.Required()),
			mcp.WithString("content", mcp.Description("The document text"), mcp.Required()),
		),
		mcpExtractText(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"task://status",
			"Operation Status",
			mcp.WithResourceDescription("State of the most recent analysis operation"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceStatus(deps),
	)

	return s
}

type inlineFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// toolFile reads the name/content argument pair shared by the single-file
// tools.
func toolFile(req mcp.CallToolRequest) (analyze.LocalFile, *mcp.CallToolResult) {
	name, err := req.RequireString("name")
	if err != nil {
		return analyze.LocalFile{}, mcpError("name is required")
	}
	content, err := req.RequireString("content")
	if err != nil {
		return analyze.LocalFile{}, mcpError("content is required")
	}
	if !analyze.IsSupportedFile(name) {
		return analyze.LocalFile{}, mcpError(fmt.Sprintf("unsupported file type: %s", name))
	}
	return analyze.FromReader(name, content), nil
}

func mcpProcessFiles(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filesJSON, err := req.RequireString("files")
		if err != nil {
			return mcpError("files is required"), nil
		}

		var inline []inlineFile
		if err := json.Unmarshal([]byte(filesJSON), &inline); err != nil {
			return mcpError(fmt.Sprintf("invalid files JSON: %v", err)), nil
		}

		files := make([]analyze.LocalFile, 0, len(inline))
		for _, f := range inline {
			if !analyze.IsSupportedFile(f.Name) {
				return mcpError(fmt.Sprintf("unsupported file type: %s", f.Name)), nil
			}
			files = append(files, analyze.FromReader(f.Name, f.Content))
		}

		threadTitle := req.GetString("thread_title", "")
		username := req.GetString("username", "")

		result, err := deps.Tracker.ProcessFiles(ctx, files, threadTitle, username)
		if err != nil {
			return mcpError(fmt.Sprintf("processing failed: %v", err)), nil
		}
		return mcpJSON(result)
	}
}

func mcpAskQuestion(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, fail := toolFile(req)
		if fail != nil {
			return fail, nil
		}
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		answer, err := deps.Tracker.AskQuestion(ctx, file, question)
		if err != nil {
			return mcpError(fmt.Sprintf("question failed: %v", err)), nil
		}
		return mcpJSON(answer)
	}
}

func mcpSearchFile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, fail := toolFile(req)
		if fail != nil {
			return fail, nil
		}
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		result, err := deps.Tracker.SearchWithinFile(ctx, file, query)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return mcpJSON(result)
	}
}

func mcpSummarizeFile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, fail := toolFile(req)
		if fail != nil {
			return fail, nil
		}

		summary, err := deps.Tracker.Summarize(ctx, file)
		if err != nil {
			return mcpError(fmt.Sprintf("summarization failed: %v", err)), nil
		}
		return mcpJSON(summary)
	}
}

func mcpExtractEntities(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, fail := toolFile(req)
		if fail != nil {
			return fail, nil
		}

		entities, err := deps.Tracker.ExtractEntities(ctx, file)
		if err != nil {
			return mcpError(fmt.Sprintf("entity extraction failed: %v", err)), nil
		}
		return mcpJSON(entities)
	}
}

func mcpExtractText(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, fail := toolFile(req)
		if fail != nil {
			return fail, nil
		}

		text, err := deps.Tracker.ExtractText(ctx, file)
		if err != nil {
			return mcpError(fmt.Sprintf("text extraction failed: %v", err)), nil
		}
		return mcpJSON(text)
	}
}

func mcpResourceStatus(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Tracker.Status())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal status: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
