// Package api exposes the analysis facade over two local surfaces: a
// bearer-authenticated HTTP gateway and an MCP server for agent clients.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docsage/internal/analyze"
	"docsage/internal/chat"
	"docsage/internal/files"
	"docsage/internal/task"
	"docsage/internal/validate"
)

const maxUploadBodySize = 50 << 20 // 50MB across all parts

// AnalysisService is the slice of the files client the thread conversation
// endpoints drive.
type AnalysisService interface {
	CreateAnalysis(ctx context.Context, req files.AnalysisRequest) (files.AnalysisResponse, error)
	AddMessage(ctx context.Context, analysisID, message string) (files.AnalysisResponse, error)
}

// GatewayDeps holds the collaborators of the HTTP gateway.
type GatewayDeps struct {
	Tracker  *task.Tracker
	Threads  *chat.Registry
	Analyses AnalysisService
	Token    string
}

// NewGatewayHandler returns the gateway router. Everything except /health
// sits behind bearer auth.
func NewGatewayHandler(deps GatewayDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/process", handleProcess(deps))
		r.Post("/question", handleQuestion(deps))
		r.Post("/search", handleSearch(deps))
		r.Post("/summary", handleSummary(deps))
		r.Post("/entities", handleEntities(deps))
		r.Post("/text", handleText(deps))
		r.Get("/status", handleStatus(deps))
		r.Post("/status/reset", handleStatusReset(deps))

		r.Post("/threads", handleCreateThread(deps))
		r.Get("/threads", handleListThreads(deps))
		r.Get("/threads/{id}", handleGetThread(deps))
		r.Delete("/threads/{id}", handleDeleteThread(deps))
		r.Post("/threads/{id}/messages", handlePostMessage(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// formFiles pulls the uploaded "file" parts out of a multipart request and
// rejects unsupported types before anything reaches the backend.
func formFiles(r *http.Request) ([]analyze.LocalFile, error) {
	if err := r.ParseMultipartForm(maxUploadBodySize); err != nil {
		return nil, errors.New("invalid multipart body")
	}
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		return nil, errors.New("at least one file part is required")
	}
	files := make([]analyze.LocalFile, 0, len(headers))
	for _, fh := range headers {
		if !analyze.IsSupportedFile(fh.Filename) {
			return nil, errors.New("unsupported file type: " + fh.Filename)
		}
		files = append(files, localFile(fh))
	}
	return files, nil
}

func localFile(fh *multipart.FileHeader) analyze.LocalFile {
	return analyze.LocalFile{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// formFile is formFiles for the single-file endpoints.
func formFile(r *http.Request) (analyze.LocalFile, error) {
	files, err := formFiles(r)
	if err != nil {
		return analyze.LocalFile{}, err
	}
	if len(files) > 1 {
		return analyze.LocalFile{}, errors.New("exactly one file part is required")
	}
	return files[0], nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func handleProcess(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		files, err := formFiles(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}

		threadTitle := r.FormValue("threadTitle")
		username := r.FormValue("username")

		result, err := deps.Tracker.ProcessFiles(r.Context(), files, threadTitle, username)
		if err != nil {
			httpError(w, http.StatusBadGateway, "%v", err)
			return
		}
		writeJSON(w, result)
	}
}

func handleQuestion(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		file, err := formFile(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}
		question := r.FormValue("question")
		if question == "" {
			httpError(w, http.StatusBadRequest, "question is required")
			return
		}

		answer, err := deps.Tracker.AskQuestion(r.Context(), file, question)
		if err != nil {
			httpError(w, http.StatusBadGateway, "%v", err)
			return
		}
		writeJSON(w, answer)
	}
}

func handleSearch(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		file, err := formFile(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}
		query := validate.SanitizeSearchQuery(r.FormValue("query"))
		if query == "" {
			httpError(w, http.StatusBadRequest, "query is required")
			return
		}

		result, err := deps.Tracker.SearchWithinFile(r.Context(), file, query)
		if err != nil {
			httpError(w, http.StatusBadGateway, "%v", err)
			return
		}
		writeJSON(w, result)
	}
}

func handleSummary(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		file, err := formFile(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}

		summary, err := deps.Tracker.Summarize(r.Context(), file)
		if err != nil {
			httpError(w, http.StatusBadGateway, "%v", err)
			return
		}
		writeJSON(w, summary)
	}
}

func handleEntities(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		file, err := formFile(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}

		entities, err := deps.Tracker.ExtractEntities(r.Context(), file)
		if err != nil {
			httpError(w, http.StatusBadGateway, "%v", err)
			return
		}
		writeJSON(w, entities)
	}
}

func handleText(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		file, err := formFile(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}

		text, err := deps.Tracker.ExtractText(r.Context(), file)
		if err != nil {
			httpError(w, http.StatusBadGateway, "%v", err)
			return
		}
		writeJSON(w, text)
	}
}

func handleStatus(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, deps.Tracker.Status())
	}
}

func handleStatusReset(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Tracker.Reset()
		writeJSON(w, map[string]string{"status": "reset"})
	}
}

type createThreadRequest struct {
	Title string `json:"title"`
}

type threadView struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Messages []chat.Message `json:"messages"`
}

func viewOf(t *chat.Thread) threadView {
	return threadView{ID: t.ID, Title: t.Title, Messages: t.Messages()}
}

func handleCreateThread(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createThreadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Title == "" {
			httpError(w, http.StatusBadRequest, "title is required")
			return
		}
		writeJSON(w, viewOf(deps.Threads.Create(req.Title)))
	}
}

func handleListThreads(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threads := deps.Threads.List()
		views := make([]threadView, len(threads))
		for i, t := range threads {
			views[i] = viewOf(t)
		}
		writeJSON(w, views)
	}
}

func handleGetThread(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := deps.Threads.Get(chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, http.StatusNotFound, "thread not found")
			return
		}
		writeJSON(w, viewOf(t))
	}
}

func handleDeleteThread(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Threads.Delete(chi.URLParam(r, "id")); errors.Is(err, chat.ErrNotFound) {
			httpError(w, http.StatusNotFound, "thread not found")
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

type postMessageRequest struct {
	Content string   `json:"content"`
	FileIDs []string `json:"fileIds,omitempty"`
}

// handlePostMessage drives a thread conversation. The first message must name
// the files to analyze and opens an analysis; later messages continue the
// analysis the thread already carries.
func handlePostMessage(deps GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := deps.Threads.Get(chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, http.StatusNotFound, "thread not found")
			return
		}

		var req postMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Content == "" {
			httpError(w, http.StatusBadRequest, "content is required")
			return
		}

		analysisID := t.LastAnalysisID()
		if analysisID == "" {
			if err := validate.AnalysisRequest(t.Title, req.Content, req.FileIDs); err != nil {
				httpError(w, http.StatusBadRequest, "%v", err)
				return
			}
		}

		var resp files.AnalysisResponse
		if analysisID == "" {
			resp, err = deps.Analyses.CreateAnalysis(r.Context(), files.AnalysisRequest{
				Title:   t.Title,
				Message: req.Content,
				FileIDs: req.FileIDs,
			})
		} else {
			resp, err = deps.Analyses.AddMessage(r.Context(), analysisID, req.Content)
		}
		if err != nil {
			httpError(w, http.StatusBadGateway, "analysis failed: %v", err)
			return
		}

		userMsg := t.Append(chat.RoleUser, req.Content)
		t.AttachAnalysis(userMsg.ID, resp.ID)
		reply := t.Append(chat.RoleAssistant, resp.Content)
		t.AttachAnalysis(reply.ID, resp.ID)

		writeJSON(w, viewOf(t))
	}
}
