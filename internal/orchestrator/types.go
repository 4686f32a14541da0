package orchestrator

const (
	// StatusSuccess and StatusError are the values of the status
	// discriminator every orchestration response carries. Callers must
	// branch on it before trusting the payload.
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metadata describes the origin of a file sent for processing.
type Metadata struct {
	Source     string         `json:"source,omitempty"`
	Context    string         `json:"context,omitempty"`
	Username   string         `json:"username,omitempty"`
	Timestamp  string         `json:"timestamp,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Additional map[string]any `json:"additional_metadata,omitempty"`
}

// ProcessResponse is returned by POST /process.
type ProcessResponse struct {
	Status           string `json:"status"`
	Filename         string `json:"filename"`
	Filetype         string `json:"filetype"`
	SizeBytes        int64  `json:"size_bytes"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
	Chunks           int    `json:"chunks"`
	Error            string `json:"error,omitempty"`
}

// Source is one supporting passage for an answer.
type Source struct {
	Text     string `json:"text"`
	Document string `json:"document"`
}

// QuestionResponse is returned by POST /question.
type QuestionResponse struct {
	Status           string   `json:"status"`
	Answer           string   `json:"answer"`
	Sources          []Source `json:"sources"`
	ProcessingTimeMS int64    `json:"processing_time_ms"`
	ModelUsed        string   `json:"model_used"`
	Error            string   `json:"error,omitempty"`
}

// Match is one search hit with surrounding context.
type Match struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// SearchResponse is returned by POST /search and POST /keyword-search.
type SearchResponse struct {
	Status           string  `json:"status"`
	Matches          []Match `json:"matches"`
	Count            int     `json:"count"`
	ProcessingTimeMS int64   `json:"processing_time_ms"`
	Error            string  `json:"error,omitempty"`
}

// KeywordSearchRequest is the JSON body for POST /keyword-search.
type KeywordSearchRequest struct {
	Keywords       []string       `json:"keywords"`
	Query          string         `json:"query,omitempty"`
	FilterMetadata map[string]any `json:"filter_metadata,omitempty"`
	Model          string         `json:"model,omitempty"`
	TopK           int            `json:"top_k,omitempty"`
}

// TranscriptionResponse is returned by POST /audio/transcribe.
type TranscriptionResponse struct {
	Status           string `json:"status"`
	Text             string `json:"text"`
	Language         string `json:"language,omitempty"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
	Error            string `json:"error,omitempty"`
}

// ProcessedFileInfo describes one file the backend has already processed.
type ProcessedFileInfo struct {
	ChunkCount            int     `json:"chunk_count"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	ModelUsed             string  `json:"model_used"`
	FileType              string  `json:"file_type"`
	ProcessedAt           int64   `json:"processed_at"`
}

// ProcessedFilesResponse is returned by GET /processed-files, keyed by filename.
type ProcessedFilesResponse struct {
	Files map[string]ProcessedFileInfo `json:"files"`
}

// DocumentsResponse is returned by GET /documents.
type DocumentsResponse struct {
	Count     int      `json:"count"`
	Filenames []string `json:"filenames"`
}

// StatusMessage is the shape of delete/reset/reload acknowledgements.
type StatusMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ServiceConfig maps a group of file extensions to the service that
// handles them.
type ServiceConfig struct {
	Extensions      []string `json:"extensions"`
	ServiceEndpoint string   `json:"service_endpoint"`
	ContentType     string   `json:"content_type"`
}

// ServiceMapping is returned by GET /config/mapping.
type ServiceMapping map[string]ServiceConfig

// ModelsResponse is returned by GET /models.
type ModelsResponse struct {
	Models []string `json:"models"`
}
