package analyze

import (
	"path/filepath"
	"strings"
	"time"

	"docsage/internal/orchestrator"
)

// supportedExtensions is the fixed allow-list of file types the
// orchestration service accepts.
var supportedExtensions = map[string]bool{
	// Documents
	".pdf": true, ".doc": true, ".docx": true, ".txt": true, ".rtf": true, ".odt": true,
	// Spreadsheets
	".xls": true, ".xlsx": true, ".csv": true,
	// Presentations
	".ppt": true, ".pptx": true,
	// Audio
	".mp3": true, ".wav": true, ".m4a": true, ".flac": true, ".ogg": true,
	// Images (for OCR)
	".jpg": true, ".jpeg": true, ".png": true,
	// Code
	".py": true, ".js": true, ".java": true, ".cpp": true, ".c": true,
	".h": true, ".cs": true, ".html": true, ".css": true,
}

// IsSupportedFile reports whether the filename's extension is in the
// orchestration service's allow-list. The check is case-insensitive.
func IsSupportedFile(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// MetadataFromChat builds processing metadata for files shared in a chat
// thread. An empty username defaults to "user".
func MetadataFromChat(threadTitle, username string) orchestrator.Metadata {
	if username == "" {
		username = "user"
	}
	return orchestrator.Metadata{
		Source:    "chat",
		Context:   threadTitle,
		Username:  username,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
