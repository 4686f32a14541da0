// Package inspect performs local preflight checks on files before they are
// shipped to the remote services. PDFs get a deeper look so obviously broken
// uploads fail fast on the client side.
package inspect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"docsage/internal/analyze"
	"docsage/internal/validate"
)

// ErrUnsupportedType is returned for files outside the supported extension set.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrTooLarge is returned when a file exceeds the configured size limit.
var ErrTooLarge = errors.New("file exceeds size limit")

const previewLimit = 500

// Report summarizes what the preflight learned about a file.
type Report struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"sizeBytes"`
	Pages     int    `json:"pages,omitempty"`
	Preview   string `json:"preview,omitempty"`
}

// File checks that the file at path is uploadable: supported extension and
// within maxSizeMB. PDFs are additionally opened and a short plain-text
// preview extracted.
func File(path string, maxSizeMB int64) (Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Report{}, fmt.Errorf("stat file: %w", err)
	}
	name := filepath.Base(path)
	if !analyze.IsSupportedFile(name) {
		return Report{}, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(name))
	}
	if !validate.FileSize(info.Size(), maxSizeMB) {
		return Report{}, fmt.Errorf("%w: %d bytes with %d MB limit", ErrTooLarge, info.Size(), maxSizeMB)
	}

	report := Report{Name: name, SizeBytes: info.Size()}
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		pages, preview, err := inspectPDF(path)
		if err != nil {
			return Report{}, err
		}
		report.Pages = pages
		report.Preview = preview
	}
	return report, nil
}

func inspectPDF(path string) (int, string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return 0, "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, io.LimitReader(reader, previewLimit)); err != nil {
		return 0, "", fmt.Errorf("read extracted text: %w", err)
	}
	return r.NumPage(), strings.TrimSpace(buf.String()), nil
}
