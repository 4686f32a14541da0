package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// Form builds a multipart request body: file parts plus plain or
// JSON-encoded metadata fields.
type Form struct {
	buf bytes.Buffer
	w   *multipart.Writer
}

// NewForm creates an empty multipart form.
func NewForm() *Form {
	f := &Form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

// AddFile streams r into a file part under the given field name.
func (f *Form) AddFile(field, filename string, r io.Reader) error {
	part, err := f.w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("creating file part %s: %w", field, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("writing file part %s: %w", field, err)
	}
	return nil
}

// AddField writes a plain text field.
func (f *Form) AddField(name, value string) error {
	if err := f.w.WriteField(name, value); err != nil {
		return fmt.Errorf("writing field %s: %w", name, err)
	}
	return nil
}

// AddJSONField writes a field holding the JSON encoding of v.
func (f *Form) AddJSONField(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding field %s: %w", name, err)
	}
	return f.AddField(name, string(data))
}

// Finish closes the form and returns the body reader and Content-Type
// (including the boundary). The form cannot be reused afterwards.
func (f *Form) Finish() (io.Reader, string, error) {
	if err := f.w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return &f.buf, f.w.FormDataContentType(), nil
}
