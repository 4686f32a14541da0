package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"docsage/internal/session"
)

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	c := New(session.NewMemStore())
	resp, err := c.Get(context.Background(), url)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return resp
}

func TestDecodeJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"report.pdf"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	if err := DecodeJSON(get(t, srv.URL), &out, "fallback"); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if out.Name != "report.pdf" {
		t.Errorf("name = %q, want report.pdf", out.Name)
	}
}

func TestDecodeJSON_ErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"file too large"}`))
	}))
	defer srv.Close()

	err := DecodeJSON(get(t, srv.URL), nil, "upload failed")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "file too large" {
		t.Errorf("message = %q, want %q", apiErr.Message, "file too large")
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.Status)
	}
}

func TestDecodeJSON_ErrorDescription(t *testing.T) {
	// The auth service reports errors under "description".
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"description":"invalid credentials"}`))
	}))
	defer srv.Close()

	err := DecodeJSON(get(t, srv.URL), nil, "login failed")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "invalid credentials" {
		t.Errorf("message = %q, want %q", apiErr.Message, "invalid credentials")
	}
}

func TestDecodeJSON_ErrorUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	err := DecodeJSON(get(t, srv.URL), nil, "operation failed")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "operation failed" {
		t.Errorf("message = %q, want fallback %q", apiErr.Message, "operation failed")
	}
}

func TestCheckStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/err" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"no such document"}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if err := CheckStatus(get(t, srv.URL+"/ok"), "failed"); err != nil {
		t.Errorf("CheckStatus on 200: %v", err)
	}

	err := CheckStatus(get(t, srv.URL+"/err"), "failed")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "no such document" {
		t.Errorf("message = %q", apiErr.Message)
	}
}
