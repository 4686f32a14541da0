package authsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docsage/internal/session"
	"docsage/internal/transport"
)

func newTestClient(baseURL string) (*Client, *session.MemStore) {
	sessions := session.NewMemStore()
	return New(baseURL, transport.New(sessions), sessions), sessions
}

func TestLogin_StoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "bob@example.com" {
			t.Errorf("email = %q", body["email"])
		}
		json.NewEncoder(w).Encode(LoginResponse{AccessToken: "jwt-token", TokenType: "bearer"})
	}))
	defer srv.Close()

	c, sessions := newTestClient(srv.URL)
	out, err := c.Login(context.Background(), "bob@example.com", "hunter22A")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if out.AccessToken != "jwt-token" {
		t.Errorf("access token = %q", out.AccessToken)
	}

	tok, ok := sessions.Token()
	if !ok || tok != "jwt-token" {
		t.Errorf("stored token = %q, %v; want jwt-token, true", tok, ok)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"description":"invalid email or password"}`))
	}))
	defer srv.Close()

	c, sessions := newTestClient(srv.URL)
	_, err := c.Login(context.Background(), "bob@example.com", "wrong")
	apiErr, ok := transport.AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "invalid email or password" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if _, ok := sessions.Token(); ok {
		t.Error("token stored after failed login")
	}
}

func TestLogin_NoTokenInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, sessions := newTestClient(srv.URL)
	if _, err := c.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, ok := sessions.Token(); ok {
		t.Error("token stored despite empty access_token")
	}
}

func TestLogout_ClearsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c, sessions := newTestClient(srv.URL)
	sessions.SetToken("jwt-token")

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if gotAuth != "Bearer jwt-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if _, ok := sessions.Token(); ok {
		t.Error("token still stored after logout")
	}
}

func TestLogout_ClearsTokenOnRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"description":"session backend down"}`))
	}))
	defer srv.Close()

	c, sessions := newTestClient(srv.URL)
	sessions.SetToken("jwt-token")

	err := c.Logout(context.Background())
	if err == nil {
		t.Fatal("Logout succeeded, want error")
	}
	if _, ok := sessions.Token(); ok {
		t.Error("token still stored after failed logout")
	}
}

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"status":"created"}`))
	}))
	defer srv.Close()

	c, sessions := newTestClient(srv.URL)
	if err := c.Register(context.Background(), "new@example.com", "Passw0rd1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := sessions.Token(); ok {
		t.Error("register must not store a credential")
	}
}
