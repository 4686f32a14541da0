// Package session persists the bearer credential for the current user.
//
// The platform keeps exactly one active credential per installation. It is
// written on successful login or registration, read by every authenticated
// request, and removed on logout. An absent credential is a normal state,
// not an error.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store holds the bearer credential used by authenticated requests.
type Store interface {
	// Token returns the stored credential. ok is false when none is stored.
	Token() (token string, ok bool)
	// SetToken replaces the stored credential.
	SetToken(token string) error
	// Clear removes the stored credential. Clearing an empty store is a no-op.
	Clear() error
}

// fileStore persists the credential as a JSON file under the XDG data dir,
// mode 0600. This is the CLI analogue of the browser's auth cookie.
type fileStore struct {
	mu   sync.Mutex
	path string
}

type credentialFile struct {
	Token string `json:"token"`
}

// NewFileStore creates a Store backed by the default credential file.
func NewFileStore() Store {
	return &fileStore{path: credentialFilePath()}
}

// NewFileStoreAt creates a Store backed by the given path (for testing).
func NewFileStoreAt(path string) Store {
	return &fileStore{path: path}
}

func credentialFilePath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "docsage", "credential.json")
}

func (s *fileStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	var cf credentialFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return "", false
	}
	if cf.Token == "" {
		return "", false
	}
	return cf.Token, true
}

func (s *fileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credential dir: %w", err)
	}
	data, err := json.Marshal(credentialFile{Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *fileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing credential file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and embedded use.
type MemStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemStore creates an empty in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", false
	}
	return m.token, true
}

func (m *MemStore) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.set = true
	return nil
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.set = false
	return nil
}
