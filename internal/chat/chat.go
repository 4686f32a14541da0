// Package chat holds the client-side conversation model. A thread is an
// ordered sequence of messages exchanged with the analysis backend; nothing
// here is persisted, threads live for the process lifetime only.
package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested thread or message does not exist.
var ErrNotFound = errors.New("not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	AnalysisID string    `json:"analysisId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Thread is an ordered conversation. Methods are safe for concurrent use.
type Thread struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	mu       sync.Mutex
	messages []Message
}

// Append adds a message to the end of the thread and returns it with its
// generated id and timestamp filled in.
func (t *Thread) Append(role Role, content string) Message {
	msg := Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
	return msg
}

// AttachAnalysis links a backend analysis to an existing message. The
// backend responds after the message is already displayed, so attachment
// happens late.
func (t *Thread) AttachAnalysis(messageID, analysisID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.messages {
		if t.messages[i].ID == messageID {
			t.messages[i].AnalysisID = analysisID
			return nil
		}
	}
	return ErrNotFound
}

// Messages returns a copy of the thread's messages in append order.
func (t *Thread) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// LastAnalysisID returns the analysis linked to the most recent message
// that carries one, or "" for a thread with no analysis yet.
func (t *Thread) LastAnalysisID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].AnalysisID != "" {
			return t.messages[i].AnalysisID
		}
	}
	return ""
}

// Registry tracks the live threads of one client process.
type Registry struct {
	mu      sync.Mutex
	threads map[string]*Thread
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{threads: make(map[string]*Thread)}
}

func (r *Registry) Create(title string) *Thread {
	t := &Thread{ID: uuid.New().String(), Title: title}
	r.mu.Lock()
	r.threads[t.ID] = t
	r.order = append(r.order, t.ID)
	r.mu.Unlock()
	return t
}

func (r *Registry) Get(id string) (*Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

// List returns threads in creation order.
func (r *Registry) List() []*Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Thread, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.threads[id])
	}
	return out
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.threads[id]; !ok {
		return ErrNotFound
	}
	delete(r.threads, id)
	for i, tid := range r.order {
		if tid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
