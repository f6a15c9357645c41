// Package session persists per-thread conversation state: the message
// history, the workflow selected for the last turn, and any staged output
// awaiting delivery.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/papercomputeco/kin/pkg/llm"
)

// ErrNotFound is returned when a thread id has no stored state.
var ErrNotFound = errors.New("thread not found")

// Thread is the durable state of one conversation.
type Thread struct {
	// ID identifies the conversation, typically the transport's thread id.
	ID string `json:"id"`

	// Messages is the full history, oldest first.
	Messages []llm.Message `json:"messages"`

	// Workflow is the workflow selected for the most recent turn.
	Workflow string `json:"workflow"`

	// PendingOutput references media staged by a generator and not yet
	// delivered. Empty once the turn's response has been handed back.
	PendingOutput string `json:"pending_output,omitempty"`

	// Version increments on every save.
	Version int64 `json:"version"`

	// UpdatedAt is the time of the last save.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewThread creates an empty thread for the given id.
func NewThread(id string) *Thread {
	return &Thread{ID: id}
}

// Store is the thread persistence contract. Implementations are safe for
// concurrent use; the workflow engine serializes writes per thread above
// this layer.
type Store interface {
	// Load returns the stored thread, or ErrNotFound.
	Load(ctx context.Context, id string) (*Thread, error)

	// Save persists the thread, bumping its version and timestamp.
	Save(ctx context.Context, thread *Thread) error

	// Close releases any resources held by the store.
	Close() error
}
