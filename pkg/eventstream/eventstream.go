// Package eventstream emits turn-completed events for downstream consumers
// (analytics, moderation, replay). Publishing is best-effort: a broker
// outage never blocks or fails a turn.
package eventstream

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SchemaVersionV1 is the current turn event schema version.
const SchemaVersionV1 = "v1"

// EventTypeTurnCompleted identifies the turn-completed event type.
const EventTypeTurnCompleted = "turn.completed"

// ErrNilTurnEvent is returned when a nil event is published.
var ErrNilTurnEvent = errors.New("nil turn event")

// TurnCompletedEvent describes one finished turn.
type TurnCompletedEvent struct {
	// SchemaVersion is the event schema version, SchemaVersionV1.
	SchemaVersion string `json:"schema_version"`

	// EventType is EventTypeTurnCompleted.
	EventType string `json:"event_type"`

	// EventID uniquely identifies this event.
	EventID string `json:"event_id"`

	// EmittedAt is when the event was created.
	EmittedAt time.Time `json:"emitted_at"`

	// ThreadID is the conversation the turn belongs to.
	ThreadID string `json:"thread_id"`

	// Workflow is the workflow that produced the response.
	Workflow string `json:"workflow"`

	// Degraded reports whether the turn fell back from its routed workflow.
	Degraded bool `json:"degraded"`

	// MessageCount is the thread's history length after the turn.
	MessageCount int `json:"message_count"`

	// ThreadVersion is the thread's persisted version after the turn.
	ThreadVersion int64 `json:"thread_version"`
}

// NewTurnCompletedEvent builds a v1 turn event with a fresh id and emission
// timestamp.
func NewTurnCompletedEvent(threadID, workflow string, degraded bool, messageCount int, threadVersion int64) *TurnCompletedEvent {
	return &TurnCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		ThreadID:      threadID,
		Workflow:      workflow,
		Degraded:      degraded,
		MessageCount:  messageCount,
		ThreadVersion: threadVersion,
	}
}

// Publisher emits turn events.
type Publisher interface {
	// Publish emits one event. Implementations key the event by thread id
	// so per-thread ordering survives partitioning.
	Publish(ctx context.Context, event *TurnCompletedEvent) error

	// Close flushes and releases the publisher.
	Close() error
}
