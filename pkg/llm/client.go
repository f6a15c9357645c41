package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the provider responds without any
// assistant content.
var ErrEmptyCompletion = errors.New("empty completion")

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	// Model overrides the client's default model when non-empty.
	Model string

	// System is the system prompt, sent ahead of Messages.
	System string

	// Messages is the conversation so far, oldest first.
	Messages []Message

	// Temperature, when non-nil, overrides the provider default.
	Temperature *float64

	// MaxTokens caps the completion length when > 0.
	MaxTokens int

	// JSON requests structured JSON output from the provider.
	JSON bool
}

// Client is the chat completion capability consumed by the core. The router,
// the memory analyzer, and the generators all speak through this interface so
// tests can script responses.
type Client interface {
	// Complete runs a chat completion and returns the assistant text.
	Complete(ctx context.Context, req *ChatRequest) (string, error)
}

// Float64 returns a pointer to v, for ChatRequest.Temperature literals.
func Float64(v float64) *float64 {
	return &v
}
