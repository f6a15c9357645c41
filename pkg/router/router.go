// Package router classifies each inbound turn into a response modality:
// conversation, image, or audio.
package router

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/llm"
	"github.com/papercomputeco/kin/pkg/persona"
)

// Modality is the kind of response the companion will produce for a turn.
type Modality string

const (
	ModalityConversation Modality = "conversation"
	ModalityImage        Modality = "image"
	ModalityAudio        Modality = "audio"
)

// DefaultHistoryWindow is how many trailing messages the classifier sees.
const DefaultHistoryWindow = 6

// ParseModality maps classifier output onto the closed modality set. Any
// unrecognized label falls back to conversation.
func ParseModality(s string) Modality {
	switch Modality(strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `'".`)))) {
	case ModalityImage:
		return ModalityImage
	case ModalityAudio:
		return ModalityAudio
	default:
		return ModalityConversation
	}
}

// Config configures a Router.
type Config struct {
	// Chat runs the classification prompt.
	Chat llm.Client

	// Model overrides the chat client's default model when non-empty.
	Model string

	// HistoryWindow overrides DefaultHistoryWindow when > 0.
	HistoryWindow int
}

// Router decides the modality of the next response. It is deterministic for
// turns carrying image markers and otherwise delegates to the classifier,
// failing open to conversation.
type Router struct {
	chat   llm.Client
	model  string
	window int
	logger *zap.Logger
}

// NewRouter creates a Router from the given configuration.
func NewRouter(cfg Config, logger *zap.Logger) *Router {
	window := cfg.HistoryWindow
	if window <= 0 {
		window = DefaultHistoryWindow
	}

	return &Router{
		chat:   cfg.Chat,
		model:  cfg.Model,
		window: window,
		logger: logger,
	}
}

// Classify picks the modality for the next response given the conversation
// so far, newest message last. A latest user turn that carries an image
// marker is always conversation, regardless of what the classifier would
// say. Classifier failure also yields conversation.
func (r *Router) Classify(ctx context.Context, messages []llm.Message) Modality {
	if latest := latestUserContent(messages); hasImageMarker(latest) {
		return ModalityConversation
	}

	out, err := r.chat.Complete(ctx, &llm.ChatRequest{
		Model:       r.model,
		System:      persona.RouterPrompt,
		Messages:    window(messages, r.window),
		Temperature: llm.Float64(0.3),
		MaxTokens:   10,
	})
	if err != nil {
		r.logger.Warn("modality classification failed", zap.Error(err))
		return ModalityConversation
	}

	return ParseModality(out)
}

// latestUserContent returns the content of the newest user message, or "".
func latestUserContent(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func hasImageMarker(content string) bool {
	return strings.Contains(content, persona.MarkerUserImage) ||
		strings.Contains(content, persona.MarkerImageAnalysis)
}

func window(messages []llm.Message, n int) []llm.Message {
	if len(messages) > n {
		return messages[len(messages)-n:]
	}
	return messages
}
