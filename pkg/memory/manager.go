// Package memory implements the long-term memory subsystem: LLM-driven fact
// extraction from user messages, embedding, similarity-based deduplication
// against a vector index, and retrieval of relevant memories for prompting.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/embeddings"
	"github.com/papercomputeco/kin/pkg/llm"
	"github.com/papercomputeco/kin/pkg/persona"
	"github.com/papercomputeco/kin/pkg/vector"
)

const (
	// DefaultSimilarityThreshold is the cosine score at or above which a
	// candidate fact counts as a duplicate of a stored memory.
	DefaultSimilarityThreshold = 0.9

	// DefaultTopK is how many memories retrieval returns for prompting.
	DefaultTopK = 5
)

// analysis is the structured output of the memory-analysis prompt.
type analysis struct {
	IsImportant     bool    `json:"is_important"`
	FormattedMemory *string `json:"formatted_memory"`
}

// Config configures a Manager.
type Config struct {
	// Chat runs the memory-analysis prompt. A small model suffices.
	Chat llm.Client

	// Model overrides the chat client's default model when non-empty.
	Model string

	// Embedder produces embeddings for dedup and retrieval.
	Embedder embeddings.Embedder

	// Index is the vector store holding memory records.
	Index vector.Index

	// Dimensions is the process-wide embedding dimension, fixed at start.
	Dimensions uint

	// SimilarityThreshold overrides DefaultSimilarityThreshold when > 0.
	SimilarityThreshold float32

	// TopK overrides DefaultTopK when > 0.
	TopK int
}

// Manager owns the extract-dedup-store pipeline and memory retrieval. All of
// its failures are absorbed and logged; a broken memory backend degrades the
// companion to stateless replies, it never breaks a turn.
type Manager struct {
	chat       llm.Client
	model      string
	embedder   embeddings.Embedder
	index      vector.Index
	dimensions uint
	threshold  float32
	topK       int
	logger     *zap.Logger
}

// NewManager creates a Manager from the given configuration.
func NewManager(cfg Config, logger *zap.Logger) *Manager {
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &Manager{
		chat:       cfg.Chat,
		model:      cfg.Model,
		embedder:   cfg.Embedder,
		index:      cfg.Index,
		dimensions: cfg.Dimensions,
		threshold:  threshold,
		topK:       topK,
		logger:     logger,
	}
}

// ExtractAndStore analyzes one message for a durable personal fact and, when
// one is found, stores it deduplicated against existing memories. Non-user
// and empty messages are skipped. Failures are logged, never propagated.
func (m *Manager) ExtractAndStore(ctx context.Context, msg llm.Message) {
	if msg.Role != llm.RoleUser || strings.TrimSpace(msg.Content) == "" {
		return
	}

	fact, ok := m.analyze(ctx, msg.Content)
	if !ok {
		return
	}

	if !m.ensureCollection(ctx) {
		return
	}

	embedding, err := m.embedder.Embed(ctx, fact)
	if err != nil {
		m.logger.Warn("memory embed failed", zap.Error(err))
		return
	}

	// One embedding serves both the dedup search and the upsert.
	id := m.resolveID(ctx, fact, embedding)

	rec := vector.Record{
		ID:     id,
		Vector: embedding,
		Payload: vector.Payload{
			Text:      fact,
			Timestamp: time.Now().UTC(),
		},
	}
	if err := m.index.Upsert(ctx, rec); err != nil {
		m.logger.Warn("memory upsert failed", zap.String("id", id), zap.Error(err))
		return
	}

	m.logger.Debug("memory stored", zap.String("id", id), zap.String("text", fact))
}

// GetRelevantMemories returns up to topK stored facts relevant to the query,
// most similar first. Any failure yields an empty slice.
func (m *Manager) GetRelevantMemories(ctx context.Context, query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	if !m.index.CollectionExists(ctx) {
		return nil
	}

	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		m.logger.Warn("memory query embed failed", zap.Error(err))
		return nil
	}

	hits, err := m.index.Search(ctx, embedding, m.topK)
	if err != nil {
		m.logger.Warn("memory search failed", zap.Error(err))
		return nil
	}

	memories := make([]string, 0, len(hits))
	for _, hit := range hits {
		if hit.Payload.Text == "" {
			continue
		}
		memories = append(memories, hit.Payload.Text)
	}

	return memories
}

// FormatForPrompt renders memories as a bullet list for the character card's
// user-background slot. Returns "" when there is nothing to inject.
func FormatForPrompt(memories []string) string {
	if len(memories) == 0 {
		return ""
	}

	lines := make([]string, 0, len(memories))
	for _, mem := range memories {
		lines = append(lines, "- "+mem)
	}

	return strings.Join(lines, "\n")
}

// analyze runs the memory-analysis prompt and returns the formatted fact.
// ok is false when the message holds no durable fact or analysis failed.
func (m *Manager) analyze(ctx context.Context, content string) (string, bool) {
	out, err := m.chat.Complete(ctx, &llm.ChatRequest{
		Model: m.model,
		Messages: []llm.Message{
			llm.NewUserMessage(fmt.Sprintf(persona.MemoryAnalysisPrompt, content)),
		},
		Temperature: llm.Float64(0.1),
		JSON:        true,
	})
	if err != nil {
		m.logger.Warn("memory analysis failed", zap.Error(err))
		return "", false
	}

	var result analysis
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		m.logger.Warn("memory analysis unparseable", zap.String("output", out), zap.Error(err))
		return "", false
	}

	if !result.IsImportant || result.FormattedMemory == nil {
		return "", false
	}

	fact := strings.TrimSpace(*result.FormattedMemory)
	if fact == "" {
		return "", false
	}

	return fact, true
}

// ensureCollection lazily creates the backing collection on first write.
func (m *Manager) ensureCollection(ctx context.Context) bool {
	if m.index.CollectionExists(ctx) {
		return true
	}

	if err := m.index.CreateCollection(ctx, m.dimensions); err != nil {
		m.logger.Warn("memory collection create failed", zap.Error(err))
		return false
	}

	return true
}

// resolveID picks the record id for a fact: a near-duplicate at or above the
// similarity threshold reuses the stored record's id so the upsert updates it
// in place; otherwise the fact gets a fresh id.
func (m *Manager) resolveID(ctx context.Context, fact string, embedding []float32) string {
	hits, err := m.index.Search(ctx, embedding, 1)
	if err != nil {
		m.logger.Warn("memory dedup search failed", zap.Error(err))
		return uuid.NewString()
	}

	if len(hits) > 0 && hits[0].Score >= m.threshold {
		m.logger.Debug("memory deduplicated",
			zap.String("id", hits[0].ID),
			zap.String("existing", hits[0].Payload.Text),
			zap.String("incoming", fact),
			zap.Float32("score", hits[0].Score))
		return hits[0].ID
	}

	return uuid.NewString()
}
