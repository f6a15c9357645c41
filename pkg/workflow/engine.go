// Package workflow orchestrates one turn of the companion: route the turn
// to a modality, generate the response through that modality's pipeline,
// persist the thread, and emit a turn event. Every inbound turn produces
// exactly one response, even on the error path.
package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/eventstream"
	"github.com/papercomputeco/kin/pkg/image"
	"github.com/papercomputeco/kin/pkg/llm"
	"github.com/papercomputeco/kin/pkg/memory"
	"github.com/papercomputeco/kin/pkg/persona"
	"github.com/papercomputeco/kin/pkg/router"
	"github.com/papercomputeco/kin/pkg/session"
	"github.com/papercomputeco/kin/pkg/speech"
)

// State is a turn's position in the lifecycle.
type State string

const (
	StateRouting    State = "routing"
	StateGenerating State = "generating"
	StatePersisting State = "persisting"
	StateDone       State = "done"
	StateError      State = "error"
)

const (
	// DefaultHistoryLimit caps the stored message history per thread.
	DefaultHistoryLimit = 60

	// DefaultPromptWindow caps how many trailing messages feed the
	// conversation generator.
	DefaultPromptWindow = 20
)

// ErrEmptyInput is returned when a turn arrives with no usable text.
var ErrEmptyInput = errors.New("empty input")

// Media is binary response content alongside the text.
type Media struct {
	MIME string
	Data []byte
}

// Result is the single response produced for one inbound turn.
type Result struct {
	// Workflow is the modality that actually produced the response; it may
	// differ from the routed modality after degradation.
	Workflow router.Modality

	// Degraded reports whether the turn fell back from its routed modality.
	Degraded bool

	// ResponseText is the reply text. For image turns it is the narrative
	// accompanying the image.
	ResponseText string

	// Media is the rendered image or synthesized audio, nil for plain
	// conversation.
	Media *Media
}

// Config configures an Engine.
type Config struct {
	// Chat runs conversation generation on the primary model.
	Chat llm.Client

	// Model overrides the chat client's default model when non-empty.
	Model string

	// Router classifies turns into modalities.
	Router *router.Router

	// Memory is the long-term memory manager. Optional; nil disables
	// memory entirely.
	Memory *memory.Manager

	// Persona is the character being played.
	Persona *persona.Persona

	// Store persists thread state.
	Store session.Store

	// Composer builds image scenarios. Required for image turns.
	Composer *image.Composer

	// Renderer renders images. Required for image turns.
	Renderer image.Renderer

	// Synthesizer voices audio turns. Required for audio turns.
	Synthesizer speech.Synthesizer

	// Publisher emits turn events. Optional; nil disables emission.
	Publisher eventstream.Publisher

	// HistoryLimit overrides DefaultHistoryLimit when > 0.
	HistoryLimit int

	// PromptWindow overrides DefaultPromptWindow when > 0.
	PromptWindow int

	// Clock overrides time.Now, for schedule-sensitive tests.
	Clock func() time.Time
}

// Engine runs turns. Turns on the same thread are serialized; turns on
// different threads run concurrently.
type Engine struct {
	chat        llm.Client
	model       string
	router      *router.Router
	memory      *memory.Manager
	persona     *persona.Persona
	store       session.Store
	composer    *image.Composer
	renderer    image.Renderer
	synthesizer speech.Synthesizer
	publisher   eventstream.Publisher
	history     int
	window      int
	clock       func() time.Time
	logger      *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates an Engine from the given configuration.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	history := cfg.HistoryLimit
	if history <= 0 {
		history = DefaultHistoryLimit
	}

	window := cfg.PromptWindow
	if window <= 0 {
		window = DefaultPromptWindow
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Engine{
		chat:        cfg.Chat,
		model:       cfg.Model,
		router:      cfg.Router,
		memory:      cfg.Memory,
		persona:     cfg.Persona,
		store:       cfg.Store,
		composer:    cfg.Composer,
		renderer:    cfg.Renderer,
		synthesizer: cfg.Synthesizer,
		publisher:   cfg.Publisher,
		history:     history,
		window:      window,
		clock:       clock,
		logger:      logger,
	}
}

// Run executes one turn for the thread and returns its single response.
func (e *Engine) Run(ctx context.Context, threadID, userText string) (*Result, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, ErrEmptyInput
	}

	lock := e.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	thread, err := e.store.Load(ctx, threadID)
	if errors.Is(err, session.ErrNotFound) {
		thread = session.NewThread(threadID)
	} else if err != nil {
		return nil, err
	}

	userMsg := llm.NewUserMessage(userText)
	thread.Messages = append(thread.Messages, userMsg)

	e.logState(threadID, StateRouting)
	routed := e.router.Classify(ctx, thread.Messages)
	e.logger.Debug("turn routed",
		zap.String("thread", threadID),
		zap.String("workflow", string(routed)))

	e.logState(threadID, StateGenerating)
	result := e.generate(ctx, thread, routed)

	thread.Messages = append(thread.Messages, llm.NewAssistantMessage(result.ResponseText))
	if len(thread.Messages) > e.history {
		thread.Messages = thread.Messages[len(thread.Messages)-e.history:]
	}

	e.logState(threadID, StatePersisting)
	thread.Workflow = string(result.Workflow)
	thread.PendingOutput = ""
	if err := e.store.Save(ctx, thread); err != nil {
		// The response already exists; losing this save costs history,
		// not the turn.
		e.logState(threadID, StateError)
		e.logger.Error("thread save failed",
			zap.String("thread", threadID), zap.Error(err))
	}

	if e.memory != nil {
		e.memory.ExtractAndStore(ctx, userMsg)
	}

	e.publish(ctx, thread, result)

	e.logState(threadID, StateDone)
	return result, nil
}

func (e *Engine) logState(threadID string, state State) {
	e.logger.Debug("turn state",
		zap.String("thread", threadID),
		zap.String("state", string(state)))
}

// generate dispatches to the routed modality's pipeline, degrading to
// conversation when a media pipeline cannot deliver.
func (e *Engine) generate(ctx context.Context, thread *session.Thread, routed router.Modality) *Result {
	switch routed {
	case router.ModalityImage:
		return e.generateImage(ctx, thread)
	case router.ModalityAudio:
		return e.generateAudio(ctx, thread)
	default:
		text := e.generateText(ctx, thread)
		return &Result{Workflow: router.ModalityConversation, ResponseText: text}
	}
}

// generateText produces the conversation reply: retrieve relevant memories,
// render the character card with the current activity, and complete. A
// generation failure yields the apology text so the turn still responds.
func (e *Engine) generateText(ctx context.Context, thread *session.Thread) string {
	var memoryContext string
	if e.memory != nil {
		memories := e.memory.GetRelevantMemories(ctx, latestUserText(thread.Messages))
		memoryContext = memory.FormatForPrompt(memories)
	}

	system := e.persona.SystemPrompt(memoryContext, persona.CurrentActivity(e.clock()))

	messages := thread.Messages
	if len(messages) > e.window {
		messages = messages[len(messages)-e.window:]
	}

	text, err := e.chat.Complete(ctx, &llm.ChatRequest{
		Model:       e.model,
		System:      system,
		Messages:    messages,
		Temperature: llm.Float64(0.7),
	})
	if err != nil {
		e.logger.Error("conversation generation failed",
			zap.String("thread", thread.ID), zap.Error(err))
		return persona.ApologyText
	}

	return text
}

// generateImage runs the image pipeline: compose a scenario, enhance the
// prompt, render. The enhanced prompt gets one shot; on failure the raw
// prompt gets one more. Both failing degrades the turn to conversation
// with the narrative as the reply, so no turn ends holding media it
// cannot deliver.
func (e *Engine) generateImage(ctx context.Context, thread *session.Thread) *Result {
	scenario, err := e.composer.Compose(ctx, thread.Messages)
	if err != nil {
		e.logger.Warn("scenario composition failed, degrading to conversation",
			zap.String("thread", thread.ID), zap.Error(err))
		text := e.generateText(ctx, thread)
		return &Result{Workflow: router.ModalityConversation, Degraded: true, ResponseText: text}
	}

	thread.PendingOutput = scenario.ImagePrompt

	enhanced := e.composer.Enhance(ctx, scenario.ImagePrompt)

	data, mimeType, err := e.renderer.Render(ctx, enhanced)
	if err != nil && enhanced != scenario.ImagePrompt {
		e.logger.Warn("enhanced prompt render failed, retrying raw prompt",
			zap.String("thread", thread.ID), zap.Error(err))
		data, mimeType, err = e.renderer.Render(ctx, scenario.ImagePrompt)
	}
	if err != nil {
		e.logger.Warn("image render failed, degrading to conversation",
			zap.String("thread", thread.ID), zap.Error(err))
		thread.PendingOutput = ""
		return &Result{
			Workflow:     router.ModalityConversation,
			Degraded:     true,
			ResponseText: scenario.Narrative,
		}
	}

	thread.PendingOutput = ""
	return &Result{
		Workflow:     router.ModalityImage,
		ResponseText: scenario.Narrative,
		Media:        &Media{MIME: mimeType, Data: data},
	}
}

// generateAudio voices the conversation reply. Synthesis failure degrades
// the turn to plain conversation with the same text.
func (e *Engine) generateAudio(ctx context.Context, thread *session.Thread) *Result {
	text := e.generateText(ctx, thread)

	data, mimeType, err := e.synthesizer.Synthesize(ctx, text)
	if err != nil {
		e.logger.Warn("speech synthesis failed, degrading to conversation",
			zap.String("thread", thread.ID), zap.Error(err))
		return &Result{Workflow: router.ModalityConversation, Degraded: true, ResponseText: text}
	}

	return &Result{
		Workflow:     router.ModalityAudio,
		ResponseText: text,
		Media:        &Media{MIME: mimeType, Data: data},
	}
}

func (e *Engine) publish(ctx context.Context, thread *session.Thread, result *Result) {
	if e.publisher == nil {
		return
	}

	event := eventstream.NewTurnCompletedEvent(thread.ID, string(result.Workflow),
		result.Degraded, len(thread.Messages), thread.Version)
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("turn event publish failed",
			zap.String("thread", thread.ID), zap.Error(err))
	}
}

// threadLock returns the mutex serializing turns on one thread.
func (e *Engine) threadLock(threadID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[threadID]
	if !ok {
		if e.locks == nil {
			e.locks = make(map[string]*sync.Mutex)
		}
		lock = &sync.Mutex{}
		e.locks[threadID] = lock
	}

	return lock
}

func latestUserText(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
