package image

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/llm"
	"github.com/papercomputeco/kin/pkg/persona"
)

// Scenario is a first-person moment the companion is "experiencing", with a
// narrative to send as text and a visual prompt to render.
type Scenario struct {
	Narrative   string `json:"narrative"`
	ImagePrompt string `json:"image_prompt"`
}

// ComposerConfig configures a Composer.
type ComposerConfig struct {
	// Chat runs the scenario and enhancement prompts.
	Chat llm.Client

	// Model overrides the chat client's default model when non-empty.
	Model string

	// HistoryWindow caps how many trailing messages feed the scenario.
	HistoryWindow int
}

// Composer builds scenarios from conversation history and enhances visual
// prompts before rendering.
type Composer struct {
	chat   llm.Client
	model  string
	window int
	logger *zap.Logger
}

// NewComposer creates a Composer from the given configuration.
func NewComposer(cfg ComposerConfig, logger *zap.Logger) *Composer {
	window := cfg.HistoryWindow
	if window <= 0 {
		window = 6
	}

	return &Composer{
		chat:   cfg.Chat,
		model:  cfg.Model,
		window: window,
		logger: logger,
	}
}

// Compose synthesizes a scenario from the conversation. When the model's
// output cannot be parsed, it falls back to using the latest user text as
// the visual prompt so the turn can still render.
func (c *Composer) Compose(ctx context.Context, messages []llm.Message) (*Scenario, error) {
	history := persona.RenderHistory(messages, c.window)

	out, err := c.chat.Complete(ctx, &llm.ChatRequest{
		Model: c.model,
		Messages: []llm.Message{
			llm.NewUserMessage(fmt.Sprintf(persona.ImageScenarioPrompt, history)),
		},
		Temperature: llm.Float64(0.4),
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario synthesis: %w", err)
	}

	var scenario Scenario
	if err := json.Unmarshal([]byte(out), &scenario); err != nil || scenario.ImagePrompt == "" {
		c.logger.Warn("scenario output unparseable, falling back to user text",
			zap.String("output", out))
		return fallbackScenario(messages), nil
	}

	return &scenario, nil
}

// fallbackEnhancementSuffix is appended to the raw prompt when enhancement
// fails, so the render still gets basic quality direction.
const fallbackEnhancementSuffix = ", high quality, detailed, professional, 4k"

// Enhance upgrades a visual prompt with style and composition detail. On
// any failure the original prompt is returned with a basic quality suffix.
func (c *Composer) Enhance(ctx context.Context, prompt string) string {
	out, err := c.chat.Complete(ctx, &llm.ChatRequest{
		Model: c.model,
		Messages: []llm.Message{
			llm.NewUserMessage(fmt.Sprintf(persona.ImageEnhancementPrompt, prompt)),
		},
		Temperature: llm.Float64(0.25),
		JSON:        true,
	})
	if err != nil {
		c.logger.Warn("prompt enhancement failed", zap.Error(err))
		return prompt + fallbackEnhancementSuffix
	}

	var result struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil || result.Content == "" {
		c.logger.Warn("prompt enhancement unparseable", zap.String("output", out))
		return prompt + fallbackEnhancementSuffix
	}

	return result.Content
}

func fallbackScenario(messages []llm.Message) *Scenario {
	prompt := "a quiet everyday moment in Karachi, photorealistic"
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser && messages[i].Content != "" {
			prompt = messages[i].Content
			break
		}
	}

	return &Scenario{
		Narrative:   "check this out",
		ImagePrompt: prompt,
	}
}
