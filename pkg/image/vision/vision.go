// Package vision analyzes user-sent images through an openai-compatible
// multimodal chat endpoint.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/kin/pkg/image"
	"github.com/papercomputeco/kin/pkg/llm"
)

const (
	// DefaultBaseURL targets the Groq cloud API.
	DefaultBaseURL = "https://api.groq.com/openai"

	// DefaultModel is the default vision model.
	DefaultModel = "llama-3.2-90b-vision-preview"

	// DefaultQuestion guides the description when the user attached no text.
	DefaultQuestion = "Describe what you see in this image in detail."
)

// Config holds configuration for the vision analyzer.
type Config struct {
	// BaseURL is the API root without the /v1 suffix. Defaults to
	// DefaultBaseURL.
	BaseURL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Model overrides DefaultModel when non-empty.
	Model string

	// Timeout bounds each analysis call. Defaults to 60s.
	Timeout time.Duration
}

// Analyzer describes images via multimodal chat completions.
type Analyzer struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ image.Analyzer = (*Analyzer)(nil)

// NewAnalyzer creates a vision analyzer from the given configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Analyzer{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type visionMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type visionRequest struct {
	Model     string          `json:"model"`
	Messages  []visionMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Analyze returns a textual description of the image.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, mimeType, question string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if question == "" {
		question = DefaultQuestion
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	body := visionRequest{
		Model: a.model,
		Messages: []visionMessage{{
			Role: llm.RoleUser,
			Content: []contentPart{
				{Type: "text", Text: question},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
			},
		}},
		MaxTokens: 1000,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision API error (status %d): %s", resp.StatusCode, string(raw))
	}

	var result visionResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("vision provider error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyCompletion
	}

	return result.Choices[0].Message.Content, nil
}
