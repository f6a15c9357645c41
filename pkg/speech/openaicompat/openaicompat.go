// Package openaicompat implements pkg/speech against openai-compatible
// /v1/audio endpoints (OpenAI, Groq's whisper surface, ElevenLabs proxies).
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/kin/pkg/speech"
)

const (
	// DefaultBaseURL targets the OpenAI API root without the /v1 suffix.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultSpeechModel is the default text-to-speech model.
	DefaultSpeechModel = "tts-1"

	// DefaultVoice is the default synthesis voice.
	DefaultVoice = "onyx"

	// DefaultTranscribeModel is the default speech-to-text model.
	DefaultTranscribeModel = "whisper-1"

	// maxSpeechInput is the provider's input length cap for synthesis.
	maxSpeechInput = 4096
)

// Config holds configuration for the speech client.
type Config struct {
	// BaseURL is the API root without the /v1 suffix. Defaults to
	// DefaultBaseURL.
	BaseURL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// SpeechModel overrides DefaultSpeechModel when non-empty.
	SpeechModel string

	// Voice overrides DefaultVoice when non-empty.
	Voice string

	// TranscribeModel overrides DefaultTranscribeModel when non-empty.
	TranscribeModel string

	// Timeout bounds each call. Defaults to 60s.
	Timeout time.Duration
}

// Client speaks the openai-compatible audio endpoints. It implements both
// speech.Synthesizer and speech.Transcriber.
type Client struct {
	baseURL         string
	apiKey          string
	speechModel     string
	voice           string
	transcribeModel string
	httpClient      *http.Client
}

var (
	_ speech.Synthesizer = (*Client)(nil)
	_ speech.Transcriber = (*Client)(nil)
)

// NewClient creates a speech client from the given configuration.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	speechModel := cfg.SpeechModel
	if speechModel == "" {
		speechModel = DefaultSpeechModel
	}

	voice := cfg.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	transcribeModel := cfg.TranscribeModel
	if transcribeModel == "" {
		transcribeModel = DefaultTranscribeModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          cfg.APIKey,
		speechModel:     speechModel,
		voice:           voice,
		transcribeModel: transcribeModel,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

// Synthesize converts text to audio via /v1/audio/speech. Returns MP3.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if len(text) > maxSpeechInput {
		text = text[:maxSpeechInput-3] + "..."
	}

	payload := map[string]any{
		"model":           c.speechModel,
		"input":           text,
		"voice":           c.voice,
		"response_format": "mp3",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", fmt.Errorf("speech API error (status %d): %s", resp.StatusCode, string(errBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("empty audio response")
	}

	return audio, "audio/mpeg", nil
}

// Transcribe converts audio to text via /v1/audio/transcriptions.
func (c *Client) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty audio data")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio"+extensionFor(mimeType))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}

	if err := writer.WriteField("model", c.transcribeModel); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API error (status %d): %s", resp.StatusCode, string(raw))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return result.Text, nil
}

func extensionFor(mimeType string) string {
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ".ogg"
	}
	return exts[0]
}
