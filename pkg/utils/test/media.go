package testutils

import (
	"context"
	"fmt"
	"sync"
)

// MockRenderer is a test image renderer with failure injection.
type MockRenderer struct {
	mu sync.Mutex

	// Data and MIME are returned on success.
	Data []byte
	MIME string

	// FailCount makes the first n Render calls fail.
	FailCount int

	// Prompts accumulates every rendered prompt.
	Prompts []string

	calls int
}

// NewMockRenderer creates a renderer returning a tiny fake image.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{
		Data: []byte("fake-image-bytes"),
		MIME: "image/jpeg",
	}
}

func (m *MockRenderer) Render(_ context.Context, prompt string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.Prompts = append(m.Prompts, prompt)

	if m.calls <= m.FailCount {
		return nil, "", fmt.Errorf("mock render failure %d", m.calls)
	}

	return m.Data, m.MIME, nil
}

// CallCount returns how many times Render was invoked.
func (m *MockRenderer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockSynthesizer is a test speech synthesizer with failure injection.
type MockSynthesizer struct {
	// Data and MIME are returned on success.
	Data []byte
	MIME string

	// Fail causes Synthesize to return an error.
	Fail bool

	// Texts accumulates every synthesized text.
	Texts []string
}

// NewMockSynthesizer creates a synthesizer returning fake audio.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{
		Data: []byte("fake-audio-bytes"),
		MIME: "audio/mpeg",
	}
}

func (m *MockSynthesizer) Synthesize(_ context.Context, text string) ([]byte, string, error) {
	m.Texts = append(m.Texts, text)

	if m.Fail {
		return nil, "", fmt.Errorf("mock synthesis failure")
	}

	return m.Data, m.MIME, nil
}

// MockTranscriber is a test speech transcriber.
type MockTranscriber struct {
	// Text is returned for any audio.
	Text string

	// Fail causes Transcribe to return an error.
	Fail bool
}

func (m *MockTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	if m.Fail {
		return "", fmt.Errorf("mock transcription failure")
	}
	return m.Text, nil
}

// MockAnalyzer is a test image analyzer.
type MockAnalyzer struct {
	// Description is returned for any image.
	Description string

	// Fail causes Analyze to return an error.
	Fail bool
}

func (m *MockAnalyzer) Analyze(_ context.Context, _ []byte, _, _ string) (string, error) {
	if m.Fail {
		return "", fmt.Errorf("mock analysis failure")
	}
	return m.Description, nil
}
