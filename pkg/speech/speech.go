// Package speech provides text-to-speech synthesis for voice replies and
// speech-to-text transcription for user voice notes, both over
// openai-compatible audio endpoints.
package speech

import "context"

// Synthesizer converts reply text into audio.
type Synthesizer interface {
	// Synthesize converts text to audio, returning the encoded bytes and
	// their MIME type.
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}

// Transcriber converts user audio into text.
type Transcriber interface {
	// Transcribe returns the text spoken in the audio.
	Transcribe(ctx context.Context, data []byte, mimeType string) (string, error)
}
