// Package image covers the visual side of the companion: composing a
// first-person scenario from the conversation, enhancing the visual prompt,
// rendering it through an image provider, and analyzing user-sent images.
package image

import (
	"context"
	"errors"
)

// ErrRender is returned when the image provider fails to produce an image.
var ErrRender = errors.New("image render failed")

// Renderer turns a visual prompt into image bytes.
type Renderer interface {
	// Render generates an image for the prompt, returning the encoded bytes
	// and their MIME type.
	Render(ctx context.Context, prompt string) ([]byte, string, error)
}

// Analyzer describes user-sent images so the conversation generator can
// react to them in text.
type Analyzer interface {
	// Analyze returns a textual description of the image, guided by an
	// optional question from the user.
	Analyze(ctx context.Context, data []byte, mimeType, question string) (string, error)
}
