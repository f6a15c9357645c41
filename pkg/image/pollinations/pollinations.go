// Package pollinations renders images through the Pollinations HTTP API,
// which serves a generated image directly from a prompt-addressed URL.
package pollinations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/papercomputeco/kin/pkg/image"
)

const (
	// DefaultBaseURL is the public Pollinations image endpoint.
	DefaultBaseURL = "https://image.pollinations.ai"

	// DefaultModel is the image model requested from Pollinations.
	DefaultModel = "flux"

	DefaultWidth  = 1024
	DefaultHeight = 1024

	defaultTimeout = 120 * time.Second
)

// Config configures a Renderer.
type Config struct {
	// BaseURL overrides DefaultBaseURL when non-empty.
	BaseURL string

	// Model overrides DefaultModel when non-empty.
	Model string

	// Width and Height override the default output size when > 0.
	Width  int
	Height int

	// Timeout bounds one render request.
	Timeout time.Duration
}

// Renderer generates images via Pollinations.
type Renderer struct {
	baseURL string
	model   string
	width   int
	height  int
	client  *http.Client
}

var _ image.Renderer = (*Renderer)(nil)

// NewRenderer creates a Pollinations renderer from the given configuration.
func NewRenderer(cfg Config) *Renderer {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	width := cfg.Width
	if width <= 0 {
		width = DefaultWidth
	}

	height := cfg.Height
	if height <= 0 {
		height = DefaultHeight
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Renderer{
		baseURL: baseURL,
		model:   model,
		width:   width,
		height:  height,
		client:  &http.Client{Timeout: timeout},
	}
}

// Render fetches a generated image for the prompt.
func (r *Renderer) Render(ctx context.Context, prompt string) ([]byte, string, error) {
	endpoint := fmt.Sprintf("%s/prompt/%s", r.baseURL, url.PathEscape(prompt))

	query := url.Values{}
	query.Set("width", fmt.Sprintf("%d", r.width))
	query.Set("height", fmt.Sprintf("%d", r.height))
	query.Set("model", r.model)
	query.Set("nologo", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", image.ErrRender, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", image.ErrRender, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: status %d", image.ErrRender, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", image.ErrRender, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty response body", image.ErrRender)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return data, mimeType, nil
}
