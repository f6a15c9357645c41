// Package config holds the kin configuration: defaults, the config.toml
// file, KIN_-prefixed environment variables, and CLI flag binding, in that
// ascending order of precedence.
package config

// Config is the full kin configuration. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Chat        ChatConfig        `mapstructure:"chat"`
	Router      RouterConfig      `mapstructure:"router"`
	Memory      MemoryConfig      `mapstructure:"memory"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Session     SessionConfig     `mapstructure:"session"`
	Image       ImageConfig       `mapstructure:"image"`
	Speech      SpeechConfig      `mapstructure:"speech"`
	Events      EventsConfig      `mapstructure:"events"`
	API         APIConfig         `mapstructure:"api"`
}

// ChatConfig holds the chat completion provider settings.
type ChatConfig struct {
	// BaseURL is the openai-compatible API root without the /v1 suffix.
	BaseURL string `mapstructure:"base_url"`

	// APIKey authenticates against the provider.
	APIKey string `mapstructure:"api_key"`

	// Model is the primary conversation model.
	Model string `mapstructure:"model"`

	// SmallModel runs cheap auxiliary prompts (routing, memory analysis).
	SmallModel string `mapstructure:"small_model"`
}

// RouterConfig holds modality routing settings.
type RouterConfig struct {
	// HistoryWindow is how many trailing messages the classifier sees.
	HistoryWindow int `mapstructure:"history_window"`
}

// MemoryConfig holds long-term memory settings.
type MemoryConfig struct {
	// Enabled toggles the memory subsystem.
	Enabled bool `mapstructure:"enabled"`

	// SimilarityThreshold is the cosine score treated as a duplicate.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`

	// TopK is how many memories retrieval injects into the prompt.
	TopK int `mapstructure:"top_k"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Target     string `mapstructure:"target"`
	Model      string `mapstructure:"model"`
	Dimensions uint   `mapstructure:"dimensions"`
}

// VectorStoreConfig holds vector index settings.
type VectorStoreConfig struct {
	// Provider is qdrant, sqlite, or inmemory.
	Provider string `mapstructure:"provider"`

	// Target is host:port for qdrant or a file path for sqlite.
	Target string `mapstructure:"target"`

	// Collection overrides the default collection name.
	Collection string `mapstructure:"collection"`

	// APIKey authenticates against a managed qdrant.
	APIKey string `mapstructure:"api_key"`

	// UseTLS enables TLS for the qdrant connection.
	UseTLS bool `mapstructure:"use_tls"`
}

// SessionConfig holds thread persistence settings.
type SessionConfig struct {
	// SQLitePath is the thread database path, or ":memory:".
	SQLitePath string `mapstructure:"sqlite_path"`
}

// ImageConfig holds image generation and vision settings.
type ImageConfig struct {
	// Provider target for rendering.
	Target string `mapstructure:"target"`

	// Model is the image generation model.
	Model string `mapstructure:"model"`

	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`

	// VisionModel analyzes user-sent images.
	VisionModel string `mapstructure:"vision_model"`
}

// SpeechConfig holds text-to-speech and transcription settings.
type SpeechConfig struct {
	// Enabled toggles voice replies and voice-note transcription.
	Enabled bool `mapstructure:"enabled"`

	// BaseURL is the openai-compatible audio API root.
	BaseURL string `mapstructure:"base_url"`

	// APIKey authenticates against the audio provider.
	APIKey string `mapstructure:"api_key"`

	// Voice is the synthesis voice.
	Voice string `mapstructure:"voice"`

	// SpeechModel synthesizes audio; TranscribeModel transcribes it.
	SpeechModel     string `mapstructure:"speech_model"`
	TranscribeModel string `mapstructure:"transcribe_model"`
}

// EventsConfig holds turn event emission settings.
type EventsConfig struct {
	// Provider is kafka or none.
	Provider string `mapstructure:"provider"`

	// Brokers is the Kafka broker list.
	Brokers []string `mapstructure:"brokers"`

	// Topic overrides the default turn topic.
	Topic string `mapstructure:"topic"`
}

// APIConfig holds webhook server settings.
type APIConfig struct {
	// Listen is the webhook listen address.
	Listen string `mapstructure:"listen"`

	// VerifyToken validates webhook verification requests.
	VerifyToken string `mapstructure:"verify_token"`
}
