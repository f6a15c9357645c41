package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if present), and binds environment variables with the KIN_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (KIN_CHAT_API_KEY, KIN_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	if configDir != "" {
		v.AddConfigPath(configDir)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.kin")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("KIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Load unmarshals the resolved configuration.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of
// truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	// Chat
	v.SetDefault("chat.base_url", d.Chat.BaseURL)
	v.SetDefault("chat.api_key", d.Chat.APIKey)
	v.SetDefault("chat.model", d.Chat.Model)
	v.SetDefault("chat.small_model", d.Chat.SmallModel)

	// Router
	v.SetDefault("router.history_window", d.Router.HistoryWindow)

	// Memory
	v.SetDefault("memory.enabled", d.Memory.Enabled)
	v.SetDefault("memory.similarity_threshold", d.Memory.SimilarityThreshold)
	v.SetDefault("memory.top_k", d.Memory.TopK)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	// Vector store
	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)
	v.SetDefault("vector_store.collection", d.VectorStore.Collection)
	v.SetDefault("vector_store.api_key", d.VectorStore.APIKey)
	v.SetDefault("vector_store.use_tls", d.VectorStore.UseTLS)

	// Session
	v.SetDefault("session.sqlite_path", d.Session.SQLitePath)

	// Image
	v.SetDefault("image.target", d.Image.Target)
	v.SetDefault("image.model", d.Image.Model)
	v.SetDefault("image.width", d.Image.Width)
	v.SetDefault("image.height", d.Image.Height)
	v.SetDefault("image.vision_model", d.Image.VisionModel)

	// Speech
	v.SetDefault("speech.enabled", d.Speech.Enabled)
	v.SetDefault("speech.base_url", d.Speech.BaseURL)
	v.SetDefault("speech.api_key", d.Speech.APIKey)
	v.SetDefault("speech.voice", d.Speech.Voice)
	v.SetDefault("speech.speech_model", d.Speech.SpeechModel)
	v.SetDefault("speech.transcribe_model", d.Speech.TranscribeModel)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// API
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.verify_token", d.API.VerifyToken)
}
