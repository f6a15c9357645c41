package config

const (
	defaultChatBaseURL = "https://api.groq.com/openai"
	defaultChatModel   = "llama-3.3-70b-versatile"
	defaultSmallModel  = "llama-3.1-8b-instant"

	defaultRouterWindow = 6

	defaultSimilarityThreshold = 0.9
	defaultMemoryTopK          = 5

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "all-minilm"
	defaultEmbeddingDimensions = 384

	defaultVectorProvider   = "qdrant"
	defaultVectorTarget     = "localhost:6334"
	defaultVectorCollection = "long_term_memory"

	defaultSessionPath = "kin.db"

	defaultImageTarget = "https://image.pollinations.ai"
	defaultImageModel  = "flux"
	defaultImageSize   = 1024
	defaultVisionModel = "llama-3.2-90b-vision-preview"

	defaultSpeechBaseURL = "https://api.openai.com"
	defaultVoice         = "onyx"
	defaultSpeechModel   = "tts-1"
	defaultWhisperModel  = "whisper-1"

	defaultEventsProvider = "none"
	defaultEventsTopic    = "kin.turns"

	defaultAPIListen = ":8080"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Chat: ChatConfig{
			BaseURL:    defaultChatBaseURL,
			Model:      defaultChatModel,
			SmallModel: defaultSmallModel,
		},
		Router: RouterConfig{
			HistoryWindow: defaultRouterWindow,
		},
		Memory: MemoryConfig{
			Enabled:             true,
			SimilarityThreshold: defaultSimilarityThreshold,
			TopK:                defaultMemoryTopK,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Target:     defaultVectorTarget,
			Collection: defaultVectorCollection,
		},
		Session: SessionConfig{
			SQLitePath: defaultSessionPath,
		},
		Image: ImageConfig{
			Target:      defaultImageTarget,
			Model:       defaultImageModel,
			Width:       defaultImageSize,
			Height:      defaultImageSize,
			VisionModel: defaultVisionModel,
		},
		Speech: SpeechConfig{
			Enabled:         true,
			BaseURL:         defaultSpeechBaseURL,
			Voice:           defaultVoice,
			SpeechModel:     defaultSpeechModel,
			TranscribeModel: defaultWhisperModel,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
