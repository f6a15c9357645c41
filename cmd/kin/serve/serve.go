// Package servecmder provides the serve command running the webhook server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/kin/api"
	"github.com/papercomputeco/kin/pkg/config"
	"github.com/papercomputeco/kin/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/kin/pkg/embeddings/utils"
	"github.com/papercomputeco/kin/pkg/eventstream"
	eventskafka "github.com/papercomputeco/kin/pkg/eventstream/kafka"
	"github.com/papercomputeco/kin/pkg/image"
	"github.com/papercomputeco/kin/pkg/image/pollinations"
	"github.com/papercomputeco/kin/pkg/image/vision"
	"github.com/papercomputeco/kin/pkg/llm/openaicompat"
	"github.com/papercomputeco/kin/pkg/logger"
	"github.com/papercomputeco/kin/pkg/memory"
	"github.com/papercomputeco/kin/pkg/persona"
	"github.com/papercomputeco/kin/pkg/router"
	"github.com/papercomputeco/kin/pkg/session"
	"github.com/papercomputeco/kin/pkg/speech"
	speechcompat "github.com/papercomputeco/kin/pkg/speech/openaicompat"
	"github.com/papercomputeco/kin/pkg/vector"
	vectorutils "github.com/papercomputeco/kin/pkg/vector/utils"
	"github.com/papercomputeco/kin/pkg/workflow"
)

type ServeCommander struct {
	configDir      string
	listen         string
	verifyToken    string
	model          string
	smallModel     string
	sessionPath    string
	vectorProvider string
	vectorTarget   string
	embeddingTgt   string
	embeddingModel string
	embeddingDims  uint
	eventsProvider string
	debug          bool
	logger         *zap.Logger
}

const serveLongDesc string = `Run the kin webhook server.

The server accepts inbound messages on POST /webhook, routes each turn to a
conversation, image, or audio response, and persists thread state and
long-term memories between turns.`

const serveShortDesc string = "Run the kin webhook server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configDir, "config-dir", "c", "", "Directory holding config.toml")

	fs := config.ServeFlags
	config.AddStringFlag(cmd, fs, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, fs, config.FlagVerifyToken, &cmder.verifyToken)
	config.AddStringFlag(cmd, fs, config.FlagChatModel, &cmder.model)
	config.AddStringFlag(cmd, fs, config.FlagSmallModel, &cmder.smallModel)
	config.AddStringFlag(cmd, fs, config.FlagSessionPath, &cmder.sessionPath)
	config.AddStringFlag(cmd, fs, config.FlagVectorProvider, &cmder.vectorProvider)
	config.AddStringFlag(cmd, fs, config.FlagVectorTarget, &cmder.vectorTarget)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingTgt, &cmder.embeddingTgt)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, fs, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, fs, config.FlagEventsProvider, &cmder.eventsProvider)

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}

	config.BindRegisteredFlags(v, cmd, config.ServeFlags, []string{
		config.FlagListen,
		config.FlagVerifyToken,
		config.FlagChatModel,
		config.FlagSmallModel,
		config.FlagSessionPath,
		config.FlagVectorProvider,
		config.FlagVectorTarget,
		config.FlagEmbeddingTgt,
		config.FlagEmbeddingModel,
		config.FlagEmbeddingDims,
		config.FlagEventsProvider,
	})

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	ctx := context.Background()

	chat := openaicompat.NewClient(openaicompat.Config{
		BaseURL: cfg.Chat.BaseURL,
		APIKey:  cfg.Chat.APIKey,
		Model:   cfg.Chat.Model,
	})
	smallChat := openaicompat.NewClient(openaicompat.Config{
		BaseURL: cfg.Chat.BaseURL,
		APIKey:  cfg.Chat.APIKey,
		Model:   cfg.Chat.SmallModel,
	})

	store, err := session.NewSQLiteStore(cfg.Session.SQLitePath)
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}
	defer store.Close()
	c.logger.Info("using sqlite session store", zap.String("path", cfg.Session.SQLitePath))

	mem, embedder, index, err := c.createMemory(ctx, cfg, smallChat)
	if err != nil {
		return err
	}
	if embedder != nil {
		defer embedder.Close()
	}
	if index != nil {
		defer index.Close()
	}

	publisher, err := c.createPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	var (
		synthesizer *speechcompat.Client
		transcriber *speechcompat.Client
	)
	if cfg.Speech.Enabled {
		speechClient := speechcompat.NewClient(speechcompat.Config{
			BaseURL:         cfg.Speech.BaseURL,
			APIKey:          cfg.Speech.APIKey,
			SpeechModel:     cfg.Speech.SpeechModel,
			Voice:           cfg.Speech.Voice,
			TranscribeModel: cfg.Speech.TranscribeModel,
		})
		synthesizer = speechClient
		transcriber = speechClient
	}

	engine := workflow.NewEngine(workflow.Config{
		Chat:    chat,
		Model:   cfg.Chat.Model,
		Router:  router.NewRouter(router.Config{Chat: smallChat, HistoryWindow: cfg.Router.HistoryWindow}, c.logger),
		Memory:  mem,
		Persona: persona.Default(),
		Store:   store,
		Composer: image.NewComposer(image.ComposerConfig{
			Chat: smallChat,
		}, c.logger),
		Renderer: pollinations.NewRenderer(pollinations.Config{
			BaseURL: cfg.Image.Target,
			Model:   cfg.Image.Model,
			Width:   cfg.Image.Width,
			Height:  cfg.Image.Height,
		}),
		Synthesizer: synthesizerOrNil(synthesizer),
		Publisher:   publisher,
	}, c.logger)

	analyzer := vision.NewAnalyzer(vision.Config{
		BaseURL: cfg.Chat.BaseURL,
		APIKey:  cfg.Chat.APIKey,
		Model:   cfg.Image.VisionModel,
	})

	server := api.NewServer(api.Config{
		ListenAddr:  cfg.API.Listen,
		VerifyToken: cfg.API.VerifyToken,
	}, engine, analyzer, transcriberOrNil(transcriber), c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("webhook server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

// createMemory wires the long-term memory subsystem. The embedding
// dimension is fixed here from one sample embedding; a configured dimension
// that disagrees with the model is a fatal misconfiguration.
func (c *ServeCommander) createMemory(ctx context.Context, cfg *config.Config,
	smallChat *openaicompat.Client) (*memory.Manager, embeddings.Embedder, vector.Index, error) {
	if !cfg.Memory.Enabled {
		c.logger.Info("long-term memory disabled")
		return nil, nil, nil, nil
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sample, err := embedder.Embed(probeCtx, "dimension probe")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("probing embedding dimension: %w", err)
	}

	dimensions := uint(len(sample))
	if cfg.Embedding.Dimensions > 0 && cfg.Embedding.Dimensions != dimensions {
		return nil, nil, nil, fmt.Errorf("%w: configured %d, model produces %d",
			vector.ErrDimensionMismatch, cfg.Embedding.Dimensions, dimensions)
	}
	c.logger.Info("embedding dimension fixed",
		zap.String("model", cfg.Embedding.Model),
		zap.Uint("dimensions", dimensions))

	index, err := vectorutils.NewIndex(&vectorutils.NewIndexOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       cfg.VectorStore.Target,
		APIKey:       cfg.VectorStore.APIKey,
		UseTLS:       cfg.VectorStore.UseTLS,
		Collection:   cfg.VectorStore.Collection,
		Dimensions:   dimensions,
		Logger:       c.logger,
	})
	if err != nil {
		embedder.Close()
		return nil, nil, nil, fmt.Errorf("creating vector index: %w", err)
	}

	mem := memory.NewManager(memory.Config{
		Chat:                smallChat,
		Embedder:            embedder,
		Index:               index,
		Dimensions:          dimensions,
		SimilarityThreshold: float32(cfg.Memory.SimilarityThreshold),
		TopK:                cfg.Memory.TopK,
	}, c.logger)

	return mem, embedder, index, nil
}

func (c *ServeCommander) createPublisher(cfg *config.Config) (eventstream.Publisher, error) {
	switch cfg.Events.Provider {
	case "kafka":
		if len(cfg.Events.Brokers) == 0 {
			return nil, fmt.Errorf("events provider kafka requires brokers")
		}
		c.logger.Info("publishing turn events to kafka",
			zap.Strings("brokers", cfg.Events.Brokers),
			zap.String("topic", cfg.Events.Topic))
		return eventskafka.NewPublisher(eventskafka.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
		}), nil
	case "", "none":
		return eventstream.NewNopPublisher(), nil
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", cfg.Events.Provider)
	}
}

// synthesizerOrNil avoids handing the engine a typed-nil interface.
func synthesizerOrNil(client *speechcompat.Client) speech.Synthesizer {
	if client == nil {
		return nil
	}
	return client
}

func transcriberOrNil(client *speechcompat.Client) speech.Transcriber {
	if client == nil {
		return nil
	}
	return client
}
