package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/image"
	"github.com/papercomputeco/kin/pkg/speech"
	"github.com/papercomputeco/kin/pkg/workflow"
)

// Server is the webhook API server.
type Server struct {
	config      Config
	engine      *workflow.Engine
	analyzer    image.Analyzer
	transcriber speech.Transcriber
	logger      *zap.Logger
	app         *fiber.App
}

// NewServer creates the webhook server. The analyzer and transcriber are
// optional; without them image and audio turns arrive as plain text.
func NewServer(config Config, engine *workflow.Engine, analyzer image.Analyzer,
	transcriber speech.Transcriber, logger *zap.Logger) *Server {
	bodyLimit := config.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 32 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
	})

	s := &Server{
		config:      config,
		engine:      engine,
		analyzer:    analyzer,
		transcriber: transcriber,
		logger:      logger,
		app:         app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/webhook", s.handleVerify)
	app.Post("/webhook", s.handleMessage)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting webhook server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}
