package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/persona"
	"github.com/papercomputeco/kin/pkg/workflow"
)

// Inbound message types.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeAudio = "audio"
)

// InboundMessage is one user message delivered by the channel integration.
type InboundMessage struct {
	// ThreadID identifies the conversation.
	ThreadID string `json:"thread_id"`

	// Type is text, image, or audio. Empty means text.
	Type string `json:"type"`

	// Text is the message text, or the caption for media messages.
	Text string `json:"text"`

	// Media is the attachment bytes, base64 in JSON.
	Media []byte `json:"media,omitempty"`

	// MimeType is the attachment's MIME type.
	MimeType string `json:"mime_type,omitempty"`
}

// OutboundMedia is binary response content.
type OutboundMedia struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// OutboundMessage is the companion's single response to an inbound message.
type OutboundMessage struct {
	ThreadID string         `json:"thread_id"`
	Workflow string         `json:"workflow"`
	Degraded bool           `json:"degraded,omitempty"`
	Text     string         `json:"text"`
	Media    *OutboundMedia `json:"media,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handlePing handles GET /ping.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleVerify handles GET /webhook, the hub-style endpoint verification
// used by messaging platforms.
func (s *Server) handleVerify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || s.config.VerifyToken == "" || token != s.config.VerifyToken {
		return c.Status(fiber.StatusForbidden).JSON(errorResponse{
			Error: "verification failed",
		})
	}

	return c.SendString(challenge)
}

// handleMessage handles POST /webhook.
func (s *Server) handleMessage(c *fiber.Ctx) error {
	var msg InboundMessage
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error: "invalid request body",
		})
	}

	if msg.ThreadID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error: "thread_id is required",
		})
	}

	userText, err := s.inboundText(c, &msg)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(errorResponse{
			Error: "failed to transcribe audio",
		})
	}

	result, err := s.engine.Run(c.Context(), msg.ThreadID, userText)
	if err == workflow.ErrEmptyInput {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error: "message has no content",
		})
	}
	if err != nil {
		s.logger.Error("turn failed",
			zap.String("thread", msg.ThreadID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Error: "failed to process message",
		})
	}

	out := OutboundMessage{
		ThreadID: msg.ThreadID,
		Workflow: string(result.Workflow),
		Degraded: result.Degraded,
		Text:     result.ResponseText,
	}
	if result.Media != nil {
		out.Media = &OutboundMedia{MimeType: result.Media.MIME, Data: result.Media.Data}
	}

	return c.JSON(out)
}

// inboundText flattens an inbound message into the single text the workflow
// consumes, annotating media with in-band markers.
func (s *Server) inboundText(c *fiber.Ctx, msg *InboundMessage) (string, error) {
	switch msg.Type {
	case MessageTypeImage:
		return s.annotateImage(c, msg), nil

	case MessageTypeAudio:
		if s.transcriber == nil || len(msg.Media) == 0 {
			return msg.Text, nil
		}
		transcript, err := s.transcriber.Transcribe(c.Context(), msg.Media, msg.MimeType)
		if err != nil {
			s.logger.Error("transcription failed",
				zap.String("thread", msg.ThreadID), zap.Error(err))
			return "", err
		}
		return transcript, nil

	default:
		return msg.Text, nil
	}
}

// annotateImage builds the marker-decorated text for an image message. A
// failed analysis still marks the image so routing forces conversation.
func (s *Server) annotateImage(c *fiber.Ctx, msg *InboundMessage) string {
	parts := []string{persona.MarkerUserImage}
	if msg.Text != "" {
		parts = append(parts, msg.Text)
	}

	if s.analyzer != nil && len(msg.Media) > 0 {
		description, err := s.analyzer.Analyze(c.Context(), msg.Media, msg.MimeType, msg.Text)
		if err != nil {
			s.logger.Warn("image analysis failed",
				zap.String("thread", msg.ThreadID), zap.Error(err))
		} else {
			parts = append(parts, persona.MarkerImageAnalysis+" "+description+"]")
		}
	}

	return strings.Join(parts, "\n")
}
