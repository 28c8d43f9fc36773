// Package server exposes the conversational agent over HTTP.
package server

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	orchestratorx "github.com/clinicdesk/scheduling-agent/agent/agents/orchestrator"
	nodex "github.com/clinicdesk/scheduling-agent/agent/nodes"
)

type Config struct {
	Addr string `split_words:"true" default:":8000"`
}

// TurnProcessor is the slice of the orchestrator the server needs.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, sessionID string, text string) (string, error)
}

type Server struct {
	app       *fiber.App
	processor TurnProcessor

	// sessionLocks serializes turns per session id; conversation state
	// mutation is not safe under interleaving. Different sessions proceed
	// in parallel.
	sessionLocks sync.Map
}

func New(processor TurnProcessor) (*Server, error) {
	if processor == nil {
		return nil, errors.New("turn processor is required")
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "scheduling-agent",
			DisableStartupMessage: true,
		}),
		processor: processor,
	}

	s.app.Get("/", s.handleStatus)
	s.app.Post("/chat", s.handleChat)

	return s, nil
}

func (s *Server) Listen(addr string) error {
	log.Info().Str("addr", addr).Msg("http server listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "Scheduling agent is running"})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock := s.lockSession(sessionID)
	defer unlock()

	reply, err := s.processor.ProcessTurn(c.Context(), sessionID, req.Message)
	if err != nil {
		if errors.Is(err, orchestratorx.ErrInvalidSession) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid session id",
			})
		}
		log.Error().
			Str("session_id", sessionID).
			Err(err).
			Msg("turn processing failed")
		reply = nodex.FallbackReply
	}

	return c.JSON(chatResponse{
		Response:  reply,
		SessionID: sessionID,
	})
}

func (s *Server) lockSession(sessionID string) func() {
	v, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
