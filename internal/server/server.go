// Package server exposes the floor plan assistant over HTTP.
package server

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/floorplan-layout/analyzer/internal/assistant"
	"github.com/floorplan-layout/analyzer/internal/config"
	"github.com/floorplan-layout/analyzer/internal/normalize"
	"github.com/floorplan-layout/analyzer/internal/session"
	"github.com/floorplan-layout/analyzer/internal/vision"
)

// MaxUpload bounds the request body, images included.
const MaxUpload = 20 << 20

// TurnTimeout bounds one image turn, model call and streaming included.
const TurnTimeout = 10 * time.Minute

// Server wires the assistant to a fiber app.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	sessions *session.Manager
	asst     *assistant.Assistant
	log      *slog.Logger
}

// New builds the server and registers its routes.
func New(cfg config.Config, model vision.Model, log *slog.Logger) *Server {
	norm := normalize.New(cfg.NormalizeOptions()).WithLogger(log)
	s := &Server{
		cfg:      cfg,
		sessions: session.NewManager(),
		asst:     assistant.New(model, norm, cfg.AssistantOptions()).WithLogger(log),
		log:      log,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "Floor Plan Analyzer",
		BodyLimit:    MaxUpload,
		ReadTimeout:  time.Minute,
		WriteTimeout: TurnTimeout,
	})

	s.app.Use(recover.New())
	s.app.Use(requestLogger())
	if origins := splitOrigins(cfg.Server.CORSOrigins); len(origins) > 0 {
		s.app.Use(cors.New(cors.Config{AllowOrigins: origins}))
	}

	s.app.Get("/health", s.health)

	s.app.Post("/sessions", s.startSession)
	s.app.Post("/sessions/:id/images", s.submitImage)
	s.app.Get("/sessions/:id/layout", s.lastLayout)
	s.app.Delete("/sessions/:id", s.endSession)
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Sessions returns the session manager.
func (s *Server) Sessions() *session.Manager { return s.sessions }

// Listen serves on the configured address until Shutdown.
func (s *Server) Listen() error {
	s.log.Info("starting server", "addr", s.cfg.Server.Addr, "provider", s.cfg.Model.Provider, "model", s.cfg.Model.Model)
	return s.app.Listen(s.cfg.Server.Addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting requests and waits up to timeout for open ones.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func requestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | Content-Type: ${reqHeader:Content-Type}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}

func splitOrigins(s string) []string {
	var out []string
	for o := range strings.SplitSeq(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
