// Package server exposes the chat daemon's HTTP API: SSE chat streaming,
// model and session listings, graph structure, health, and metrics.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aistudio/agentd/internal/config"
	"github.com/aistudio/agentd/internal/metrics"
	"github.com/aistudio/agentd/pkg/chat"
	"github.com/aistudio/agentd/pkg/llm"
	"github.com/aistudio/agentd/pkg/session"
)

// Server is the daemon HTTP server.
type Server struct {
	cfg       config.ServerConfig
	agentName string
	pool      *llm.Pool
	store     *session.Store
	chat      *chat.Service
	logger    zerolog.Logger

	server    *http.Server
	startTime time.Time
}

// New wires the HTTP server.
func New(cfg config.ServerConfig, agentName string, pool *llm.Pool, store *session.Store, chatService *chat.Service, logger zerolog.Logger) *Server {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}

	return &Server{
		cfg:       cfg,
		agentName: agentName,
		pool:      pool,
		store:     store,
		chat:      chatService,
		logger:    logger,
		startTime: time.Now(),
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v2/info", s.handleInfo)
	mux.HandleFunc("GET /v2/models", s.handleModels)
	mux.HandleFunc("POST /v2/chat", s.handleChat)
	mux.HandleFunc("GET /v2/graph", s.handleGraph)
	mux.HandleFunc("GET /v2/sessions", s.handleListSessions)
	mux.HandleFunc("GET /v2/sessions/{id}/messages", s.handleSessionMessages)
	mux.HandleFunc("DELETE /v2/sessions/{id}", s.handleDeleteSession)
	mux.Handle("GET /metrics", metrics.Handler())

	var handler http.Handler = mux
	handler = corsMiddleware(s.cfg.AllowedOrigins, handler)
	handler = accessLogMiddleware(s.logger, handler)
	return handler
}

// Start runs the server until it fails or Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler: s.routes(),
	}

	s.logger.Info().
		Str("host", s.cfg.Host).
		Int("port", s.cfg.Port).
		Msg("Starting HTTP server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down, letting in-flight streams finish.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info().Msg("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the routed handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}
