// Package chat orchestrates a single chat run: model resolution, session
// history, agent execution, and the outward event stream.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aistudio/agentd/internal/metrics"
	"github.com/aistudio/agentd/pkg/graph"
	"github.com/aistudio/agentd/pkg/llm"
	"github.com/aistudio/agentd/pkg/session"
	"github.com/aistudio/agentd/pkg/stream"
	"github.com/aistudio/agentd/pkg/tool"
)

// DefaultSystemPrompt is used when neither the settings file nor the request
// provide one.
const DefaultSystemPrompt = "You are a helpful AI assistant with access to tools. " +
	"When asked about the current time or weather, use the available tools to get accurate information. " +
	"Always use tools when relevant to provide accurate and up-to-date information."

// authErrorMessage replaces raw provider authentication failures, which leak
// nothing useful to the caller.
const authErrorMessage = "Authentication failed. Please check your API key configuration. " +
	"Ensure that the LLM_API_KEY environment variable is set correctly in your settings.yaml file."

// Request is one chat invocation.
type Request struct {
	Message      string `json:"message"`
	Model        string `json:"model,omitempty"`
	Provider     string `json:"provider,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	AgentMode    string `json:"agent_mode,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// Config holds the agent settings shared by every run.
type Config struct {
	SystemPrompt string
	MaxCycles    int
	Temperature  float64
	MaxTokens    int
}

// Service runs chat requests against the model pool.
type Service struct {
	pool     *llm.Pool
	store    *session.Store
	registry *tool.Registry
	cfg      Config
	logger   zerolog.Logger
}

// NewService wires the chat service.
func NewService(pool *llm.Pool, store *session.Store, registry *tool.Registry, cfg Config, logger zerolog.Logger) *Service {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return &Service{
		pool:     pool,
		store:    store,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// Validate rejects malformed requests before any event is produced.
func (s *Service) Validate(req Request) error {
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	switch req.AgentMode {
	case "", string(graph.ModeBasic), string(graph.ModePlanned):
	default:
		return fmt.Errorf("unknown agent mode: %q", req.AgentMode)
	}
	return nil
}

// Run executes one chat request, writing protocol events to sink. Model
// resolution failure produces a single error event and leaves the session
// untouched. A sink error is treated as a client disconnect: streamed text
// is persisted and no further events are written.
func (s *Service) Run(ctx context.Context, req Request, sink stream.Sink) error {
	mode := graph.ModeBasic
	if req.AgentMode == string(graph.ModePlanned) {
		mode = graph.ModePlanned
	}

	client, profile, err := s.pool.Resolve(req.Model, req.Provider)
	if err != nil {
		s.logger.Warn().Str("model", req.Model).Str("provider", req.Provider).Err(err).Msg("Model resolution failed")
		_ = sink(stream.Event{Type: stream.TypeError, Error: err.Error()})
		return err
	}

	sessionID, created := s.store.GetOrCreate(req.SessionID)
	if created {
		metrics.RecordSessionCreated()
	}
	metrics.SetActiveSessions(s.store.Count())

	logger := s.logger.With().
		Str("session_id", sessionID).
		Str("profile", profile.Name).
		Str("agent_mode", string(mode)).
		Logger()

	if err := sink(stream.Event{Type: stream.TypeStart, Status: "started", SessionID: sessionID}); err != nil {
		return err
	}

	if err := s.store.Append(sessionID, session.Message{Role: session.RoleUser, Content: req.Message}); err != nil {
		logger.Error().Err(err).Msg("Failed to persist user message")
	}

	messages, err := s.buildMessages(sessionID, req.SystemPrompt)
	if err != nil {
		_ = sink(stream.Event{Type: stream.TypeError, Error: err.Error()})
		return err
	}

	var streamed strings.Builder
	var sinkErr error
	wrapped := func(ev stream.Event) error {
		switch ev.Type {
		case stream.TypeToken:
			streamed.WriteString(ev.Content)
			metrics.RecordTokenStreamed()
		case stream.TypeToolEnd:
			metrics.RecordToolExecution(ev.Tool, true)
		case stream.TypePlanStepCompleted:
			metrics.RecordPlanStepCompleted()
		}
		if err := sink(ev); err != nil {
			sinkErr = err
			return err
		}
		return nil
	}

	opts := graph.Options{
		Model:       profile.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		MaxCycles:   s.cfg.MaxCycles,
	}

	var agent graph.Agent
	if mode == graph.ModePlanned {
		agent = graph.NewPlanAgent(client, s.registry, opts, logger)
	} else {
		agent = graph.NewReactAgent(client, s.registry, opts, logger)
	}

	translator := stream.NewTranslator(wrapped, mode == graph.ModePlanned)

	startedAt := time.Now()
	result, runErr := agent.Run(ctx, messages, translator.Handle)

	if runErr == nil {
		final := streamed.String()
		if final == "" && result != nil {
			final = result.Content
		}
		if final != "" {
			if err := s.store.Append(sessionID, session.Message{Role: session.RoleAssistant, Content: final}); err != nil {
				logger.Error().Err(err).Msg("Failed to persist assistant message")
			}
		}
		metrics.RecordChatRun(string(mode), "completed", time.Since(startedAt))
		logger.Info().Dur("duration", time.Since(startedAt)).Msg("Chat run completed")
		return sink(stream.Event{Type: stream.TypeEnd, Status: "completed", SessionID: sessionID})
	}

	// The run stopped early. Keep whatever text already reached the client.
	if partial := streamed.String(); partial != "" {
		if err := s.store.Append(sessionID, session.Message{Role: session.RoleAssistant, Content: partial}); err != nil {
			logger.Error().Err(err).Msg("Failed to persist partial assistant message")
		}
	}

	var dispatchErr *tool.DispatchError
	if errors.As(runErr, &dispatchErr) {
		metrics.RecordToolExecution(dispatchErr.Tool, false)
	}

	if sinkErr != nil || ctx.Err() != nil {
		metrics.RecordChatRun(string(mode), "disconnected", time.Since(startedAt))
		logger.Info().Msg("Client disconnected during chat run")
		return runErr
	}

	metrics.RecordChatRun(string(mode), "error", time.Since(startedAt))
	logger.Error().Err(runErr).Msg("Chat run failed")

	msg := runErr.Error()
	if isAuthError(runErr) {
		msg = authErrorMessage
	}
	_ = sink(stream.Event{Type: stream.TypeError, Error: msg})
	return runErr
}

// buildMessages assembles the model conversation: the system prompt followed
// by the session history, which already includes the current user message.
func (s *Service) buildMessages(sessionID, systemPrompt string) ([]llm.Message, error) {
	history, err := s.store.History(sessionID)
	if err != nil {
		return nil, err
	}

	prompt := systemPrompt
	if prompt == "" {
		prompt = s.cfg.SystemPrompt
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: prompt})

	for _, msg := range history {
		// History may carry stale system entries; the prompt above wins.
		if msg.Role == session.RoleSystem {
			continue
		}
		messages = append(messages, llm.Message{Role: llm.Role(msg.Role), Content: msg.Content})
	}
	return messages, nil
}

// isAuthError applies the provider-agnostic authentication heuristic: a 401
// status or an authorization phrase anywhere in the error chain.
func isAuthError(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "401") {
		return true
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "unauthorized") || strings.Contains(lower, "authorization")
}
