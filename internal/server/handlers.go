package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aistudio/agentd/internal/metrics"
	"github.com/aistudio/agentd/pkg/chat"
	"github.com/aistudio/agentd/pkg/graph"
	"github.com/aistudio/agentd/pkg/llm"
	"github.com/aistudio/agentd/pkg/stream"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"uptime":    time.Since(s.startTime).Seconds(),
		"timestamp": time.Now().UnixMilli(),
	})
}

// handleInfo reports the default profile and the agent display name.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	profileName := "default"
	provider := string(llm.ProviderOpenAI)
	if def, ok := s.pool.Default(); ok {
		profileName = def.Name
		provider = def.Provider
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"profile_name": profileName,
		"provider":     provider,
		"agent":        s.agentName,
	})
}

// handleModels lists every configured profile grouped by provider, in
// settings order, including profiles whose environment variables did not
// resolve.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models := make(map[string][]llm.Profile)
	for _, profile := range s.pool.List() {
		if profile.Provider == "" {
			continue
		}
		models[profile.Provider] = append(models[profile.Provider], profile)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"models":    models,
		"providers": s.pool.Providers(),
	})
}

// handleChat streams a chat run as server-sent events.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.chat.Validate(req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sw, err := newSSEWriter(w)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sink := func(ev stream.Event) error {
		if err := r.Context().Err(); err != nil {
			return err
		}
		return sw.WriteEvent(string(ev.Type), ev)
	}

	// Run errors have already been reported through the event stream.
	_ = s.chat.Run(r.Context(), req, sink)
}

// handleGraph describes the execution graph topology. The planned graph is
// the default; ?mode=react selects the basic one.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	structure := graph.PlanStructure()
	if r.URL.Query().Get("mode") == string(graph.ModeBasic) {
		structure = graph.ReactStructure()
	}
	s.writeJSON(w, http.StatusOK, structure)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": s.store.List(),
	})
}

func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if _, ok := s.store.GetInfo(sessionID); !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	history, err := s.store.History(sessionID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   history,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if _, ok := s.store.GetInfo(sessionID); !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	s.store.Delete(sessionID)
	metrics.SetActiveSessions(s.store.Count())
	s.logger.Info().Str("session_id", sessionID).Msg("Session deleted")
	w.WriteHeader(http.StatusNoContent)
}
