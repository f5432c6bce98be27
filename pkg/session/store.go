package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Roles accepted by Append. Tool transcripts and system prompts are not
// persisted; only the visible conversation is.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a single conversation turn.
type Message struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Info is session metadata returned by the listing endpoints.
type Info struct {
	SessionID    string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type sessionState struct {
	messages  []Message
	createdAt time.Time
	updatedAt time.Time
}

// Store holds per-session conversation history in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*sessionState),
	}
}

// GetOrCreate returns the given session ID, creating the session if it does
// not exist. An empty ID mints a fresh one. The second return reports whether
// a new session was created.
func (s *Store) GetOrCreate(sessionID string) (string, bool) {
	if sessionID == "" {
		id, _ := gonanoid.New()
		sessionID = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; exists {
		return sessionID, false
	}
	now := time.Now()
	s.sessions[sessionID] = &sessionState{
		createdAt: now,
		updatedAt: now,
	}
	return sessionID, true
}

// Append adds a message to a session's history. The session is created on
// first use. Messages with an unknown role or empty content are rejected.
func (s *Store) Append(sessionID string, message Message) error {
	if sessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	switch message.Role {
	case RoleUser, RoleAssistant, RoleSystem:
	default:
		return fmt.Errorf("invalid message role: %q", message.Role)
	}
	if message.Content == "" {
		return fmt.Errorf("message content cannot be empty")
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.sessions[sessionID]
	if !exists {
		state = &sessionState{createdAt: message.Timestamp}
		s.sessions[sessionID] = state
	}
	state.messages = append(state.messages, message)
	state.updatedAt = message.Timestamp

	return nil
}

// History returns a copy of a session's messages in append order. An unknown
// session yields an empty history, not an error.
func (s *Store) History(sessionID string) ([]Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.sessions[sessionID]
	if !exists {
		return []Message{}, nil
	}

	out := make([]Message, len(state.messages))
	copy(out, state.messages)
	return out, nil
}

// Delete removes a session and its history. Deleting an unknown session is a
// no-op.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// List returns metadata for every live session, most recently updated first.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]Info, 0, len(s.sessions))
	for id, state := range s.sessions {
		infos = append(infos, Info{
			SessionID:    id,
			MessageCount: len(state.messages),
			CreatedAt:    state.createdAt,
			UpdatedAt:    state.updatedAt,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos
}

// GetInfo returns metadata for one session.
func (s *Store) GetInfo(sessionID string) (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.sessions[sessionID]
	if !exists {
		return Info{}, false
	}
	return Info{
		SessionID:    sessionID,
		MessageCount: len(state.messages),
		CreatedAt:    state.createdAt,
		UpdatedAt:    state.updatedAt,
	}, true
}

// Clear drops every session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*sessionState)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
