package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aistudio/agentd/internal/config"
	"github.com/aistudio/agentd/pkg/chat"
	"github.com/aistudio/agentd/pkg/llm"
	"github.com/aistudio/agentd/pkg/session"
	"github.com/aistudio/agentd/pkg/tool"
)

// fixedClient answers every stream call with the same content.
type fixedClient struct {
	content string
}

func (c *fixedClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: c.content}, nil
}

func (c *fixedClient) Stream(ctx context.Context, req llm.Request, onDelta func(string) error) (*llm.Response, error) {
	if err := onDelta(c.content); err != nil {
		return nil, err
	}
	return &llm.Response{Content: c.content}, nil
}

func newTestServer(t *testing.T) (*Server, *session.Store) {
	t.Helper()

	configs := []llm.ProfileConfig{
		{
			Name:     "gpt4o",
			Provider: llm.ProviderOpenAI,
			Model:    "gpt-4o",
			BaseURL:  "https://api.example.com/v1",
			APIKey:   "sk-test",
			Default:  true,
		},
		{
			Name:     "claude",
			Provider: llm.ProviderAnthropic,
			Model:    "claude-sonnet-4-0",
			BaseURL:  "https://api.anthropic.com",
			// Unresolved key: listed but not resolvable.
		},
	}
	pool := llm.NewPoolWithFactory(configs, func(p llm.Profile, key string) (llm.Client, error) {
		return &fixedClient{content: "Hello from the model"}, nil
	}, zerolog.Nop())

	store := session.NewStore()
	registry := tool.NewRegistry(zerolog.Nop())
	require.NoError(t, tool.RegisterBuiltins(registry))
	svc := chat.NewService(pool, store, registry, chat.Config{}, zerolog.Nop())

	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 8000, AllowedOrigins: []string{"*"}},
		"AI Studio 2.0", pool, store, svc, zerolog.Nop())
	return srv, store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, payload := doJSON(t, srv.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
	assert.Contains(t, payload, "uptime")
	assert.Contains(t, payload, "timestamp")
}

func TestServer_Info(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, payload := doJSON(t, srv.Handler(), http.MethodGet, "/v2/info", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gpt4o", payload["profile_name"])
	assert.Equal(t, "openai", payload["provider"])
	assert.Equal(t, "AI Studio 2.0", payload["agent"])
}

func TestServer_Models(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, payload := doJSON(t, srv.Handler(), http.MethodGet, "/v2/models", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	models, ok := payload["models"].(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, models, "openai")
	require.Contains(t, models, "anthropic")

	// The unavailable anthropic profile is still listed, flagged accordingly.
	anthropics := models["anthropic"].([]interface{})
	require.Len(t, anthropics, 1)
	profile := anthropics[0].(map[string]interface{})
	assert.Equal(t, "claude", profile["name"])
	assert.Equal(t, false, profile["available"])

	providers, ok := payload["providers"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"openai", "anthropic"}, providers)
}

func TestServer_Graph(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, payload := doJSON(t, srv.Handler(), http.MethodGet, "/v2/graph", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	nodes := payload["nodes"].([]interface{})
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.(map[string]interface{})["id"].(string))
	}
	assert.Equal(t, []string{"__start__", "QUERY", "MAIN", "TOOL", "__end__"}, ids)

	rec, payload = doJSON(t, srv.Handler(), http.MethodGet, "/v2/graph?mode=react", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	nodes = payload["nodes"].([]interface{})
	ids = ids[:0]
	for _, n := range nodes {
		ids = append(ids, n.(map[string]interface{})["id"].(string))
	}
	assert.Equal(t, []string{"__start__", "REASON", "ACT", "__end__"}, ids)
}

func TestServer_Sessions(t *testing.T) {
	srv, store := newTestServer(t)
	handler := srv.Handler()

	id, _ := store.GetOrCreate("")
	require.NoError(t, store.Append(id, session.Message{Role: session.RoleUser, Content: "hi"}))
	require.NoError(t, store.Append(id, session.Message{Role: session.RoleAssistant, Content: "hello"}))

	rec, payload := doJSON(t, handler, http.MethodGet, "/v2/sessions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	sessions := payload["sessions"].([]interface{})
	require.Len(t, sessions, 1)
	first := sessions[0].(map[string]interface{})
	assert.Equal(t, id, first["session_id"])
	assert.Equal(t, float64(2), first["message_count"])

	rec, payload = doJSON(t, handler, http.MethodGet, "/v2/sessions/"+id+"/messages", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, payload["session_id"])
	messages := payload["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].(map[string]interface{})["content"])

	rec, _ = doJSON(t, handler, http.MethodGet, "/v2/sessions/unknown/messages", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, handler, http.MethodDelete, "/v2/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, store.Count())

	rec, _ = doJSON(t, handler, http.MethodDelete, "/v2/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type sseEvent struct {
	name string
	data map[string]interface{}
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()

	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current = sseEvent{name: strings.TrimPrefix(line, "event: ")}
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &current.data))
			events = append(events, current)
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestServer_ChatStream(t *testing.T) {
	srv, store := newTestServer(t)

	rec, _ := doJSON(t, srv.Handler(), http.MethodPost, "/v2/chat", `{"message": "hi"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

	events := parseSSE(t, rec.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "start", events[0].name)
	assert.Equal(t, "started", events[0].data["status"])
	assert.Equal(t, "end", events[len(events)-1].name)

	var text string
	for _, ev := range events {
		if ev.name == "token" {
			text += ev.data["content"].(string)
		}
	}
	assert.Equal(t, "Hello from the model", text)

	sessionID := events[0].data["session_id"].(string)
	history, err := store.History(sessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Hello from the model", history[1].Content)
}

func TestServer_ChatBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rec, payload := doJSON(t, handler, http.MethodPost, "/v2/chat", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["error"], "invalid request body")

	rec, payload = doJSON(t, handler, http.MethodPost, "/v2/chat", `{"message": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fmt.Sprint(payload["error"]), "message")

	rec, _ = doJSON(t, handler, http.MethodPost, "/v2/chat", `{"message": "hi", "agent_mode": "bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/v2/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
