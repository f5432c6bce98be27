package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aistudio/agentd/pkg/llm"
)

func llmProfile(name string) llm.ProfileConfig {
	return llm.ProfileConfig{
		Name:     name,
		Provider: "openai",
		Model:    "gpt-4o",
		BaseURL:  "https://api.example.com/v1",
		APIKey:   "sk-test",
	}
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "agentd", cfg.App.Name)
	assert.Equal(t, "AI Studio 2.0", cfg.App.Agent)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 0, cfg.Agent.MaxCycles)
	assert.InDelta(t, 0.7, cfg.Agent.Temperature, 1e-9)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.LLMList)
}

func TestLoad_FullSettingsFile(t *testing.T) {
	path := writeSettings(t, `
app:
  name: agentd
  agent: "Test Agent"
server:
  host: 127.0.0.1
  port: 9090
  allowed_origins:
    - http://localhost:3000
agent:
  system_prompt: "Be terse."
  max_cycles: 8
  temperature: 0.2
  max_tokens: 2048
logging:
  level: debug
  console: true
  pretty: true
llm_list:
  - name: gpt4o
    provider: openai
    model: gpt-4o
    base_url: https://api.openai.com/v1
    api_key: ${LLM_API_KEY}
    default: true
  - name: claude
    provider: anthropic
    model: claude-sonnet-4-0
    base_url: https://api.anthropic.com
    api_key: ${ANTHROPIC_API_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Test Agent", cfg.App.Agent)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "Be terse.", cfg.Agent.SystemPrompt)
	assert.Equal(t, 8, cfg.Agent.MaxCycles)
	assert.InDelta(t, 0.2, cfg.Agent.Temperature, 1e-9)
	assert.Equal(t, 2048, cfg.Agent.MaxTokens)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)

	require.Len(t, cfg.LLMList, 2)
	assert.Equal(t, "gpt4o", cfg.LLMList[0].Name)
	assert.Equal(t, "openai", cfg.LLMList[0].Provider)
	assert.True(t, cfg.LLMList[0].Default)
	// Placeholders are kept verbatim; the pool expands them at startup.
	assert.Equal(t, "${LLM_API_KEY}", cfg.LLMList[0].APIKey)
	assert.Equal(t, "claude", cfg.LLMList[1].Name)
	assert.False(t, cfg.LLMList[1].Default)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeSettings(t, `
server:
  port: 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "AI Studio 2.0", cfg.App.Agent)
	assert.InDelta(t, 0.7, cfg.Agent.Temperature, 1e-9)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeSettings(t, "server: [not: valid")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := writeSettings(t, `
server:
  port: 70000
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 65536 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative max cycles",
			mutate:  func(c *Config) { c.Agent.MaxCycles = -1 },
			wantErr: "max_cycles",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Agent.Temperature = 2.5 },
			wantErr: "temperature",
		},
		{
			name: "duplicate profile names",
			mutate: func(c *Config) {
				c.LLMList = append(c.LLMList,
					llmProfile("same"),
					llmProfile("same"),
				)
			},
			wantErr: "duplicate llm_list profile name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
