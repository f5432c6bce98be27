// Package config loads the daemon settings file.
package config

import (
	"fmt"

	"github.com/aistudio/agentd/pkg/llm"
)

// Config is the root settings structure, loaded from settings.yaml.
type Config struct {
	App     AppConfig           `mapstructure:"app"`
	Server  ServerConfig        `mapstructure:"server"`
	Agent   AgentConfig         `mapstructure:"agent"`
	Logging LoggingConfig       `mapstructure:"logging"`
	LLMList []llm.ProfileConfig `mapstructure:"llm_list"`
}

// AppConfig identifies the application.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Agent string `mapstructure:"agent"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AgentConfig configures agent execution.
type AgentConfig struct {
	SystemPrompt string  `mapstructure:"system_prompt"`
	MaxCycles    int     `mapstructure:"max_cycles"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
	Pretty  bool   `mapstructure:"pretty"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:  "agentd",
			Agent: "AI Studio 2.0",
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8000,
			AllowedOrigins: []string{"*"},
		},
		Agent: AgentConfig{
			MaxCycles:   0,
			Temperature: 0.7,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Validate checks the configuration for structural problems. An empty
// llm_list is legal; resolution failures surface per request instead.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Agent.MaxCycles < 0 {
		return fmt.Errorf("agent max_cycles cannot be negative")
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 2 {
		return fmt.Errorf("agent temperature must be between 0 and 2")
	}

	seen := make(map[string]bool)
	for _, profile := range c.LLMList {
		if profile.Name == "" {
			continue
		}
		if seen[profile.Name] {
			return fmt.Errorf("duplicate llm_list profile name: %q", profile.Name)
		}
		seen[profile.Name] = true
	}
	return nil
}
