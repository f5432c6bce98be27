package llm

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Provider names understood by the default client factory.
const (
	ProviderOpenAI      = "openai"
	ProviderAzureOpenAI = "azureopenai"
	ProviderAnthropic   = "anthropic"
)

// ProfileConfig is one raw llm_list entry from the settings file. BaseURL and
// APIKey may contain ${VAR} / ${VAR:-default} placeholders.
type ProfileConfig struct {
	Name     string `json:"name" mapstructure:"name"`
	Provider string `json:"provider" mapstructure:"provider"`
	Model    string `json:"model" mapstructure:"model"`
	BaseURL  string `json:"base_url" mapstructure:"base_url"`
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	Default  bool   `json:"default" mapstructure:"default"`
}

// Profile is a resolved view of one configured model endpoint. The credential
// is held by the client, never exposed here.
type Profile struct {
	Name      string `json:"name"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	BaseURL   string `json:"base_url"`
	Default   bool   `json:"default"`
	Available bool   `json:"available"`
}

// ClientFactory builds a Client for a resolved profile. Replaceable in tests.
type ClientFactory func(profile Profile, apiKey string) (Client, error)

// NotFoundError reports that no profile matched a resolution request.
type NotFoundError struct {
	Selector string
	Provider string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("model %q not found", e.Selector)
	if e.Provider != "" {
		msg += fmt.Sprintf(" for provider %q", e.Provider)
	}
	return msg + ". Check the llm_list section of the settings file and ensure all referenced environment variables are set"
}

type poolEntry struct {
	profile Profile
	client  Client
}

// Pool maps logical profile names to completion clients. It is built once at
// startup and is read-only afterwards, so it may be shared freely across
// concurrent requests.
type Pool struct {
	entries    []*poolEntry // resolvable profiles, settings order
	byName     map[string]*poolEntry
	defaultHit *poolEntry
	all        []Profile // every configured profile, including unavailable ones
	logger     zerolog.Logger
}

// NewPool builds a pool from raw profile configs, resolving environment
// placeholders. Profiles whose required fields stay empty after resolution
// are excluded from the resolvable set but retained for listing.
func NewPool(configs []ProfileConfig, logger zerolog.Logger) *Pool {
	return NewPoolWithFactory(configs, defaultClientFactory, logger)
}

// NewPoolWithFactory is NewPool with a custom client factory.
func NewPoolWithFactory(configs []ProfileConfig, factory ClientFactory, logger zerolog.Logger) *Pool {
	p := &Pool{
		byName: make(map[string]*poolEntry),
		logger: logger,
	}

	for _, cfg := range configs {
		profile := Profile{
			Name:     cfg.Name,
			Provider: cfg.Provider,
			Model:    cfg.Model,
			BaseURL:  expandEnv(cfg.BaseURL),
			Default:  cfg.Default,
		}
		apiKey := expandEnv(cfg.APIKey)

		if cfg.Name == "" || cfg.Provider == "" || cfg.Model == "" || profile.BaseURL == "" || apiKey == "" {
			logger.Warn().
				Str("profile", cfg.Name).
				Msg("Skipping LLM profile: missing required fields or unresolved environment variables")
			p.all = append(p.all, profile)
			continue
		}

		client, err := factory(profile, apiKey)
		if err != nil {
			logger.Warn().
				Str("profile", cfg.Name).
				Err(err).
				Msg("Failed to initialize LLM profile")
			p.all = append(p.all, profile)
			continue
		}

		profile.Available = true
		entry := &poolEntry{profile: profile, client: client}
		p.entries = append(p.entries, entry)
		p.byName[profile.Name] = entry
		p.all = append(p.all, profile)

		if profile.Default && p.defaultHit == nil {
			p.defaultHit = entry
		}
	}

	// No profile marked default: the first resolvable one stands in.
	if p.defaultHit == nil && len(p.entries) > 0 {
		p.defaultHit = p.entries[0]
	}

	logger.Info().
		Int("resolvable", len(p.entries)).
		Int("configured", len(p.all)).
		Msg("Model client pool initialized")

	return p
}

// Resolve maps a model selector and optional provider hint to a client.
// Resolution order: exact profile name, then (provider, model) pair when a
// hint is given, then a model-id scan in settings order, then the default
// profile. Read-only; repeated calls with the same inputs return the same
// profile.
func (p *Pool) Resolve(selector, providerHint string) (Client, Profile, error) {
	if entry, ok := p.byName[selector]; ok {
		return entry.client, entry.profile, nil
	}

	if providerHint != "" {
		for _, entry := range p.entries {
			if entry.profile.Provider == providerHint && entry.profile.Model == selector {
				return entry.client, entry.profile, nil
			}
		}
	}

	for _, entry := range p.entries {
		if entry.profile.Model == selector {
			return entry.client, entry.profile, nil
		}
	}

	if p.defaultHit != nil {
		return p.defaultHit.client, p.defaultHit.profile, nil
	}

	return nil, Profile{}, &NotFoundError{Selector: selector, Provider: providerHint}
}

// Default returns the default profile, if any profile is resolvable.
func (p *Pool) Default() (Profile, bool) {
	if p.defaultHit == nil {
		return Profile{}, false
	}
	return p.defaultHit.profile, true
}

// List returns every configured profile in settings order, including those
// excluded from resolution, each carrying its availability flag.
func (p *Pool) List() []Profile {
	out := make([]Profile, len(p.all))
	copy(out, p.all)
	return out
}

// Providers returns the distinct provider names in settings order.
func (p *Pool) Providers() []string {
	seen := make(map[string]bool)
	var providers []string
	for _, profile := range p.all {
		if profile.Provider == "" || seen[profile.Provider] {
			continue
		}
		seen[profile.Provider] = true
		providers = append(providers, profile.Provider)
	}
	return providers
}

func defaultClientFactory(profile Profile, apiKey string) (Client, error) {
	switch profile.Provider {
	case ProviderOpenAI:
		return newOpenAIClient(profile.BaseURL, apiKey), nil
	case ProviderAzureOpenAI:
		return newAzureOpenAIClient(profile.BaseURL, apiKey), nil
	case ProviderAnthropic:
		return newAnthropicClient(profile.BaseURL, apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", profile.Provider)
	}
}
