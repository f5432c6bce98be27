package llm

import (
	"os"
	"regexp"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv resolves ${VAR} and ${VAR:-default} references in a config value.
// An unresolvable reference yields an empty string, which marks the owning
// profile as unavailable rather than failing startup.
func expandEnv(value string) string {
	if value == "" {
		return ""
	}

	unresolved := false
	expanded := envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		expr := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")

		name := expr
		fallback := ""
		hasFallback := false
		if idx := strings.Index(expr, ":-"); idx >= 0 {
			name = expr[:idx]
			fallback = expr[idx+2:]
			hasFallback = true
		}

		if v := os.Getenv(strings.TrimSpace(name)); v != "" {
			return v
		}
		if hasFallback {
			return strings.TrimSpace(fallback)
		}
		unresolved = true
		return ""
	})

	if unresolved {
		return ""
	}
	return expanded
}
