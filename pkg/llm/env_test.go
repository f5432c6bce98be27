package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("LLM_TEST_KEY", "sk-test-123")
	t.Setenv("LLM_TEST_URL", "https://api.example.com")

	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			name:     "plain value untouched",
			value:    "sk-literal",
			expected: "sk-literal",
		},
		{
			name:     "set variable resolves",
			value:    "${LLM_TEST_KEY}",
			expected: "sk-test-123",
		},
		{
			name:     "variable inside text",
			value:    "${LLM_TEST_URL}/v1",
			expected: "https://api.example.com/v1",
		},
		{
			name:     "unset variable empties the value",
			value:    "${LLM_TEST_MISSING}",
			expected: "",
		},
		{
			name:     "unset variable with fallback",
			value:    "${LLM_TEST_MISSING:-https://fallback.example.com}",
			expected: "https://fallback.example.com",
		},
		{
			name:     "set variable wins over fallback",
			value:    "${LLM_TEST_KEY:-unused}",
			expected: "sk-test-123",
		},
		{
			name:     "one unresolved reference empties the whole value",
			value:    "${LLM_TEST_URL}/${LLM_TEST_MISSING}",
			expected: "",
		},
		{
			name:     "empty input",
			value:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnv(tt.value))
		})
	}
}
