package graph

import (
	"context"

	"github.com/aistudio/agentd/pkg/llm"
)

// Mode selects which execution graph serves a chat run.
type Mode string

const (
	ModeBasic   Mode = "react"
	ModePlanned Mode = "plan"
)

// ToolExecutor dispatches tool invocations requested by the model.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]interface{}) (string, error)
	Specs() []llm.ToolSpec
}

// Options configure an agent run. MaxCycles zero means unbounded.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	MaxCycles   int
}

// Agent runs a conversation to completion, reporting progress through emit.
type Agent interface {
	Run(ctx context.Context, messages []llm.Message, emit EmitFunc) (*Result, error)
}
