package graph

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aistudio/agentd/pkg/llm"
)

// ReactAgent is the basic execution graph. REASON streams a model turn; when
// the model requests tools, ACT dispatches them and control returns to
// REASON. A turn without tool calls ends the run.
type ReactAgent struct {
	client llm.Client
	tools  ToolExecutor
	opts   Options
	logger zerolog.Logger
}

// NewReactAgent creates a basic agent bound to one model client.
func NewReactAgent(client llm.Client, tools ToolExecutor, opts Options, logger zerolog.Logger) *ReactAgent {
	return &ReactAgent{
		client: client,
		tools:  tools,
		opts:   opts,
		logger: logger,
	}
}

func (a *ReactAgent) Run(ctx context.Context, messages []llm.Message, emit EmitFunc) (*Result, error) {
	state := &State{Messages: messages}
	specs := a.tools.Specs()
	cycles := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if a.opts.MaxCycles > 0 && cycles >= a.opts.MaxCycles {
			return nil, &LoopBoundError{MaxCycles: a.opts.MaxCycles}
		}
		cycles++

		if err := emit(Event{Type: EventNodeEnter, Node: NodeReason}); err != nil {
			return nil, err
		}

		resp, err := a.client.Stream(ctx, llm.Request{
			Model:       a.opts.Model,
			Messages:    state.Messages,
			Tools:       specs,
			Temperature: a.opts.Temperature,
			MaxTokens:   a.opts.MaxTokens,
		}, func(delta string) error {
			return emit(Event{Type: EventToken, Node: NodeReason, Token: delta})
		})
		if err != nil {
			return nil, err
		}

		state.Messages = append(state.Messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		if err := emit(Event{Type: EventNodeExit, Node: NodeReason}); err != nil {
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			a.logger.Debug().Int("cycles", cycles).Msg("Agent run completed")
			return &Result{Content: resp.Content, Cycles: cycles}, nil
		}

		if err := runTools(ctx, a.tools, state, NodeAct, resp.ToolCalls, emit); err != nil {
			return nil, err
		}
	}
}

// runTools dispatches each requested tool call in order and appends the tool
// transcripts to the state. Shared by both graph variants.
func runTools(ctx context.Context, tools ToolExecutor, state *State, node Node, calls []llm.ToolCall, emit EmitFunc) error {
	if err := emit(Event{Type: EventNodeEnter, Node: node}); err != nil {
		return err
	}

	for _, call := range calls {
		if err := emit(Event{
			Type:  EventToolStart,
			Node:  node,
			Tool:  call.Name,
			Input: call.Arguments,
		}); err != nil {
			return err
		}

		output, err := tools.Execute(ctx, call.Name, call.Arguments)
		if err != nil {
			return err
		}

		if err := emit(Event{
			Type:   EventToolEnd,
			Node:   node,
			Tool:   call.Name,
			Output: output,
		}); err != nil {
			return err
		}

		state.Messages = append(state.Messages, llm.Message{
			Role:       llm.RoleTool,
			Content:    output,
			ToolCallID: call.ID,
		})
	}

	return emit(Event{Type: EventNodeExit, Node: node, Plan: clonePlan(state.Plan), CurrentStep: state.CurrentStep, PlanNeeded: state.PlanNeeded})
}
