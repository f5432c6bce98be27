package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aistudio/agentd/pkg/llm"
)

// querySystemPrompt instructs the model to answer with a JSON planning
// decision. The response is parsed best-effort; anything unparseable means
// no plan.
const querySystemPrompt = `You are a planning assistant. Analyze the user's request and decide if a step-by-step plan is needed.

If the request is simple (single action, simple question), respond with:
{"plan_needed": false, "reason": "Simple request - direct response"}

If the request is complex (multiple steps, requires tools, needs research), create a plan:
{"plan_needed": true, "steps": ["Step 1 description", "Step 2 description", ...]}

Respond ONLY with valid JSON, no other text.`

// PlanAgent is the planned execution graph. QUERY analyzes the request and
// may produce a step plan, then MAIN and TOOL alternate like the basic
// variant while the plan advances.
type PlanAgent struct {
	client llm.Client
	tools  ToolExecutor
	opts   Options
	logger zerolog.Logger
}

// NewPlanAgent creates a planned agent bound to one model client.
func NewPlanAgent(client llm.Client, tools ToolExecutor, opts Options, logger zerolog.Logger) *PlanAgent {
	return &PlanAgent{
		client: client,
		tools:  tools,
		opts:   opts,
		logger: logger,
	}
}

func (a *PlanAgent) Run(ctx context.Context, messages []llm.Message, emit EmitFunc) (*Result, error) {
	state := &State{Messages: messages}

	if err := a.queryNode(ctx, state, emit); err != nil {
		return nil, err
	}

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

		resp, err := a.mainNode(ctx, state, specs, emit)
		if err != nil {
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			a.logger.Debug().
				Int("cycles", cycles).
				Int("plan_steps", len(state.Plan)).
				Msg("Planned agent run completed")
			return &Result{Content: resp.Content, Plan: clonePlan(state.Plan), Cycles: cycles}, nil
		}

		if err := runTools(ctx, a.tools, state, NodeTool, resp.ToolCalls, emit); err != nil {
			return nil, err
		}
	}
}

// queryNode asks the model whether the request needs a plan. The model sees
// only the most recent user message, not the full history.
func (a *PlanAgent) queryNode(ctx context.Context, state *State, emit EmitFunc) error {
	if err := emit(Event{Type: EventNodeEnter, Node: NodeQuery}); err != nil {
		return err
	}

	userMessage := ""
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == llm.RoleUser {
			userMessage = state.Messages[i].Content
			break
		}
	}

	resp, err := a.client.Complete(ctx, llm.Request{
		Model: a.opts.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: querySystemPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf("User request: %s", userMessage)},
		},
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		return err
	}

	plan, planNeeded := parsePlanResponse(resp.Content)
	state.Plan = plan
	state.PlanNeeded = planNeeded
	state.CurrentStep = 0

	if planNeeded {
		a.logger.Debug().Int("steps", len(plan)).Msg("Plan created")
	}

	return emit(Event{
		Type:        EventNodeExit,
		Node:        NodeQuery,
		Plan:        clonePlan(state.Plan),
		CurrentStep: state.CurrentStep,
		PlanNeeded:  state.PlanNeeded,
	})
}

// mainNode streams one reasoning turn, injecting the current plan step into
// the prompt and advancing the plan when the turn produces no tool calls.
func (a *PlanAgent) mainNode(ctx context.Context, state *State, specs []llm.ToolSpec, emit EmitFunc) (*llm.Response, error) {
	if err := emit(Event{Type: EventNodeEnter, Node: NodeMain}); err != nil {
		return nil, err
	}

	onStep := state.PlanNeeded && state.CurrentStep < len(state.Plan)
	if onStep && state.Plan[state.CurrentStep].Status == StepPending {
		state.Plan[state.CurrentStep].Status = StepInProgress
	}

	callMessages := state.Messages
	if onStep {
		callMessages = injectStepContext(state.Messages, state.Plan[state.CurrentStep], len(state.Plan))
	}

	resp, err := a.client.Stream(ctx, llm.Request{
		Model:       a.opts.Model,
		Messages:    callMessages,
		Tools:       specs,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	}, func(delta string) error {
		return emit(Event{Type: EventToken, Node: NodeMain, Token: delta})
	})
	if err != nil {
		return nil, err
	}

	state.Messages = append(state.Messages, llm.Message{
		Role:      llm.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})

	// A turn without tool calls closes out the current step.
	if onStep && len(resp.ToolCalls) == 0 {
		state.Plan[state.CurrentStep].Status = StepCompleted
		state.CurrentStep++
	}

	if err := emit(Event{
		Type:        EventNodeExit,
		Node:        NodeMain,
		Plan:        clonePlan(state.Plan),
		CurrentStep: state.CurrentStep,
		PlanNeeded:  state.PlanNeeded,
	}); err != nil {
		return nil, err
	}

	return resp, nil
}

// injectStepContext appends the current step to the final message when that
// message came from the system or the user. Tool transcripts are left alone.
func injectStepContext(messages []llm.Message, step PlanStep, total int) []llm.Message {
	if len(messages) == 0 {
		return messages
	}
	last := messages[len(messages)-1]
	if last.Role != llm.RoleSystem && last.Role != llm.RoleUser {
		return messages
	}

	out := make([]llm.Message, len(messages))
	copy(out, messages)
	out[len(out)-1].Content = fmt.Sprintf(
		"%s\n\n[Current task - Step %d/%d]: %s",
		last.Content, step.Number, total, step.Description,
	)
	return out
}

// parsePlanResponse extracts the planning decision from the model's answer.
// It takes the widest brace-delimited slice of the text and unmarshals it;
// any failure, or plan_needed without steps, degrades to "no plan".
func parsePlanResponse(content string) ([]PlanStep, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var decision struct {
		PlanNeeded bool     `json:"plan_needed"`
		Steps      []string `json:"steps"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &decision); err != nil {
		return nil, false
	}
	if !decision.PlanNeeded || len(decision.Steps) == 0 {
		return nil, false
	}

	plan := make([]PlanStep, len(decision.Steps))
	for i, desc := range decision.Steps {
		plan[i] = PlanStep{
			Number:      i + 1,
			Description: desc,
			Status:      StepPending,
		}
	}
	return plan, true
}
