// Package stream translates internal agent progress into the wire-level
// event protocol served over SSE.
package stream

import "github.com/aistudio/agentd/pkg/graph"

// Type names the outward event types, in the order a client may observe
// them: start, then interleaved progress events, then exactly one end or
// error.
type Type string

const (
	TypeStart             Type = "start"
	TypeToken             Type = "token"
	TypeNodeStart         Type = "node_start"
	TypeNodeEnd           Type = "node_end"
	TypePlanCreated       Type = "plan_created"
	TypePlanStepCompleted Type = "plan_step_completed"
	TypeToolStart         Type = "tool_start"
	TypeToolEnd           Type = "tool_end"
	TypeEnd               Type = "end"
	TypeError             Type = "error"
)

// Event is one outward protocol event. The type travels in the SSE event
// field; the remaining fields form the JSON payload.
type Event struct {
	Type        Type                   `json:"-"`
	Status      string                 `json:"status,omitempty"`
	SessionID   string                 `json:"session_id,omitempty"`
	Content     string                 `json:"content,omitempty"`
	Node        string                 `json:"node,omitempty"`
	Plan        []graph.PlanStep       `json:"plan,omitempty"`
	StepNumber  int                    `json:"step_number,omitempty"`
	Description string                 `json:"description,omitempty"`
	Tool        string                 `json:"tool,omitempty"`
	Input       map[string]interface{} `json:"input,omitempty"`
	Output      string                 `json:"output,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// Sink consumes outward events in order. A non-nil error stops the run; the
// typical cause is a disconnected client.
type Sink func(Event) error
