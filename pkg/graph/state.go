package graph

import "github.com/aistudio/agentd/pkg/llm"

// Node names the vertices of the execution graphs.
type Node string

const (
	NodeReason Node = "REASON"
	NodeAct    Node = "ACT"
	NodeQuery  Node = "QUERY"
	NodeMain   Node = "MAIN"
	NodeTool   Node = "TOOL"
	NodeDone   Node = "DONE"
)

// StepStatus is the lifecycle of a plan step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepSkipped    StepStatus = "skipped"
)

// PlanStep is a single step in an execution plan.
type PlanStep struct {
	Number      int        `json:"step_number"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
}

// State is the mutable state threaded through a run.
type State struct {
	Messages    []llm.Message
	Plan        []PlanStep
	CurrentStep int
	PlanNeeded  bool
}

// Result is the outcome of a completed run.
type Result struct {
	Content string
	Plan    []PlanStep
	Cycles  int
}

// clonePlan returns an independent copy of a plan for event snapshots.
func clonePlan(plan []PlanStep) []PlanStep {
	if plan == nil {
		return nil
	}
	out := make([]PlanStep, len(plan))
	copy(out, plan)
	return out
}
