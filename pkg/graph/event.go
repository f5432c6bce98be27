package graph

// EventType classifies the progress events produced during a run.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeExit  EventType = "node_exit"
	EventToken     EventType = "token"
	EventToolStart EventType = "tool_start"
	EventToolEnd   EventType = "tool_end"
)

// Event is one progress notification from a running agent. Node exit events
// carry a snapshot of the plan at that point.
type Event struct {
	Type   EventType
	Node   Node
	Token  string
	Tool   string
	Input  map[string]interface{}
	Output string

	Plan        []PlanStep
	CurrentStep int
	PlanNeeded  bool
}

// EmitFunc receives progress events in production order. Returning a non-nil
// error aborts the run.
type EmitFunc func(Event) error
