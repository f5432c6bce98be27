package stream

import "github.com/aistudio/agentd/pkg/graph"

// Translator converts internal graph events into outward protocol events.
//
// Rules: consecutive enters of the same node produce one node_start; tokens
// produced during QUERY are suppressed; the plan is announced once, when
// QUERY exits with one; steps newly marked completed after a MAIN exit each
// produce one plan_step_completed.
type Translator struct {
	sink          Sink
	announceNodes bool

	currentNode   graph.Node
	inQuery       bool
	planAnnounced bool
	lastPlan      []graph.PlanStep
}

// NewTranslator wraps a sink. Node lifecycle events are forwarded only when
// announceNodes is set; the basic graph runs without them.
func NewTranslator(sink Sink, announceNodes bool) *Translator {
	return &Translator{
		sink:          sink,
		announceNodes: announceNodes,
	}
}

// Handle translates one internal event. It satisfies graph.EmitFunc.
func (t *Translator) Handle(ev graph.Event) error {
	switch ev.Type {
	case graph.EventNodeEnter:
		if ev.Node == graph.NodeQuery {
			t.inQuery = true
		}
		if ev.Node == t.currentNode {
			return nil
		}
		t.currentNode = ev.Node
		if !t.announceNodes {
			return nil
		}
		return t.sink(Event{Type: TypeNodeStart, Node: string(ev.Node)})

	case graph.EventNodeExit:
		if t.announceNodes && ev.Node == t.currentNode {
			if err := t.sink(Event{Type: TypeNodeEnd, Node: string(ev.Node)}); err != nil {
				return err
			}
		}
		if ev.Node == graph.NodeQuery {
			t.inQuery = false
			return t.announcePlan(ev)
		}
		if ev.Node == graph.NodeMain {
			return t.reportCompletedSteps(ev)
		}
		return nil

	case graph.EventToken:
		if t.inQuery {
			return nil
		}
		return t.sink(Event{Type: TypeToken, Content: ev.Token})

	case graph.EventToolStart:
		return t.sink(Event{Type: TypeToolStart, Tool: ev.Tool, Input: ev.Input})

	case graph.EventToolEnd:
		return t.sink(Event{Type: TypeToolEnd, Tool: ev.Tool, Output: ev.Output})
	}

	return nil
}

func (t *Translator) announcePlan(ev graph.Event) error {
	if t.planAnnounced || !ev.PlanNeeded || len(ev.Plan) == 0 {
		return nil
	}
	t.planAnnounced = true
	t.lastPlan = ev.Plan
	return t.sink(Event{Type: TypePlanCreated, Plan: ev.Plan})
}

// reportCompletedSteps diffs the plan snapshot against the previous one and
// emits plan_step_completed for each step that flipped to completed.
func (t *Translator) reportCompletedSteps(ev graph.Event) error {
	if len(t.lastPlan) == 0 {
		return nil
	}

	for i, step := range ev.Plan {
		if step.Status != graph.StepCompleted {
			continue
		}
		if i < len(t.lastPlan) && t.lastPlan[i].Status == graph.StepCompleted {
			continue
		}
		if err := t.sink(Event{
			Type:        TypePlanStepCompleted,
			StepNumber:  step.Number,
			Description: step.Description,
		}); err != nil {
			return err
		}
	}

	t.lastPlan = ev.Plan
	return nil
}
