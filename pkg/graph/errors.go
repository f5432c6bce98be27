package graph

import "fmt"

// LoopBoundError reports that a run exceeded its configured cycle bound
// without the model producing a final answer.
type LoopBoundError struct {
	MaxCycles int
}

func (e *LoopBoundError) Error() string {
	return fmt.Sprintf("agent exceeded the maximum of %d reasoning cycles without completing", e.MaxCycles)
}
