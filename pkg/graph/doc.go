// Package graph implements the agent execution graphs.
//
// Two variants exist. The basic agent alternates REASON and ACT until the
// model stops requesting tools. The planned agent prepends a QUERY phase that
// may produce a step plan, then alternates MAIN and TOOL while tracking plan
// progress.
//
// Agents report progress through an EmitFunc. A non-nil error from the emit
// function aborts the run at the next yield point.
package graph
