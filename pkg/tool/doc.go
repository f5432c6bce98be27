// Package tool provides a registry of callable tools with JSON Schema
// argument validation.
//
// Invariants:
// - Tool names are unique; registering a duplicate fails.
// - Arguments are validated against the tool's schema before the handler runs.
// - Specs lists tools in registration order.
package tool
