// Package session keeps conversation history in memory, keyed by session ID.
//
// Invariants:
// - Messages returned by History are copies; callers cannot mutate the store.
// - Appends for the same session are serialized.
// - History survives only for the lifetime of the process.
//
// Usage:
//
//	store := session.NewStore()
//	id, _ := store.GetOrCreate("")
//	_ = store.Append(id, session.Message{Role: session.RoleUser, Content: "hello"})
//	history, _ := store.History(id)
//	_ = history
package session
