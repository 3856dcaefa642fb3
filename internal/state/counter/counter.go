// Package counter holds the counter slice of the global state.
package counter

import "github.com/jask/statebox/internal/store"

// State is the counter fragment. Count is not clamped: it wraps at the
// int64 limits like any Go integer.
type State struct {
	Count int64 `json:"count"`
}

// Slice is the counter slice definition.
var Slice = store.NewSlice("counter", State{Count: 0})

var (
	// Increment adds one to the count.
	Increment = store.Case(Slice, "increment", func(s State) State {
		return State{Count: s.Count + 1}
	})
	// Decrement subtracts one from the count.
	Decrement = store.Case(Slice, "decrement", func(s State) State {
		return State{Count: s.Count - 1}
	})
)
