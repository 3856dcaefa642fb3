// Package search holds the search query slice of the global state.
package search

import "github.com/jask/statebox/internal/store"

// State is the search fragment.
type State struct {
	Name string `json:"name"`
}

// Slice is the search slice definition.
var Slice = store.NewSlice("search", State{Name: ""})

var (
	// ClearQuery empties the query.
	ClearQuery = store.Case(Slice, "clearQuery", func(s State) State {
		s.Name = ""
		return s
	})
	// SetQuery replaces the query with the payload as given.
	SetQuery = store.PayloadCase(Slice, "setQuery", func(s State, q string) State {
		s.Name = q
		return s
	})
)
