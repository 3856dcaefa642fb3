// Package state composes the counter and search slices into the global state
// and provides the selectors views read it through.
package state

import (
	"fmt"

	"github.com/jask/statebox/internal/state/counter"
	"github.com/jask/statebox/internal/state/search"
	"github.com/jask/statebox/internal/store"
)

// State is the global state tree.
type State struct {
	Counter counter.State `json:"counter"`
	Search  search.State  `json:"search"`
}

// Store is the store type the application runs on.
type Store = store.Store[State]

var root = store.Combine(
	store.Mount(counter.Slice,
		func(s State) counter.State { return s.Counter },
		func(s State, c counter.State) State { s.Counter = c; return s },
	),
	store.Mount(search.Slice,
		func(s State) search.State { return s.Search },
		func(s State, q search.State) State { s.Search = q; return s },
	),
)

var registry = store.NewRegistry(counter.Slice, search.Slice)

// Root returns the combined reducer.
func Root() *store.Root[State] { return root }

// Registry resolves "slice/type" kinds to actions.
func Registry() *store.Registry { return registry }

// Initial is the state every store starts from.
func Initial() State { return root.Initial() }

// Reduce is the root reducer.
func Reduce(s State, a store.Action) State { return root.Reduce(s, a) }

// NewStore returns a store at the initial state.
func NewStore(opts ...store.Option[State]) *Store {
	opts = append([]store.Option[State]{store.WithHandles[State](root.Handles)}, opts...)
	return store.New(store.Reducer[State](Reduce), Initial(), opts...)
}

// Query selects the search query.
func Query(s State) string { return s.Search.Name }

// Count selects the counter value.
func Count(s State) int64 { return s.Counter.Count }

// OrderLine is the derived "<name> x<count>" projection.
func OrderLine(s State) string {
	return fmt.Sprintf("%s x%d", s.Search.Name, s.Counter.Count)
}
