package store

import (
	"fmt"
	"slices"
)

type caseReducer[S any] struct {
	reduce func(S, Action) S
	build  func(decode Decoder) (Action, error)
}

// Slice is a named fragment of state and the case reducers that update it.
// Cases are declared with Case and PayloadCase, normally at package init.
type Slice[S any] struct {
	name    string
	initial S
	cases   map[string]caseReducer[S]
}

// NewSlice returns a slice with no cases.
func NewSlice[S any](name string, initial S) *Slice[S] {
	return &Slice[S]{
		name:    name,
		initial: initial,
		cases:   make(map[string]caseReducer[S]),
	}
}

func (s *Slice[S]) Name() string { return s.name }

func (s *Slice[S]) Initial() S { return s.initial }

// Types lists the declared action types in lexical order.
func (s *Slice[S]) Types() []string {
	out := make([]string, 0, len(s.cases))
	for t := range s.cases {
		out = append(out, t)
	}
	return sortedCopy(out)
}

// Handles reports whether a is addressed to this slice and declared by it.
func (s *Slice[S]) Handles(a Action) bool {
	if a.Slice != s.name {
		return false
	}
	_, ok := s.cases[a.Type]
	return ok
}

// Reduce applies the matching case reducer. Anything it does not recognise
// leaves state as it was.
func (s *Slice[S]) Reduce(state S, a Action) S {
	if a.Slice != s.name {
		return state
	}
	c, ok := s.cases[a.Type]
	if !ok {
		return state
	}
	return c.reduce(state, a)
}

// Build constructs the typ action, decoding its payload when the case takes one.
func (s *Slice[S]) Build(typ string, decode Decoder) (Action, error) {
	c, ok := s.cases[typ]
	if !ok {
		return Action{}, fmt.Errorf("%w: %s/%s", ErrUnknownAction, s.name, typ)
	}
	return c.build(decode)
}

func (s *Slice[S]) declare(typ string, c caseReducer[S]) {
	if typ == "" {
		panic(fmt.Sprintf("store: slice %q: empty action type", s.name))
	}
	if _, dup := s.cases[typ]; dup {
		panic(fmt.Sprintf("store: slice %q: action %q declared twice", s.name, typ))
	}
	s.cases[typ] = c
}

// Case declares an action without payload and returns its constructor.
func Case[S any](s *Slice[S], typ string, fn func(S) S) func() Action {
	newAction := func() Action {
		return Action{Slice: s.name, Type: typ}
	}
	s.declare(typ, caseReducer[S]{
		reduce: func(state S, _ Action) S { return fn(state) },
		build: func(Decoder) (Action, error) {
			return newAction(), nil
		},
	})
	return newAction
}

// PayloadCase declares an action carrying a P and returns its constructor.
// An action whose payload is not a P is ignored by the reducer.
func PayloadCase[S, P any](s *Slice[S], typ string, fn func(S, P) S) func(P) Action {
	newAction := func(p P) Action {
		return Action{Slice: s.name, Type: typ, Payload: p}
	}
	s.declare(typ, caseReducer[S]{
		reduce: func(state S, a Action) S {
			p, ok := a.Payload.(P)
			if !ok {
				return state
			}
			return fn(state, p)
		},
		build: func(decode Decoder) (Action, error) {
			if decode == nil {
				return Action{}, fmt.Errorf("%s/%s: missing payload", s.name, typ)
			}
			var p P
			if err := decode(&p); err != nil {
				return Action{}, fmt.Errorf("%s/%s payload: %w", s.name, typ, err)
			}
			return newAction(p), nil
		},
	})
	return newAction
}

func sortedCopy(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}
