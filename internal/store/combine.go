package store

import "fmt"

// Reducer computes the next root state from the current one and an action.
type Reducer[R any] func(R, Action) R

// Mounted is a slice bound to a field of the root state R. Build one with Mount.
type Mounted[R any] interface {
	SliceName() string
	fragment(R) any
	initialize(R) R
	handles(Action) bool
	reduce(R, Action) R
}

type mount[R, S any] struct {
	slice *Slice[S]
	get   func(R) S
	set   func(R, S) R
}

// Mount binds slice to the part of R read by get and replaced by set.
// set must return a copy of R with only that part changed.
func Mount[R, S any](slice *Slice[S], get func(R) S, set func(R, S) R) Mounted[R] {
	return mount[R, S]{slice: slice, get: get, set: set}
}

func (m mount[R, S]) SliceName() string     { return m.slice.Name() }
func (m mount[R, S]) fragment(r R) any      { return m.get(r) }
func (m mount[R, S]) initialize(r R) R      { return m.set(r, m.slice.Initial()) }
func (m mount[R, S]) handles(a Action) bool { return m.slice.Handles(a) }

func (m mount[R, S]) reduce(r R, a Action) R {
	if !m.slice.Handles(a) {
		return r
	}
	return m.set(r, m.slice.Reduce(m.get(r), a))
}

// Root routes actions to mounted slices by slice name.
type Root[R any] struct {
	order  []string
	byName map[string]Mounted[R]
}

// Combine builds the root reducer. Slice names must be unique.
func Combine[R any](parts ...Mounted[R]) *Root[R] {
	r := &Root[R]{byName: make(map[string]Mounted[R], len(parts))}
	for _, p := range parts {
		name := p.SliceName()
		if _, dup := r.byName[name]; dup {
			panic(fmt.Sprintf("store: slice %q mounted twice", name))
		}
		r.byName[name] = p
		r.order = append(r.order, name)
	}
	return r
}

// Initial assembles the root state from every slice's initial value.
func (r *Root[R]) Initial() R {
	var state R
	for _, name := range r.order {
		state = r.byName[name].initialize(state)
	}
	return state
}

// Reduce applies a to the one slice it names. Other fragments are untouched,
// and an action no slice declares returns state as is.
func (r *Root[R]) Reduce(state R, a Action) R {
	m, ok := r.byName[a.Slice]
	if !ok {
		return state
	}
	return m.reduce(state, a)
}

// Handles reports whether some mounted slice declares a.
func (r *Root[R]) Handles(a Action) bool {
	m, ok := r.byName[a.Slice]
	return ok && m.handles(a)
}

// Names lists mounted slices in mount order.
func (r *Root[R]) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Fragments returns state keyed by slice name.
func (r *Root[R]) Fragments(state R) map[string]any {
	out := make(map[string]any, len(r.order))
	for _, name := range r.order {
		out[name] = r.byName[name].fragment(state)
	}
	return out
}
