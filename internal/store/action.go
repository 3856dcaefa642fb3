package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned when an action kind is not declared by any slice.
var ErrUnknownAction = errors.New("unknown action")

// Action describes something that happened. Slice and Type select the case
// reducer; Payload is nil for empty actions.
type Action struct {
	Slice   string
	Type    string
	Payload any
}

// Kind returns the "slice/type" tag of the action.
func (a Action) Kind() string {
	return a.Slice + "/" + a.Type
}

func (a Action) String() string {
	if a.Payload == nil {
		return a.Kind()
	}
	return fmt.Sprintf("%s(%v)", a.Kind(), a.Payload)
}

// ParseKind splits a "slice/type" tag.
func ParseKind(kind string) (slice, typ string, err error) {
	slice, typ, ok := strings.Cut(strings.TrimSpace(kind), "/")
	if !ok || slice == "" || typ == "" {
		return "", "", fmt.Errorf("action kind %q: want slice/type", kind)
	}
	return slice, typ, nil
}

// Decoder fills v with an encoded payload. It is how scenario files and the
// journal hand payloads to Builder without the store knowing their format.
type Decoder func(v any) error

// Builder constructs actions for one slice from their encoded form.
type Builder interface {
	Name() string
	Types() []string
	Build(typ string, decode Decoder) (Action, error)
}

// Registry resolves action kinds across slices.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry indexes builders by slice name. Duplicate names panic.
func NewRegistry(builders ...Builder) *Registry {
	r := &Registry{builders: make(map[string]Builder, len(builders))}
	for _, b := range builders {
		if _, dup := r.builders[b.Name()]; dup {
			panic(fmt.Sprintf("store: slice %q registered twice", b.Name()))
		}
		r.builders[b.Name()] = b
	}
	return r
}

// Build returns the action for kind, decoding its payload with decode.
func (r *Registry) Build(kind string, decode Decoder) (Action, error) {
	slice, typ, err := ParseKind(kind)
	if err != nil {
		return Action{}, err
	}
	b, ok := r.builders[slice]
	if !ok {
		return Action{}, fmt.Errorf("%w: %s", ErrUnknownAction, kind)
	}
	return b.Build(typ, decode)
}

// Kinds lists every declared action kind.
func (r *Registry) Kinds() []string {
	var out []string
	for name, b := range r.builders {
		for _, t := range b.Types() {
			out = append(out, name+"/"+t)
		}
	}
	return sortedCopy(out)
}
