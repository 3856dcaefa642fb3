// Package scenario replays scripted actions against a store without a UI.
package scenario

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jask/statebox/internal/store"
)

// ErrEmpty is returned for a script without steps.
var ErrEmpty = errors.New("scenario has no steps")

// Script is a parsed scenario file.
type Script struct {
	Name    string
	Actions []store.Action
}

type file struct {
	Name  string `yaml:"name"`
	Steps []step `yaml:"steps"`
}

type step struct {
	Action  string    `yaml:"action"`
	Payload yaml.Node `yaml:"payload"`
}

// Parse reads a YAML scenario and resolves each step through reg.
func Parse(r io.Reader, reg *store.Registry) (Script, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, ErrEmpty
		}
		return Script{}, fmt.Errorf("parse scenario: %w", err)
	}
	if len(f.Steps) == 0 {
		return Script{}, ErrEmpty
	}
	out := Script{Name: f.Name, Actions: make([]store.Action, 0, len(f.Steps))}
	for i, st := range f.Steps {
		var decode store.Decoder
		if !st.Payload.IsZero() {
			node := st.Payload
			decode = node.Decode
		}
		a, err := reg.Build(st.Action, decode)
		if err != nil {
			return Script{}, fmt.Errorf("step %d: %w", i+1, err)
		}
		out.Actions = append(out.Actions, a)
	}
	return out, nil
}

// Dispatcher is the part of a store Run needs.
type Dispatcher[R any] interface {
	State() R
	Dispatch(store.Action)
}

// Run dispatches actions in order and returns project of the state before
// the first action and after each one.
func Run[R any](s Dispatcher[R], actions []store.Action, project func(R) (string, error)) ([]string, error) {
	out := make([]string, 0, len(actions)+1)
	line, err := project(s.State())
	if err != nil {
		return nil, err
	}
	out = append(out, line)
	for i, a := range actions {
		s.Dispatch(a)
		line, err := project(s.State())
		if err != nil {
			return out, fmt.Errorf("after step %d (%s): %w", i+1, a.Kind(), err)
		}
		out = append(out, line)
	}
	return out, nil
}
