// Package projection derives display values from the global state.
package projection

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/jask/statebox/internal/state"
)

// Env is what order expressions can see.
type Env struct {
	Name  string `expr:"name"`
	Count int64  `expr:"count"`
}

func envOf(s state.State) Env {
	return Env{Name: state.Query(s), Count: state.Count(s)}
}

// Order is a compiled order-line expression.
type Order struct {
	source  string
	program *vm.Program
}

// CompileOrder compiles src, which must evaluate to a string.
func CompileOrder(src string) (*Order, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.New("compile order expression: empty")
	}
	program, err := expr.Compile(src, expr.Env(Env{}), expr.AsKind(reflect.String))
	if err != nil {
		return nil, fmt.Errorf("compile order expression %q: %w", src, err)
	}
	return &Order{source: src, program: program}, nil
}

func (o *Order) String() string { return o.source }

// Eval runs the expression against s.
func (o *Order) Eval(s state.State) (string, error) {
	out, err := expr.Run(o.program, envOf(s))
	if err != nil {
		return "", fmt.Errorf("eval order expression: %w", err)
	}
	str, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("eval order expression: got %T, want string", out)
	}
	return str, nil
}
