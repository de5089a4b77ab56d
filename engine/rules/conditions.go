// Package rules evaluates choice conditions against the variable store.
// Evaluation walks a parsed expression tree; the only data it can reach is
// the store it is handed.
package rules

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/nathoo/storyloom/engine/parser"
	"github.com/nathoo/storyloom/engine/state"
	"github.com/nathoo/storyloom/types"
)

// EvalError reports a condition that parsed but could not be evaluated.
type EvalError struct {
	Source string
	Pos    int
	Msg    string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("malformed expression %q at offset %d: %s", e.Source, e.Pos, e.Msg)
}

func (e *EvalError) Unwrap() error { return parser.ErrMalformed }

// EvalCondition parses and evaluates src. On any failure it returns false
// together with the error; callers treat the choice as hidden.
func EvalCondition(src string, v *types.Variables) (bool, error) {
	n, err := parser.ParseCondition(src)
	if err != nil {
		return false, err
	}
	val, err := Eval(n, v)
	if err != nil {
		var ee *EvalError
		if errors.As(err, &ee) {
			ee.Source = src
		}
		return false, err
	}
	return truthy(val), nil
}

// Enabled reports whether a choice with the given condition is available.
// An empty condition is always true.
func Enabled(cond string, v *types.Variables) (bool, error) {
	if strings.TrimSpace(cond) == "" {
		return true, nil
	}
	return EvalCondition(cond, v)
}

// Eval evaluates a parsed node to a bool or float64.
func Eval(n parser.Node, v *types.Variables) (any, error) {
	switch n := n.(type) {
	case *parser.Literal:
		return n.Value, nil

	case *parser.Path:
		val, err := state.Lookup(v, n.Segments)
		if err != nil {
			return nil, &EvalError{Pos: n.At, Msg: err.Error()}
		}
		return val, nil

	case *parser.Unary:
		x, err := Eval(n.X, v)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "!":
			return !truthy(x), nil
		case "-", "+":
			f, ok := x.(float64)
			if !ok {
				return nil, &EvalError{Pos: n.At, Msg: "unary " + n.Op + " needs a number"}
			}
			if n.Op == "-" {
				return -f, nil
			}
			return f, nil
		}
		return nil, &EvalError{Pos: n.At, Msg: "unknown operator " + n.Op}

	case *parser.Binary:
		return evalBinary(n, v)

	default:
		return nil, &EvalError{Msg: fmt.Sprintf("unsupported node %T", n)}
	}
}

func evalBinary(n *parser.Binary, v *types.Variables) (any, error) {
	x, err := Eval(n.X, v)
	if err != nil {
		return nil, err
	}

	// Short-circuit: "a && b" never evaluates b when a is false.
	switch n.Op {
	case "&&":
		if !truthy(x) {
			return false, nil
		}
		y, err := Eval(n.Y, v)
		if err != nil {
			return nil, err
		}
		return truthy(y), nil
	case "||":
		if truthy(x) {
			return true, nil
		}
		y, err := Eval(n.Y, v)
		if err != nil {
			return nil, err
		}
		return truthy(y), nil
	}

	y, err := Eval(n.Y, v)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "==":
		return x == y, nil
	case "!=":
		return x != y, nil
	}

	a, aok := x.(float64)
	b, bok := y.(float64)
	if !aok || !bok {
		return nil, &EvalError{Pos: n.At, Msg: fmt.Sprintf("operator %s needs numbers", n.Op)}
	}

	switch n.Op {
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return nil, &EvalError{Pos: n.At, Msg: "division by zero"}
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return nil, &EvalError{Pos: n.At, Msg: "division by zero"}
		}
		return math.Mod(a, b), nil
	}
	return nil, &EvalError{Pos: n.At, Msg: "unknown operator " + n.Op}
}

// truthy treats false, 0 and NaN as false.
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	default:
		return false
	}
}
