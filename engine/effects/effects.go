// Package effects applies choice effects to the variable store.
// An effect is one or more assignment or increment statements. Statements
// are applied to a working copy first, so a failing effect mutates nothing.
package effects

import (
	"fmt"
	"strings"

	"github.com/nathoo/storyloom/engine/parser"
	"github.com/nathoo/storyloom/engine/state"
	"github.com/nathoo/storyloom/types"
)

// ApplyError reports an effect statement that could not be applied.
type ApplyError struct {
	Source    string
	Statement string
	Msg       string
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("malformed expression %q: %s: %s", e.Source, e.Statement, e.Msg)
}

func (e *ApplyError) Unwrap() error { return parser.ErrMalformed }

// Apply parses src and applies every statement to v. An empty effect is a
// no-op. On error v is left untouched.
func Apply(src string, v *types.Variables) error {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	stmts, err := parser.ParseEffect(src)
	if err != nil {
		return err
	}

	work := state.Clone(*v)
	for _, s := range stmts {
		if err := applyStatement(&work, s); err != nil {
			return &ApplyError{Source: src, Statement: s.String(), Msg: err.Error()}
		}
	}
	*v = work
	return nil
}

// Check parses src and dry-runs it against v without mutating it.
func Check(src string, v types.Variables) error {
	work := state.Clone(v)
	return Apply(src, &work)
}

func applyStatement(v *types.Variables, s parser.Statement) error {
	path := s.Slot().Segments
	switch s := s.(type) {
	case *parser.Assign:
		return state.Assign(v, path, s.Value.Value)

	case *parser.Increment:
		kind, err := state.SlotKind(path)
		if err != nil {
			return err
		}
		if kind != state.KindNumber {
			return fmt.Errorf("%s holds a %s, cannot %s", s.Target, kind, s.Op)
		}
		cur, err := state.Lookup(v, path)
		if err != nil {
			return err
		}
		return state.Assign(v, path, cur.(float64)+s.Delta())

	default:
		return fmt.Errorf("unsupported statement %T", s)
	}
}
