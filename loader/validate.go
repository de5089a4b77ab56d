package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/storyloom/engine/effects"
	"github.com/nathoo/storyloom/engine/rules"
	"github.com/nathoo/storyloom/engine/state"
	"github.com/nathoo/storyloom/engine/story"
)

// ValidationError collects lint findings for a story. Errors are things
// that will misbehave at play time; warnings are legal but suspicious.
// Neither blocks loading or play.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Err returns e when it holds errors and nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Validate lints g for play from entry. It always returns a report.
func Validate(g *story.Graph, entry string) *ValidationError {
	ve := &ValidationError{}

	if !g.Has(entry) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"entry passage %q not found", entry))
	}

	// Conditions and effects are checked against the declared variables;
	// a root or type mistake fails the same way in every state.
	for _, id := range g.IDs() {
		p, _ := g.Get(id)
		if strings.TrimSpace(p.Text) == "" {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"passage %q has no text", id))
		}
		for i, c := range p.Choices {
			if c.Condition != "" {
				v := state.Clone(g.Variables)
				if _, err := rules.EvalCondition(c.Condition, &v); err != nil {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"passage %q choice %d condition %q: %v", id, i+1, c.Condition, err))
				}
			}
			if c.Effect != "" {
				if err := effects.Check(c.Effect, g.Variables); err != nil {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"passage %q choice %d effect %q: %v", id, i+1, c.Effect, err))
				}
			}
			if strings.TrimSpace(c.Text) == "" {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"passage %q choice %d has no text", id, i+1))
			}
		}
	}

	for _, ref := range g.Dangling() {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"passage %q choice %d targets missing passage %q (ends the story)",
			ref.Passage, ref.Index+1, ref.Choice.Target))
	}

	if g.Has(entry) {
		reachable := g.Reachable(entry)
		for _, id := range g.IDs() {
			if !reachable[id] {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"passage %q is unreachable from %q", id, entry))
			}
		}
	}

	return ve
}
