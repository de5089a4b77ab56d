package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/storyloom/engine/story"
	"github.com/nathoo/storyloom/types"
)

func validGraph() *story.Graph {
	g := story.New()
	g.Variables.Flags["hasKey"] = false
	g.Put("start", types.Passage{
		Text: "Hi",
		Choices: []types.Choice{
			{Text: "Go", Target: "end", Condition: "flags.hasKey"},
			{Text: "Wait", Target: "start", Effect: "relationships.mara += 1"},
		},
	})
	g.Put("end", types.Passage{Text: "Bye."})
	return g
}

func assertContains(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("expected a message containing %q, got: %v", substr, msgs)
}

func TestValidate_Valid(t *testing.T) {
	ve := Validate(validGraph(), "start")
	if err := ve.Err(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(ve.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", ve.Warnings)
	}
}

func TestValidate_MissingEntry(t *testing.T) {
	ve := Validate(validGraph(), "prologue")
	if ve.Err() == nil {
		t.Fatal("expected error for missing entry")
	}
	assertContains(t, ve.Errors, `entry passage "prologue"`)
}

func TestValidate_MalformedExpressions(t *testing.T) {
	g := validGraph()
	g.Put("start", types.Passage{
		Text: "Hi",
		Choices: []types.Choice{
			{Text: "Syntax", Target: "end", Condition: "flags.hasKey &&"},
			{Text: "Root", Target: "end", Condition: "flgs.hasKey"},
			{Text: "Type", Target: "end", Effect: "flags.hasKey += 1"},
			{Text: "Host", Target: "end", Effect: "window.location = 1"},
		},
	})
	ve := Validate(g, "start")
	if len(ve.Errors) != 4 {
		t.Fatalf("errors = %v, want 4", ve.Errors)
	}
	assertContains(t, ve.Errors, "choice 1 condition")
	assertContains(t, ve.Errors, "choice 2 condition")
	assertContains(t, ve.Errors, "choice 3 effect")
	assertContains(t, ve.Errors, "choice 4 effect")
	if !strings.Contains(ve.Error(), "4 error(s)") {
		t.Errorf("Error() = %q", ve.Error())
	}
}

func TestValidate_Warnings(t *testing.T) {
	g := validGraph()
	g.Put("orphan", types.Passage{Text: ""})
	g.Put("end", types.Passage{Text: "Bye.", Choices: []types.Choice{{Target: "void"}}})

	ve := Validate(g, "start")
	if ve.Err() != nil {
		t.Fatalf("warnings must not be errors: %v", ve.Errors)
	}
	assertContains(t, ve.Warnings, `targets missing passage "void"`)
	assertContains(t, ve.Warnings, `passage "orphan" is unreachable`)
	assertContains(t, ve.Warnings, `passage "orphan" has no text`)
	assertContains(t, ve.Warnings, `passage "end" choice 1 has no text`)
}
