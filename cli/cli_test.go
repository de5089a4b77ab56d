package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nathoo/storyloom/engine"
	"github.com/nathoo/storyloom/engine/story"
	"github.com/nathoo/storyloom/store"
	"github.com/nathoo/storyloom/types"
)

// testGraph returns a small cell escape story for CLI testing.
func testGraph() *story.Graph {
	g := story.New()
	g.Put("start", types.Passage{
		Text: "You wake in a cell.\n",
		Choices: []types.Choice{
			{Text: "Take the key", Target: "cell", Effect: "inventory.key = true"},
			{Text: "Open the door", Target: "hall", Condition: "inventory.key"},
		},
	})
	g.Put("cell", types.Passage{
		Text: "The key is cold.",
		Choices: []types.Choice{
			{Text: "Open the door", Target: "hall", Condition: "inventory.key"},
			{Text: "Sleep", Target: "nowhere"},
		},
	})
	g.Put("hall", types.Passage{Text: "Freedom."})
	g.Variables.Inventory["key"] = false
	return g
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	eng := engine.New(testGraph())
	var out bytes.Buffer
	c := &CLI{
		Engine: eng,
		Store:  store.NewFileStore(t.TempDir()),
		In:     strings.NewReader(input),
		Out:    &out,
	}
	return c, &out
}

func TestCLI_ShowsEntryPassage(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "You wake in a cell.") {
		t.Error("expected entry passage text in output")
	}
	if !strings.Contains(output, "  1. Take the key") {
		t.Errorf("expected numbered choice, got:\n%s", output)
	}
	if strings.Contains(output, "Open the door") {
		t.Error("gated choice should be hidden")
	}
	if !strings.Contains(output, "[Goodbye.]") {
		t.Error("expected goodbye message")
	}
}

func TestCLI_ChooseByNumberThenWord(t *testing.T) {
	c, out := newTestCLI(t, "1\ndoor\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "The key is cold.") {
		t.Error("expected cell passage after choosing 1")
	}
	if !strings.Contains(output, "Freedom.") {
		t.Error("expected hall passage after choosing door")
	}
	if !strings.Contains(output, "No choices are available") {
		t.Error("expected dead-end notice in hall")
	}
	if got := c.Player.State().CurrentPassage; got != "hall" {
		t.Errorf("current = %q, want hall", got)
	}
}

func TestCLI_UnknownInput(t *testing.T) {
	c, out := newTestCLI(t, "dance\n9\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, `No choice matches "dance".`) {
		t.Errorf("expected not-found message, got:\n%s", output)
	}
	if !strings.Contains(output, `No choice matches "9".`) {
		t.Errorf("expected out-of-range message, got:\n%s", output)
	}
	if got := c.Player.State().CurrentPassage; got != "start" {
		t.Errorf("current = %q, want start", got)
	}
}

func TestCLI_StoryEnded(t *testing.T) {
	c, out := newTestCLI(t, "1\nsleep\n1\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, engine.EndText) {
		t.Error("expected end text after missing target")
	}
	if !strings.Contains(output, "[The story has ended. Use /restart, /load or /quit.]") {
		t.Errorf("expected ended message, got:\n%s", output)
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "/save") {
		t.Error("expected /save in help output")
	}
	if !strings.Contains(output, "/novel") {
		t.Error("expected /novel in help output")
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/dance\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Unknown command: /dance") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	c, out := newTestCLI(t, "1\n/save slot1\n/restart\n/load slot1\n/saves\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "[Progress saved to slot1.]") {
		t.Errorf("expected save confirmation, got:\n%s", output)
	}
	if !strings.Contains(output, "[Progress loaded from slot1 (1 choices made).]") {
		t.Errorf("expected load confirmation, got:\n%s", output)
	}
	if !strings.Contains(output, "  slot1") {
		t.Error("expected slot1 in save listing")
	}

	s := c.Player.State()
	if s.CurrentPassage != "cell" || !s.Variables.Inventory["key"] {
		t.Errorf("state after load = %+v", s)
	}
}

func TestCLI_LoadMissing(t *testing.T) {
	c, out := newTestCLI(t, "/load\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "[Load failed:") {
		t.Error("expected load failure for missing quicksave")
	}
}

func TestCLI_Novel(t *testing.T) {
	c, out := newTestCLI(t, "1\n/novel\n/quit\n")
	c.Run(context.Background())

	want := "You wake in a cell.\n\nYou chose: \"Take the key\"\n\nThe key is cold.\n\n"
	if !strings.Contains(out.String(), want) {
		t.Errorf("novel missing from output:\n%s", out.String())
	}
}

func TestCLI_State(t *testing.T) {
	c, out := newTestCLI(t, "1\n/state\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "[Passage: cell]") {
		t.Error("expected passage in state dump")
	}
	if !strings.Contains(output, "[Inventory: [key]]") {
		t.Errorf("expected inventory in state dump, got:\n%s", output)
	}
}

func TestCLI_Trace(t *testing.T) {
	c, out := newTestCLI(t, "/trace\n1\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "[Trace output enabled.]") {
		t.Error("expected trace toggle message")
	}
	if !strings.Contains(output, "choice_selected") || !strings.Contains(output, "passage_entered") {
		t.Errorf("expected traced events, got:\n%s", output)
	}
}

func TestCLI_CommentsAndEcho(t *testing.T) {
	c, out := newTestCLI(t, "# pick up the key\n1\n/quit\n")
	c.EchoInput = true
	c.Run(context.Background())

	output := out.String()
	if strings.Contains(output, "pick up the key") {
		t.Error("comment lines should not be echoed")
	}
	if !strings.Contains(output, "> 1\n") {
		t.Errorf("expected echoed input, got:\n%s", output)
	}
}
