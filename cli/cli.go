// Package cli provides line-oriented terminal front ends for storyloom: a
// plain player loop with meta-commands and a passage editor REPL.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/nathoo/storyloom/engine"
	"github.com/nathoo/storyloom/engine/events"
	"github.com/nathoo/storyloom/engine/save"
	"github.com/nathoo/storyloom/engine/state"
	"github.com/nathoo/storyloom/store"
	"github.com/nathoo/storyloom/types"
)

// CLI handles terminal interaction with the reader.
type CLI struct {
	Engine    *engine.Engine
	Player    *engine.Player
	Store     store.Store
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	recorder *events.Recorder
}

// New creates a CLI wired to the given engine and save store.
func New(eng *engine.Engine, st store.Store) *CLI {
	return &CLI{
		Engine: eng,
		Player: eng.NewPlayer(),
		Store:  st,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

func (c *CLI) init() {
	if c.Player == nil {
		c.Player = c.Engine.NewPlayer()
	}
	if c.recorder == nil {
		c.recorder = &events.Recorder{}
		c.Engine.Bus().Subscribe("", c.recorder.Record)
	}
}

// Run starts the play loop. It shows the current passage, then loops:
// prompt → input → choose → output.
func (c *CLI) Run(ctx context.Context) {
	c.init()
	c.printView(c.Player.View())

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return // /quit
			}
			continue
		}

		c.recorder.Drain()
		view, err := c.Player.ChooseInput(input)
		if err != nil {
			c.printChooseError(err)
			continue
		}
		c.printLine("")
		c.printView(view)

		traced := c.recorder.Drain()
		if c.Trace {
			c.printTrace(traced)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(ctx, arg)

	case "/load":
		c.cmdLoad(ctx, arg)

	case "/saves":
		c.cmdSaves(ctx)

	case "/restart":
		c.Player.Restart()
		c.printSystem("Story restarted.")
		c.printView(c.Player.View())

	case "/novel":
		c.print(c.Player.Novel())

	case "/look":
		c.printView(c.Player.View())

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(ctx context.Context, name string) {
	if c.Store == nil {
		c.printSystem("Save failed: no save store configured")
		return
	}
	if name == "" {
		name = store.DefaultName
	}

	blob, err := save.Encode(c.Player.State())
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := c.Store.Save(ctx, name, blob); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Progress saved to %s.", name))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	if c.Store == nil {
		c.printSystem("Load failed: no save store configured")
		return
	}
	if name == "" {
		name = store.DefaultName
	}

	blob, err := c.Store.Load(ctx, name)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	ps, err := save.Decode(blob)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	c.Player.Restore(ps)
	c.printSystem(fmt.Sprintf("Progress loaded from %s (%d choices made).", name, len(ps.History)))
	c.printView(c.Player.View())
}

func (c *CLI) cmdSaves(ctx context.Context) {
	if c.Store == nil {
		c.printSystem("No save store configured.")
		return
	}
	names, err := c.Store.List(ctx)
	if err != nil {
		c.printSystem(fmt.Sprintf("Listing saves failed: %v", err))
		return
	}
	if len(names) == 0 {
		c.printSystem("No saves.")
		return
	}
	for _, n := range names {
		c.printLine("  " + n)
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save progress (default: quicksave)",
		"  /load [name]  Load progress (default: quicksave)",
		"  /saves        List saved games",
		"  /restart      Start over from the beginning",
		"  /novel        Print the story so far",
		"  /look         Show the current passage again",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"",
		"Choosing:",
		"  Type a choice number, or any word from the choice text.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Player.State()
	c.printSystem(fmt.Sprintf("Passage: %s", s.CurrentPassage))
	c.printSystem(fmt.Sprintf("Choices made: %d", len(s.History)))
	var held []string
	for _, k := range state.Keys(&s.Variables, state.Inventory) {
		if s.Variables.Inventory[k] {
			held = append(held, k)
		}
	}
	c.printSystem(fmt.Sprintf("Inventory: %v", held))
	if len(s.Variables.Flags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %s", formatBools(s.Variables.Flags)))
	}
	if len(s.Variables.Relationships) > 0 {
		c.printSystem(fmt.Sprintf("Relationships: %s", formatNumbers(s.Variables.Relationships)))
	}
	if s.Variables.Health != 0 {
		c.printSystem(fmt.Sprintf("Health: %s", strconv.FormatFloat(s.Variables.Health, 'f', -1, 64)))
	}
}

func (c *CLI) printChooseError(err error) {
	switch {
	case errors.Is(err, engine.ErrStoryEnded):
		c.printSystem("The story has ended. Use /restart, /load or /quit.")
	case errors.Is(err, engine.ErrChoiceUnavailable):
		c.printSystem("That choice is not available.")
	default:
		c.printLine(capitalize(err.Error()) + ".")
	}
}

func (c *CLI) printTrace(evts []types.Event) {
	if len(evts) == 0 {
		return
	}
	c.printSystem(fmt.Sprintf("trace: %d events", len(evts)))
	for _, e := range evts {
		c.printSystem(fmt.Sprintf("trace:   %s %v", e.Type, e.Data))
	}
}

func (c *CLI) printView(v engine.View) {
	c.printLine(v.Text)
	if v.Terminal {
		return
	}
	c.printLine("")
	if len(v.Choices) == 0 {
		c.printSystem("No choices are available. Use /restart or /quit.")
		return
	}
	for i, ch := range v.Choices {
		c.printLine(fmt.Sprintf("  %d. %s", i+1, ch.Text))
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatBools(m map[string]bool) string {
	keys := sortedKeys(m)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatBool(m[k])
	}
	return strings.Join(parts, " ")
}

func formatNumbers(m map[string]float64) string {
	keys := sortedKeys(m)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(m[k], 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
