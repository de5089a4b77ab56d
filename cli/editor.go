package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nathoo/storyloom/engine"
	"github.com/nathoo/storyloom/engine/script"
	"github.com/nathoo/storyloom/loader"
	"github.com/nathoo/storyloom/types"
)

// Editor is a line-oriented REPL over an engine's story graph. Every graph
// edit goes through the engine, so undo and redo cover them all.
type Editor struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Path      string // default target for "write"
	EchoInput bool
}

// NewEditor creates an editor over eng that writes back to path.
func NewEditor(eng *engine.Engine, path string) *Editor {
	return &Editor{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
		Path:   path,
	}
}

// Run reads commands until end of input or "quit".
func (ed *Editor) Run() {
	scanner := bufio.NewScanner(ed.In)
	for {
		fmt.Fprint(ed.Out, "edit> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if ed.EchoInput {
			ed.printLine(input)
		}
		if ed.exec(input) {
			return
		}
	}
}

// exec runs one command. Returns true on quit.
func (ed *Editor) exec(input string) bool {
	cmd, rest := cut(input)

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		ed.cmdHelp()
	case "add":
		id, text := cut(rest)
		ed.report(ed.Engine.AddPassage(id, unescape(text)), "Added passage %s.", id)
	case "text":
		id, text := cut(rest)
		ed.report(ed.Engine.SetPassageText(id, unescape(text)), "Updated text of %s.", id)
	case "rename":
		ed.cmdRename(rest)
	case "delete":
		n, err := ed.Engine.DeletePassage(rest)
		ed.report(err, "Deleted %s and %d choice(s) pointing at it.", rest, n)
	case "choice":
		ed.cmdChoice(rest)
	case "var":
		ed.report(ed.Engine.SetVariable(rest), "Set %s.", rest)
	case "unvar":
		ed.report(ed.Engine.RemoveVariable(rest), "Removed %s.", rest)
	case "undo":
		ed.report(ed.Engine.Undo(), "Undone.")
	case "redo":
		ed.report(ed.Engine.Redo(), "Redone.")
	case "list":
		ed.cmdList()
	case "show":
		ed.cmdShow(rest)
	case "check":
		ed.cmdCheck()
	case "script":
		fmt.Fprint(ed.Out, ed.Engine.Script())
	case "graph":
		ed.printLine(ed.Engine.Mermaid(&script.Overlay{}))
	case "write":
		ed.cmdWrite(rest)
	default:
		ed.printSystem(fmt.Sprintf("Unknown command: %s. Type help for available commands.", cmd))
	}
	return false
}

// report prints the outcome of an engine call.
func (ed *Editor) report(err error, format string, args ...any) {
	if err != nil {
		ed.fail(err)
		return
	}
	ed.printSystem(fmt.Sprintf(format, args...))
}

func (ed *Editor) cmdRename(rest string) error {
	args := strings.Fields(rest)
	retarget := false
	var ids []string
	for _, a := range args {
		if a == "--retarget" {
			retarget = true
			continue
		}
		ids = append(ids, a)
	}
	if len(ids) != 2 {
		return ed.usage("rename <old> <new> [--retarget]")
	}
	if err := ed.Engine.RenamePassage(ids[0], ids[1], retarget); err != nil {
		return ed.fail(err)
	}
	ed.printSystem(fmt.Sprintf("Renamed %s to %s.", ids[0], ids[1]))
	if !retarget {
		if refs := ed.Engine.Graph().Referrers(ids[0]); len(refs) > 0 {
			ed.printSystem(fmt.Sprintf("%d choice(s) still point at %s.", len(refs), ids[0]))
		}
	}
	return nil
}

func (ed *Editor) cmdChoice(rest string) error {
	sub, rest := cut(rest)
	switch sub {
	case "add":
		src, rest := cut(rest)
		target, text := cut(rest)
		if src == "" || target == "" {
			return ed.usage("choice add <passage> <target> [text]")
		}
		if err := ed.Engine.AddChoice(src, types.Choice{Text: text, Target: target}); err != nil {
			return ed.fail(err)
		}
		ed.printSystem(fmt.Sprintf("Added choice %s -> %s.", src, target))
		return nil

	case "set":
		src, rest := cut(rest)
		num, rest := cut(rest)
		field, value := cut(rest)
		i, ok := choiceNumber(num)
		if src == "" || !ok || field == "" {
			return ed.usage("choice set <passage> <n> text|target|if|do <value>")
		}
		p, found := ed.Engine.Graph().Get(src)
		if !found || i >= len(p.Choices) {
			// let the engine produce the precise error
			return ed.fail(ed.Engine.UpdateChoice(src, i, types.Choice{}))
		}
		c := p.Choices[i]
		switch field {
		case "text":
			c.Text = value
		case "target":
			c.Target = value
		case "if":
			c.Condition = value
		case "do":
			c.Effect = value
		default:
			return ed.usage("choice set <passage> <n> text|target|if|do <value>")
		}
		if err := ed.Engine.UpdateChoice(src, i, c); err != nil {
			return ed.fail(err)
		}
		ed.printSystem(fmt.Sprintf("Updated choice %d of %s.", i+1, src))
		return nil

	case "rm":
		src, num := cut(rest)
		i, ok := choiceNumber(num)
		if src == "" || !ok {
			return ed.usage("choice rm <passage> <n>")
		}
		if err := ed.Engine.RemoveChoice(src, i); err != nil {
			return ed.fail(err)
		}
		ed.printSystem(fmt.Sprintf("Removed choice %d of %s.", i+1, src))
		return nil
	}
	return ed.usage("choice add|set|rm ...")
}

func (ed *Editor) cmdList() {
	g := ed.Engine.Graph()
	reach := g.Reachable(ed.Engine.Entry())
	for _, id := range g.IDs() {
		p, _ := g.Get(id)
		mark := " "
		switch {
		case id == ed.Engine.Entry():
			mark = "*"
		case !reach[id]:
			mark = "?"
		}
		ed.printLine(fmt.Sprintf("%s %s (%d choices)", mark, id, len(p.Choices)))
	}
}

func (ed *Editor) cmdShow(id string) {
	p, ok := ed.Engine.Graph().Get(id)
	if !ok {
		ed.printSystem(fmt.Sprintf("No passage named %s.", id))
		return
	}
	ed.printLine(p.ID)
	for _, line := range strings.Split(strings.TrimSpace(p.Text), "\n") {
		ed.printLine("  " + line)
	}
	for i, c := range p.Choices {
		line := fmt.Sprintf("  %d. %s -> %s", i+1, c.Text, c.Target)
		if c.Condition != "" {
			line += " [if " + c.Condition + "]"
		}
		if c.Effect != "" {
			line += " [" + c.Effect + "]"
		}
		if !ed.Engine.Graph().Has(c.Target) {
			line += " (missing)"
		}
		ed.printLine(line)
	}
}

func (ed *Editor) cmdCheck() {
	report := loader.Validate(ed.Engine.Graph(), ed.Engine.Entry())
	for _, e := range report.Errors {
		ed.printLine("error: " + e)
	}
	for _, w := range report.Warnings {
		ed.printLine("warning: " + w)
	}
	ed.printSystem(fmt.Sprintf("%d error(s), %d warning(s).", len(report.Errors), len(report.Warnings)))
}

func (ed *Editor) cmdWrite(path string) error {
	if path == "" {
		path = ed.Path
	}
	if path == "" {
		return ed.usage("write <path>")
	}
	format, err := loader.FormatFor(path)
	if err != nil {
		return ed.fail(err)
	}
	data, err := loader.Marshal(ed.Engine.Graph(), format)
	if err != nil {
		return ed.fail(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ed.fail(err)
	}
	ed.printSystem(fmt.Sprintf("Wrote %d passages to %s.", ed.Engine.Graph().Len(), path))
	return nil
}

func (ed *Editor) cmdHelp() {
	help := []string{
		"Passages:",
		"  add <id> [text]                   Add a passage (\\n starts a new line)",
		"  text <id> <text>                  Replace a passage's text",
		"  rename <old> <new> [--retarget]   Rename; --retarget rewrites choices too",
		"  delete <id>                       Delete a passage and choices into it",
		"  list                              List passages (* entry, ? unreachable)",
		"  show <id>                         Show one passage",
		"",
		"Choices (n counts from 1):",
		"  choice add <id> <target> [text]",
		"  choice set <id> <n> text|target|if|do <value>",
		"  choice rm <id> <n>",
		"",
		"Variables:",
		"  var <effect>                      e.g. var flags.met = true",
		"  unvar <path>                      e.g. unvar inventory.key",
		"",
		"Other:",
		"  undo / redo                       Step through passage edits",
		"  check                             Lint the story",
		"  script                            Print the branching script",
		"  graph                             Print a Mermaid flowchart",
		"  write [path]                      Save as .yaml or .json",
		"  quit",
	}
	for _, line := range help {
		ed.printLine(line)
	}
}

func (ed *Editor) usage(text string) error {
	ed.printSystem("Usage: " + text)
	return errUsage
}

func (ed *Editor) fail(err error) error {
	if err == nil {
		return nil
	}
	if engine.IsEmptyHistory(err) {
		msg, _, _ := strings.Cut(err.Error(), ":")
		ed.printSystem(capitalize(msg) + ".")
		return err
	}
	ed.printSystem("Error: " + err.Error())
	return err
}

func (ed *Editor) printLine(text string) {
	fmt.Fprintln(ed.Out, text)
}

func (ed *Editor) printSystem(text string) {
	fmt.Fprintf(ed.Out, "[%s]\n", text)
}

var errUsage = errors.New("usage")

// cut splits off the first whitespace-separated word.
func cut(s string) (head, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

func choiceNumber(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
