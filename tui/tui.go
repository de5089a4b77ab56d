package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/storyloom/engine"
	"github.com/nathoo/storyloom/engine/events"
	"github.com/nathoo/storyloom/engine/save"
	"github.com/nathoo/storyloom/store"
	"github.com/nathoo/storyloom/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed reader input
	isSystem bool // true for system messages
	markdown bool // passage text rendered through glamour
}

// Model is the Bubble Tea model for the storyloom player.
type Model struct {
	ctx      context.Context
	engine   *engine.Engine
	player   *engine.Player
	store    store.Store
	recorder *events.Recorder
	markdown *markdownRenderer

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine   // accumulated narrative lines (unstyled, for re-wrapping)
	current  engine.View // last view shown, for the status bar
	opening  []rawLine   // first screen of output
	resume   string      // save to load before the first screen

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithMarkdown renders passage text as markdown.
func WithMarkdown() Option {
	return func(m *Model) { m.markdown = &markdownRenderer{} }
}

// WithResume loads the named save before the first passage is shown.
func WithResume(name string) Option {
	return func(m *Model) { m.resume = name }
}

// WithContext sets the context used for save store calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// storyOutputMsg carries output from the player into the Update loop.
type storyOutputMsg struct {
	input string    // echoed reader input (empty for the opening passage)
	lines []rawLine // output lines
}

// New creates a TUI model wired to the given engine and save store.
func New(eng *engine.Engine, st store.Store, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	rec := &events.Recorder{}
	eng.Bus().Subscribe("", rec.Record)

	m := Model{
		ctx:      context.Background(),
		engine:   eng,
		player:   eng.NewPlayer(),
		store:    st,
		recorder: rec,
		input:    ti,
		history:  NewHistory(100),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.resume != "" {
		m.opening = m.cmdLoad(m.resume)
	} else {
		m.opening = m.passageLines(m.player.View())
	}
	return m
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, eng *engine.Engine, st store.Store, opts ...Option) error {
	m := New(eng, st, append(opts, WithContext(ctx))...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init returns the initial command that shows the opening passage.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		return storyOutputMsg{lines: m.opening}
	}
}

// Update handles messages (key presses, window resize, story output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case storyOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(storyOutputMsg{input: input, lines: output})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	m = m.appendOutput(storyOutputMsg{input: input, lines: m.choose(input)})
	return m, nil
}

// choose takes the choice matching input and returns the lines to show.
func (m *Model) choose(input string) []rawLine {
	m.recorder.Drain()
	view, err := m.player.ChooseInput(input)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrStoryEnded):
			return []rawLine{{text: "The story has ended. Use /restart, /load or /quit.", isSystem: true}}
		default:
			return []rawLine{{text: capitalize(err.Error()) + ".", kind: kindError}}
		}
	}
	lines := m.passageLines(view)
	traced := m.recorder.Drain()
	if m.trace {
		lines = append(lines, m.formatTrace(traced)...)
	}
	return lines
}

// passageLines lays out a view: passage text, a blank line, then the
// numbered choices.
func (m *Model) passageLines(v engine.View) []rawLine {
	m.current = v
	var lines []rawLine
	if v.Terminal {
		return append(lines, rawLine{text: v.Text, kind: kindEnding})
	}
	if m.markdown != nil {
		lines = append(lines, rawLine{text: v.Text, markdown: true})
	} else {
		for _, para := range strings.Split(v.Text, "\n") {
			lines = append(lines, rawLine{text: para, kind: classifyLine(para)})
		}
	}
	lines = append(lines, rawLine{})
	if len(v.Choices) == 0 {
		return append(lines, rawLine{text: "No choices are available. Use /restart or /quit.", isSystem: true})
	}
	for i, c := range v.Choices {
		lines = append(lines, rawLine{text: fmt.Sprintf("%d. %s", i+1, c.Text), kind: kindChoice})
	}
	return lines
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg storyOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	m.rawLines = append(m.rawLines, msg.lines...)

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		if rl.markdown {
			styled = append(styled, m.markdown.Render(rl.text, width))
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindChoice:
		return styledChoice(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindEnding:
		return styleEnding.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return stylePassage.Render(line)
	}
}

// wordWrap breaks text at spaces so no line is wider than width cells.
// A single word wider than width keeps a line of its own.
func wordWrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case lipgloss.Width(line)+1+lipgloss.Width(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	return strings.Join(append(lines, line), "\n")
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]rawLine, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return systemLines("Goodbye."), true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/saves":
		return m.cmdSaves(), false

	case "/restart":
		m.player.Restart()
		return append(systemLines("Story restarted."), m.passageLines(m.player.View())...), false

	case "/novel":
		var lines []rawLine
		for _, para := range strings.Split(strings.TrimRight(m.player.Novel(), "\n"), "\n") {
			lines = append(lines, rawLine{text: para, kind: classifyLine(para)})
		}
		return lines, false

	case "/look":
		return m.passageLines(m.player.View()), false

	case "/help":
		return systemLines(helpText...), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return systemLines("Trace output enabled."), false
		}
		return systemLines("Trace output disabled."), false

	default:
		return systemLines(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)), false
	}
}

func (m *Model) cmdSave(name string) []rawLine {
	if m.store == nil {
		return systemLines("Save failed: no save store configured")
	}
	if name == "" {
		name = store.DefaultName
	}

	blob, err := save.Encode(m.player.State())
	if err != nil {
		return systemLines(fmt.Sprintf("Save failed: %v", err))
	}
	if err := m.store.Save(m.ctx, name, blob); err != nil {
		return systemLines(fmt.Sprintf("Save failed: %v", err))
	}

	return systemLines(fmt.Sprintf("Progress saved to %s.", name))
}

func (m *Model) cmdLoad(name string) []rawLine {
	if m.store == nil {
		return systemLines("Load failed: no save store configured")
	}
	if name == "" {
		name = store.DefaultName
	}

	blob, err := m.store.Load(m.ctx, name)
	if err != nil {
		return systemLines(fmt.Sprintf("Load failed: %v", err))
	}
	ps, err := save.Decode(blob)
	if err != nil {
		return systemLines(fmt.Sprintf("Load failed: %v", err))
	}

	m.player.Restore(ps)
	output := systemLines(fmt.Sprintf("Progress loaded from %s (%d choices made).", name, len(ps.History)))
	return append(output, m.passageLines(m.player.View())...)
}

func (m *Model) cmdSaves() []rawLine {
	if m.store == nil {
		return systemLines("No save store configured.")
	}
	names, err := m.store.List(m.ctx)
	if err != nil {
		return systemLines(fmt.Sprintf("Listing saves failed: %v", err))
	}
	if len(names) == 0 {
		return systemLines("No saves.")
	}
	return systemLines("Saves: " + strings.Join(names, ", "))
}

var helpText = []string{
	"/save [name]  Save progress (default: quicksave)",
	"/load [name]  Load progress (default: quicksave)",
	"/saves        List saved games",
	"/restart      Start over from the beginning",
	"/novel        Show the story so far",
	"/look         Show the current passage again",
	"/quit         Exit",
	"/help         Show this help",
	"/state        Debug: dump current state",
	"/trace        Toggle debug trace output",
	"Type a choice number or a word from the choice to pick it.",
	"Navigation: PgUp/PgDn to scroll, Up/Down for input history",
}

func (m *Model) cmdState() []rawLine {
	s := m.player.State()
	output := []string{
		fmt.Sprintf("Passage: %s", s.CurrentPassage),
		fmt.Sprintf("Choices made: %d", len(s.History)),
		fmt.Sprintf("Inventory: %v", heldItems(s.Variables)),
	}
	if len(s.Variables.Flags) > 0 {
		output = append(output, fmt.Sprintf("Flags: %v", s.Variables.Flags))
	}
	if len(s.Variables.Relationships) > 0 {
		output = append(output, fmt.Sprintf("Relationships: %v", s.Variables.Relationships))
	}
	if s.Variables.Health != 0 {
		output = append(output, "Health: "+strconv.FormatFloat(s.Variables.Health, 'f', -1, 64))
	}
	return systemLines(output...)
}

func (m *Model) formatTrace(evts []types.Event) []rawLine {
	if len(evts) == 0 {
		return nil
	}
	lines := []rawLine{{text: fmt.Sprintf("[trace] Events: %d", len(evts)), kind: kindTrace}}
	for _, e := range evts {
		lines = append(lines, rawLine{text: fmt.Sprintf("[trace]   %s %v", e.Type, e.Data), kind: kindTrace})
	}
	return lines
}

func systemLines(texts ...string) []rawLine {
	lines := make([]rawLine, len(texts))
	for i, t := range texts {
		lines[i] = rawLine{text: t, isSystem: true}
	}
	return lines
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
