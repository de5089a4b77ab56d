package engine

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/storyloom/engine/effects"
	"github.com/nathoo/storyloom/engine/events"
	"github.com/nathoo/storyloom/engine/resolve"
	"github.com/nathoo/storyloom/engine/rules"
	"github.com/nathoo/storyloom/engine/state"
	"github.com/nathoo/storyloom/types"
)

var (
	ErrStoryEnded        = errors.New("the story has ended")
	ErrChoiceUnavailable = errors.New("choice unavailable")
)

// EndText is shown when the current passage does not exist.
const EndText = "The end."

// ChoiceView is one enabled choice as shown to the reader.
type ChoiceView struct {
	Index  int // position in the passage's declared choices
	Text   string
	Target string
}

// View is everything a front end needs to render the current moment.
type View struct {
	PassageID string
	Text      string
	Choices   []ChoiceView
	Terminal  bool
}

// Player walks a story graph. It reads the engine's graph live, so edits
// made through the engine show up on the next View.
type Player struct {
	engine *Engine
	state  types.PlayState
}

// NewPlayer starts a play session at the entry passage.
func (e *Engine) NewPlayer() *Player {
	p := &Player{engine: e}
	p.Restart()
	return p
}

// Restart resets to the entry passage with the declared initial variables
// and an empty history.
func (p *Player) Restart() {
	p.state = types.PlayState{
		CurrentPassage: p.engine.entry,
		Variables:      state.Clone(p.engine.graph.Variables),
		History:        []types.HistoryEntry{},
	}
	p.entered()
}

// State returns a deep copy of the state triple.
func (p *Player) State() types.PlayState {
	out := types.PlayState{
		CurrentPassage: p.state.CurrentPassage,
		Variables:      state.Clone(p.state.Variables),
		History:        make([]types.HistoryEntry, len(p.state.History)),
	}
	copy(out.History, p.state.History)
	return out
}

// Restore replaces the state triple, as when loading a save.
func (p *Player) Restore(s types.PlayState) {
	p.state = types.PlayState{
		CurrentPassage: s.CurrentPassage,
		Variables:      state.Clone(s.Variables),
		History:        make([]types.HistoryEntry, len(s.History)),
	}
	copy(p.state.History, s.History)
	state.Normalize(&p.state.Variables)
}

// Variables returns a copy of the live variable store.
func (p *Player) Variables() types.Variables {
	return state.Clone(p.state.Variables)
}

// Terminal reports whether the current passage does not exist.
func (p *Player) Terminal() bool {
	return !p.engine.graph.Has(p.state.CurrentPassage)
}

// View derives what the reader sees from the current passage and
// variables. Choices whose condition is false or fails to evaluate are
// left out.
func (p *Player) View() View {
	passage, ok := p.engine.graph.Get(p.state.CurrentPassage)
	if !ok {
		return View{PassageID: p.state.CurrentPassage, Text: EndText, Terminal: true}
	}
	v := View{PassageID: passage.ID, Text: strings.TrimSpace(passage.Text)}
	for i, c := range passage.Choices {
		on, err := rules.Enabled(c.Condition, &p.state.Variables)
		if err != nil {
			p.expressionFailed("condition", c.Condition, passage.ID, i, err)
			continue
		}
		if on {
			v.Choices = append(v.Choices, ChoiceView{Index: i, Text: c.Text, Target: c.Target})
		}
	}
	return v
}

// Choose takes the n-th enabled choice (0-based, as listed by View). The
// choice's effect is applied, the move is recorded in history, and the
// target becomes current even if it does not exist.
func (p *Player) Choose(n int) (View, error) {
	v := p.View()
	if v.Terminal {
		return v, ErrStoryEnded
	}
	if n < 0 || n >= len(v.Choices) {
		return v, fmt.Errorf("choice %d of %d: %w", n+1, len(v.Choices), ErrChoiceUnavailable)
	}
	passage, _ := p.engine.graph.Get(v.PassageID)
	c := passage.Choices[v.Choices[n].Index]

	if c.Effect != "" {
		if err := effects.Apply(c.Effect, &p.state.Variables); err != nil {
			p.expressionFailed("effect", c.Effect, passage.ID, v.Choices[n].Index, err)
		}
	}
	p.state.History = append(p.state.History, types.HistoryEntry{
		Passage:    passage.ID,
		ChoiceText: c.Text,
	})
	p.state.CurrentPassage = c.Target

	p.engine.bus.Dispatch(types.Event{
		Type: events.ChoiceSelected,
		Data: map[string]any{"passage": passage.ID, "choice": c.Text, "target": c.Target},
	})
	p.entered()
	return p.View(), nil
}

// ChooseInput resolves free-form input against the enabled choices and
// takes the match.
func (p *Player) ChooseInput(input string) (View, error) {
	v := p.View()
	if v.Terminal {
		return v, ErrStoryEnded
	}
	labels := make([]string, len(v.Choices))
	for i, c := range v.Choices {
		labels[i] = c.Text
	}
	n, err := resolve.Choice(input, labels)
	if err != nil {
		return v, err
	}
	return p.Choose(n)
}

// Novel returns the chronological transcript: every visited passage's text
// and the choice taken there, ending with the current passage. Passages
// deleted since they were visited are skipped.
func (p *Player) Novel() string {
	var sb strings.Builder
	for _, h := range p.state.History {
		if passage, ok := p.engine.graph.Get(h.Passage); ok {
			sb.WriteString(strings.TrimSpace(passage.Text) + "\n\n")
		}
		sb.WriteString("You chose: \"" + h.ChoiceText + "\"\n\n")
	}
	if passage, ok := p.engine.graph.Get(p.state.CurrentPassage); ok {
		sb.WriteString(strings.TrimSpace(passage.Text) + "\n\n")
	}
	return sb.String()
}

func (p *Player) entered() {
	id := p.state.CurrentPassage
	if p.Terminal() {
		p.engine.bus.Dispatch(types.Event{
			Type: events.StoryEnded,
			Data: map[string]any{"passage": id, "steps": len(p.state.History)},
		})
		return
	}
	p.engine.bus.Dispatch(types.Event{
		Type: events.PassageEntered,
		Data: map[string]any{"passage": id},
	})
}

func (p *Player) expressionFailed(kind, expr, passage string, choice int, err error) {
	p.engine.log.Warn("malformed expression",
		zap.String("kind", kind),
		zap.String("expr", expr),
		zap.String("passage", passage),
		zap.Int("choice", choice),
		zap.Error(err),
	)
	p.engine.bus.Dispatch(types.Event{
		Type: events.ExpressionFailed,
		Data: map[string]any{
			"kind":    kind,
			"expr":    expr,
			"passage": passage,
			"choice":  choice,
			"error":   err.Error(),
		},
	})
}
