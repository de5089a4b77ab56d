// Package engine provides the runtime context that ties a story graph to
// its undo history, diagnostics, and event bus. Editors and players go
// through an Engine rather than touching the graph directly.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/storyloom/engine/effects"
	"github.com/nathoo/storyloom/engine/events"
	"github.com/nathoo/storyloom/engine/history"
	"github.com/nathoo/storyloom/engine/parser"
	"github.com/nathoo/storyloom/engine/script"
	"github.com/nathoo/storyloom/engine/state"
	"github.com/nathoo/storyloom/engine/story"
	"github.com/nathoo/storyloom/types"
)

// Engine holds one story session: the graph being edited or played, the
// undo history for graph edits, and where diagnostics and events go.
type Engine struct {
	graph   *story.Graph
	history *history.Buffer
	log     *zap.Logger
	bus     *events.Bus
	entry   string
	depth   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithHistoryDepth sets the undo capacity.
func WithHistoryDepth(n int) Option {
	return func(e *Engine) { e.depth = n }
}

// WithEntry sets the passage play starts from.
func WithEntry(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.entry = id
		}
	}
}

// WithBus sets the event bus. Without one the engine creates its own.
func WithBus(b *events.Bus) Option {
	return func(e *Engine) {
		if b != nil {
			e.bus = b
		}
	}
}

// New creates an engine around g. The engine takes ownership of g.
func New(g *story.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph: g,
		log:   zap.NewNop(),
		bus:   events.NewBus(),
		entry: story.DefaultEntry,
		depth: history.DefaultDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.history = history.New(e.depth)
	return e
}

// Graph returns the live graph. Callers that mutate it directly bypass
// undo history.
func (e *Engine) Graph() *story.Graph { return e.graph }

// Entry returns the entry passage identifier.
func (e *Engine) Entry() string { return e.entry }

// Bus returns the event bus.
func (e *Engine) Bus() *events.Bus { return e.bus }

// Logger returns the diagnostics logger.
func (e *Engine) Logger() *zap.Logger { return e.log }

// CanUndo reports whether an undo is available.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether a redo is available.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// edit runs a graph mutation and records the prior state only if the
// mutation succeeded. Graph mutations leave the graph untouched on error.
func (e *Engine) edit(op string, fn func() error) error {
	before := e.graph.Snapshot()
	if err := fn(); err != nil {
		return err
	}
	e.history.Push(before)
	e.log.Debug("graph edited", zap.String("op", op))
	e.changed(op)
	return nil
}

func (e *Engine) changed(op string) {
	e.bus.Dispatch(types.Event{
		Type: events.GraphChanged,
		Data: map[string]any{"op": op},
	})
}

// AddPassage creates an empty-choice passage.
func (e *Engine) AddPassage(id, text string) error {
	return e.edit("add", func() error { return e.graph.Add(id, text) })
}

// SetPassageText replaces a passage's body.
func (e *Engine) SetPassageText(id, text string) error {
	return e.edit("text", func() error { return e.graph.SetText(id, text) })
}

// RenamePassage renames a passage. With retarget, choices pointing at the
// old identifier follow it; without, they are left dangling.
func (e *Engine) RenamePassage(oldID, newID string, retarget bool) error {
	if oldID == newID {
		// Validates without mutating; nothing to record.
		return e.graph.Rename(oldID, newID)
	}
	return e.edit("rename", func() error {
		if retarget {
			return e.graph.RenameAndRetarget(oldID, newID)
		}
		return e.graph.Rename(oldID, newID)
	})
}

// DeletePassage removes a passage and every choice that targets it. It
// returns how many choices were stripped.
func (e *Engine) DeletePassage(id string) (int, error) {
	var removed int
	err := e.edit("delete", func() error {
		var err error
		removed, err = e.graph.Delete(id)
		return err
	})
	return removed, err
}

// AddChoice appends a choice to passage src.
func (e *Engine) AddChoice(src string, c types.Choice) error {
	return e.edit("choice add", func() error { return e.graph.AddChoice(src, c) })
}

// UpdateChoice replaces choice i of passage src.
func (e *Engine) UpdateChoice(src string, i int, c types.Choice) error {
	return e.edit("choice set", func() error { return e.graph.UpdateChoice(src, i, c) })
}

// RemoveChoice deletes choice i of passage src.
func (e *Engine) RemoveChoice(src string, i int) error {
	return e.edit("choice rm", func() error { return e.graph.RemoveChoice(src, i) })
}

// SetVariable edits the declared initial variables with an effect
// statement such as "flags.hasKey = true".
func (e *Engine) SetVariable(stmt string) error {
	if err := effects.Apply(stmt, &e.graph.Variables); err != nil {
		return err
	}
	e.changed("var")
	return nil
}

// RemoveVariable deletes a declared variable by path.
func (e *Engine) RemoveVariable(path string) error {
	node, err := parser.ParseCondition(path)
	if err != nil {
		return err
	}
	p, ok := node.(*parser.Path)
	if !ok {
		return fmt.Errorf("%q is not a variable path: %w", path, parser.ErrMalformed)
	}
	if err := state.Remove(&e.graph.Variables, p.Segments); err != nil {
		return err
	}
	e.changed("var")
	return nil
}

// Undo reverts the most recent graph edit.
func (e *Engine) Undo() error {
	prev, err := e.history.Undo(e.graph.Snapshot())
	if err != nil {
		e.log.Debug("undo ignored", zap.Error(err))
		return err
	}
	e.graph.Restore(prev)
	e.changed("undo")
	return nil
}

// Redo reapplies the most recently undone edit.
func (e *Engine) Redo() error {
	next, err := e.history.Redo(e.graph.Snapshot())
	if err != nil {
		e.log.Debug("redo ignored", zap.Error(err))
		return err
	}
	e.graph.Restore(next)
	e.changed("redo")
	return nil
}

// Script returns the branching script from the entry passage.
func (e *Engine) Script() string {
	return script.Generate(e.graph, e.entry)
}

// Mermaid returns a flowchart of the graph, optionally marking progress.
func (e *Engine) Mermaid(overlay *script.Overlay) string {
	return script.Mermaid(e.graph, e.entry, overlay)
}

// IsEmptyHistory reports whether err came from an undo or redo with
// nothing to apply.
func IsEmptyHistory(err error) bool {
	return errors.Is(err, history.ErrEmptyHistory)
}
