// Package history implements a bounded undo/redo buffer of story graph
// snapshots.
package history

import (
	"errors"
	"fmt"

	"github.com/nathoo/storyloom/engine/story"
)

// DefaultDepth is the undo capacity used when none is configured.
const DefaultDepth = 50

var (
	ErrEmptyHistory  = errors.New("history is empty")
	ErrNothingToUndo = fmt.Errorf("nothing to undo: %w", ErrEmptyHistory)
	ErrNothingToRedo = fmt.Errorf("nothing to redo: %w", ErrEmptyHistory)
)

// Buffer holds undo and redo stacks, each capped at max entries. The oldest
// entry is dropped when a stack overflows.
type Buffer struct {
	undo []story.Snapshot
	redo []story.Snapshot
	max  int
}

// New creates a buffer with the given capacity. A non-positive depth falls
// back to DefaultDepth.
func New(depth int) *Buffer {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Buffer{max: depth}
}

// Depth returns the buffer capacity.
func (b *Buffer) Depth() int { return b.max }

// Push records the state before an edit and clears the redo stack.
func (b *Buffer) Push(s story.Snapshot) {
	b.undo = push(b.undo, s, b.max)
	b.redo = nil
}

// Undo returns the most recent snapshot to install, remembering current so
// it can be redone.
func (b *Buffer) Undo(current story.Snapshot) (story.Snapshot, error) {
	if len(b.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	prev := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	b.redo = push(b.redo, current, b.max)
	return prev, nil
}

// Redo mirrors Undo.
func (b *Buffer) Redo(current story.Snapshot) (story.Snapshot, error) {
	if len(b.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	next := b.redo[len(b.redo)-1]
	b.redo = b.redo[:len(b.redo)-1]
	b.undo = push(b.undo, current, b.max)
	return next, nil
}

// CanUndo reports whether Undo would succeed.
func (b *Buffer) CanUndo() bool { return len(b.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (b *Buffer) CanRedo() bool { return len(b.redo) > 0 }

// Len returns the undo and redo stack sizes.
func (b *Buffer) Len() (undo, redo int) { return len(b.undo), len(b.redo) }

// Clear drops both stacks.
func (b *Buffer) Clear() {
	b.undo = nil
	b.redo = nil
}

func push(stack []story.Snapshot, s story.Snapshot, max int) []story.Snapshot {
	stack = append(stack, s)
	if len(stack) > max {
		stack = stack[1:]
	}
	return stack
}
