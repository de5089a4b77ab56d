// Package story holds the passage graph and enforces its structural
// invariants: passage identifiers are unique, and deleting a passage strips
// every choice that targets it. Choices may point at passages that do not
// exist; that is a valid dead end, not corruption.
package story

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/storyloom/engine/state"
	"github.com/nathoo/storyloom/types"
)

var (
	ErrDuplicateID     = errors.New("duplicate passage identifier")
	ErrPassageNotFound = errors.New("passage not found")
	ErrChoiceIndex     = errors.New("choice index out of range")
	ErrEmptyID         = errors.New("passage identifier is empty")
)

// DefaultEntry is the conventional entry passage identifier.
const DefaultEntry = "start"

// Graph is the set of passages plus the declared initial variables.
type Graph struct {
	passages  map[string]*types.Passage
	Variables types.Variables
}

// ChoiceRef locates a choice inside the graph.
type ChoiceRef struct {
	Passage string
	Index   int
	Choice  types.Choice
}

// Snapshot is a deep copy of passage text and choices, keyed by identifier.
// Layout positions and variables are not part of a snapshot.
type Snapshot map[string]types.Passage

// New returns an empty graph with allocated variable categories.
func New() *Graph {
	return &Graph{
		passages:  map[string]*types.Passage{},
		Variables: state.NewVariables(),
	}
}

// Len returns the number of passages.
func (g *Graph) Len() int { return len(g.passages) }

// Has reports whether a passage with id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.passages[id]
	return ok
}

// Get returns a copy of the passage with id.
func (g *Graph) Get(id string) (types.Passage, bool) {
	p, ok := g.passages[id]
	if !ok {
		return types.Passage{}, false
	}
	return clonePassage(*p, true), true
}

// IDs returns every passage identifier in sorted order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.passages))
	for id := range g.passages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Put creates or replaces the passage stored under id. The stored passage's
// ID field always equals id.
func (g *Graph) Put(id string, p types.Passage) error {
	if id == "" {
		return ErrEmptyID
	}
	cp := clonePassage(p, true)
	cp.ID = id
	g.passages[id] = &cp
	return nil
}

// Add creates a new passage and fails if id is taken.
func (g *Graph) Add(id, text string) error {
	if id == "" {
		return ErrEmptyID
	}
	if g.Has(id) {
		return fmt.Errorf("add %q: %w", id, ErrDuplicateID)
	}
	g.passages[id] = &types.Passage{ID: id, Text: text}
	return nil
}

// SetText replaces a passage's body text.
func (g *Graph) SetText(id, text string) error {
	p, ok := g.passages[id]
	if !ok {
		return fmt.Errorf("set text on %q: %w", id, ErrPassageNotFound)
	}
	p.Text = text
	return nil
}

// SetPosition records editor layout metadata for a passage.
func (g *Graph) SetPosition(id string, pos *types.Position) error {
	p, ok := g.passages[id]
	if !ok {
		return fmt.Errorf("set position on %q: %w", id, ErrPassageNotFound)
	}
	if pos == nil {
		p.Position = nil
		return nil
	}
	cp := *pos
	p.Position = &cp
	return nil
}

// Rename moves a passage from oldID to newID. Choices that target oldID
// are left alone and become dangling unless the caller retargets them.
// Renaming onto an existing, different identifier fails with ErrDuplicateID
// and leaves the graph unchanged.
func (g *Graph) Rename(oldID, newID string) error {
	if newID == "" {
		return ErrEmptyID
	}
	p, ok := g.passages[oldID]
	if !ok {
		return fmt.Errorf("rename %q: %w", oldID, ErrPassageNotFound)
	}
	if oldID == newID {
		return nil
	}
	if g.Has(newID) {
		return fmt.Errorf("rename %q to %q: %w", oldID, newID, ErrDuplicateID)
	}
	delete(g.passages, oldID)
	p.ID = newID
	g.passages[newID] = p
	return nil
}

// Retarget points every choice whose target is oldID at newID and returns
// how many choices changed.
func (g *Graph) Retarget(oldID, newID string) int {
	n := 0
	for _, p := range g.passages {
		for i := range p.Choices {
			if p.Choices[i].Target == oldID {
				p.Choices[i].Target = newID
				n++
			}
		}
	}
	return n
}

// RenameAndRetarget renames a passage and rewrites all choices that pointed
// at the old identifier, as one operation.
func (g *Graph) RenameAndRetarget(oldID, newID string) error {
	if err := g.Rename(oldID, newID); err != nil {
		return err
	}
	g.Retarget(oldID, newID)
	return nil
}

// Delete removes a passage and strips every choice in the graph that
// targets it. It returns the number of choices removed. Dangling choices
// are stripped even when no passage named id exists; only when there was
// nothing at all to remove does it report ErrPassageNotFound.
func (g *Graph) Delete(id string) (int, error) {
	existed := g.Has(id)
	delete(g.passages, id)
	removed := 0
	for _, p := range g.passages {
		kept := p.Choices[:0]
		for _, c := range p.Choices {
			if c.Target == id {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		p.Choices = kept
	}
	if !existed && removed == 0 {
		return 0, fmt.Errorf("delete %q: %w", id, ErrPassageNotFound)
	}
	return removed, nil
}

// AddChoice appends a choice to passage src. A choice without text gets
// the label "Go to <target>".
func (g *Graph) AddChoice(src string, c types.Choice) error {
	p, ok := g.passages[src]
	if !ok {
		return fmt.Errorf("add choice to %q: %w", src, ErrPassageNotFound)
	}
	if c.Text == "" {
		c.Text = "Go to " + c.Target
	}
	p.Choices = append(p.Choices, c)
	return nil
}

// UpdateChoice replaces the choice at index i of passage src.
func (g *Graph) UpdateChoice(src string, i int, c types.Choice) error {
	p, ok := g.passages[src]
	if !ok {
		return fmt.Errorf("update choice on %q: %w", src, ErrPassageNotFound)
	}
	if i < 0 || i >= len(p.Choices) {
		return fmt.Errorf("update choice %d on %q: %w", i, src, ErrChoiceIndex)
	}
	p.Choices[i] = c
	return nil
}

// RemoveChoice deletes the choice at index i of passage src.
func (g *Graph) RemoveChoice(src string, i int) error {
	p, ok := g.passages[src]
	if !ok {
		return fmt.Errorf("remove choice from %q: %w", src, ErrPassageNotFound)
	}
	if i < 0 || i >= len(p.Choices) {
		return fmt.Errorf("remove choice %d from %q: %w", i, src, ErrChoiceIndex)
	}
	p.Choices = append(p.Choices[:i], p.Choices[i+1:]...)
	return nil
}

// Referrers lists every choice that targets id, ordered by source passage
// identifier and then declaration order.
func (g *Graph) Referrers(id string) []ChoiceRef {
	var refs []ChoiceRef
	for _, src := range g.IDs() {
		for i, c := range g.passages[src].Choices {
			if c.Target == id {
				refs = append(refs, ChoiceRef{Passage: src, Index: i, Choice: c})
			}
		}
	}
	return refs
}

// Dangling lists every choice whose target does not resolve to a passage.
func (g *Graph) Dangling() []ChoiceRef {
	var refs []ChoiceRef
	for _, src := range g.IDs() {
		for i, c := range g.passages[src].Choices {
			if !g.Has(c.Target) {
				refs = append(refs, ChoiceRef{Passage: src, Index: i, Choice: c})
			}
		}
	}
	return refs
}

// Reachable returns the set of passages reachable from entry by following
// choices, ignoring conditions.
func (g *Graph) Reachable(entry string) map[string]bool {
	seen := map[string]bool{}
	stack := []string{entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p, ok := g.passages[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		for _, c := range p.Choices {
			stack = append(stack, c.Target)
		}
	}
	return seen
}

// Snapshot deep-copies passage text and choices.
func (g *Graph) Snapshot() Snapshot {
	s := make(Snapshot, len(g.passages))
	for id, p := range g.passages {
		s[id] = clonePassage(*p, false)
	}
	return s
}

// Restore replaces the passage set with s. Layout positions of passages
// that survive the restore are kept.
func (g *Graph) Restore(s Snapshot) {
	next := make(map[string]*types.Passage, len(s))
	for id, p := range s {
		cp := clonePassage(p, false)
		cp.ID = id
		if old, ok := g.passages[id]; ok && old.Position != nil {
			pos := *old.Position
			cp.Position = &pos
		}
		next[id] = &cp
	}
	g.passages = next
}

// Clone returns a deep copy of the whole graph, positions and variables
// included.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		passages:  make(map[string]*types.Passage, len(g.passages)),
		Variables: state.Clone(g.Variables),
	}
	for id, p := range g.passages {
		cp := clonePassage(*p, true)
		out.passages[id] = &cp
	}
	return out
}

func clonePassage(p types.Passage, withPosition bool) types.Passage {
	out := types.Passage{ID: p.ID, Text: p.Text}
	if p.Choices != nil {
		out.Choices = make([]types.Choice, len(p.Choices))
		copy(out.Choices, p.Choices)
	}
	if withPosition && p.Position != nil {
		pos := *p.Position
		out.Position = &pos
	}
	return out
}
