// Package loader turns story documents into story graphs and back.
// Documents are YAML or JSON with a variables section and a passages
// section, or Lua files written against a small authoring DSL. Lua runs in
// a sandboxed VM that is discarded after loading; conditions and effects
// stay strings for the expression evaluator.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/storyloom/engine/state"
	"github.com/nathoo/storyloom/engine/story"
	"github.com/nathoo/storyloom/types"
)

// Document is the interchange form of a story.
type Document struct {
	Variables types.Variables       `yaml:"variables" json:"variables" mapstructure:"variables"`
	Passages  map[string]PassageDoc `yaml:"passages" json:"passages" mapstructure:"passages"`
}

// PassageDoc is one passage as written in a document. The identifier is
// the map key.
type PassageDoc struct {
	Text     string          `yaml:"text" json:"text" mapstructure:"text"`
	Choices  []types.Choice  `yaml:"choices" json:"choices" mapstructure:"choices"`
	Position *types.Position `yaml:"position,omitempty" json:"position,omitempty" mapstructure:"position"`
}

func decodeDocument(data []byte) (*Document, error) {
	var doc Document
	// JSON is valid YAML, so one decoder serves both.
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}

// graph builds a story graph from the document. A document without a
// passages section is rejected.
func (d *Document) graph() (*story.Graph, error) {
	if d.Passages == nil {
		return nil, fmt.Errorf("%w: missing passages section", ErrInvalidDocument)
	}
	g := story.New()
	for id, p := range d.Passages {
		if err := g.Put(id, types.Passage{
			Text:     p.Text,
			Choices:  p.Choices,
			Position: p.Position,
		}); err != nil {
			return nil, fmt.Errorf("%w: passage %q: %v", ErrInvalidDocument, id, err)
		}
	}
	g.Variables = state.Clone(d.Variables)
	return g, nil
}

// FromGraph builds the document form of g.
func FromGraph(g *story.Graph) *Document {
	doc := &Document{
		Variables: state.Clone(g.Variables),
		Passages:  make(map[string]PassageDoc, g.Len()),
	}
	for _, id := range g.IDs() {
		p, _ := g.Get(id)
		choices := p.Choices
		if choices == nil {
			choices = []types.Choice{}
		}
		doc.Passages[id] = PassageDoc{Text: p.Text, Choices: choices, Position: p.Position}
	}
	return doc
}

// Marshal encodes g as a YAML or JSON document. Passage text is written
// exactly as stored.
func Marshal(g *story.Graph, format Format) ([]byte, error) {
	doc := FromGraph(g)
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("cannot write %q documents", format)
}
