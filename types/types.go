// Package types defines the shared data structures for the storyloom runtime.
// The package holds data only; behavior lives in engine.
package types

// Position is editor layout metadata. The runtime never reads it.
type Position struct {
	X float64 `yaml:"x" json:"x" mapstructure:"x"`
	Y float64 `yaml:"y" json:"y" mapstructure:"y"`
}

// Choice is a labeled edge from its owning passage to a target passage.
// Target may name a passage that does not exist (a dangling choice).
type Choice struct {
	Text      string `yaml:"text" json:"text" mapstructure:"text"`
	Target    string `yaml:"target" json:"target" mapstructure:"target"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty" mapstructure:"condition"`
	Effect    string `yaml:"effect,omitempty" json:"effect,omitempty" mapstructure:"effect"`
}

// Passage is a single node of the story graph.
type Passage struct {
	ID       string
	Text     string
	Choices  []Choice
	Position *Position // editor metadata, nil when unknown
}

// Variables is the typed variable store a story is played against.
type Variables struct {
	Inventory     map[string]bool    `yaml:"inventory" json:"inventory" mapstructure:"inventory"`
	Relationships map[string]float64 `yaml:"relationships" json:"relationships" mapstructure:"relationships"`
	Flags         map[string]bool    `yaml:"flags" json:"flags" mapstructure:"flags"`
	Health        float64            `yaml:"health,omitempty" json:"health,omitempty" mapstructure:"health"`
}

// HistoryEntry records one choice taken during play.
type HistoryEntry struct {
	Passage    string `json:"passage"`
	ChoiceText string `json:"choiceText"`
}

// PlayState is the complete player state triple.
type PlayState struct {
	CurrentPassage string         `json:"currentPassage"`
	Variables      Variables      `json:"variablesState"`
	History        []HistoryEntry `json:"history"`
}

// Event is emitted by the runtime after state changes.
type Event struct {
	Type string
	Data map[string]any
}
