// Package script renders a story graph as text: a flattened branching
// script for proofreading and a Mermaid flowchart for visual review.
package script

import (
	"strings"

	"github.com/nathoo/storyloom/engine/story"
)

const indentUnit = "  "

// Generate walks the graph depth-first from entry and returns the branching
// script. Each passage is printed at most once; a choice whose target was
// already printed, or does not exist, produces only its choice line.
func Generate(g *story.Graph, entry string) string {
	w := &walker{graph: g, visited: map[string]bool{}}
	w.walk(entry, 0)
	return w.sb.String()
}

type walker struct {
	graph   *story.Graph
	visited map[string]bool
	sb      strings.Builder
}

func (w *walker) walk(id string, depth int) {
	if w.visited[id] {
		return
	}
	p, ok := w.graph.Get(id)
	if !ok {
		return
	}
	w.visited[id] = true

	indent := strings.Repeat(indentUnit, depth)
	w.sb.WriteString(indent + id + "\n")
	for _, line := range strings.Split(strings.TrimSpace(p.Text), "\n") {
		w.sb.WriteString(indent + line + "\n")
	}
	w.sb.WriteString("\n")

	for _, c := range p.Choices {
		line := indent + "→ " + c.Text + " → " + c.Target
		if c.Condition != "" {
			line += " [if " + c.Condition + "]"
		}
		if c.Effect != "" {
			line += " [" + c.Effect + "]"
		}
		w.sb.WriteString(line + "\n")
		w.walk(c.Target, depth+1)
	}
	w.sb.WriteString("\n")
}
