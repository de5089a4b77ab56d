package script

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/storyloom/engine/story"
)

// Overlay marks play progress on a flowchart.
type Overlay struct {
	Visited []string
	Current string
}

// Mermaid produces a Mermaid flowchart of the graph.
// Shapes:
// - Entry: ((Circle))
// - Ending (no choices): ([Stadium])
// - Default: [Rectangle]
// Dangling targets are drawn as a dashed missing node.
//
// Node ids are generated (p0, p1, ...) in sorted passage order followed by
// the sorted missing targets; passage ids only appear in quoted labels.
func Mermaid(g *story.Graph, entry string, overlay *Overlay) string {
	ids := g.IDs()
	nodes := make(map[string]string, len(ids))
	for i, id := range ids {
		nodes[id] = fmt.Sprintf("p%d", i)
	}
	missing := map[string]bool{}
	for _, id := range ids {
		p, _ := g.Get(id)
		for _, c := range p.Choices {
			if !g.Has(c.Target) {
				missing[c.Target] = true
			}
		}
	}
	missingIDs := sortedKeys(missing)
	for i, id := range missingIDs {
		nodes[id] = fmt.Sprintf("p%d", len(ids)+i)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, id := range ids {
		p, _ := g.Get(id)
		node := nodes[id]

		opener, closer := "[", "]"
		switch {
		case id == entry:
			opener, closer = "((", "))"
		case len(p.Choices) == 0:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", node, opener, escapeLabel(id), closer)

		for _, c := range p.Choices {
			label := c.Text
			if c.Condition != "" {
				label += " [if " + c.Condition + "]"
			}
			arrow := "-->"
			if label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(label))
			}
			if c.Effect != "" {
				arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(label+" / "+c.Effect))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", node, arrow, nodes[c.Target])
		}
	}

	if len(missingIDs) > 0 {
		sb.WriteString("\n    classDef missing stroke-dasharray:5 5,color:#b71c1c;\n")
		for _, id := range missingIDs {
			fmt.Fprintf(&sb, "    %s[\"%s ?\"]\n", nodes[id], escapeLabel(id))
			fmt.Fprintf(&sb, "    class %s missing;\n", nodes[id])
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := map[string]bool{}
		for _, id := range overlay.Visited {
			if seen[id] || !g.Has(id) {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", nodes[id])
		}
		if node, ok := nodes[overlay.Current]; ok {
			fmt.Fprintf(&sb, "    class %s current;\n", node)
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
