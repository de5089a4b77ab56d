package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders passage text as terminal markdown. The glamour
// renderer is rebuilt when the wrap width changes.
type markdownRenderer struct {
	width int
	r     *glamour.TermRenderer
}

// Render returns text as styled markdown wrapped to width. On renderer
// failure the text is returned unchanged.
func (mr *markdownRenderer) Render(text string, width int) string {
	if mr.r == nil || mr.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		mr.r, mr.width = r, width
	}
	out, err := mr.r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
