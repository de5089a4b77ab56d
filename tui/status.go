package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/storyloom/engine/state"
	"github.com/nathoo/storyloom/types"
)

// passageDisplayName derives a human-readable name from a passage ID.
// "dark_forest" -> "Dark Forest", "river-crossing" -> "River Crossing".
func passageDisplayName(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// heldItems lists inventory items whose value is true, sorted.
func heldItems(v types.Variables) []string {
	var held []string
	for _, k := range state.Keys(&v, state.Inventory) {
		if v.Inventory[k] {
			held = append(held, k)
		}
	}
	return held
}

// renderStatusBar produces a full-width inverted status line showing the
// current passage, available choices, inventory, health and step count.
func (m Model) renderStatusBar() string {
	s := m.player.State()
	view := m.current

	left := fmt.Sprintf(" %s | Choices: %d", passageDisplayName(s.CurrentPassage), len(view.Choices))
	if view.Terminal {
		left = fmt.Sprintf(" %s | The end", passageDisplayName(s.CurrentPassage))
	}

	tail := fmt.Sprintf("Step:%d ", len(s.History))
	if s.Variables.Health != 0 {
		tail = "HP:" + strconv.FormatFloat(s.Variables.Health, 'f', -1, 64) + " | " + tail
	}
	right := tail

	// Show inventory items if they fit, otherwise just count.
	if held := heldItems(s.Variables); len(held) > 0 {
		candidate := fmt.Sprintf("Inv: %s | %s", strings.Join(held, ", "), tail)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | %s", len(held), tail)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
