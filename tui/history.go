// Package tui provides a Bubble Tea terminal player for storyloom stories.
package tui

// History remembers submitted input lines for Up/Down recall.
type History struct {
	entries []string
	max     int
	back    int // 0 = editing fresh input, n = n-th most recent entry
}

// NewHistory creates an input history holding at most max lines.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 100
	}
	return &History{entries: make([]string, 0, max), max: max}
}

// Push records a submitted line. Repeating the previous line is a no-op.
func (h *History) Push(line string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	if len(h.entries) == h.max {
		h.entries = append(h.entries[:0], h.entries[1:]...)
	}
	h.entries = append(h.entries, line)
}

// Prev steps to an older line, stopping at the oldest one.
// Returns ("", false) if nothing has been submitted.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.back < len(h.entries) {
		h.back++
	}
	return h.entries[len(h.entries)-h.back], true
}

// Next steps to a newer line. Stepping past the newest returns ("", false)
// and goes back to fresh input.
func (h *History) Next() (string, bool) {
	if h.back <= 1 {
		h.back = 0
		return "", false
	}
	h.back--
	return h.entries[len(h.entries)-h.back], true
}

// ResetCursor returns to fresh input.
func (h *History) ResetCursor() {
	h.back = 0
}
