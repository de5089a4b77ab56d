package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePassage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleChoiceNumber = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	styleChoice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleEnding = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")).
			Italic(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindPassage lineKind = iota
	kindChoice
	kindDialogue
	kindEnding
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of passage or transcript line this is.
// Choice lines are built with kindChoice directly.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You chose: "):
		return kindChoice
	case strings.HasPrefix(line, "No choice matches"),
		strings.HasPrefix(line, "Which "):
		return kindError
	case containsQuotedSpeech(line):
		return kindDialogue
	default:
		return kindPassage
	}
}

// containsQuotedSpeech checks if a line carries a spoken phrase in double
// or curly quotes.
func containsQuotedSpeech(line string) bool {
	inQuote := false
	quoteLen := 0
	for _, r := range line {
		switch r {
		case '"', '“', '”':
			if inQuote && quoteLen > 5 {
				return true
			}
			inQuote = !inQuote
			quoteLen = 0
		default:
			if inQuote {
				quoteLen++
			}
		}
	}
	return false
}

// styledChoice renders "3. Open the door" with the number highlighted.
func styledChoice(line string) string {
	i := strings.IndexFunc(line, func(r rune) bool { return !unicode.IsDigit(r) })
	if i <= 0 || !strings.HasPrefix(line[i:], ". ") {
		return styleChoice.Render(line)
	}
	return styleChoiceNumber.Render(line[:i+1]) + styleChoice.Render(line[i+1:])
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
