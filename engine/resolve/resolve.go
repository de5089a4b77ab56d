// Package resolve maps player input to one of the choices on screen.
package resolve

import (
	"fmt"
	"strconv"
	"strings"
)

// AmbiguityError indicates several choices matched the input.
type AmbiguityError struct {
	Input      string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %q? (%s)", e.Input, names)
}

// NotFoundError indicates no choice matched the input.
type NotFoundError struct {
	Input string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no choice matches %q", e.Input)
}

// Choice returns the 0-based position in labels selected by input.
// Input may be a 1-based number, a full label, a whole word of a label, or
// a label prefix. Matching is case-insensitive and stops at the first tier
// that matches anything.
func Choice(input string, labels []string) (int, error) {
	query := strings.ToLower(strings.TrimSpace(input))
	if query == "" {
		return -1, &NotFoundError{Input: input}
	}

	// 1. Number.
	if n, err := strconv.Atoi(query); err == nil {
		if n < 1 || n > len(labels) {
			return -1, &NotFoundError{Input: input}
		}
		return n - 1, nil
	}

	tiers := []func(label string) bool{
		// 2. Exact label.
		func(label string) bool { return label == query },
		// 3. Whole word: "key" matches "Take the key".
		func(label string) bool {
			for _, word := range strings.Fields(label) {
				if strings.Trim(word, ".,!?;:\"'") == query {
					return true
				}
			}
			return false
		},
		// 4. Prefix.
		func(label string) bool { return strings.HasPrefix(label, query) },
	}

	for _, match := range tiers {
		var hits []int
		for i, l := range labels {
			if match(strings.ToLower(l)) {
				hits = append(hits, i)
			}
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			return hits[0], nil
		default:
			names := make([]string, len(hits))
			for j, i := range hits {
				names[j] = labels[i]
			}
			return -1, &AmbiguityError{Input: input, Candidates: names}
		}
	}
	return -1, &NotFoundError{Input: input}
}
