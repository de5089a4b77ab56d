package resolve

import (
	"errors"
	"testing"
)

var labels = []string{"Take the rusty key", "Take the golden key", "Open the door", "Leave"}

func TestChoice(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"1", 0},
		{" 4 ", 3},
		{"leave", 3},
		{"LEAVE", 3},
		{"door", 2},
		{"rusty", 0},
		{"open", 2},
		{"le", 3},
		{"take the golden key", 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Choice(tt.input, labels)
			if err != nil {
				t.Fatalf("Choice(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Choice(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestChoice_Ambiguous(t *testing.T) {
	_, err := Choice("key", labels)
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguityError, got %v", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("candidates = %v, want 2", amb.Candidates)
	}
}

func TestChoice_NotFound(t *testing.T) {
	for _, input := range []string{"", "0", "5", "fly", "-1"} {
		_, err := Choice(input, labels)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("Choice(%q) err = %v, want NotFoundError", input, err)
		}
	}
}

func TestChoice_NoLabels(t *testing.T) {
	if _, err := Choice("1", nil); err == nil {
		t.Error("expected error for empty choice list")
	}
}
