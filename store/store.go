// Package store persists named progress saves. A save is the opaque blob
// produced by the save codec; stores never look inside it.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned when no save exists under a name.
var ErrNotFound = errors.New("save not found")

// DefaultName is used when a player saves without naming the slot.
const DefaultName = "quicksave"

// Store is named blob persistence.
type Store interface {
	Save(ctx context.Context, name, blob string) error
	Load(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*$`)

// CheckName rejects names that are empty or could escape a save directory.
func CheckName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid save name %q (use letters, digits, '.', '_' or '-')", name)
	}
	return nil
}
