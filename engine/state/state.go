// Package state manages the variable store: construction, deep copies, and
// path lookups and assignments into the three variable categories.
package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/storyloom/types"
)

// Category and root names addressable from expressions.
const (
	Inventory     = "inventory"
	Relationships = "relationships"
	Flags         = "flags"
	Health        = "health"
)

// Kind is the value type a variable slot holds.
type Kind int

const (
	KindBool Kind = iota
	KindNumber
)

func (k Kind) String() string {
	if k == KindBool {
		return "boolean"
	}
	return "number"
}

// Roots lists every identifier an expression may start with.
var Roots = []string{Inventory, Relationships, Flags, Health}

// NewVariables returns an empty store with all category maps allocated.
func NewVariables() types.Variables {
	return types.Variables{
		Inventory:     map[string]bool{},
		Relationships: map[string]float64{},
		Flags:         map[string]bool{},
	}
}

// Clone returns a deep copy of v. Nil categories come back allocated.
func Clone(v types.Variables) types.Variables {
	out := NewVariables()
	for k, b := range v.Inventory {
		out.Inventory[k] = b
	}
	for k, n := range v.Relationships {
		out.Relationships[k] = n
	}
	for k, b := range v.Flags {
		out.Flags[k] = b
	}
	out.Health = v.Health
	return out
}

// Normalize allocates any nil category map in place.
func Normalize(v *types.Variables) {
	if v.Inventory == nil {
		v.Inventory = map[string]bool{}
	}
	if v.Relationships == nil {
		v.Relationships = map[string]float64{}
	}
	if v.Flags == nil {
		v.Flags = map[string]bool{}
	}
}

// IsRoot reports whether name is a valid expression root.
func IsRoot(name string) bool {
	for _, r := range Roots {
		if r == name {
			return true
		}
	}
	return false
}

// SlotKind returns the kind of value stored at path, or an error if the
// path does not address a slot (unknown root, wrong depth).
func SlotKind(path []string) (Kind, error) {
	if len(path) == 0 {
		return 0, fmt.Errorf("empty path")
	}
	switch path[0] {
	case Health:
		if len(path) != 1 {
			return 0, fmt.Errorf("%s is a number, not a container", Health)
		}
		return KindNumber, nil
	case Inventory, Flags:
		if len(path) != 2 {
			return 0, fmt.Errorf("path %s must name exactly one key", joinPath(path))
		}
		return KindBool, nil
	case Relationships:
		if len(path) != 2 {
			return 0, fmt.Errorf("path %s must name exactly one key", joinPath(path))
		}
		return KindNumber, nil
	default:
		return 0, fmt.Errorf("unknown variable %q", path[0])
	}
}

// Lookup returns the value at path as a bool or float64. Keys missing from
// an existing category read as the category's zero value.
func Lookup(v *types.Variables, path []string) (any, error) {
	kind, err := SlotKind(path)
	if err != nil {
		return nil, err
	}
	switch path[0] {
	case Health:
		return v.Health, nil
	case Inventory:
		return v.Inventory[path[1]], nil
	case Flags:
		return v.Flags[path[1]], nil
	case Relationships:
		return v.Relationships[path[1]], nil
	}
	return nil, fmt.Errorf("unhandled %s slot %s", kind, joinPath(path))
}

// Assign writes value at path, creating the category map if needed.
// The value's type must match the slot kind.
func Assign(v *types.Variables, path []string, value any) error {
	kind, err := SlotKind(path)
	if err != nil {
		return err
	}
	switch kind {
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s holds a boolean, got %T", joinPath(path), value)
		}
		if path[0] == Inventory {
			if v.Inventory == nil {
				v.Inventory = map[string]bool{}
			}
			v.Inventory[path[1]] = b
		} else {
			if v.Flags == nil {
				v.Flags = map[string]bool{}
			}
			v.Flags[path[1]] = b
		}
	case KindNumber:
		n, ok := value.(float64)
		if !ok {
			return fmt.Errorf("%s holds a number, got %T", joinPath(path), value)
		}
		if path[0] == Health {
			v.Health = n
			return nil
		}
		if v.Relationships == nil {
			v.Relationships = map[string]float64{}
		}
		v.Relationships[path[1]] = n
	}
	return nil
}

// Remove deletes a key from a category. Removing health resets it to 0.
func Remove(v *types.Variables, path []string) error {
	if _, err := SlotKind(path); err != nil {
		return err
	}
	switch path[0] {
	case Health:
		v.Health = 0
	case Inventory:
		delete(v.Inventory, path[1])
	case Flags:
		delete(v.Flags, path[1])
	case Relationships:
		delete(v.Relationships, path[1])
	}
	return nil
}

// Keys returns the sorted key names of a category.
func Keys(v *types.Variables, category string) []string {
	var keys []string
	switch category {
	case Inventory:
		for k := range v.Inventory {
			keys = append(keys, k)
		}
	case Flags:
		for k := range v.Flags {
			keys = append(keys, k)
		}
	case Relationships:
		for k := range v.Relationships {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether two stores hold the same values. Nil and empty
// category maps compare equal.
func Equal(a, b types.Variables) bool {
	if a.Health != b.Health {
		return false
	}
	if len(a.Inventory) != len(b.Inventory) || len(a.Flags) != len(b.Flags) || len(a.Relationships) != len(b.Relationships) {
		return false
	}
	for k, x := range a.Inventory {
		if y, ok := b.Inventory[k]; !ok || x != y {
			return false
		}
	}
	for k, x := range a.Flags {
		if y, ok := b.Flags[k]; !ok || x != y {
			return false
		}
	}
	for k, x := range a.Relationships {
		if y, ok := b.Relationships[k]; !ok || x != y {
			return false
		}
	}
	return true
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}
