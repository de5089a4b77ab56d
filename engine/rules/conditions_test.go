package rules

import (
	"errors"
	"testing"

	"github.com/nathoo/storyloom/engine/parser"
	"github.com/nathoo/storyloom/types"
)

func testVars() *types.Variables {
	return &types.Variables{
		Inventory:     map[string]bool{"lantern": true, "sword": false},
		Relationships: map[string]float64{"mara": 2, "tomas": -1},
		Flags:         map[string]bool{"hasKey": false, "metMara": true},
		Health:        7,
	}
}

func TestEvalCondition(t *testing.T) {
	tests := []struct {
		cond string
		want bool
	}{
		{"flags.metMara", true},
		{"flags.hasKey", false},
		{"!flags.hasKey", true},
		{"flags.neverSet", false},
		{"inventory.lantern && !inventory.sword", true},
		{"inventory.sword || flags.metMara", true},
		{"relationships.mara > 1", true},
		{"relationships.mara >= 3", false},
		{"relationships.tomas < 0", true},
		{"relationships.nobody == 0", true},
		{"relationships.mara == 2 and flags.metMara", true},
		{"health - 2 > 4", true},
		{"health * 2 == 14", true},
		{"health % 2 == 1", true},
		{"health / 7 == 1", true},
		{"health", true},
		{"relationships.nobody", false},
		{"flags.hasKey == false", true},
		{"flags.metMara != true", false},
		{"flags.metMara == 1", false},
		{"(relationships.mara > 5) || (health > 5 && inventory.lantern)", true},
		{`inventory["lantern"]`, true},
		{"-relationships.tomas == 1", true},
		{"+health == 7", true},
		{"health < 1e1", true},
	}
	v := testVars()
	for _, tt := range tests {
		got, err := EvalCondition(tt.cond, v)
		if err != nil {
			t.Errorf("EvalCondition(%q) error: %v", tt.cond, err)
			continue
		}
		if got != tt.want {
			t.Errorf("EvalCondition(%q) = %v, want %v", tt.cond, got, tt.want)
		}
	}
}

func TestEvalCondition_FailuresAreFalse(t *testing.T) {
	bad := []string{
		"gold > 3",
		"window.alert",
		"relationships.mara.trust > 1",
		"inventory > 1",
		"flags.metMara > 0",
		"-flags.metMara == 1",
		"+flags.metMara == 1",
		"health / 0 > 1",
		"health % 0 == 0",
		"flags.hasKey &&",
		"constructor.constructor('return this')()",
	}
	v := testVars()
	for _, src := range bad {
		got, err := EvalCondition(src, v)
		if got {
			t.Errorf("EvalCondition(%q) = true, want false on failure", src)
		}
		if err == nil {
			t.Errorf("EvalCondition(%q) expected error", src)
			continue
		}
		if !errors.Is(err, parser.ErrMalformed) {
			t.Errorf("EvalCondition(%q) error %v does not match ErrMalformed", src, err)
		}
	}
}

func TestEvalCondition_ShortCircuit(t *testing.T) {
	v := testVars()
	got, err := EvalCondition("flags.hasKey && gold > 1", v)
	if err != nil || got {
		t.Errorf("got %v, %v; want false, nil", got, err)
	}
	got, err = EvalCondition("flags.metMara || gold > 1", v)
	if err != nil || !got {
		t.Errorf("got %v, %v; want true, nil", got, err)
	}
}

func TestEvalCondition_IsPure(t *testing.T) {
	v := testVars()
	conds := []string{"relationships.mara > 1", "!flags.hasKey", "health + 1 > 7"}
	for _, c := range conds {
		first, _ := EvalCondition(c, v)
		second, _ := EvalCondition(c, v)
		if first != second {
			t.Errorf("EvalCondition(%q) not stable: %v then %v", c, first, second)
		}
	}
	if v.Health != 7 || v.Relationships["mara"] != 2 || len(v.Flags) != 2 {
		t.Errorf("evaluation mutated the store: %+v", v)
	}
}

func TestEvalError_CarriesSource(t *testing.T) {
	_, err := EvalCondition("gold > 3", testVars())
	var ee *EvalError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EvalError, got %T", err)
	}
	if ee.Source != "gold > 3" {
		t.Errorf("Source = %q", ee.Source)
	}
}

func TestEnabled_EmptyConditionIsTrue(t *testing.T) {
	for _, c := range []string{"", "   "} {
		ok, err := Enabled(c, testVars())
		if err != nil || !ok {
			t.Errorf("Enabled(%q) = %v, %v; want true, nil", c, ok, err)
		}
	}
}

func TestEnabled_NilCategories(t *testing.T) {
	ok, err := Enabled("flags.hasKey", &types.Variables{})
	if err != nil || ok {
		t.Errorf("Enabled on empty store = %v, %v; want false, nil", ok, err)
	}
}
