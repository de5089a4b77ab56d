package loader

import (
	"regexp"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/storyloom/engine/state"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Variables { inventory = {...}, relationships = {...}, flags = {...}, health = n }
	L.SetGlobal("Variables", L.NewFunction(func(L *lua.LState) int {
		coll.variables = L.CheckTable(1)
		return 0
	}))

	// Passage "id" { text = "...", choices = {...} }, curried.
	L.SetGlobal("Passage", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.passages = append(coll.passages, rawPassage{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Choice { text = "...", target = "...", condition = ..., effect = ... }
	// Pass-through, returns the table.
	L.SetGlobal("Choice", L.NewFunction(func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	}))

	// Go("target", "text"): shorthand for an unconditional choice. The text
	// defaults to the editor label "Go to <target>".
	L.SetGlobal("Go", L.NewFunction(func(L *lua.LState) int {
		target := L.CheckString(1)
		text := L.OptString(2, "Go to "+target)
		tbl := L.NewTable()
		tbl.RawSetString("text", lua.LString(text))
		tbl.RawSetString("target", lua.LString(target))
		L.Push(tbl)
		return 1
	}))
}

// Condition helpers build expression strings; they never evaluate anything.
func registerConditionHelpers(L *lua.LState) {
	// HasItem("lamp") -> inventory.lamp
	L.SetGlobal("HasItem", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(slotPath(L, state.Inventory, L.CheckString(1))))
		return 1
	}))

	// FlagSet("met_mara") -> flags.met_mara
	L.SetGlobal("FlagSet", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(slotPath(L, state.Flags, L.CheckString(1))))
		return 1
	}))

	// FlagNot("met_mara") -> !flags.met_mara
	L.SetGlobal("FlagNot", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString("!" + slotPath(L, state.Flags, L.CheckString(1))))
		return 1
	}))

	// Relationship("mara", ">=", 2) -> relationships.mara >= 2
	L.SetGlobal("Relationship", L.NewFunction(func(L *lua.LState) int {
		path := slotPath(L, state.Relationships, L.CheckString(1))
		L.Push(lua.LString(path + " " + compareOp(L, 2) + " " + formatNumber(float64(L.CheckNumber(3)))))
		return 1
	}))

	// Health(">", 0) -> health > 0
	L.SetGlobal("Health", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(state.Health + " " + compareOp(L, 1) + " " + formatNumber(float64(L.CheckNumber(2)))))
		return 1
	}))

	// Not(cond) -> !(cond)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString("!(" + L.CheckString(1) + ")"))
		return 1
	}))

	// All(a, b, ...) -> (a) && (b)
	L.SetGlobal("All", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(joinExprs(L, " && ")))
		return 1
	}))

	// Any(a, b, ...) -> (a) || (b)
	L.SetGlobal("Any", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(joinExprs(L, " || ")))
		return 1
	}))
}

// Effect helpers build effect statements.
func registerEffectHelpers(L *lua.LState) {
	// GiveItem("lamp") -> inventory.lamp = true
	L.SetGlobal("GiveItem", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(slotPath(L, state.Inventory, L.CheckString(1)) + " = true"))
		return 1
	}))

	// RemoveItem("lamp") -> inventory.lamp = false
	L.SetGlobal("RemoveItem", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(slotPath(L, state.Inventory, L.CheckString(1)) + " = false"))
		return 1
	}))

	// SetFlag("met_mara", true)
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		path := slotPath(L, state.Flags, L.CheckString(1))
		value := L.OptBool(2, true)
		L.Push(lua.LString(path + " = " + strconv.FormatBool(value)))
		return 1
	}))

	// AdjustRelationship("mara", -1) -> relationships.mara -= 1
	L.SetGlobal("AdjustRelationship", L.NewFunction(func(L *lua.LState) int {
		path := slotPath(L, state.Relationships, L.CheckString(1))
		L.Push(lua.LString(adjust(path, float64(L.CheckNumber(2)))))
		return 1
	}))

	// AdjustHealth(-2) -> health -= 2
	L.SetGlobal("AdjustHealth", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(adjust(state.Health, float64(L.CheckNumber(1)))))
		return 1
	}))

	// SetHealth(10) -> health = 10
	L.SetGlobal("SetHealth", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(state.Health + " = " + formatNumber(float64(L.CheckNumber(1)))))
		return 1
	}))

	// Effects(a, b, ...) -> a; b
	L.SetGlobal("Effects", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.CheckString(i))
		}
		L.Push(lua.LString(strings.Join(parts, "; ")))
		return 1
	}))
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var keywords = map[string]bool{"and": true, "or": true, "not": true, "true": true, "false": true}

// slotPath renders category.key, switching to bracket form for keys that
// are not plain identifiers.
func slotPath(L *lua.LState, category, key string) string {
	if key == "" {
		L.RaiseError("empty %s key", category)
	}
	if identRe.MatchString(key) && !keywords[key] {
		return category + "." + key
	}
	quote := `"`
	if strings.Contains(key, quote) {
		quote = "'"
		if strings.Contains(key, quote) {
			L.RaiseError("%s key %q cannot contain both quote characters", category, key)
		}
	}
	return category + "[" + quote + key + quote + "]"
}

var compareOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

func compareOp(L *lua.LState, n int) string {
	op := L.CheckString(n)
	if !compareOps[op] {
		L.ArgError(n, "unknown comparison "+strconv.Quote(op))
	}
	return op
}

func joinExprs(L *lua.LState, sep string) string {
	if L.GetTop() == 0 {
		L.RaiseError("at least one condition required")
	}
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, "("+L.CheckString(i)+")")
	}
	return strings.Join(parts, sep)
}

func adjust(path string, n float64) string {
	if n < 0 {
		return path + " -= " + formatNumber(-n)
	}
	return path + " += " + formatNumber(n)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
