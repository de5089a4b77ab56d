package loader

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/storyloom/engine/story"
	"github.com/nathoo/storyloom/types"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	variables *lua.LTable
	passages  []rawPassage
}

// rawPassage holds a passage table before compilation.
type rawPassage struct {
	id    string
	table *lua.LTable
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		// Otherwise treat as map.
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// decodeTable decodes a Lua table into out. Unknown keys are errors so
// typos such as "targte" surface at load time.
func decodeTable(tbl *lua.LTable, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(toGoValue(tbl))
}

// compile converts all collected Lua data into a story graph.
func compile(coll *collector) (*story.Graph, error) {
	if len(coll.passages) == 0 {
		return nil, fmt.Errorf("%w: no Passage definitions found", ErrInvalidDocument)
	}

	doc := &Document{Passages: make(map[string]PassageDoc, len(coll.passages))}

	if coll.variables != nil {
		var v types.Variables
		if err := decodeTable(coll.variables, &v); err != nil {
			return nil, fmt.Errorf("%w: compiling variables: %v", ErrInvalidDocument, err)
		}
		doc.Variables = v
	}

	for _, raw := range coll.passages {
		if _, dup := doc.Passages[raw.id]; dup {
			return nil, fmt.Errorf("%w: passage %q: %w", ErrInvalidDocument, raw.id, story.ErrDuplicateID)
		}
		var p PassageDoc
		if err := decodeTable(raw.table, &p); err != nil {
			return nil, fmt.Errorf("%w: compiling passage %s: %v", ErrInvalidDocument, raw.id, err)
		}
		doc.Passages[raw.id] = p
	}

	return doc.graph()
}
