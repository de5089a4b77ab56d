package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/storyloom/engine/story"
)

// ErrInvalidDocument is returned when a story document cannot be turned
// into a graph. No partial graph is ever returned with it.
var ErrInvalidDocument = errors.New("invalid story document")

// Format names a story document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatLua  Format = "lua"
)

// FormatFor picks a format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".lua":
		return FormatLua, nil
	}
	return "", fmt.Errorf("unsupported story file %q (want .yaml, .yml, .json or .lua)", path)
}

// Load reads a story from a file or from a directory of .lua files.
func Load(path string) (*story.Graph, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading story %s: %w", path, err)
	}
	if info.IsDir() {
		return loadLuaDir(path)
	}
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	if format == FormatLua {
		return loadLuaFiles(filepath.Dir(path), []string{filepath.Base(path)})
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading story %s: %w", path, err)
	}
	return Parse(data, format)
}

// Parse decodes a YAML or JSON story document.
func Parse(data []byte, format Format) (*story.Graph, error) {
	switch format {
	case FormatYAML, FormatJSON:
		doc, err := decodeDocument(data)
		if err != nil {
			return nil, err
		}
		return doc.graph()
	case FormatLua:
		return loadLuaSource(string(data))
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// loadLuaDir runs every .lua file in dir, story.lua first and the rest
// alphabetically, in one VM.
func loadLuaDir(dir string) (*story.Graph, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading story directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	return loadLuaFiles(dir, sortedLuaFiles(luaFiles))
}

func loadLuaFiles(dir string, files []string) (*story.Graph, error) {
	L := newVM()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range files {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}
	return compile(coll)
}

func loadLuaSource(src string) (*story.Graph, error) {
	L := newVM()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("executing story source: %w", err)
	}
	return compile(coll)
}

// newVM creates a sandboxed Lua state. The VM only lives for the duration
// of a load.
func newVM() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	return L
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the story files.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring", "require", "module",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "print",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Stories must load the same way every time.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}

// sortedLuaFiles returns .lua files with story.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var main string
	var others []string
	for _, f := range files {
		if f == "story.lua" {
			main = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if main != "" {
		return append([]string{main}, others...)
	}
	return others
}
