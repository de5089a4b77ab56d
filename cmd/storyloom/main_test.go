package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/storyloom/engine/save"
	"github.com/nathoo/storyloom/store"
	"github.com/nathoo/storyloom/types"
)

const lantern = "testdata/lantern.yaml"

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORYLOOM_SAVE_DIR", t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScriptCommand(t *testing.T) {
	out, err := runCmd(t, "script", lantern)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "start\nRain hammers the lighthouse door.\n"))
	assert.Contains(t, out, "→ Light the lamp → lamp [if inventory.lantern]")
	assert.Contains(t, out, "→ Go back down → hall\n")
}

func TestGraphCommand(t *testing.T) {
	out, err := runCmd(t, "graph", lantern)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `(("start"))`)
	assert.Contains(t, out, `cliff(["cliff"])`)
}

func TestValidateCommand(t *testing.T) {
	out, err := runCmd(t, "validate", "--walks", "20", "--seed", "7", lantern)
	require.NoError(t, err)

	assert.Contains(t, out, "Story is valid (5 passages, 0 warnings).")
	assert.Contains(t, out, "explored 20 walks (seed 7")
	assert.Contains(t, out, "ending cliff:")
}

func TestValidateCommand_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	doc := "passages:\n  start:\n    text: Hi\n    choices:\n      - text: Go\n        target: start\n        condition: weather.rain\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := runCmd(t, "validate", "--walks", "0", path)
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "error: passage \"start\" choice 1 condition")
}

func TestConvertCommand(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "lantern.json")
	out, err := runCmd(t, "convert", lantern, dst)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 5 passages")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"target": "stairs"`)
}

func TestNovelCommand(t *testing.T) {
	dir := t.TempDir()
	blob, err := save.Encode(types.PlayState{
		CurrentPassage: "hall",
		History:        []types.HistoryEntry{{Passage: "start", ChoiceText: "Knock"}},
	})
	require.NoError(t, err)
	require.NoError(t, store.NewFileStore(dir).Save(t.Context(), "run1", blob))

	t.Setenv("STORYLOOM_SAVE_DIR", dir)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"novel", "--save", "run1", lantern})
	require.NoError(t, rootCmd.Execute())

	want := "Rain hammers the lighthouse door.\n\nYou chose: \"Knock\"\n\nThe keeper hands you a lantern.\n\n"
	assert.Equal(t, want, out.String())
}

func TestPlayCommand_Script(t *testing.T) {
	input := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("# walkthrough\nknock\nlantern\nlamp\n/novel\n"), 0o644))

	out, err := runCmd(t, "play", "--script", input, lantern)
	require.NoError(t, err)

	assert.Contains(t, out, "The beam sweeps the sea.")
	assert.Contains(t, out, "You chose: \"Light the lamp\"")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "storyloom dev")
}
