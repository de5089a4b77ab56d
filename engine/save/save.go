// Package save encodes and decodes player progress as an opaque text blob:
// base64 over the JSON form of the player state triple.
package save

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/storyloom/engine/state"
	"github.com/nathoo/storyloom/types"
)

// ErrInvalidSave is returned for blobs that cannot be decoded.
var ErrInvalidSave = errors.New("invalid progress save")

// Encode serializes a play state to a base64 blob.
func Encode(s types.PlayState) (string, error) {
	if s.History == nil {
		s.History = []types.HistoryEntry{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding progress: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a blob produced by Encode. Surrounding whitespace is
// ignored so blobs survive being pasted or written with a trailing newline.
func Decode(blob string) (types.PlayState, error) {
	var s types.PlayState
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if s.CurrentPassage == "" {
		return s, fmt.Errorf("%w: missing currentPassage", ErrInvalidSave)
	}
	// Ensure maps are never nil after load.
	state.Normalize(&s.Variables)
	if s.History == nil {
		s.History = []types.HistoryEntry{}
	}
	return s, nil
}
