// internal/engine/codec.go
package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Serialize encodes the full state as JSON text.
func Serialize(s GameState) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal game state: %w", err)
	}
	return string(data), nil
}

// Deserialize decodes text produced by Serialize and validates the result. Any decoding or
// validation failure is reported as ErrMalformedState.
func Deserialize(text string) (GameState, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var s GameState
	if err := dec.Decode(&s); err != nil {
		return GameState{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if dec.More() {
		return GameState{}, fmt.Errorf("%w: trailing data after state", ErrMalformedState)
	}
	if err := s.Validate(); err != nil {
		return GameState{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return s, nil
}
