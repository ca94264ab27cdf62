package shared

import (
	"encoding/json"
	"fmt"
)

// ValidateJSON reports whether data is a well-formed JSON document.
func ValidateJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", ErrInvalidInput, err)
	}
	return nil
}

// MarshalJSON encodes v, indenting with two spaces when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
