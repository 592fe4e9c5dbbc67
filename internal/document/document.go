// Package document reads the config document handed to the validator.
package document

import (
	"encoding/json"
	"fmt"
	"os"
)

// Error reports a config document that could not be read or parsed.
type Error struct {
	Path string
	// Op is "read" or "parse".
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("document: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load reads the JSON value at path. No schema is applied: objects decode
// to map[string]any, numbers to float64.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Op: "read", Err: err}
	}
	return Parse(path, data)
}

// Parse decodes a JSON document. path is only used in errors.
func Parse(path string, data []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Path: path, Op: "parse", Err: err}
	}
	return doc, nil
}
