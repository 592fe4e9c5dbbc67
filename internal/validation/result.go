// Package validation holds the result model shared by every validator source.
package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Issue is one problem a validator found in the config document.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Result is the outcome of validating one config document.
type Result struct {
	OK     bool    `json:"ok"`
	Issues []Issue `json:"issues,omitempty"`
}

// Validator checks a parsed config document.
type Validator interface {
	Validate(doc any) (Result, error)
}

// Func adapts an ordinary function to Validator.
type Func func(doc any) (Result, error)

// Validate calls f.
func (f Func) Validate(doc any) (Result, error) {
	return f(doc)
}

// Normalize converts the loosely typed value returned by a dynamically loaded
// validator into a Result. The value is round-tripped through JSON so maps,
// tagged structs and slices of either are all accepted. A value that is not an
// object, or whose "ok" field is not truthy, is a failed result.
func Normalize(raw any) (Result, error) {
	payload, err := json.Marshal(raw)
	if err != nil {
		return Result{}, fmt.Errorf("validation: encode result: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Result{}, fmt.Errorf("validation: decode result: %w", err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return Result{}, nil
	}
	result := Result{OK: truthy(obj["ok"])}
	list, _ := obj["issues"].([]any)
	for _, entry := range list {
		issue, _ := entry.(map[string]any)
		result.Issues = append(result.Issues, Issue{
			Path:    pathLabel(issue["path"]),
			Message: messageText(issue),
		})
	}
	return result, nil
}

// pathLabel renders a path that may be a plain string or a list of segments.
func pathLabel(value any) string {
	if !truthy(value) {
		return ""
	}
	segments, ok := value.([]any)
	if !ok {
		return scalarText(value)
	}
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		parts = append(parts, scalarText(segment))
	}
	return strings.Join(parts, ".")
}

// messageText renders an issue message. An absent message reads "undefined"
// and an explicit null reads "null", so the issue line is never blank.
func messageText(issue map[string]any) string {
	value, ok := issue["message"]
	switch {
	case !ok:
		return "undefined"
	case value == nil:
		return "null"
	}
	return scalarText(value)
}

func scalarText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}
