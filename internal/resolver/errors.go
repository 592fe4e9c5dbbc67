package resolver

import "fmt"

// MissingValidatorError reports that no source produced a callable validator.
// PreferredPath is the canonical artifact location, named in diagnostics even
// when the scan was what came up empty.
type MissingValidatorError struct {
	PreferredPath string
}

func (e *MissingValidatorError) Error() string {
	return fmt.Sprintf("resolver: no callable validator found (preferred %s)", e.PreferredPath)
}
