package check

import "errors"

// Failure kinds. Every error returned by Check matches exactly one of them
// with errors.Is.
var (
	ErrMissingEnvironmentVariable = errors.New("missing environment variable")
	ErrSettings                   = errors.New("invalid check settings")
	ErrMissingValidator           = errors.New("missing validator")
	ErrConfigRead                 = errors.New("config read or parse error")
	ErrValidatorFailed            = errors.New("validator failed")
	ErrValidationFailed           = errors.New("validation failed")
)

// Error pairs a failure kind with its cause.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func fail(kind, cause error) error {
	return &Error{Kind: kind, Err: cause}
}
