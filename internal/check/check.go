// Package check runs one config validation: read the environment, resolve
// the validator, load the document, validate and report.
package check

import (
	"errors"
	"fmt"
	"io"

	"github.com/moritzketzer/nix-openclaw/internal/config"
	"github.com/moritzketzer/nix-openclaw/internal/document"
	"github.com/moritzketzer/nix-openclaw/internal/logging"
	"github.com/moritzketzer/nix-openclaw/internal/report"
	"github.com/moritzketzer/nix-openclaw/internal/resolver"
	"github.com/moritzketzer/nix-openclaw/internal/validation"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitFailed = 1
)

// ResolverFactory builds the resolver for a run. Tests substitute fixtures here.
type ResolverFactory func(inputs config.Inputs, settings config.Settings, log *logging.Logger) (resolver.Resolver, error)

// Runner wires one check run to its environment and output streams.
type Runner struct {
	Lookup      config.LookupFunc
	NewResolver ResolverFactory
	Stdout      io.Writer
	Stderr      io.Writer
	// DotEnv reads the .env file once the required variables are known to be
	// set. Nil disables .env support.
	DotEnv config.DotEnvFunc
	// Terminal reports whether a stream is a terminal; nil means never.
	Terminal func(io.Writer) bool
}

// Outcome is everything Check learned before it stopped.
type Outcome struct {
	Inputs   config.Inputs
	Settings config.Settings
	Result   validation.Result
}

// Run performs the check, prints the outcome and returns the exit code.
func (r *Runner) Run() int {
	outcome, err := r.Check()
	printer := report.NewPrinter(r.Stdout, r.Stderr, r.styled(outcome.Settings))
	if err == nil {
		printer.OK()
		return ExitOK
	}
	if errors.Is(err, ErrValidationFailed) {
		printer.Failed(outcome.Result.Issues)
		return ExitFailed
	}
	printer.Diagnostic("%s", Diagnostic(err, outcome.Inputs))
	return ExitFailed
}

// Check runs every step in order and stops at the first failure. Resolution
// happens before the config document is read.
func (r *Runner) Check() (Outcome, error) {
	var outcome Outcome
	inputs, err := config.ReadInputs(r.Lookup)
	if err != nil {
		return outcome, fail(ErrMissingEnvironmentVariable, err)
	}
	err = inputs.ApplyDotEnv(r.Lookup, r.DotEnv)
	outcome.Inputs = inputs
	if err != nil {
		return outcome, fail(ErrSettings, err)
	}

	settings, err := config.LoadSettings(inputs.SettingsPath)
	if err != nil {
		return outcome, fail(ErrSettings, err)
	}
	outcome.Settings = settings

	log, err := logging.New(settings.LogFile)
	if err != nil {
		return outcome, fail(ErrSettings, err)
	}
	defer log.Close()
	log.Printf("check: config=%s src=%s load_failure=%s", inputs.ConfigPath, inputs.SourceRoot, settings.LoadFailure)

	if r.NewResolver == nil {
		return outcome, fail(ErrMissingValidator, fmt.Errorf("check: no resolver configured"))
	}
	res, err := r.NewResolver(inputs, settings, log)
	if err != nil {
		return outcome, fail(ErrMissingValidator, err)
	}
	validator, err := res.Resolve()
	if err != nil {
		log.Printf("check: resolve failed: %v", err)
		return outcome, fail(ErrMissingValidator, err)
	}

	doc, err := document.Load(inputs.ConfigPath)
	if err != nil {
		log.Printf("check: %v", err)
		return outcome, fail(ErrConfigRead, err)
	}

	result, err := validator.Validate(doc)
	if err != nil {
		log.Printf("check: validator error: %v", err)
		return outcome, fail(ErrValidatorFailed, err)
	}
	outcome.Result = result
	if !result.OK {
		log.Printf("check: validation failed with %d issue(s)", len(result.Issues))
		return outcome, fail(ErrValidationFailed, fmt.Errorf("%d issue(s)", len(result.Issues)))
	}
	log.Printf("check: ok")
	return outcome, nil
}

// Diagnostic renders the single stderr line for a failure other than
// ErrValidationFailed.
func Diagnostic(err error, inputs config.Inputs) string {
	var missingEnv *config.MissingEnvError
	var missingValidator *resolver.MissingValidatorError
	var docErr *document.Error
	var checkErr *Error
	cause := err
	if errors.As(err, &checkErr) && checkErr.Err != nil {
		cause = checkErr.Err
	}
	switch {
	case errors.As(err, &missingEnv):
		return missingEnv.Error()
	case errors.As(err, &missingValidator):
		return fmt.Sprintf("Missing validation module: %s", missingValidator.PreferredPath)
	case errors.Is(err, ErrMissingValidator):
		return fmt.Sprintf("Failed to load validation module: %v", cause)
	case errors.As(err, &docErr) && docErr.Op == "read":
		return fmt.Sprintf("Failed to read config %s: %v", inputs.ConfigPath, docErr.Err)
	case errors.As(err, &docErr):
		return fmt.Sprintf("Invalid JSON in config %s: %v", inputs.ConfigPath, docErr.Err)
	case errors.Is(err, ErrSettings):
		return fmt.Sprintf("Invalid check settings: %v", cause)
	case errors.Is(err, ErrValidatorFailed):
		return fmt.Sprintf("Validator failed: %v", cause)
	default:
		return err.Error()
	}
}

func (r *Runner) styled(settings config.Settings) bool {
	if settings.Color == "" {
		return false
	}
	terminal := r.Terminal != nil && r.Terminal(r.Stdout) && r.Terminal(r.Stderr)
	return settings.UseColor(terminal)
}
