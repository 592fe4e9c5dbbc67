// internal/config/config.go
//
// This package reads what a check run needs from the environment and the
// optional settings file. Only the two environment variables are required;
// every setting has a default.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath names the JSON config document to validate.
	EnvConfigPath = "OPENCLAW_CONFIG_PATH"
	// EnvSourceRoot names the source/build root that holds dist/.
	EnvSourceRoot = "OPENCLAW_SRC"
	// EnvSettingsPath optionally points at a settings file.
	EnvSettingsPath = "OPENCLAW_CHECK_SETTINGS"

	// SettingsFileName is looked up in the source root when EnvSettingsPath is unset.
	SettingsFileName = ".openclaw-check.yaml"
)

const (
	LoadFailureAbort = "abort"
	LoadFailureSkip  = "skip"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultSettingsYAML documents every setting with its default value.
const DefaultSettingsYAML = `# openclaw config check settings

# What a validator artifact that fails to load does to the search:
# abort stops with an error, skip moves on to the next artifact.
load_failure: abort

# Append a trace of every resolution step to this file (relative to this file).
# log_file: .openclaw-check.log

# auto styles output only on a terminal.
color: auto
`

// LookupFunc reads one environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// DotEnvFunc returns the variables declared in a .env file. A missing file is
// an empty map, not an error.
type DotEnvFunc func() (map[string]string, error)

// MissingEnvError reports a required environment variable that is unset or empty.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("%s is not set", e.Name)
}

// Inputs are the environment values for one run.
type Inputs struct {
	ConfigPath   string
	SourceRoot   string
	SettingsPath string
}

// ReadInputs checks OPENCLAW_CONFIG_PATH, then OPENCLAW_SRC. It never touches
// the filesystem.
func ReadInputs(lookup LookupFunc) (Inputs, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	configPath, ok := lookup(EnvConfigPath)
	if !ok || configPath == "" {
		return Inputs{}, &MissingEnvError{Name: EnvConfigPath}
	}
	sourceRoot, ok := lookup(EnvSourceRoot)
	if !ok || sourceRoot == "" {
		return Inputs{}, &MissingEnvError{Name: EnvSourceRoot}
	}
	settingsPath, _ := lookup(EnvSettingsPath)
	settingsPath = strings.TrimSpace(settingsPath)
	if settingsPath == "" {
		settingsPath = filepath.Join(sourceRoot, SettingsFileName)
	}
	return Inputs{ConfigPath: configPath, SourceRoot: sourceRoot, SettingsPath: settingsPath}, nil
}

// ApplyDotEnv lets a .env file name the settings file when the environment
// does not. Required inputs are never taken from .env, and read is not called
// when OPENCLAW_CHECK_SETTINGS is already set.
func (in *Inputs) ApplyDotEnv(lookup LookupFunc, read DotEnvFunc) error {
	if read == nil {
		return nil
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, _ := lookup(EnvSettingsPath); strings.TrimSpace(v) != "" {
		return nil
	}
	values, err := read()
	if err != nil {
		return fmt.Errorf("config: read .env: %w", err)
	}
	if v := strings.TrimSpace(values[EnvSettingsPath]); v != "" {
		in.SettingsPath = v
	}
	return nil
}

// Settings models the optional settings file.
type Settings struct {
	LoadFailure string `yaml:"load_failure"`
	LogFile     string `yaml:"log_file,omitempty"`
	Color       string `yaml:"color"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{LoadFailure: LoadFailureAbort, Color: ColorAuto}
}

// LoadSettings reads the settings file at path. A missing file yields the
// defaults. log_file is resolved relative to the settings file.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	settings.normalize(filepath.Dir(path))
	if err := settings.validate(); err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return settings, nil
}

// UseColor reports whether output should be styled given whether the
// destination is a terminal.
func (s Settings) UseColor(terminal bool) bool {
	switch s.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return terminal
	}
}

func (s *Settings) normalize(base string) {
	s.LoadFailure = normalizeEnum(s.LoadFailure, LoadFailureAbort)
	s.Color = normalizeEnum(s.Color, ColorAuto)
	s.LogFile = resolvePath(base, s.LogFile)
}

func (s Settings) validate() error {
	switch s.LoadFailure {
	case LoadFailureAbort, LoadFailureSkip:
	default:
		return fmt.Errorf("load_failure must be '%s' or '%s'", LoadFailureAbort, LoadFailureSkip)
	}
	switch s.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be '%s', '%s' or '%s'", ColorAuto, ColorAlways, ColorNever)
	}
	return nil
}

func normalizeEnum(value, fallback string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
