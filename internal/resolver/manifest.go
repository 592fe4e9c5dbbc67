package resolver

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const manifestVersion = 1

// Manifest declares validator entry points explicitly, so a build can point
// at its validator instead of relying on the artifact scan.
type Manifest struct {
	Version    int             `yaml:"version"`
	Validators []ManifestEntry `yaml:"validators"`
}

// ManifestEntry names one artifact (relative to the build dir) and the symbol
// it exports.
type ManifestEntry struct {
	Path   string `yaml:"path"`
	Symbol string `yaml:"symbol,omitempty"`
}

// Validate checks the manifest shape.
func (m Manifest) Validate() error {
	if m.Version != manifestVersion {
		return fmt.Errorf("resolver: manifest version must be %d, got %d", manifestVersion, m.Version)
	}
	for idx, entry := range m.Validators {
		path := strings.TrimSpace(entry.Path)
		if path == "" {
			return fmt.Errorf("resolver: validators[%d].path is required", idx)
		}
		if filepath.IsAbs(path) {
			return fmt.Errorf("resolver: validators[%d].path must be relative to the build dir", idx)
		}
		cleaned := filepath.Clean(filepath.FromSlash(path))
		if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
			return fmt.Errorf("resolver: validators[%d].path escapes the build dir", idx)
		}
	}
	return nil
}

// Normalized returns a copy with cleaned paths and default symbols filled in.
func (m Manifest) Normalized(defaultSymbol string) Manifest {
	out := Manifest{Version: m.Version, Validators: make([]ManifestEntry, 0, len(m.Validators))}
	for _, entry := range m.Validators {
		symbol := strings.TrimSpace(entry.Symbol)
		if symbol == "" {
			symbol = defaultSymbol
		}
		out.Validators = append(out.Validators, ManifestEntry{
			Path:   filepath.Clean(filepath.FromSlash(strings.TrimSpace(entry.Path))),
			Symbol: symbol,
		})
	}
	return out
}

// ParseManifest decodes and validates a manifest payload.
func ParseManifest(data []byte, defaultSymbol string) (Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Manifest{}, fmt.Errorf("resolver: manifest is empty")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("resolver: decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m.Normalized(defaultSymbol), nil
}

// LoadManifest reads the manifest at path. A missing file is reported with
// found=false and no error.
func LoadManifest(path, defaultSymbol string) (m Manifest, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Manifest{}, false, nil
		}
		return Manifest{}, false, fmt.Errorf("resolver: read %s: %w", path, err)
	}
	m, err = ParseManifest(data, defaultSymbol)
	if err != nil {
		return Manifest{}, true, fmt.Errorf("resolver: %s: %w", path, err)
	}
	return m, true, nil
}
