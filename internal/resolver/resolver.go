// Package resolver locates the config validator inside a build output tree.
//
// Sources are tried in a fixed order: the preferred artifact, the optional
// validators.yaml manifest, then a scan of config-* artifacts in the build dir.
// How an artifact turns into callable code is delegated to a Loader.
package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/moritzketzer/nix-openclaw/internal/logging"
	"github.com/moritzketzer/nix-openclaw/internal/validation"
)

const (
	// DefaultSymbol is the function every validator artifact exports.
	DefaultSymbol = "validateConfigObject"

	buildDirName    = "dist"
	candidatePrefix = "config-"
	barrelStem      = "./entry"
	manifestName    = "validators.yaml"
)

// Loader turns an artifact on disk into a Module.
type Loader interface {
	// Extension is the artifact suffix this loader handles, e.g. ".go".
	Extension() string
	Load(path string) (Module, error)
}

// Module is a loaded artifact. Lookup reports true only when the symbol is
// present and callable as a validator.
type Module interface {
	Lookup(symbol string) (validation.Validator, bool)
}

// Resolver produces the validator for a run.
type Resolver interface {
	Resolve() (validation.Validator, error)
}

// Func adapts a plain function to Resolver.
type Func func() (validation.Validator, error)

// Resolve calls f.
func (f Func) Resolve() (validation.Validator, error) {
	return f()
}

// Policy decides what a failed artifact load does to the resolution.
type Policy string

const (
	// PolicyAbort makes any load failure fatal.
	PolicyAbort Policy = "abort"
	// PolicySkip logs the failure and moves on to the next source.
	PolicySkip Policy = "skip"
)

// ParsePolicy maps a settings value to a Policy. Empty means PolicyAbort.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("resolver: unknown load failure policy %q", value)
	}
}

// Layout names every location the resolver looks at.
type Layout struct {
	BuildDir        string
	PreferredPath   string
	ManifestPath    string
	CandidatePrefix string
	CandidateSuffix string
	BarrelMarker    string
	Symbol          string
}

// NewLayout derives the layout under root for artifacts ending in ext.
func NewLayout(root, ext string) Layout {
	ext = normalizeExt(ext)
	buildDir := filepath.Join(root, buildDirName)
	return Layout{
		BuildDir:        buildDir,
		PreferredPath:   filepath.Join(buildDir, "config", "validation"+ext),
		ManifestPath:    filepath.Join(buildDir, manifestName),
		CandidatePrefix: candidatePrefix,
		CandidateSuffix: ext,
		BarrelMarker:    barrelStem + ext,
		Symbol:          DefaultSymbol,
	}
}

// IsCandidate reports whether name follows the config-*<ext> convention.
func (l Layout) IsCandidate(name string) bool {
	return strings.HasPrefix(name, l.CandidatePrefix) && strings.HasSuffix(name, l.CandidateSuffix)
}

// Options tune a Scanner.
type Options struct {
	Policy Policy
	Logger *logging.Logger
}

// Scanner resolves validators from a build output tree on disk.
type Scanner struct {
	layout   Layout
	registry *Registry
	primary  Loader
	policy   Policy
	rename   *regexp.Regexp
	log      *logging.Logger
}

// New builds a Scanner for the source root. The registry's primary loader
// decides the artifact extension.
func New(root string, registry *Registry, opts Options) (*Scanner, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("resolver: source root is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("resolver: loader registry is required")
	}
	primary, ok := registry.Primary()
	if !ok {
		return nil, fmt.Errorf("resolver: no loaders registered")
	}
	policy := opts.Policy
	if policy == "" {
		policy = PolicyAbort
	}
	layout := NewLayout(root, primary.Extension())
	return &Scanner{
		layout:   layout,
		registry: registry,
		primary:  primary,
		policy:   policy,
		rename:   regexp.MustCompile(regexp.QuoteMeta(layout.Symbol) + ` as ([A-Za-z0-9_$]+)`),
		log:      opts.Logger,
	}, nil
}

// Layout returns the locations this scanner inspects.
func (s *Scanner) Layout() Layout {
	return s.layout
}

// Resolve returns the first callable validator found. When nothing matches the
// error is a *MissingValidatorError.
func (s *Scanner) Resolve() (validation.Validator, error) {
	sources := []func() (validation.Validator, error){
		s.fromPreferred,
		s.fromManifest,
		s.fromCandidates,
	}
	for _, source := range sources {
		v, err := source()
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	s.log.Printf("resolver: no validator found under %s", s.layout.BuildDir)
	return nil, &MissingValidatorError{PreferredPath: s.layout.PreferredPath}
}

func (s *Scanner) fromPreferred() (validation.Validator, error) {
	path := s.layout.PreferredPath
	if !exists(path) {
		s.log.Printf("resolver: preferred %s not present", path)
		return nil, nil
	}
	mod, err := s.primary.Load(path)
	if err != nil {
		return nil, s.loadFailed(path, err)
	}
	if v, ok := mod.Lookup(s.layout.Symbol); ok {
		s.log.Printf("resolver: using preferred %s", path)
		return v, nil
	}
	s.log.Printf("resolver: preferred %s has no callable %s", path, s.layout.Symbol)
	return nil, &MissingValidatorError{PreferredPath: path}
}

func (s *Scanner) fromManifest() (validation.Validator, error) {
	manifest, found, err := LoadManifest(s.layout.ManifestPath, s.layout.Symbol)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	for _, entry := range manifest.Validators {
		path := filepath.Join(s.layout.BuildDir, entry.Path)
		loader, ok := s.registry.Lookup(filepath.Ext(path))
		if !ok {
			return nil, fmt.Errorf("resolver: manifest entry %s: no loader for %q (have %s)",
				entry.Path, filepath.Ext(path), strings.Join(s.registry.Extensions(), ", "))
		}
		mod, err := loader.Load(path)
		if err != nil {
			if err := s.loadFailed(path, err); err != nil {
				return nil, err
			}
			continue
		}
		if v, ok := mod.Lookup(entry.Symbol); ok {
			s.log.Printf("resolver: using manifest entry %s (%s)", path, entry.Symbol)
			return v, nil
		}
		s.log.Printf("resolver: manifest entry %s has no callable %s", path, entry.Symbol)
	}
	return nil, nil
}

func (s *Scanner) fromCandidates() (validation.Validator, error) {
	dir := s.layout.BuildDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Printf("resolver: build dir %s not present", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("resolver: read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !s.layout.IsCandidate(entry.Name()) {
			continue
		}
		v, err := s.tryCandidate(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

func (s *Scanner) tryCandidate(path string) (validation.Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resolver: read %s: %w", path, err)
	}
	text := string(data)
	if !strings.Contains(text, s.layout.Symbol) {
		s.log.Printf("resolver: skip %s: no mention of %s", path, s.layout.Symbol)
		return nil, nil
	}
	if strings.Contains(text, s.layout.BarrelMarker) {
		s.log.Printf("resolver: skip %s: re-exports %s", path, s.layout.BarrelMarker)
		return nil, nil
	}
	mod, err := s.primary.Load(path)
	if err != nil {
		return nil, s.loadFailed(path, err)
	}
	if v, ok := mod.Lookup(s.layout.Symbol); ok {
		s.log.Printf("resolver: using %s", path)
		return v, nil
	}
	if match := s.rename.FindStringSubmatch(text); match != nil {
		if v, ok := mod.Lookup(match[1]); ok {
			s.log.Printf("resolver: using %s (%s renamed to %s)", path, s.layout.Symbol, match[1])
			return v, nil
		}
	}
	s.log.Printf("resolver: skip %s: nothing callable", path)
	return nil, nil
}

// loadFailed applies the policy. A nil return means keep searching.
func (s *Scanner) loadFailed(path string, err error) error {
	if s.policy == PolicySkip {
		s.log.Printf("resolver: skip %s: %v", path, err)
		return nil
	}
	return fmt.Errorf("resolver: load %s: %w", path, err)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
