package resolver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps artifact extensions to the loaders that understand them. The
// first loader registered is the primary one: it defines the artifact layout
// used for the preferred path and the candidate scan.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
	primary string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: map[string]Loader{}}
}

// Register installs a loader. Returns an error if its extension is already taken.
func (r *Registry) Register(loader Loader) error {
	if loader == nil {
		return fmt.Errorf("resolver: loader is required")
	}
	ext := normalizeExt(loader.Extension())
	if ext == "" {
		return fmt.Errorf("resolver: loader extension is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.loaders[ext]; exists {
		return fmt.Errorf("resolver: loader for %s already registered", ext)
	}
	r.loaders[ext] = loader
	if r.primary == "" {
		r.primary = ext
	}
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(loader Loader) {
	if err := r.Register(loader); err != nil {
		panic(err)
	}
}

// Lookup returns the loader registered for ext ("go", ".go" and ".GO" are equivalent).
func (r *Registry) Lookup(ext string) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loader, ok := r.loaders[normalizeExt(ext)]
	return loader, ok
}

// Primary returns the first registered loader.
func (r *Registry) Primary() (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.primary == "" {
		return nil, false
	}
	return r.loaders[r.primary], true
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	trimmed := strings.ToLower(strings.TrimSpace(ext))
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	return trimmed
}
