package plugins

import (
	"fmt"

	"github.com/moritzketzer/nix-openclaw/internal/resolver"
)

// RegisterDefaults installs the built-in artifact loaders. The Go loader is
// registered first, which makes .go the extension of the preferred artifact
// and of config-* candidates.
func RegisterDefaults(reg *resolver.Registry) error {
	if reg == nil {
		return fmt.Errorf("plugin: registry is required")
	}
	for _, loader := range []resolver.Loader{GoLoader{}, SchemaLoader{}} {
		if err := reg.Register(loader); err != nil {
			return fmt.Errorf("plugin: register %s loader: %w", loader.Extension(), err)
		}
	}
	return nil
}
