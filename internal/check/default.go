package check

import (
	"github.com/moritzketzer/nix-openclaw/internal/config"
	"github.com/moritzketzer/nix-openclaw/internal/logging"
	"github.com/moritzketzer/nix-openclaw/internal/resolver"
	"github.com/moritzketzer/nix-openclaw/plugins"
)

// DefaultResolver scans OPENCLAW_SRC with the built-in loaders.
func DefaultResolver(inputs config.Inputs, settings config.Settings, log *logging.Logger) (resolver.Resolver, error) {
	reg := resolver.NewRegistry()
	if err := plugins.RegisterDefaults(reg); err != nil {
		return nil, err
	}
	policy, err := resolver.ParsePolicy(settings.LoadFailure)
	if err != nil {
		return nil, err
	}
	scanner, err := resolver.New(inputs.SourceRoot, reg, resolver.Options{Policy: policy, Logger: log})
	if err != nil {
		return nil, err
	}
	return scanner, nil
}
