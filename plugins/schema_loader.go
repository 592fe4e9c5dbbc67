package plugins

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"

	"github.com/moritzketzer/nix-openclaw/internal/resolver"
	"github.com/moritzketzer/nix-openclaw/internal/validation"
)

// SchemaLoader turns a JSON Schema artifact into a validator. The schema
// answers to any symbol, so a manifest entry may leave it at the default.
type SchemaLoader struct{}

// Extension implements resolver.Loader.
func (SchemaLoader) Extension() string { return ".json" }

// Load compiles the schema at path. $ref values resolve relative to it.
func (SchemaLoader) Load(path string) (resolver.Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: resolve schema path %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("plugin: schema %s: %w", path, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(abs)))
	if err != nil {
		return nil, fmt.Errorf("plugin: compile schema %s: %w", path, err)
	}
	return schemaModule{validator: &schemaValidator{path: abs, schema: schema}}, nil
}

type schemaModule struct {
	validator *schemaValidator
}

func (m schemaModule) Lookup(string) (validation.Validator, bool) {
	return m.validator, true
}

type schemaValidator struct {
	path   string
	schema *gojsonschema.Schema
}

// Validate reports each schema violation as one issue, in gojsonschema's order.
func (v *schemaValidator) Validate(doc any) (validation.Result, error) {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return validation.Result{}, fmt.Errorf("plugin: schema %s: %w", v.path, err)
	}
	if result.Valid() {
		return validation.Result{OK: true}, nil
	}
	issues := make([]validation.Issue, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		issues = append(issues, validation.Issue{Path: field, Message: desc.Description()})
	}
	return validation.Result{Issues: issues}, nil
}
