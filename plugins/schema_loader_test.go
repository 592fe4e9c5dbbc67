package plugins

import (
	"path/filepath"
	"testing"
)

const portSchema = `{
  "type": "object",
  "properties": {
    "port": {"type": "integer"}
  },
  "required": ["port"]
}`

func TestSchemaLoader(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "schema.json", portSchema)
	mod, err := SchemaLoader{}.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	v, ok := mod.Lookup("anything")
	if !ok {
		t.Fatalf("schema module should answer any symbol")
	}
	res, err := v.Validate(map[string]any{"port": float64(8080)})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected ok, got %+v", res)
	}
	res, err = v.Validate(map[string]any{"port": "x"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.OK || len(res.Issues) != 1 || res.Issues[0].Path != "port" {
		t.Fatalf("unexpected result %+v", res)
	}
	res, err = v.Validate(map[string]any{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.OK || len(res.Issues) != 1 || res.Issues[0].Path != "(root)" {
		t.Fatalf("expected missing property at root, got %+v", res)
	}
}

func TestSchemaLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := (SchemaLoader{}).Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing schema")
	}
	path := writeArtifact(t, dir, "bad.json", `{"type": 12}`)
	if _, err := (SchemaLoader{}).Load(path); err == nil {
		t.Fatalf("expected error for invalid schema")
	}
}
