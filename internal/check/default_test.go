package check

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moritzketzer/nix-openclaw/internal/config"
)

const portRules = `package main

func validateConfigObject(config map[string]any) map[string]any {
	if _, ok := config["port"].(float64); ok {
		return map[string]any{"ok": true}
	}
	return map[string]any{
		"ok":     false,
		"issues": []map[string]any{{"path": "port", "message": "must be a number"}},
	}
}
`

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
}

func runDefault(t *testing.T, src, configJSON string) (int, string, string) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "openclaw.json")
	writeFile(t, configPath, configJSON)
	env := map[string]string{config.EnvConfigPath: configPath, config.EnvSourceRoot: src}
	var stdout, stderr bytes.Buffer
	r := &Runner{
		Lookup: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		NewResolver: DefaultResolver,
		Stdout:      &stdout,
		Stderr:      &stderr,
	}
	code := r.Run()
	return code, stdout.String(), stderr.String()
}

func TestDefaultResolverPreferredArtifact(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "dist", "config", "validation.go"), portRules)

	code, stdout, stderr := runDefault(t, src, `{"port": 8080}`)
	if code != ExitOK || stdout != "openclaw config validation: ok\n" || stderr != "" {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}

	code, stdout, stderr = runDefault(t, src, `{"port": "eighty"}`)
	if code != ExitFailed || stdout != "" {
		t.Fatalf("code=%d stdout=%q", code, stdout)
	}
	if stderr != "OpenClaw config validation failed:\n- port: must be a number\n" {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestDefaultResolverScanAndSettings(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "dist", "config-0broken.go"), "package main\n\nfunc validateConfigObject(\n")
	writeFile(t, filepath.Join(src, "dist", "config-1rules.go"), portRules)

	code, _, stderr := runDefault(t, src, `{"port": 1}`)
	if code != ExitFailed {
		t.Fatalf("abort policy should fail on the broken artifact, stderr=%q", stderr)
	}

	writeFile(t, filepath.Join(src, config.SettingsFileName), "load_failure: skip\n")
	code, stdout, stderr := runDefault(t, src, `{"port": 1}`)
	if code != ExitOK {
		t.Fatalf("skip policy should reach config-1rules.go, code=%d stderr=%q", code, stderr)
	}
	if stdout != "openclaw config validation: ok\n" {
		t.Fatalf("unexpected stdout %q", stdout)
	}
}

func TestDefaultResolverNothingFound(t *testing.T) {
	src := t.TempDir()
	code, _, stderr := runDefault(t, src, `{}`)
	want := "Missing validation module: " + filepath.Join(src, "dist", "config", "validation.go") + "\n"
	if code != ExitFailed || stderr != want {
		t.Fatalf("code=%d stderr=%q want %q", code, stderr, want)
	}
}

func TestDefaultResolverSchemaManifest(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "dist", "validators.yaml"), "version: 1\nvalidators:\n  - path: schema/openclaw.json\n")
	writeFile(t, filepath.Join(src, "dist", "schema", "openclaw.json"), `{"type": "object", "properties": {"port": {"type": "integer"}}}`)

	code, stdout, _ := runDefault(t, src, `{"port": 8080}`)
	if code != ExitOK || stdout != "openclaw config validation: ok\n" {
		t.Fatalf("code=%d stdout=%q", code, stdout)
	}
	code, _, stderr := runDefault(t, src, `{"port": "x"}`)
	if code != ExitFailed {
		t.Fatalf("expected schema failure")
	}
	if !strings.HasPrefix(stderr, "OpenClaw config validation failed:\n- port: ") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}
