// openclaw-config-check validates an OpenClaw config file against the
// validator shipped in a build tree. Exit code 0 means the config passed.
//
// Environment:
//
//	OPENCLAW_CONFIG_PATH     JSON config document to validate (required)
//	OPENCLAW_SRC             source root whose dist/ holds the validator (required)
//	OPENCLAW_CHECK_SETTINGS  settings file (default $OPENCLAW_SRC/.openclaw-check.yaml)
//
// A .env file in the working directory may set OPENCLAW_CHECK_SETTINGS. It is
// read only after both required variables were found in the environment.
package main

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/moritzketzer/nix-openclaw/internal/check"
	"github.com/moritzketzer/nix-openclaw/internal/config"
)

func main() {
	os.Exit(newRunner(os.LookupEnv, readDotEnv, os.Stdout, os.Stderr).Run())
}

func newRunner(lookup config.LookupFunc, dotenv config.DotEnvFunc, stdout, stderr io.Writer) *check.Runner {
	return &check.Runner{
		Lookup:      lookup,
		NewResolver: check.DefaultResolver,
		Stdout:      stdout,
		Stderr:      stderr,
		DotEnv:      dotenv,
		Terminal:    isTerminal,
	}
}

func readDotEnv() (map[string]string, error) {
	values, err := godotenv.Read()
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	return values, err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
