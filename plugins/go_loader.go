package plugins

import (
	"fmt"
	"go/token"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/moritzketzer/nix-openclaw/internal/resolver"
	"github.com/moritzketzer/nix-openclaw/internal/validation"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// GoLoader evaluates Go source artifacts (package main) with yaegi. A
// validator is any top-level function taking the config document and
// returning a result value, optionally followed by an error.
type GoLoader struct{}

// Extension implements resolver.Loader.
func (GoLoader) Extension() string { return ".go" }

// Load interprets the file at path in a fresh interpreter.
func (GoLoader) Load(path string) (resolver.Module, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)
	if err := evalPath(i, path); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	return &goModule{path: path, interp: i}, nil
}

func evalPath(i *interp.Interpreter, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	_, err = i.EvalPath(path)
	return err
}

type goModule struct {
	path   string
	interp *interp.Interpreter
}

// Lookup evaluates symbol in the artifact's main package.
func (m *goModule) Lookup(symbol string) (validation.Validator, bool) {
	if !token.IsIdentifier(symbol) {
		return nil, false
	}
	value, ok := m.eval(symbol)
	if !ok {
		return nil, false
	}
	v, err := newGoValidator(fmt.Sprintf("%s#%s", m.path, symbol), value)
	if err != nil {
		return nil, false
	}
	return v, true
}

func (m *goModule) eval(symbol string) (value reflect.Value, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	value, err := m.interp.Eval(symbol)
	if err != nil {
		return reflect.Value{}, false
	}
	return value, true
}

type goValidator struct {
	name string
	fn   reflect.Value
}

func newGoValidator(name string, fn reflect.Value) (*goValidator, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("%s is not a function", name)
	}
	typ := fn.Type()
	if typ.NumIn() != 1 || typ.IsVariadic() {
		return nil, fmt.Errorf("%s must take exactly one argument", name)
	}
	switch typ.NumOut() {
	case 1:
	case 2:
		if !typ.Out(1).Implements(errorType) {
			return nil, fmt.Errorf("%s second return value must be an error", name)
		}
	default:
		return nil, fmt.Errorf("%s must return (result[, error])", name)
	}
	return &goValidator{name: name, fn: fn}, nil
}

// Validate calls the interpreted function and normalises what it returns.
func (v *goValidator) Validate(doc any) (res validation.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin: %s panicked: %v", v.name, r)
		}
	}()
	param := v.fn.Type().In(0)
	arg := reflect.ValueOf(doc)
	if !arg.IsValid() {
		arg = reflect.Zero(param)
	} else if !arg.Type().AssignableTo(param) {
		return validation.Result{}, fmt.Errorf("plugin: %s expects %s, config is %s", v.name, param, arg.Type())
	}
	results := v.fn.Call([]reflect.Value{arg})
	if len(results) == 2 {
		if callErr, ok := results[1].Interface().(error); ok && callErr != nil {
			return validation.Result{}, fmt.Errorf("plugin: %s: %w", v.name, callErr)
		}
	}
	return validation.Normalize(results[0].Interface())
}
