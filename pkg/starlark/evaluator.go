// Package starlark bridges the template engine's value system to
// Starlark scripts. Scripts define filter functions and namespace
// values; their globals become a templet.Context usable for
// compilation and rendering.
package starlark

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"

	"github.com/rainfd/template-engine-plus/pkg/templet"
)

// Evaluator runs Starlark code against a set of predeclared builtins and
// accumulates globals across executions.
type Evaluator struct {
	thread   *starlark.Thread
	builtins starlark.StringDict
	globals  starlark.StringDict
}

// NewEvaluator creates a Starlark evaluator with the default builtins.
func NewEvaluator() *Evaluator {
	thread := &starlark.Thread{Name: "template-engine"}
	return &Evaluator{
		thread:   thread,
		builtins: createBuiltins(),
		globals:  make(starlark.StringDict),
	}
}

// SetGlobal sets a global variable in the Starlark environment.
func (e *Evaluator) SetGlobal(name string, value templet.Value) {
	e.globals[name] = ConvertToStarlark(value)
}

// Eval evaluates a single Starlark expression and returns the result as
// an engine value.
func (e *Evaluator) Eval(expr string) (templet.Value, error) {
	val, err := starlark.Eval(e.thread, "<eval>", expr, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark evaluation error: %w", err)
	}
	return ConvertFromStarlark(val), nil
}

// ExecFile executes a Starlark file and folds any new globals into the
// evaluator.
func (e *Evaluator) ExecFile(filename string, src any) (starlark.StringDict, error) {
	globals, err := starlark.ExecFile(e.thread, filename, src, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark execution error: %w", err)
	}
	for k, v := range globals {
		e.globals[k] = v
	}
	return globals, nil
}

// ExecString executes a Starlark script from a string.
func (e *Evaluator) ExecString(script string) (starlark.StringDict, error) {
	return e.ExecFile("<script>", script)
}

// GetGlobal retrieves a global variable as an engine value.
func (e *Evaluator) GetGlobal(name string) (templet.Value, bool) {
	if val, ok := e.globals[name]; ok {
		return ConvertFromStarlark(val), true
	}
	return nil, false
}

// LoadContext loads variables from an engine context into the Starlark
// globals.
func (e *Evaluator) LoadContext(ctx templet.Context) {
	for key, value := range ctx {
		e.SetGlobal(key, value)
	}
}

// ExportContext exports the current Starlark globals to an engine
// context. Functions arrive as callables, so exported scripts can hand
// filters straight to templates.
func (e *Evaluator) ExportContext() templet.Context {
	ctx := make(templet.Context)
	for key, value := range e.globals {
		if !isExportableKey(key) {
			continue
		}
		ctx[key] = ConvertFromStarlark(value)
	}
	return ctx
}

// isExportableKey filters out script-internal names.
func isExportableKey(key string) bool {
	return key != "" && key[0] != '_'
}

func (e *Evaluator) predeclared() starlark.StringDict {
	pre := make(starlark.StringDict, len(e.builtins)+len(e.globals))
	for k, v := range e.builtins {
		pre[k] = v
	}
	for k, v := range e.globals {
		pre[k] = v
	}
	return pre
}

func createBuiltins() starlark.StringDict {
	return starlark.StringDict{
		"print": starlark.NewBuiltin("print", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var buf []string
			for i := 0; i < len(args); i++ {
				buf = append(buf, args[i].String())
			}
			fmt.Println(strings.Join(buf, " "))
			return starlark.None, nil
		}),
	}
}

// LoadFilters executes a filter script and returns its exportable
// globals as a context suitable for building a construction namespace.
func LoadFilters(script string) (templet.Context, error) {
	e := NewEvaluator()
	if _, err := e.ExecString(script); err != nil {
		return nil, err
	}
	return e.ExportContext(), nil
}
