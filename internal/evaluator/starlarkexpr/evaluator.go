// Package starlarkexpr evaluates formulas written as Starlark expressions.
//
// Unlike the HCL evaluator it can produce function values (`lambda x: x * 2`)
// that other formulas may call, and it exposes Python-style lists, dicts and
// comprehensions. Every free name of the expression that is not a Starlark
// builtin is resolved through the caller's Environment.
package starlarkexpr

import (
	"sort"

	"github.com/specialistvlad/sheetcalc/internal/evaluator"
	"github.com/specialistvlad/sheetcalc/internal/value"
	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Name is the registry name of this evaluator.
const Name = "starlark"

// DefaultMaxSteps bounds the work a single formula may do.
const DefaultMaxSteps = 1_000_000

func init() {
	evaluator.Register(Name, func() evaluator.Evaluator { return New() })
}

// Evaluator implements evaluator.Evaluator for Starlark expressions.
type Evaluator struct {
	options  *syntax.FileOptions
	maxSteps uint64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n uint64) Option {
	return func(e *Evaluator) { e.maxSteps = n }
}

// New creates a Starlark evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		options:  &syntax.FileOptions{},
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the registry name of the evaluator.
func (e *Evaluator) Name() string {
	return Name
}

// Evaluate parses and computes body. Free names are resolved before the
// expression runs, in sorted order, and any error env returns is passed
// through unchanged.
func (e *Evaluator) Evaluate(body string, env evaluator.Environment) (value.Value, error) {
	names, err := e.freeNames(body)
	if err != nil {
		return nil, e.fail(err)
	}

	globals := make(starlark.StringDict, len(names))
	for _, name := range names {
		v, err := env.Resolve(name)
		if err != nil {
			return nil, err
		}
		converted, err := toStarlark(v)
		if err != nil {
			return nil, &evaluator.EvaluationError{Evaluator: Name, Message: name + ": " + err.Error()}
		}
		globals[name] = converted
	}

	fn, err := starlark.ExprFuncOptions(e.options, "formula", body, globals)
	if err != nil {
		return nil, e.fail(err)
	}

	thread := &starlark.Thread{
		Name:  "formula",
		Print: func(_ *starlark.Thread, _ string) {},
	}
	thread.SetMaxExecutionSteps(e.maxSteps)

	out, err := starlark.Call(thread, fn, nil, nil)
	if err != nil {
		return nil, e.fail(err)
	}

	result, err := fromStarlark(out)
	if err != nil {
		return nil, e.fail(err)
	}
	return result, nil
}

// References returns the free names of body that are not Starlark builtins,
// sorted.
func (e *Evaluator) References(body string) ([]string, error) {
	names, err := e.freeNames(body)
	if err != nil {
		return nil, e.fail(err)
	}
	return names, nil
}

// freeNames parses body and returns the names it reads from the global
// scope, excluding Starlark builtins, sorted. Lambda parameters and
// comprehension variables are local and are not reported.
func (e *Evaluator) freeNames(body string) ([]string, error) {
	expr, err := e.options.ParseExpr("formula", body, 0)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	isPredeclared := func(name string) bool {
		if starlark.Universe.Has(name) {
			return false
		}
		seen[name] = struct{}{}
		return true
	}
	if _, err := resolve.ExprOptions(e.options, expr, isPredeclared, starlark.Universe.Has); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (e *Evaluator) fail(err error) error {
	msg := err.Error()
	if evalErr, ok := err.(*starlark.EvalError); ok {
		msg = evalErr.Msg
	}
	return &evaluator.EvaluationError{Evaluator: Name, Message: msg}
}
