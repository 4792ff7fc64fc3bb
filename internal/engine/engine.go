package engine

import (
	"context"
	"fmt"

	"github.com/specialistvlad/sheetcalc/internal/coord"
	"github.com/specialistvlad/sheetcalc/internal/ctxlog"
	"github.com/specialistvlad/sheetcalc/internal/evaluator"
	"github.com/specialistvlad/sheetcalc/internal/evaluator/hclexpr"
	_ "github.com/specialistvlad/sheetcalc/internal/evaluator/starlarkexpr"
	"github.com/specialistvlad/sheetcalc/internal/result"
	"github.com/specialistvlad/sheetcalc/internal/scope"
	"github.com/specialistvlad/sheetcalc/internal/value"
)

// Engine evaluates snapshots with a fixed evaluator and set of transient
// variables. It holds no per-snapshot state and may be shared.
type Engine struct {
	evaluator evaluator.Evaluator
	variables map[string]value.Value
}

// Option configures an Engine.
type Option func(*Engine) error

// WithEvaluator sets the evaluator used for formulas.
func WithEvaluator(ev evaluator.Evaluator) Option {
	return func(e *Engine) error {
		e.evaluator = ev
		return nil
	}
}

// WithEvaluatorName selects a registered evaluator by name.
func WithEvaluatorName(name string) Option {
	return func(e *Engine) error {
		ev, err := evaluator.Lookup(name)
		if err != nil {
			return err
		}
		e.evaluator = ev
		return nil
	}
}

// WithVariables defines transient variables from raw text. Each value is
// coerced like a literal cell.
func WithVariables(vars map[string]string) Option {
	return func(e *Engine) error {
		for name, raw := range vars {
			if err := coord.ValidateKey(name); err != nil {
				return fmt.Errorf("invalid variable name: %w", err)
			}
			e.variables[name] = value.Coerce(raw)
		}
		return nil
	}
}

// New creates an Engine. The default evaluator is evaluator.Default.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{variables: make(map[string]value.Value)}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.evaluator == nil {
		ev, err := evaluator.Lookup(evaluator.Default)
		if err != nil {
			return nil, err
		}
		e.evaluator = ev
	}
	return e, nil
}

// Evaluator returns the evaluator formulas are computed with.
func (e *Engine) Evaluator() evaluator.Evaluator {
	return e.evaluator
}

// Evaluate runs one sheet pass over snapshot and returns a record for every
// coordinate in it. Cell failures are reported in the records; the returned
// error is non-nil only when a transient variable collides with a
// coordinate or ctx ends before the pass completes.
func (e *Engine) Evaluate(ctx context.Context, snapshot map[string]string) (map[string]result.Record, error) {
	s, err := e.newScope(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	return pass(ctx, s, snapshot)
}

// Evaluate runs a sheet pass over snapshot with the HCL evaluator and no
// transient variables.
func Evaluate(snapshot map[string]string) map[string]result.Record {
	s := scope.New(snapshot, hclexpr.New())
	// A background context never ends, so the pass cannot fail.
	records, _ := pass(context.Background(), s, snapshot)
	return records
}

func (e *Engine) newScope(ctx context.Context, snapshot map[string]string) (*scope.Scope, error) {
	s := scope.New(snapshot, e.evaluator, scope.WithLogger(ctxlog.FromContext(ctx)))
	for name, v := range e.variables {
		if err := s.Set(name, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// pass classifies every coordinate of snapshot in display order. The order
// does not change the records; it only makes debug output reproducible.
func pass(ctx context.Context, s *scope.Scope, snapshot map[string]string) (map[string]result.Record, error) {
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	coord.Sort(keys)

	records := make(map[string]result.Record, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluation abandoned: %w", err)
		}
		records[key] = result.Classify(key, s)
	}
	return records, nil
}
