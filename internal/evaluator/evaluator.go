// Package evaluator defines the contract between the dependency scope and the
// expression languages formulas are written in. The scope never parses a
// formula itself: it hands the formula body and an Environment to an
// Evaluator and receives a value.Value or an error back.
package evaluator

import (
	"github.com/specialistvlad/sheetcalc/internal/value"
)

// Default is the name of the evaluator used when none is configured.
const Default = "hcl"

// Environment resolves the names a formula references. Implementations
// return the referenced cell's value or the error that cell failed with;
// evaluators must pass such errors through unchanged.
type Environment interface {
	Resolve(name string) (value.Value, error)
}

// Evaluator computes the value of one formula body.
type Evaluator interface {
	// Name returns the registry name of the evaluator.
	Name() string
	// Evaluate computes body, resolving every free name through env. A nil
	// Value with a nil error means the expression produced a null result.
	Evaluate(body string, env Environment) (value.Value, error)
}

// EvaluationError is returned when an evaluator rejects a formula body. The
// message is the evaluator's own and is treated as opaque.
type EvaluationError struct {
	Evaluator string
	Message   string
}

func (e *EvaluationError) Error() string {
	return e.Message
}

// EnvironmentFunc adapts a plain function to the Environment interface.
type EnvironmentFunc func(name string) (value.Value, error)

// Resolve calls f(name).
func (f EnvironmentFunc) Resolve(name string) (value.Value, error) {
	return f(name)
}

// ReferenceLister is implemented by evaluators that can report the names a
// formula body reads without evaluating it.
type ReferenceLister interface {
	References(body string) ([]string, error)
}
