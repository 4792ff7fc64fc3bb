// Package hclexpr evaluates formulas written in the HCL expression syntax.
//
// A formula body such as `A1 + C1` or `sum(A1, B1) * 2` is parsed with
// hclsyntax, the root name of every variable it reads is resolved through
// the caller's Environment, and the expression is evaluated over cty values
// with a small function table built from the cty standard library.
package hclexpr

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/sheetcalc/internal/evaluator"
	"github.com/specialistvlad/sheetcalc/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Name is the registry name of this evaluator.
const Name = "hcl"

func init() {
	evaluator.Register(Name, func() evaluator.Evaluator { return New() })
}

// Evaluator implements evaluator.Evaluator for HCL expressions.
type Evaluator struct {
	functions map[string]function.Function
}

// New creates an HCL evaluator with the default function table.
func New() *Evaluator {
	return &Evaluator{functions: Functions()}
}

// Name returns the registry name of the evaluator.
func (e *Evaluator) Name() string {
	return Name
}

// Evaluate parses and computes body. Referenced names are resolved before
// evaluation starts, in sorted order, and any error env returns is passed
// through unchanged.
func (e *Evaluator) Evaluate(body string, env evaluator.Environment) (value.Value, error) {
	expr, err := e.parse(body)
	if err != nil {
		return nil, err
	}

	for _, name := range CalledFunctions(expr) {
		if _, ok := e.functions[name]; !ok {
			return nil, &evaluator.EvaluationError{
				Evaluator: Name,
				Message:   fmt.Sprintf("Call to unknown function: there is no function named %q", name),
			}
		}
	}

	refs := References(expr)
	ctx := &hcl.EvalContext{
		Variables: make(map[string]cty.Value, len(refs)),
		Functions: e.functions,
	}
	for _, name := range refs {
		v, err := env.Resolve(name)
		if err != nil {
			return nil, err
		}
		converted, err := toCty(v)
		if err != nil {
			return nil, &evaluator.EvaluationError{Evaluator: Name, Message: fmt.Sprintf("%s: %s", name, err)}
		}
		ctx.Variables[name] = converted
	}

	out, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, e.fail(diags)
	}

	result, err := fromCty(out)
	if err != nil {
		return nil, &evaluator.EvaluationError{Evaluator: Name, Message: err.Error()}
	}
	return result, nil
}

// References parses body and returns the root names it reads, sorted.
func (e *Evaluator) References(body string) ([]string, error) {
	expr, err := e.parse(body)
	if err != nil {
		return nil, err
	}
	return References(expr), nil
}

// parse parses body as an HCL expression. HCL identifiers may contain '-',
// cell names and variable names never do, so a dash inside an identifier is
// read as subtraction: `A1-B1` parses like `A1 - B1`.
func (e *Evaluator) parse(body string) (hclsyntax.Expression, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(splitDashes(body)), "formula", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, e.fail(diags)
	}
	return expr, nil
}

// splitDashes surrounds every '-' inside an identifier token with spaces.
// Bodies that do not lex are returned unchanged so the parser reports them.
func splitDashes(body string) string {
	tokens, diags := hclsyntax.LexExpression([]byte(body), "formula", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return body
	}

	var b strings.Builder
	last := 0
	for _, tok := range tokens {
		if tok.Type != hclsyntax.TokenIdent || !bytes.ContainsRune(tok.Bytes, '-') {
			continue
		}
		b.WriteString(body[last:tok.Range.Start.Byte])
		b.WriteString(strings.ReplaceAll(string(tok.Bytes), "-", " - "))
		last = tok.Range.End.Byte
	}
	if last == 0 {
		return body
	}
	b.WriteString(body[last:])
	return b.String()
}

// fail turns HCL diagnostics into an EvaluationError carrying the summary and
// detail of every error diagnostic.
func (e *Evaluator) fail(diags hcl.Diagnostics) error {
	var parts []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg += ": " + diag.Detail
		}
		parts = append(parts, msg)
	}
	return &evaluator.EvaluationError{Evaluator: Name, Message: strings.Join(parts, "; ")}
}
