package hclexpr_test

import (
	"errors"
	"math"
	"testing"

	"github.com/specialistvlad/sheetcalc/internal/evaluator"
	"github.com/specialistvlad/sheetcalc/internal/evaluator/hclexpr"
	"github.com/specialistvlad/sheetcalc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapEnv resolves names from a fixed map and records every lookup.
type mapEnv struct {
	values  map[string]value.Value
	lookups []string
}

func (m *mapEnv) Resolve(name string) (value.Value, error) {
	m.lookups = append(m.lookups, name)
	v, ok := m.values[name]
	if !ok {
		return nil, errors.New(name + " is not defined")
	}
	return v, nil
}

func TestEvaluate(t *testing.T) {
	env := &mapEnv{values: map[string]value.Value{
		"A1":   value.Number(1874),
		"C1":   value.Number(2046),
		"name": value.Text("grid"),
		"list": value.Array{value.Number(1), value.Number(2), value.Number(3)},
		"obj":  value.Object{"rate": value.Number(0.5)},
		"flag": value.Boolean(true),
	}}

	testCases := []struct {
		name     string
		body     string
		expected value.Value
	}{
		{name: "addition", body: "A1+C1", expected: value.Number(3920)},
		{name: "literal", body: "42", expected: value.Number(42)},
		{name: "string template", body: `"${name}!"`, expected: value.Text("grid!")},
		{name: "comparison", body: "A1 > C1", expected: value.Boolean(false)},
		{name: "conditional", body: "flag ? 1 : 2", expected: value.Number(1)},
		{name: "tuple", body: "[A1, 2]", expected: value.Array{value.Number(1874), value.Number(2)}},
		{name: "object", body: `{total = A1}`, expected: value.Object{"total": value.Number(1874)}},
		{name: "index", body: "list[1] * obj.rate", expected: value.Number(1)},
		{name: "sum", body: "sum(1, 2, 3.5)", expected: value.Number(6.5)},
		{name: "avg", body: "avg(2, 4)", expected: value.Number(3)},
		{name: "stdlib upper", body: "upper(name)", expected: value.Text("GRID")},
		{name: "for expression", body: "[for x in list : x * 2]", expected: value.Array{value.Number(2), value.Number(4), value.Number(6)}},
		{name: "subtraction without spaces", body: "A1-C1", expected: value.Number(-172)},
		{name: "subtract literal without spaces", body: "A1-1", expected: value.Number(1873)},
		{name: "chained subtraction", body: "C1-A1-2", expected: value.Number(170)},
		{name: "dash inside for expression", body: "[for x in list : x-1]", expected: value.Array{value.Number(0), value.Number(1), value.Number(2)}},
		{name: "dash in template is text", body: `"a-b"`, expected: value.Text("a-b")},
	}

	ev := hclexpr.New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ev.Evaluate(tc.body, env)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEvaluate_ResolvesOnlyFreeRoots(t *testing.T) {
	env := &mapEnv{values: map[string]value.Value{
		"list": value.Array{value.Number(1)},
		"B2":   value.Number(2),
	}}

	_, err := hclexpr.New().Evaluate("[for x in list : x + B2]", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"B2", "list"}, env.lookups)
}

func TestEvaluate_PassesEnvironmentErrorsThrough(t *testing.T) {
	sentinel := errors.New("upstream failed")
	env := evaluator.EnvironmentFunc(func(name string) (value.Value, error) {
		return nil, sentinel
	})

	_, err := hclexpr.New().Evaluate("A + 1", env)
	require.ErrorIs(t, err, sentinel)
}

func TestEvaluate_Errors(t *testing.T) {
	env := &mapEnv{values: map[string]value.Value{
		"B1": value.Text("+"),
		"fn": value.Function{Name: "double"},
	}}

	testCases := []struct {
		name      string
		body      string
		errSubstr string
	}{
		{name: "syntax", body: "1 +", errSubstr: "Invalid expression"},
		{name: "unknown function", body: "nope(1)", errSubstr: `no function named "nope"`},
		{name: "type mismatch", body: "B1 * 2", errSubstr: "Invalid operand"},
		{name: "function value", body: "fn", errSubstr: "cannot be used in an HCL expression"},
	}

	ev := hclexpr.New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ev.Evaluate(tc.body, env)
			require.Error(t, err)

			var evalErr *evaluator.EvaluationError
			require.ErrorAs(t, err, &evalErr)
			assert.Equal(t, hclexpr.Name, evalErr.Evaluator)
			assert.Contains(t, err.Error(), tc.errSubstr)
		})
	}
}

func TestEvaluate_NonFiniteResults(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "number", body: "pow(10, 400)"},
		{name: "negative", body: "-pow(10, 400)"},
		{name: "inside tuple", body: "[1, pow(10, 400)]"},
		{name: "inside object", body: "{big = pow(10, 400)}"},
	}

	ev := hclexpr.New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ev.Evaluate(tc.body, &mapEnv{})
			require.Error(t, err)

			var evalErr *evaluator.EvaluationError
			require.ErrorAs(t, err, &evalErr)
			assert.Contains(t, err.Error(), "not a finite number")
		})
	}
}

func TestSumOfOpposingInfinities(t *testing.T) {
	env := &mapEnv{values: map[string]value.Value{"A": value.Number(math.Inf(1))}}

	for _, body := range []string{"sum(A, -A)", "avg(A, -A)"} {
		t.Run(body, func(t *testing.T) {
			_, err := hclexpr.New().Evaluate(body, env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "can't compute sum of opposing infinities")
			assert.NotContains(t, err.Error(), "goroutine")
		})
	}
}

func TestEvaluate_NullResult(t *testing.T) {
	got, err := hclexpr.New().Evaluate("null", &mapEnv{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegistered(t *testing.T) {
	ev, err := evaluator.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, hclexpr.Name, ev.Name())
}

func TestReferences(t *testing.T) {
	ev := hclexpr.New()

	refs, err := ev.References("sum(C1, A1.items[0]) + A1.total * rate")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "C1", "rate"}, refs)

	refs, err = ev.References("C1-A1-rate")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "C1", "rate"}, refs)

	refs, err = ev.References(`[for x in items : x * 2]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"items"}, refs)

	_, err = ev.References("1 +")
	var evalErr *evaluator.EvaluationError
	assert.ErrorAs(t, err, &evalErr)
}
