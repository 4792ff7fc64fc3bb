package result_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/specialistvlad/sheetcalc/internal/result"
	"github.com/specialistvlad/sheetcalc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	raw    map[string]string
	values map[string]value.Value
	errs   map[string]error
	gets   []string
}

func (f *fakeResolver) Raw(coordinate string) (string, bool) {
	raw, ok := f.raw[coordinate]
	return raw, ok
}

func (f *fakeResolver) Get(coordinate string) (value.Value, error) {
	f.gets = append(f.gets, coordinate)
	if err, ok := f.errs[coordinate]; ok {
		return nil, err
	}
	return f.values[coordinate], nil
}

func TestClassify(t *testing.T) {
	r := &fakeResolver{
		raw: map[string]string{
			"N": "=1", "T": "x", "B": "=true", "F": "=lambda x: x",
			"A": "=[1]", "O": "={}", "NIL": "=null", "NAN": "=nan", "INF": "=[inf]",
			"ERR": "=1 +", "EMPTY": "",
		},
		values: map[string]value.Value{
			"N":   value.Number(1),
			"T":   value.Text("x"),
			"B":   value.Boolean(true),
			"F":   value.Function{Name: "lambda"},
			"A":   value.Array{value.Number(1), value.Text("a")},
			"O":   value.Object{"k": value.Boolean(false)},
			"NAN": value.Number(math.NaN()),
			"INF": value.Array{value.Number(math.Inf(1))},
		},
		errs: map[string]error{"ERR": errors.New("parse failed")},
	}

	testCases := []struct {
		coordinate string
		expected   result.Record
	}{
		{coordinate: "N", expected: result.Record{Kind: result.KindNumber, Value: 1.0}},
		{coordinate: "T", expected: result.Record{Kind: result.KindText, Value: "x"}},
		{coordinate: "B", expected: result.Record{Kind: result.KindBoolean, Value: true}},
		{coordinate: "F", expected: result.Record{Kind: result.KindFunction, Value: "=lambda x: x"}},
		{coordinate: "A", expected: result.Record{Kind: result.KindArray, Value: []any{1.0, "a"}}},
		{coordinate: "O", expected: result.Record{Kind: result.KindObject, Value: map[string]any{"k": false}}},
		{coordinate: "NIL", expected: result.Failure("invalid type")},
		{coordinate: "NAN", expected: result.Failure("not a finite number")},
		{coordinate: "INF", expected: result.Failure("not a finite number")},
		{coordinate: "ERR", expected: result.Failure("parse failed")},
		{coordinate: "EMPTY", expected: result.Empty()},
		{coordinate: "MISSING", expected: result.Empty()},
	}

	for _, tc := range testCases {
		t.Run(tc.coordinate, func(t *testing.T) {
			assert.Equal(t, tc.expected, result.Classify(tc.coordinate, r))
		})
	}

	assert.NotContains(t, r.gets, "EMPTY")
	assert.NotContains(t, r.gets, "MISSING")
}

func TestRecord_MarshalJSON(t *testing.T) {
	testCases := []struct {
		name     string
		record   result.Record
		expected string
	}{
		{name: "empty", record: result.Empty(), expected: `{"kind":"empty"}`},
		{name: "error", record: result.Failure("A is empty"), expected: `{"kind":"error","error":"A is empty"}`},
		{name: "false", record: result.Record{Kind: result.KindBoolean, Value: false}, expected: `{"kind":"boolean","value":false}`},
		{name: "zero", record: result.Record{Kind: result.KindNumber, Value: 0.0}, expected: `{"kind":"number","value":0}`},
		{name: "empty text", record: result.Record{Kind: result.KindText, Value: ""}, expected: `{"kind":"text","value":""}`},
		{name: "array", record: result.Record{Kind: result.KindArray, Value: []any{1.0, "a"}}, expected: `{"kind":"array","value":[1,"a"]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.record)
			require.NoError(t, err)
			assert.JSONEq(t, tc.expected, string(data))
		})
	}
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	var got map[string]result.Record
	err := json.Unmarshal([]byte(`{"A":{"kind":"number","value":3920},"B":{"kind":"error","error":"boom"}}`), &got)
	require.NoError(t, err)

	assert.Equal(t, map[string]result.Record{
		"A": {Kind: result.KindNumber, Value: 3920.0},
		"B": result.Failure("boom"),
	}, got)
}

func TestRecord_Display(t *testing.T) {
	testCases := []struct {
		record   result.Record
		expected string
	}{
		{record: result.Empty(), expected: ""},
		{record: result.Failure("A is empty"), expected: "#ERROR: A is empty"},
		{record: result.Record{Kind: result.KindNumber, Value: 3920.0}, expected: "3920"},
		{record: result.Record{Kind: result.KindNumber, Value: 0.1 + 0.2}, expected: "0.30000000000000004"},
		{record: result.Record{Kind: result.KindText, Value: "⇒"}, expected: "⇒"},
		{record: result.Record{Kind: result.KindBoolean, Value: true}, expected: "true"},
		{record: result.Record{Kind: result.KindFunction, Value: "=lambda x: x"}, expected: "=lambda x: x"},
		{record: result.Record{Kind: result.KindArray, Value: []any{1.0, "a"}}, expected: `[1,"a"]`},
		{record: result.Record{Kind: result.KindObject, Value: map[string]any{"k": false}}, expected: `{"k":false}`},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.record.Display())
		})
	}
}
