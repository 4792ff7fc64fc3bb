package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_String(t *testing.T) {
	assert.Equal(t, "3920", Number(3920).String())
	assert.Equal(t, "true", Boolean(true).String())
	assert.Equal(t, "hello", Text("hello").String())
	assert.Equal(t, `[1, "a", false]`, Array{Number(1), Text("a"), Boolean(false)}.String())
	assert.Equal(t, `{"a": 1, "b": [2]}`, Object{"b": Array{Number(2)}, "a": Number(1)}.String())
	assert.Equal(t, "function double", Function{Name: "double"}.String())
}

func TestValue_Kind(t *testing.T) {
	assert.Equal(t, KindNumber, Number(1).Kind())
	assert.Equal(t, KindText, Text("").Kind())
	assert.Equal(t, KindBoolean, Boolean(false).Kind())
	assert.Equal(t, KindFunction, Function{}.Kind())
	assert.Equal(t, KindArray, Array{}.Kind())
	assert.Equal(t, KindObject, Object{}.Kind())
	assert.Equal(t, "object", KindObject.String())
}

func TestToNative(t *testing.T) {
	in := Object{
		"list": Array{Number(1), Text("x"), Boolean(true)},
		"fn":   Function{Name: "f"},
	}
	expected := map[string]any{
		"list": []any{1.0, "x", true},
		"fn":   "function f",
	}
	assert.Equal(t, expected, ToNative(in))
	assert.Nil(t, ToNative(nil))
}
