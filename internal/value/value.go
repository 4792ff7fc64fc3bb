package value

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the variant of a resolved Value.
type Kind int

const (
	// KindNumber is a float64 numeric value.
	KindNumber Kind = iota
	// KindText is a literal string value.
	KindText
	// KindBoolean is a true/false value.
	KindBoolean
	// KindFunction is a callable produced by an evaluator.
	KindFunction
	// KindArray is an ordered sequence of values.
	KindArray
	// KindObject is a string-keyed collection of values.
	KindObject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindFunction:
		return "function"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is the closed union of everything a cell can resolve to. Only the
// types declared in this package implement it.
type Value interface {
	Kind() Kind
	String() string
	sealed()
}

// Number is a numeric cell value.
type Number float64

// Text is a literal string cell value.
type Text string

// Boolean is a boolean cell value.
type Boolean bool

// Array is an ordered sequence of values.
type Array []Value

// Object is a string-keyed collection of values.
type Object map[string]Value

// Function is a callable value. Impl holds the evaluator's own callable so
// formulas evaluated by the same evaluator can invoke it; Name is what the
// evaluator calls it.
type Function struct {
	Name string
	Impl any
}

func (Number) Kind() Kind   { return KindNumber }
func (Text) Kind() Kind     { return KindText }
func (Boolean) Kind() Kind  { return KindBoolean }
func (Function) Kind() Kind { return KindFunction }
func (Array) Kind() Kind    { return KindArray }
func (Object) Kind() Kind   { return KindObject }

func (Number) sealed()   {}
func (Text) sealed()     {}
func (Boolean) sealed()  {}
func (Function) sealed() {}
func (Array) sealed()    {}
func (Object) sealed()   {}

func (n Number) String() string { return FormatNumber(float64(n)) }
func (t Text) String() string   { return string(t) }

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (f Function) String() string {
	if f.Name == "" {
		return "function"
	}
	return "function " + f.Name
}

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = stringOf(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (o Object) String() string {
	keys := o.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%q: %s", k, stringOf(o[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Keys returns the object's keys in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringOf(v Value) string {
	if v == nil {
		return "null"
	}
	if t, ok := v.(Text); ok {
		return fmt.Sprintf("%q", string(t))
	}
	return v.String()
}

// ToNative converts a Value into plain Go data suitable for JSON encoding.
// Functions have no native form and become their display string.
func ToNative(v Value) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case Number:
		return float64(tv)
	case Text:
		return string(tv)
	case Boolean:
		return bool(tv)
	case Function:
		return tv.String()
	case Array:
		out := make([]any, len(tv))
		for i, el := range tv {
			out[i] = ToNative(el)
		}
		return out
	case Object:
		out := make(map[string]any, len(tv))
		for k, el := range tv {
			out[k] = ToNative(el)
		}
		return out
	default:
		return nil
	}
}
