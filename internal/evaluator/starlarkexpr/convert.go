package starlarkexpr

import (
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/sheetcalc/internal/value"
	"go.starlark.net/starlark"
)

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// toStarlark converts a resolved cell value into a Starlark value. Integral
// numbers become ints so they can be used as indices and range bounds.
func toStarlark(v value.Value) (starlark.Value, error) {
	switch tv := v.(type) {
	case nil:
		return starlark.None, nil
	case value.Number:
		f := float64(tv)
		if f == math.Trunc(f) && math.Abs(f) < maxExactInt {
			return starlark.MakeInt64(int64(f)), nil
		}
		return starlark.Float(f), nil
	case value.Text:
		return starlark.String(tv), nil
	case value.Boolean:
		return starlark.Bool(tv), nil
	case value.Array:
		elems := make([]starlark.Value, len(tv))
		for i, el := range tv {
			converted, err := toStarlark(el)
			if err != nil {
				return nil, err
			}
			elems[i] = converted
		}
		return starlark.NewList(elems), nil
	case value.Object:
		dict := starlark.NewDict(len(tv))
		for _, k := range tv.Keys() {
			converted, err := toStarlark(tv[k])
			if err != nil {
				return nil, fmt.Errorf("in key '%s': %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), converted); err != nil {
				return nil, err
			}
		}
		return dict, nil
	case value.Function:
		if callable, ok := tv.Impl.(starlark.Callable); ok {
			return callable, nil
		}
		return nil, fmt.Errorf("%s was not produced by a Starlark formula", tv)
	default:
		return nil, fmt.Errorf("unsupported value kind %s", v.Kind())
	}
}

// fromStarlark converts an expression result into a cell value. None becomes
// a nil Value.
func fromStarlark(v starlark.Value) (value.Value, error) {
	switch tv := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return value.Boolean(tv), nil
	case starlark.Int:
		return finiteNumber(float64(tv.Float()))
	case starlark.Float:
		return finiteNumber(float64(tv))
	case starlark.String:
		return value.Text(tv), nil
	case *starlark.Dict:
		out := make(value.Object, tv.Len())
		for _, item := range tv.Items() {
			key := item[0].String()
			if s, ok := item[0].(starlark.String); ok {
				key = string(s)
			}
			converted, err := fromStarlark(item[1])
			if err != nil {
				return nil, fmt.Errorf("in key '%s': %w", key, err)
			}
			out[key] = converted
		}
		return out, nil
	case starlark.Callable:
		return value.Function{Name: tv.Name(), Impl: tv}, nil
	case starlark.Iterable:
		var out value.Array
		iter := tv.Iterate()
		defer iter.Done()
		var el starlark.Value
		for iter.Next(&el) {
			converted, err := fromStarlark(el)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		if out == nil {
			out = value.Array{}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported result type %s", v.Type())
	}
}

// finiteNumber rejects NaN and the infinities, which no cell can hold.
func finiteNumber(f float64) (value.Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.New("not a finite number")
	}
	return value.Number(f), nil
}
