// This file converts between cell values and cty values in both directions.

package hclexpr

import (
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/sheetcalc/internal/value"
	"github.com/zclconf/go-cty/cty"
)

var errNotFinite = errors.New("not a finite number")

// fromCty recursively converts a cty.Value produced by an expression into a
// cell value. A null result becomes a nil Value.
func fromCty(v cty.Value) (value.Value, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("expression result is not known")
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return value.Text(v.AsString()), nil

	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, errNotFinite
		}
		return value.Number(f), nil

	case ty == cty.Bool:
		return value.Boolean(v.True()), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make(value.Array, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, el := it.Element()
			converted, err := fromCty(el)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(value.Object)
		it := v.ElementIterator()
		for it.Next() {
			key, el := it.Element()
			keyStr := key.AsString()
			converted, err := fromCty(el)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", keyStr, err)
			}
			out[keyStr] = converted
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported result type %s", ty.FriendlyName())
	}
}

// toCty converts a resolved cell value into the cty.Value bound to its name
// in the evaluation context.
func toCty(v value.Value) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case value.Number:
		return cty.NumberFloatVal(float64(tv)), nil
	case value.Text:
		return cty.StringVal(string(tv)), nil
	case value.Boolean:
		return cty.BoolVal(bool(tv)), nil
	case value.Array:
		if len(tv) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(tv))
		for i, el := range tv {
			converted, err := toCty(el)
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = converted
		}
		return cty.TupleVal(elems), nil
	case value.Object:
		if len(tv) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(tv))
		for k, el := range tv {
			converted, err := toCty(el)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute '%s': %w", k, err)
			}
			attrs[k] = converted
		}
		return cty.ObjectVal(attrs), nil
	case value.Function:
		return cty.NilVal, fmt.Errorf("%s cannot be used in an HCL expression", tv)
	default:
		return cty.NilVal, fmt.Errorf("unsupported value kind %s", v.Kind())
	}
}
