package hclexpr

import (
	"errors"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Functions returns the function table available to formulas.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"abs":      stdlib.AbsoluteFunc,
		"ceil":     stdlib.CeilFunc,
		"floor":    stdlib.FloorFunc,
		"log":      stdlib.LogFunc,
		"max":      stdlib.MaxFunc,
		"min":      stdlib.MinFunc,
		"pow":      stdlib.PowFunc,
		"signum":   stdlib.SignumFunc,
		"parseint": stdlib.ParseIntFunc,
		"sum":      SumFunc,
		"avg":      AverageFunc,

		"upper":  stdlib.UpperFunc,
		"lower":  stdlib.LowerFunc,
		"strlen": stdlib.StrlenFunc,
		"substr": stdlib.SubstrFunc,
		"join":   stdlib.JoinFunc,
		"split":  stdlib.SplitFunc,
		"format": stdlib.FormatFunc,

		"concat":   stdlib.ConcatFunc,
		"length":   stdlib.LengthFunc,
		"range":    stdlib.RangeFunc,
		"coalesce": stdlib.CoalesceFunc,
	}
}

// SumFunc adds any number of numeric arguments. sum() is 0.
var SumFunc = function.New(&function.Spec{
	Description: "Returns the sum of the given numbers.",
	VarParam: &function.Parameter{
		Name: "numbers",
		Type: cty.Number,
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (ret cty.Value, err error) {
		defer recoverNaN(&ret, &err)
		return cty.NumberVal(total(args)), nil
	},
})

// AverageFunc returns the arithmetic mean of its numeric arguments.
var AverageFunc = function.New(&function.Spec{
	Description: "Returns the arithmetic mean of the given numbers.",
	VarParam: &function.Parameter{
		Name: "numbers",
		Type: cty.Number,
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (ret cty.Value, err error) {
		defer recoverNaN(&ret, &err)
		if len(args) == 0 {
			return cty.UnknownVal(cty.Number), function.NewArgErrorf(0, "avg requires at least one number")
		}
		sum := total(args)
		return cty.NumberVal(sum.Quo(sum, big.NewFloat(float64(len(args))))), nil
	},
})

// recoverNaN turns the big.ErrNaN panic raised when infinities of opposite
// sign are added into a function error.
func recoverNaN(ret *cty.Value, err *error) {
	if r := recover(); r != nil {
		if _, ok := r.(big.ErrNaN); !ok {
			panic(r)
		}
		*ret = cty.UnknownVal(cty.Number)
		*err = errors.New("can't compute sum of opposing infinities")
	}
}

func total(args []cty.Value) *big.Float {
	sum := new(big.Float)
	for _, arg := range args {
		sum.Add(sum, arg.AsBigFloat())
	}
	return sum
}
