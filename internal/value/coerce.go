package value

import (
	"math"
	"strconv"
	"strings"
)

// FormulaPrefix marks raw cell text as a formula.
const FormulaPrefix = '='

// IsFormula reports whether raw cell text is a formula.
func IsFormula(raw string) bool {
	return len(raw) > 0 && raw[0] == FormulaPrefix
}

// FormulaBody returns the text after the leading '='. It returns raw unchanged
// when raw is not a formula.
func FormulaBody(raw string) string {
	if !IsFormula(raw) {
		return raw
	}
	return raw[1:]
}

// Coerce converts literal cell text into a Number when the text is the
// canonical spelling of that number, and into Text otherwise. "007", "1e3",
// " 12" and "1." stay Text because they do not print back to themselves.
func Coerce(raw string) Value {
	if raw == "" {
		return Text("")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Text(raw)
	}
	if FormatNumber(f) != raw {
		return Text(raw)
	}
	return Number(f)
}

// FormatNumber renders f the way a cell displays it: the shortest decimal
// that round-trips, switching to exponent notation below 1e-6 and from 1e21
// upwards. Negative zero prints as "0".
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
