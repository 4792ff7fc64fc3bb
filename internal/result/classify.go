package result

import (
	"math"

	"github.com/specialistvlad/sheetcalc/internal/value"
)

// Resolver is the part of a dependency scope the classifier reads.
type Resolver interface {
	Raw(coordinate string) (string, bool)
	Get(coordinate string) (value.Value, error)
}

// Classify resolves coordinate through r and tags the outcome. Absent and
// empty cells are reported as empty without being resolved. A failure is
// reported as an error record carrying the error's text.
func Classify(coordinate string, r Resolver) Record {
	raw, ok := r.Raw(coordinate)
	if !ok || raw == "" {
		return Empty()
	}

	v, err := r.Get(coordinate)
	if err != nil {
		return Failure(err.Error())
	}

	switch tv := v.(type) {
	case value.Number:
		if !finite(tv) {
			return Failure("not a finite number")
		}
		return Record{Kind: KindNumber, Value: float64(tv)}
	case value.Text:
		return Record{Kind: KindText, Value: string(tv)}
	case value.Boolean:
		return Record{Kind: KindBoolean, Value: bool(tv)}
	case value.Function:
		return Record{Kind: KindFunction, Value: raw}
	case value.Array:
		if !finite(tv) {
			return Failure("not a finite number")
		}
		return Record{Kind: KindArray, Value: value.ToNative(tv)}
	case value.Object:
		if !finite(tv) {
			return Failure("not a finite number")
		}
		return Record{Kind: KindObject, Value: value.ToNative(tv)}
	default:
		return Failure("invalid type")
	}
}

// finite reports whether every number inside v is finite.
func finite(v value.Value) bool {
	switch tv := v.(type) {
	case value.Number:
		return !math.IsNaN(float64(tv)) && !math.IsInf(float64(tv), 0)
	case value.Array:
		for _, el := range tv {
			if !finite(el) {
				return false
			}
		}
	case value.Object:
		for _, el := range tv {
			if !finite(el) {
				return false
			}
		}
	}
	return true
}
