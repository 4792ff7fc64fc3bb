// Package result turns the outcome of resolving one coordinate into the
// tagged Record the engine hands to its host.
package result

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/specialistvlad/sheetcalc/internal/value"
)

// Kind is the discriminant of a Record.
type Kind string

const (
	KindEmpty    Kind = "empty"
	KindNumber   Kind = "number"
	KindText     Kind = "text"
	KindBoolean  Kind = "boolean"
	KindFunction Kind = "function"
	KindArray    Kind = "array"
	KindObject   Kind = "object"
	KindError    Kind = "error"
)

// Record is the display-ready outcome of one cell. Value holds plain Go data
// (float64, string, bool, []any, map[string]any) and is set for every kind
// except empty and error; Error is set only for the error kind.
type Record struct {
	Kind  Kind   `json:"kind"`
	Value any    `json:"value"`
	Error string `json:"error"`
}

// Empty returns the record of a cell without content.
func Empty() Record {
	return Record{Kind: KindEmpty}
}

// Failure returns an error record with the given message.
func Failure(message string) Record {
	return Record{Kind: KindError, Error: message}
}

// MarshalJSON writes `{"kind", "value"}`, `{"kind", "error"}` or `{"kind"}`
// so that value and error never appear together.
func (r Record) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindEmpty:
		return json.Marshal(struct {
			Kind Kind `json:"kind"`
		}{r.Kind})
	case KindError:
		return json.Marshal(struct {
			Kind  Kind   `json:"kind"`
			Error string `json:"error"`
		}{r.Kind, r.Error})
	default:
		return json.Marshal(struct {
			Kind  Kind `json:"kind"`
			Value any  `json:"value"`
		}{r.Kind, r.Value})
	}
}

// Display renders the record the way a cell shows it.
func (r Record) Display() string {
	switch r.Kind {
	case KindEmpty:
		return ""
	case KindError:
		return "#ERROR: " + r.Error
	}

	switch v := r.Value.(type) {
	case float64:
		return value.FormatNumber(v)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
