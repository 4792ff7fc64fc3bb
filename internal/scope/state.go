package scope

import (
	"github.com/specialistvlad/sheetcalc/internal/value"
)

// State is the resolution state of one coordinate within a single pass.
type State int

const (
	// Unvisited indicates the coordinate has not been requested yet.
	Unvisited State = iota
	// InProgress indicates the coordinate's formula is being evaluated. Seeing
	// it again before evaluation finishes means a circular reference.
	InProgress
	// Resolved indicates the coordinate has a memoized value.
	Resolved
	// Failed indicates the coordinate has a memoized error.
	Failed
)

func (s State) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case InProgress:
		return "in-progress"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// entry is the memo slot for one coordinate. Transitions only go forward:
// Unvisited -> InProgress -> Resolved | Failed, or straight to Resolved for
// literals.
type entry struct {
	state State
	value value.Value
	err   error
}

func (e *entry) resolve(v value.Value) {
	e.state = Resolved
	e.value = v
}

func (e *entry) fail(err error) {
	e.state = Failed
	e.err = err
}
