package scope

import (
	"fmt"
	"strings"
)

// EmptyReferenceError is returned for a coordinate that is present in the
// snapshot with empty text.
type EmptyReferenceError struct {
	Coordinate string
}

func (e *EmptyReferenceError) Error() string {
	return fmt.Sprintf("%s is empty", e.Coordinate)
}

// UndefinedReferenceError is returned for a name that is neither a
// coordinate of the snapshot nor a transient variable.
type UndefinedReferenceError struct {
	Name string
}

func (e *UndefinedReferenceError) Error() string {
	return fmt.Sprintf("undefined reference: %s", e.Name)
}

// RecursionError is returned for every member of a circular reference. Cycle
// lists the members in reference order, starting at Coordinate, which is the
// alphabetically smallest member, so all members report the same error.
type RecursionError struct {
	Coordinate string
	Cycle      []string
}

func (e *RecursionError) Error() string {
	path := append(append([]string{}, e.Cycle...), e.Coordinate)
	return fmt.Sprintf("circular reference: %s", strings.Join(path, " -> "))
}

// TransitiveError is returned by a formula that referenced a failed cell.
type TransitiveError struct {
	Ref string
	Err error
}

func (e *TransitiveError) Error() string {
	return fmt.Sprintf("in %s: %v", e.Ref, e.Err)
}

func (e *TransitiveError) Unwrap() error {
	return e.Err
}

// Origin follows the chain of transitive errors back to the cell where the
// failure started and returns that cell and its error.
func (e *TransitiveError) Origin() (string, error) {
	ref, err := e.Ref, e.Err
	for {
		next, ok := err.(*TransitiveError)
		if !ok {
			return ref, err
		}
		ref, err = next.Ref, next.Err
	}
}

// AssignmentError is returned when a transient variable would shadow a
// coordinate of the snapshot.
type AssignmentError struct {
	Name string
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("cannot assign to reserved key %s", e.Name)
}

// newRecursionError builds the canonical error for the cycle formed by the
// given members, listed in the order they were entered.
func newRecursionError(members []string) *RecursionError {
	start := 0
	for i, m := range members {
		if m < members[start] {
			start = i
		}
	}
	cycle := make([]string, 0, len(members))
	cycle = append(cycle, members[start:]...)
	cycle = append(cycle, members[:start]...)
	return &RecursionError{Coordinate: cycle[0], Cycle: cycle}
}
