package scope

import (
	"log/slog"
	"sort"

	"github.com/specialistvlad/sheetcalc/internal/evaluator"
	"github.com/specialistvlad/sheetcalc/internal/value"
)

// Scope lazily resolves the coordinates of a snapshot, memoizing every
// outcome for the lifetime of the Scope.
type Scope struct {
	snapshot  map[string]string
	evaluator evaluator.Evaluator
	logger    *slog.Logger

	entries   map[string]*entry
	variables map[string]value.Value
	// stack holds the coordinates currently InProgress, outermost first.
	stack []string
	// references records, per formula cell, the names it resolved.
	references map[string]map[string]struct{}
}

// Option configures a Scope.
type Option func(*Scope)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scope) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Scope over snapshot. The snapshot is never modified.
func New(snapshot map[string]string, ev evaluator.Evaluator, opts ...Option) *Scope {
	s := &Scope{
		snapshot:   snapshot,
		evaluator:  ev,
		logger:     slog.Default(),
		entries:    make(map[string]*entry, len(snapshot)),
		variables:  make(map[string]value.Value),
		references: make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Has reports whether coordinate is a key of the snapshot.
func (s *Scope) Has(coordinate string) bool {
	_, ok := s.snapshot[coordinate]
	return ok
}

// Raw returns the unmodified text of coordinate.
func (s *Scope) Raw(coordinate string) (string, bool) {
	raw, ok := s.snapshot[coordinate]
	return raw, ok
}

// State returns the resolution state of coordinate.
func (s *Scope) State(coordinate string) State {
	if e, ok := s.entries[coordinate]; ok {
		return e.state
	}
	return Unvisited
}

// Set defines a transient variable that formulas can reference by name. The
// name must not be a coordinate of the snapshot.
func (s *Scope) Set(name string, v value.Value) error {
	if s.Has(name) {
		return &AssignmentError{Name: name}
	}
	s.variables[name] = v
	return nil
}

// Get returns the value of coordinate, evaluating it on first use.
func (s *Scope) Get(coordinate string) (value.Value, error) {
	if e, ok := s.entries[coordinate]; ok {
		switch e.state {
		case Resolved:
			return e.value, nil
		case Failed:
			return nil, e.err
		case InProgress:
			return nil, s.failCycle(coordinate)
		}
	}

	raw, ok := s.snapshot[coordinate]
	if !ok {
		return nil, &UndefinedReferenceError{Name: coordinate}
	}
	if raw == "" {
		return nil, &EmptyReferenceError{Coordinate: coordinate}
	}

	e := &entry{}
	s.entries[coordinate] = e

	if !value.IsFormula(raw) {
		v := value.Coerce(raw)
		e.resolve(v)
		return v, nil
	}

	e.state = InProgress
	s.stack = append(s.stack, coordinate)
	v, err := s.evaluator.Evaluate(value.FormulaBody(raw), s.environment(coordinate))
	s.stack = s.stack[:len(s.stack)-1]

	// A cycle through this cell may have been detected while evaluating it.
	if e.state == Failed {
		return nil, e.err
	}
	if err != nil {
		e.fail(err)
		s.logger.Debug("Formula failed.", "coordinate", coordinate, "error", err)
		return nil, err
	}
	e.resolve(v)
	s.logger.Debug("Formula resolved.", "coordinate", coordinate, "kind", kindOf(v))
	return v, nil
}

// References returns the names the formula at coordinate resolved, sorted.
// It is empty for literals and for cells that have not been evaluated.
func (s *Scope) References(coordinate string) []string {
	refs := s.references[coordinate]
	out := make([]string, 0, len(refs))
	for name := range refs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// environment returns the Environment the formula at coordinate is
// evaluated with.
func (s *Scope) environment(coordinate string) evaluator.Environment {
	return evaluator.EnvironmentFunc(func(name string) (value.Value, error) {
		s.recordReference(coordinate, name)
		if !s.Has(name) {
			if v, ok := s.variables[name]; ok {
				return v, nil
			}
		}
		v, err := s.Get(name)
		if err != nil && s.State(name) == Failed {
			return nil, &TransitiveError{Ref: name, Err: err}
		}
		return v, err
	})
}

func (s *Scope) recordReference(from, to string) {
	refs, ok := s.references[from]
	if !ok {
		refs = make(map[string]struct{})
		s.references[from] = refs
	}
	refs[to] = struct{}{}
}

// failCycle marks every coordinate of the cycle that closes on coordinate as
// Failed and returns the shared error.
func (s *Scope) failCycle(coordinate string) error {
	start := len(s.stack) - 1
	for start > 0 && s.stack[start] != coordinate {
		start--
	}
	err := newRecursionError(s.stack[start:])
	for _, member := range s.stack[start:] {
		s.entries[member].fail(err)
	}
	s.logger.Debug("Circular reference detected.", "cycle", err.Cycle)
	return err
}

func kindOf(v value.Value) string {
	if v == nil {
		return "null"
	}
	return v.Kind().String()
}
