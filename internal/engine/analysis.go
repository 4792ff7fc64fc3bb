package engine

import (
	"context"
	"errors"
	"slices"

	"github.com/specialistvlad/sheetcalc/internal/coord"
	"github.com/specialistvlad/sheetcalc/internal/dag"
	"github.com/specialistvlad/sheetcalc/internal/evaluator"
	"github.com/specialistvlad/sheetcalc/internal/result"
	"github.com/specialistvlad/sheetcalc/internal/scope"
	"github.com/specialistvlad/sheetcalc/internal/value"
)

// Analysis is the outcome of a sheet pass together with its reference graph.
type Analysis struct {
	Records map[string]result.Record
	// Graph has a vertex for every coordinate and every name a formula
	// references, and an edge from each referenced name to the formula cell.
	Graph *dag.Graph
	// Circular lists the coordinates that failed because they are part of a
	// circular reference, in display order.
	Circular []string
	// Origins maps each cell that failed through a referenced cell to the
	// cell where the failure started.
	Origins map[string]string
	// External lists the referenced names that are not coordinates of the
	// snapshot: transient variables and undefined names.
	External []string
}

// Precedents returns the names the cell at coordinate references.
func (a *Analysis) Precedents(coordinate string) []string {
	if !a.Graph.Has(coordinate) {
		return nil
	}
	deps, _ := a.Graph.Dependencies(coordinate)
	return deps
}

// Dependents returns the cells whose formulas reference coordinate.
func (a *Analysis) Dependents(coordinate string) []string {
	if !a.Graph.Has(coordinate) {
		return nil
	}
	deps, _ := a.Graph.Dependents(coordinate)
	return deps
}

// Analyze runs a sheet pass and also records which names each formula
// references. When the evaluator can list references without evaluating,
// every reference is recorded, even those after the first failing one.
func (e *Engine) Analyze(ctx context.Context, snapshot map[string]string) (*Analysis, error) {
	s, err := e.newScope(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	records, err := pass(ctx, s, snapshot)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	coord.Sort(keys)

	graph := dag.New()
	for _, key := range keys {
		graph.AddNode(key)
	}

	lister, canList := e.evaluator.(evaluator.ReferenceLister)
	var circular []string
	origins := make(map[string]string)
	for _, key := range keys {
		raw := snapshot[key]
		if !value.IsFormula(raw) {
			continue
		}

		refs := s.References(key)
		if canList {
			if listed, err := lister.References(value.FormulaBody(raw)); err == nil {
				refs = listed
			}
		}
		for _, ref := range refs {
			graph.AddNode(ref)
			// Both vertices were just added.
			_ = graph.AddEdge(ref, key)
		}

		if _, err := s.Get(key); err != nil {
			var recursion *scope.RecursionError
			if errors.As(err, &recursion) && slices.Contains(recursion.Cycle, key) {
				circular = append(circular, key)
			}
			var transitive *scope.TransitiveError
			if errors.As(err, &transitive) {
				origins[key], _ = transitive.Origin()
			}
		}
	}

	var external []string
	for _, name := range graph.Nodes() {
		if _, ok := snapshot[name]; !ok {
			external = append(external, name)
		}
	}

	return &Analysis{
		Records:  records,
		Graph:    graph,
		Circular: circular,
		Origins:  origins,
		External: external,
	}, nil
}
