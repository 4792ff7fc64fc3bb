package hclexpr

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// References returns the unique root names an expression reads, sorted. For
// `A1 + C1.items[0]` that is [A1 C1].
func References(expr hcl.Expression) []string {
	if expr == nil {
		return nil
	}

	roots := make(map[string]struct{})
	for _, traversal := range expr.Variables() {
		roots[traversal.RootName()] = struct{}{}
	}

	names := make([]string, 0, len(roots))
	for name := range roots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CalledFunctions walks the syntax tree and returns the unique names of all
// functions the expression calls, sorted.
func CalledFunctions(expr hclsyntax.Expression) []string {
	if expr == nil {
		return nil
	}

	functions := make(map[string]struct{})
	hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		if call, ok := node.(*hclsyntax.FunctionCallExpr); ok {
			functions[call.Name] = struct{}{}
		}
		return nil
	})

	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
