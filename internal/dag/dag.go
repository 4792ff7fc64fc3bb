package dag

import (
	"fmt"
	"sort"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a vertex with the given name. If it already exists, the
// function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.addNode(id)
}

func (g *Graph) addNode(id string) *node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.nodes[id] = n
	return n
}

// AddEdge records that `toID` references `fromID`. Both vertices must exist.
// A vertex may reference itself; that edge is a cycle of one.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// Has reports whether the graph contains the vertex.
func (g *Graph) Has(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	_, ok := g.nodes[id]
	return ok
}

// Nodes returns the names of all vertices, sorted.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dependencies returns the sorted names the given vertex references.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted names of vertices that reference the given
// vertex.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.dependents), nil
}

// Cycles returns every circular reference in the graph as a strongly
// connected component of more than one vertex, or a single vertex that
// references itself. Members of a component are sorted and components are
// ordered by their first member.
func (g *Graph) Cycles() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Tarjan's algorithm over vertices and edges visited in sorted order.
	index := make(map[string]int, len(g.nodes))
	lowlink := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	var stack []string
	var cycles [][]string
	next := 0

	var visit func(n *node)
	visit = func(n *node) {
		index[n.id] = next
		lowlink[n.id] = next
		next++
		stack = append(stack, n.id)
		onStack[n.id] = true

		for _, depID := range sortedKeys(n.dependents) {
			if _, seen := index[depID]; !seen {
				visit(n.dependents[depID])
				lowlink[n.id] = min(lowlink[n.id], lowlink[depID])
			} else if onStack[depID] {
				lowlink[n.id] = min(lowlink[n.id], index[depID])
			}
		}

		if lowlink[n.id] != index[n.id] {
			return
		}

		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == n.id {
				break
			}
		}
		if _, selfRef := n.deps[n.id]; len(component) > 1 || selfRef {
			sort.Strings(component)
			cycles = append(cycles, component)
		}
	}

	for _, id := range sortedKeys(g.nodes) {
		if _, seen := index[id]; !seen {
			visit(g.nodes[id])
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

func sortedKeys(m map[string]*node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
