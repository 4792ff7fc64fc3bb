package dag

import "sync"

// Graph is a directed graph of references between named vertices. An edge
// from A to B records that B's formula references A. All operations on the
// graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all vertices in the graph, keyed by name.
	nodes map[string]*node
}

// node is a single vertex of the graph. It is un-exported to enforce
// interaction with the graph via names.
type node struct {
	id string
	// deps holds the vertices this vertex references (precedents).
	deps map[string]*node
	// dependents holds the vertices that reference this vertex.
	dependents map[string]*node
}
