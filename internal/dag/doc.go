// Package dag holds the reference graph of a sheet: which cells and
// variables each formula read during an evaluation pass. It answers
// precedent and dependent queries and reports the circular references the
// pass ran into.
package dag
