/*
Package coord provides a structured view of cell coordinates.

The engine treats a coordinate as an opaque key. This package is used at the
edges: it checks that snapshot keys can be referenced from a formula, and it
orders coordinates for display, column first and then row, e.g.
`A1 < A2 < A10 < B1 < AA1`.
*/
package coord
