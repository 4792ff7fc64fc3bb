// Package engine runs the sheet pass: it resolves every coordinate of a
// snapshot through one dependency scope and collects a result record per
// coordinate.
//
// A pass is pure with respect to its snapshot. The scope and its memoized
// state live only for the duration of one call and nothing is cached
// between calls, so evaluating the same snapshot twice yields the same
// records.
package engine
