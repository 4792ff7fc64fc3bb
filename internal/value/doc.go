// Package value defines the closed set of values a spreadsheet cell can
// resolve to and the coercion rules that turn literal cell text into them.
//
// Literal text becomes a Number only when it is the canonical spelling of
// that number; everything else stays Text. Formulas are recognised by a
// leading '=' and are never coerced.
package value
