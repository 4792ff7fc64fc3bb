// Package scope resolves the cells of one sheet snapshot on demand.
//
// A Scope is the per-pass memo table of the engine. It owns nothing but the
// snapshot it was created from and the values it has computed so far:
//
//  1. **Created** once per evaluation pass with a read-only snapshot.
//  2. **Queried** through Get, in any order. Literals are coerced, formulas
//     are handed to the configured evaluator together with an Environment
//     that resolves their references through the same Scope.
//  3. **Discarded** when the pass ends. Nothing is shared between passes.
//
// # Resolution States
//
// Every coordinate moves through Unvisited -> InProgress -> Resolved or
// Failed. Resolved and Failed are final and memoized, so each formula is
// evaluated at most once per pass. Requesting a coordinate that is
// InProgress means the reference graph has a cycle; every member of that
// cycle fails with the same RecursionError.
//
// # Errors
//
// A formula that references a Failed cell fails with a TransitiveError that
// wraps the referenced cell's error, so errors.As finds the root cause from
// any dependent. Missing and empty references fail with
// UndefinedReferenceError and EmptyReferenceError and are not wrapped.
//
// A Scope is not safe for concurrent use.
package scope
