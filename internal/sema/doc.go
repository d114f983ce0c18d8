// Package sema resolves the declarations of every library in a universe.
//
// Namespace-scope declarations may reference each other in any order, so
// resolution runs as a fixpoint: each repetition walks every fragment of
// every library and resolves what it can, deferring objects whose
// dependencies are still unresolved. Once a repetition makes no progress,
// errors are enabled and the next repetition reports the first hard
// failure. Function and script bodies are checked afterwards, with errors
// enabled from the start.
//
// Fatal diagnostics are reported through diag.Reporter and returned as
// *BailError; the attempt stops there.
package sema
