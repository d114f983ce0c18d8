// Package symbols holds the name-resolution state shared by every library
// of one compilation: objects, namespaces with their three name tables,
// the scope stack with its undo sweeps, and the unqualified/qualified
// lookup over namespaces and their `using` links.
package symbols
