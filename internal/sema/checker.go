package sema

import (
	"context"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/symbols"
	"quill/internal/trace"
)

// Options configure a resolution attempt.
type Options struct {
	Reporter diag.Reporter
	// Legacy rejects locals shadowing namespace-scope names in non-strict
	// namespaces.
	Legacy bool
}

// Stats describe one fixpoint run. A run over an already resolved universe
// takes one repetition and resolves nothing.
type Stats struct {
	Repetitions int
	Resolved    int
}

// Checker owns the resolution state of one universe: the scope stack, the
// current library and whether unresolved lookups are errors yet.
type Checker struct {
	u        *symbols.Universe
	reporter diag.Reporter
	tracer   trace.Tracer
	span     uint64 // current library span
	scopes   *symbols.ScopeStack
	errors   bool
	lib      *symbols.Library

	// selective imports bound so far, per using directive
	imported map[*ast.UsingDecl][]bool
	storage  storageIndex
	checked  map[symbols.Object]bool
	fn       *funcState
}

// New returns a checker over u.
func New(u *symbols.Universe, opts Options) *Checker {
	rep := opts.Reporter
	if rep == nil {
		rep = diag.NopReporter{}
	}
	c := &Checker{
		u:        u,
		reporter: rep,
		tracer:   trace.Nop,
		scopes:   symbols.NewScopeStack(opts.Legacy),
		imported: make(map[*ast.UsingDecl][]bool),
		storage:  newStorageIndex(),
		checked:  make(map[symbols.Object]bool),
	}
	c.storage.reserveCached(u)
	return c
}

// Universe returns the universe the checker resolves.
func (c *Checker) Universe() *symbols.Universe { return c.u }

// Resolve runs the fixpoint and then checks function and script bodies.
func (c *Checker) Resolve(ctx context.Context) (Stats, error) {
	stats, err := c.Fixpoint(ctx)
	if err != nil {
		return stats, err
	}
	return stats, c.CheckBodies(ctx)
}

// Resolve is a shortcut for New(u, opts).Resolve(ctx).
func Resolve(ctx context.Context, u *symbols.Universe, opts Options) (Stats, error) {
	return New(u, opts).Resolve(ctx)
}
