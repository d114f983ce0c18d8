package sema

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"quill/internal/diag"
	"quill/internal/symbols"
	"quill/internal/trace"
)

// Fixpoint resolves every namespace-scope object of every non-cached
// library. Libraries are walked in registration order, imports first.
func (c *Checker) Fixpoint(ctx context.Context) (Stats, error) {
	c.tracer = trace.FromContext(ctx)
	var stats Stats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Repetitions++
		span := trace.Begin(c.tracer, trace.ScopePass, "fixpoint", trace.CurrentSpan(ctx).SpanID)
		span.WithExtra("repetition", strconv.Itoa(stats.Repetitions))
		if c.errors {
			span.WithExtra("errors", "on")
		}

		progress := false
		for _, lib := range c.u.Libraries {
			if lib.Cached {
				continue
			}
			n, err := c.libraryPass(lib, span.ID(), c.resolvePending)
			stats.Resolved += n
			if err != nil {
				span.End("bail")
				return stats, err
			}
			progress = progress || n > 0
		}

		left := c.unresolved()
		span.End(fmt.Sprintf("unresolved=%d", left))
		if left == 0 {
			return stats, c.assignIndices()
		}
		if !progress {
			if c.errors {
				return stats, c.reportStuck()
			}
			c.errors = true
		}
	}
}

// visitFunc handles one namespace-scope object of a fragment walk and
// reports whether it made progress.
type visitFunc func(obj symbols.Object) (bool, error)

// libraryPass walks lib's fragments with lib's private objects visible.
// The retraction is deferred so it also runs when the pass bails.
func (c *Checker) libraryPass(lib *symbols.Library, parent uint64, visit visitFunc) (int, error) {
	span := trace.Begin(c.tracer, trace.ScopeLibrary, "library:"+lib.Title, parent)
	defer span.End("")
	outer := c.span
	c.span = span.ID()
	defer func() { c.span = outer }()

	prev := c.lib
	c.lib = lib
	defer func() { c.lib = prev }()
	retract := lib.ExposePrivates()
	defer retract()

	n := 0
	for _, frag := range lib.Fragments {
		m, err := c.walkFragment(frag, visit)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// walkFragment visits the items of frag in declaration order. Links added
// by using directives last until the end of the fragment.
func (c *Checker) walkFragment(frag *symbols.Fragment, visit visitFunc) (int, error) {
	mark := frag.NS.LinkMark()
	defer frag.NS.ResetLinks(mark)

	n := 0
	for _, it := range frag.Items {
		switch {
		case it.Using != nil:
			progress, err := c.applyUsing(frag, it.Using)
			if errors.Is(err, errDeferred) {
				continue
			}
			if err != nil {
				return n, err
			}
			if progress {
				n++
			}
		case it.Fragment != nil:
			m, err := c.walkFragment(it.Fragment, visit)
			n += m
			if err != nil {
				return n, err
			}
		case it.Object != nil:
			progress, err := visit(it.Object)
			if err != nil {
				return n, err
			}
			if progress {
				n++
			}
		}
	}
	return n, nil
}

func (c *Checker) resolvePending(obj symbols.Object) (bool, error) {
	if obj.Base().Resolved {
		return false, nil
	}
	err := c.resolveObject(obj)
	if errors.Is(err, errDeferred) {
		trace.Point(c.tracer, trace.ScopeNode, "deferred:"+c.name(obj), c.span, obj.Kind().String())
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Checker) resolveObject(obj symbols.Object) error {
	switch obj := obj.(type) {
	case *symbols.Constant:
		return c.resolveConstant(obj)
	case *symbols.Enumeration:
		return c.resolveEnum(obj)
	case *symbols.Structure:
		return c.resolveStruct(obj)
	case *symbols.TypeAlias:
		return c.resolveTypedef(obj)
	case *symbols.Variable:
		return c.resolveVar(obj)
	case *symbols.Function:
		return c.resolveFunc(obj)
	case *symbols.Script:
		return c.resolveScript(obj)
	}
	obj.Base().Resolved = true
	return nil
}

func (c *Checker) unresolved() int {
	n := 0
	for _, lib := range c.u.Libraries {
		if !lib.Cached {
			n += lib.Unresolved()
		}
	}
	return n
}

// reportStuck reports the first object no repetition could resolve. Only
// dependency cycles get here: missing names fail during the error pass.
func (c *Checker) reportStuck() error {
	for _, lib := range c.u.Libraries {
		if lib.Cached {
			continue
		}
		for _, obj := range lib.Objects {
			if obj.Base().Resolved {
				continue
			}
			if st, ok := obj.(*symbols.Structure); ok {
				if via := c.byValueCycle(st); via != nil {
					return c.infiniteSize(st, via)
				}
			}
			label := c.name(obj)
			if label == "" {
				label = "<anonymous>"
			}
			return c.fail(diag.SemaUnresolved, obj.Base().Span,
				"unable to resolve %s '%s': it depends on itself", obj.Kind(), label)
		}
	}
	return nil
}
