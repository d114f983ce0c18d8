package sema

import (
	"errors"

	"fortio.org/safecast"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/types"
)

// resolveEnum values the enumerators in order. Finished enumerators stay
// finished when a later one defers.
func (c *Checker) resolveEnum(en *symbols.Enumeration) error {
	for i := en.Progress(); i < len(en.Enumerators); i++ {
		e := en.Enumerators[i]
		var v int32
		switch {
		case e.Decl.Value != nil:
			val, t, err := c.fold(en.NS, e.Decl.Value)
			if err != nil {
				return err
			}
			if s := arith(t); s != types.SpecInt && s != types.SpecRaw {
				return c.fail(diag.SemaNotConstant, e.Decl.Value.Span(), "enumerator '%s' needs an integer value, found %s", e.Decl.Name.Name, types.Present(t))
			}
			v = val.Int
		case i > 0:
			prev := en.Enumerators[i-1]
			next, err := safecast.Conv[int32](int64(prev.Value) + 1)
			if err != nil {
				return c.bail(diag.ReportError(c.reporter, diag.SemaEnumOverflow, e.Span,
					"enumerator '"+e.Decl.Name.Name+"' overflows int").
					WithNote(prev.Span, "previous enumerator has the maximum value"))
			}
			v = next
		}
		e.Value = v
		e.Resolved = true
		en.Advance()
	}
	en.Resolved = true
	return nil
}

// localEnum creates, binds and resolves an enumeration declared inside a
// function body.
func (c *Checker) localEnum(ns *symbols.Namespace, d *ast.EnumDecl) (*symbols.Enumeration, error) {
	en := newEnum(c.u, d)
	c.stampLocal(ns, en, declSpan(d.Name, d))
	if !d.Name.IsZero() {
		en.Name = c.u.Strings.Intern(d.Name.Name)
		if err := c.bindErr(c.scopes.Bind(ns, symbols.TableEnums, en.Name, en), d.Name.Span); err != nil {
			return nil, err
		}
	}
	for _, e := range en.Enumerators {
		c.stampLocal(ns, e, e.Span)
		if err := c.bindErr(c.scopes.Bind(ns, symbols.TableObjects, e.Name, e), e.Span); err != nil {
			return nil, err
		}
	}
	c.u.Decls[d] = en
	return en, c.now(c.resolveEnum(en), en)
}

func (c *Checker) stampLocal(ns *symbols.Namespace, obj symbols.Object, sp source.Span) {
	b := obj.Base()
	b.NS = ns
	b.Library = c.lib
	if b.Span.IsZero() {
		b.Span = sp
	}
}

// now turns a deferral into a hard error; used where no later pass exists.
func (c *Checker) now(err error, obj symbols.Object) error {
	if errors.Is(err, errDeferred) {
		return c.fail(diag.SemaUnresolved, obj.Base().Span, "unable to resolve %s '%s'", obj.Kind(), c.name(obj))
	}
	return err
}

// declSpan points at the declared name, or at the whole declaration when
// it is anonymous.
func declSpan(name ast.Ident, d ast.Decl) source.Span {
	if name.IsZero() {
		return d.Span()
	}
	return name.Span
}
