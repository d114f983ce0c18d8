package sema

import (
	"errors"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
)

func (c *Checker) ids(p *ast.Path) []source.StringID {
	out := make([]source.StringID, len(p.Segments))
	for i, s := range p.Segments {
		out[i] = c.u.Strings.Intern(s.Name)
	}
	return out
}

// lookup resolves p in one table. Missing names defer until errors are
// enabled; ambiguity always fails.
func (c *Checker) lookup(ns *symbols.Namespace, table symbols.Table, p *ast.Path) (symbols.Object, error) {
	obj, err := symbols.SearchPath(ns, table, c.ids(p), p.Upmost)
	if err != nil {
		return nil, c.lookupErr(err, p)
	}
	return obj, nil
}

// lookupAny tries the object table, then structure and enumeration tags.
func (c *Checker) lookupAny(ns *symbols.Namespace, p *ast.Path) (symbols.Object, symbols.Table, error) {
	ids := c.ids(p)
	var first error
	for _, table := range []symbols.Table{symbols.TableObjects, symbols.TableStructs, symbols.TableEnums} {
		obj, err := symbols.SearchPath(ns, table, ids, p.Upmost)
		if err == nil {
			return obj, table, nil
		}
		var amb *symbols.AmbiguityError
		if errors.As(err, &amb) {
			return nil, table, c.ambiguous(amb, p.Span)
		}
		if first == nil {
			first = err
		}
	}
	return nil, symbols.TableObjects, c.lookupErr(first, p)
}

func (c *Checker) lookupNamespace(ns *symbols.Namespace, p *ast.Path) (*symbols.Namespace, error) {
	obj, err := c.lookup(ns, symbols.TableObjects, p)
	if err != nil {
		return nil, err
	}
	target, ok := obj.(*symbols.Namespace)
	if !ok {
		return nil, c.fail(diag.SemaNotANamespace, p.Span, "'%s' is a %s, not a namespace", p, obj.Kind())
	}
	return target, nil
}

func (c *Checker) lookupErr(err error, p *ast.Path) error {
	var amb *symbols.AmbiguityError
	if errors.As(err, &amb) {
		return c.ambiguous(amb, p.Span)
	}
	var le *symbols.LookupError
	if !errors.As(err, &le) {
		return err
	}
	seg := p.Segments[min(le.Segment, len(p.Segments)-1)]
	switch le.Failure {
	case symbols.NotInNamespace:
		return c.deferOr(diag.SemaNotInNamespace, seg.Span, "'%s' not found in namespace '%s'", seg.Name, nsLabel(le.In))
	case symbols.NotNamespace:
		return c.deferOr(diag.SemaNotANamespace, seg.Span, "'%s' is a %s, not a namespace", seg.Name, le.Found.Kind())
	}
	return c.deferOr(diag.SemaNameNotFound, p.Span, "'%s' not found", p)
}

func nsLabel(ns *symbols.Namespace) string {
	if ns == nil || ns.Path == "" {
		return "upmost"
	}
	return ns.Path
}
