package sema

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/symbols"
)

var itemTables = [...]symbols.Table{
	ast.ItemObject: symbols.TableObjects,
	ast.ItemStruct: symbols.TableStructs,
	ast.ItemEnum:   symbols.TableEnums,
}

// applyUsing runs a using directive inside frag. Links are re-added on
// every walk since they end with the fragment; aliases are bound once.
func (c *Checker) applyUsing(frag *symbols.Fragment, u *ast.UsingDecl) (bool, error) {
	ns := frag.NS
	switch u.Kind {
	case ast.UsingLink:
		target, err := c.lookupNamespace(ns, u.Path)
		if err != nil {
			return false, err
		}
		first := frag.FirstVisit(u)
		if dup := ns.AddLink(target, u.Span()); dup && first {
			c.warn(diag.SemaDuplicateLink, u.Path.Span, "namespace '%s' is already linked here", u.Path)
		}
		return false, nil

	case ast.UsingSelective:
		bound := c.imported[u]
		if bound == nil {
			bound = make([]bool, len(u.Items))
			c.imported[u] = bound
		}
		if allTrue(bound) {
			return false, nil
		}
		target, err := c.lookupNamespace(ns, u.Path)
		if err != nil {
			return false, err
		}
		progress := false
		for i, it := range u.Items {
			if bound[i] {
				continue
			}
			table := itemTables[it.Table]
			obj := target.Object(table, c.u.Strings.Intern(it.Name.Name))
			if obj == nil {
				if err := c.deferOr(diag.SemaNotInNamespace, it.Name.Span,
					"'%s' not found in namespace '%s'", it.Name.Name, u.Path); err != nil {
					return progress, err
				}
				continue
			}
			if err := c.bindAlias(ns, table, it.Bound(), obj); err != nil {
				return progress, err
			}
			bound[i] = true
			progress = true
		}
		return progress, nil

	case ast.UsingAlias:
		bound := c.imported[u]
		if bound != nil {
			return false, nil
		}
		obj, table, err := c.lookupAny(ns, u.Path)
		if err != nil {
			return false, err
		}
		if err := c.bindAlias(ns, table, u.Alias, obj); err != nil {
			return false, err
		}
		c.imported[u] = []bool{true}
		return true, nil
	}
	return false, nil
}

func (c *Checker) bindAlias(ns *symbols.Namespace, table symbols.Table, name ast.Ident, target symbols.Object) error {
	a := &symbols.Alias{Target: symbols.Unalias(target), Table: table}
	a.Name = c.u.Strings.Intern(name.Name)
	a.Span = name.Span
	a.NS = ns
	a.Library = c.lib
	a.Resolved = true
	return c.bindErr(symbols.ImportSelective(c.scopes, ns, table, a.Name, a), name.Span)
}

func allTrue(bs []bool) bool {
	for _, b := range bs {
		if !b {
			return false
		}
	}
	return true
}
