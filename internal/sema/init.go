package sema

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/symbols"
	"quill/internal/types"
)

// initValues flattens an initializer of t into storage slots starting at
// offset. At namespace scope (static) scalars must fold and references
// may only be null or name a function; elsewhere values are checked as
// expressions and kept for code generation.
func (c *Checker) initValues(ns *symbols.Namespace, t types.Type, init ast.Expr, offset int, static bool) ([]symbols.InitValue, error) {
	switch {
	case len(t.Dims) > 0:
		list, ok := init.(*ast.InitList)
		if !ok {
			return nil, c.fail(diag.SemaBadInitializer, init.Span(), "array %s needs a brace initializer", types.Present(t))
		}
		if len(list.Elems) > t.Dims[0] {
			return nil, c.fail(diag.SemaBadInitializer, list.Elems[t.Dims[0]].Span(),
				"too many initializers: %d for %d elements", len(list.Elems), t.Dims[0])
		}
		el, _ := t.Element()
		step, err := c.sizeOf(el, init.Span())
		if err != nil {
			return nil, err
		}
		var out []symbols.InitValue
		for i, e := range list.Elems {
			vs, err := c.initValues(ns, el, e, offset+i*step, static)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		}
		return out, nil

	case t.IsStructValue():
		list, ok := init.(*ast.InitList)
		if !ok {
			return nil, c.fail(diag.SemaBadInitializer, init.Span(), "structure %s needs a brace initializer", types.Present(t))
		}
		st := t.Struct.(*symbols.Structure)
		if len(list.Elems) > len(st.Members) {
			return nil, c.fail(diag.SemaBadInitializer, list.Elems[len(st.Members)].Span(),
				"too many initializers: %d for %d members of %s", len(list.Elems), len(st.Members), st.StructName())
		}
		var out []symbols.InitValue
		for i, e := range list.Elems {
			m := st.Members[i]
			vs, err := c.initValues(ns, m.Type, e, offset+m.Offset, static)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		}
		return out, nil
	}

	if _, ok := init.(*ast.InitList); ok {
		return nil, c.fail(diag.SemaBadInitializer, init.Span(), "brace initializer for %s", types.Present(t))
	}
	if !static {
		op, err := c.value(ns, init)
		if err != nil {
			return nil, err
		}
		if !types.InstanceOf(t, op.typ) {
			return nil, c.mismatch(init.Span(), "initializer", t, op.typ)
		}
		return []symbols.InitValue{{Offset: offset, Expr: init}}, nil
	}
	if t.IsRef() {
		return c.staticRef(ns, t, init, offset)
	}
	val, got, err := c.fold(ns, init)
	if err != nil {
		return nil, err
	}
	if !types.InstanceOf(t, got) {
		return nil, c.mismatch(init.Span(), "initializer", t, got)
	}
	return []symbols.InitValue{{Offset: offset, Value: &val}}, nil
}

// staticRef accepts null (left as the zero slot) and function names.
func (c *Checker) staticRef(ns *symbols.Namespace, t types.Type, init ast.Expr, offset int) ([]symbols.InitValue, error) {
	switch e := init.(type) {
	case *ast.NullLit:
		return nil, nil
	case *ast.PathExpr:
		obj, err := c.lookup(ns, symbols.TableObjects, e.Path)
		if err != nil {
			return nil, err
		}
		fn, ok := obj.(*symbols.Function)
		if !ok {
			break
		}
		if !fn.Resolved {
			return nil, errDeferred
		}
		if got := fn.Type(); !types.InstanceOf(t, got) {
			return nil, c.mismatch(init.Span(), "initializer", t, got)
		}
		return []symbols.InitValue{{Offset: offset, Expr: init}}, nil
	}
	return nil, c.fail(diag.SemaNotConstant, init.Span(), "reference %s at namespace scope can only be initialized with null or a function", types.Present(t))
}
