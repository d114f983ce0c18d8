package sema

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/token"
	"quill/internal/types"
)

var keywordSpecs = map[token.Kind]types.Spec{
	token.KwRaw:   types.SpecRaw,
	token.KwInt:   types.SpecInt,
	token.KwFixed: types.SpecFixed,
	token.KwBool:  types.SpecBool,
	token.KwStr:   types.SpecStr,
	token.KwVoid:  types.SpecVoid,
}

// typeOf resolves a specifier together with its written references.
func (c *Checker) typeOf(ns *symbols.Namespace, ts *ast.TypeSpec) (types.Type, error) {
	t, err := c.baseType(ns, ts)
	if err != nil {
		return types.Type{}, err
	}
	for _, r := range ts.Refs {
		if t, err = c.applyRef(ns, t, r); err != nil {
			return types.Type{}, err
		}
	}
	return t, nil
}

func (c *Checker) baseType(ns *symbols.Namespace, ts *ast.TypeSpec) (types.Type, error) {
	switch ts.Kind {
	case ast.SpecKeyword:
		return types.Scalar(keywordSpecs[ts.Keyword]), nil

	case ast.SpecEnum:
		if ts.Enum != nil {
			en, err := c.inlineEnum(ns, ts.Enum)
			if err != nil {
				return types.Type{}, err
			}
			return types.EnumType(en), nil
		}
		obj, err := c.lookup(ns, symbols.TableEnums, ts.Path)
		if err != nil {
			return types.Type{}, err
		}
		en, ok := obj.(*symbols.Enumeration)
		if !ok {
			return types.Type{}, c.notAType(ts.Path, obj)
		}
		return types.EnumType(en), nil

	case ast.SpecStruct:
		if ts.Struct != nil {
			st, err := c.inlineStruct(ns, ts.Struct)
			if err != nil {
				return types.Type{}, err
			}
			return types.StructValue(st), nil
		}
		obj, err := c.lookup(ns, symbols.TableStructs, ts.Path)
		if err != nil {
			return types.Type{}, err
		}
		st, ok := obj.(*symbols.Structure)
		if !ok {
			return types.Type{}, c.notAType(ts.Path, obj)
		}
		return types.StructValue(st), nil
	}

	obj, _, err := c.lookupAny(ns, ts.Path)
	if err != nil {
		return types.Type{}, err
	}
	switch obj := obj.(type) {
	case *symbols.TypeAlias:
		if !obj.Resolved {
			return types.Type{}, errDeferred
		}
		return obj.Type.Clone(), nil
	case *symbols.Structure:
		return types.StructValue(obj), nil
	case *symbols.Enumeration:
		return types.EnumType(obj), nil
	}
	return types.Type{}, c.notAType(ts.Path, obj)
}

func (c *Checker) notAType(p *ast.Path, obj symbols.Object) error {
	return c.bail(diag.ReportError(c.reporter, diag.SemaNotAType, p.Span, "'"+p.String()+"' is a "+obj.Kind().String()+", not a type").
		WithNote(obj.Base().Span, "declared here"))
}

// applyRef wraps t in one written reference. A reference may only target
// an array, a structure or a function.
func (c *Checker) applyRef(ns *symbols.Namespace, t types.Type, r ast.RefSpec) (types.Type, error) {
	switch r.Kind {
	case ast.RefArray:
		return arrayRef(t, r.Dims), nil

	case ast.RefShape:
		switch {
		case len(t.Dims) > 0:
			return arrayRef(t, 0), nil
		case t.IsStructValue():
			return types.WrapRef(t, types.Ref{Kind: types.RefStructure}), nil
		}
		b := diag.ReportError(c.reporter, diag.SemaInvalidRefTarget, r.Span,
			"invalid reference to "+types.Present(t))
		b.WithNote(r.Span, "a reference must target an array, a structure or a function")
		return types.Type{}, c.bail(b)

	case ast.RefFunction:
		if err := c.byValue(t, r.Span, "function returns"); err != nil {
			return types.Type{}, err
		}
		params, minArgs, err := c.paramTypes(ns, r.Params)
		if err != nil {
			return types.Type{}, err
		}
		return types.FuncRef(t, params, minArgs, len(params), r.MsgBuild), nil
	}
	return t, nil
}

// arrayRef turns t into a reference to an array of extra+len(t.Dims)
// dimensions; the undecayed dimensions of t fold into the reference.
func arrayRef(t types.Type, extra int) types.Type {
	el := t.Clone()
	n := len(el.Dims)
	el.Dims = nil
	return types.WrapRef(el, types.Ref{Kind: types.RefArray, Dims: extra + n})
}

// byValue rejects structures and arrays passed or returned by value.
func (c *Checker) byValue(t types.Type, sp source.Span, what string) error {
	switch {
	case t.IsStructValue():
		ref := types.WrapRef(t, types.Ref{Kind: types.RefStructure})
		return c.bail(diag.ReportError(c.reporter, diag.SemaStructByValue, sp, what+" structure "+types.Present(t)+" by value").
			WithNote(sp, "use a reference instead: "+types.Present(ref)))
	case len(t.Dims) > 0:
		return c.bail(diag.ReportError(c.reporter, diag.SemaStructByValue, sp, what+" array "+types.Present(t)+" by value").
			WithNote(sp, "use a reference instead: "+types.Present(arrayRef(t, 0))))
	}
	return nil
}

// paramTypes resolves parameter types and returns the minimum arity: the
// number of parameters before the first one with a default.
func (c *Checker) paramTypes(ns *symbols.Namespace, params []*ast.Param) ([]types.Type, int, error) {
	out := make([]types.Type, len(params))
	minArgs := -1
	for i, p := range params {
		t, err := c.typeOf(ns, p.Type)
		if err != nil {
			return nil, 0, err
		}
		if t.IsVoid() {
			return nil, 0, c.fail(diag.SemaVoidValue, p.Span, "parameter declared void")
		}
		if err := c.byValue(t, p.Span, "parameter passes"); err != nil {
			return nil, 0, err
		}
		switch {
		case p.Default != nil && minArgs < 0:
			minArgs = i
		case p.Default == nil && minArgs >= 0:
			return nil, 0, c.fail(diag.SemaArity, p.Span, "parameter %d needs a default value: an earlier parameter has one", i+1)
		}
		out[i] = t
	}
	if minArgs < 0 {
		minArgs = len(params)
	}
	return out, minArgs, nil
}

// inlineEnum returns the object of an enum body written in a specifier.
// Bodies inside function bodies are created and resolved on first use.
func (c *Checker) inlineEnum(ns *symbols.Namespace, d *ast.EnumDecl) (*symbols.Enumeration, error) {
	if obj, ok := c.u.Decls[d].(*symbols.Enumeration); ok {
		return obj, nil
	}
	return c.localEnum(ns, d)
}

func (c *Checker) inlineStruct(ns *symbols.Namespace, d *ast.StructDecl) (*symbols.Structure, error) {
	if obj, ok := c.u.Decls[d].(*symbols.Structure); ok {
		return obj, nil
	}
	return c.localStruct(ns, d)
}
