package sema

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/symbols"
	"quill/internal/types"
)

func (c *Checker) resolveConstant(k *symbols.Constant) error {
	var want types.Type
	if k.Decl.Type != nil {
		t, err := c.typeOf(k.NS, k.Decl.Type)
		if err != nil {
			return err
		}
		if arith(t) == types.SpecNone || t.IsVoid() {
			return c.fail(diag.SemaNotConstant, k.Decl.Type.Span, "constant '%s' needs a scalar type, found %s", c.name(k), types.Present(t))
		}
		want = t
	}
	val, got, err := c.fold(k.NS, k.Decl.Value)
	if err != nil {
		return err
	}
	if k.Decl.Type != nil {
		if !types.InstanceOf(want, got) {
			return c.mismatch(k.Decl.Value.Span(), "constant '"+c.name(k)+"'", want, got)
		}
		got = want
	}
	k.Type = got
	k.Value = val
	k.Resolved = true
	return nil
}

func (c *Checker) resolveTypedef(ta *symbols.TypeAlias) error {
	t, err := c.typeOf(ta.NS, ta.Decl.Type)
	if err != nil {
		return err
	}
	dims, err := c.dims(ta.NS, ta.Decl.Dims, nil)
	if err != nil {
		return err
	}
	if len(dims) > 0 {
		if t.IsVoid() {
			return c.fail(diag.SemaVoidValue, ta.Span, "array of void")
		}
		t = types.ArrayValue(t, dims)
	}
	ta.Type = t
	ta.Resolved = true
	return nil
}

// varType resolves the declared type of one declarator, dimensions
// included.
func (c *Checker) varType(ns *symbols.Namespace, v *symbols.Variable) (types.Type, error) {
	t, err := c.typeOf(ns, v.Decl.Type)
	if err != nil {
		return types.Type{}, err
	}
	dims, err := c.dims(ns, v.Declarator.Dims, v.Declarator.Init)
	if err != nil {
		return types.Type{}, err
	}
	if t.IsVoid() {
		return types.Type{}, c.fail(diag.SemaVoidValue, v.Span, "variable '%s' declared void", c.name(v))
	}
	if len(dims) > 0 {
		t = types.ArrayValue(t, dims)
	}
	return t, nil
}

// resolveVar resolves a namespace-scope variable. Its initializer must
// fold; nothing is stored on the object before everything succeeded.
func (c *Checker) resolveVar(v *symbols.Variable) error {
	t, err := c.varType(v.NS, v)
	if err != nil {
		return err
	}
	size, err := c.sizeOf(t, v.Span)
	if err != nil {
		return err
	}
	index := -1
	if v.Declarator.Index != nil {
		if index, err = c.storageIndex(v); err != nil {
			return err
		}
	}
	var values []symbols.InitValue
	if v.Declarator.Init != nil {
		if values, err = c.initValues(v.NS, t, v.Declarator.Init, 0, true); err != nil {
			return err
		}
	}
	if index >= 0 {
		if err := c.reserveIndex(v, index); err != nil {
			return err
		}
	}
	v.Type = t
	v.Size = size
	v.Values = values
	v.Resolved = true
	return nil
}

// resolveFunc resolves the signature; the body is checked after the
// fixpoint.
func (c *Checker) resolveFunc(fn *symbols.Function) error {
	d := fn.Decl
	ret, err := c.typeOf(fn.NS, d.Type)
	if err != nil {
		return err
	}
	if err := c.byValue(ret, d.Type.Span, "function '"+d.Name.Name+"' returns"); err != nil {
		return err
	}
	ptypes, minArgs, err := c.paramTypes(fn.NS, d.Params)
	if err != nil {
		return err
	}
	if err := c.checkDefaults(fn.NS, d.Params, ptypes); err != nil {
		return err
	}
	fn.Return = ret
	fn.Params = c.newParams(fn.NS, d.Params, ptypes)
	fn.Min, fn.Max = minArgs, len(d.Params)
	fn.MsgBuild = d.MsgBuild
	fn.Resolved = true
	return nil
}

func (c *Checker) resolveScript(sc *symbols.Script) error {
	ptypes, _, err := c.paramTypes(sc.NS, sc.Decl.Params)
	if err != nil {
		return err
	}
	for i, t := range ptypes {
		if s := arith(t); s != types.SpecInt && s != types.SpecRaw || t.Enum != nil {
			return c.fail(diag.SemaTypeMismatch, sc.Decl.Params[i].Span, "script parameters must be int, found %s", types.Present(t))
		}
		if sc.Decl.Params[i].Default != nil {
			return c.fail(diag.SemaArity, sc.Decl.Params[i].Span, "script parameters cannot have default values")
		}
	}
	sc.Params = c.newParams(sc.NS, sc.Decl.Params, ptypes)
	sc.Resolved = true
	return nil
}

func (c *Checker) newParams(ns *symbols.Namespace, params []*ast.Param, ptypes []types.Type) []*symbols.Param {
	out := make([]*symbols.Param, len(params))
	for i, p := range params {
		param := &symbols.Param{Decl: p, Type: ptypes[i], Index: i}
		if !p.Name.IsZero() {
			param.Name = c.u.Strings.Intern(p.Name.Name)
		}
		param.Span = p.Span
		param.NS = ns
		param.Library = c.lib
		param.Resolved = true
		out[i] = param
	}
	return out
}

// checkDefaults folds default argument values against their parameters.
func (c *Checker) checkDefaults(ns *symbols.Namespace, params []*ast.Param, ptypes []types.Type) error {
	for i, p := range params {
		if p.Default == nil {
			continue
		}
		if ptypes[i].IsRef() {
			if _, ok := p.Default.(*ast.NullLit); ok {
				continue
			}
			return c.fail(diag.SemaNotConstant, p.Default.Span(), "default of a reference parameter must be null")
		}
		_, got, err := c.fold(ns, p.Default)
		if err != nil {
			return err
		}
		if !types.InstanceOf(ptypes[i], got) {
			return c.mismatch(p.Default.Span(), "default argument", ptypes[i], got)
		}
	}
	return nil
}
