package sema

import (
	"context"
	"errors"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/trace"
	"quill/internal/types"
)

// funcState is the per-body state of the statement checker.
type funcState struct {
	ret    types.Type
	script bool
	loops  int
	slots  int
	frag   *symbols.Fragment // local using directives
}

// CheckBodies checks every function and script body not checked yet.
// Lookups inside bodies never defer.
func (c *Checker) CheckBodies(ctx context.Context) error {
	c.tracer = trace.FromContext(ctx)
	span := trace.Begin(c.tracer, trace.ScopePass, "bodies", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	c.errors = true
	for _, lib := range c.u.Libraries {
		if lib.Cached {
			continue
		}
		if _, err := c.libraryPass(lib, span.ID(), c.checkBody); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkBody(obj symbols.Object) (bool, error) {
	if c.checked[obj] {
		return false, nil
	}
	var err error
	switch obj := obj.(type) {
	case *symbols.Function:
		err = c.checkFunction(obj.NS, obj.Params, obj.Return, false, obj.Decl.Body)
	case *symbols.Script:
		err = c.checkFunction(obj.NS, obj.Params, types.Scalar(types.SpecVoid), true, obj.Decl.Body)
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	c.checked[obj] = true
	return true, nil
}

func (c *Checker) checkFunction(ns *symbols.Namespace, params []*symbols.Param, ret types.Type, script bool, body *ast.BlockStmt) error {
	if body == nil {
		return nil
	}
	c.scopes.Push(ns, true)
	defer c.scopes.Pop()
	for _, p := range params {
		if p.Name == source.NoStringID {
			continue
		}
		if err := c.bindErr(c.scopes.Bind(ns, symbols.TableObjects, p.Name, p), p.Span); err != nil {
			return err
		}
	}
	prev := c.fn
	c.fn = &funcState{ret: ret, script: script, slots: len(params), frag: &symbols.Fragment{NS: ns}}
	defer func() { c.fn = prev }()
	return c.stmts(ns, body.Stmts)
}

func (c *Checker) stmts(ns *symbols.Namespace, list []ast.Stmt) error {
	for _, s := range list {
		if err := c.stmt(ns, s); err != nil {
			return err
		}
	}
	return nil
}

// scoped checks s in its own block scope.
func (c *Checker) scoped(ns *symbols.Namespace, s ast.Stmt) error {
	if s == nil {
		return nil
	}
	if b, ok := s.(*ast.BlockStmt); ok {
		return c.stmt(ns, b)
	}
	c.scopes.Push(ns, false)
	defer c.scopes.Pop()
	return c.stmt(ns, s)
}

func (c *Checker) stmt(ns *symbols.Namespace, s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.BlockStmt:
		c.scopes.Push(ns, false)
		defer c.scopes.Pop()
		return c.stmts(ns, s.Stmts)

	case *ast.DeclStmt:
		return c.localDecl(ns, s.Decl)

	case *ast.ExprStmt:
		_, err := c.expr(ns, s.X)
		return err

	case *ast.IfStmt:
		if err := c.cond(ns, s.Cond); err != nil {
			return err
		}
		if err := c.scoped(ns, s.Then); err != nil {
			return err
		}
		return c.scoped(ns, s.Else)

	case *ast.WhileStmt:
		if err := c.cond(ns, s.Cond); err != nil {
			return err
		}
		c.fn.loops++
		defer func() { c.fn.loops-- }()
		return c.scoped(ns, s.Body)

	case *ast.ReturnStmt:
		return c.returnStmt(ns, s)

	case *ast.BreakStmt:
		if c.fn.loops == 0 {
			return c.fail(diag.SemaMisplacedJump, s.Span(), "break outside of a loop")
		}
	case *ast.ContinueStmt:
		if c.fn.loops == 0 {
			return c.fail(diag.SemaMisplacedJump, s.Span(), "continue outside of a loop")
		}
	}
	return nil
}

func (c *Checker) cond(ns *symbols.Namespace, e ast.Expr) error {
	op, err := c.value(ns, e)
	if err != nil {
		return err
	}
	if !testable(op.typ) {
		return c.fail(diag.SemaInvalidOperands, e.Span(), "%s cannot be used as a condition", types.Present(op.typ))
	}
	return nil
}

func (c *Checker) returnStmt(ns *symbols.Namespace, s *ast.ReturnStmt) error {
	want := c.fn.ret
	if s.Value == nil {
		if !want.IsVoid() {
			return c.fail(diag.SemaTypeMismatch, s.Span(), "missing return value of type %s", types.Present(want))
		}
		return nil
	}
	if want.IsVoid() {
		what := "void function"
		if c.fn.script {
			what = "script"
		}
		return c.fail(diag.SemaTypeMismatch, s.Value.Span(), "%s cannot return a value", what)
	}
	op, err := c.value(ns, s.Value)
	if err != nil {
		return err
	}
	if !types.InstanceOf(want, op.typ) {
		return c.mismatch(s.Value.Span(), "return value", want, op.typ)
	}
	return nil
}

// localDecl resolves a declaration inside a body at once. Names are bound
// after their initializer is checked, so `int x = x;` sees the outer x.
func (c *Checker) localDecl(ns *symbols.Namespace, d ast.Decl) error {
	switch d := d.(type) {
	case *ast.VarDecl:
		for _, dcl := range d.Vars {
			if err := c.localVar(ns, d, dcl); err != nil {
				return err
			}
		}
		return nil

	case *ast.ConstDecl:
		k := &symbols.Constant{Decl: d}
		k.Name = c.u.Strings.Intern(d.Name.Name)
		c.stampLocal(ns, k, d.Name.Span)
		if err := c.now(c.resolveConstant(k), k); err != nil {
			return err
		}
		return c.bindErr(c.scopes.Bind(ns, symbols.TableObjects, k.Name, k), d.Name.Span)

	case *ast.EnumDecl:
		_, err := c.localEnum(ns, d)
		return err

	case *ast.StructDecl:
		_, err := c.localStruct(ns, d)
		return err

	case *ast.TypedefDecl:
		ta := &symbols.TypeAlias{Decl: d}
		ta.Name = c.u.Strings.Intern(d.Name.Name)
		c.stampLocal(ns, ta, d.Name.Span)
		if err := c.now(c.resolveTypedef(ta), ta); err != nil {
			return err
		}
		return c.bindErr(c.scopes.Bind(ns, symbols.TableObjects, ta.Name, ta), d.Name.Span)

	case *ast.UsingDecl:
		_, err := c.applyUsing(c.fn.frag, d)
		if errors.Is(err, errDeferred) {
			return c.fail(diag.SemaUnresolved, d.Span(), "unable to resolve using directive")
		}
		return err
	}
	return c.fail(diag.SemaUnresolved, d.Span(), "declaration not allowed inside a body")
}

func (c *Checker) localVar(ns *symbols.Namespace, d *ast.VarDecl, dcl *ast.Declarator) error {
	v := &symbols.Variable{Decl: d, Declarator: dcl, Storage: symbols.StorageLocal}
	v.Name = c.u.Strings.Intern(dcl.Name.Name)
	c.stampLocal(ns, v, dcl.Name.Span)

	t, err := c.varType(ns, v)
	if err != nil {
		return c.now(err, v)
	}
	size, err := c.sizeOf(t, dcl.Name.Span)
	if err != nil {
		return c.now(err, v)
	}
	if dcl.Init == nil {
		if t.ContainsRef(memberTypes) {
			return c.bail(diag.ReportError(c.reporter, diag.SemaUninitializedRef, dcl.Name.Span,
				"variable '"+dcl.Name.Name+"' of type "+types.Present(t)+" must be initialized").
				WithNote(d.Type.Span, "the type holds a reference"))
		}
	} else {
		values, err := c.initValues(ns, t, dcl.Init, 0, false)
		if err != nil {
			return c.now(err, v)
		}
		v.Values = values
	}
	v.Type = t
	v.Size = size
	v.Index = c.fn.slots
	c.fn.slots += size
	v.Resolved = true
	return c.bindErr(c.scopes.Bind(ns, symbols.TableObjects, v.Name, v), dcl.Name.Span)
}

func memberTypes(s types.Structure) []types.Type {
	return s.(*symbols.Structure).MemberTypes()
}
