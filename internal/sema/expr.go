package sema

import (
	"strconv"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/token"
	"quill/internal/types"
)

// operand is a checked expression. Types of arrays, structures and
// functions are already decayed.
type operand struct {
	typ        types.Type
	assignable bool
}

// value checks e and rejects void results.
func (c *Checker) value(ns *symbols.Namespace, e ast.Expr) (operand, error) {
	op, err := c.expr(ns, e)
	if err != nil {
		return operand{}, err
	}
	if op.typ.IsVoid() {
		return operand{}, c.fail(diag.SemaVoidValue, e.Span(), "void value used in an expression")
	}
	return op, nil
}

func (c *Checker) expr(ns *symbols.Namespace, e ast.Expr) (operand, error) {
	switch e := e.(type) {
	case *ast.IntLit, *ast.FixedLit, *ast.StringLit, *ast.BoolLit:
		_, t, err := c.fold(ns, e)
		return operand{typ: t}, err

	case *ast.NullLit:
		return operand{typ: types.Null()}, nil

	case *ast.PathExpr:
		return c.pathValue(ns, e)

	case *ast.UnaryExpr:
		x, err := c.value(ns, e.X)
		if err != nil {
			return operand{}, err
		}
		return c.unary(e, x)

	case *ast.BinaryExpr:
		x, err := c.value(ns, e.X)
		if err != nil {
			return operand{}, err
		}
		y, err := c.value(ns, e.Y)
		if err != nil {
			return operand{}, err
		}
		t, err := c.binary(e.Op, e.Span(), x.typ, y.typ)
		return operand{typ: t}, err

	case *ast.AssignExpr:
		return c.assign(ns, e)

	case *ast.CondExpr:
		if err := c.cond(ns, e.Cond); err != nil {
			return operand{}, err
		}
		a, err := c.value(ns, e.Then)
		if err != nil {
			return operand{}, err
		}
		b, err := c.value(ns, e.Else)
		if err != nil {
			return operand{}, err
		}
		t, ok := types.Common(a.typ, b.typ)
		if !ok {
			return operand{}, c.mismatch(e.Else.Span(), "conditional branches", a.typ, b.typ)
		}
		return operand{typ: t}, nil

	case *ast.CallExpr:
		return c.call(ns, e)

	case *ast.IndexExpr:
		x, err := c.value(ns, e.X)
		if err != nil {
			return operand{}, err
		}
		el, ok := x.typ.Element()
		if !ok {
			return operand{}, c.fail(diag.SemaInvalidOperands, e.X.Span(), "%s cannot be subscripted", types.Present(x.typ))
		}
		idx, err := c.value(ns, e.Index)
		if err != nil {
			return operand{}, err
		}
		if s := arith(idx.typ); s != types.SpecInt && s != types.SpecRaw {
			return operand{}, c.fail(diag.SemaInvalidOperands, e.Index.Span(), "subscript must be an integer, found %s", types.Present(idx.typ))
		}
		return place(el), nil

	case *ast.MemberExpr:
		x, err := c.value(ns, e.X)
		if err != nil {
			return operand{}, err
		}
		target, ok := x.typ.Target()
		st, isStruct := target.Struct.(*symbols.Structure)
		if !ok || !isStruct {
			return operand{}, c.fail(diag.SemaInvalidOperands, e.X.Span(), "%s has no members", types.Present(x.typ))
		}
		id := c.u.Strings.Intern(e.Name.Name)
		for _, m := range st.Members {
			if m.Name == id {
				return place(m.Type), nil
			}
		}
		return operand{}, c.bail(diag.ReportError(c.reporter, diag.SemaNoMember, e.Name.Span,
			"structure "+st.StructName()+" has no member '"+e.Name.Name+"'").
			WithNote(st.Span, "structure declared here"))

	case *ast.InitList:
		return operand{}, c.fail(diag.SemaBadInitializer, e.Span(), "brace initializer outside of a declaration")
	}
	return operand{}, c.fail(diag.SemaInvalidOperands, e.Span(), "unsupported expression")
}

// place is a storage location of type t: scalars and references are
// assignable, arrays and structures decay to references.
func place(t types.Type) operand {
	out := t.Clone()
	assignable := len(out.Dims) == 0 && !out.IsStructValue()
	types.Decay(&out)
	return operand{typ: out, assignable: assignable}
}

func (c *Checker) pathValue(ns *symbols.Namespace, e *ast.PathExpr) (operand, error) {
	obj, err := c.lookup(ns, symbols.TableObjects, e.Path)
	if err != nil {
		return operand{}, err
	}
	switch obj := obj.(type) {
	case *symbols.Variable:
		return place(obj.Type), nil
	case *symbols.Param:
		return place(obj.Type), nil
	case *symbols.Constant:
		return operand{typ: obj.Type}, nil
	case *symbols.Enumerator:
		return operand{typ: types.EnumType(obj.Enum)}, nil
	case *symbols.Function:
		return operand{typ: obj.Type()}, nil
	}
	return operand{}, c.bail(diag.ReportError(c.reporter, diag.SemaNotAValue, e.Span(),
		"'"+e.Path.String()+"' is a "+obj.Kind().String()+", not a value").
		WithNote(obj.Base().Span, "declared here"))
}

// testable reports types usable as conditions: numbers, booleans and
// references (tested against null).
func testable(t types.Type) bool {
	if t.IsRef() {
		return true
	}
	s := arith(t)
	return truthy(s) || s == types.SpecFixed
}

func (c *Checker) unary(e *ast.UnaryExpr, x operand) (operand, error) {
	switch types.Describe(x.typ) {
	case types.DescPrimitive, types.DescEnum:
		s := arith(x.typ)
		switch {
		case e.Op == token.Bang && testable(x.typ):
			return operand{typ: types.Scalar(types.SpecBool)}, nil
		case e.Op == token.Minus && (s == types.SpecInt || s == types.SpecFixed || s == types.SpecRaw):
			return operand{typ: types.Scalar(s)}, nil
		case e.Op == token.Tilde && (s == types.SpecInt || s == types.SpecRaw):
			return operand{typ: types.Scalar(s)}, nil
		}
	default:
		if e.Op == token.Bang {
			return operand{typ: types.Scalar(types.SpecBool)}, nil
		}
	}
	return operand{}, c.fail(diag.SemaInvalidOperands, e.Span(), "operator '%s' cannot apply to %s", e.Op, types.Present(x.typ))
}

// binary types a binary operation, dispatching on the operand kinds.
func (c *Checker) binary(op token.Kind, sp source.Span, x, y types.Type) (types.Type, error) {
	boolean := types.Scalar(types.SpecBool)
	switch op {
	case token.AndAnd, token.OrOr:
		if testable(x) && testable(y) {
			return boolean, nil
		}
	case token.EqEq, token.BangEq:
		if types.Same(x, y) {
			return boolean, nil
		}
		return types.Type{}, c.operandMismatch(op, sp, x, y)
	}

	dx, dy := types.Describe(x), types.Describe(y)
	if (dx == types.DescEnum || dy == types.DescEnum) && isComparison(op) {
		if types.Same(x, y) {
			return boolean, nil
		}
		return types.Type{}, c.operandMismatch(op, sp, x, y)
	}
	a, b := arith(x), arith(y)
	if !a.IsScalar() || !b.IsScalar() {
		return types.Type{}, c.fail(diag.SemaInvalidOperands, sp, "operator '%s' cannot apply to %s and %s", op, types.Present(x), types.Present(y))
	}
	spec := a
	switch {
	case a == types.SpecRaw:
		spec = b
	case b == types.SpecRaw:
	case a != b:
		return types.Type{}, c.operandMismatch(op, sp, x, y)
	}
	if !operatorAllows(op, spec) {
		return types.Type{}, c.fail(diag.SemaInvalidOperands, sp, "operator '%s' cannot apply to %s and %s", op, types.Present(x), types.Present(y))
	}
	if isComparison(op) {
		return boolean, nil
	}
	return types.Scalar(spec), nil
}

// operatorAllows lists the specifiers each operator family accepts.
func operatorAllows(op token.Kind, s types.Spec) bool {
	switch op {
	case token.Plus:
		return s == types.SpecInt || s == types.SpecFixed || s == types.SpecStr || s == types.SpecRaw
	case token.Minus, token.Star, token.Slash, token.Percent:
		return s == types.SpecInt || s == types.SpecFixed || s == types.SpecRaw
	case token.Shl, token.Shr:
		return s == types.SpecInt || s == types.SpecRaw
	case token.Amp, token.Pipe, token.Caret:
		return s == types.SpecInt || s == types.SpecBool || s == types.SpecRaw
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return s == types.SpecInt || s == types.SpecFixed || s == types.SpecStr || s == types.SpecRaw
	case token.AndAnd, token.OrOr:
		return false
	}
	return false
}

func (c *Checker) operandMismatch(op token.Kind, sp source.Span, x, y types.Type) error {
	return c.fail(diag.SemaTypeMismatch, sp, "operands of '%s' have incompatible types %s and %s", op, types.Present(x), types.Present(y))
}

var compoundOps = map[token.Kind]token.Kind{
	token.PlusAssign:    token.Plus,
	token.MinusAssign:   token.Minus,
	token.StarAssign:    token.Star,
	token.SlashAssign:   token.Slash,
	token.PercentAssign: token.Percent,
}

func (c *Checker) assign(ns *symbols.Namespace, e *ast.AssignExpr) (operand, error) {
	target, err := c.expr(ns, e.Target)
	if err != nil {
		return operand{}, err
	}
	if !target.assignable {
		return operand{}, c.fail(diag.SemaNotAssignable, e.Target.Span(), "cannot assign to this expression")
	}
	val, err := c.value(ns, e.Value)
	if err != nil {
		return operand{}, err
	}
	if base, ok := compoundOps[e.Op]; ok {
		if _, err := c.binary(base, e.Span(), target.typ, val.typ); err != nil {
			return operand{}, err
		}
		return operand{typ: target.typ}, nil
	}
	if !types.InstanceOf(target.typ, val.typ) {
		return operand{}, c.mismatch(e.Value.Span(), "assignment", target.typ, val.typ)
	}
	return operand{typ: target.typ}, nil
}

func (c *Checker) call(ns *symbols.Namespace, e *ast.CallExpr) (operand, error) {
	fn, err := c.value(ns, e.Fn)
	if err != nil {
		return operand{}, err
	}
	ref := fn.typ.Ref
	if ref == nil || ref.Kind != types.RefFunction {
		return operand{}, c.fail(diag.SemaNotCallable, e.Fn.Span(), "%s is not callable", types.Present(fn.typ))
	}
	if n := len(e.Args); n < ref.Min || n > ref.Max {
		return operand{}, c.fail(diag.SemaArity, e.Span(), "wrong number of arguments: got %d, want %s", n, arity(ref.Min, ref.Max))
	}
	for i, a := range e.Args {
		arg, err := c.value(ns, a)
		if err != nil {
			return operand{}, err
		}
		if !types.InstanceOf(ref.Params[i], arg.typ) {
			return operand{}, c.mismatch(a.Span(), "argument "+strconv.Itoa(i+1), ref.Params[i], arg.typ)
		}
	}
	ret, _ := fn.typ.Return()
	return operand{typ: ret}, nil
}

func arity(min, max int) string {
	if min == max {
		return strconv.Itoa(min)
	}
	return strconv.Itoa(min) + ".." + strconv.Itoa(max)
}
