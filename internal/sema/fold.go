package sema

import (
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/token"
	"quill/internal/types"
)

// fixedOne is 1.0 in 16.16 fixed point.
const fixedOne = 1 << 16

// fold evaluates a constant expression. References to constants or
// enumerators that are not resolved yet defer.
func (c *Checker) fold(ns *symbols.Namespace, e ast.Expr) (symbols.Value, types.Type, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		v, err := parseInt(e.Text)
		if err != nil {
			return symbols.Value{}, types.Type{}, c.fail(diag.SemaNotConstant, e.Span(), "integer literal %s does not fit in int", e.Text)
		}
		return intValue(v), types.Scalar(types.SpecInt), nil

	case *ast.FixedLit:
		f, err := strconv.ParseFloat(e.Text, 64)
		scaled := math.Round(f * fixedOne)
		if err != nil || math.Abs(scaled) > math.MaxInt32 {
			return symbols.Value{}, types.Type{}, c.fail(diag.SemaNotConstant, e.Span(), "fixed literal %s out of range", e.Text)
		}
		return symbols.Value{Spec: types.SpecFixed, Int: int32(scaled)}, types.Scalar(types.SpecFixed), nil

	case *ast.StringLit:
		return symbols.Value{Spec: types.SpecStr, Str: e.Value}, types.Scalar(types.SpecStr), nil

	case *ast.BoolLit:
		return boolValue(e.Value), types.Scalar(types.SpecBool), nil

	case *ast.PathExpr:
		obj, err := c.lookup(ns, symbols.TableObjects, e.Path)
		if err != nil {
			return symbols.Value{}, types.Type{}, err
		}
		switch obj := obj.(type) {
		case *symbols.Constant:
			if !obj.Resolved {
				return symbols.Value{}, types.Type{}, errDeferred
			}
			return obj.Value, obj.Type, nil
		case *symbols.Enumerator:
			if !obj.Resolved {
				return symbols.Value{}, types.Type{}, errDeferred
			}
			return intValue(obj.Value), types.EnumType(obj.Enum), nil
		}
		return symbols.Value{}, types.Type{}, c.fail(diag.SemaNotConstant, e.Span(), "'%s' is a %s, not a constant", e.Path, obj.Kind())

	case *ast.UnaryExpr:
		v, t, err := c.fold(ns, e.X)
		if err != nil {
			return symbols.Value{}, types.Type{}, err
		}
		return c.foldUnary(e, v, t)

	case *ast.BinaryExpr:
		l, lt, err := c.fold(ns, e.X)
		if err != nil {
			return symbols.Value{}, types.Type{}, err
		}
		r, rt, err := c.fold(ns, e.Y)
		if err != nil {
			return symbols.Value{}, types.Type{}, err
		}
		return c.foldBinary(e, l, r, lt, rt)

	case *ast.CondExpr:
		cond, ct, err := c.fold(ns, e.Cond)
		if err != nil {
			return symbols.Value{}, types.Type{}, err
		}
		if !truthy(arith(ct)) {
			return symbols.Value{}, types.Type{}, c.fail(diag.SemaInvalidOperands, e.Cond.Span(), "condition of type %s", types.Present(ct))
		}
		a, at, err := c.fold(ns, e.Then)
		if err != nil {
			return symbols.Value{}, types.Type{}, err
		}
		b, bt, err := c.fold(ns, e.Else)
		if err != nil {
			return symbols.Value{}, types.Type{}, err
		}
		common, ok := types.Common(at, bt)
		if !ok {
			return symbols.Value{}, types.Type{}, c.mismatch(e.Else.Span(), "conditional branches", at, bt)
		}
		if cond.Int != 0 || cond.Str != "" {
			return a, common, nil
		}
		return b, common, nil
	}
	return symbols.Value{}, types.Type{}, c.fail(diag.SemaNotConstant, e.Span(), "expression is not constant")
}

// parseInt accepts decimal and hexadecimal literals; hexadecimal ones may
// use the full 32-bit pattern.
func parseInt(text string) (int32, error) {
	if hex, ok := strings.CutPrefix(strings.ToLower(text), "0x"); ok {
		u, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, err
		}
		return int32(uint32(u)), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.Conv[int32](n)
}

func intValue(v int32) symbols.Value { return symbols.Value{Spec: types.SpecInt, Int: v} }

func boolValue(b bool) symbols.Value {
	if b {
		return symbols.Value{Spec: types.SpecBool, Int: 1}
	}
	return symbols.Value{Spec: types.SpecBool}
}

// arith is the specifier arithmetic dispatches on; enumerations count as
// int and everything else as none.
func arith(t types.Type) types.Spec {
	if t.Ref != nil || len(t.Dims) > 0 || t.Struct != nil {
		return types.SpecNone
	}
	if t.Enum != nil {
		return types.SpecInt
	}
	return t.Spec
}

func truthy(s types.Spec) bool {
	return s == types.SpecInt || s == types.SpecBool || s == types.SpecRaw
}

func (c *Checker) foldUnary(e *ast.UnaryExpr, v symbols.Value, t types.Type) (symbols.Value, types.Type, error) {
	spec := arith(t)
	switch {
	case e.Op == token.Bang && (truthy(spec) || spec == types.SpecFixed):
		return boolValue(v.Int == 0), types.Scalar(types.SpecBool), nil
	case e.Op == token.Minus && (spec == types.SpecInt || spec == types.SpecRaw || spec == types.SpecFixed):
		n, err := c.narrow(e.Span(), -int64(v.Int))
		return symbols.Value{Spec: v.Spec, Int: n}, types.Scalar(spec), err
	case e.Op == token.Tilde && (spec == types.SpecInt || spec == types.SpecRaw):
		return symbols.Value{Spec: v.Spec, Int: ^v.Int}, types.Scalar(spec), nil
	}
	return symbols.Value{}, types.Type{}, c.fail(diag.SemaInvalidOperands, e.Span(), "operator '%s' cannot apply to %s", e.Op, types.Present(t))
}

func (c *Checker) foldBinary(e *ast.BinaryExpr, l, r symbols.Value, lt, rt types.Type) (symbols.Value, types.Type, error) {
	a, b := arith(lt), arith(rt)
	if e.Op == token.AndAnd || e.Op == token.OrOr {
		if !truthy(a) || !truthy(b) {
			return symbols.Value{}, types.Type{}, c.invalidOperands(e, lt, rt)
		}
		if e.Op == token.AndAnd {
			return boolValue(l.Int != 0 && r.Int != 0), types.Scalar(types.SpecBool), nil
		}
		return boolValue(l.Int != 0 || r.Int != 0), types.Scalar(types.SpecBool), nil
	}

	spec := a
	switch {
	case a == types.SpecRaw && b.IsScalar():
		spec = b
	case b == types.SpecRaw && a.IsScalar():
	case a != b || !a.IsScalar():
		return symbols.Value{}, types.Type{}, c.invalidOperands(e, lt, rt)
	}
	if spec == types.SpecRaw {
		spec = types.SpecInt
	}

	if isComparison(e.Op) {
		var cmp int
		if spec == types.SpecStr {
			cmp = strings.Compare(l.Str, r.Str)
		} else {
			cmp = compareInt(l.Int, r.Int)
		}
		ok, valid := compareResult(e.Op, cmp, spec)
		if !valid {
			return symbols.Value{}, types.Type{}, c.invalidOperands(e, lt, rt)
		}
		return boolValue(ok), types.Scalar(types.SpecBool), nil
	}

	x, y := int64(l.Int), int64(r.Int)
	var res int64
	switch spec {
	case types.SpecStr:
		if e.Op != token.Plus {
			return symbols.Value{}, types.Type{}, c.invalidOperands(e, lt, rt)
		}
		return symbols.Value{Spec: types.SpecStr, Str: l.Str + r.Str}, types.Scalar(types.SpecStr), nil
	case types.SpecBool:
		switch e.Op {
		case token.Amp:
			res = x & y
		case token.Pipe:
			res = x | y
		case token.Caret:
			res = x ^ y
		default:
			return symbols.Value{}, types.Type{}, c.invalidOperands(e, lt, rt)
		}
		return boolValue(res != 0), types.Scalar(types.SpecBool), nil
	case types.SpecFixed:
		switch e.Op {
		case token.Plus:
			res = x + y
		case token.Minus:
			res = x - y
		case token.Star:
			res = (x * y) >> 16
		case token.Slash, token.Percent:
			if y == 0 {
				return symbols.Value{}, types.Type{}, c.fail(diag.SemaNotConstant, e.Span(), "division by zero in constant expression")
			}
			if e.Op == token.Slash {
				res = (x << 16) / y
			} else {
				res = x % y
			}
		default:
			return symbols.Value{}, types.Type{}, c.invalidOperands(e, lt, rt)
		}
	default:
		switch e.Op {
		case token.Plus:
			res = x + y
		case token.Minus:
			res = x - y
		case token.Star:
			res = x * y
		case token.Slash, token.Percent:
			if y == 0 {
				return symbols.Value{}, types.Type{}, c.fail(diag.SemaNotConstant, e.Span(), "division by zero in constant expression")
			}
			if e.Op == token.Slash {
				res = x / y
			} else {
				res = x % y
			}
		case token.Shl, token.Shr:
			if y < 0 || y > 31 {
				return symbols.Value{}, types.Type{}, c.fail(diag.SemaNotConstant, e.Y.Span(), "shift count %d out of range", y)
			}
			if e.Op == token.Shl {
				res = int64(int32(uint32(l.Int) << uint(y)))
			} else {
				res = x >> uint(y)
			}
		case token.Amp:
			res = x & y
		case token.Pipe:
			res = x | y
		case token.Caret:
			res = x ^ y
		default:
			return symbols.Value{}, types.Type{}, c.invalidOperands(e, lt, rt)
		}
	}
	n, err := c.narrow(e.Span(), res)
	if err != nil {
		return symbols.Value{}, types.Type{}, err
	}
	return symbols.Value{Spec: spec, Int: n}, types.Scalar(spec), nil
}

// narrow converts a folded result back to 32 bits.
func (c *Checker) narrow(sp source.Span, v int64) (int32, error) {
	n, err := safecast.Conv[int32](v)
	if err != nil {
		return 0, c.fail(diag.SemaNotConstant, sp, "constant %d overflows int", v)
	}
	return n, nil
}

func (c *Checker) invalidOperands(e *ast.BinaryExpr, lt, rt types.Type) error {
	return c.fail(diag.SemaInvalidOperands, e.Span(), "operator '%s' cannot apply to %s and %s", e.Op, types.Present(lt), types.Present(rt))
}

func isComparison(op token.Kind) bool {
	switch op {
	case token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq:
		return true
	}
	return false
}

func compareInt(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareResult applies op to a three-way comparison. Booleans only
// support equality.
func compareResult(op token.Kind, cmp int, spec types.Spec) (result, valid bool) {
	switch op {
	case token.EqEq:
		return cmp == 0, true
	case token.BangEq:
		return cmp != 0, true
	}
	if spec == types.SpecBool {
		return false, false
	}
	switch op {
	case token.Lt:
		return cmp < 0, true
	case token.LtEq:
		return cmp <= 0, true
	case token.Gt:
		return cmp > 0, true
	case token.GtEq:
		return cmp >= 0, true
	}
	return false, false
}
