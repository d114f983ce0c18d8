package ast

import (
	"quill/internal/source"
	"quill/internal/token"
)

type Expr interface {
	Span() source.Span
	exprNode()
}

type ExprBase struct {
	Sp source.Span
}

func (e *ExprBase) Span() source.Span { return e.Sp }
func (*ExprBase) exprNode()           {}

// IntLit keeps the literal text; folding happens in the resolver.
type IntLit struct {
	ExprBase
	Text string
}

type FixedLit struct {
	ExprBase
	Text string
}

// StringLit holds the unquoted value.
type StringLit struct {
	ExprBase
	Value string
}

type BoolLit struct {
	ExprBase
	Value bool
}

type NullLit struct{ ExprBase }

type PathExpr struct {
	ExprBase
	Path *Path
}

type UnaryExpr struct {
	ExprBase
	Op token.Kind
	X  Expr
}

type BinaryExpr struct {
	ExprBase
	Op   token.Kind
	X, Y Expr
}

type AssignExpr struct {
	ExprBase
	Op     token.Kind
	Target Expr
	Value  Expr
}

type CondExpr struct {
	ExprBase
	Cond, Then, Else Expr
}

type CallExpr struct {
	ExprBase
	Fn   Expr
	Args []Expr
}

type IndexExpr struct {
	ExprBase
	X, Index Expr
}

type MemberExpr struct {
	ExprBase
	X    Expr
	Name Ident
}

// InitList is a brace initializer `{a, b, {c}}`.
type InitList struct {
	ExprBase
	Elems []Expr
}
