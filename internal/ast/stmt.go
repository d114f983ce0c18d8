package ast

import (
	"quill/internal/source"
)

type Stmt interface {
	Span() source.Span
	stmtNode()
}

type StmtBase struct {
	Sp source.Span
}

func (s *StmtBase) Span() source.Span { return s.Sp }
func (*StmtBase) stmtNode()           {}

type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

type DeclStmt struct {
	StmtBase
	Decl Decl
}

type ExprStmt struct {
	StmtBase
	X Expr
}

type IfStmt struct {
	StmtBase
	Cond Expr
	Then Stmt
	Else Stmt
}

type WhileStmt struct {
	StmtBase
	Cond Expr
	Body Stmt
}

type ReturnStmt struct {
	StmtBase
	Value Expr
}

type BreakStmt struct{ StmtBase }

type ContinueStmt struct{ StmtBase }
