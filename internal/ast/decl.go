package ast

import (
	"quill/internal/source"
)

// Decl is a declaration at namespace or block scope.
type Decl interface {
	Span() source.Span
	IsPrivate() bool
	Base() *DeclBase
}

// DeclBase carries what every declaration shares.
type DeclBase struct {
	Sp      source.Span
	Private bool
}

func (d *DeclBase) Span() source.Span { return d.Sp }
func (d *DeclBase) IsPrivate() bool   { return d.Private }
func (d *DeclBase) Base() *DeclBase   { return d }

// NamespaceDecl is one `namespace a::b { ... }` fragment.
type NamespaceDecl struct {
	DeclBase
	Path  *Path
	Decls []Decl
}

type UsingKind uint8

const (
	UsingLink      UsingKind = iota // using a::b;
	UsingSelective                  // using a::b: x, y = z;
	UsingAlias                      // using n = a::b;
)

type ItemTable uint8

const (
	ItemObject ItemTable = iota
	ItemStruct
	ItemEnum
)

// UsingItem is one entry of a selective import; Rename is zero when absent.
type UsingItem struct {
	Table  ItemTable
	Name   Ident
	Rename Ident
	Span   source.Span
}

// Bound returns the name the item is visible under.
func (it UsingItem) Bound() Ident {
	if !it.Rename.IsZero() {
		return it.Rename
	}
	return it.Name
}

type UsingDecl struct {
	DeclBase
	Kind  UsingKind
	Path  *Path
	Items []UsingItem
	Alias Ident
}

type Enumerator struct {
	Name  Ident
	Value Expr
}

// EnumDecl has a zero Name when anonymous.
type EnumDecl struct {
	DeclBase
	Name        Ident
	Enumerators []Enumerator
}

type MemberDecl struct {
	Type  *TypeSpec
	Names []*Declarator
}

type StructDecl struct {
	DeclBase
	Name    Ident
	Members []MemberDecl
}

type TypedefDecl struct {
	DeclBase
	Type *TypeSpec
	Name Ident
	Dims []Expr
}

// ConstDecl has a nil Type when the type is inferred from the value.
type ConstDecl struct {
	DeclBase
	Type  *TypeSpec
	Name  Ident
	Value Expr
}

type StorageKind uint8

const (
	StorageLocal StorageKind = iota
	StorageWorld
	StorageGlobal
)

// Declarator is `[index:] name [dims] [= init]`. A nil entry in Dims is an
// implicit `[]` dimension taken from the initializer.
type Declarator struct {
	Index Expr
	Name  Ident
	Dims  []Expr
	Init  Expr
	Span  source.Span
}

type VarDecl struct {
	DeclBase
	Storage StorageKind
	Type    *TypeSpec
	Vars    []*Declarator
}

type FuncDecl struct {
	DeclBase
	Type     *TypeSpec
	Name     Ident
	MsgBuild bool
	Params   []*Param
	Body     *BlockStmt
}

type ScriptDecl struct {
	DeclBase
	Name   string
	NameSp source.Span
	Params []*Param
	Body   *BlockStmt
}
