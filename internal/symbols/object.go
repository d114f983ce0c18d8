package symbols

import (
	"quill/internal/ast"
	"quill/internal/source"
	"quill/internal/types"
)

type ObjectKind uint8

const (
	KindConstant ObjectKind = iota + 1
	KindEnumeration
	KindEnumerator
	KindStructure
	KindMember
	KindTypeAlias
	KindVariable
	KindParam
	KindFunction
	KindScript
	KindNamespace
	KindAlias
)

var kindNames = [...]string{
	KindConstant:    "constant",
	KindEnumeration: "enumeration",
	KindEnumerator:  "enumerator",
	KindStructure:   "structure",
	KindMember:      "structure member",
	KindTypeAlias:   "type alias",
	KindVariable:    "variable",
	KindParam:       "parameter",
	KindFunction:    "function",
	KindScript:      "script",
	KindNamespace:   "namespace",
	KindAlias:       "alias",
}

func (k ObjectKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "invalid"
}

// Object is the closed set of named program entities.
type Object interface {
	Base() *ObjectBase
	Kind() ObjectKind
	sealed()
}

// ObjectBase is shared by every object.
type ObjectBase struct {
	Name     source.StringID
	Span     source.Span
	Resolved bool
	Depth    int // 0 = уровень пространства имён
	Private  bool
	Library  *Library
	NS       *Namespace // объявляющее пространство
}

func (b *ObjectBase) Base() *ObjectBase { return b }
func (*ObjectBase) sealed()             {}

// Value is a folded constant. Fixed values are 16.16 in Int.
type Value struct {
	Spec types.Spec
	Int  int32
	Str  string
}

type Constant struct {
	ObjectBase
	Decl  *ast.ConstDecl
	Type  types.Type
	Value Value
}

type Enumeration struct {
	ObjectBase
	Decl        *ast.EnumDecl
	Title       string
	Enumerators []*Enumerator
	next        int // enumerators already valued
}

func (e *Enumeration) EnumName() string {
	if e.Title == "" {
		return "enum"
	}
	return e.Title
}

// Progress returns how many enumerators carry their final value.
func (e *Enumeration) Progress() int { return e.next }

// Advance marks one more enumerator as valued.
func (e *Enumeration) Advance() { e.next++ }

type Enumerator struct {
	ObjectBase
	Enum  *Enumeration
	Value int32
	Decl  *ast.Enumerator
}

type Structure struct {
	ObjectBase
	Decl    *ast.StructDecl
	Title   string
	Members []*Member
	Size    int
	LaidOut bool
}

func (s *Structure) StructName() string {
	if s.Title == "" {
		return "struct"
	}
	return s.Title
}

// MemberTypes lists member types; nil until every member is resolved.
func (s *Structure) MemberTypes() []types.Type {
	out := make([]types.Type, 0, len(s.Members))
	for _, m := range s.Members {
		if !m.Resolved {
			return nil
		}
		out = append(out, m.Type)
	}
	return out
}

// Member is one structure member. Its progress is tracked per phase so a
// deferred structure never redoes finished work.
type Member struct {
	ObjectBase
	Owner    *Structure
	Spec     *ast.TypeSpec
	Decl     *ast.Declarator
	Type     types.Type
	Offset   int
	SpecDone bool
	NameDone bool
}

type TypeAlias struct {
	ObjectBase
	Decl *ast.TypedefDecl
	Type types.Type
}

type Storage uint8

const (
	StorageLocal Storage = iota
	StorageMap
	StorageWorld
	StorageGlobal
)

func (s Storage) String() string {
	switch s {
	case StorageLocal:
		return "local"
	case StorageMap:
		return "map"
	case StorageWorld:
		return "world"
	case StorageGlobal:
		return "global"
	}
	return "invalid"
}

// InitValue is one initialized storage slot of a variable. Value is set for
// folded constants, Expr for values computed at run time.
type InitValue struct {
	Offset int
	Value  *Value
	Expr   ast.Expr
}

type Variable struct {
	ObjectBase
	Decl       *ast.VarDecl
	Declarator *ast.Declarator
	Type       types.Type
	Storage    Storage
	Index      int
	Size       int
	Values     []InitValue
}

type Param struct {
	ObjectBase
	Decl  *ast.Param
	Type  types.Type
	Index int
}

type Function struct {
	ObjectBase
	Decl     *ast.FuncDecl
	Return   types.Type
	Params   []*Param
	Min, Max int
	MsgBuild bool
}

// Type is the reference form a function decays to when used as a value.
func (f *Function) Type() types.Type {
	params := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}
	return types.FuncRef(f.Return, params, f.Min, f.Max, f.MsgBuild)
}

type Script struct {
	ObjectBase
	Decl   *ast.ScriptDecl
	Title  string
	Params []*Param
}

// Alias redirects to Target; produced by `using n = path;` and selective
// imports.
type Alias struct {
	ObjectBase
	Target Object
	Table  Table
}

func (*Constant) Kind() ObjectKind    { return KindConstant }
func (*Enumeration) Kind() ObjectKind { return KindEnumeration }
func (*Enumerator) Kind() ObjectKind  { return KindEnumerator }
func (*Structure) Kind() ObjectKind   { return KindStructure }
func (*Member) Kind() ObjectKind      { return KindMember }
func (*TypeAlias) Kind() ObjectKind   { return KindTypeAlias }
func (*Variable) Kind() ObjectKind    { return KindVariable }
func (*Param) Kind() ObjectKind       { return KindParam }
func (*Function) Kind() ObjectKind    { return KindFunction }
func (*Script) Kind() ObjectKind      { return KindScript }
func (*Namespace) Kind() ObjectKind   { return KindNamespace }
func (*Alias) Kind() ObjectKind       { return KindAlias }

// Unalias follows alias chains to the real object.
func Unalias(obj Object) Object {
	for {
		a, ok := obj.(*Alias)
		if !ok || a.Target == nil {
			return obj
		}
		obj = a.Target
	}
}
