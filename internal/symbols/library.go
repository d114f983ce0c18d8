package symbols

import (
	"quill/internal/ast"
	"quill/internal/source"
)

// Item is one entry of a fragment in declaration order: an object, a
// `using` directive or a nested fragment.
type Item struct {
	Object   Object
	Using    *ast.UsingDecl
	Fragment *Fragment
}

// Fragment is one `namespace X { ... }` block, or the file-level part of a
// library. Fragments of the same path share one Namespace.
type Fragment struct {
	NS    *Namespace
	Decl  *ast.NamespaceDecl // nil for file level
	File  source.FileID
	Items []Item
	// usingsSeen tracks usings whose duplicate-link warning was reported.
	usingsSeen map[*ast.UsingDecl]bool
}

// FirstVisit reports whether u is applied for the first time.
func (f *Fragment) FirstVisit(u *ast.UsingDecl) bool {
	if f.usingsSeen == nil {
		f.usingsSeen = make(map[*ast.UsingDecl]bool)
	}
	if f.usingsSeen[u] {
		return false
	}
	f.usingsSeen[u] = true
	return true
}

// PrivateBinding is a private object with the slot it binds to while its
// library is current.
type PrivateBinding struct {
	NS     *Namespace
	Table  Table
	Object Object
}

// Library is one compilation unit.
type Library struct {
	Title      string
	Path       string
	Fragments  []*Fragment
	Objects    []Object
	Privates   []PrivateBinding
	Imports    []*Library
	Importable bool
	Cached     bool
	Digest     [32]byte
}

// Unresolved counts objects still waiting for resolution.
func (l *Library) Unresolved() int {
	n := 0
	for _, obj := range l.Objects {
		if !obj.Base().Resolved {
			n++
		}
	}
	return n
}

// ExposePrivates binds the library's private objects at namespace scope and
// returns the function restoring the previous bindings. Callers defer the
// retraction so it runs on every exit path.
func (l *Library) ExposePrivates() (retract func()) {
	type saved struct {
		ns         *Namespace
		table      Table
		id         source.StringID
		prev       Object
		prevDepth  int
		prevGlobal Object
		created    bool
	}
	undo := make([]saved, 0, len(l.Privates))
	for _, p := range l.Privates {
		id := p.Object.Base().Name
		n, created := p.NS.slot(p.Table, id)
		undo = append(undo, saved{ns: p.NS, table: p.Table, id: id, prev: n.Object, prevDepth: n.Depth, prevGlobal: n.Global, created: created})
		n.bindGlobal(p.Object)
	}
	return func() {
		for i := len(undo) - 1; i >= 0; i-- {
			u := undo[i]
			if u.created {
				u.ns.drop(u.table, u.id)
				continue
			}
			if n := u.ns.Entry(u.table, u.id); n != nil {
				n.Object, n.Depth, n.Global = u.prev, u.prevDepth, u.prevGlobal
			}
		}
	}
}

// Universe is the state shared by all libraries of one compilation: the
// interner and the single upmost namespace every library contributes to.
type Universe struct {
	Strings   *source.Interner
	Root      *Namespace
	Libraries []*Library
	// Decls maps declaration nodes to the objects created for them.
	Decls   map[ast.Decl]Object
	Scripts map[string]*Script
}

func NewUniverse(strings *source.Interner) *Universe {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Universe{
		Strings: strings,
		Root:    NewNamespace(nil, source.NoStringID, "", false),
		Decls:   make(map[ast.Decl]Object),
		Scripts: make(map[string]*Script),
	}
}

// Namespace returns the namespace at path below parent, creating missing
// ones. Explicit namespaces are strict. A non-namespace object already
// bound under a segment is returned as a *DuplicateError.
func (u *Universe) Namespace(parent *Namespace, segments []string, sp source.Span, lib *Library) (*Namespace, error) {
	cur := parent
	for _, seg := range segments {
		id := u.Strings.Intern(seg)
		if existing := cur.Object(TableObjects, id); existing != nil {
			next, ok := existing.(*Namespace)
			if !ok {
				ns := NewNamespace(cur, id, joinPath(cur.Path, seg), true)
				ns.Span = sp
				return nil, &DuplicateError{Table: TableObjects, Name: id, Existing: existing, New: ns}
			}
			cur = next
			continue
		}
		ns := NewNamespace(cur, id, joinPath(cur.Path, seg), true)
		ns.Span = sp
		ns.Library = lib
		n, _ := cur.slot(TableObjects, id)
		n.bindGlobal(ns)
		cur = ns
	}
	return cur, nil
}

func joinPath(parent, seg string) string {
	if parent == "" {
		return seg
	}
	return parent + "::" + seg
}

// Name returns the text of id.
func (u *Universe) Name(id source.StringID) string {
	s, _ := u.Strings.Lookup(id)
	return s
}
