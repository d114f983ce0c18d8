package symbols

import (
	"quill/internal/source"
)

// Table selects one of the three name tables of a namespace.
type Table uint8

const (
	TableObjects Table = iota
	TableStructs
	TableEnums
	tableCount
)

func (t Table) String() string {
	switch t {
	case TableObjects:
		return "object"
	case TableStructs:
		return "struct"
	case TableEnums:
		return "enum"
	}
	return "invalid"
}

// Name is the binding slot of one identifier in one table. Object is the
// current binding, Depth the scope depth it was made at. Global is the
// namespace-scope binding, kept while locals shadow it; other earlier
// bindings live in scope sweeps.
type Name struct {
	ID     source.StringID
	Object Object
	Depth  int
	Global Object
}

// bindGlobal makes obj the namespace-scope binding of n.
func (n *Name) bindGlobal(obj Object) {
	n.Object, n.Depth, n.Global = obj, 0, obj
}

// Link is a namespace made visible by `using`.
type Link struct {
	Target *Namespace
	Span   source.Span
}

// Namespace is one logical namespace; every fragment reopening the same
// path shares it.
type Namespace struct {
	ObjectBase
	Parent *Namespace
	Path   string
	Strict bool
	tables [tableCount]map[source.StringID]*Name
	links  []Link
}

// NewNamespace creates a namespace; a nil parent makes the upmost one.
func NewNamespace(parent *Namespace, name source.StringID, path string, strict bool) *Namespace {
	ns := &Namespace{Parent: parent, Path: path, Strict: strict}
	ns.Name = name
	ns.Resolved = true
	ns.NS = parent
	for i := range ns.tables {
		ns.tables[i] = make(map[source.StringID]*Name)
	}
	return ns
}

// IsUpmost reports whether ns has no parent.
func (ns *Namespace) IsUpmost() bool { return ns.Parent == nil }

// Upmost returns the root of ns.
func (ns *Namespace) Upmost() *Namespace {
	for ns.Parent != nil {
		ns = ns.Parent
	}
	return ns
}

// Entry returns the raw binding slot, locals included.
func (ns *Namespace) Entry(table Table, id source.StringID) *Name {
	return ns.tables[table][id]
}

// slot returns the binding slot, creating an empty one.
func (ns *Namespace) slot(table Table, id source.StringID) (n *Name, created bool) {
	if n = ns.tables[table][id]; n != nil {
		return n, false
	}
	n = &Name{ID: id}
	ns.tables[table][id] = n
	return n, true
}

func (ns *Namespace) drop(table Table, id source.StringID) {
	delete(ns.tables[table], id)
}

// Object returns the namespace-scope binding of id, even while a local
// shadows it.
func (ns *Namespace) Object(table Table, id source.StringID) Object {
	if n := ns.tables[table][id]; n != nil {
		return n.Global
	}
	return nil
}

// Child returns the nested namespace named id, or nil.
func (ns *Namespace) Child(id source.StringID) *Namespace {
	child, _ := ns.Object(TableObjects, id).(*Namespace)
	return child
}

// Links returns the active links; the slice must not be modified.
func (ns *Namespace) Links() []Link {
	return ns.links
}

// AddLink appends target to the links for the rest of the lexical scope.
// It reports whether target was already linked; duplicates are kept.
func (ns *Namespace) AddLink(target *Namespace, sp source.Span) (duplicate bool) {
	for _, l := range ns.links {
		if l.Target == target {
			duplicate = true
			break
		}
	}
	ns.links = append(ns.links, Link{Target: target, Span: sp})
	return duplicate
}

// LinkMark returns a value to pass to ResetLinks.
func (ns *Namespace) LinkMark() int {
	return len(ns.links)
}

// ResetLinks drops links added after mark.
func (ns *Namespace) ResetLinks(mark int) {
	if mark < len(ns.links) {
		clear(ns.links[mark:])
		ns.links = ns.links[:mark]
	}
}

// Each calls fn for every namespace-scope binding of table, in no
// particular order.
func (ns *Namespace) Each(table Table, fn func(Object)) {
	for _, n := range ns.tables[table] {
		if n.Global != nil {
			fn(n.Global)
		}
	}
}
