package sema

import (
	"strings"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
)

// Collect registers lib with the universe and creates the objects of its
// files. Public namespace-scope names are bound at once, so forward
// references find their (still unresolved) targets; private ones are
// recorded and bound only while lib is current.
func (c *Checker) Collect(lib *symbols.Library, files []*ast.File) error {
	c.lib = lib
	defer func() { c.lib = nil }()
	c.u.Libraries = append(c.u.Libraries, lib)

	cl := collector{Checker: c, privates: make(map[privateKey]symbols.Object)}
	for _, f := range files {
		frag := &symbols.Fragment{NS: c.u.Root, File: f.ID}
		lib.Fragments = append(lib.Fragments, frag)
		for _, d := range f.Decls {
			if err := cl.decl(frag, d); err != nil {
				return err
			}
		}
	}
	return nil
}

type privateKey struct {
	ns    *symbols.Namespace
	table symbols.Table
	id    source.StringID
}

type collector struct {
	*Checker
	privates map[privateKey]symbols.Object
}

func (cl *collector) decl(frag *symbols.Fragment, d ast.Decl) error {
	switch d := d.(type) {
	case *ast.NamespaceDecl:
		return cl.namespace(frag, d)
	case *ast.UsingDecl:
		frag.Items = append(frag.Items, symbols.Item{Using: d})
		return nil
	case *ast.EnumDecl:
		_, err := cl.enum(frag, d, d.Private)
		return err
	case *ast.StructDecl:
		_, err := cl.structure(frag, d, d.Private)
		return err
	case *ast.TypedefDecl:
		if err := cl.inline(frag, d.Type, d.Private); err != nil {
			return err
		}
		ta := &symbols.TypeAlias{Decl: d}
		return cl.add(frag, ta, symbols.TableObjects, d.Name, d, d.Private)
	case *ast.ConstDecl:
		if err := cl.inline(frag, d.Type, d.Private); err != nil {
			return err
		}
		k := &symbols.Constant{Decl: d}
		return cl.add(frag, k, symbols.TableObjects, d.Name, d, d.Private)
	case *ast.VarDecl:
		if err := cl.inline(frag, d.Type, d.Private); err != nil {
			return err
		}
		storage := symbols.StorageMap
		switch d.Storage {
		case ast.StorageWorld:
			storage = symbols.StorageWorld
		case ast.StorageGlobal:
			storage = symbols.StorageGlobal
		}
		for _, dcl := range d.Vars {
			v := &symbols.Variable{Decl: d, Declarator: dcl, Storage: storage, Index: -1}
			if err := cl.add(frag, v, symbols.TableObjects, dcl.Name, nil, d.Private); err != nil {
				return err
			}
		}
		return nil
	case *ast.FuncDecl:
		if err := cl.inline(frag, d.Type, d.Private); err != nil {
			return err
		}
		fn := &symbols.Function{Decl: d}
		return cl.add(frag, fn, symbols.TableObjects, d.Name, d, d.Private)
	case *ast.ScriptDecl:
		return cl.script(frag, d)
	}
	return nil
}

func (cl *collector) namespace(frag *symbols.Fragment, d *ast.NamespaceDecl) error {
	segs := make([]string, len(d.Path.Segments))
	for i, s := range d.Path.Segments {
		segs[i] = s.Name
	}
	ns, err := cl.u.Namespace(frag.NS, segs, d.Path.Span, cl.lib)
	if err != nil {
		return cl.bindErr(err, d.Path.Span)
	}
	child := &symbols.Fragment{NS: ns, Decl: d, File: frag.File}
	frag.Items = append(frag.Items, symbols.Item{Fragment: child})
	for _, inner := range d.Decls {
		if err := cl.decl(child, inner); err != nil {
			return err
		}
	}
	return nil
}

// inline creates the objects of enum and struct bodies written inside a
// type specifier, including those in function reference parameters.
func (cl *collector) inline(frag *symbols.Fragment, ts *ast.TypeSpec, private bool) error {
	if ts == nil {
		return nil
	}
	switch {
	case ts.Enum != nil:
		if _, err := cl.enum(frag, ts.Enum, private); err != nil {
			return err
		}
	case ts.Struct != nil:
		if _, err := cl.structure(frag, ts.Struct, private); err != nil {
			return err
		}
	}
	for _, r := range ts.Refs {
		for _, p := range r.Params {
			if err := cl.inline(frag, p.Type, private); err != nil {
				return err
			}
		}
	}
	return nil
}

func (cl *collector) enum(frag *symbols.Fragment, d *ast.EnumDecl, private bool) (*symbols.Enumeration, error) {
	en := newEnum(cl.u, d)
	if err := cl.add(frag, en, symbols.TableEnums, d.Name, d, private); err != nil {
		return nil, err
	}
	for _, e := range en.Enumerators {
		cl.stamp(frag.NS, e, private)
		if err := cl.bindTop(frag.NS, symbols.TableObjects, e, private); err != nil {
			return nil, err
		}
	}
	return en, nil
}

func (cl *collector) structure(frag *symbols.Fragment, d *ast.StructDecl, private bool) (*symbols.Structure, error) {
	for _, m := range d.Members {
		if err := cl.inline(frag, m.Type, private); err != nil {
			return nil, err
		}
	}
	st := newStruct(cl.u, d)
	for _, m := range st.Members {
		cl.stamp(frag.NS, m, private)
	}
	if err := cl.add(frag, st, symbols.TableStructs, d.Name, d, private); err != nil {
		return nil, err
	}
	return st, nil
}

func (cl *collector) script(frag *symbols.Fragment, d *ast.ScriptDecl) error {
	sc := &symbols.Script{Decl: d, Title: d.Name}
	sc.Span = d.NameSp
	cl.stamp(frag.NS, sc, d.Private)
	key := strings.ToLower(d.Name)
	if prev, ok := cl.u.Scripts[key]; ok {
		return cl.bail(diag.ReportError(cl.reporter, diag.SemaDuplicateName, d.NameSp, "duplicate script \""+d.Name+"\"").
			WithNote(prev.Span, "previous script declared here"))
	}
	cl.u.Scripts[key] = sc
	cl.u.Decls[d] = sc
	frag.Items = append(frag.Items, symbols.Item{Object: sc})
	cl.lib.Objects = append(cl.lib.Objects, sc)
	return nil
}

// add stamps obj, binds its name (if any) and queues it for resolution.
func (cl *collector) add(frag *symbols.Fragment, obj symbols.Object, table symbols.Table, name ast.Ident, d ast.Decl, private bool) error {
	cl.stamp(frag.NS, obj, private)
	b := obj.Base()
	b.Span = name.Span
	if name.IsZero() && d != nil {
		b.Span = d.Span()
	}
	if !name.IsZero() {
		b.Name = cl.u.Strings.Intern(name.Name)
		if err := cl.bindTop(frag.NS, table, obj, private); err != nil {
			return err
		}
	}
	if d != nil {
		cl.u.Decls[d] = obj
	}
	frag.Items = append(frag.Items, symbols.Item{Object: obj})
	cl.lib.Objects = append(cl.lib.Objects, obj)
	return nil
}

func (cl *collector) stamp(ns *symbols.Namespace, obj symbols.Object, private bool) {
	b := obj.Base()
	b.NS = ns
	b.Library = cl.lib
	b.Private = private
}

// bindTop binds a namespace-scope name. A private name may shadow another
// library's public one but never a name of its own library.
func (cl *collector) bindTop(ns *symbols.Namespace, table symbols.Table, obj symbols.Object, private bool) error {
	id := obj.Base().Name
	key := privateKey{ns: ns, table: table, id: id}
	if prev, ok := cl.privates[key]; ok {
		return cl.duplicate(&symbols.DuplicateError{Table: table, Name: id, Existing: prev, New: obj}, obj.Base().Span)
	}
	if private {
		if existing := ns.Object(table, id); existing != nil && existing.Base().Library == cl.lib {
			return cl.duplicate(&symbols.DuplicateError{Table: table, Name: id, Existing: existing, New: obj}, obj.Base().Span)
		}
		cl.privates[key] = obj
		cl.lib.Privates = append(cl.lib.Privates, symbols.PrivateBinding{NS: ns, Table: table, Object: obj})
		return nil
	}
	return cl.bindErr(cl.scopes.Bind(ns, table, id, obj), obj.Base().Span)
}

func newEnum(u *symbols.Universe, d *ast.EnumDecl) *symbols.Enumeration {
	en := &symbols.Enumeration{Decl: d, Title: d.Name.Name}
	for i := range d.Enumerators {
		ed := &d.Enumerators[i]
		e := &symbols.Enumerator{Enum: en, Decl: ed}
		e.Name = u.Strings.Intern(ed.Name.Name)
		e.Span = ed.Name.Span
		en.Enumerators = append(en.Enumerators, e)
	}
	return en
}

func newStruct(u *symbols.Universe, d *ast.StructDecl) *symbols.Structure {
	st := &symbols.Structure{Decl: d, Title: d.Name.Name}
	for _, md := range d.Members {
		for _, dcl := range md.Names {
			m := &symbols.Member{Owner: st, Spec: md.Type, Decl: dcl}
			m.Name = u.Strings.Intern(dcl.Name.Name)
			m.Span = dcl.Name.Span
			st.Members = append(st.Members, m)
		}
	}
	return st
}
