package symbols

import (
	"quill/internal/source"
)

// Search looks id up unqualified, starting at ns:
//
//  1. the namespace's own table;
//  2. every linked namespace, in link order; several distinct matches
//     are an *AmbiguityError;
//  3. the same against each parent up to the upmost namespace.
//
// Aliases are replaced by their targets. A nil object with a nil error
// means the name is not visible.
func Search(ns *Namespace, table Table, id source.StringID) (Object, error) {
	for cur := ns; cur != nil; cur = cur.Parent {
		obj, err := searchIn(cur, table, id, true)
		if obj != nil || err != nil {
			return obj, err
		}
	}
	return nil, nil
}

// searchIn covers steps 1 and 2 for a single namespace. Locals are visible
// only when locals is set.
func searchIn(ns *Namespace, table Table, id source.StringID, locals bool) (Object, error) {
	if n := ns.Entry(table, id); n != nil {
		obj := n.Global
		if locals {
			obj = n.Object
		}
		if obj != nil {
			return Unalias(obj), nil
		}
	}
	var found []Object
	for _, l := range ns.links {
		obj := l.Target.Object(table, id)
		if obj == nil {
			continue
		}
		obj = Unalias(obj)
		if !containsObject(found, obj) {
			found = append(found, obj)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	}
	return nil, &AmbiguityError{Name: id, Matches: found}
}

func containsObject(list []Object, obj Object) bool {
	for _, o := range list {
		if o == obj {
			return true
		}
	}
	return false
}

// SearchPath resolves a possibly qualified path. The first segment uses the
// full Search (or starts at the upmost namespace when upmost is set);
// intermediate segments must be namespaces found in their parent's own
// table; the final segment is looked up in its namespace's own table and
// links, never in its parents.
func SearchPath(ns *Namespace, table Table, path []source.StringID, upmost bool) (Object, error) {
	if len(path) == 0 {
		return nil, &LookupError{Failure: NotFound}
	}
	if len(path) == 1 && !upmost {
		obj, err := Search(ns, table, path[0])
		if obj == nil && err == nil {
			return nil, &LookupError{Failure: NotFound, In: ns}
		}
		return obj, err
	}

	var cur *Namespace
	rest := path
	if upmost {
		cur = ns.Upmost()
	} else {
		obj, err := Search(ns, TableObjects, path[0])
		if err != nil {
			return nil, err
		}
		if obj == nil {
			return nil, &LookupError{Failure: NotFound, In: ns}
		}
		next, ok := obj.(*Namespace)
		if !ok {
			return nil, &LookupError{Failure: NotNamespace, Segment: 0, In: ns, Found: obj}
		}
		cur = next
		rest = path[1:]
	}

	offset := len(path) - len(rest)
	for i, id := range rest[:len(rest)-1] {
		obj := cur.Object(TableObjects, id)
		if obj == nil {
			return nil, &LookupError{Failure: NotInNamespace, Segment: offset + i, In: cur}
		}
		next, ok := Unalias(obj).(*Namespace)
		if !ok {
			return nil, &LookupError{Failure: NotNamespace, Segment: offset + i, In: cur, Found: obj}
		}
		cur = next
	}

	obj, err := searchIn(cur, table, rest[len(rest)-1], false)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, &LookupError{Failure: NotInNamespace, Segment: len(path) - 1, In: cur}
	}
	return obj, nil
}
