package symbols

// Detach removes lib from the universe: its namespace-scope bindings,
// aliases made by its using directives and its script titles. Namespaces lib
// opened are dropped once empty; the rest stay, other libraries reopened them.
func (u *Universe) Detach(lib *Library) {
	for i, l := range u.Libraries {
		if l == lib {
			u.Libraries = append(u.Libraries[:i], u.Libraries[i+1:]...)
			break
		}
	}
	detachNamespace(u.Root, lib)
	for title, s := range u.Scripts {
		if s.Library == lib {
			delete(u.Scripts, title)
		}
	}
	for decl, obj := range u.Decls {
		if obj.Base().Library == lib {
			delete(u.Decls, decl)
		}
	}
}

func detachNamespace(ns *Namespace, lib *Library) {
	for t := range ns.tables {
		for id, n := range ns.tables[t] {
			if child, ok := n.Object.(*Namespace); ok {
				detachNamespace(child, lib)
				if child.Library == lib && child.empty() {
					delete(ns.tables[t], id)
				}
				continue
			}
			if n.Object != nil && n.Object.Base().Library == lib {
				delete(ns.tables[t], id)
			}
		}
	}
}

func (ns *Namespace) empty() bool {
	for t := range ns.tables {
		if len(ns.tables[t]) > 0 {
			return false
		}
	}
	return true
}
