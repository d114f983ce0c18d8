package symbols

import (
	"quill/internal/source"
)

// ImportSelective binds alias under bound in the given table of ns, pointing
// at target. Re-importing a name is allowed only when it resolves to the
// same target.
func ImportSelective(s *ScopeStack, ns *Namespace, table Table, bound source.StringID, alias *Alias) error {
	if existing := ns.Entry(table, bound); existing != nil && existing.Object != nil {
		if Unalias(existing.Object) == Unalias(alias.Target) {
			return nil
		}
	}
	return s.Bind(ns, table, bound, alias)
}
