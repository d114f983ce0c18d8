package symbols

import (
	"quill/internal/source"
)

type frame struct {
	ns           *Namespace
	linkMark     int
	functionRoot bool
	depth        int
	sweeps       []*sweep
}

// ScopeStack tracks lexical depth and owns the undo log of local bindings.
// Depth 0 is namespace scope; every Push opens a block, function or script
// body.
type ScopeStack struct {
	frames []frame
	pool   sweepPool
	// Legacy rejects locals shadowing a namespace-scope name in non-strict
	// namespaces.
	Legacy bool
}

func NewScopeStack(legacy bool) *ScopeStack {
	return &ScopeStack{Legacy: legacy}
}

// Depth returns the current depth.
func (s *ScopeStack) Depth() int {
	return len(s.frames)
}

// Push opens a scope in ns. functionRoot marks function and script bodies.
func (s *ScopeStack) Push(ns *Namespace, functionRoot bool) {
	s.frames = append(s.frames, frame{
		ns:           ns,
		linkMark:     ns.LinkMark(),
		functionRoot: functionRoot,
		depth:        len(s.frames) + 1,
	})
}

// Pop closes the innermost scope: bindings logged against it are undone
// and the namespace's links are restored.
func (s *ScopeStack) Pop() {
	if len(s.frames) == 0 {
		panic("symbols: Pop on empty scope stack")
	}
	top := &s.frames[len(s.frames)-1]
	top.replay(&s.pool)
	top.ns.ResetLinks(top.linkMark)
	s.frames = s.frames[:len(s.frames)-1]
}

// functionRoot returns the nearest function root frame, or the outermost
// frame when no root is open.
func (s *ScopeStack) functionRoot() *frame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].functionRoot {
			return &s.frames[i]
		}
	}
	return &s.frames[0]
}

// Bind binds obj to id in the given table of ns following the discipline of
// the current depth:
//
//   - depth 0: the name must be unbound;
//   - non-strict ns: logged against the enclosing function root, visible
//     for the rest of the function, conflicts with bindings at or below the
//     root depth;
//   - strict ns: logged against the innermost block, conflicts with
//     bindings made at the current depth.
func (s *ScopeStack) Bind(ns *Namespace, table Table, id source.StringID, obj Object) error {
	n, created := ns.slot(table, id)
	depth := s.Depth()

	if depth == 0 {
		if n.Object != nil {
			return duplicate(table, n, obj)
		}
		n.bindGlobal(obj)
		obj.Base().Depth = 0
		return nil
	}

	target := &s.frames[len(s.frames)-1]
	horizon := depth
	if !ns.Strict {
		target = s.functionRoot()
		horizon = target.depth
	}
	if n.Object != nil {
		if n.Depth >= horizon {
			return duplicate(table, n, obj)
		}
		if !ns.Strict && s.Legacy && n.Depth == 0 {
			return duplicate(table, n, obj)
		}
	}
	target.record(&s.pool, undo{
		ns: ns, table: table, id: id,
		prev: n.Object, prevDepth: n.Depth, created: created,
	})
	n.Object, n.Depth = obj, horizon
	obj.Base().Depth = horizon
	return nil
}

func duplicate(table Table, n *Name, obj Object) *DuplicateError {
	_, alias := n.Object.(*Alias)
	return &DuplicateError{Table: table, Name: n.ID, Existing: n.Object, New: obj, ViaAlias: alias}
}
