package sema

import (
	"errors"
	"math"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/types"
)

// maxStorageSize bounds the storage units of one value and of a structure.
const maxStorageSize = math.MaxInt32

// resolveStruct resolves member specifiers, then member names, then
// member dimensions, one member at a time; each finished phase is kept
// when a later one defers. Layout runs once every member is resolved.
func (c *Checker) resolveStruct(st *symbols.Structure) error {
	for i, m := range st.Members {
		if m.Resolved {
			continue
		}
		if !m.SpecDone {
			t, err := c.typeOf(st.NS, m.Spec)
			if err != nil {
				return err
			}
			if t.IsVoid() {
				return c.fail(diag.SemaVoidValue, m.Span, "member '%s' declared void", c.name(m))
			}
			if t.IsStructValue() && t.Struct == types.Structure(st) {
				return c.infiniteSize(st, m)
			}
			m.Type = t
			m.SpecDone = true
		}
		if !m.NameDone {
			for _, prev := range st.Members[:i] {
				if prev.Name == m.Name {
					return c.bail(diag.ReportError(c.reporter, diag.SemaDuplicateName, m.Span,
						"duplicate member '"+c.name(m)+"' in structure "+st.StructName()).
						WithNote(prev.Span, "member '"+c.name(prev)+"' found here"))
				}
			}
			m.NameDone = true
		}
		dims, err := c.dims(st.NS, m.Decl.Dims, nil)
		if err != nil {
			return err
		}
		if len(dims) > 0 {
			m.Type = types.ArrayValue(m.Type, dims)
		}
		m.Resolved = true
	}
	return c.layout(st)
}

// layout assigns offsets: scalars and references take one unit, a
// structure by value takes its size, an array its element size times its
// dimensions.
func (c *Checker) layout(st *symbols.Structure) error {
	offsets := make([]int, len(st.Members))
	size := 0
	for i, m := range st.Members {
		n, err := c.sizeOf(m.Type, m.Span)
		if errors.Is(err, errDeferred) && c.errors {
			if via := c.byValueCycle(st); via != nil {
				return c.infiniteSize(st, via)
			}
		}
		if err != nil {
			return err
		}
		if size > maxStorageSize-n {
			return c.fail(diag.SemaBadDimension, m.Span, "structure '%s' exceeds %d storage units", c.name(st), maxStorageSize)
		}
		offsets[i] = size
		size += n
	}
	for i, m := range st.Members {
		m.Offset = offsets[i]
	}
	st.Size = size
	st.LaidOut = true
	st.Resolved = true
	return nil
}

// sizeOf returns the storage units of a value of t. It defers on
// structures that are not laid out yet; sizes past maxStorageSize fail at sp.
func (c *Checker) sizeOf(t types.Type, sp source.Span) (int, error) {
	n := 1
	for _, d := range t.Dims {
		if d > 0 && n > maxStorageSize/d {
			return 0, c.tooLarge(t, sp)
		}
		n *= d
	}
	if t.Ref != nil || t.Struct == nil {
		return n, nil
	}
	st := t.Struct.(*symbols.Structure)
	if !st.LaidOut {
		return 0, errDeferred
	}
	if st.Size > 0 && n > maxStorageSize/st.Size {
		return 0, c.tooLarge(t, sp)
	}
	return n * st.Size, nil
}

func (c *Checker) tooLarge(t types.Type, sp source.Span) error {
	return c.fail(diag.SemaBadDimension, sp, "%s exceeds %d storage units", types.Present(t), maxStorageSize)
}

// byValueCycle returns the member of st through which st contains itself
// by value, or nil.
func (c *Checker) byValueCycle(st *symbols.Structure) *symbols.Member {
	seen := map[*symbols.Structure]bool{}
	var reaches func(s *symbols.Structure) bool
	reaches = func(s *symbols.Structure) bool {
		if s == st {
			return true
		}
		if seen[s] {
			return false
		}
		seen[s] = true
		for _, m := range s.Members {
			if inner := valueStruct(m); inner != nil && reaches(inner) {
				return true
			}
		}
		return false
	}
	for _, m := range st.Members {
		if inner := valueStruct(m); inner != nil && reaches(inner) {
			return m
		}
	}
	return nil
}

// valueStruct is the structure a member holds by value, if any.
func valueStruct(m *symbols.Member) *symbols.Structure {
	if !m.SpecDone || m.Type.Ref != nil || m.Type.Struct == nil {
		return nil
	}
	return m.Type.Struct.(*symbols.Structure)
}

func (c *Checker) infiniteSize(st *symbols.Structure, via *symbols.Member) error {
	return c.bail(diag.ReportError(c.reporter, diag.SemaInfiniteSize, st.Span,
		"structure "+st.StructName()+" contains itself by value").
		WithNote(via.Span, "through member '"+c.name(via)+"'; use a reference instead"))
}

// dims folds declared dimensions. A nil entry is implicit and takes the
// element count of the matching initializer list level.
func (c *Checker) dims(ns *symbols.Namespace, exprs []ast.Expr, init ast.Expr) ([]int, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make([]int, len(exprs))
	for i, e := range exprs {
		if e == nil {
			n, ok := implicitDim(init, i)
			if !ok {
				sp := ns.Span
				if init != nil {
					sp = init.Span()
				}
				return nil, c.fail(diag.SemaBadDimension, sp, "implicit dimension %d needs a non-empty initializer list", i+1)
			}
			out[i] = n
			continue
		}
		v, t, err := c.fold(ns, e)
		if err != nil {
			return nil, err
		}
		if s := arith(t); s != types.SpecInt && s != types.SpecRaw {
			return nil, c.fail(diag.SemaBadDimension, e.Span(), "dimension must be an integer, found %s", types.Present(t))
		}
		if v.Int <= 0 {
			return nil, c.fail(diag.SemaBadDimension, e.Span(), "dimension must be positive, found %d", v.Int)
		}
		out[i] = int(v.Int)
	}
	return out, nil
}

func implicitDim(init ast.Expr, level int) (int, bool) {
	list, ok := init.(*ast.InitList)
	for ; ok && level > 0; level-- {
		if len(list.Elems) == 0 {
			return 0, false
		}
		list, ok = list.Elems[0].(*ast.InitList)
	}
	if !ok || len(list.Elems) == 0 {
		return 0, false
	}
	return len(list.Elems), true
}

// localStruct creates, binds and resolves a structure declared inside a
// function body. The tag is bound first so members may refer to it.
func (c *Checker) localStruct(ns *symbols.Namespace, d *ast.StructDecl) (*symbols.Structure, error) {
	st := newStruct(c.u, d)
	c.stampLocal(ns, st, declSpan(d.Name, d))
	for _, m := range st.Members {
		c.stampLocal(ns, m, m.Span)
	}
	if !d.Name.IsZero() {
		st.Name = c.u.Strings.Intern(d.Name.Name)
		if err := c.bindErr(c.scopes.Bind(ns, symbols.TableStructs, st.Name, st), d.Name.Span); err != nil {
			return nil, err
		}
	}
	c.u.Decls[d] = st
	return st, c.now(c.resolveStruct(st), st)
}
