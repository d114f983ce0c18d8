package types

import "slices"

// Structure is the identity of a structure declaration. Identities compare
// by ==, so implementations must be pointers.
type Structure interface {
	StructName() string
}

// Enumeration is the identity of an enumeration declaration.
type Enumeration interface {
	EnumName() string
}

type RefKind uint8

const (
	RefArray RefKind = iota
	RefStructure
	RefFunction
	RefNull
)

func (k RefKind) String() string {
	switch k {
	case RefArray:
		return "array"
	case RefStructure:
		return "structure"
	case RefFunction:
		return "function"
	case RefNull:
		return "null"
	}
	return "invalid"
}

// Ref is one entry of a reference chain. Function entries carry the
// parameter list; their return type is the owning Type's base plus Next.
type Ref struct {
	Kind     RefKind
	Dims     int
	Params   []Type
	Min, Max int
	MsgBuild bool
	Implicit bool // synthesized by Decay
	Next     *Ref
}

// Type describes the shape of a value. Ref and Dims never describe the same
// array: Dims are the undecayed outer dimensions, Decay moves them into Ref.
type Type struct {
	Spec   Spec
	Enum   Enumeration
	Struct Structure
	Ref    *Ref
	Dims   []int
}

// IsRef reports whether the value is a reference.
func (t Type) IsRef() bool { return t.Ref != nil }

// IsVoid reports a plain void type.
func (t Type) IsVoid() bool {
	return t.Spec == SpecVoid && t.Ref == nil && len(t.Dims) == 0
}

// IsStructValue reports an undecayed structure.
func (t Type) IsStructValue() bool {
	return t.Struct != nil && t.Ref == nil && len(t.Dims) == 0
}

// Clone copies t deeply enough that Decay on the copy leaves t untouched.
func (t Type) Clone() Type {
	t.Dims = slices.Clone(t.Dims)
	return t
}

// ContainsRef reports whether a value of t holds a reference anywhere,
// including inside structure members (members reports per structure).
func (t Type) ContainsRef(members func(Structure) []Type) bool {
	return t.containsRef(members, map[Structure]bool{})
}

func (t Type) containsRef(members func(Structure) []Type, seen map[Structure]bool) bool {
	if t.Ref != nil {
		return true
	}
	if t.Struct == nil || members == nil || seen[t.Struct] {
		return false
	}
	seen[t.Struct] = true
	for _, m := range members(t.Struct) {
		if m.containsRef(members, seen) {
			return true
		}
	}
	return false
}

// Element returns the type of one element of an array value or array
// reference. The boolean is false when t is not an array.
func (t Type) Element() (Type, bool) {
	if len(t.Dims) > 0 {
		el := t.Clone()
		el.Dims = el.Dims[1:]
		if len(el.Dims) == 0 {
			el.Dims = nil
		}
		return el, true
	}
	if t.Ref == nil || t.Ref.Kind != RefArray {
		return Type{}, false
	}
	el := t
	if t.Ref.Dims > 1 {
		inner := *t.Ref
		inner.Dims--
		el.Ref = &inner
	} else {
		el.Ref = t.Ref.Next
	}
	return el, true
}

// Return is the return type of a function reference.
func (t Type) Return() (Type, bool) {
	if t.Ref == nil || t.Ref.Kind != RefFunction {
		return Type{}, false
	}
	ret := t
	ret.Ref = t.Ref.Next
	return ret, true
}

// Target strips the outermost structure reference: Node& -> Node.
func (t Type) Target() (Type, bool) {
	if t.Ref == nil || t.Ref.Kind != RefStructure {
		return Type{}, false
	}
	out := t
	out.Ref = t.Ref.Next
	return out, true
}
