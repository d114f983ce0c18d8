package types

// Same decides type identity.
//
// Chains must have the same kind sequence: arrays compare by dimension count,
// functions by parameter types, arity and msgbuild. Structure identities must
// be the same object, enumeration identities must match when either side has
// one, and raw matches every scalar specifier. A null entry matches any
// reference entry.
func Same(a, b Type) bool {
	if len(a.Dims) != len(b.Dims) {
		return false
	}
	ra, rb := a.Ref, b.Ref
	for ra != nil && rb != nil {
		if ra.Kind == RefNull || rb.Kind == RefNull {
			return true
		}
		if !sameRef(ra, rb) {
			return false
		}
		ra, rb = ra.Next, rb.Next
	}
	if ra != nil || rb != nil {
		return false
	}
	if a.Struct != b.Struct {
		return false
	}
	if (a.Enum != nil || b.Enum != nil) && a.Enum != b.Enum {
		return false
	}
	return specMatch(a.Spec, b.Spec)
}

func sameRef(a, b *Ref) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case RefArray:
		return a.Dims == b.Dims
	case RefFunction:
		if a.MsgBuild != b.MsgBuild || a.Min != b.Min || a.Max != b.Max || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Same(a.Params[i], b.Params[i]) {
				return false
			}
		}
	}
	return true
}

// InstanceOf checks assignment, argument and return compatibility. There is
// no implicit widening beyond the raw rule, so it is Same.
func InstanceOf(required, actual Type) bool {
	return Same(required, actual)
}

// Common returns the type both branches of a conditional decay to.
func Common(a, b Type) (Type, bool) {
	a, b = a.Clone(), b.Clone()
	Decay(&a)
	Decay(&b)
	if !Same(a, b) {
		return Type{}, false
	}
	switch {
	case a.Ref != nil && a.Ref.Kind == RefNull:
		return b, true
	case a.Spec == SpecRaw && b.Spec != SpecRaw:
		return b, true
	}
	return a, true
}

// Decay converts an array or structure value into its implicit reference
// form in place. Already decayed or scalar types are left alone.
func Decay(t *Type) {
	switch {
	case len(t.Dims) > 0:
		t.Ref = &Ref{Kind: RefArray, Dims: len(t.Dims), Implicit: true, Next: t.Ref}
		t.Dims = nil
	case t.Ref == nil && t.Struct != nil:
		t.Ref = &Ref{Kind: RefStructure, Implicit: true}
	}
}
