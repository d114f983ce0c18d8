package types

import "slices"

// Scalar builds a plain specifier type.
func Scalar(spec Spec) Type {
	return Type{Spec: spec}
}

// EnumType builds a value of an enumeration.
func EnumType(en Enumeration) Type {
	return Type{Spec: SpecInt, Enum: en}
}

// Array builds the decayed view of an array of elem with len(dims)
// dimensions; the implicit reference is already in place.
func Array(elem Type, dims []int) Type {
	t := ArrayValue(elem, dims)
	Decay(&t)
	return t
}

// ArrayValue is the decay-free array constructor keeping dimension sizes.
func ArrayValue(elem Type, dims []int) Type {
	t := elem.Clone()
	t.Dims = append(slices.Clone(dims), t.Dims...)
	return t
}

// StructRef builds an explicit reference to st.
func StructRef(st Structure) Type {
	return Type{Struct: st, Ref: &Ref{Kind: RefStructure}}
}

// StructValue is the decay-free structure constructor.
func StructValue(st Structure) Type {
	return Type{Struct: st}
}

// FuncRef builds a reference to a function returning ret.
func FuncRef(ret Type, params []Type, min, max int, msgbuild bool) Type {
	ret = ret.Clone()
	Decay(&ret)
	out := ret
	out.Ref = &Ref{
		Kind:     RefFunction,
		Params:   params,
		Min:      min,
		Max:      max,
		MsgBuild: msgbuild,
		Next:     ret.Ref,
	}
	return out
}

// Null is the type of the null literal.
func Null() Type {
	return Type{Ref: &Ref{Kind: RefNull}}
}

// WrapRef prepends an explicit reference entry to t.
func WrapRef(t Type, ref Ref) Type {
	out := t.Clone()
	ref.Next = t.Ref
	out.Ref = &ref
	return out
}
