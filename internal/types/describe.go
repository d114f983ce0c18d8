package types

import (
	"strconv"
	"strings"
)

// Description classifies a value for operator dispatch.
type Description uint8

const (
	DescPrimitive Description = iota
	DescEnum
	DescArrayRef
	DescStructRef
	DescFuncRef
	DescNullRef
)

func (d Description) String() string {
	switch d {
	case DescPrimitive:
		return "Primitive"
	case DescEnum:
		return "Enum"
	case DescArrayRef:
		return "ArrayRef"
	case DescStructRef:
		return "StructRef"
	case DescFuncRef:
		return "FuncRef"
	case DescNullRef:
		return "NullRef"
	}
	return "Invalid"
}

// Describe classifies t as if it were decayed.
func Describe(t Type) Description {
	if len(t.Dims) > 0 {
		return DescArrayRef
	}
	if t.Ref != nil {
		switch t.Ref.Kind {
		case RefArray:
			return DescArrayRef
		case RefStructure:
			return DescStructRef
		case RefFunction:
			return DescFuncRef
		default:
			return DescNullRef
		}
	}
	if t.Struct != nil {
		return DescStructRef
	}
	if t.Enum != nil {
		return DescEnum
	}
	return DescPrimitive
}

// Present renders t for diagnostics: the base name, undecayed dimensions,
// then one suffix per reference entry, outermost first.
func Present(t Type) string {
	var b strings.Builder
	switch {
	case t.Ref != nil && t.Ref.Kind == RefNull:
		return "null"
	case t.Struct != nil:
		b.WriteString(t.Struct.StructName())
	case t.Enum != nil:
		b.WriteString(t.Enum.EnumName())
	default:
		b.WriteString(t.Spec.String())
	}
	for _, d := range t.Dims {
		b.WriteString("[")
		b.WriteString(strconv.Itoa(d))
		b.WriteString("]")
	}
	for r := t.Ref; r != nil; r = r.Next {
		switch r.Kind {
		case RefArray:
			b.WriteString(strings.Repeat("[]", r.Dims))
			b.WriteString("&")
		case RefStructure:
			b.WriteString("&")
		case RefFunction:
			b.WriteString(" function(")
			for i, p := range r.Params {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(Present(p))
			}
			b.WriteString(")")
			if r.MsgBuild {
				b.WriteString(" msgbuild")
			}
			b.WriteString("&")
		case RefNull:
			b.WriteString(" null")
		}
	}
	return b.String()
}
