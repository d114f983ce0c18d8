package types

// Spec is the scalar specifier of a type.
type Spec uint8

const (
	SpecNone Spec = iota // структуры и null
	SpecRaw
	SpecInt
	SpecFixed
	SpecBool
	SpecStr
	SpecVoid
)

var specNames = [...]string{
	SpecNone:  "none",
	SpecRaw:   "raw",
	SpecInt:   "int",
	SpecFixed: "fixed",
	SpecBool:  "bool",
	SpecStr:   "str",
	SpecVoid:  "void",
}

func (s Spec) String() string {
	if int(s) < len(specNames) {
		return specNames[s]
	}
	return "invalid"
}

// IsScalar reports specifiers that carry a scalar value.
func (s Spec) IsScalar() bool {
	switch s {
	case SpecRaw, SpecInt, SpecFixed, SpecBool, SpecStr:
		return true
	}
	return false
}

// specMatch: raw совместим с любым скалярным спецификатором.
func specMatch(a, b Spec) bool {
	if a == b {
		return true
	}
	return (a == SpecRaw && b.IsScalar()) || (b == SpecRaw && a.IsScalar())
}
