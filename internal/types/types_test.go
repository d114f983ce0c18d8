package types

import (
	"math/rand/v2"
	"testing"
)

type testStruct struct{ name string }

func (s *testStruct) StructName() string { return s.name }

type testEnum struct{ name string }

func (e *testEnum) EnumName() string { return e.name }

func TestRawCompatibility(t *testing.T) {
	raw := Scalar(SpecRaw)
	for _, spec := range []Spec{SpecInt, SpecFixed, SpecBool, SpecStr} {
		if !Same(raw, Scalar(spec)) || !Same(Scalar(spec), raw) {
			t.Fatalf("raw must match %s", spec)
		}
	}
	if Same(Scalar(SpecInt), Scalar(SpecBool)) {
		t.Fatalf("int must not match bool")
	}
	if Same(raw, Scalar(SpecVoid)) {
		t.Fatalf("raw must not match void")
	}
	node := &testStruct{name: "Node"}
	if Same(raw, StructRef(node)) {
		t.Fatalf("raw must not match a structure reference")
	}
}

func TestEnumIdentity(t *testing.T) {
	color, shape := &testEnum{"Color"}, &testEnum{"Shape"}
	if Same(EnumType(color), EnumType(shape)) {
		t.Fatalf("distinct enumerations compared equal")
	}
	if Same(EnumType(color), Scalar(SpecInt)) {
		t.Fatalf("enum identity must match when one side has it")
	}
	if !Same(EnumType(color), EnumType(color)) {
		t.Fatalf("same enumeration must match")
	}
}

func TestArraysCompareByDimensionCount(t *testing.T) {
	a := Array(Scalar(SpecInt), []int{3, 4})
	b := Array(Scalar(SpecInt), []int{10, 1})
	if !Same(a, b) {
		t.Fatalf("arrays with equal dimension count must match")
	}
	if Same(a, Array(Scalar(SpecInt), []int{3})) {
		t.Fatalf("dimension count differs")
	}
	if Present(a) != "int[][]&" {
		t.Fatalf("Present = %q", Present(a))
	}
	if Present(ArrayValue(Scalar(SpecInt), []int{3})) != "int[3]" {
		t.Fatalf("Present(value) = %q", Present(ArrayValue(Scalar(SpecInt), []int{3})))
	}
}

func TestDecayIdempotent(t *testing.T) {
	node := &testStruct{name: "Node"}
	values := []Type{
		ArrayValue(Scalar(SpecInt), []int{2, 2}),
		ArrayValue(StructRef(node), []int{5}),
		StructValue(node),
		Scalar(SpecFixed),
	}
	for _, v := range values {
		once := v.Clone()
		Decay(&once)
		twice := once.Clone()
		Decay(&twice)
		if twice.Ref != once.Ref || len(twice.Dims) != len(once.Dims) {
			t.Fatalf("%s: second decay changed the type", Present(v))
		}
		if !Same(once, twice) || Present(once) != Present(twice) {
			t.Fatalf("%s: decay not idempotent: %s vs %s", Present(v), Present(once), Present(twice))
		}
		if len(once.Dims) != 0 && once.Ref != nil {
			t.Fatalf("decayed type keeps both dims and a reference chain")
		}
	}
	if len(values[0].Dims) != 2 {
		t.Fatalf("decay on a clone mutated the original")
	}
}

func TestDecayedArrayOfRefsPresent(t *testing.T) {
	node := &testStruct{name: "Node"}
	arr := Array(StructRef(node), []int{5})
	if Describe(arr) != DescArrayRef {
		t.Fatalf("Describe = %s", Describe(arr))
	}
	el, ok := arr.Element()
	if !ok || Describe(el) != DescStructRef || !Same(el, StructRef(node)) {
		t.Fatalf("element = %s", Present(el))
	}
	if Present(arr) != "Node[]&&" {
		t.Fatalf("Present = %q", Present(arr))
	}
}

func TestStructIdentityAndDescribe(t *testing.T) {
	a, b := &testStruct{"A"}, &testStruct{"A"}
	if Same(StructRef(a), StructRef(b)) {
		t.Fatalf("structures compare by identity, not name")
	}
	sv := StructValue(a)
	if Describe(sv) != DescStructRef {
		t.Fatalf("struct value should describe as StructRef, got %s", Describe(sv))
	}
	Decay(&sv)
	if !sv.Ref.Implicit || !Same(sv, StructRef(a)) {
		t.Fatalf("decayed struct should equal explicit reference")
	}
	if Describe(Scalar(SpecInt)) != DescPrimitive || Describe(EnumType(&testEnum{"E"})) != DescEnum {
		t.Fatalf("unexpected scalar descriptions")
	}
}

func TestFunctionRefs(t *testing.T) {
	node := &testStruct{name: "Node"}
	f := FuncRef(StructRef(node), []Type{Scalar(SpecInt)}, 1, 1, false)
	g := FuncRef(StructRef(node), []Type{Scalar(SpecRaw)}, 1, 1, false)
	if !Same(f, g) {
		t.Fatalf("raw parameter should match int parameter")
	}
	if Same(f, FuncRef(StructRef(node), []Type{Scalar(SpecInt)}, 1, 1, true)) {
		t.Fatalf("msgbuild must participate in identity")
	}
	if Same(f, FuncRef(Scalar(SpecInt), []Type{Scalar(SpecInt)}, 1, 1, false)) {
		t.Fatalf("return types differ")
	}
	ret, ok := f.Return()
	if !ok || !Same(ret, StructRef(node)) {
		t.Fatalf("Return = %s", Present(ret))
	}
	if Present(f) != "Node function(int)&&" {
		t.Fatalf("Present = %q", Present(f))
	}
	if Describe(f) != DescFuncRef {
		t.Fatalf("Describe = %s", Describe(f))
	}
}

func TestNullAndCommon(t *testing.T) {
	node := &testStruct{name: "Node"}
	if !Same(Null(), StructRef(node)) || !InstanceOf(Array(Scalar(SpecInt), []int{1}), Null()) {
		t.Fatalf("null must match references")
	}
	if Same(Null(), Scalar(SpecInt)) {
		t.Fatalf("null must not match scalars")
	}
	c, ok := Common(Null(), StructValue(node))
	if !ok || !Same(c, StructRef(node)) || Describe(c) != DescStructRef {
		t.Fatalf("Common(null, Node) = %s, %v", Present(c), ok)
	}
	c, ok = Common(Scalar(SpecRaw), Scalar(SpecFixed))
	if !ok || c.Spec != SpecFixed {
		t.Fatalf("Common(raw, fixed) = %s", Present(c))
	}
	if _, ok := Common(Scalar(SpecInt), Scalar(SpecStr)); ok {
		t.Fatalf("int and str have no common type")
	}
}

func TestSameIsSymmetric(t *testing.T) {
	node := &testStruct{name: "Node"}
	pool := []Type{
		Scalar(SpecRaw), Scalar(SpecInt), Scalar(SpecBool), Scalar(SpecStr), Scalar(SpecFixed),
		StructRef(node), Array(Scalar(SpecInt), []int{2}), Array(Scalar(SpecRaw), []int{2}),
		Null(), FuncRef(Scalar(SpecVoid), nil, 0, 0, false), EnumType(&testEnum{"E"}),
	}
	r := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		a, b := pool[r.IntN(len(pool))], pool[r.IntN(len(pool))]
		if Same(a, b) != Same(b, a) {
			t.Fatalf("Same(%s, %s) is not symmetric", Present(a), Present(b))
		}
	}
}
