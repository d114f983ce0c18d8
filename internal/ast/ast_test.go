package ast

import "testing"

func TestUnquote(t *testing.T) {
	cases := []struct {
		in, want string
		ok       bool
	}{
		{`"lib.qs"`, "lib.qs", true},
		{`"a\"b\\c\n"`, "a\"b\\c\n", true},
		{`"bad\q"`, "", false},
		{`noquotes`, "", false},
	}
	for _, tc := range cases {
		got, err := Unquote(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("Unquote(%s) err = %v, want ok=%v", tc.in, err, tc.ok)
		}
		if got != tc.want {
			t.Fatalf("Unquote(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPathString(t *testing.T) {
	p := &Path{Upmost: true, Segments: []Ident{{Name: "a"}, {Name: "T"}}}
	if p.String() != "upmost::a::T" {
		t.Fatalf("got %q", p.String())
	}
	q := &Path{Segments: []Ident{{Name: "x"}}}
	if q.String() != "x" || q.Last().Name != "x" {
		t.Fatalf("got %q", q.String())
	}
}
