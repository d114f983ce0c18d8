package lexer_test

import (
	"testing"

	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/token"
)

func lexString(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.qs", []byte(src))
	bag := diag.NewBag(100)
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
	return lx.All(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestLexDeclarations(t *testing.T) {
	toks, bag := lexString(t, "struct Node { int value; struct Node& next; } // tail\nNode& head;")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []token.Kind{
		token.KwStruct, token.Ident, token.LBrace,
		token.KwInt, token.Ident, token.Semicolon,
		token.KwStruct, token.Ident, token.Amp, token.Ident, token.Semicolon,
		token.RBrace,
		token.Ident, token.Amp, token.Ident, token.Semicolon,
		token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexOperatorsGreedy(t *testing.T) {
	toks, _ := lexString(t, "a::b <<= c && d != e")
	want := []token.Kind{
		token.Ident, token.ColonColon, token.Ident,
		token.Shl, token.Assign, token.Ident,
		token.AndAnd, token.Ident, token.BangEq, token.Ident, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexNumbers(t *testing.T) {
	toks, bag := lexString(t, "42 0x2A 1.5 3.")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []struct {
		kind token.Kind
		text string
	}{
		{token.IntLit, "42"},
		{token.IntLit, "0x2A"},
		{token.FixedLit, "1.5"},
		{token.IntLit, "3"},
		{token.Dot, "."},
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Fatalf("token %d = %v %q, want %v %q", i, toks[i].Kind, toks[i].Text, w.kind, w.text)
		}
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{`"abc`, diag.LexUnterminatedString},
		{"/* open", diag.LexUnterminatedBlockComment},
		{"12ab", diag.LexBadNumber},
		{"0x", diag.LexBadNumber},
		{"$", diag.LexUnknownChar},
	}
	for _, tc := range cases {
		_, bag := lexString(t, tc.src)
		if bag.Len() != 1 || bag.Items()[0].Code != tc.code {
			t.Fatalf("%q: got %+v, want one %s", tc.src, bag.Items(), tc.code.ID())
		}
	}
}

func TestLexNormalizesIdentifiers(t *testing.T) {
	composed, _ := lexString(t, "caf\u00e9")
	decomposed, _ := lexString(t, "cafe\u0301")
	if composed[0].Kind != token.Ident || decomposed[0].Kind != token.Ident {
		t.Fatalf("expected identifiers, got %v and %v", composed[0].Kind, decomposed[0].Kind)
	}
	if composed[0].Text != decomposed[0].Text {
		t.Fatalf("NFC mismatch: %q vs %q", composed[0].Text, decomposed[0].Text)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("p.qs", []byte("using a;"))
	lx := lexer.New(fs.Get(id), lexer.Options{})
	if lx.Peek().Kind != token.KwUsing || lx.Next().Kind != token.KwUsing {
		t.Fatalf("peek consumed the token")
	}
	if lx.Next().Kind != token.Ident {
		t.Fatalf("expected identifier after using")
	}
}
