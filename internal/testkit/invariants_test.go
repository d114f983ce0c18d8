package testkit

import (
	"testing"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/parser"
	"quill/internal/source"
)

func TestSpanInvariantsHoldForParsedFile(t *testing.T) {
	fs := source.NewFileSet()
	sf := fs.Get(fs.AddVirtual("a.qs", []byte("// lead\nint x;\nnamespace n {\n\tconst K = 1;\n\tprivate int y;\n}\n")))
	bag := diag.NewBag(10)
	res := parser.ParseFile(sf, parser.Options{Reporter: &diag.BagReporter{Bag: bag}})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if err := CheckSpanInvariants(res.File, sf); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestSpanInvariantsDetectViolations(t *testing.T) {
	fs := source.NewFileSet()
	sf := fs.Get(fs.AddVirtual("a.qs", []byte("int x;\nint y;\n")))
	fileSpan := source.Span{File: sf.ID, Start: 0, End: 13}

	outside := &ast.VarDecl{}
	outside.Sp = source.Span{File: sf.ID, Start: 10, End: 40}
	if err := CheckSpanInvariants(&ast.File{Span: fileSpan, Decls: []ast.Decl{outside}}, sf); err == nil {
		t.Fatalf("expected an out-of-file declaration to be rejected")
	}

	first, second := &ast.VarDecl{}, &ast.VarDecl{}
	first.Sp = source.Span{File: sf.ID, Start: 7, End: 13}
	second.Sp = source.Span{File: sf.ID, Start: 0, End: 6}
	if err := CheckSpanInvariants(&ast.File{Span: fileSpan, Decls: []ast.Decl{first, second}}, sf); err == nil {
		t.Fatalf("expected out-of-order declarations to be rejected")
	}

	empty := &ast.VarDecl{}
	empty.Sp = source.Span{File: sf.ID, Start: 3, End: 3}
	if err := CheckSpanInvariants(&ast.File{Span: fileSpan, Decls: []ast.Decl{empty}}, sf); err == nil {
		t.Fatalf("expected an empty declaration span to be rejected")
	}

	if err := CheckSpanInvariants(&ast.File{Span: source.Span{File: sf.ID, End: 99}}, sf); err == nil {
		t.Fatalf("expected a file span beyond the content to be rejected")
	}
}
