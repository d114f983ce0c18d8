// Package testkit holds structural checks shared by parser tests and fuzz
// harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"quill/internal/ast"
	"quill/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a cleanly
// parsed file:
// 1) file.Span lies within the file content and points at the file
// 2) every declaration span is non-empty and inside its parent span
// 3) sibling declarations appear in source order
func CheckSpanInvariants(f *ast.File, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil file")
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent || f.Span.Start > f.Span.End {
		return fmt.Errorf("file span %v outside content of %d bytes", f.Span, lenContent)
	}
	return checkDecls(f.Decls, f.Span)
}

func checkDecls(decls []ast.Decl, parent source.Span) error {
	var prev uint32
	for i, d := range decls {
		sp := d.Span()
		if sp.End <= sp.Start {
			return fmt.Errorf("empty declaration span: %v", sp)
		}
		if !parent.Contains(sp) {
			return fmt.Errorf("declaration span %v is outside parent span %v", sp, parent)
		}
		if i > 0 && sp.Start < prev {
			return fmt.Errorf("declaration %d at %v precedes its sibling at %d", i, sp, prev)
		}
		prev = sp.Start
		if ns, ok := d.(*ast.NamespaceDecl); ok {
			if err := checkDecls(ns.Decls, sp); err != nil {
				return err
			}
		}
	}
	return nil
}
