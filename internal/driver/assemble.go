package driver

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/project"
	"quill/internal/source"
)

// libraryUnit is a library with the files it is made of, root first.
type libraryUnit struct {
	meta  project.LibraryMeta
	files []*LoadedFile
}

// assemble groups loaded files into libraries. The entry file and every
// #import target form a library together with the files they #include.
func assemble(entry string, files map[string]*LoadedFile, rep diag.Reporter) []*libraryUnit {
	owner := make(map[string]*libraryUnit)
	var units []*libraryUnit

	roots := []string{entry}
	var imported []string
	for _, lf := range files {
		if lf.AST == nil {
			continue
		}
		for _, d := range lf.AST.Imports {
			target, err := project.ResolveImport(lf.Path, d.Value)
			if err != nil {
				continue
			}
			dep := files[target]
			if dep == nil || dep.AST == nil {
				continue
			}
			if !dep.AST.IsLibrary() {
				diag.ReportError(rep, diag.ProjNotLibrary, d.Span,
					fmt.Sprintf("imported file %q has no #library directive", d.Value)).Emit()
				continue
			}
			if target != entry {
				imported = append(imported, target)
			}
		}
	}
	sort.Strings(imported)
	roots = append(roots, imported...)

	for _, root := range roots {
		lf := files[root]
		if lf == nil || lf.AST == nil || owner[root] != nil {
			continue
		}
		u := &libraryUnit{meta: project.LibraryMeta{Name: libraryName(lf), Path: root}}
		if lf.AST.Library != nil {
			u.meta.Span = lf.AST.Library.Span
		}
		owner[root] = u
		u.include(lf, files, owner, rep)
		u.finish()
		units = append(units, u)
	}
	return units
}

// include adds lf and, depth first in source order, everything it includes.
func (u *libraryUnit) include(lf *LoadedFile, files map[string]*LoadedFile, owner map[string]*libraryUnit, rep diag.Reporter) {
	u.files = append(u.files, lf)
	u.meta.Files = append(u.meta.Files, lf.Path)
	for _, d := range lf.AST.Includes {
		target, err := project.ResolveImport(lf.Path, d.Value)
		if err != nil {
			continue
		}
		inc := files[target]
		if inc == nil || inc.AST == nil {
			continue
		}
		if inc.AST.IsLibrary() {
			diag.ReportError(rep, diag.ProjIncludedLibrary, d.Span,
				fmt.Sprintf("included file %q starts library %q; use #import", d.Value, inc.AST.Library.Value)).Emit()
			continue
		}
		switch prev := owner[target]; {
		case prev == u:
			// повторный #include внутри библиотеки ничего не добавляет
			continue
		case prev != nil:
			b := diag.ReportError(rep, diag.ProjSharedFile, d.Span,
				fmt.Sprintf("file %q is already part of library %q", d.Value, prev.meta.Name))
			if prev.meta.Span != (source.Span{}) {
				b.WithNote(prev.meta.Span, "library declared here")
			}
			b.Emit()
			continue
		}
		owner[target] = u
		u.include(inc, files, owner, rep)
	}
}

// finish collects the imports of all member files and the content digest.
func (u *libraryUnit) finish() {
	seen := make(map[string]bool)
	hashes := make([][32]byte, 0, len(u.files))
	for _, lf := range u.files {
		hashes = append(hashes, lf.File.Hash)
		for _, d := range lf.AST.Imports {
			target, err := project.ResolveImport(lf.Path, d.Value)
			if err != nil || seen[target] {
				continue
			}
			seen[target] = true
			u.meta.Imports = append(u.meta.Imports, project.ImportMeta{Path: target, Span: d.Span})
		}
	}
	u.meta.ContentHash = project.ContentDigest(hashes...)
}

// broken reports whether any member file failed to parse, with the first
// error found.
func (u *libraryUnit) broken() (bool, *diag.Diagnostic) {
	for _, lf := range u.files {
		for _, d := range lf.Bag.Items() {
			if d.Severity >= diag.SevError {
				return true, &d
			}
		}
	}
	return false, nil
}

func (u *libraryUnit) asts() []*ast.File {
	out := make([]*ast.File, len(u.files))
	for i, lf := range u.files {
		out[i] = lf.AST
	}
	return out
}

func libraryName(lf *LoadedFile) string {
	if lf.AST.Library != nil && lf.AST.Library.Value != "" {
		return lf.AST.Library.Value
	}
	return strings.TrimSuffix(filepath.Base(lf.Path), source.Extension)
}
