package dag

import (
	"fmt"
	"slices"
	"strings"

	"quill/internal/diag"
	"quill/internal/project"
	"quill/internal/source"
)

// Graph stores edges from a library to the libraries importing it, so a
// topological order lists dependencies first.
type Graph struct {
	Edges   [][]LibraryID // Edges[dep] = []importer
	Indeg   []int         // число импортов у библиотеки (только присутствующие)
	Present []bool        // библиотека реально загружена, а не только упомянута
}

type Node struct {
	Meta     project.LibraryMeta
	Broken   bool
	FirstErr *diag.Diagnostic
}

type Slot struct {
	Meta     project.LibraryMeta
	Present  bool
	Broken   bool
	FirstErr *diag.Diagnostic
}

// BuildGraph places nodes into index slots and links imports. Two libraries
// sharing a title and self-imports are reported to rep.
func BuildGraph(idx Index, nodes []Node, rep diag.Reporter) (Graph, []Slot) {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	nodeCount := len(idx.IDToPath)
	g := Graph{
		Edges:   make([][]LibraryID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]Slot, nodeCount)
	for i, path := range idx.IDToPath {
		slots[i].Meta.Path = path
	}

	titles := make(map[string]LibraryID, len(nodes))
	for _, node := range nodes {
		meta := node.Meta
		id, ok := idx.PathToID[meta.Path]
		if !ok || slots[int(id)].Present {
			continue
		}
		if prev, dup := titles[meta.Name]; dup && meta.Name != "" {
			b := diag.ReportError(rep, diag.ProjDuplicateLibrary, meta.Span,
				fmt.Sprintf("duplicate library %q", meta.Name))
			if sp := slots[int(prev)].Meta.Span; sp != (source.Span{}) {
				b.WithNote(sp, fmt.Sprintf("previous declaration of library %q", meta.Name))
			}
			b.Emit()
		} else {
			titles[meta.Name] = id
		}
		slot := &slots[int(id)]
		slot.Meta = meta
		slot.Present = true
		slot.Broken = node.Broken
		slot.FirstErr = node.FirstErr
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Meta.Imports) == 0 {
			continue
		}
		seen := make(map[LibraryID]struct{}, len(slot.Meta.Imports))
		for _, dep := range slot.Meta.Imports {
			toID, ok := idx.PathToID[dep.Path]
			if !ok || !g.Present[int(toID)] {
				// загрузчик уже сообщил о недоступном файле
				continue
			}
			if LibraryID(from) == toID {
				diag.ReportError(rep, diag.ProjImportCycle, dep.Span,
					fmt.Sprintf("library %q imports itself", slot.Meta.Name)).Emit()
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}
			g.Edges[int(toID)] = append(g.Edges[int(toID)], LibraryID(from))
			g.Indeg[from]++
		}
	}
	for i := range g.Edges {
		if len(g.Edges[i]) > 1 {
			slices.Sort(g.Edges[i])
		}
	}

	return g, slots
}

// ReportCycles reports every library left on an import cycle.
func ReportCycles(slots []Slot, topo *Topo, rep diag.Reporter) {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, displayName(slots[int(id)].Meta))
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present {
			continue
		}
		msg := fmt.Sprintf("library %q participates in an import cycle: %s", displayName(slot.Meta), summary)
		diag.ReportError(rep, diag.ProjImportCycle, slot.Meta.Span, msg).Emit()
	}
}

// ReportBrokenDeps reports imports of libraries that failed to load or parse.
func ReportBrokenDeps(idx Index, slots []Slot, rep diag.Reporter) {
	for i := range slots {
		from := &slots[i]
		if !from.Present || len(from.Meta.Imports) == 0 {
			continue
		}
		emitted := make(map[string]struct{}, len(from.Meta.Imports))
		for _, imp := range from.Meta.Imports {
			toID, ok := idx.PathToID[imp.Path]
			if !ok {
				continue
			}
			dep := slots[int(toID)]
			if !dep.Present || !dep.Broken {
				continue
			}
			if _, seen := emitted[imp.Path]; seen {
				continue
			}
			emitted[imp.Path] = struct{}{}

			b := diag.ReportError(rep, diag.ProjDependencyFailed, imp.Span,
				fmt.Sprintf("imported library %q has errors", displayName(dep.Meta)))
			if dep.FirstErr != nil {
				b.WithNote(dep.FirstErr.Primary, "first error in dependency: "+dep.FirstErr.Message)
			}
			b.Emit()
		}
	}
}

func displayName(meta project.LibraryMeta) string {
	if meta.Name != "" {
		return meta.Name
	}
	return meta.Path
}
