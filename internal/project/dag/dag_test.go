package dag

import (
	"testing"

	"quill/internal/diag"
	"quill/internal/project"
	"quill/internal/source"
)

func idsToPaths(idx Index, ids []LibraryID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToPath[int(id)]
	}
	return out
}

func nodesOf(metas ...project.LibraryMeta) []Node {
	out := make([]Node, len(metas))
	for i, m := range metas {
		out[i] = Node{Meta: m}
	}
	return out
}

func TestBuildIndexIncludesImports(t *testing.T) {
	metas := []project.LibraryMeta{
		{
			Path: "/p/main.qs",
			Imports: []project.ImportMeta{
				{Path: "/p/math.qs"},
				{Path: "/p/util.qs"},
			},
		},
		{Path: "/p/util.qs"},
	}

	idx := BuildIndex(metas)

	want := []string{"/p/main.qs", "/p/math.qs", "/p/util.qs"}
	if len(idx.IDToPath) != len(want) {
		t.Fatalf("unexpected library count: %d", len(idx.IDToPath))
	}
	for i, path := range want {
		if got := idx.IDToPath[i]; got != path {
			t.Fatalf("idx.IDToPath[%d] = %q, want %q", i, got, path)
		}
		if id, ok := idx.PathToID[path]; !ok || int(id) != i {
			t.Fatalf("idx.PathToID[%q] = %v, want %d", path, id, i)
		}
	}
}

func TestBuildGraphEdgesPointAtImporters(t *testing.T) {
	app := project.LibraryMeta{Name: "app", Path: "app", Imports: []project.ImportMeta{{Path: "core"}, {Path: "util"}, {Path: "core"}}}
	core := project.LibraryMeta{Name: "core", Path: "core", Imports: []project.ImportMeta{{Path: "util"}}}
	util := project.LibraryMeta{Name: "util", Path: "util"}

	idx := BuildIndex([]project.LibraryMeta{app, core, util})
	graph, _ := BuildGraph(idx, nodesOf(app, core, util), nil)

	appID, coreID, utilID := idx.PathToID["app"], idx.PathToID["core"], idx.PathToID["util"]
	if got := graph.Edges[int(utilID)]; len(got) != 2 || got[0] != appID || got[1] != coreID {
		t.Fatalf("util importers = %v", got)
	}
	if got := graph.Edges[int(coreID)]; len(got) != 1 || got[0] != appID {
		t.Fatalf("core importers = %v", got)
	}
	if graph.Indeg[int(appID)] != 2 || graph.Indeg[int(utilID)] != 0 {
		t.Fatalf("indeg = %v", graph.Indeg)
	}
}

func TestBuildGraphSkipsMissingImports(t *testing.T) {
	app := project.LibraryMeta{Name: "app", Path: "app", Imports: []project.ImportMeta{{Path: "gone"}}}
	idx := BuildIndex([]project.LibraryMeta{app})
	bag := diag.NewBag(10)
	graph, _ := BuildGraph(idx, nodesOf(app), &diag.BagReporter{Bag: bag})

	if graph.Present[int(idx.PathToID["gone"])] {
		t.Fatalf("missing library must not be present")
	}
	if graph.Indeg[int(idx.PathToID["app"])] != 0 {
		t.Fatalf("edge to missing library recorded")
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestBuildGraphDuplicateTitles(t *testing.T) {
	spanA := source.Span{File: 1, Start: 0, End: 5}
	spanB := source.Span{File: 2, Start: 0, End: 5}
	a := project.LibraryMeta{Name: "shared", Path: "a", Span: spanA}
	b := project.LibraryMeta{Name: "shared", Path: "b", Span: spanB}

	bag := diag.NewBag(10)
	idx := BuildIndex([]project.LibraryMeta{a, b})
	BuildGraph(idx, nodesOf(a, b), &diag.BagReporter{Bag: bag})

	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.ProjDuplicateLibrary || d.Primary != spanB {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span != spanA {
		t.Fatalf("expected note at first declaration, got %+v", d.Notes)
	}
}

func TestToposortDependenciesFirst(t *testing.T) {
	metas := []project.LibraryMeta{
		{Path: "b", Imports: []project.ImportMeta{{Path: "c"}}},
		{Path: "a"},
		{Path: "c"},
	}
	idx := BuildIndex(metas)
	graph, _ := BuildGraph(idx, nodesOf(metas...), nil)

	topo := ToposortKahn(graph)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}
	order := idsToPaths(idx, topo.Order)
	want := []string{"a", "c", "b"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if len(topo.Batches) != 2 || len(topo.Batches[0]) != 2 || len(topo.Batches[1]) != 1 {
		t.Fatalf("batches = %v", topo.Batches)
	}
}

func TestReportCycles(t *testing.T) {
	spanA := source.Span{File: 1, Start: 0, End: 4}
	spanB := source.Span{File: 2, Start: 0, End: 4}
	a := project.LibraryMeta{Name: "a", Path: "a", Span: spanA, Imports: []project.ImportMeta{{Path: "b", Span: spanA}}}
	b := project.LibraryMeta{Name: "b", Path: "b", Span: spanB, Imports: []project.ImportMeta{{Path: "a", Span: spanB}}}
	// top only imports the cycle
	top := project.LibraryMeta{Name: "top", Path: "top", Imports: []project.ImportMeta{{Path: "a"}}}

	idx := BuildIndex([]project.LibraryMeta{a, b, top})
	graph, slots := BuildGraph(idx, nodesOf(a, b, top), nil)

	topo := ToposortKahn(graph)
	if !topo.Cyclic || len(topo.Cycles) != 2 {
		t.Fatalf("expected cycle with two libraries, got %+v", topo)
	}
	bag := diag.NewBag(10)
	ReportCycles(slots, topo, &diag.BagReporter{Bag: bag})
	if bag.Len() != 2 {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Code != diag.ProjImportCycle {
			t.Fatalf("code = %v", d.Code)
		}
	}
}

func TestSelfImport(t *testing.T) {
	sp := source.Span{File: 1, Start: 3, End: 9}
	a := project.LibraryMeta{Name: "a", Path: "a", Imports: []project.ImportMeta{{Path: "a", Span: sp}}}
	bag := diag.NewBag(10)
	idx := BuildIndex([]project.LibraryMeta{a})
	graph, _ := BuildGraph(idx, nodesOf(a), &diag.BagReporter{Bag: bag})
	if bag.Len() != 1 || bag.Items()[0].Code != diag.ProjImportCycle || bag.Items()[0].Primary != sp {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	if ToposortKahn(graph).Cyclic {
		t.Fatalf("self import must not leave a cycle in the graph")
	}
}

func TestReportBrokenDeps(t *testing.T) {
	errSpan := source.Span{File: 2, Start: 1, End: 2}
	impSpan := source.Span{File: 1, Start: 0, End: 8}
	app := project.LibraryMeta{Name: "app", Path: "app", Imports: []project.ImportMeta{{Path: "core", Span: impSpan}}}
	core := project.LibraryMeta{Name: "core", Path: "core"}
	first := diag.NewError(diag.SynExpectSemicolon, errSpan, "expected ';'")

	idx := BuildIndex([]project.LibraryMeta{app, core})
	_, slots := BuildGraph(idx, []Node{{Meta: app}, {Meta: core, Broken: true, FirstErr: &first}}, nil)

	bag := diag.NewBag(10)
	ReportBrokenDeps(idx, slots, &diag.BagReporter{Bag: bag})
	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.ProjDependencyFailed || d.Primary != impSpan || len(d.Notes) != 1 || d.Notes[0].Span != errSpan {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}
