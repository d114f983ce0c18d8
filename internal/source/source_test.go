package source

import (
	"sync"
	"testing"
)

func TestFileSetResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.qs", []byte("int a;\nstruct S {\n  int x;\n};\n"))

	start, end := fs.Resolve(Span{File: id, Start: 20, End: 25})
	if start.Line != 3 || start.Col != 3 {
		t.Fatalf("start = %+v, want 3:3", start)
	}
	if end.Line != 3 || end.Col != 8 {
		t.Fatalf("end = %+v, want 3:8", end)
	}
	if got := fs.Get(id).Line(2); got != "struct S {" {
		t.Fatalf("line 2 = %q", got)
	}
	if got := fs.Get(id).Line(9); got != "" {
		t.Fatalf("line 9 = %q, want empty", got)
	}
}

func TestFileSetAddKeepsOldVersions(t *testing.T) {
	fs := NewFileSet()
	first := fs.Add("lib.qs", []byte("int a;"), 0)
	second := fs.Add("lib.qs", []byte("int b;"), 0)
	if first == second {
		t.Fatalf("expected distinct ids")
	}
	latest, ok := fs.Lookup("./lib.qs")
	if !ok || latest.ID != second {
		t.Fatalf("lookup returned %v, want newest file", latest)
	}
	if string(fs.Get(first).Content) != "int a;" {
		t.Fatalf("old content lost")
	}
}

func TestNormalizeCRLFAndBOM(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed || string(out) != "a\nb\rc" {
		t.Fatalf("normalizeCRLF = %q, %v", out, changed)
	}
	out, had := removeBOM([]byte("\xEF\xBB\xBFint"))
	if !had || string(out) != "int" {
		t.Fatalf("removeBOM = %q, %v", out, had)
	}
}

func TestInternerConcurrentIntern(t *testing.T) {
	in := NewInterner()
	names := []string{"Node", "head", "value", "next", "Node"}
	var wg sync.WaitGroup
	ids := make([][]StringID, 8)
	for g := range ids {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for _, n := range names {
				ids[g] = append(ids[g], in.Intern(n))
			}
		}(g)
	}
	wg.Wait()
	for g := 1; g < len(ids); g++ {
		for i := range names {
			if ids[g][i] != ids[0][i] {
				t.Fatalf("goroutine %d got id %d for %q, want %d", g, ids[g][i], names[i], ids[0][i])
			}
		}
	}
	if ids[0][0] != ids[0][4] {
		t.Fatalf("same string interned twice")
	}
	if in.Len() != 5 {
		t.Fatalf("Len = %d, want 5 (4 names + sentinel)", in.Len())
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("Cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 1}); got != a {
		t.Fatalf("cross-file Cover changed span: %v", got)
	}
}
