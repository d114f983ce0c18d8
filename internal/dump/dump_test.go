package dump

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"quill/internal/driver"
)

const coreSrc = `#library "core"
namespace core {
	const K = 3;
	private int hidden = 1;
}
`

const mainSrc = `#import "lib/core"
using core;
struct Pair { int x; int y; };
Pair pts[2] = {{1, 2}, {3}};
world int 0: w;
fixed half = 1.5;
str greeting = "hi";
enum Color { Red, Green = K, Blue };
int dbl(int a) { return a * 2; }
int function(int) & handler = dbl;
script "go" (int n) { w = dbl(n); }
`

func checked(t *testing.T) *driver.Result {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lib", "core.qs"), []byte(coreSrc), 0o600); err != nil {
		t.Fatal(err)
	}
	entry := filepath.Join(dir, "main.qs")
	if err := os.WriteFile(entry, []byte(mainSrc), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := driver.NewSession(driver.Options{}).Check(context.Background(), entry)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	return res
}

func findDecl(t *testing.T, lib Library, name string) Decl {
	t.Helper()
	for _, d := range lib.Decls {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("%s: no declaration %q in %+v", lib.Name, name, lib.Decls)
	return Decl{}
}

func TestBuildExportsResolvedDeclarations(t *testing.T) {
	doc, err := Build(checked(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(doc.Libraries) != 2 {
		t.Fatalf("libraries = %d, want 2", len(doc.Libraries))
	}
	core, main := doc.Libraries[0], doc.Libraries[1]
	if core.Name != "core" || main.Name != "main" {
		t.Fatalf("order = %q, %q", core.Name, main.Name)
	}
	if len(main.Imports) != 1 || main.Imports[0] != "core" {
		t.Fatalf("main imports = %v", main.Imports)
	}

	if k := findDecl(t, core, "core::K"); k.Kind != "constant" || k.Value != "3" {
		t.Fatalf("K = %+v", k)
	}
	if h := findDecl(t, core, "core::hidden"); !h.Private {
		t.Fatalf("hidden must be private: %+v", h)
	}

	pts := findDecl(t, main, "pts")
	if pts.Storage != "map" || pts.Size != 4 || len(pts.Init) != 3 {
		t.Fatalf("pts = %+v", pts)
	}
	if pts.Init[2].Offset != 2 || pts.Init[2].Value != "3" {
		t.Fatalf("pts init = %+v", pts.Init)
	}
	if w := findDecl(t, main, "w"); w.Storage != "world" || w.Index == nil || *w.Index != 0 {
		t.Fatalf("w = %+v", w)
	}
	if half := findDecl(t, main, "half"); len(half.Init) != 1 || half.Init[0].Value != "1.5" {
		t.Fatalf("half = %+v", half)
	}
	if g := findDecl(t, main, "greeting"); len(g.Init) != 1 || g.Init[0].Value != `"hi"` {
		t.Fatalf("greeting = %+v", g)
	}
	if h := findDecl(t, main, "handler"); len(h.Init) != 1 || !h.Init[0].Runtime {
		t.Fatalf("handler = %+v", h)
	}

	color := findDecl(t, main, "Color")
	want := []Enumerator{{"Red", 0}, {"Green", 3}, {"Blue", 4}}
	if len(color.Enumerators) != len(want) {
		t.Fatalf("Color = %+v", color.Enumerators)
	}
	for i, e := range want {
		if color.Enumerators[i] != e {
			t.Fatalf("enumerator %d = %+v, want %+v", i, color.Enumerators[i], e)
		}
	}

	pair := findDecl(t, main, "Pair")
	if pair.Size != 2 || len(pair.Members) != 2 || pair.Members[1].Offset != 1 {
		t.Fatalf("Pair = %+v", pair)
	}
	if fn := findDecl(t, main, "dbl"); fn.Return != "int" || len(fn.Params) != 1 || fn.Params[0].Type != "int" {
		t.Fatalf("dbl = %+v", fn)
	}
	if sc := findDecl(t, main, `script "go"`); sc.Kind != "script" || len(sc.Params) != 1 || sc.Params[0].Name != "n" {
		t.Fatalf("script = %+v", sc)
	}
}

func TestWriteFormats(t *testing.T) {
	doc, err := Build(checked(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var js bytes.Buffer
	if err := Write(&js, doc, FormatJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	var fromJSON Document
	if err := json.Unmarshal(js.Bytes(), &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(fromJSON.Libraries) != 2 || fromJSON.Entry != doc.Entry {
		t.Fatalf("json document = %+v", fromJSON)
	}

	var ym bytes.Buffer
	if err := Write(&ym, doc, FormatYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var fromYAML Document
	if err := yaml.Unmarshal(ym.Bytes(), &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(fromYAML.Libraries) != 2 || fromYAML.Libraries[1].Name != "main" {
		t.Fatalf("yaml document = %+v", fromYAML)
	}
}

func TestBuildRejectsBrokenPrograms(t *testing.T) {
	if _, err := Build(nil); err == nil {
		t.Fatalf("nil result must be rejected")
	}
	if _, err := Build(&driver.Result{}); err == nil {
		t.Fatalf("result without universe must be rejected")
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("xml must be rejected")
	}
}
