package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/source"
)

func oneDiag(t *testing.T, content string, start, end uint32) (*source.FileSet, *diag.Bag, source.FileID) {
	t.Helper()
	fs := source.NewFileSetWithBase("/home/user/project")
	id := fs.AddVirtual("test.qs", []byte(content))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaNameNotFound, source.Span{File: id, Start: start, End: end}, `name "y" not found`))
	return fs, bag, id
}

func TestPrettyContextAndCaret(t *testing.T) {
	fs, bag, _ := oneDiag(t, "int x = y;\n", 8, 9)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	want := "test.qs:1:9: error SEM3001: name \"y\" not found\n" +
		"1 | int x = y;\n" +
		"  |         ^\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestPrettyUnderlinesWholeSpan(t *testing.T) {
	fs, bag, _ := oneDiag(t, "int x = yyy;\n", 8, 11)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "         ^~~\n") {
		t.Fatalf("expected ^~~ underline, got:\n%s", buf.String())
	}
}

func TestPrettyAlignsAfterWideRunes(t *testing.T) {
	// "日本" занимает 4 колонки и 6 байт
	fs, bag, _ := oneDiag(t, "日本 y\n", 7, 8)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[2] != "  |      ^" {
		t.Fatalf("caret misaligned: %q", lines[2])
	}
}

func TestPrettyKeepsTabs(t *testing.T) {
	fs, bag, _ := oneDiag(t, "\tint y;\n", 5, 6)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "  | \t    ^\n") {
		t.Fatalf("expected tab-preserving padding, got %q", buf.String())
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.qs", []byte("int x;\nint x;\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaDuplicateName, source.Span{File: id, Start: 11, End: 12}, `duplicate name "x"`).
		WithNote(source.Span{File: id, Start: 4, End: 5}, "previous declaration"))

	var plain bytes.Buffer
	if err := Pretty(&plain, bag, fs, PrettyOpts{}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if strings.Contains(plain.String(), "note:") {
		t.Fatalf("notes must be hidden by default:\n%s", plain.String())
	}

	var withNotes bytes.Buffer
	if err := Pretty(&withNotes, bag, fs, PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	out := withNotes.String()
	if !strings.Contains(out, "a.qs:2:5: error SEM3004") {
		t.Fatalf("missing primary location:\n%s", out)
	}
	if !strings.Contains(out, "  note: a.qs:1:5: previous declaration\n") {
		t.Fatalf("missing note:\n%s", out)
	}
	if !strings.Contains(out, "  1 | int x;\n") {
		t.Fatalf("missing note context:\n%s", out)
	}
}

func TestPrettyColor(t *testing.T) {
	fs, bag, _ := oneDiag(t, "int x = y;\n", 8, 9)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Color: true}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
}

func TestPrettyWithoutLocation(t *testing.T) {
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.ProjManifestError, source.Span{}, "bad manifest"))
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, source.NewFileSet(), PrettyOpts{}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if buf.String() != "error PRJ5001: bad manifest\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestShort(t *testing.T) {
	fs, bag, _ := oneDiag(t, "int x = y;\n", 8, 9)
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, PathModeAuto); err != nil {
		t.Fatalf("short: %v", err)
	}
	if buf.String() != "test.qs:1:9: error SEM3001: name \"y\" not found\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	id := fs.AddVirtual("/home/user/project/src/test.qs", []byte("int x = y;\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaNameNotFound, source.Span{File: id, Start: 8, End: 9}, "not found"))

	tests := []struct {
		name string
		mode PathMode
		want string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/test.qs:1:9:"},
		{"relative", PathModeRelative, "src/test.qs:1:9:"},
		{"basename", PathModeBasename, "test.qs:1:9:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Short(&buf, bag, fs, tt.mode); err != nil {
				t.Fatalf("short: %v", err)
			}
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Fatalf("want prefix %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.qs", []byte("int x;\nint x;\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaDuplicateName, source.Span{File: id, Start: 11, End: 12}, "dup").
		WithNote(source.Span{File: id, Start: 4, End: 5}, "previous declaration"))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings").
		WithNote(source.Span{}, `{"total_ms":1}`))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", out)
	}
	first := out.Diagnostics[0]
	if first.Code != "SEM3004" || first.Severity != "ERROR" {
		t.Fatalf("unexpected first diagnostic %+v", first)
	}
	if first.Location == nil || first.Location.StartLine != 2 || first.Location.StartCol != 5 {
		t.Fatalf("unexpected location %+v", first.Location)
	}
	if len(first.Notes) != 0 {
		t.Fatalf("notes must be omitted without IncludeNotes")
	}
	timings := out.Diagnostics[1]
	if timings.Location != nil {
		t.Fatalf("timings diagnostic has no location, got %+v", timings.Location)
	}
	if len(timings.Notes) != 1 || timings.Notes[0].Message != `{"total_ms":1}` {
		t.Fatalf("timings payload must always be included, got %+v", timings.Notes)
	}

	limited := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1, IncludeNotes: true})
	if limited.Count != 1 || len(limited.Diagnostics[0].Notes) != 1 {
		t.Fatalf("unexpected limited output %+v", limited)
	}
}

func TestParsePathMode(t *testing.T) {
	if m, ok := ParsePathMode("basename"); !ok || m != PathModeBasename {
		t.Fatalf("basename: %v %v", m, ok)
	}
	if _, ok := ParsePathMode("weird"); ok {
		t.Fatalf("weird path mode must be rejected")
	}
}
