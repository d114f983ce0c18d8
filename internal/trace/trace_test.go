package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestStreamTextNesting(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	pass := Begin(tr, ScopePass, "fixpoint", 0)
	lib := Begin(tr, ScopeLibrary, "library:core", pass.ID())
	Point(tr, ScopeNode, "deferred:x", lib.ID(), "variable") // отфильтровано уровнем
	lib.End("")
	pass.WithExtra("repetition", "1").End("unresolved=0")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "]   → library:core") {
		t.Fatalf("library span not indented: %q", lines[1])
	}
	if !strings.HasSuffix(lines[3], "← fixpoint (unresolved=0) {repetition=1}") {
		t.Fatalf("unexpected end line: %q", lines[3])
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeNode, "deferred:x", 0, "constant")
	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if ev["kind"] != "point" || ev["scope"] != "node" || ev["detail"] != "constant" {
		t.Fatalf("unexpected event: %v", ev)
	}
}

func TestRingKeepsNewest(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopePass, name, 0, "")
	}
	got := r.Snapshot()
	if len(got) != 3 || got[0].Name != "c" || got[2].Name != "e" {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestInertSpansPassParentThrough(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelPhase, FormatText))
	outer, ctx := Start(ctx, ScopeDriver, "diag")
	inner, _ := Start(ctx, ScopeLibrary, "library:main")
	if inner.ID() != outer.ID() {
		t.Fatalf("inert span id = %d, want parent %d", inner.ID(), outer.ID())
	}
	if d := inner.End(""); d != 0 {
		t.Fatalf("inert span measured %v", d)
	}
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]Level{"off": LevelOff, "PHASE": LevelPhase, "debug": LevelDebug} {
		got, err := ParseLevel(s)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error")
	}
	if tr, err := New(Config{Level: LevelOff}); err != nil || tr.Enabled() {
		t.Fatalf("off config = %v, %v", tr, err)
	}
}

func TestShouldEmitByLevel(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeLibrary, false},
		{LevelDetail, ScopeLibrary, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
		{Level(42), ScopeDriver, false},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v", tc.level, tc.scope, got)
		}
	}
}

func TestContextKeepsSpanAcrossTracerSwap(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelPhase, FormatText))
	span, ctx := Start(ctx, ScopeDriver, "check")
	ctx = WithTracer(ctx, Nop)
	if got := CurrentSpan(ctx).SpanID; got != span.ID() {
		t.Fatalf("span = %d, want %d", got, span.ID())
	}
	if FromContext(ctx) != Nop {
		t.Fatalf("tracer not replaced")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
}
