package diag

import (
	"testing"

	"quill/internal/source"
)

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexBadNumber:      "LEX1004",
		SynExpectType:     "SYN2004",
		SemaDuplicateName: "SEM3004",
		IOImportNotFound:  "IO4002",
		ProjImportCycle:   "PRJ5002",
		UnknownCode:       "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if Code(3999).Title() != "Unknown error" {
		t.Fatalf("unexpected title for unknown code")
	}
}

func TestBuilderEmitsOnceWithNotes(t *testing.T) {
	bag := NewBag(10)
	r := &BagReporter{Bag: bag}
	b := ReportError(r, SemaAmbiguousName, source.Span{Start: 1, End: 2}, "ambiguous name 'x'").
		WithNote(source.Span{Start: 10, End: 11}, "found here").
		WithNote(source.Span{Start: 20, End: 21}, "found here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	if n := len(bag.Items()[0].Notes); n != 2 {
		t.Fatalf("expected 2 notes, got %d", n)
	}
	if !bag.HasErrors() {
		t.Fatalf("expected HasErrors")
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	bag := NewBag(3)
	bag.Add(NewError(SemaTypeMismatch, source.Span{File: 1, Start: 5, End: 6}, "b"))
	bag.Add(NewError(SemaTypeMismatch, source.Span{File: 0, Start: 9, End: 9}, "a"))
	bag.Add(NewError(SemaTypeMismatch, source.Span{File: 0, Start: 9, End: 9}, "a"))
	if bag.Add(NewError(SemaTypeMismatch, source.Span{}, "over")) {
		t.Fatalf("limit not enforced")
	}
	bag.Sort()
	bag.Dedup()
	items := bag.Items()
	if len(items) != 2 || items[0].Message != "a" || items[1].Message != "b" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(&BagReporter{Bag: bag})
	for range 3 {
		ReportWarning(r, SemaDuplicateLink, source.Span{Start: 3, End: 7}, "namespace 'a' is already linked").Emit()
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
}

func TestSeverityNames(t *testing.T) {
	cases := map[Severity][2]string{
		SevInfo:      {"INFO", "info"},
		SevWarning:   {"WARNING", "warning"},
		SevError:     {"ERROR", "error"},
		Severity(99): {"UNKNOWN", "unknown"},
	}
	for sev, want := range cases {
		if sev.String() != want[0] || sev.Label() != want[1] {
			t.Fatalf("severity %d = %q/%q", sev, sev.String(), sev.Label())
		}
	}
}
