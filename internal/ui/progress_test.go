package ui

import (
	"errors"
	"math"
	"strings"
	"testing"

	"quill/internal/driver"
)

func TestApplyEventTracksFiles(t *testing.T) {
	m := NewProgressModel("quill diag", []string{"main.qs"}, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "main.qs", Stage: driver.StageParse, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "core.qs", Stage: driver.StageLoad, Status: driver.StatusQueued})
	if len(m.items) != 2 || m.items[1].path != "core.qs" {
		t.Fatalf("discovered file not appended: %+v", m.items)
	}
	if m.items[0].status != "parsing" {
		t.Fatalf("status = %q", m.items[0].status)
	}
	if got := m.percent(); math.Abs(got-0.15) > 1e-9 {
		t.Fatalf("percent = %v, want 0.15", got)
	}

	m.applyEvent(driver.Event{File: "core.qs", Stage: driver.StageResolve, Status: driver.StatusCached})
	m.applyEvent(driver.Event{File: "core.qs", Stage: driver.StageCheck, Status: driver.StatusWorking})
	if m.items[1].status != "cached" || !m.items[1].final {
		t.Fatalf("cached file must stay final: %+v", m.items[1])
	}

	m.applyEvent(driver.Event{File: "main.qs", Stage: driver.StageCheck, Status: driver.StatusError, Err: errors.New("x")})
	if got := m.percent(); got != 1 {
		t.Fatalf("percent = %v, want 1", got)
	}
}

func TestViewRendersItems(t *testing.T) {
	m := NewProgressModel("quill diag", []string{"a.qs", "b.qs"}, nil).(*progressModel)
	m.applyEvent(driver.Event{Stage: driver.StageResolve, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "a.qs", Stage: driver.StageCheck, Status: driver.StatusDone})
	view := m.View()
	for _, want := range []string{"quill diag (resolving)", "a.qs", "b.qs", "done", "queued"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTallyAndFooter(t *testing.T) {
	m := NewProgressModel("quill diag", []string{"a.qs", "b.qs", "c.qs"}, nil).(*progressModel)
	m.applyEvent(driver.Event{File: "a.qs", Stage: driver.StageCheck, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.qs", Stage: driver.StageResolve, Status: driver.StatusCached})
	m.applyEvent(driver.Event{File: "c.qs", Stage: driver.StageParse, Status: driver.StatusError, Err: errors.New("x")})

	finished, cached, failed := m.tally()
	if finished != 3 || cached != 1 || failed != 1 {
		t.Fatalf("tally = %d, %d, %d", finished, cached, failed)
	}
	view := m.View()
	for _, want := range []string{"3/3", "1 cached", "1 failed"} {
		if !strings.Contains(view, want) {
			t.Fatalf("footer lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncateKeepsTail(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"abcdef", 5, "...ef"},
		{"abc", 10, "abc"},
		{"abcdef", 0, "abcdef"},
		{"abcdef", 3, "def"},
		{"日本語テキスト", 6, "...ト"},
		{"日本語テキスト", 3, "ト"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
