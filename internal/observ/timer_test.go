package observ

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Unix(0, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	load := tm.Begin("load")
	tm.End(load, "3 files")
	tm.End(load, "again")
	open := tm.Begin("resolve")
	_ = open

	r := tm.Report()
	if len(r.Phases) != 1 {
		t.Fatalf("phases = %d, want only the finished one", len(r.Phases))
	}
	if r.Phases[0].Name != "load" || r.Phases[0].Note != "3 files" || r.Phases[0].DurationMS != 1 {
		t.Fatalf("unexpected phase %+v", r.Phases[0])
	}
	if r.TotalMS != 1 {
		t.Fatalf("total = %v", r.TotalMS)
	}
	if s := tm.Summary(); !strings.Contains(s, "load") || !strings.Contains(s, "// 3 files") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestTimerTimeAndDuration(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	boom := errors.New("boom")
	if err := tm.Time("parse", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if err := tm.Time("parse", func() (string, error) { return "ok", nil }); err != nil {
		t.Fatal(err)
	}
	if got := tm.Duration("parse"); got != 4*time.Millisecond {
		t.Fatalf("parse duration = %v", got)
	}
	if r := tm.Report(); r.Phases[0].Note != "failed" {
		t.Fatalf("failed phase note = %q", r.Phases[0].Note)
	}
}

func TestTimerConcurrentPhases(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("parse"), "")
		}()
	}
	wg.Wait()
	if got := len(tm.Report().Phases); got != 8 {
		t.Fatalf("phases = %d, want 8", got)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if tm.Duration("x") != 0 || len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer must be inert")
	}
}
