package observ

import (
	"strings"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := &Timer{clock: fakeClock(2 * time.Millisecond)}
	stop := tm.Start("load")
	if d := stop("cached"); d != 2*time.Millisecond {
		t.Fatalf("load took %v", d)
	}
	if d := stop("again"); d != 2*time.Millisecond {
		t.Fatalf("second close changed duration to %v", d)
	}
	tm.Start("drain")("")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Note != "cached" || r.TotalMS != 4 {
		t.Fatalf("unexpected report: %+v", r)
	}
	sum := r.Summary()
	for _, want := range []string{"load", "cached", " 50.0%", "total"} {
		if !strings.Contains(sum, want) {
			t.Fatalf("summary misses %q:\n%s", want, sum)
		}
	}
	if len(NewTimer().Report().Phases) != 0 {
		t.Fatalf("empty timer should report no phases")
	}
}

func TestMerge(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "load", DurationMS: 1}, {Name: "drain", DurationMS: 2}}}
	b := Report{TotalMS: 4, Phases: []PhaseReport{{Name: "drain", DurationMS: 3}, {Name: "encode", DurationMS: 1, Note: "x"}}}

	m := Merge(a, b)
	if m.TotalMS != 7 || m.Units != 2 {
		t.Fatalf("total = %v units = %d", m.TotalMS, m.Units)
	}
	want := []PhaseReport{{Name: "load", DurationMS: 1}, {Name: "drain", DurationMS: 5}, {Name: "encode", DurationMS: 1}}
	if len(m.Phases) != len(want) {
		t.Fatalf("phases = %+v", m.Phases)
	}
	for i := range want {
		if m.Phases[i] != want[i] {
			t.Fatalf("phase %d = %+v, want %+v", i, m.Phases[i], want[i])
		}
	}
	if !strings.HasPrefix(m.Summary(), "timings (2 units):") {
		t.Fatalf("merged header: %s", m.Summary())
	}
}
