// Package observ measures how long each stage of a unit takes.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured stage.
type Phase struct {
	Name string
	Dur  time.Duration
	Note string
}

// Timer records the stages of one unit in the order they start. Parallel
// units each own a timer; Merge combines their reports.
type Timer struct {
	clock  func() time.Time
	phases []Phase
}

func NewTimer() *Timer { return &Timer{clock: time.Now} }

// Start opens a phase and returns the function that closes it. The closer
// stores note and returns the measured duration; calling it again changes
// nothing.
func (t *Timer) Start(name string) func(note string) time.Duration {
	i := len(t.phases)
	t.phases = append(t.phases, Phase{Name: name})
	began := t.clock()
	closed := false
	return func(note string) time.Duration {
		if !closed {
			closed = true
			t.phases[i].Dur = t.clock().Sub(began)
			t.phases[i].Note = note
		}
		return t.phases[i].Dur
	}
}

// PhaseReport is a phase in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the timing of one unit, or of several after Merge.
type Report struct {
	Unit    string        `json:"unit,omitempty"`
	Units   int           `json:"units,omitempty"`
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	for _, p := range t.phases {
		ms := millis(p.Dur)
		r.TotalMS += ms
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: ms, Note: p.Note})
	}
	return r
}

// Merge adds up phases of the same name, keeping the order in which names
// first appear. Per-unit notes are dropped.
func Merge(reports ...Report) Report {
	out := Report{Units: len(reports)}
	at := make(map[string]int)
	for _, r := range reports {
		out.TotalMS += r.TotalMS
		for _, p := range r.Phases {
			i, ok := at[p.Name]
			if !ok {
				i = len(out.Phases)
				at[p.Name] = i
				out.Phases = append(out.Phases, PhaseReport{Name: p.Name})
			}
			out.Phases[i].DurationMS += p.DurationMS
		}
	}
	return out
}

// Summary renders the report as a table with each phase's share of the
// total.
func (r Report) Summary() string {
	var b strings.Builder
	switch {
	case r.Unit != "":
		fmt.Fprintf(&b, "timings (%s):\n", r.Unit)
	case r.Units > 1:
		fmt.Fprintf(&b, "timings (%d units):\n", r.Units)
	default:
		b.WriteString("timings:\n")
	}
	for _, p := range r.Phases {
		share := 0.0
		if r.TotalMS > 0 {
			share = 100 * p.DurationMS / r.TotalMS
		}
		fmt.Fprintf(&b, "  %-10s %9.2f ms %5.1f%%", p.Name, p.DurationMS, share)
		if p.Note != "" {
			b.WriteString("  " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-10s %9.2f ms\n", "total", r.TotalMS)
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
