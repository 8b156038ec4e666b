package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopeUnit, true},
		{LevelPhase, ScopePass, false},
		{LevelDetail, ScopePass, true},
		{LevelDetail, ScopeItem, false},
		{LevelDebug, ScopeItem, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestStreamTracerWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	span := Begin(tr, ScopeUnit, "unit:a.toml", 0)
	Point(tr, ScopeItem, "hidden", "", span.ID(), nil)
	span.WithExtra("instances", "3").WithExtra("adts", "1").End("ok")

	out := buf.String()
	if !strings.Contains(out, "unit:a.toml") {
		t.Fatalf("missing span name in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("item scope leaked at detail level: %q", out)
	}
	if !strings.Contains(out, "{adts=1, instances=3}") {
		t.Fatalf("extras not sorted: %q", out)
	}
}

func TestRingTracerKeepsLastEvents(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeItem, name, "", 0, nil)
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", events)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Fatalf("expected 2 ndjson lines, got %d", lines)
	}
}

func TestContextFallsBackToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop tracer")
	}
	ring := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("expected tracer from context")
	}
}

func TestParseLevelIgnoresCase(t *testing.T) {
	for _, s := range []string{"detail", "DETAIL", "Detail"} {
		lvl, err := ParseLevel(s)
		if err != nil || lvl != LevelDetail {
			t.Fatalf("ParseLevel(%q) = %v, %v", s, lvl, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if LevelError.ShouldEmit(ScopeDriver) {
		t.Fatalf("error level must not record spans")
	}
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("Both")
	if err != nil || mode != ModeBoth {
		t.Fatalf("ParseMode(Both) = %v, %v", mode, err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSpanEndIsIdempotent(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	before := OpenSpans()
	span := Begin(ring, ScopeUnit, "unit", 0)
	if OpenSpans() != before+1 {
		t.Fatalf("open spans not counted")
	}
	span.End("ok")
	span.End("again")
	if OpenSpans() != before {
		t.Fatalf("open spans = %d, want %d", OpenSpans(), before)
	}
	ends := 0
	for _, ev := range ring.Snapshot() {
		if ev.Kind == KindSpanEnd {
			ends++
		}
	}
	if ends != 1 {
		t.Fatalf("got %d end events, want 1", ends)
	}
}

func TestDisabledSpanIsInert(t *testing.T) {
	span := Begin(NewRingTracer(4, LevelPhase), ScopeItem, "item", 0)
	if span.ID() != 0 {
		t.Fatalf("filtered span got id %d", span.ID())
	}
	if d := span.WithExtra("k", "v").End(""); d != 0 {
		t.Fatalf("filtered span reported %v", d)
	}
}

func TestRingUnderSelectsOneUnit(t *testing.T) {
	ring := NewRingTracer(64, LevelDebug)
	driver := Begin(ring, ScopeDriver, "tyjson lower", 0)
	a := Begin(ring, ScopeUnit, "unit", driver.ID())
	b := Begin(ring, ScopeUnit, "unit", driver.ID())
	round := Begin(ring, ScopePass, "round 1", a.ID())
	Point(ring, ScopeItem, "instance", "app::main", round.ID(), nil)
	Point(ring, ScopeItem, "instance", "app::other", b.ID(), nil)
	round.End("")
	a.End("")
	b.End("")
	driver.End("")

	var names []string
	for _, ev := range ring.Under(a.ID()) {
		names = append(names, ev.Kind.String()+":"+ev.Name+ev.Detail)
	}
	want := "begin:unit,begin:round 1,point:instanceapp::main,end:round 1,end:unit"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("Under(a) = %s, want %s", got, want)
	}
}

func TestRingKeepsExtrasPerEvent(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	span := Begin(ring, ScopeUnit, "unit", 0)
	span.WithExtra("status", "ok").End("")
	span.WithExtra("status", "changed")
	events := ring.Snapshot()
	if got := events[len(events)-1].Extra["status"]; got != "ok" {
		t.Fatalf("stored extra mutated to %q", got)
	}
}

func TestNDJSONCarriesElapsed(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	span := Begin(tr, ScopeUnit, "unit", 0)
	time.Sleep(time.Millisecond)
	span.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	var end map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if end["kind"] != "end" || end["scope"] != "unit" {
		t.Fatalf("unexpected end event %v", end)
	}
	if us, _ := end["elapsed_us"].(float64); us < 1000 {
		t.Fatalf("elapsed_us = %v", end["elapsed_us"])
	}
}

func TestNewBuildsRequestedMode(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil || tr != Nop {
		t.Fatalf("off level should give Nop, got %T %v", tr, err)
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopeUnit, "unit", 0).End("")
	if RingOf(tr) == nil || len(RingOf(tr).Snapshot()) != 2 {
		t.Fatalf("ring of both-mode tracer missing events")
	}
	if !strings.Contains(buf.String(), "+ unit") {
		t.Fatalf("stream output missing begin: %q", buf.String())
	}
	if RingOf(NewStreamTracer(&buf, LevelPhase, FormatText)) != nil {
		t.Fatalf("stream tracer has no ring")
	}
}

func TestHeartbeatReportsOpenSpans(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(ring, 5*time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for {
		if evs := ring.Snapshot(); len(evs) > 0 {
			if evs[0].Kind != KindHeartbeat || evs[0].Extra["open_spans"] == "" {
				t.Fatalf("unexpected event %+v", evs[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no heartbeat")
		}
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()

	var nilBeat *Heartbeat
	nilBeat.Stop()
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("heartbeat on Nop tracer")
	}
}
