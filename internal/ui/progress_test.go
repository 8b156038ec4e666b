package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"tyjson/internal/pipeline"
)

func TestProgressModelTracksUnits(t *testing.T) {
	events := make(chan pipeline.Event)
	m := NewProgressModel("lowering", []string{"a.toml", "b.toml"}, events).(*progressModel)

	m.Update(eventMsg(pipeline.Event{File: "a.toml", Stage: pipeline.StageDrain, Status: pipeline.StatusWorking}))
	m.Update(eventMsg(pipeline.Event{File: "b.toml", Stage: pipeline.StageEncode, Status: pipeline.StatusCached}))
	m.Update(eventMsg(pipeline.Event{File: "unknown.toml", Stage: pipeline.StageLoad, Status: pipeline.StatusError}))

	if got := m.items[0].status; got != "draining" {
		t.Fatalf("a.toml status = %q, want draining", got)
	}
	if got := m.items[1].status; got != "cached" {
		t.Fatalf("b.toml status = %q, want cached", got)
	}
	if p := progressOf(m.items[0]) + progressOf(m.items[1]); p != 1.5 {
		t.Fatalf("progress = %v, want 1.5", p)
	}

	view := m.View()
	for _, want := range []string{"draining", "cached", "a.toml", "b.toml", "1/2 units, 1 cached"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view misses %q:\n%s", want, view)
		}
	}

	m.Update(doneMsg{})
	if !strings.Contains(m.View(), "done: lowering") {
		t.Fatalf("finished view misses header:\n%s", m.View())
	}
}

func TestProgressModelShowsFailures(t *testing.T) {
	m := NewProgressModel("lowering", []string{"bad.toml"}, nil).(*progressModel)
	m.Update(eventMsg(pipeline.Event{File: "bad.toml", Stage: pipeline.StageLoad, Status: pipeline.StatusWorking}))
	m.Update(eventMsg(pipeline.Event{
		File:    "bad.toml",
		Stage:   pipeline.StageLoad,
		Status:  pipeline.StatusError,
		Err:     errors.New("unknown root app::nope"),
		Elapsed: 12 * time.Millisecond,
	}))

	view := m.View()
	for _, want := range []string{"error", "unknown root app::nope", "12ms", "1/1 units, 1 failed"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view misses %q:\n%s", want, view)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	cases := []struct {
		stage  pipeline.Stage
		status pipeline.Status
		want   string
	}{
		{pipeline.StageLoad, pipeline.StatusQueued, "queued"},
		{pipeline.StageDrain, pipeline.StatusWorking, "draining"},
		{pipeline.StageEncode, pipeline.StatusWorking, "encoding"},
		{pipeline.StageDrain, pipeline.StatusError, "error"},
		{pipeline.StageEncode, pipeline.Status("bogus"), ""},
	}
	for _, tc := range cases {
		if got := statusLabel(tc.stage, tc.status); got != tc.want {
			t.Fatalf("statusLabel(%s, %s) = %q, want %q", tc.stage, tc.status, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate(short) = %q", got)
	}
	if got := truncate("a/very/long/manifest/path.toml", 10); got != "a/very/..." {
		t.Fatalf("truncate(long) = %q", got)
	}
}
