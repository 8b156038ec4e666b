package pipeline

import "time"

// Stage is one step of a unit. Every unit walks Stages in order; a cache
// hit stops after StageLoad. All lowering happens inside StageDrain.
type Stage string

const (
	StageLoad   Stage = "load"   // read, cache lookup, manifest decode
	StageDrain  Stage = "drain"  // session, lowering to a fixed point
	StageEncode Stage = "encode" // JSON document, cache store
)

var Stages = []Stage{StageLoad, StageDrain, StageEncode}

// Status is where a unit stands within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusCached  Status = "cached"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event is a progress report. An event with an empty File closes the run.
// Elapsed is the stage time on errors and the unit time once it finishes.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink receives events from all units at once and must be safe for
// concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink sends every event on Ch and blocks while Ch is full.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

// Timings holds the wall time of every stage a unit ran.
type Timings map[Stage]time.Duration

func (t Timings) Has(stage Stage) bool {
	_, ok := t[stage]
	return ok
}

// Total sums all recorded stages.
func (t Timings) Total() time.Duration {
	var sum time.Duration
	for _, d := range t {
		sum += d
	}
	return sum
}
