package trace

import (
	"fmt"
	"strings"
)

// Level selects how deep tracing goes.
type Level uint8

const (
	LevelOff Level = iota
	// LevelError records nothing while running; ring mode still keeps the
	// buffer for a dump when a unit aborts.
	LevelError
	LevelPhase
	LevelDetail
	LevelDebug
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// deepest is the finest scope each level lets through. Zero means none.
var deepest = [...]Scope{
	LevelOff:    0,
	LevelError:  0,
	LevelPhase:  ScopeUnit,
	LevelDetail: ScopePass,
	LevelDebug:  ScopeItem,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(deepest) {
		return false
	}
	limit := deepest[l]
	return limit != 0 && scope <= limit
}
