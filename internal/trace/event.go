package trace

import "time"

// Kind tells begin, end, point and heartbeat events apart.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. A whole invocation is the coarsest
// scope, one lowered item the finest.
type Scope uint8

const (
	// ScopeDriver covers one CLI invocation.
	ScopeDriver Scope = iota + 1
	// ScopeUnit covers one manifest from load to encode.
	ScopeUnit
	// ScopePass covers one round of the reachability drain.
	ScopePass
	// ScopeItem covers one interned instance, ADT, trait or vtable.
	ScopeItem
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopeUnit:   "unit",
	ScopePass:   "pass",
	ScopeItem:   "item",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Elapsed is set on span ends only.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string
	Detail   string
	Elapsed  time.Duration
	Extra    map[string]string
}

// clone copies ev so that sinks keeping events do not share the extra map
// with a span that is still being annotated.
func (ev *Event) clone() Event {
	out := *ev
	if len(ev.Extra) > 0 {
		out.Extra = make(map[string]string, len(ev.Extra))
		for k, v := range ev.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
