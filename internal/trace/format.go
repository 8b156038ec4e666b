package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// Format is the rendering of trace events.
type Format uint8

const (
	// FormatAuto picks NDJSON for .ndjson/.jsonl paths and text otherwise.
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// formatFor resolves FormatAuto against an output path.
func formatFor(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// FormatEvent renders one event, newline included.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return appendJSON(nil, ev)
	}
	return appendText(nil, ev)
}

type wireEvent struct {
	Time      string            `json:"time"`
	Seq       uint64            `json:"seq"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	SpanID    uint64            `json:"span_id,omitempty"`
	ParentID  uint64            `json:"parent_id,omitempty"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	ElapsedUS int64             `json:"elapsed_us,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

func appendJSON(buf []byte, ev *Event) []byte {
	data, err := json.Marshal(wireEvent{
		Time:      ev.Time.UTC().Format(time.RFC3339Nano),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		SpanID:    ev.SpanID,
		ParentID:  ev.ParentID,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedUS: ev.Elapsed.Microseconds(),
		Extra:     ev.Extra,
	})
	if err != nil {
		// only string maps and scalars above; cannot fail
		return buf
	}
	buf = append(buf, data...)
	return append(buf, '\n')
}

var kindMarks = map[Kind]string{
	KindSpanBegin: "+",
	KindSpanEnd:   "-",
	KindPoint:     "*",
	KindHeartbeat: "~",
}

// appendText renders "15:04:05.000000 <indent><mark> name (detail) 1.2ms {k=v}".
// Units, rounds and items are indented one step per scope below the driver.
func appendText(buf []byte, ev *Event) []byte {
	buf = ev.Time.AppendFormat(buf, "15:04:05.000000")
	buf = append(buf, ' ')
	if ev.Scope > ScopeDriver {
		buf = append(buf, strings.Repeat("  ", int(ev.Scope-ScopeDriver))...)
	}
	buf = append(buf, kindMarks[ev.Kind]...)
	buf = append(buf, ' ')
	buf = append(buf, ev.Name...)
	if ev.Detail != "" {
		buf = append(buf, " ("...)
		buf = append(buf, ev.Detail...)
		buf = append(buf, ')')
	}
	if ev.Kind == KindSpanEnd {
		buf = append(buf, ' ')
		buf = append(buf, ev.Elapsed.Round(time.Microsecond).String()...)
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		buf = append(buf, " {"...)
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = append(buf, k...)
			buf = append(buf, '=')
			buf = append(buf, ev.Extra[k]...)
		}
		buf = append(buf, '}')
	}
	return append(buf, '\n')
}

// WriteEvents renders events to w in order.
func WriteEvents(w io.Writer, events []Event, format Format) error {
	var buf []byte
	for i := range events {
		buf = buf[:0]
		if format == FormatNDJSON {
			buf = appendJSON(buf, &events[i])
		} else {
			buf = appendText(buf, &events[i])
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
