package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"tyjson/internal/diag"
)

func sampleUnits() []Unit {
	return []Unit{
		{File: "a.toml", Items: []diag.Diagnostic{
			diag.New(diag.SevWarning, diag.LowerConstEval, "app::X", "overflow\nin add"),
			diag.NewError(diag.LowerUnresolvedInstance, "app::f", "no impl").WithNote("app::main", "called here"),
		}},
		{File: "b.yaml", Items: []diag.Diagnostic{
			diag.New(diag.SevInfo, diag.LowerUnknownPredicate, "app::T", "dropped"),
		}},
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleUnits(), PrettyOpts{ShowNotes: true, Summary: true}); err != nil {
		t.Fatalf("Pretty() error: %v", err)
	}
	want := "a.toml: error[LOW1001] app::f: no impl\n" +
		"    note: app::main: called here\n" +
		"a.toml: warning[LOW1004] app::X: overflow in add\n" +
		"b.yaml: info[LOW1007] app::T: dropped\n" +
		"1 error, 1 warning\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\nwant:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleUnits()[:1], PrettyOpts{Color: true}); err != nil {
		t.Fatalf("Pretty() error: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected escape codes, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "note") {
		t.Fatalf("notes should be hidden, got %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleUnits(), JSONOpts{IncludeNotes: true, Max: 2}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", out)
	}
	first := out.Diagnostics[0]
	if first.File != "a.toml" || first.Severity != "ERROR" || first.Code != "LOW1001" || len(first.Notes) != 1 {
		t.Fatalf("unexpected first diagnostic: %+v", first)
	}
	if out.Diagnostics[1].Code != "LOW1004" {
		t.Fatalf("unexpected order: %+v", out.Diagnostics)
	}
}

func TestJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil, JSONOpts{}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"diagnostics": []`) {
		t.Fatalf("empty output should list no diagnostics, got %s", buf.String())
	}
}
