package report_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"pgregory.net/rapid"

	"github.com/fakeyudi/splitwatch/internal/annotation"
	"github.com/fakeyudi/splitwatch/internal/report"
	"github.com/fakeyudi/splitwatch/internal/split"
)

// Parsing what a renderer produced yields the original report.
func TestRenderParseRoundTrip(t *testing.T) {
	pairs := []struct {
		name     string
		renderer report.Renderer
		parser   report.Parser
		keepsID  bool
	}{
		{"text", &report.TextRenderer{}, &report.TextParser{}, false},
		{"json", &report.JSONRenderer{}, &report.JSONParser{}, true},
		{"yaml", &report.YAMLRenderer{}, &report.YAMLParser{}, true},
	}
	for _, pair := range pairs {
		t.Run(pair.name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				original := generateReport(rt)
				data, err := pair.renderer.Render(original)
				if err != nil {
					rt.Fatalf("Render: %v", err)
				}
				parsed, err := pair.parser.Parse(data)
				if err != nil {
					rt.Fatalf("Parse: %v\n%s", err, data)
				}

				want := *original
				if !pair.keepsID {
					want.SessionID = ""
				}
				if diff := cmp.Diff(&want, parsed, cmpopts.EquateEmpty()); diff != "" {
					rt.Fatalf("round trip mismatch (-want +got):\n%s\n%s", diff, data)
				}
			})
		})
	}
}

func TestTextParserHeaderlessNote(t *testing.T) {
	data := "total 00:03.000\n=== === === ===\np.01 00:03.000\n\n=== === === ===\nloose remark\nsecond line\np.02\nlater\n\n=== === === ===\n=== === === ===\n"
	r, err := (&report.TextParser{}).Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := &report.Report{
		Total:  3 * time.Second,
		Splits: []split.Record{{Index: 1, Duration: 3 * time.Second}},
		Annotations: []annotation.Entry{
			{Page: 0, Text: "loose remark\nsecond line"},
			{Page: 2, Text: "p.02\nlater"},
		},
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

// Header-shaped lines are only unambiguous at the start of a note; inside a
// body they begin a new one.
func TestTextParserHeaderShapedBodyLine(t *testing.T) {
	r := &report.Report{
		Total: time.Second,
		Annotations: []annotation.Entry{
			{Page: 3, Text: "p.03"},
			{Page: 3, Text: "p.03\ncompare with\np.04"},
		},
	}
	data, err := (&report.TextRenderer{}).Render(r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got, err := (&report.TextParser{}).Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []annotation.Entry{
		{Page: 3, Text: "p.03"},
		{Page: 3, Text: "p.03\ncompare with"},
		{Page: 4, Text: "p.04"},
	}
	if diff := cmp.Diff(want, got.Annotations); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestTextParserErrors(t *testing.T) {
	cases := map[string]struct {
		data string
		line int
	}{
		"not a report":     {"hello\n", 2},
		"bad total":        {"total soon\n=== === === ===\n\n=== === === ===\n\n=== === === ===\n=== === === ===\n", 1},
		"missing sep":      {"total 00:01.000\np.01 00:01.000\n\n=== === === ===\n\n=== === === ===\n=== === === ===\n", 2},
		"bad split":        {"total 00:01.000\n=== === === ===\npage one 1s\n\n=== === === ===\n\n=== === === ===\n=== === === ===\n", 3},
		"split gap":        {"total 00:01.000\n=== === === ===\np.02 00:01.000\n\n=== === === ===\n\n=== === === ===\n=== === === ===\n", 3},
		"no notes divider": {"total 00:01.000\n=== === === ===\np.01 00:01.000\n\nnotes\n\n=== === === ===\n=== === === ===\n", 5},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := (&report.TextParser{}).Parse([]byte(tc.data))
			var perr *report.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if perr.Line != tc.line {
				t.Errorf("line = %d, want %d (%v)", perr.Line, tc.line, perr)
			}
		})
	}
}

func TestJSONParserRejectsGarbage(t *testing.T) {
	if _, err := (&report.JSONParser{}).Parse([]byte("{not json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestFormatForPath(t *testing.T) {
	cases := map[string]string{
		"2024-01-01_10-00-00.txt": report.FormatText,
		"out/report.JSON":         report.FormatJSON,
		"review.yml":              report.FormatYAML,
		"review.yaml":             report.FormatYAML,
		"no-extension":            report.FormatText,
	}
	for path, want := range cases {
		if got := report.FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
	if report.Extension(report.FormatYAML) != ".yaml" || report.Extension("") != ".txt" {
		t.Error("Extension mapping is wrong")
	}
}
