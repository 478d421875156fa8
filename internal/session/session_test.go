package session_test

import (
	"errors"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/splitwatch/internal/clock"
	"github.com/fakeyudi/splitwatch/internal/report"
	"github.com/fakeyudi/splitwatch/internal/session"
	"github.com/fakeyudi/splitwatch/internal/timer"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// recorder is an Exporter that keeps every report it is handed.
type recorder struct {
	reports []*report.Report
	err     error
}

func (r *recorder) Export(rep *report.Report) error {
	r.reports = append(r.reports, rep)
	return r.err
}

func newSession(t *testing.T) (*session.Session, *clock.Manual, *recorder) {
	t.Helper()
	clk := clock.NewManual(epoch)
	rec := &recorder{}
	return session.New(clk, session.WithExporter(rec), session.WithID("test")), clk, rec
}

func TestSplitThenStopScenario(t *testing.T) {
	s, clk, rec := newSession(t)

	s.Start()
	clk.Advance(5000 * time.Millisecond)
	if r, ok := s.MarkSplit(); !ok || r.Index != 1 || r.Duration != 5*time.Second {
		t.Fatalf("MarkSplit = %+v, %v", r, ok)
	}
	clk.Advance(7000 * time.Millisecond)
	r, err := s.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}

	want := "total 00:12.000\n" +
		"=== === === ===\n" +
		"p.01 00:05.000\n" +
		"p.02 00:07.000\n" +
		"\n" +
		"=== === === ===\n" +
		"\n" +
		"=== === === ===\n" +
		"=== === === ===\n"
	if got := report.Text(r); got != want {
		t.Errorf("report mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if len(rec.reports) != 1 || rec.reports[0] != r {
		t.Errorf("exporter should receive the stop report exactly once, got %d", len(rec.reports))
	}
}

func TestImmediateStopRecordsOneSplit(t *testing.T) {
	s, clk, _ := newSession(t)

	s.Start()
	clk.Advance(3 * time.Second)
	r, _ := s.Stop()

	if len(r.Splits) != 1 || r.Splits[0].Duration != 3*time.Second {
		t.Fatalf("splits = %+v, want one 3s split", r.Splits)
	}
	if r.Total != 3*time.Second {
		t.Errorf("total = %v, want 3s", r.Total)
	}
}

func TestTrailingZeroSplitIsKept(t *testing.T) {
	s, clk, _ := newSession(t)

	s.Start()
	clk.Advance(2 * time.Second)
	s.MarkSplit()
	r, _ := s.Stop()

	if len(r.Splits) != 2 {
		t.Fatalf("splits = %+v, want 2", r.Splits)
	}
	if r.Splits[1].Duration != 0 {
		t.Errorf("trailing split = %v, want 0", r.Splits[1].Duration)
	}
}

func TestInvalidTransitionsAreNoops(t *testing.T) {
	s, clk, rec := newSession(t)

	if r, err := s.Stop(); r != nil || err != nil {
		t.Errorf("Stop while idle = %v, %v", r, err)
	}
	if _, ok := s.MarkSplit(); ok {
		t.Error("MarkSplit while idle should be a no-op")
	}

	s.Start()
	if s.Start() {
		t.Error("second Start should be a no-op")
	}
	clk.Advance(time.Second)
	s.MarkSplit()
	s.Commit("still here")

	if s.Reset() {
		t.Fatal("Reset while running must be rejected")
	}
	snap := s.Snapshot()
	if snap.State != timer.StateRunning || len(snap.Splits) != 1 || len(snap.Annotations) != 1 {
		t.Errorf("rejected reset changed state: %+v", snap)
	}
	if len(rec.reports) != 0 {
		t.Errorf("no report expected before stop, got %d", len(rec.reports))
	}
}

func TestResetWipesSession(t *testing.T) {
	s, clk, _ := newSession(t)

	s.Start()
	clk.Advance(time.Second)
	s.SelectPage(2)
	s.Commit("note")
	s.Stop()

	if !s.Reset() {
		t.Fatal("Reset while stopped should succeed")
	}
	snap := s.Snapshot()
	if snap.State != timer.StateIdle || snap.Elapsed != 0 || len(snap.Splits) != 0 || len(snap.Annotations) != 0 {
		t.Errorf("after reset: %+v", snap)
	}
	if snap.ID == "test" {
		t.Error("reset should start a new session ID")
	}

	// A fresh first start measures the first split from the new start.
	clk.Advance(time.Minute)
	s.Start()
	clk.Advance(4 * time.Second)
	r, _ := s.Stop()
	if len(r.Splits) != 1 || r.Splits[0].Duration != 4*time.Second {
		t.Errorf("splits after reset = %+v", r.Splits)
	}
}

func TestResetFromIdle(t *testing.T) {
	s, _, _ := newSession(t)
	if !s.Reset() {
		t.Error("Reset while idle should succeed")
	}
}

func TestCommitEmptyAfterSelect(t *testing.T) {
	s, _, _ := newSession(t)
	s.SelectPage(3)

	if s.Commit("") {
		t.Fatal("empty commit should be ignored")
	}
	snap := s.Snapshot()
	if len(snap.Annotations) != 0 {
		t.Errorf("annotations = %d, want 0", len(snap.Annotations))
	}
	if snap.Draft != "p.03\n" {
		t.Errorf("draft = %q, want %q", snap.Draft, "p.03\n")
	}
}

func TestNotesAppearInReport(t *testing.T) {
	s, clk, _ := newSession(t)

	s.SelectPage(1) // before start: same semantics
	s.SetDraft("p.01\nintro is long")
	if !s.CommitDraft() {
		t.Fatal("CommitDraft should succeed")
	}
	s.Start()
	s.SelectPage(12)
	s.SetDraft("p.12\nabandoned")
	s.SelectPage(4)
	s.Commit("table 3 totals do not add up\n\n")
	clk.Advance(1500 * time.Millisecond)
	r, _ := s.Stop()

	want := "total 00:01.500\n" +
		"=== === === ===\n" +
		"p.01 00:01.500\n" +
		"\n" +
		"=== === === ===\n" +
		"p.01\nintro is long\n" +
		"p.04\ntable 3 totals do not add up\n" +
		"\n" +
		"=== === === ===\n" +
		"=== === === ===\n"
	if got := report.Text(r); got != want {
		t.Errorf("report mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestExportFailureKeepsStop(t *testing.T) {
	s, clk, rec := newSession(t)
	rec.err = errors.New("disk full")

	s.Start()
	clk.Advance(time.Second)
	r, err := s.Stop()
	if err == nil || !errors.Is(err, rec.err) {
		t.Fatalf("Stop error = %v, want wrapped %v", err, rec.err)
	}
	if r == nil {
		t.Fatal("report should still be returned")
	}
	if s.State() != timer.StateStopped {
		t.Errorf("state = %q, want stopped", s.State())
	}
}

func TestEveryStopExports(t *testing.T) {
	s, clk, rec := newSession(t)
	s.Start()
	clk.Advance(time.Second)
	s.Stop()
	clk.Advance(time.Hour)
	s.Start()
	clk.Advance(2 * time.Second)
	s.Stop()

	if len(rec.reports) != 2 {
		t.Fatalf("exports = %d, want 2", len(rec.reports))
	}
	second := rec.reports[1]
	if second.Total != 3*time.Second {
		t.Errorf("second total = %v, want 3s", second.Total)
	}
	if len(second.Splits) != 2 || second.Splits[1].Index != 2 {
		t.Errorf("second splits = %+v", second.Splits)
	}
}

func TestElapsedDoesNotMutate(t *testing.T) {
	s, clk, _ := newSession(t)
	s.Start()
	clk.Advance(750 * time.Millisecond)

	before := s.Snapshot()
	for i := 0; i < 10; i++ {
		if got := s.ElapsedMs(); got != 750 {
			t.Fatalf("ElapsedMs = %d, want 750", got)
		}
	}
	after := s.Snapshot()
	if before.State != after.State || len(before.Splits) != len(after.Splits) {
		t.Error("Elapsed changed the session")
	}
}

// Any sequence of intents keeps split indices contiguous, gives every stop
// exactly one extra split, and leaves elapsed equal to total running time.
func TestSessionInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		clk := clock.NewManual(epoch)
		rec := &recorder{}
		s := session.New(clk, session.WithExporter(rec))

		var running time.Duration
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			step := time.Duration(rapid.Int64Range(0, 5000).Draw(rt, "step_ms")) * time.Millisecond
			if s.State() == timer.StateRunning {
				running += step
			}
			clk.Advance(step)

			before := len(s.Snapshot().Splits)
			wasRunning := s.State() == timer.StateRunning

			switch rapid.SampledFrom([]string{"start", "stop", "split", "reset", "select", "commit"}).Draw(rt, "op") {
			case "start":
				s.Start()
			case "stop":
				s.Stop()
				after := len(s.Snapshot().Splits)
				if wasRunning && after != before+1 {
					rt.Fatalf("stop added %d splits, want 1", after-before)
				}
				if !wasRunning && after != before {
					rt.Fatalf("stop while not running changed splits")
				}
			case "split":
				s.MarkSplit()
			case "reset":
				if s.Reset() {
					running = 0
				}
			case "select":
				s.SelectPage(rapid.IntRange(1, 99).Draw(rt, "page"))
			case "commit":
				s.Commit(rapid.StringMatching(`[a-z ]{0,10}`).Draw(rt, "text"))
			}

			snap := s.Snapshot()
			for j, r := range snap.Splits {
				if r.Index != j+1 {
					rt.Fatalf("split %d has index %d", j, r.Index)
				}
			}
			if snap.Elapsed != running {
				rt.Fatalf("elapsed = %v, want %v", snap.Elapsed, running)
			}
		}
	})
}
