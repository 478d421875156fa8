// Package session ties the timer, the split tracker and the annotation
// buffer into one review session and produces the report when it stops.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fakeyudi/splitwatch/internal/annotation"
	"github.com/fakeyudi/splitwatch/internal/clock"
	"github.com/fakeyudi/splitwatch/internal/report"
	"github.com/fakeyudi/splitwatch/internal/split"
	"github.com/fakeyudi/splitwatch/internal/timer"
)

// Exporter receives the report produced by each Stop. Export runs while the
// session is locked and must not call back into it.
type Exporter interface {
	Export(r *report.Report) error
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(r *report.Report) error

func (f ExporterFunc) Export(r *report.Report) error { return f(r) }

// Snapshot is a read-only view of the session for presentation.
type Snapshot struct {
	ID          string
	State       timer.State
	Elapsed     time.Duration
	Splits      []split.Record
	Annotations []annotation.Entry
	Page        int
	Draft       string
}

// Session is one review session. All methods are safe to call from multiple
// goroutines; transitions never interleave.
type Session struct {
	mu       sync.Mutex
	id       string
	clock    clock.Clock
	timer    *timer.Timer
	splits   *split.Tracker
	notes    *annotation.Buffer
	exporter Exporter
	logger   *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithExporter sets where reports go on Stop.
func WithExporter(e Exporter) Option {
	return func(s *Session) { s.exporter = e }
}

// WithLogger sets the logger transitions are recorded to.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithID fixes the session ID instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New creates an idle session reading time from clk.
func New(clk clock.Clock, opts ...Option) *Session {
	s := &Session{
		clock:  clk,
		timer:  timer.New(),
		splits: split.NewTracker(),
		notes:  annotation.NewBuffer(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.New().String()
	}
	return s
}

// ID returns the session identifier. It changes on Reset.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Start begins or resumes timing. The first start of a session also starts
// the first split. It reports false if the session was already running.
func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if !s.timer.Start(now) {
		return false
	}
	if s.splits.Count() == 0 {
		s.splits.Begin(now)
	}
	s.logger.Debug("timer started",
		zap.String("session", s.id),
		zap.Duration("accumulated", s.timer.Elapsed(now)))
	return true
}

// Stop pauses timing, records the split for the page being read and hands
// the resulting report to the exporter. It returns (nil, nil) when the
// session was not running. An exporter failure is returned but does not
// undo the stop.
func (s *Session) Stop() (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if !s.timer.Stop(now) {
		return nil, nil
	}
	last := s.splits.Mark(now)
	r := s.reportLocked(now)

	s.logger.Info("timer stopped",
		zap.String("session", s.id),
		zap.Duration("total", r.Total),
		zap.Int("splits", len(r.Splits)),
		zap.Duration("last_split", last.Duration),
		zap.Int("annotations", len(r.Annotations)))

	if s.exporter == nil {
		return r, nil
	}
	if err := s.exporter.Export(r); err != nil {
		s.logger.Warn("export failed", zap.String("session", s.id), zap.Error(err))
		return r, fmt.Errorf("export report: %w", err)
	}
	return r, nil
}

// Reset wipes the session: elapsed time, splits and notes. It is refused,
// reporting false, while the timer is running.
func (s *Session) Reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.timer.Reset() {
		return false
	}
	s.splits.Clear()
	s.notes.ClearAll()
	prev := s.id
	s.id = uuid.New().String()
	s.logger.Debug("session reset", zap.String("previous", prev), zap.String("session", s.id))
	return true
}

// MarkSplit closes the current page's interval. It does nothing unless the
// timer is running.
func (s *Session) MarkSplit() (split.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.timer.Running() {
		return split.Record{}, false
	}
	r := s.splits.Mark(s.clock.Now())
	s.logger.Debug("split recorded",
		zap.String("session", s.id),
		zap.Int("index", r.Index),
		zap.Duration("duration", r.Duration))
	return r, true
}

// SelectPage is the document pager's page-selected signal. The uncommitted
// draft is discarded. It behaves the same whether or not the timer runs.
func (s *Session) SelectPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes.SelectPage(n)
}

// SetDraft replaces the uncommitted note text.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes.SetDraft(text)
}

// Draft returns the uncommitted note text.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.Draft()
}

// Commit records text as a note for the selected page. Blank text is
// ignored and reported as false.
func (s *Session) Commit(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(text)
}

// CommitDraft commits the current draft.
func (s *Session) CommitDraft() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(s.notes.Draft())
}

func (s *Session) commitLocked(text string) bool {
	if !s.notes.Commit(text) {
		return false
	}
	s.logger.Debug("annotation committed",
		zap.String("session", s.id),
		zap.Int("page", s.notes.Page()),
		zap.Int("count", s.notes.Len()))
	return true
}

// Elapsed returns total running time. It never changes the session.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Elapsed(s.clock.Now())
}

// ElapsedMs is Elapsed in whole milliseconds.
func (s *Session) ElapsedMs() int64 {
	return s.Elapsed().Milliseconds()
}

// State returns the timer state.
func (s *Session) State() timer.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.State()
}

// Snapshot returns a consistent copy of everything a view needs.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          s.id,
		State:       s.timer.State(),
		Elapsed:     s.timer.Elapsed(s.clock.Now()),
		Splits:      s.splits.Records(),
		Annotations: s.notes.Entries(),
		Page:        s.notes.Page(),
		Draft:       s.notes.Draft(),
	}
}

func (s *Session) reportLocked(now time.Time) *report.Report {
	return &report.Report{
		SessionID:   s.id,
		Total:       s.timer.Elapsed(now),
		Splits:      s.splits.Records(),
		Annotations: s.notes.Entries(),
	}
}
