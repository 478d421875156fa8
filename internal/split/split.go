// Package split derives per-page durations from split marks.
package split

import (
	"fmt"
	"time"
)

// Record is the time spent on one reviewed page. Index is 1-based.
type Record struct {
	Index    int
	Duration time.Duration
}

// Tracker holds the append-only split sequence and the instant of the last
// mark. Indices are contiguous from 1 and only Clear removes records.
type Tracker struct {
	lastMark time.Time
	records  []Record
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin sets the instant the first split is measured from.
func (t *Tracker) Begin(now time.Time) {
	t.lastMark = now
}

// Mark closes the interval since the previous mark and appends it.
func (t *Tracker) Mark(now time.Time) Record {
	d := now.Sub(t.lastMark)
	if d < 0 {
		d = 0
	}
	r := Record{Index: len(t.records) + 1, Duration: d}
	t.records = append(t.records, r)
	t.lastMark = now
	return r
}

// Count returns the number of recorded splits.
func (t *Tracker) Count() int {
	return len(t.records)
}

// Last returns the most recent split, if any.
func (t *Tracker) Last() (Record, bool) {
	if len(t.records) == 0 {
		return Record{}, false
	}
	return t.records[len(t.records)-1], true
}

// Records returns a copy of the split sequence.
func (t *Tracker) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Clear drops every record and the last mark.
func (t *Tracker) Clear() {
	t.records = nil
	t.lastMark = time.Time{}
}

// Label renders a page or split number as p.<NN>, zero-padded to at least
// two digits.
func Label(n int) string {
	return fmt.Sprintf("p.%02d", n)
}
