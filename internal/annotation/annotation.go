// Package annotation buffers free-text review notes tied to the page that was
// selected when they were committed.
package annotation

import (
	"strings"
	"unicode"

	"github.com/fakeyudi/splitwatch/internal/split"
)

// Entry is one committed note. Text starts with the page header line
// ("p.<NN>\n") when a page was active at commit time.
type Entry struct {
	Page int
	Text string
}

// Buffer holds the draft for the selected page and the committed log.
type Buffer struct {
	page    int
	draft   string
	entries []Entry
}

// NewBuffer returns an empty buffer with no page selected.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Header returns the header line committed notes for page n start with.
func Header(n int) string {
	return split.Label(n) + "\n"
}

// SelectPage makes n the active page. Any uncommitted draft is abandoned and
// replaced by the page header. Non-positive page numbers are ignored.
func (b *Buffer) SelectPage(n int) {
	if n <= 0 {
		return
	}
	b.page = n
	b.draft = Header(n)
}

// Page returns the active page, or 0 if none has been selected.
func (b *Buffer) Page() int {
	return b.page
}

// Draft returns the uncommitted text.
func (b *Buffer) Draft() string {
	return b.draft
}

// SetDraft replaces the uncommitted text.
func (b *Buffer) SetDraft(text string) {
	b.draft = text
}

// Commit appends text as a note for the active page and clears the draft.
// Text that is empty once trailing whitespace is trimmed is a no-op and
// reports false. A leading copy of the page header is not repeated, so
// committing the bare header records the note "p.<NN>".
func (b *Buffer) Commit(text string) bool {
	body := strings.TrimRightFunc(text, unicode.IsSpace)
	if body == "" {
		return false
	}

	header := ""
	if b.page > 0 {
		header = Header(b.page)
		if body == split.Label(b.page) {
			body = ""
		} else {
			body = strings.TrimPrefix(body, header)
		}
	}

	b.entries = append(b.entries, Entry{Page: b.page, Text: strings.TrimRightFunc(header+body, unicode.IsSpace)})
	b.draft = ""
	return true
}

// CommitDraft commits the current draft.
func (b *Buffer) CommitDraft() bool {
	return b.Commit(b.draft)
}

// Len returns the number of committed notes.
func (b *Buffer) Len() int {
	return len(b.entries)
}

// Entries returns a copy of the committed log.
func (b *Buffer) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// ClearAll wipes the draft, the active page and the committed log.
func (b *Buffer) ClearAll() {
	b.page = 0
	b.draft = ""
	b.entries = nil
}
