package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/fakeyudi/splitwatch/internal/document"
	"github.com/fakeyudi/splitwatch/internal/report"
	"github.com/fakeyudi/splitwatch/internal/session"
	"github.com/fakeyudi/splitwatch/internal/split"
	"github.com/fakeyudi/splitwatch/internal/timer"
)

const (
	// DefaultRefresh is the display poll interval, about 30 frames a second.
	DefaultRefresh = 33 * time.Millisecond
	// ResizeDebounce is how long the terminal size must hold still before
	// the page is re-laid out.
	ResizeDebounce = 200 * time.Millisecond

	noteHeight = 5
)

// DocumentLoadedMsg replaces the document shown in the pager.
type DocumentLoadedMsg struct{ Doc *document.Document }

// DocumentErrorMsg reports that the document could not be (re)loaded.
type DocumentErrorMsg struct{ Err error }

type refreshMsg time.Time

type resizeSettledMsg struct{ seq int }

type mode int

const (
	modeBrowse mode = iota
	modeEdit
)

// SessionOptions configures the live session screen.
type SessionOptions struct {
	Session *session.Session
	// Document to page through. May be nil.
	Document *document.Document
	// Refresh is the display poll interval; DefaultRefresh when zero.
	Refresh time.Duration
	// LastExport returns where the most recent report was written. Optional.
	LastExport func() string
	Logger     *zap.Logger
}

// SessionModel is the Bubble Tea model for a running review.
type SessionModel struct {
	sess       *session.Session
	doc        *document.Document
	refresh    time.Duration
	lastExport func() string
	logger     *zap.Logger

	snap session.Snapshot
	mode mode
	page int

	pager viewport.Model
	note  textarea.Model

	status    string
	statusErr bool

	width, height int
	pagerHeight   int
	ready         bool
	resizeSeq     int
}

// NewSession creates the session screen.
func NewSession(opts SessionOptions) SessionModel {
	note := textarea.New()
	note.Placeholder = "Note for this page…"
	note.ShowLineNumbers = false
	note.SetHeight(noteHeight)

	m := SessionModel{
		sess:       opts.Session,
		doc:        opts.Document,
		refresh:    opts.Refresh,
		lastExport: opts.LastExport,
		logger:     opts.Logger,
		note:       note,
		page:       1,
		pager:      viewport.New(80, 20),
	}
	if m.refresh <= 0 {
		m.refresh = DefaultRefresh
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	m.snap = m.sess.Snapshot()
	return m
}

func (m SessionModel) Init() tea.Cmd {
	return m.tick()
}

func (m SessionModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.snap = m.sess.Snapshot()
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.ready = true
			m.layout()
			return m, nil
		}
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(ResizeDebounce, func(time.Time) tea.Msg { return resizeSettledMsg{seq: seq} })

	case resizeSettledMsg:
		if msg.seq == m.resizeSeq {
			m.layout()
		}
		return m, nil

	case DocumentLoadedMsg:
		m.doc = msg.Doc
		if m.doc != nil && m.page > m.doc.Len() {
			m.page = m.doc.Len()
		}
		m.setStatus("document reloaded", false)
		m.renderPage()
		return m, nil

	case DocumentErrorMsg:
		m.logger.Warn("document unavailable", zap.Error(msg.Err))
		m.setStatus("document: "+msg.Err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeEdit {
			return m.updateEdit(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m SessionModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "s":
		if m.sess.Start() {
			m.setStatus("running", false)
		}

	case "x":
		r, err := m.sess.Stop()
		switch {
		case err != nil:
			m.logger.Error("export failed", zap.Error(err))
			m.setStatus(err.Error(), true)
		case r != nil:
			text := "stopped at " + report.FormatDuration(r.Total)
			if m.lastExport != nil && m.lastExport() != "" {
				text += ", report written to " + m.lastExport()
			}
			m.setStatus(text, false)
		}

	case "r":
		if m.sess.Reset() {
			m.setStatus("reset", false)
		} else {
			m.setStatus("stop before resetting", true)
		}

	case " ", "space":
		if rec, ok := m.sess.MarkSplit(); ok {
			m.setStatus(split.Label(rec.Index)+"  "+report.FormatDuration(rec.Duration), false)
		}

	case "left", "h":
		if m.page > 1 {
			m.page--
			m.renderPage()
		}

	case "right", "l":
		if m.page < m.pageCount() {
			m.page++
			m.renderPage()
		}

	case "up", "k", "down", "j", "pgup", "pgdown":
		var cmd tea.Cmd
		m.pager, cmd = m.pager.Update(msg)
		return m, cmd

	case "enter":
		// Reopening the selected page resumes a draft kept by esc.
		if m.sess.Snapshot().Page != m.page || m.sess.Draft() == "" {
			m.sess.SelectPage(m.page)
		}
		m.note.SetValue(m.sess.Draft())
		m.mode = modeEdit
		m.snap = m.sess.Snapshot()
		return m, m.note.Focus()
	}

	m.snap = m.sess.Snapshot()
	return m, nil
}

func (m SessionModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.sess.SetDraft(m.note.Value())
		m.note.Blur()
		m.mode = modeBrowse
		m.snap = m.sess.Snapshot()
		return m, nil

	case "ctrl+s":
		if m.sess.Commit(m.note.Value()) {
			m.setStatus("note saved for "+split.Label(m.page), false)
			m.note.Reset()
			m.note.Blur()
			m.mode = modeBrowse
		} else {
			m.setStatus("nothing to save", true)
		}
		m.snap = m.sess.Snapshot()
		return m, nil
	}

	var cmd tea.Cmd
	m.note, cmd = m.note.Update(msg)
	m.sess.SetDraft(m.note.Value())
	return m, cmd
}

func (m *SessionModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m SessionModel) pageCount() int {
	if m.doc == nil {
		return 1
	}
	return m.doc.Len()
}

// layout sizes the pager and the note editor to the current window.
func (m *SessionModel) layout() {
	// title(1) + clock(1) + splits(1) + status(1)
	fixed := 4 + noteHeight + 2
	m.pagerHeight = max(m.height-fixed, 1)
	m.pager = viewport.New(m.width, m.pagerHeight)
	m.note.SetWidth(max(m.width-2, 10))
	m.renderPage()
}

func (m *SessionModel) renderPage() {
	if m.doc == nil {
		m.pager.SetContent(dimStyle.Render("  (no document)"))
		return
	}
	p, err := m.doc.Page(m.page)
	if err != nil {
		m.pager.SetContent(errorStyle.Render("  " + err.Error()))
		return
	}
	wrap := lipgloss.NewStyle().Width(max(m.width-2, 10)).PaddingLeft(1)
	m.pager.SetContent(wrap.Render(p.Text()))
	m.pager.GotoTop()
}

func (m SessionModel) View() string {
	if !m.ready {
		return "Loading…"
	}

	name := "no document"
	if m.doc != nil {
		name = filepath.Base(m.doc.Path)
	}
	title := titleStyle.Width(m.width).Render(fmt.Sprintf("  splitwatch  %s  %s / %d",
		name, split.Label(m.page), m.pageCount()))

	state := dimStyle.Render(string(m.snap.State))
	if m.snap.State == timer.StateRunning {
		state = pageLabelStyle.Render(string(m.snap.State))
	}
	clockRow := "  " + timeStyle.Render(report.FormatDuration(m.snap.Elapsed)) + "  " + state

	splitsRow := "  " + dimStyle.Render("no splits")
	if n := len(m.snap.Splits); n > 0 {
		var parts []string
		for _, s := range m.snap.Splits[max(n-4, 0):] {
			parts = append(parts, split.Label(s.Index)+" "+report.FormatDuration(s.Duration))
		}
		splitsRow = "  " + strings.Join(parts, dimStyle.Render("  │  "))
	}

	sections := []string{title, clockRow, splitsRow, m.pager.View()}

	if m.mode == modeEdit {
		sections = append(sections, labelStyle.Render("  note  ")+dimStyle.Render("ctrl+s save  esc back"), m.note.View())
	}

	hint := "  s start  x stop  r reset  space split  ←/→ page  enter note  q quit"
	if m.mode == modeEdit {
		hint = "  editing " + split.Label(m.snap.Page)
	}
	status := m.status
	if m.statusErr {
		status = errorStyle.Render(status)
	}
	pad := max(m.width-lipgloss.Width(hint)-lipgloss.Width(status)-2, 1)
	sections = append(sections, statusBarStyle.Width(m.width).Render(hint+strings.Repeat(" ", pad)+status))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Snapshot returns the session state as last drawn.
func (m SessionModel) Snapshot() session.Snapshot {
	return m.snap
}

// Page returns the page currently shown.
func (m SessionModel) Page() int {
	return m.page
}

// Editing reports whether the note editor has focus.
func (m SessionModel) Editing() bool {
	return m.mode == modeEdit
}

// Status returns the status line text.
func (m SessionModel) Status() string {
	return m.status
}
