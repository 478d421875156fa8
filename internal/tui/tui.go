// Package tui provides the Bubble Tea programs: the live session screen and
// a viewer for exported reports.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/splitwatch/internal/report"
	"github.com/fakeyudi/splitwatch/internal/split"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	pageLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ── Report viewer ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabSplits
	tabAnnotations
	tabCount
)

var tabNames = [tabCount]string{"Summary", "Splits", "Annotations"}

// Viewer is the Bubble Tea model for browsing an exported report.
type Viewer struct {
	report    *report.Report
	filename  string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
}

// NewViewer creates a viewer for r, which was read from filename.
func NewViewer(r *report.Report, filename string) Viewer {
	return Viewer{report: r, filename: filepath.Base(filename)}
}

func (m Viewer) Init() tea.Cmd { return nil }

func (m Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1", "2", "3":
			m.activeTab = tabID(msg.String()[0] - '1')
			return m, nil
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Viewer) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  splitwatch  " + m.filename)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-3 jump  q quit"
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := max(m.width-lipgloss.Width(hint)-len(pct)-2, 1)
	statusBar := statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + pct)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

func (m *Viewer) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := max(m.height-3, 1)
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Viewer) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabSplits:
		return renderSplits(m.report.Splits)
	case tabAnnotations:
		return m.renderAnnotations()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m *Viewer) renderSummary() string {
	r := m.report
	var sb strings.Builder
	sb.WriteString(heading("Session Summary"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	if r.SessionID != "" {
		row("Session:", r.SessionID)
	}
	row("Total:", timeStyle.Render(report.FormatDuration(r.Total)))
	row("Pages:", fmt.Sprintf("%d", len(r.Splits)))
	row("Notes:", fmt.Sprintf("%d", len(r.Annotations)))
	if slow, ok := slowest(r.Splits); ok {
		row("Slowest:", split.Label(slow.Index)+"  "+report.FormatDuration(slow.Duration))
	}
	return sb.String()
}

// renderSplits lists every split with its duration. Shared with the session
// screen.
func renderSplits(splits []split.Record) string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Splits (%d)", len(splits))))
	if len(splits) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, s := range splits {
		sb.WriteString("  " + pageLabelStyle.Render(split.Label(s.Index)) + "  " +
			timeStyle.Render(report.FormatDuration(s.Duration)) + "\n")
	}
	return sb.String()
}

func (m *Viewer) renderAnnotations() string {
	notes := m.report.Annotations
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Annotations (%d)", len(notes))))
	if len(notes) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, a := range notes {
		lines := strings.Split(a.Text, "\n")
		if a.Page > 0 && len(lines) > 0 && lines[0] == split.Label(a.Page) {
			sb.WriteString("  " + pageLabelStyle.Render(lines[0]) + "\n")
			lines = lines[1:]
		}
		sb.WriteString(indent(strings.Join(lines, "\n"), "    ") + "\n\n")
	}
	return sb.String()
}

func slowest(splits []split.Record) (split.Record, bool) {
	if len(splits) == 0 {
		return split.Record{}, false
	}
	best := splits[0]
	for _, s := range splits[1:] {
		if s.Duration > best.Duration {
			best = s
		}
	}
	return best, true
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// RunViewer starts the viewer for r.
func RunViewer(r *report.Report, filename string) error {
	p := tea.NewProgram(NewViewer(r, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
