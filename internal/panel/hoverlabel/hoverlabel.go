// Package hoverlabel renders column header labels that reveal the column's
// schema metadata after the pointer dwells on them.
package hoverlabel

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/theme"
)

// DefaultDwell is how long the pointer must stay on a label.
const DefaultDwell = 500 * time.Millisecond

type dwellElapsedMsg struct {
	generation int
}

// Model tracks the single hovered header label. Each hover start bumps the
// generation so a tick issued for an earlier hover is ignored.
type Model struct {
	dwell      time.Duration
	generation int
	column     string
	meta       schema.ColumnMeta
	hasMeta    bool
	showPanel  bool
	palette    theme.Palette
}

func New(dwell time.Duration, palette theme.Palette) Model {
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	return Model{dwell: dwell, palette: palette}
}

// Hover starts the dwell timer for column. Re-hovering the same column keeps
// the running timer.
func (m *Model) Hover(column string, meta schema.ColumnMeta, hasMeta bool) tea.Cmd {
	if column == m.column {
		return nil
	}
	m.generation++
	m.column = column
	m.meta = meta
	m.hasMeta = hasMeta
	m.showPanel = false
	gen := m.generation
	return tea.Tick(m.dwell, func(time.Time) tea.Msg {
		return dwellElapsedMsg{generation: gen}
	})
}

// Leave hides the panel and cancels any pending timer.
func (m *Model) Leave() {
	if m.column == "" && !m.showPanel {
		return
	}
	m.generation++
	m.column = ""
	m.showPanel = false
}

func (m *Model) SetPalette(p theme.Palette) { m.palette = p }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if d, ok := msg.(dwellElapsedMsg); ok && d.generation == m.generation && m.column != "" {
		m.showPanel = m.hasMeta
	}
	return m, nil
}

// Column is the currently hovered column, if any.
func (m Model) Column() string { return m.column }

// Showing reports whether the popover is visible.
func (m Model) Showing() bool { return m.showPanel }

// Label renders a header label, emphasised while hovered.
func (m Model) Label(column string, width int) string {
	style := m.palette.ForegroundStyle(theme.ColorTextSecondary).Bold(true)
	if column == m.column {
		style = m.palette.ForegroundStyle(theme.ColorTextPrimary).Bold(true).Underline(true)
	}
	return style.MaxWidth(width).Render(column)
}

// Panel renders the popover, or "" when hidden.
func (m Model) Panel() string {
	if !m.showPanel {
		return ""
	}
	p := m.palette
	muted := p.ForegroundStyle(theme.ColorTextMuted)
	value := p.ForegroundStyle(theme.ColorTextPrimary)

	optional := p.ForegroundStyle(theme.ColorDanger).Render("No")
	if m.meta.Optional {
		optional = p.ForegroundStyle(theme.ColorSuccess).Render("Yes")
	}
	lines := []string{
		muted.Render("Schema"),
		muted.Render("Type: ") + value.Render(m.meta.TypeLabel),
		muted.Render("Optional: ") + optional,
	}
	if m.meta.LinkTable != "" {
		lines = append(lines, muted.Render("References: ")+p.ForegroundStyle(theme.ColorPrimary).Render(m.meta.LinkTable))
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Adaptive(theme.ColorBorder)).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}
