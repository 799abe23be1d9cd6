package grid

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/convex-panel/panelctl/internal/panel/format"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/theme"
)

const fallbackWidth = 80

// Layer is content drawn above the grid at absolute cell coordinates.
type Layer struct {
	Content string
	X, Y    int
}

func (m Model) width() int {
	if m.layout.Width > 0 {
		return m.layout.Width
	}
	return fallbackWidth
}

func (m Model) View() string {
	if m.table == "" {
		return m.placeholder("Select a table from the sidebar")
	}
	if len(m.docs) == 0 {
		return m.emptyView()
	}

	lines := []string{m.clip(m.headerLine())}
	for i := range m.bodyHeight() {
		row := m.rowOffset + i
		if row >= len(m.docs) {
			lines = append(lines, strings.Repeat(" ", m.width()))
			continue
		}
		lines = append(lines, m.clip(m.rowLine(row)))
	}
	lines = append(lines, m.footerLine())
	return strings.Join(lines, "\n")
}

// Layers returns the popups to composite over the screen, topmost last.
func (m Model) Layers() []Layer {
	var layers []Layer
	if panel := m.hover.Panel(); panel != "" {
		for _, s := range m.spans() {
			if s.column == m.hover.Column() {
				layers = append(layers, Layer{
					Content: panel,
					X:       m.layout.X + max(0, s.left-m.scrollX),
					Y:       m.layout.Y + 1,
				})
			}
		}
	}
	if m.menu.IsOpen() {
		x, y := m.menu.Position()
		layers = append(layers, Layer{Content: m.menu.View(), X: x, Y: y})
	}
	return layers
}

// clip cuts a full-width line to the horizontal viewport.
func (m Model) clip(line string) string {
	return padRight(ansi.Cut(line, m.scrollX, m.scrollX+m.width()), m.width())
}

// spacer pads a line out to the container. Column widths are rounded down
// to whole cells, so the leftover is measured in cells.
func (m Model) spacer() string {
	content := Cells(SelectionColumnWidth)
	for _, s := range m.spans() {
		content += s.width
	}
	return strings.Repeat(" ", SpacerWidth(m.width(), content))
}

func (m Model) headerLine() string {
	p := m.palette
	var sb strings.Builder

	check := "[ ]"
	ids := m.rowIDs()
	switch {
	case IsAllSelected(m.selected, ids):
		check = "[x]"
	case len(m.selected) > 0:
		check = "[-]"
	}
	sb.WriteString(padRight(" "+p.ForegroundStyle(theme.ColorTextSecondary).Render(check), Cells(SelectionColumnWidth)))

	for _, s := range m.spans() {
		sb.WriteString(m.headerCell(s))
	}
	sb.WriteString(m.spacer())
	return sb.String()
}

func (m Model) headerCell(s span) string {
	p := m.palette
	accent := p.ForegroundStyle(theme.ColorAccent).Bold(true)

	left, right := " ", " "
	if m.drag != nil && m.drag.over == s.column && m.drag.dragging != s.column {
		if m.drag.position == Left {
			left = accent.Render("▌")
		} else {
			right = accent.Render("▐")
		}
	}

	grip := "  "
	if m.hoveredHeader == s.column || (m.drag != nil && m.drag.dragging == s.column) {
		grip = p.ForegroundStyle(theme.ColorTextMuted).Render("⋮⋮")
	}

	handle := p.ForegroundStyle(theme.ColorBorder).Render("│")
	if m.handleHover == s.column || (m.resize != nil && m.resize.column == s.column) {
		handle = accent.Render("┃")
	}

	labelWidth := max(0, s.width-5)
	label := ansi.Truncate(m.hover.Label(s.column, labelWidth), labelWidth, "…")
	return left + grip + padRight(label, labelWidth) + right + handle
}

func (m Model) rowLine(row int) string {
	p := m.palette
	doc := m.docs[row]
	var sb strings.Builder

	check := p.ForegroundStyle(theme.ColorTextMuted).Render("[ ]")
	if slices.Contains(m.selected, doc.ID()) {
		check = p.ForegroundStyle(theme.ColorAccent).Render("[x]")
	}
	sb.WriteString(padRight(" "+check, Cells(SelectionColumnWidth)))

	for _, s := range m.spans() {
		sb.WriteString(m.cell(doc, row, s))
	}
	sb.WriteString(m.spacer())
	return sb.String()
}

func (m Model) cell(doc schema.Document, row int, s span) string {
	p := m.palette
	value, present := doc[s.column]

	text := strings.ReplaceAll(format.Value(value), "\n", " ")
	style := p.ForegroundStyle(format.Color(value))
	switch {
	case !present || value == nil:
		style = p.ForegroundStyle(theme.ColorTextMuted).Italic(true)
	case s.column == schema.IDField || m.meta[s.column].LinkTable != "":
		style = p.ForegroundStyle(theme.ColorPrimary)
	}
	cursor := m.focused && row == m.cursorRow && s.index == m.cursorCol
	if cursor {
		style = style.Reverse(true)
	}

	contentWidth := max(0, s.width-3)
	content := padRight(ansi.Truncate(text, contentWidth, "…"), contentWidth)

	more := " "
	if cursor || (m.hoveredRow == row && m.hoveredColumn == s.column) {
		more = p.ForegroundStyle(theme.ColorTextMuted).Render("⋯")
	}
	return " " + style.Render(content) + more + p.ForegroundStyle(theme.ColorBorder).Render("│")
}

func (m Model) footerLine() string {
	p := m.palette
	muted := p.ForegroundStyle(theme.ColorTextMuted)

	var left string
	switch {
	case m.loadingMore:
		left = muted.Render(fmt.Sprintf("Loading more… (%d loaded)", len(m.docs)))
	case !m.isDone:
		left = p.ForegroundStyle(theme.ColorPrimary).Render(fmt.Sprintf("Load more (%d loaded)", len(m.docs)))
	default:
		left = muted.Render(fmt.Sprintf("%d documents", len(m.docs)))
	}

	state := "none"
	if m.schema != nil && len(m.schema.Fields) > 0 {
		state = "enforced"
	}
	right := muted.Render("schema: " + state)
	if n := len(m.selected); n > 0 {
		right = p.ForegroundStyle(theme.ColorAccent).Render(fmt.Sprintf("%d selected", n)) + muted.Render(" · ") + right
	}

	gap := max(1, m.width()-ansi.StringWidth(left)-ansi.StringWidth(right))
	return ansi.Truncate(left+strings.Repeat(" ", gap)+right, m.width(), "")
}

func (m Model) placeholder(text string) string {
	msg := m.palette.ForegroundStyle(theme.ColorTextMuted).Render(text)
	if m.layout.Height <= 0 {
		return msg
	}
	return lipgloss.Place(m.width(), m.layout.Height, lipgloss.Center, lipgloss.Center, msg)
}

func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
