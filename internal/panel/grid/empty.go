package grid

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/convex-panel/panelctl/internal/panel/markdown"
	"github.com/convex-panel/panelctl/internal/theme"
)

const writingDataDocs = "https://docs.convex.dev/database/writing-data"

// skeletonRowCount sizes the placeholder rows to the body height.
func (m Model) skeletonRowCount() int {
	return SkeletonRows(m.bodyHeight() * CellHeight)
}

// emptyView draws a faded skeleton of the table with a call to action card
// centred over it.
func (m Model) emptyView() string {
	p := m.palette
	faded := p.ForegroundStyle(theme.ColorTextMuted).Faint(true)

	spans := m.spans()
	var header strings.Builder
	header.WriteString(strings.Repeat(" ", Cells(SelectionColumnWidth)))
	for _, s := range spans {
		label := ansi.Truncate(s.column, max(0, s.width-5), "…")
		header.WriteString(faded.Render(padRight("   "+label, s.width-1) + "│"))
	}

	lines := []string{m.clip(header.String())}
	for i := range m.skeletonRowCount() {
		var row strings.Builder
		row.WriteString(faded.Render(padRight(" [ ]", Cells(SelectionColumnWidth))))
		for j, s := range spans {
			bar := max(1, (s.width-3)*(3+(i+j)%4)/6)
			row.WriteString(faded.Render(padRight(" "+strings.Repeat("░", bar), s.width-1) + "│"))
		}
		lines = append(lines, m.clip(row.String()))
	}
	if m.layout.Height > 0 && len(lines) > m.layout.Height {
		lines = lines[:m.layout.Height]
	}
	skeleton := strings.Join(lines, "\n")

	return overlay.Composite(m.emptyCard(), skeleton, overlay.Center, overlay.Center, 0, 0)
}

func (m Model) emptyCard() string {
	p := m.palette
	width := min(44, max(20, m.width()-4))
	body := markdown.Render(fmt.Sprintf(
		"### This table is empty\n\nPress **n** to add documents to `%s`.\n\nDocs: %s",
		m.table, writingDataDocs,
	), markdown.Options{NoColor: m.opts.NoColor, Width: width - 4})
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Adaptive(theme.ColorBorder)).
		Padding(0, 1).
		Width(width).
		Render(body)
}
