package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/convex-panel/panelctl/internal/theme"
)

func (m Model) View() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), m.grid.View())
	screen := lipgloss.JoinVertical(lipgloss.Left, body, m.statusLine())

	for _, layer := range m.grid.Layers() {
		screen = overlay.Composite(layer.Content, screen, overlay.Left, overlay.Top, layer.X, layer.Y)
	}
	if m.preview.IsOpen() {
		screen = overlay.Composite(m.preview.View(), screen, overlay.Center, overlay.Center, 0, 0)
	}
	if m.prompt.kind != promptNone {
		screen = overlay.Composite(m.promptView(), screen, overlay.Center, overlay.Center, 0, 0)
	}
	return screen
}

func (m Model) statusLine() string {
	p := m.palette
	muted := p.ForegroundStyle(theme.ColorTextMuted)

	left := m.status
	switch {
	case m.statusError:
		left = p.ForegroundStyle(theme.ColorDanger).Render(left)
	case left != "":
		left = p.ForegroundStyle(theme.ColorSuccess).Render(left)
	}

	var right []string
	if m.table != "" {
		docs := len(m.grid.Documents())
		count := fmt.Sprintf("%d loaded", docs)
		if !m.isDone {
			count += "+"
		}
		right = append(right, m.table, count)
		if n := len(m.selection); n > 0 {
			right = append(right, fmt.Sprintf("%d selected", n))
		}
		if m.loadingDoc {
			right = append(right, "loading…")
		}
	}
	right = append(right, "tab focus · t theme · q quit")
	rightText := muted.Render(strings.Join(right, " · "))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(rightText)
	if gap < 1 {
		left = ansi.Truncate(left, max(0, m.width-lipgloss.Width(rightText)-1), "…")
		gap = 1
	}
	return ansi.Truncate(left+strings.Repeat(" ", gap)+rightText, m.width, "")
}

func (m Model) promptView() string {
	p := m.palette
	width := min(84, max(30, m.width-8))
	title := p.ForegroundStyle(theme.ColorTextPrimary).Bold(true).Render(m.prompt.title())
	muted := p.ForegroundStyle(theme.ColorTextMuted)

	lines := []string{title, ""}
	switch m.prompt.kind {
	case promptDelete:
		lines = append(lines, muted.Render("y delete · n cancel"))
	default:
		lines = append(lines, m.promptInput.View())
		if m.prompt.err != "" {
			wrapped := wordwrap.String(m.prompt.err, width-4)
			lines = append(lines, "", p.ForegroundStyle(theme.ColorDanger).Render(wrapped))
		}
		lines = append(lines, "", muted.Render("enter save · esc cancel"))
	}

	border := p.Adaptive(theme.ColorBorder)
	if m.prompt.kind == promptDelete {
		border = p.Adaptive(theme.ColorDanger)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}
