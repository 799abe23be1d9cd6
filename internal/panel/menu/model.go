package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/convex-panel/panelctl/internal/theme"
)

// Width is the rendered width of the menu in cells, borders included.
const Width = 30

// ClosedMsg is emitted once each time an open menu is dismissed.
type ClosedMsg struct{}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Activate key.Binding
	Close    key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous")),
	Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next")),
	Activate: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "run")),
	Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
}

// Model is an open-or-closed context menu anchored at cell coordinates.
type Model struct {
	entries    []Entry
	actionable []int
	selected   int
	x, y       int
	open       bool
	platform   Platform
	palette    theme.Palette
}

// New returns a closed menu.
func New(platform Platform, palette theme.Palette) Model {
	return Model{platform: platform, palette: palette}
}

// Open shows entries at (x, y), selecting the first actionable entry.
func (m *Model) Open(entries []Entry, x, y int) {
	m.entries = append([]Entry(nil), entries...)
	m.actionable = actionable(m.entries)
	m.selected = 0
	m.x, m.y = x, y
	m.open = true
}

// Close dismisses the menu. The returned command yields ClosedMsg, or nil
// when the menu was already closed.
func (m *Model) Close() tea.Cmd {
	if !m.open {
		return nil
	}
	m.open = false
	m.entries = nil
	m.actionable = nil
	m.selected = 0
	return func() tea.Msg { return ClosedMsg{} }
}

// IsOpen reports whether the menu is showing.
func (m Model) IsOpen() bool { return m.open }

// Selected is the cursor over actionable entries.
func (m Model) Selected() int { return m.selected }

// Position returns the anchor cell.
func (m Model) Position() (int, int) { return m.x, m.y }

// SetPalette restyles the menu.
func (m *Model) SetPalette(p theme.Palette) { m.palette = p }

// Height is the rendered height in lines, borders included.
func (m Model) Height() int {
	return len(m.entries) + 2
}

// Contains reports whether the cell (x, y) lies on the menu.
func (m Model) Contains(x, y int) bool {
	return m.open && x >= m.x && x < m.x+Width && y >= m.y && y < m.y+m.Height()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.open {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.actionable)
	switch {
	case key.Matches(msg, keys.Close):
		closeCmd := m.Close()
		return m, closeCmd
	case key.Matches(msg, keys.Down):
		if n > 0 {
			m.selected = (m.selected + 1) % n
		}
		return m, nil
	case key.Matches(msg, keys.Up):
		if n > 0 {
			m.selected = (m.selected - 1 + n) % n
		}
		return m, nil
	case key.Matches(msg, keys.Activate):
		if n == 0 {
			return m, nil
		}
		return m.activate(m.selected)
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		idx := int(s[0] - '1')
		if idx < n {
			return m.activate(idx)
		}
		return m, nil
	}

	ks := KeystrokeFromMsg(msg)
	for i, entryIdx := range m.actionable {
		action := m.entries[entryIdx].(Action)
		if action.Shortcut == "" {
			continue
		}
		if ParseShortcut(action.Shortcut).Matches(ks, m.platform) {
			return m.activate(i)
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	inside := m.Contains(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionMotion:
		if idx, ok := m.actionableAt(msg.Y); ok && inside {
			m.selected = idx
		}
	case tea.MouseActionPress:
		if !inside {
			closeCmd := m.Close()
			return m, closeCmd
		}
		if msg.Button == tea.MouseButtonLeft {
			if idx, ok := m.actionableAt(msg.Y); ok {
				return m.activate(idx)
			}
		}
	}
	return m, nil
}

// actionableAt maps a screen row to an actionable index.
func (m Model) actionableAt(y int) (int, bool) {
	row := y - m.y - 1
	if row < 0 || row >= len(m.entries) {
		return 0, false
	}
	for i, entryIdx := range m.actionable {
		if entryIdx == row {
			return i, true
		}
	}
	return 0, false
}

func (m Model) activate(idx int) (Model, tea.Cmd) {
	action := m.entries[m.actionable[idx]].(Action)
	m.selected = idx
	var cmd tea.Cmd
	if action.OnSelect != nil {
		cmd = action.OnSelect()
	}
	closeCmd := m.Close()
	return m, tea.Batch(cmd, closeCmd)
}

func (m Model) View() string {
	if !m.open {
		return ""
	}
	p := m.palette
	inner := Width - 2
	lines := make([]string, 0, len(m.entries))
	for i, e := range m.entries {
		action, ok := e.(Action)
		if !ok {
			lines = append(lines, p.ForegroundStyle(theme.ColorBorder).Render(strings.Repeat("─", inner)))
			continue
		}
		number := ""
		if pos := indexOf(m.actionable, i); pos < 9 {
			number = fmt.Sprintf("%d", pos+1)
		}
		hint := ParseShortcut(action.Shortcut).Display(m.platform)
		label := ansi.Truncate(action.Label, inner-len(hint)-4, "…")
		gap := inner - 3 - ansi.StringWidth(label) - ansi.StringWidth(hint)
		if gap < 1 {
			gap = 1
		}
		line := fmt.Sprintf("%1s %s%s%s ", number, label, strings.Repeat(" ", gap), hint)
		style := lipgloss.NewStyle().Width(inner)
		switch {
		case indexOf(m.actionable, i) == m.selected:
			style = style.Foreground(p.Adaptive(theme.ColorAccentText)).Background(p.Adaptive(theme.ColorAccent))
		case action.Destructive:
			style = style.Foreground(p.Adaptive(theme.ColorDanger))
		default:
			style = style.Foreground(p.Adaptive(theme.ColorTextPrimary))
		}
		lines = append(lines, style.Render(line))
	}
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Adaptive(theme.ColorBorder)).
		Background(p.Adaptive(theme.ColorSurface))
	return box.Render(strings.Join(lines, "\n"))
}

func indexOf(values []int, v int) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return -1
}
