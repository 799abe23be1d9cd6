package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convex-panel/panelctl/internal/theme"
)

func drain(cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		switch msg := current().(type) {
		case tea.BatchMsg:
			queue = append(queue, []tea.Cmd(msg)...)
		case nil:
		default:
			out = append(out, msg)
		}
	}
	return out
}

type selection struct{ label string }

func recorder(got *[]string, label string) func() tea.Cmd {
	return func() tea.Cmd {
		*got = append(*got, label)
		return func() tea.Msg { return selection{label: label} }
	}
}

func sampleMenu(got *[]string) Model {
	m := New(PlatformMac, theme.Current())
	m.Open([]Entry{
		Action{Label: "Copy value", Shortcut: "c", OnSelect: recorder(got, "copy")},
		Action{Label: "Copy document", Shortcut: "shift+c", OnSelect: recorder(got, "copy-doc")},
		Divider{},
		Action{Label: "Delete document", Shortcut: "cmd+backspace", Destructive: true, OnSelect: recorder(got, "delete")},
	}, 10, 5)
	return m
}

func press(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestArrowNavigationCycles(t *testing.T) {
	var got []string
	m := sampleMenu(&got)
	require.Equal(t, 0, m.Selected())

	for range 3 {
		m, _ = m.Update(press(tea.KeyDown))
	}
	require.Equal(t, 0, m.Selected())

	m, _ = m.Update(press(tea.KeyUp))
	require.Equal(t, 2, m.Selected())
	require.Empty(t, got)
}

func TestEmptyActionableListIsNoOp(t *testing.T) {
	m := New(PlatformOther, theme.Current())
	m.Open([]Entry{Divider{}, Divider{}}, 0, 0)

	for _, msg := range []tea.KeyMsg{press(tea.KeyDown), press(tea.KeyUp), press(tea.KeyEnter), runes("1")} {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		require.Nil(t, cmd)
		require.True(t, m.IsOpen())
		require.Equal(t, 0, m.Selected())
	}
}

func TestEnterAndSpaceActivateSelection(t *testing.T) {
	for _, msg := range []tea.KeyMsg{press(tea.KeyEnter), {Type: tea.KeySpace, Runes: []rune{' '}}} {
		var got []string
		m := sampleMenu(&got)
		m, _ = m.Update(press(tea.KeyDown))
		m, cmd := m.Update(msg)

		require.False(t, m.IsOpen())
		require.Equal(t, []string{"copy-doc"}, got)
		msgs := drain(cmd)
		require.Contains(t, msgs, tea.Msg(ClosedMsg{}))
		require.Contains(t, msgs, tea.Msg(selection{label: "copy-doc"}))
	}
}

func TestDigitActivatesNthActionable(t *testing.T) {
	var got []string
	m := sampleMenu(&got)
	m, cmd := m.Update(runes("3"))
	require.Equal(t, []string{"delete"}, got)
	require.False(t, m.IsOpen())
	require.NotEmpty(t, drain(cmd))

	got = nil
	m = sampleMenu(&got)
	m, cmd = m.Update(runes("7"))
	require.Nil(t, cmd)
	require.Empty(t, got)
	require.True(t, m.IsOpen())
}

func TestShortcutActivation(t *testing.T) {
	var got []string
	m := sampleMenu(&got)
	m, _ = m.Update(runes("C"))
	require.Equal(t, []string{"copy-doc"}, got)
	require.False(t, m.IsOpen())

	got = nil
	m = sampleMenu(&got)
	m, _ = m.Update(runes("c"))
	require.Equal(t, []string{"copy"}, got)

	got = nil
	m = sampleMenu(&got)
	m, cmd := m.Update(press(tea.KeyCtrlC))
	require.Nil(t, cmd)
	require.Empty(t, got)
	require.True(t, m.IsOpen())
}

func TestEscapeClosesExactlyOnce(t *testing.T) {
	var got []string
	m := sampleMenu(&got)
	m, cmd := m.Update(press(tea.KeyEscape))
	require.Equal(t, []tea.Msg{ClosedMsg{}}, drain(cmd))
	require.False(t, m.IsOpen())

	m, cmd = m.Update(press(tea.KeyEscape))
	require.Nil(t, cmd)
	require.Nil(t, m.Close())
	require.Empty(t, got)
}

func TestMouseDismissalAndHoverSync(t *testing.T) {
	var got []string
	m := sampleMenu(&got)

	// Row y=5 is the top border, 6.. are entries.
	m, _ = m.Update(tea.MouseMsg{X: 12, Y: 7, Action: tea.MouseActionMotion})
	require.Equal(t, 1, m.Selected())

	m, _ = m.Update(tea.MouseMsg{X: 12, Y: 8, Action: tea.MouseActionMotion})
	require.Equal(t, 1, m.Selected(), "divider rows keep the selection")

	m, cmd := m.Update(tea.MouseMsg{X: 2, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	require.False(t, m.IsOpen())
	require.Equal(t, []tea.Msg{ClosedMsg{}}, drain(cmd))

	m = sampleMenu(&got)
	m, _ = m.Update(tea.MouseMsg{X: 12, Y: 9, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.False(t, m.IsOpen())
	require.Equal(t, []string{"delete"}, got)
}

func TestShortcutMatches(t *testing.T) {
	copyDoc := ParseShortcut("cmd+shift+c")
	require.Equal(t, Shortcut{Key: "c", Meta: true, Shift: true}, copyDoc)

	tests := []struct {
		name     string
		shortcut string
		stroke   Keystroke
		platform Platform
		want     bool
	}{
		{"mac meta", "cmd+shift+c", Keystroke{Key: "c", Meta: true, Shift: true}, PlatformMac, true},
		{"mac ctrl only", "cmd+shift+c", Keystroke{Key: "c", Ctrl: true, Shift: true}, PlatformMac, false},
		{"mac meta with ctrl", "cmd+shift+c", Keystroke{Key: "c", Meta: true, Ctrl: true, Shift: true}, PlatformMac, false},
		{"other ctrl", "cmd+shift+c", Keystroke{Key: "c", Ctrl: true, Shift: true}, PlatformOther, true},
		{"other meta", "cmd+shift+c", Keystroke{Key: "c", Meta: true, Shift: true}, PlatformOther, false},
		{"missing shift", "cmd+shift+c", Keystroke{Key: "c", Meta: true}, PlatformMac, false},
		{"extra alt", "shift+c", Keystroke{Key: "c", Shift: true, Alt: true}, PlatformOther, false},
		{"enter alias", "Enter", Keystroke{Key: "return"}, PlatformOther, true},
		{"space alias", "ctrl+Space", Keystroke{Key: " ", Ctrl: true}, PlatformOther, true},
		{"escape alias", "Escape", Keystroke{Key: "esc"}, PlatformMac, true},
		{"plain letter ignores ctrl+letter", "c", Keystroke{Key: "c", Ctrl: true}, PlatformOther, false},
		{"no key", "cmd+shift", Keystroke{Key: "", Meta: true, Shift: true}, PlatformMac, false},
		{"mac option stands in for cmd", "cmd+shift+c", Keystroke{Key: "c", Alt: true, Shift: true}, PlatformMac, true},
		{"option is not cmd off mac", "cmd+shift+c", Keystroke{Key: "c", Alt: true, Shift: true}, PlatformOther, false},
		{"mac option shortcut stays alt", "alt+c", Keystroke{Key: "c", Alt: true}, PlatformMac, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseShortcut(tt.shortcut).Matches(tt.stroke, tt.platform))
		})
	}
}

func TestKeystrokeFromMsg(t *testing.T) {
	assert.Equal(t, Keystroke{Key: "c", Shift: true}, KeystrokeFromMsg(runes("C")))
	assert.Equal(t, Keystroke{Key: "c", Ctrl: true}, KeystrokeFromMsg(press(tea.KeyCtrlC)))
	assert.Equal(t, Keystroke{Key: "x", Alt: true}, KeystrokeFromMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}))
	assert.Equal(t, Keystroke{Key: "return"}, KeystrokeFromMsg(press(tea.KeyEnter)))
	assert.Equal(t, Keystroke{Key: "tab", Shift: true}, KeystrokeFromMsg(press(tea.KeyShiftTab)))
}

func TestOptionChordTriggersCommandShortcutOnMac(t *testing.T) {
	ks := KeystrokeFromMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("C"), Alt: true})
	assert.True(t, ParseShortcut("cmd+shift+c").Matches(ks, PlatformMac))
	assert.False(t, ParseShortcut("cmd+shift+c").Matches(ks, PlatformOther))
}

func TestDetectPlatform(t *testing.T) {
	assert.Equal(t, PlatformMac, DetectPlatform("mac"))
	assert.Equal(t, PlatformOther, DetectPlatform("Other"))
}

func TestViewRendersEntries(t *testing.T) {
	var got []string
	m := sampleMenu(&got)
	view := m.View()
	assert.Contains(t, view, "Copy value")
	assert.Contains(t, view, "shift+c")
	assert.Contains(t, view, "cmd+backspace")
	assert.Equal(t, m.Height(), len(splitLines(view)))

	m.Close()
	assert.Empty(t, m.View())
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}
