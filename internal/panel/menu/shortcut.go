package menu

import (
	"runtime"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

// Platform decides how "cmd"/"meta" shortcuts are matched.
type Platform int

const (
	PlatformOther Platform = iota
	PlatformMac
)

// DetectPlatform resolves the browse.platform setting ("mac", "other", "auto").
// Terminals do not forward the command key, so on Mac an alt (option) chord
// stands in for it when matching meta shortcuts.
func DetectPlatform(setting string) Platform {
	switch strings.ToLower(strings.TrimSpace(setting)) {
	case "mac", "darwin", "macos":
		return PlatformMac
	case "other", "linux", "windows":
		return PlatformOther
	}
	if runtime.GOOS == "darwin" {
		return PlatformMac
	}
	return PlatformOther
}

// Shortcut is a parsed shortcut string such as "cmd+shift+c".
type Shortcut struct {
	Key   string
	Meta  bool
	Ctrl  bool
	Shift bool
	Alt   bool
}

// Keystroke is a pressed key with its modifier state.
type Keystroke struct {
	Key   string
	Meta  bool
	Ctrl  bool
	Shift bool
	Alt   bool
}

// ParseShortcut splits a "+"-joined shortcut into modifiers and a key.
func ParseShortcut(s string) Shortcut {
	var sc Shortcut
	for _, part := range strings.Split(strings.ToLower(strings.TrimSpace(s)), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
		case "cmd", "command", "meta", "super":
			sc.Meta = true
		case "ctrl", "control":
			sc.Ctrl = true
		case "shift":
			sc.Shift = true
		case "alt", "option", "opt":
			sc.Alt = true
		default:
			sc.Key = normalizeKey(part)
		}
	}
	return sc
}

// KeystrokeFromMsg converts a bubbletea key message. Terminals report an
// upper-case rune for shift+letter, so that is folded into Shift.
func KeystrokeFromMsg(msg tea.KeyMsg) Keystroke {
	ks := Keystroke{Alt: msg.Alt}
	s := msg.String()
	if msg.Alt {
		s = strings.TrimPrefix(s, "alt+")
	}
	for {
		switch {
		case len(s) > len("ctrl+") && strings.HasPrefix(s, "ctrl+"):
			ks.Ctrl = true
			s = s[len("ctrl+"):]
			continue
		case len(s) > len("shift+") && strings.HasPrefix(s, "shift+"):
			ks.Shift = true
			s = s[len("shift+"):]
			continue
		}
		break
	}
	if r := []rune(s); len(r) == 1 && unicode.IsUpper(r[0]) {
		ks.Shift = true
		s = string(unicode.ToLower(r[0]))
	}
	ks.Key = normalizeKey(s)
	return ks
}

// Matches reports whether ks triggers sc. Off Mac, "meta" is satisfied by
// ctrl. On Mac a meta shortcut needs meta (or option) held and ctrl released
// unless the shortcut also asks for ctrl. Shift and alt must match exactly.
func (sc Shortcut) Matches(ks Keystroke, p Platform) bool {
	if sc.Key == "" || normalizeKey(ks.Key) != sc.Key {
		return false
	}
	if p == PlatformMac && sc.Meta && !sc.Alt && ks.Alt && !ks.Meta {
		ks.Meta, ks.Alt = true, false
	}
	if sc.Shift != ks.Shift || sc.Alt != ks.Alt {
		return false
	}
	wantMeta, wantCtrl := sc.Meta, sc.Ctrl
	if p != PlatformMac && wantMeta {
		wantMeta, wantCtrl = false, true
	}
	return ks.Meta == wantMeta && ks.Ctrl == wantCtrl
}

// Display renders a shortcut for the menu's hint column.
func (sc Shortcut) Display(p Platform) string {
	if sc.Key == "" {
		return ""
	}
	var parts []string
	if sc.Ctrl {
		parts = append(parts, "ctrl")
	}
	switch {
	case sc.Meta && p == PlatformMac:
		parts = append(parts, "cmd")
	case sc.Meta && !sc.Ctrl:
		parts = append(parts, "ctrl")
	}
	if sc.Alt {
		parts = append(parts, "alt")
	}
	if sc.Shift {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, sc.Key), "+")
}

func normalizeKey(k string) string {
	k = strings.ToLower(k)
	switch k {
	case "enter", "return":
		return "return"
	case " ", "space", "spacebar":
		return "space"
	case "escape", "esc":
		return "esc"
	}
	return k
}
