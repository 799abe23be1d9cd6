package theme

import (
	"strings"

	tint "github.com/lrstanley/bubbletint/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// base is the handful of terminal colors a derived palette is built from.
type base struct {
	id, display, about                  string
	fg, bg, muted, accent, accentBright string
	success, info, warning, danger      string
	highlight                           string
}

func builtinBases() []base {
	return []base{
		{
			id: "dracula", display: "Dracula", about: "Dark theme with vivid accents.",
			fg: "#F8F8F2", bg: "#282A36", muted: "#6272A4", accent: "#8BE9FD", accentBright: "#BD93F9",
			success: "#50FA7B", info: "#BD93F9", warning: "#F1FA8C", danger: "#FF5555", highlight: "#44475A",
		},
		{
			id: "nord", display: "Nord", about: "Arctic, north-bluish palette.",
			fg: "#D8DEE9", bg: "#2E3440", muted: "#4C566A", accent: "#88C0D0", accentBright: "#81A1C1",
			success: "#A3BE8C", info: "#5E81AC", warning: "#EBCB8B", danger: "#BF616A", highlight: "#3B4252",
		},
		{
			id: "solarized-light", display: "Solarized Light", about: "Low contrast light palette.",
			fg: "#657B83", bg: "#FDF6E3", muted: "#93A1A1", accent: "#2AA198", accentBright: "#268BD2",
			success: "#859900", info: "#268BD2", warning: "#B58900", danger: "#DC322F", highlight: "#EEE8D5",
		},
	}
}

// baseFromTint picks the base colors of a bubbletint terminal theme.
func baseFromTint(t tint.Tint) (base, bool) {
	if t == nil || strings.TrimSpace(t.ID()) == "" {
		return base{}, false
	}
	return base{
		id:           t.ID(),
		display:      strings.TrimSpace(t.DisplayName()),
		about:        strings.TrimSpace(t.About()),
		fg:           tint.Hex(t.Fg()),
		bg:           tint.Hex(t.Bg()),
		muted:        tint.Hex(t.BrightBlack()),
		accent:       tint.Hex(t.Cyan()),
		accentBright: tint.Hex(t.BrightBlue()),
		success:      tint.Hex(t.Green()),
		info:         tint.Hex(t.Blue()),
		warning:      tint.Hex(t.Yellow()),
		danger:       tint.Hex(t.Red()),
		highlight:    tint.Hex(t.BrightWhite()),
	}, true
}

func paletteFromBase(b base) Palette {
	fg, bg := normalizeHex(b.fg), normalizeHex(b.bg)
	accent, accentBright := normalizeHex(b.accent), normalizeHex(b.accentBright)

	colors := map[Token]Color{
		ColorTextPrimary:   singleColor(fg),
		ColorTextSecondary: derivedTextSecondary(fg),
		ColorTextMuted:     mutedColor(b.muted),
		ColorBorder:        borderColor(b.muted),
		ColorSurface:       singleColor(bg),
		ColorSurfaceText:   singleColor(fg),
		ColorPrimary:       singleColor(accent),
		ColorPrimaryText:   singleColor(contrastColor(accent)),
		ColorAccent:        singleColor(accentBright),
		ColorAccentText:    singleColor(contrastColor(accentBright)),
		ColorSuccess:       singleColor(b.success),
		ColorSuccessText:   singleColor(contrastColor(b.success)),
		ColorInfo:          singleColor(b.info),
		ColorInfoText:      singleColor(contrastColor(b.info)),
		ColorWarning:       singleColor(b.warning),
		ColorWarningText:   singleColor(contrastColor(b.warning)),
		ColorDanger:        singleColor(b.danger),
		ColorDangerText:    singleColor(contrastColor(b.danger)),
		ColorHighlight:     singleColor(b.highlight),
	}

	return Palette{Name: sanitizeName(b.id), DisplayName: b.display, About: b.about, Colors: colors}
}

func singleColor(hex string) Color {
	h := normalizeHex(hex)
	return Color{Light: h, Dark: h}
}

func mutedColor(hex string) Color {
	h := normalizeHex(hex)
	if h == "" {
		return Color{Light: "#646A7A", Dark: "#7C8298"}
	}
	return Color{Light: blendHex(h, 0, 0.35), Dark: blendHex(h, 1, 0.35)}
}

func derivedTextSecondary(hex string) Color {
	h := normalizeHex(hex)
	if h == "" {
		return Color{Light: "#1F2026", Dark: "#D7D9E3"}
	}
	return Color{Light: blendHex(h, 0, 0.25), Dark: blendHex(h, 1, 0.2)}
}

func borderColor(hex string) Color {
	h := normalizeHex(hex)
	if h == "" {
		return Color{Light: "#4A4D65", Dark: "#4A4D65"}
	}
	return Color{Light: blendHex(h, 0, 0.15), Dark: blendHex(h, 1, 0.25)}
}

func normalizeHex(hex string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(hex), "#")))
	switch {
	case trimmed == "":
		return ""
	case len(trimmed) == 3:
		var b strings.Builder
		b.WriteString("#")
		for _, r := range trimmed {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		return b.String()
	case len(trimmed) > 6:
		return "#" + trimmed[:6]
	default:
		return "#" + trimmed
	}
}

// contrastColor picks near-black or near-white text for a background.
func contrastColor(hex string) string {
	c, err := colorful.Hex(normalizeHex(hex))
	if err != nil {
		return "#121418"
	}
	r, g, b := c.LinearRgb()
	if 0.2126*r+0.7152*g+0.0722*b > 0.55 {
		return "#121418"
	}
	return "#F8F8F8"
}

// blendHex mixes hex towards white (target 1) or black (target 0) in Lab space.
func blendHex(hex string, target float64, amount float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	amount = min(max(amount, 0), 1)
	to := colorful.Color{R: target, G: target, B: target}
	return strings.ToUpper(c.BlendLab(to, amount).Clamped().Hex())
}
