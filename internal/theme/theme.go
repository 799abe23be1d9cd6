package theme

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint/v2"
)

// DefaultName is the built-in theme used when no override is provided.
const DefaultName = "panel-dark"

// Token represents a semantic color slot.
type Token string

const (
	ColorTextPrimary   Token = "text.primary"
	ColorTextSecondary Token = "text.secondary"
	ColorTextMuted     Token = "text.muted"
	ColorBorder        Token = "border"
	ColorSurface       Token = "surface"
	ColorSurfaceText   Token = "surface.text"
	ColorPrimary       Token = "primary"
	ColorPrimaryText   Token = "primary.text"
	ColorAccent        Token = "accent"
	ColorAccentText    Token = "accent.text"
	ColorSuccess       Token = "success"
	ColorSuccessText   Token = "success.text"
	ColorInfo          Token = "info"
	ColorInfoText      Token = "info.text"
	ColorWarning       Token = "warning"
	ColorWarningText   Token = "warning.text"
	ColorDanger        Token = "danger"
	ColorDangerText    Token = "danger.text"
	ColorHighlight     Token = "highlight"
)

// Color stores light and dark variants for adaptive rendering.
type Color struct {
	Light string
	Dark  string
}

// Adaptive converts the color into a lipgloss adaptive color.
func (c Color) Adaptive() lipgloss.AdaptiveColor {
	light, dark := strings.TrimSpace(c.Light), strings.TrimSpace(c.Dark)
	switch {
	case light == "" && dark == "":
		return lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#000000"}
	case light == "":
		light = dark
	case dark == "":
		dark = light
	}
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Palette represents a concrete theme.
type Palette struct {
	Name        string
	DisplayName string
	About       string
	Colors      map[Token]Color
}

// Color returns a color for the provided token, falling back to the default palette.
func (p Palette) Color(token Token) Color {
	if c, ok := p.Colors[token]; ok {
		return ensureColor(c, token)
	}
	return fallbackColor(token)
}

// Adaptive returns the lipgloss adaptive color for the provided token.
func (p Palette) Adaptive(token Token) lipgloss.AdaptiveColor {
	return p.Color(token).Adaptive()
}

// ForegroundStyle returns a lipgloss style with the foreground set to the requested token.
func (p Palette) ForegroundStyle(token Token) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Adaptive(token))
}

// BackgroundStyle returns a lipgloss style with the background set to the requested token.
func (p Palette) BackgroundStyle(token Token) lipgloss.Style {
	return lipgloss.NewStyle().Background(p.Adaptive(token))
}

type contextKey struct{}

var (
	registryOnce sync.Once
	registryMu   sync.RWMutex
	palettes     map[string]Palette
	current      Palette
	defaultPal   Palette
	themeKey     contextKey
)

// ContextWithPalette stores the palette on the context.
func ContextWithPalette(ctx context.Context, p Palette) context.Context {
	return context.WithValue(ctx, themeKey, p)
}

// FromContext returns the palette stored on the context or the current palette.
func FromContext(ctx context.Context) Palette {
	if ctx != nil {
		if p, ok := ctx.Value(themeKey).(Palette); ok {
			return p
		}
	}
	return Current()
}

// Available returns the list of registered theme IDs (sorted).
func Available() []string {
	ensureRegistry()

	registryMu.RLock()
	defer registryMu.RUnlock()

	keys := make([]string, 0, len(palettes))
	for k := range palettes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Exists returns true when a theme is registered.
func Exists(name string) bool {
	_, ok := Get(name)
	return ok
}

// Get returns the palette with the provided name.
func Get(name string) (Palette, bool) {
	ensureRegistry()

	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := palettes[sanitizeName(name)]
	return p, ok
}

// SetCurrent sets the active palette.
func SetCurrent(name string) error {
	ensureRegistry()

	name = sanitizeName(name)
	if name == "" {
		name = DefaultName
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	p, ok := palettes[name]
	if !ok {
		return fmt.Errorf("unknown color theme %q", name)
	}
	current = p
	return nil
}

// Current returns the active palette.
func Current() Palette {
	ensureRegistry()

	registryMu.RLock()
	defer registryMu.RUnlock()

	return current
}

// Next returns the palette registered after name, wrapping around.
func Next(name string) Palette {
	names := Available()
	idx := sort.SearchStrings(names, sanitizeName(name))
	if idx < len(names) && names[idx] == sanitizeName(name) {
		idx++
	}
	p, _ := Get(names[idx%len(names)])
	return p
}

// Flag is a pflag.Value implementation for theme IDs.
type Flag struct {
	value string
}

// NewFlag returns a Flag with the provided default value.
func NewFlag(defaultValue string) *Flag {
	name := sanitizeName(defaultValue)
	if name == "" || !Exists(name) {
		name = DefaultName
	}
	return &Flag{value: name}
}

// String implements pflag.Value.
func (f *Flag) String() string {
	if f == nil {
		return DefaultName
	}
	return f.value
}

// Set implements pflag.Value.
func (f *Flag) Set(v string) error {
	name := sanitizeName(v)
	if name == "" {
		name = DefaultName
	}
	if !Exists(name) {
		return fmt.Errorf("invalid color theme %q", v)
	}
	f.value = name
	return nil
}

// Type implements pflag.Value.
func (f *Flag) Type() string {
	return "string"
}

func ensureRegistry() {
	registryOnce.Do(func() {
		registryMu.Lock()
		defer registryMu.Unlock()

		palettes = make(map[string]Palette)
		registerPalette(panelDarkPalette())
		registerPalette(panelLightPalette())
		defaultPal = palettes[DefaultName]
		current = defaultPal

		for _, b := range builtinBases() {
			registerPalette(paletteFromBase(b))
		}
		for _, t := range tint.DefaultTints() {
			if b, ok := baseFromTint(t); ok {
				registerPalette(paletteFromBase(b))
			}
		}
	})
}

func registerPalette(p Palette) {
	if p.Name == "" {
		return
	}
	if p.DisplayName == "" {
		p.DisplayName = p.Name
	}
	if p.Colors == nil {
		p.Colors = map[Token]Color{}
	}
	p.Name = sanitizeName(p.Name)
	palettes[p.Name] = p
}

func ensureColor(c Color, token Token) Color {
	if strings.TrimSpace(c.Light) == "" && strings.TrimSpace(c.Dark) == "" {
		return fallbackColor(token)
	}
	if strings.TrimSpace(c.Light) == "" {
		c.Light = c.Dark
	}
	if strings.TrimSpace(c.Dark) == "" {
		c.Dark = c.Light
	}
	return c
}

func fallbackColor(token Token) Color {
	if c, ok := defaultPal.Colors[token]; ok {
		return c
	}
	return Color{Light: "#FFFFFF", Dark: "#000000"}
}

func sanitizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func panelDarkPalette() Palette {
	return Palette{
		Name:        DefaultName,
		DisplayName: "Panel Dark",
		About:       "Default dark theme for the data browser.",
		Colors: map[Token]Color{
			ColorTextPrimary:   singleColor("#EDEDED"),
			ColorTextSecondary: singleColor("#C2C2C6"),
			ColorTextMuted:     singleColor("#8E8E96"),
			ColorBorder:        singleColor("#34343A"),
			ColorSurface:       singleColor("#16161A"),
			ColorSurfaceText:   singleColor("#EDEDED"),
			ColorPrimary:       singleColor("#8D6CF3"),
			ColorPrimaryText:   singleColor("#FFFFFF"),
			ColorAccent:        singleColor("#3F3A5C"),
			ColorAccentText:    singleColor("#FFFFFF"),
			ColorSuccess:       singleColor("#4ADE80"),
			ColorSuccessText:   singleColor("#0B2513"),
			ColorInfo:          singleColor("#60A5FA"),
			ColorInfoText:      singleColor("#0B1A2E"),
			ColorWarning:       singleColor("#FBBF24"),
			ColorWarningText:   singleColor("#2B1E02"),
			ColorDanger:        singleColor("#F87171"),
			ColorDangerText:    singleColor("#2E0B0B"),
			ColorHighlight:     singleColor("#26262C"),
		},
	}
}

func panelLightPalette() Palette {
	return Palette{
		Name:        "panel-light",
		DisplayName: "Panel Light",
		About:       "Light theme for bright terminals.",
		Colors: map[Token]Color{
			ColorTextPrimary:   singleColor("#1A1A1E"),
			ColorTextSecondary: singleColor("#45454D"),
			ColorTextMuted:     singleColor("#6E6E78"),
			ColorBorder:        singleColor("#D9D9DE"),
			ColorSurface:       singleColor("#FFFFFF"),
			ColorSurfaceText:   singleColor("#1A1A1E"),
			ColorPrimary:       singleColor("#6B47E0"),
			ColorPrimaryText:   singleColor("#FFFFFF"),
			ColorAccent:        singleColor("#E7E1FB"),
			ColorAccentText:    singleColor("#1A1A1E"),
			ColorSuccess:       singleColor("#15803D"),
			ColorSuccessText:   singleColor("#FFFFFF"),
			ColorInfo:          singleColor("#2563EB"),
			ColorInfoText:      singleColor("#FFFFFF"),
			ColorWarning:       singleColor("#B45309"),
			ColorWarningText:   singleColor("#FFFFFF"),
			ColorDanger:        singleColor("#DC2626"),
			ColorDangerText:    singleColor("#FFFFFF"),
			ColorHighlight:     singleColor("#F2F2F5"),
		},
	}
}
