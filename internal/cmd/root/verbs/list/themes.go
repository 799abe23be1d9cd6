package list

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/cmd"
	cmdcommon "github.com/convex-panel/panelctl/internal/cmd/common"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	"github.com/convex-panel/panelctl/internal/cmd/output/text"
	"github.com/convex-panel/panelctl/internal/config"
	"github.com/convex-panel/panelctl/internal/iostreams"
	"github.com/convex-panel/panelctl/internal/theme"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

func newThemesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "themes",
		Short: "List available color themes",
		Long: normalizers.LongDesc(`Display the registered color themes of the browse
screen with a sample of their palette. The active theme is marked.`),
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runListThemes(cmd.BuildHelper(c, args))
		},
	}
	return c
}

type themeRecord struct {
	ID      string      `json:"id"              yaml:"id"`
	Name    string      `json:"name"            yaml:"name"`
	Active  bool        `json:"active"          yaml:"active"`
	Primary theme.Color `json:"primary"         yaml:"primary"`
	Accent  theme.Color `json:"accent"          yaml:"accent"`
	Danger  theme.Color `json:"danger"          yaml:"danger"`
	About   string      `json:"about,omitempty" yaml:"about,omitempty"`
}

func runListThemes(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	records := buildThemeRecords(activeThemeName(cfg))
	useColor := iostreams.IsTerminal(helper.GetStreams().Out)

	return output.Print(helper, records, func(out io.Writer) error {
		return renderThemesText(out, records, useColor)
	})
}

func activeThemeName(cfg config.Hook) string {
	name := strings.ToLower(strings.TrimSpace(cfg.GetString(cmdcommon.ColorThemeConfigPath)))
	if name == "" {
		name = cmdcommon.DefaultColorTheme
	}
	return name
}

func buildThemeRecords(active string) []themeRecord {
	ids := theme.Available()
	records := make([]themeRecord, 0, len(ids))
	for _, id := range ids {
		p, ok := theme.Get(id)
		if !ok {
			continue
		}
		name := strings.TrimSpace(p.DisplayName)
		if name == "" {
			name = p.Name
		}
		records = append(records, themeRecord{
			ID:      p.Name,
			Name:    name,
			Active:  strings.EqualFold(p.Name, active),
			Primary: p.Color(theme.ColorPrimary),
			Accent:  p.Color(theme.ColorAccent),
			Danger:  p.Color(theme.ColorDanger),
			About:   strings.TrimSpace(p.About),
		})
	}
	return records
}

func renderThemesText(out io.Writer, records []themeRecord, useColor bool) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		id := r.ID
		if r.Active {
			id = "*" + id
		}
		p, _ := theme.Get(r.ID)
		rows = append(rows, []string{
			id,
			r.Name,
			swatch(p, theme.ColorPrimary, r.Primary.Dark, useColor),
			swatch(p, theme.ColorAccent, r.Accent.Dark, useColor),
		})
	}
	return text.Table(out, []string{"ID", "NAME", "PRIMARY", "ACCENT"}, rows, "No themes registered.")
}

func swatch(p theme.Palette, token theme.Token, hex string, useColor bool) string {
	if !useColor {
		return hex
	}
	return p.BackgroundStyle(token).Render("   ") + " " + hex
}
