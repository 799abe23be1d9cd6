package browse

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/common"
	jqoutput "github.com/convex-panel/panelctl/internal/cmd/output/jq"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs"
	"github.com/convex-panel/panelctl/internal/config"
	"github.com/convex-panel/panelctl/internal/log"
	"github.com/convex-panel/panelctl/internal/meta"
	"github.com/convex-panel/panelctl/internal/panel/app"
	"github.com/convex-panel/panelctl/internal/panel/jsonview"
	"github.com/convex-panel/panelctl/internal/panel/menu"
	"github.com/convex-panel/panelctl/internal/panel/recent"
	"github.com/convex-panel/panelctl/internal/panel/sidebar"
	"github.com/convex-panel/panelctl/internal/theme"
	"github.com/convex-panel/panelctl/internal/util/i18n"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

const (
	Verb = verbs.Browse

	pageSizeFlagName   = "page-size"
	hoverDwellFlagName = "hover-dwell"
	platformFlagName   = "platform"
)

var (
	browseUse = Verb.String() + " [table]"

	browseShort = i18n.T("root.verbs.browse.browseShort", "Browse tables in a full-screen data view")

	browseLong = normalizers.LongDesc(i18n.T("root.verbs.browse.browseLong",
		`Open the data browser: a table sidebar with search and recently viewed
tables, a data grid with column hover labels and context menus, and a
document preview.

Right-click a cell or press the menu key for actions. Press tab to move
between the sidebar and the grid, t to cycle themes and q to quit.`))

	browseExamples = normalizers.Examples(i18n.T("root.verbs.browse.browseExamples",
		fmt.Sprintf(`
		# Browse the deployment of the active profile
		%[1]s browse
		# Open a table directly
		%[1]s browse messages
		# Browse a local SQLite database
		%[1]s browse --backend sqlite --dsn ./app.db
		`, meta.CLIName)))
)

// runner starts the browse screen; replaced in tests.
var runner = app.Run

func NewBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     browseUse,
		Short:   browseShort,
		Long:    browseLong,
		Example: browseExamples,
		Aliases: []string{"b", "ui"},
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
			if err := cmdpkg.BindBackendFlags(c, args); err != nil {
				return err
			}
			return bindFlags(c, args)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmdpkg.BuildHelper(c, args))
		},
	}
	cmdpkg.AddBackendFlags(cmd)
	cmd.Flags().Int(pageSizeFlagName, common.DefaultPageSize,
		fmt.Sprintf("Documents loaded per page.\n- Config path: [ %s ]", common.PageSizeConfigPath))
	cmd.Flags().String(hoverDwellFlagName, common.DefaultHoverDwell,
		fmt.Sprintf("How long the pointer rests on a column header before its type label shows.\n- Config path: [ %s ]",
			common.HoverDwellConfigPath))
	platform := cmdpkg.NewEnum([]string{"auto", "mac", "other"}, common.DefaultPlatform)
	cmd.Flags().Var(platform, platformFlagName,
		fmt.Sprintf("Shortcut labels to show in menus.\n- Config path: [ %s ]\n- Allowed    : [ %s ]",
			common.PlatformConfigPath, platform.Choices()))
	return cmd
}

func bindFlags(c *cobra.Command, args []string) error {
	cfg, err := cmdpkg.BuildHelper(c, args).GetConfig()
	if err != nil {
		return err
	}
	for flag, path := range map[string]string{
		pageSizeFlagName:   common.PageSizeConfigPath,
		hoverDwellFlagName: common.HoverDwellConfigPath,
		platformFlagName:   common.PlatformConfigPath,
	} {
		if f := c.Flags().Lookup(flag); f != nil {
			if err := cfg.BindFlag(path, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func run(helper cmdpkg.Helper) error {
	b, cfg, err := cmdpkg.OpenBackend(helper)
	if err != nil {
		return err
	}
	defer b.Close()

	store, err := recent.Load(cfg.GetString(common.RecentFileConfigPath))
	if err != nil {
		return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
	}

	opts, err := buildOptions(cfg, helper.GetArgs())
	if err != nil {
		return err
	}
	opts.Context = helper.GetContext()
	opts.Client = b.Client
	opts.Fallback = b.Fallback
	opts.DeploymentURL = b.DeploymentURL
	opts.Recent = store

	logger, _ := helper.GetLogger()
	logger.Info("browse started", "backend", b.Driver, "component_id", cmdpkg.ComponentID(cfg))

	// The full-screen view owns the terminal; errors stay in the log file.
	log.DisableErrorMirroring()
	defer log.EnableErrorMirroring()

	if err := runner(helper.GetStreams(), opts); err != nil {
		return cmdpkg.PrepareExecutionError("browse failed", err, helper.GetCmd())
	}
	return nil
}

// buildOptions maps configuration onto the browse screen settings.
func buildOptions(cfg config.Hook, args []string) (app.Options, error) {
	dwell, err := time.ParseDuration(strings.TrimSpace(cfg.GetString(common.HoverDwellConfigPath)))
	if err != nil || dwell < 0 {
		return app.Options{}, &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("invalid %s %q: expected a duration such as 500ms",
				common.HoverDwellConfigPath, cfg.GetString(common.HoverDwellConfigPath)),
		}
	}

	opts := app.Options{
		Components: components(cfg),
		Palette:    theme.Current(),
		Platform:   menu.DetectPlatform(cfg.GetString(common.PlatformConfigPath)),
		Dwell:      dwell,
		PageSize:   cfg.GetIntOrElse(common.PageSizeConfigPath, common.DefaultPageSize),
		Style:      cfg.GetString(jqoutput.StyleConfigPath),
	}
	if opts.Style == "" {
		opts.Style = jsonview.DefaultStyle
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		opts.NoColor = true
	}
	if len(args) == 1 {
		opts.InitialTable = args[0]
	}
	return opts, nil
}

// components lists the component selected by --component first, then the
// entries of deployment.components ("name=id"), then the app itself.
func components(cfg config.Hook) []sidebar.Component {
	current := cmdpkg.ComponentID(cfg)
	list := []sidebar.Component{{ID: current}}
	seen := map[string]bool{current: true}
	for _, entry := range cfg.GetStringSlice(common.ComponentsConfigPath) {
		name, id, found := strings.Cut(entry, "=")
		if !found {
			name, id = entry, entry
		}
		id = strings.TrimSpace(id)
		if id == current && list[0].Name == "" {
			list[0].Name = strings.TrimSpace(name)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		list = append(list, sidebar.Component{ID: id, Name: strings.TrimSpace(name)})
	}
	if len(list) > 1 && !seen[""] {
		list = append(list, sidebar.Component{ID: "", Name: "app"})
	}
	for i, c := range list {
		if c.ID != "" {
			continue
		}
		list[i].Name = "app"
	}
	return list
}
