package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/admin/backends"
	"github.com/convex-panel/panelctl/internal/build"
	"github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/common"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs/browse"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs/create"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs/del"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs/get"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs/link"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs/list"
	"github.com/convex-panel/panelctl/internal/cmd/root/version"
	"github.com/convex-panel/panelctl/internal/config"
	"github.com/convex-panel/panelctl/internal/iostreams"
	"github.com/convex-panel/panelctl/internal/log"
	"github.com/convex-panel/panelctl/internal/meta"
	"github.com/convex-panel/panelctl/internal/profile"
	"github.com/convex-panel/panelctl/internal/theme"
	"github.com/convex-panel/panelctl/internal/util/i18n"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

var (
	rootLong = normalizers.LongDesc(i18n.T("root.rootLong", `
  panelctl browses and edits the data of a deployment from the terminal.

  It talks to hosted deployments through the admin API, and to SQLite,
  PostgreSQL, MySQL and MongoDB databases directly.`))

	rootShort = i18n.T("root/rootShort", fmt.Sprintf("%s is a terminal data browser", meta.CLIName))

	rootCmd *cobra.Command

	// Stores the global runtime value for the Configuration file path,
	configFilePath = config.ExpandDefaultConfigFilePath()
	currProfile    = profile.DefaultProfile

	currConfig   *config.ProfiledConfig
	streams      *iostreams.IOStreams
	pMgr         profile.Manager
	outputFormat = cmd.NewEnum([]string{"json", "yaml", "text"}, "text")
	logLevel     = cmd.NewEnum([]string{"trace", "debug", "info", "warn", "error"}, common.DefaultLogLevel)
	colorTheme   = theme.NewFlag(common.DefaultColorTheme)

	buildInfo *build.Info
	logCloser func() error
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   meta.CLIName,
		Short: rootShort,
		Long:  rootLong,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			logger, closer, err := log.New(log.Options{
				Level:   currConfig.GetString(common.LogLevelConfigPath),
				File:    currConfig.GetString(common.LogFileConfigPath),
				Console: streams.ErrOut,
			})
			if err != nil {
				return &cmd.ConfigurationError{Err: err}
			}
			logCloser = closer

			if err := theme.SetCurrent(currConfig.GetString(common.ColorThemeConfigPath)); err != nil {
				return &cmd.ConfigurationError{Err: err}
			}

			ctx := context.WithValue(c.Context(), config.ConfigKey, config.Hook(currConfig))
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, profile.ProfileManagerKey, pMgr)
			ctx = context.WithValue(ctx, build.InfoKey, buildInfo)
			ctx = context.WithValue(ctx, backends.FactoryKey, backends.Factory(backends.Open))
			ctx = log.WithRequestLogContext(ctx, log.RequestLogContext{CommandPath: c.CommandPath()})
			ctx = log.WithLogger(ctx, logger.With("command", c.CommandPath()))
			ctx = theme.ContextWithPalette(ctx, theme.Current())
			c.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if logCloser != nil {
				return logCloser()
			}
			return nil
		},
	}

	// parses all flags not just the target command
	rootCmd.TraverseChildren = true

	rootCmd.PersistentFlags().StringVar(&configFilePath, common.ConfigFilePathFlagName,
		config.ExpandDefaultConfigFilePath(),
		i18n.T("root."+common.ConfigFilePathFlagName, "Path to the configuration file to load."))

	rootCmd.PersistentFlags().StringVarP(&currProfile, common.ProfileFlagName, common.ProfileFlagShort,
		profile.DefaultProfile,
		fmt.Sprintf("Specify the profile to use for this command.\n- Env var: [ %s_PROFILE ]",
			strings.ToUpper(meta.CLIName)))

	rootCmd.PersistentFlags().VarP(outputFormat, common.OutputFlagName, common.OutputFlagShort,
		fmt.Sprintf(`Configures the output format.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.OutputConfigPath, outputFormat.Choices()))

	rootCmd.PersistentFlags().Var(logLevel, common.LogLevelFlagName,
		fmt.Sprintf(`Configures the logging level.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.LogLevelConfigPath, logLevel.Choices()))

	rootCmd.PersistentFlags().String(common.LogFileFlagName, "",
		fmt.Sprintf("Write logs to this file.\n- Config path: [ %s ]", common.LogFileConfigPath))

	rootCmd.PersistentFlags().Var(colorTheme, common.ColorThemeFlagName,
		fmt.Sprintf(`Color theme of the browse screen.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.ColorThemeConfigPath, strings.Join(theme.Available(), "|")))

	return rootCmd
}

// addCommands adds the root subcommands to the command.
func addCommands() error {
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(browse.NewBrowseCmd())
	rootCmd.AddCommand(link.NewLinkCmd())

	for _, newCmd := range []func() (*cobra.Command, error){
		get.NewGetCmd,
		list.NewListCmd,
		create.NewCreateCmd,
		del.NewDeleteCmd,
	} {
		c, err := newCmd()
		if err != nil {
			return err
		}
		rootCmd.AddCommand(c)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()
	err := addCommands()
	cobra.CheckErr(err)

	// Because the profile is not part of the configuration, we can't use viper
	// to read it following it's built in priorities.  So here we look for a well known
	// profile variable and set our package level variable if it's set before
	// continuing to process the command run.  This creates a ENV_VAR < CLI_FLAG priority
	profileEnvVar, found := os.LookupEnv(fmt.Sprintf("%s_PROFILE", strings.ToUpper(meta.CLIName)))
	if found {
		currProfile = profileEnvVar
	}
}

func initConfig() {
	cfg, e1 := config.GetConfig(configFilePath, currProfile, config.ExpandDefaultConfigFilePath())
	cobra.CheckErr(e1)
	currConfig = cfg

	pMgr = profile.NewManager(cfg.Viper)

	for flag, path := range map[string]string{
		common.OutputFlagName:     common.OutputConfigPath,
		common.LogLevelFlagName:   common.LogLevelConfigPath,
		common.LogFileFlagName:    common.LogFileConfigPath,
		common.ColorThemeFlagName: common.ColorThemeConfigPath,
	} {
		cobra.CheckErr(cfg.BindFlag(path, rootCmd.PersistentFlags().Lookup(flag)))
	}
}

// logExecutionError records a failed command with its attributes. The
// message itself is printed to the user separately.
func logExecutionError(c *cobra.Command, e *cmd.ExecutionError) {
	if c == nil || c.Context() == nil {
		return
	}
	args := append([]any{"error", e.Err}, e.Attrs...)
	log.FromContext(c.Context()).Debug(e.Msg, args...)
}

func Execute(ctx context.Context, s *iostreams.IOStreams, bi *build.Info) {
	buildInfo = bi
	cobra.EnableTraverseRunHooks = true
	streams = s
	c, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return
	}
	var executionError *cmd.ExecutionError
	if errors.As(err, &executionError) {
		logExecutionError(c, executionError)
		if printer, perr := cli.Format(outputFormat.String(), s.ErrOut); perr == nil {
			printer.Print(executionError.Msg)
			printer.Flush()
		} else {
			fmt.Fprintln(s.ErrOut, "Error:", executionError.Msg)
		}
	}
	os.Exit(1)
}
