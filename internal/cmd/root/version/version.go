package version

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/build"
	"github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	"github.com/convex-panel/panelctl/internal/meta"
	"github.com/convex-panel/panelctl/internal/util/i18n"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

const (
	ShowCommitFlagName   = "show-commit"
	ShowCommitConfigPath = "version." + ShowCommitFlagName
)

var (
	versionUse   = "version"
	versionShort = i18n.T("root.version.versionShort",
		fmt.Sprintf("Print the %s version", meta.CLIName))
	versionLong = normalizers.LongDesc(i18n.T("root.version.versionLong",
		`The version command prints the version and other optional information`))
	versionExample = normalizers.Examples(i18n.T("root.version.versionExamples",
		fmt.Sprintf(`
		# Print the simple version
		%[1]s version
		# Print the version and the git commit hash
		%[1]s version --show-commit
		`, meta.CLIName)))
)

// Build a new instance of the version command
func NewVersionCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     versionUse,
		Short:   versionShort,
		Long:    versionLong,
		Example: versionExample,
		Args:    cobra.NoArgs,
		PreRunE: bindFlags,
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmd.BuildHelper(c, args))
		},
	}

	rv.Flags().Bool(ShowCommitFlagName, false,
		i18n.T(fmt.Sprintf("root.%s", ShowCommitConfigPath),
			fmt.Sprintf("True to show the git commit hash when built.\n (config path = '%s')", ShowCommitConfigPath)))

	return rv
}

func bindFlags(c *cobra.Command, args []string) error {
	cfg, err := cmd.BuildHelper(c, args).GetConfig()
	if err != nil {
		return err
	}
	return cfg.BindFlag(ShowCommitConfigPath, c.Flags().Lookup(ShowCommitFlagName))
}

// Run performs the actual version command logic
func run(helper cmd.Helper) error {
	info, err := helper.GetBuildInfo()
	if err != nil {
		return err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	result := map[string]any{
		"version": info.Version,
	}
	if cfg.GetBool(ShowCommitConfigPath) {
		result["commit"] = info.Commit
	}

	return output.Print(helper, result, func(out io.Writer) error {
		return printText(info, cfg.GetBool(ShowCommitConfigPath), out)
	})
}

func printText(info *build.Info, showCommit bool, out io.Writer) error {
	if _, err := fmt.Fprint(out, info.Version); err != nil {
		return err
	}
	if showCommit {
		if _, err := fmt.Fprintf(out, " (%s)", info.Commit); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(out)
	return err
}
