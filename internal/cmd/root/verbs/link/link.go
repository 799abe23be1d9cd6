package link

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/common"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs"
	"github.com/convex-panel/panelctl/internal/meta"
	"github.com/convex-panel/panelctl/internal/panel/links"
	"github.com/convex-panel/panelctl/internal/util"
	"github.com/convex-panel/panelctl/internal/util/i18n"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

const (
	Verb = verbs.Link

	openFlagName = "open"
)

var (
	linkUse = Verb.String() + " <table> <id>"

	linkShort = i18n.T("root.verbs.link.linkShort", "Print the dashboard link of a document")

	linkLong = normalizers.LongDesc(i18n.T("root.verbs.link.linkLong",
		`Print the dashboard page of a document on a hosted deployment. Links
need a deployment URL of the form https://<name>.convex.cloud and a
document id.`))

	linkExamples = normalizers.Examples(i18n.T("root.verbs.link.linkExamples",
		fmt.Sprintf(`
		# Print the link
		%[1]s link messages k57b2h3c4d5e6f7g8h9j0k1m2n3
		# Open it in the browser
		%[1]s link messages k57b2h3c4d5e6f7g8h9j0k1m2n3 --open
		`, meta.CLIName)))
)

type linkResult struct {
	Table string `json:"table" yaml:"table"`
	ID    string `json:"id"    yaml:"id"`
	URL   string `json:"url"   yaml:"url"`
}

// opener is links.Open outside tests.
var opener = links.Open

func NewLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     linkUse,
		Short:   linkShort,
		Long:    linkLong,
		Example: linkExamples,
		Args:    cobra.ExactArgs(2),
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
			return cmdpkg.BindBackendFlags(c, args)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmdpkg.BuildHelper(c, args))
		},
	}
	cmdpkg.AddBackendFlags(cmd)
	cmd.Flags().Bool(openFlagName, false, "Open the link in the default browser.")
	return cmd
}

func run(helper cmdpkg.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	args := helper.GetArgs()
	table, id := args[0], args[1]

	deploymentURL := cfg.GetString(common.DeploymentURLConfigPath)
	url, ok := links.DocumentURL(deploymentURL, table, id, cmdpkg.ComponentID(cfg))
	if !ok {
		if _, hosted := links.DeploymentName(deploymentURL); !hosted {
			return &cmdpkg.ConfigurationError{
				Err: fmt.Errorf("deployment URL %q is not a hosted deployment; set --%s",
					util.FirstNonEmpty(deploymentURL, "(empty)"), common.DeploymentURLFlagName),
			}
		}
		return &cmdpkg.ConfigurationError{Err: fmt.Errorf("%q does not look like a document id", id)}
	}

	if open, _ := helper.GetCmd().Flags().GetBool(openFlagName); open {
		if err := opener(url); err != nil {
			return cmdpkg.PrepareExecutionError("failed to open browser", err, helper.GetCmd())
		}
	}

	return output.Print(helper, linkResult{Table: table, ID: id, URL: url}, func(out io.Writer) error {
		_, err := fmt.Fprintln(out, url)
		return err
	})
}
