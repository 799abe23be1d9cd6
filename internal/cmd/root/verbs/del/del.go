package del

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs"
	"github.com/convex-panel/panelctl/internal/meta"
	"github.com/convex-panel/panelctl/internal/util/i18n"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

const (
	Verb = verbs.Delete

	autoApproveFlagName = "yes"
)

var (
	deleteUse = Verb.String()

	deleteShort = i18n.T("root.verbs.delete.deleteShort", "Delete documents")

	deleteLong = normalizers.LongDesc(i18n.T("root.verbs.delete.deleteLong",
		`Use delete to remove documents from a table.

You are asked to type "yes" before anything is deleted unless --yes is given.`))

	deleteExamples = normalizers.Examples(i18n.T("root.verbs.delete.deleteExamples",
		fmt.Sprintf(`
		# Delete one document
		%[1]s delete document messages k57b2h3c4d5e6f7g8h9j0k1m2n3
		# Delete several documents without a prompt
		%[1]s delete document messages <id> <id> --yes
		`, meta.CLIName)))
)

func NewDeleteCmd() (*cobra.Command, error) {
	var autoApprove bool

	cmd := &cobra.Command{
		Use:     deleteUse,
		Short:   deleteShort,
		Long:    deleteLong,
		Example: deleteExamples,
		Aliases: []string{"d", "D", "del", "rm", "DEL", "RM"},
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			c.SetContext(context.WithValue(ctx, verbs.Verb, Verb))
			if err := cmdpkg.BindBackendFlags(c, args); err != nil {
				return err
			}
			cmdpkg.SetDeleteAutoApprove(c, autoApprove)
			return nil
		},
	}
	cmdpkg.AddBackendFlags(cmd)
	cmd.PersistentFlags().BoolVarP(&autoApprove, autoApproveFlagName, "y", false,
		"Skip the confirmation prompt (not configurable)")

	cmd.AddCommand(newDocumentCmd())

	return cmd, nil
}
