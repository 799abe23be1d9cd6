package list

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	profileCmd "github.com/convex-panel/panelctl/internal/cmd/root/profile"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs"
	"github.com/convex-panel/panelctl/internal/meta"
	"github.com/convex-panel/panelctl/internal/util/i18n"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

const (
	Verb = verbs.List
)

var (
	listUse = Verb.String()

	listShort = i18n.T("root.verbs.list.listShort", "List tables, themes and profiles")

	listLong = normalizers.LongDesc(i18n.T("root.verbs.list.listLong",
		`Use list to retrieve a list of objects.

Tables are read from the deployment selected by the active profile or the
deployment flags. Output can be formatted in multiple ways to aid in further
processing.`))

	listExamples = normalizers.Examples(i18n.T("root.verbs.list.listExamples",
		fmt.Sprintf(`
		# List the tables of the app
		%[1]s list tables
		# List the tables of a component
		%[1]s list tables --component <id>
		# List only recently browsed tables
		%[1]s list tables --recent
		# List the color themes
		%[1]s list themes
		`, meta.CLIName)))
)

func NewListCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     listUse,
		Short:   listShort,
		Long:    listLong,
		Example: listExamples,
		Aliases: []string{"ls", "l"},
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
			return cmdpkg.BindBackendFlags(c, args)
		},
	}
	cmdpkg.AddBackendFlags(cmd)

	cmd.AddCommand(newTablesCmd())
	cmd.AddCommand(newThemesCmd())
	cmd.AddCommand(profileCmd.NewProfileCmd())

	return cmd, nil
}
