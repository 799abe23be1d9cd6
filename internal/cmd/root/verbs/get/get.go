package get

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
	Verb = verbs.Get
)

var (
	getUse = Verb.String()

	getShort = i18n.T("root.verbs.get.getShort", "Retrieve documents and schemas")

	getLong = normalizers.LongDesc(i18n.T("root.verbs.get.getLong",
		`Use get to retrieve a document, a page of documents or a table schema.

The deployment is selected by the active profile or the deployment flags.
Output can be formatted in multiple ways to aid in further processing.`))

	getExamples = normalizers.Examples(i18n.T("root.verbs.get.getExamples",
		fmt.Sprintf(`
		# Retrieve one document
		%[1]s get document messages k57b2h3c4d5e6f7g8h9j0k1m2n3
		# Retrieve the first page of a table as JSON
		%[1]s get documents messages -o json
		# Retrieve the documents matching a filter
		%[1]s get documents users --where "age>=18" --limit 10
		# Show the column types of a table
		%[1]s get schema messages
		`, meta.CLIName)))
)

func NewGetCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     getUse,
		Short:   getShort,
		Long:    getLong,
		Example: getExamples,
		Aliases: []string{"g", "G"},
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
			return cmdpkg.BindBackendFlags(c, args)
		},
	}
	cmdpkg.AddBackendFlags(cmd)

	cmd.AddCommand(newDocumentCmd())
	cmd.AddCommand(newDocumentsCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(profileCmd.NewProfileCmd())

	return cmd, nil
}
