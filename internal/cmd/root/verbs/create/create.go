package create

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
	Verb = verbs.Create
)

var (
	createUse = Verb.String()

	createShort = i18n.T("root.verbs.create.createShort", "Create tables and documents")

	createLong = normalizers.LongDesc(i18n.T("root.verbs.create.createLong",
		`Use create to create a new table or insert a document.

Table names are validated locally before the deployment is contacted.`))

	createExamples = normalizers.Examples(i18n.T("root.verbs.create.createExamples",
		fmt.Sprintf(`
		# Create an empty table
		%[1]s create table messages
		# Insert a document
		%[1]s create document messages '{"author": "Ada", "body": "hi"}'
		# Insert a document read from stdin
		cat doc.json | %[1]s create document messages -
		`, meta.CLIName)))
)

func NewCreateCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     createUse,
		Short:   createShort,
		Long:    createLong,
		Example: createExamples,
		Aliases: []string{"c", "C"},
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
			return cmdpkg.BindBackendFlags(c, args)
		},
	}
	cmdpkg.AddBackendFlags(cmd)

	cmd.AddCommand(newTableCmd())
	cmd.AddCommand(newDocumentCmd())

	return cmd, nil
}
