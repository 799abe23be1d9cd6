package create

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/admin"
	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

func newDocumentCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "document <table> <json|->",
		Aliases: []string{"doc"},
		Short:   "Insert a document",
		Long: normalizers.LongDesc(`Insert one document given as a JSON object, or read from
stdin when the argument is "-". The _id and _creationTime fields are assigned
by the database.`),
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runCreateDocument(cmdpkg.BuildHelper(c, args))
		},
	}
}

func runCreateDocument(helper cmdpkg.Helper) error {
	args := helper.GetArgs()
	table, raw := args[0], args[1]
	if raw == "-" {
		b, err := io.ReadAll(helper.GetStreams().In)
		if err != nil {
			return cmdpkg.PrepareExecutionError("failed to read document from stdin", err, helper.GetCmd())
		}
		raw = string(b)
	}
	doc, err := schema.ParseDocument(raw)
	if err != nil {
		return &cmdpkg.ConfigurationError{Err: err}
	}

	b, cfg, err := cmdpkg.OpenBackend(helper)
	if err != nil {
		return err
	}
	defer b.Close()

	componentID := cmdpkg.ComponentID(cfg)
	err = admin.AddDocuments(helper.GetContext(), b.Client, table, componentID, []schema.Document{doc})
	if err != nil {
		return cmdpkg.PrepareExecutionError(
			fmt.Sprintf("failed to add document to %s: %s", table, panelerr.Message(err)), err, helper.GetCmd())
	}

	return output.Print(helper, map[string]any{"table": table, "document": doc}, func(out io.Writer) error {
		_, err := fmt.Fprintf(out, "Added document to %s (%s).\n", table, strings.Join(sortedFields(doc), ", "))
		return err
	})
}

func sortedFields(doc schema.Document) []string {
	cols := schema.ColumnsFromDocuments([]schema.Document{doc})
	return cols[1 : len(cols)-1]
}
