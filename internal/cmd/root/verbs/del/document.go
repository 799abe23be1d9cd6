package del

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/admin"
	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

type deleteResult struct {
	Table   string   `json:"table"   yaml:"table"`
	Deleted []string `json:"deleted" yaml:"deleted"`
}

func newDocumentCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "document <table> <id>...",
		Aliases: []string{"documents", "doc", "docs"},
		Short:   "Delete documents by id",
		Long:    normalizers.LongDesc(`Delete one or more documents of a table in a single mutation.`),
		Args:    cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runDeleteDocuments(cmdpkg.BuildHelper(c, args))
		},
	}
}

func runDeleteDocuments(helper cmdpkg.Helper) error {
	args := helper.GetArgs()
	table, ids := args[0], dedupe(args[1:])

	noun := "document"
	if len(ids) != 1 {
		noun = "documents"
	}
	description := fmt.Sprintf("%d %s from table %s", len(ids), noun, table)
	if err := cmdpkg.ConfirmDelete(helper, description, "This cannot be undone."); err != nil {
		return err
	}

	b, cfg, err := cmdpkg.OpenBackend(helper)
	if err != nil {
		return err
	}
	defer b.Close()

	componentID := cmdpkg.ComponentID(cfg)
	if err := admin.DeleteDocuments(helper.GetContext(), b.Client, table, componentID, ids); err != nil {
		return cmdpkg.PrepareExecutionError(
			fmt.Sprintf("failed to delete from %s: %s", table, panelerr.Message(err)), err, helper.GetCmd())
	}

	return output.Print(helper, deleteResult{Table: table, Deleted: ids}, func(out io.Writer) error {
		_, err := fmt.Fprintf(out, "Deleted %s.\n", description)
		return err
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
