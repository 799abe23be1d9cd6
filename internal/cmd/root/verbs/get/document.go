package get

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/admin"
	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	jqoutput "github.com/convex-panel/panelctl/internal/cmd/output/jq"
	"github.com/convex-panel/panelctl/internal/iostreams"
	"github.com/convex-panel/panelctl/internal/panel/jsonview"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

func newDocumentCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "document <table> <id>",
		Aliases: []string{"doc"},
		Short:   "Get one document by id",
		Long: normalizers.LongDesc(`Fetch a single document by its _id. Text output prints
the document as indented JSON, highlighted when writing to a terminal.`),
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runGetDocument(cmdpkg.BuildHelper(c, args))
		},
	}
	jqoutput.AddFlags(c.Flags())
	return c
}

func runGetDocument(helper cmdpkg.Helper) error {
	args := helper.GetArgs()
	table, id := args[0], strings.TrimSpace(args[1])

	b, cfg, err := cmdpkg.OpenBackend(helper)
	if err != nil {
		return err
	}
	defer b.Close()

	doc, err := admin.DocumentByID(helper.GetContext(), b.Client, table, cmdpkg.ComponentID(cfg), id)
	if errors.Is(err, admin.ErrNotFound) {
		return cmdpkg.PrepareExecutionErrorMsg(helper, fmt.Sprintf("document %s not found in %s", id, table))
	}
	if err != nil {
		return cmdpkg.PrepareExecutionError("failed to get document", err, helper.GetCmd())
	}

	return output.Print(helper, doc, func(out io.Writer) error {
		return printDocument(out, doc, cfg.GetString(jqoutput.StyleConfigPath))
	})
}

func printDocument(out io.Writer, doc schema.Document, style string) error {
	if style == "" {
		style = jsonview.DefaultStyle
	}
	_, err := fmt.Fprintln(out, jsonview.Render(doc, !iostreams.IsTerminal(out), style))
	return err
}
