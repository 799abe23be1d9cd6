package get

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/admin"
	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/common"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	jqoutput "github.com/convex-panel/panelctl/internal/cmd/output/jq"
	"github.com/convex-panel/panelctl/internal/cmd/output/text"
	"github.com/convex-panel/panelctl/internal/panel/format"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

const (
	limitFlagName  = "limit"
	cursorFlagName = "cursor"
	whereFlagName  = "where"
)

func newDocumentsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "documents <table>",
		Aliases: []string{"docs"},
		Short:   "Get a page of documents",
		Long: normalizers.LongDesc(`Fetch one page of a table. Pass the printed cursor to
--cursor for the next page. Every --where clause must hold.`),
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runGetDocuments(cmdpkg.BuildHelper(c, args))
		},
	}
	c.Flags().Int(limitFlagName, 0,
		fmt.Sprintf("Documents per page.\n- Config path: [ %s ]", common.PageSizeConfigPath))
	c.Flags().String(cursorFlagName, "", "Continue after a previous page.")
	c.Flags().StringArray(whereFlagName, nil, `Filter clause such as "age>=18" or "name=Ada". Repeatable.`)
	jqoutput.AddFlags(c.Flags())
	return c
}

func runGetDocuments(helper cmdpkg.Helper) error {
	flags := helper.GetCmd().Flags()
	table := helper.GetArgs()[0]

	var filters *admin.FilterExpression
	clauses, _ := flags.GetStringArray(whereFlagName)
	if len(clauses) > 0 {
		filters = &admin.FilterExpression{}
		for _, raw := range clauses {
			c, err := admin.ParseClause(raw)
			if err != nil {
				return &cmdpkg.ConfigurationError{Err: err}
			}
			filters.Clauses = append(filters.Clauses, c)
		}
	}

	b, cfg, err := cmdpkg.OpenBackend(helper)
	if err != nil {
		return err
	}
	defer b.Close()

	limit, _ := flags.GetInt(limitFlagName)
	if limit <= 0 {
		limit = cfg.GetIntOrElse(common.PageSizeConfigPath, common.DefaultPageSize)
	}
	cursor, _ := flags.GetString(cursorFlagName)
	componentID := cmdpkg.ComponentID(cfg)

	ctx := helper.GetContext()
	page, err := admin.Page(ctx, b.Client, admin.PageRequest{
		Table:       table,
		ComponentID: componentID,
		Filters:     filters,
		NumItems:    limit,
		Cursor:      cursor,
	})
	if err != nil {
		return cmdpkg.PrepareExecutionError("failed to get documents", err, helper.GetCmd())
	}

	return output.Print(helper, page, func(out io.Writer) error {
		// Column order comes from the schema when there is one.
		schemas, err := admin.Schemas(ctx, b.Client, componentID)
		if err != nil {
			schemas = nil
		}
		return renderPage(out, table, page, schemas[table])
	})
}

func renderPage(out io.Writer, table string, page admin.PageResult, s *schema.TableSchema) error {
	columns := schema.Columns(s)
	if s == nil {
		columns = schema.ColumnsFromDocuments(page.Page)
	}
	rows := make([][]string, 0, len(page.Page))
	for _, doc := range page.Page {
		row := make([]string, len(columns))
		for i, col := range columns {
			v, ok := doc[col]
			if !ok {
				row[i] = format.Unset
				continue
			}
			row[i] = format.Value(v)
		}
		rows = append(rows, row)
	}
	if err := text.Table(out, columns, rows, fmt.Sprintf("No documents in %s.", table)); err != nil {
		return err
	}
	if !page.IsDone && page.ContinueCursor != "" {
		_, err := fmt.Fprintf(out, "\nMore documents: --%s %s\n", cursorFlagName, page.ContinueCursor)
		return err
	}
	return nil
}
