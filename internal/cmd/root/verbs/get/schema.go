package get

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/admin"
	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	jqoutput "github.com/convex-panel/panelctl/internal/cmd/output/jq"
	"github.com/convex-panel/panelctl/internal/cmd/output/text"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

type columnRecord struct {
	Name      string `json:"name"                yaml:"name"`
	Type      string `json:"type"                yaml:"type"`
	Optional  bool   `json:"optional"            yaml:"optional"`
	LinkTable string `json:"linkTable,omitempty" yaml:"linkTable,omitempty"`
}

func newSchemaCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "schema <table>",
		Short: "Show the column types of a table",
		Long: normalizers.LongDesc(`List the columns of a table with the type label, optional
marker and referenced table shown in the browse screen's column hover labels.`),
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runGetSchema(cmdpkg.BuildHelper(c, args))
		},
	}
	jqoutput.AddFlags(c.Flags())
	return c
}

func runGetSchema(helper cmdpkg.Helper) error {
	table := helper.GetArgs()[0]

	b, cfg, err := cmdpkg.OpenBackend(helper)
	if err != nil {
		return err
	}
	defer b.Close()

	schemas, err := admin.Schemas(helper.GetContext(), b.Client, cmdpkg.ComponentID(cfg))
	if err != nil {
		return cmdpkg.PrepareExecutionError("failed to get schemas", err, helper.GetCmd())
	}
	records := columnRecords(schemas[table])

	return output.Print(helper, records, func(out io.Writer) error {
		if schemas[table] == nil {
			if _, err := fmt.Fprintf(out, "Table %s has no schema; showing system fields.\n\n", table); err != nil {
				return err
			}
		}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			optional := ""
			if r.Optional {
				optional = "optional"
			}
			rows = append(rows, []string{r.Name, r.Type, optional, r.LinkTable})
		}
		return text.Table(out, []string{"COLUMN", "TYPE", "OPTIONAL", "REFERENCES"}, rows, "")
	})
}

// columnRecords lists the columns in display order: _id, the schema fields,
// then _creationTime.
func columnRecords(s *schema.TableSchema) []columnRecord {
	meta := schema.BuildColumnMeta(s)
	order := schema.Columns(s)
	records := make([]columnRecord, 0, len(order))
	for _, name := range order {
		m := meta[name]
		records = append(records, columnRecord{Name: name, Type: m.TypeLabel, Optional: m.Optional, LinkTable: m.LinkTable})
	}
	return records
}
