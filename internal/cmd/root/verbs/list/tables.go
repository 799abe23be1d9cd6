package list

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/admin"
	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/common"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	jqoutput "github.com/convex-panel/panelctl/internal/cmd/output/jq"
	"github.com/convex-panel/panelctl/internal/cmd/output/text"
	"github.com/convex-panel/panelctl/internal/panel/recent"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

const recentFlagName = "recent"

type tableRecord struct {
	Name        string `json:"name"                  yaml:"name"`
	ComponentID string `json:"componentId,omitempty" yaml:"componentId,omitempty"`
	Documents   int64  `json:"documents"             yaml:"documents"`
	Recent      bool   `json:"recent"                yaml:"recent"`
}

func newTablesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "tables",
		Aliases: []string{"table", "t"},
		Short:   "List the tables of a deployment",
		Long: normalizers.LongDesc(`List the tables of the selected component, sorted by
name. Tables browsed recently are marked; --recent lists only those, most
recent first.`),
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runListTables(cmdpkg.BuildHelper(c, args))
		},
	}
	c.Flags().Bool(recentFlagName, false, "Only list recently browsed tables that still exist.")
	jqoutput.AddFlags(c.Flags())
	return c
}

func runListTables(helper cmdpkg.Helper) error {
	b, cfg, err := cmdpkg.OpenBackend(helper)
	if err != nil {
		return err
	}
	defer b.Close()

	componentID := cmdpkg.ComponentID(cfg)
	tables, err := admin.ListTables(helper.GetContext(), b.Client, componentID)
	if err != nil {
		return cmdpkg.PrepareExecutionError("failed to list tables", err, helper.GetCmd())
	}

	store, err := recent.Load(cfg.GetString(common.RecentFileConfigPath))
	if err != nil {
		return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
	}
	exists := func(name string) bool { _, ok := tables[name]; return ok }
	recentNames := recent.Filter(store.Names(componentID), exists, recent.MaxStored)

	onlyRecent, _ := helper.GetCmd().Flags().GetBool(recentFlagName)
	records := buildTableRecords(tables, recentNames, componentID, onlyRecent)

	return output.Print(helper, records, func(out io.Writer) error {
		return renderTablesText(out, records, onlyRecent)
	})
}

func buildTableRecords(tables schema.Tables, recentNames []string, componentID string, onlyRecent bool) []tableRecord {
	isRecent := make(map[string]bool, len(recentNames))
	for _, n := range recentNames {
		isRecent[n] = true
	}
	names := admin.SortedTableNames(tables)
	if onlyRecent {
		names = recentNames
	}
	records := make([]tableRecord, 0, len(names))
	for _, name := range names {
		records = append(records, tableRecord{
			Name:        name,
			ComponentID: componentID,
			Documents:   tables[name].DocumentCount,
			Recent:      isRecent[name],
		})
	}
	return records
}

func renderTablesText(out io.Writer, records []tableRecord, onlyRecent bool) error {
	empty := "No tables yet. Create one with: create table <name>"
	if onlyRecent {
		empty = "No recently browsed tables."
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		name := r.Name
		if r.Recent && !onlyRecent {
			name = "*" + name
		}
		rows = append(rows, []string{name, strconv.FormatInt(r.Documents, 10)})
	}
	if err := text.Table(out, []string{"NAME", "DOCUMENTS"}, rows, empty); err != nil {
		return err
	}
	if len(records) > 0 && !onlyRecent {
		_, err := fmt.Fprintln(out, "\n* recently browsed")
		return err
	}
	return nil
}
