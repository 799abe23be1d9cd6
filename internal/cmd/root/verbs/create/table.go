package create

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/admin"
	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/output"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/util/normalizers"
)

type tableResult struct {
	Name        string `json:"name"                  yaml:"name"`
	ComponentID string `json:"componentId,omitempty" yaml:"componentId,omitempty"`
	Created     bool   `json:"created"               yaml:"created"`
}

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table <name>",
		Short: "Create an empty table",
		Long: normalizers.LongDesc(`Create an empty table. The name must start with a letter,
contain only letters, digits and underscores, and not already exist.`),
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runCreateTable(cmdpkg.BuildHelper(c, args))
		},
	}
}

func runCreateTable(helper cmdpkg.Helper) error {
	name := helper.GetArgs()[0]
	if err := schema.ValidateTableName(name); err != nil {
		return &cmdpkg.ConfigurationError{Err: err}
	}

	b, cfg, err := cmdpkg.OpenBackend(helper)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := helper.GetContext()
	componentID := cmdpkg.ComponentID(cfg)
	tables, err := admin.ListTables(ctx, b.Client, componentID)
	if err != nil {
		return cmdpkg.PrepareExecutionError("failed to list tables", err, helper.GetCmd())
	}
	if err := schema.CheckCollision(name, tables); err != nil {
		return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
	}

	if err := admin.CreateTable(ctx, b.Client, b.Fallback, name, componentID); err != nil {
		return cmdpkg.PrepareExecutionError(
			fmt.Sprintf("failed to create table %s: %s", name, panelerr.Message(err)), err, helper.GetCmd())
	}

	logger, _ := helper.GetLogger()
	logger.Info("table created", "table", name, "component_id", componentID)

	result := tableResult{Name: name, ComponentID: componentID, Created: true}
	return output.Print(helper, result, func(out io.Writer) error {
		_, err := fmt.Fprintf(out, "Table %s created.\n", name)
		return err
	})
}
