package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/cmd/common"
)

type backendFlag struct {
	name, configPath, usage string
}

var backendFlags = []backendFlag{
	{common.DeploymentURLFlagName, common.DeploymentURLConfigPath, "Deployment URL, for example https://happy-otter-123.convex.cloud."},
	{common.AdminKeyFlagName, common.AdminKeyConfigPath, "Admin key of the deployment."},
	{common.ComponentFlagName, common.ComponentConfigPath, "Component to operate on. Empty selects the app."},
	{common.BackendDriverFlagName, common.BackendDriverConfigPath,
		fmt.Sprintf("Admin backend driver, one of %s.", strings.Join(common.BackendDrivers, "|"))},
	{common.BackendDSNFlagName, common.BackendDSNConfigPath, "Data source name for sql and mongodb backends."},
}

// AddBackendFlags registers the deployment selection flags on c and its
// children.
func AddBackendFlags(c *cobra.Command) {
	for _, f := range backendFlags {
		c.PersistentFlags().String(f.name, "", fmt.Sprintf("%s\n- Config path: [ %s ]", f.usage, f.configPath))
	}
}

// BindBackendFlags lets the deployment flags override configuration.
func BindBackendFlags(c *cobra.Command, args []string) error {
	cfg, err := BuildHelper(c, args).GetConfig()
	if err != nil {
		return err
	}
	for _, f := range backendFlags {
		flag := c.Flags().Lookup(f.name)
		if flag == nil {
			continue
		}
		if err := cfg.BindFlag(f.configPath, flag); err != nil {
			return err
		}
	}
	return nil
}
