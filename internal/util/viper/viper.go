package viper

import (
	"strings"

	"github.com/convex-panel/panelctl/internal/meta"
	"github.com/convex-panel/panelctl/internal/util"
	v "github.com/spf13/viper"
)

// InitializeDefaultViper loads path, writing defaultValues to it first when
// the file is missing or empty.
func InitializeDefaultViper(defaultValues map[string]any, path string) (*v.Viper, error) {
	if err := util.InitDir(path, 0o755); err != nil {
		return nil, err
	}

	rv := NewViper(path)
	if len(rv.AllSettings()) > 0 {
		return rv, nil
	}

	if err := rv.MergeConfigMap(defaultValues); err != nil {
		return nil, err
	}
	if err := rv.WriteConfig(); err != nil {
		return nil, err
	}
	return rv, nil
}

// NewViperE loads path strictly, failing when it cannot be read.
func NewViperE(path string) (*v.Viper, error) {
	rv := newViper(path)
	if err := rv.ReadInConfig(); err != nil {
		return nil, err
	}
	return rv, nil
}

// NewViper loads path if it exists and otherwise returns an env-only viper.
func NewViper(path string) *v.Viper {
	rv := newViper(path)
	_ = rv.ReadInConfig()
	return rv
}

// ConfigureEnvVars makes vip resolve keys from environment variables named
// <prefix>_<KEY>, with dots and dashes in keys mapped to underscores.
func ConfigureEnvVars(vip *v.Viper, prefix string) {
	vip.SetEnvPrefix(prefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vip.AutomaticEnv()
}

func newViper(path string) *v.Viper {
	rv := v.New()
	rv.SetConfigFile(path)
	ConfigureEnvVars(rv, meta.CLIName)
	return rv
}
