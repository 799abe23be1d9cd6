package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/convex-panel/panelctl/internal/cmd/common"
	"github.com/convex-panel/panelctl/internal/meta"
	"github.com/convex-panel/panelctl/internal/util/viper"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var defaultConfigFileName = "config.yaml"

// GetDefaultConfigPath returns $XDG_CONFIG_HOME/panelctl, or
// ~/.config/panelctl when XDG_CONFIG_HOME is unset.
func GetDefaultConfigPath() (string, error) {
	val, set := os.LookupEnv("XDG_CONFIG_HOME")
	if !set || val == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		val = filepath.Join(home, ".config")
	}
	return os.ExpandEnv(filepath.Join(val, meta.CLIName)), nil
}

func GetDefaultConfigFilePath() (string, error) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(path, defaultConfigFileName), nil
}

// ExpandDefaultConfigFilePath is GetDefaultConfigFilePath for flag defaults,
// returning "" when no home directory can be determined.
func ExpandDefaultConfigFilePath() string {
	path, err := GetDefaultConfigFilePath()
	if err != nil {
		return ""
	}
	return path
}

// GetConfig loads the configuration at path for profile. A missing file is
// only created when path is the default location; a user supplied path must
// exist.
func GetConfig(path string, profile string, defaultConfigFilePath string) (*ProfiledConfig, error) {
	path = os.ExpandEnv(path)

	if _, statErr := os.Stat(path); statErr == nil {
		vip, err := viper.NewViperE(path)
		if err != nil {
			return nil, err
		}
		return BuildProfiledConfig(profile, path, vip), nil
	}

	if path != defaultConfigFilePath {
		return nil, fmt.Errorf("the provided config file path does not exist: %s", path)
	}

	vip, err := viper.InitializeDefaultViper(getDefaultConfig(profile, path), path)
	if err != nil {
		return nil, err
	}
	return BuildProfiledConfig(profile, path, vip), nil
}

// Empty type to represent the _type_ Config. Genesis is to support a key in a Context
type Key struct{}

// Config is a global instance of the Key type
var ConfigKey = Key{}

// Hook provides a generalization of the Viper interface with control over
// how configuration is persisted.
type Hook interface {
	Save() error
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetIntOrElse(key string, orElse int) int
	GetStringSlice(key string) []string
	SetString(key string, value string)
	Set(k string, v any)
	Get(key string) any
	// BindFlag binds a configuration path to a flag so the flag wins when set.
	BindFlag(configPath string, f *pflag.Flag) error
	GetProfile() string
	GetPath() string
}

// ProfiledConfig is a Viper scoped to the sub-tree of one profile.
type ProfiledConfig struct {
	*v.Viper
	subViper    *v.Viper
	ProfileName string
	Path        string
}

func (p *ProfiledConfig) GetProfile() string {
	return p.ProfileName
}

func (p *ProfiledConfig) Save() error {
	return p.WriteConfig()
}

func (p *ProfiledConfig) GetString(key string) string {
	return p.subViper.GetString(key)
}

func (p *ProfiledConfig) GetBool(key string) bool {
	return p.subViper.GetBool(key)
}

func (p *ProfiledConfig) GetInt(key string) int {
	return p.subViper.GetInt(key)
}

func (p *ProfiledConfig) GetIntOrElse(key string, orElse int) int {
	if p.subViper.IsSet(key) {
		return p.subViper.GetInt(key)
	}
	return orElse
}

func (p *ProfiledConfig) GetStringSlice(key string) []string {
	return p.subViper.GetStringSlice(key)
}

func (p *ProfiledConfig) Get(key string) any {
	return p.subViper.Get(key)
}

func (p *ProfiledConfig) BindFlag(configPath string, f *pflag.Flag) error {
	return p.subViper.BindPFlag(configPath, f)
}

func (p *ProfiledConfig) SetString(k string, v string) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) Set(k string, v any) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) GetPath() string {
	return p.Path
}

// BuildProfiledConfig scopes mainv to profile. When the file has no section
// for the profile, values still resolve from PANELCTL_<PROFILE>_<KEY>.
func BuildProfiledConfig(profile string, path string, mainv *v.Viper) *ProfiledConfig {
	subv := mainv.Sub(profile)
	if subv == nil {
		subv = v.New()
		envPrefix := strings.ToUpper(meta.CLIName + "_" + strings.ReplaceAll(profile, "-", "_"))
		viper.ConfigureEnvVars(subv, envPrefix)
	}

	return &ProfiledConfig{
		Viper:       mainv,
		ProfileName: profile,
		subViper:    subv,
		Path:        path,
	}
}

func getDefaultConfig(profileName, configFilePath string) map[string]any {
	configDir := filepath.Dir(configFilePath)

	return map[string]any{
		profileName: map[string]any{
			common.OutputConfigPath:     common.DefaultOutputFormat,
			common.LogLevelConfigPath:   common.DefaultLogLevel,
			common.LogFileConfigPath:    filepath.Join(configDir, "logs", meta.CLIName+".log"),
			common.ColorThemeConfigPath: common.DefaultColorTheme,
			"deployment": map[string]any{
				"url":       "",
				"admin-key": "",
			},
			"backend": map[string]any{
				"driver": common.DefaultBackendDriver,
				"dsn":    "",
			},
			"browse": map[string]any{
				"page-size":   common.DefaultPageSize,
				"hover-dwell": common.DefaultHoverDwell,
				"recent-file": filepath.Join(configDir, "recent.yaml"),
				"platform":    common.DefaultPlatform,
			},
		},
	}
}
