package common

import (
	"fmt"
	"strings"
)

// Represents an enum of valid values for the format of the output for this CLI execution
type OutputFormat int

type ColorMode int

const (
	JSON OutputFormat = iota
	YAML
	TEXT
)

const (
	ColorModeAuto ColorMode = iota
	ColorModeAlways
	ColorModeNever
)

const (
	// related to the --output flag
	DefaultOutputFormat = "text"
	OutputFlagName      = "output"
	OutputFlagShort     = "o"
	OutputConfigPath    = OutputFlagName

	// related to the --profile flag
	ProfileFlagName  = "profile"
	ProfileFlagShort = "p"

	// related to the --config-file flag
	ConfigFilePathFlagName = "config-file"

	// related to the --log-level flag
	LogLevelFlagName   = "log-level"
	DefaultLogLevel    = "info"
	LogLevelConfigPath = LogLevelFlagName

	// related to the --log-file flag
	LogFileFlagName   = "log-file"
	LogFileConfigPath = LogFileFlagName

	// related to the --color-theme flag
	ColorThemeFlagName   = "color-theme"
	ColorThemeConfigPath = ColorThemeFlagName
	DefaultColorTheme    = "panel-dark"

	// admin backend selection
	DeploymentURLFlagName       = "deployment-url"
	DeploymentURLConfigPath     = "deployment.url"
	AdminKeyFlagName            = "admin-key"
	AdminKeyConfigPath          = "deployment.admin-key"
	ComponentFlagName           = "component"
	ComponentConfigPath         = "deployment.component"
	ComponentsConfigPath        = "deployment.components"
	BackendDriverFlagName       = "backend"
	BackendDriverConfigPath     = "backend.driver"
	DefaultBackendDriver        = "convex"
	BackendDSNFlagName          = "dsn"
	BackendDSNConfigPath        = "backend.dsn"
	PageSizeConfigPath          = "browse.page-size"
	DefaultPageSize             = 50
	HoverDwellConfigPath        = "browse.hover-dwell"
	DefaultHoverDwell           = "500ms"
	RecentFileConfigPath        = "browse.recent-file"
	PlatformConfigPath          = "browse.platform"
	DefaultPlatform             = "auto"
	RecentTablesShownConfigPath = "browse.recent-shown"
)

// BackendDrivers lists the accepted values for backend.driver.
var BackendDrivers = []string{"convex", "sqlite", "postgres", "mysql", "mongodb"}

func (of OutputFormat) String() string {
	return [...]string{"json", "yaml", "text"}[of]
}

func OutputFormatStringToIota(format string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return JSON, nil
	case "yaml":
		return YAML, nil
	case "text", "":
		return TEXT, nil
	default:
		return TEXT, fmt.Errorf("invalid output format %q, must be one of %v", format, []string{"json", "yaml", "text"})
	}
}

func (cm ColorMode) String() string {
	switch cm {
	case ColorModeAlways:
		return "always"
	case ColorModeNever:
		return "never"
	default:
		return "auto"
	}
}

func ColorModeStringToIota(mode string) (ColorMode, error) {
	switch mode {
	case "auto", "":
		return ColorModeAuto, nil
	case "always":
		return ColorModeAlways, nil
	case "never":
		return ColorModeNever, nil
	default:
		return ColorModeAuto, fmt.Errorf("invalid color mode %q, must be one of %v", mode,
			[]string{"auto", "always", "never"})
	}
}
