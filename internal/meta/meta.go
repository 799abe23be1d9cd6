package meta

const (
	// CLIName is the binary name and the prefix for config dirs and env vars.
	CLIName = "panelctl"
	// DefaultProfile is used when neither --profile nor PANELCTL_PROFILE is set.
	DefaultProfile = "default"
)
