package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/convex-panel/panelctl/internal/admin/backends"
	"github.com/convex-panel/panelctl/internal/build"
	"github.com/convex-panel/panelctl/internal/cmd/common"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs"
	"github.com/convex-panel/panelctl/internal/config"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/iostreams"
	"github.com/convex-panel/panelctl/internal/log"
	"github.com/spf13/cobra"
)

type Common interface {
	bindFlags(cmd *cobra.Command, args []string) error
	validate(helper Helper) error
	run(helper Helper) error
}

type Helper interface {
	GetCmd() *cobra.Command
	GetArgs() []string
	GetVerb() (verbs.VerbValue, error)
	GetStreams() *iostreams.IOStreams
	GetConfig() (config.Hook, error)
	GetOutputFormat() (common.OutputFormat, error)
	IsInteractive() (bool, error)
	GetLogger() (*slog.Logger, error)
	GetBuildInfo() (*build.Info, error)
	GetContext() context.Context
	GetBackend(cfg config.Hook, logger *slog.Logger) (*backends.Backend, error)
}

type CommandHelper struct {
	// Cmd is a pointer to the command that is being executed
	Cmd *cobra.Command
	// Args are the arguments (not flags) passed to the command
	Args []string
}

func (r *CommandHelper) GetCmd() *cobra.Command {
	return r.Cmd
}

func (r *CommandHelper) GetArgs() []string {
	return r.Args
}

func (r *CommandHelper) GetBuildInfo() (*build.Info, error) {
	val := r.Cmd.Context().Value(build.InfoKey)
	if val == nil {
		return nil, &ConfigurationError{
			Err: fmt.Errorf("no build info configured"),
		}
	}

	info, ok := val.(*build.Info)
	if !ok || info == nil {
		return nil, &ConfigurationError{
			Err: fmt.Errorf("invalid build info configured"),
		}
	}

	return info, nil
}

func (r *CommandHelper) GetLogger() (*slog.Logger, error) {
	rv, _ := r.Cmd.Context().Value(log.LoggerKey).(*slog.Logger)
	if rv == nil {
		return nil, &ConfigurationError{
			Err: fmt.Errorf("no logger configured"),
		}
	}
	return rv, nil
}

func (r *CommandHelper) GetVerb() (verbs.VerbValue, error) {
	verbVal := r.Cmd.Context().Value(verbs.Verb)
	if verbVal == nil {
		return "", PrepareExecutionErrorMsg(r, "no verb found in context")
	}
	return verbVal.(verbs.VerbValue), nil
}

func (r *CommandHelper) GetStreams() *iostreams.IOStreams {
	streams, _ := r.Cmd.Context().Value(iostreams.StreamsKey).(*iostreams.IOStreams)
	return streams
}

func (r *CommandHelper) GetConfig() (config.Hook, error) {
	cfgVal := r.Cmd.Context().Value(config.ConfigKey)
	if cfgVal == nil {
		return nil, PrepareExecutionErrorMsg(r, "no config found in context")
	}
	return cfgVal.(config.Hook), nil
}

func (r *CommandHelper) GetOutputFormat() (common.OutputFormat, error) {
	c, e := r.GetConfig()
	if e != nil {
		return common.TEXT, e
	}
	s := c.GetString(common.OutputConfigPath)
	rv, e := common.OutputFormatStringToIota(s)
	if e != nil {
		return common.TEXT, e
	}
	return rv, nil
}

// IsInteractive reports whether the command runs attached to a terminal.
func (r *CommandHelper) IsInteractive() (bool, error) {
	streams := r.GetStreams()
	return streams != nil && streams.IsInteractive(), nil
}

func (r *CommandHelper) GetContext() context.Context {
	return r.Cmd.Context()
}

// GetBackend opens the admin backend selected by configuration. The caller
// closes it.
func (r *CommandHelper) GetBackend(cfg config.Hook, logger *slog.Logger) (*backends.Backend, error) {
	factory, ok := r.Cmd.Context().Value(backends.FactoryKey).(backends.Factory)
	if !ok || factory == nil {
		factory = backends.Open
	}
	b, err := factory(r.Cmd.Context(), BackendConfig(cfg, logger))
	if err != nil {
		return nil, PrepareExecutionErrorFromErr(r, err)
	}
	return b, nil
}

// BackendConfig reads the backend settings of the active profile.
func BackendConfig(cfg config.Hook, logger *slog.Logger) backends.Config {
	return backends.Config{
		Driver:        cfg.GetString(common.BackendDriverConfigPath),
		DeploymentURL: cfg.GetString(common.DeploymentURLConfigPath),
		AdminKey:      cfg.GetString(common.AdminKeyConfigPath),
		DSN:           cfg.GetString(common.BackendDSNConfigPath),
		Logger:        logger,
	}
}

// OpenBackend opens the backend of the active profile along with the config
// it was read from.
func OpenBackend(helper Helper) (*backends.Backend, config.Hook, error) {
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return nil, nil, err
	}
	b, err := helper.GetBackend(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return b, cfg, nil
}

// ComponentID is the component commands operate on, empty for the app root.
func ComponentID(cfg config.Hook) string {
	return strings.TrimSpace(cfg.GetString(common.ComponentConfigPath))
}

func BuildHelper(cmd *cobra.Command, args []string) Helper {
	return &CommandHelper{
		Cmd:  cmd,
		Args: args,
	}
}

// ConfigurationError represents errors that are a result of bad flags, combinations of
// flags, configuration settings, environment values, or other command usage issues.
type ConfigurationError struct {
	Err error
}

// ExecutionError represents errors that occur after a command has been validated and an
// unsuccessful result occurs. Network errors, server side errors, invalid credentials or responses
// are examples of ExecutionError types.
type ExecutionError struct {
	// friendly error message to display to the user
	Msg string
	// Err is the error that occurred during execution
	Err error
	// Optional attributes that can be used to provide additional context to the error
	Attrs []any
}

func (e *ConfigurationError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// PrepareExecutionErrorWithHelper mirrors PrepareExecutionError but accepts a Helper.
// It ensures command usage/error output is silenced for runtime failures.
func PrepareExecutionErrorWithHelper(helper Helper, msg string, err error, attrs ...any) *ExecutionError {
	if helper == nil {
		return PrepareExecutionError(msg, err, nil, attrs...)
	}
	return PrepareExecutionError(msg, err, helper.GetCmd(), attrs...)
}

// PrepareExecutionErrorFromErr converts an arbitrary error into an ExecutionError while
// silencing usage/error output on the associated command. The friendly message defaults
// to the underlying error string when msg is empty.
func PrepareExecutionErrorFromErr(helper Helper, err error, attrs ...any) *ExecutionError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return PrepareExecutionErrorWithHelper(helper, msg, err, attrs...)
}

// PrepareExecutionErrorMsg builds an ExecutionError from a message when a backing error
// is not already available.
func PrepareExecutionErrorMsg(helper Helper, msg string, attrs ...any) *ExecutionError {
	if msg == "" {
		return PrepareExecutionErrorWithHelper(helper, msg, errors.New("an unknown error occurred"), attrs...)
	}
	return PrepareExecutionErrorWithHelper(helper, msg, errors.New(msg), attrs...)
}

// This will construct an execution error AND turn off error and usage output for the command
func PrepareExecutionError(msg string, err error, cmd *cobra.Command, attrs ...any) *ExecutionError {
	if cmd != nil {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
	}
	if err != nil {
		attrs = append(attrs, panelerr.TryConvertErrorToAttrs(err)...)
	}

	return &ExecutionError{
		Msg:   msg,
		Err:   err,
		Attrs: attrs,
	}
}
