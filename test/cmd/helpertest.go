package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/convex-panel/panelctl/internal/admin"
	"github.com/convex-panel/panelctl/internal/admin/backends"
	"github.com/convex-panel/panelctl/internal/build"
	"github.com/convex-panel/panelctl/internal/cmd/common"
	"github.com/convex-panel/panelctl/internal/cmd/root/verbs"
	"github.com/convex-panel/panelctl/internal/config"
	"github.com/convex-panel/panelctl/internal/iostreams"
	"github.com/convex-panel/panelctl/internal/log"
	"github.com/convex-panel/panelctl/internal/profile"
)

type MockHelper struct {
	GetCmdMock          func() *cobra.Command
	GetArgsMock         func() []string
	GetVerbMock         func() (verbs.VerbValue, error)
	GetStreamsMock      func() *iostreams.IOStreams
	GetConfigMock       func() (config.Hook, error)
	GetOutputFormatMock func() (common.OutputFormat, error)
	IsInteractiveMock   func() (bool, error)
	GetLoggerMock       func() (*slog.Logger, error)
	GetBuildInfoMock    func() (*build.Info, error)
	GetContextMock      func() context.Context
	GetBackendMock      func(cfg config.Hook, logger *slog.Logger) (*backends.Backend, error)
}

func (m *MockHelper) GetCmd() *cobra.Command {
	return m.GetCmdMock()
}

func (m *MockHelper) GetArgs() []string {
	if m.GetArgsMock == nil {
		return nil
	}
	return m.GetArgsMock()
}

func (m *MockHelper) GetVerb() (verbs.VerbValue, error) {
	return m.GetVerbMock()
}

func (m *MockHelper) GetStreams() *iostreams.IOStreams {
	return m.GetStreamsMock()
}

func (m *MockHelper) GetConfig() (config.Hook, error) {
	return m.GetConfigMock()
}

func (m *MockHelper) GetOutputFormat() (common.OutputFormat, error) {
	if m.GetOutputFormatMock == nil {
		return common.TEXT, nil
	}
	return m.GetOutputFormatMock()
}

func (m *MockHelper) IsInteractive() (bool, error) {
	if m.IsInteractiveMock == nil {
		return false, nil
	}
	return m.IsInteractiveMock()
}

func (m *MockHelper) GetLogger() (*slog.Logger, error) {
	if m.GetLoggerMock == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}
	return m.GetLoggerMock()
}

func (m *MockHelper) GetBuildInfo() (*build.Info, error) {
	return m.GetBuildInfoMock()
}

func (m *MockHelper) GetContext() context.Context {
	if m.GetContextMock == nil {
		return context.Background()
	}
	return m.GetContextMock()
}

func (m *MockHelper) GetBackend(cfg config.Hook, logger *slog.Logger) (*backends.Backend, error) {
	return m.GetBackendMock(cfg, logger)
}

// Env is the context a command sees when run from the root command.
type Env struct {
	Config  config.Hook
	Streams *iostreams.IOStreams
	Out     *bytes.Buffer
	ErrOut  *bytes.Buffer
	In      *bytes.Buffer
	Client  admin.Client
	Driver  string
	URL     string

	// Profiles is stored under profile.ProfileManagerKey when set.
	Profiles profile.Manager
}

// NewEnv returns an Env writing to buffers and serving client.
func NewEnv(cfg config.Hook, client admin.Client) *Env {
	streams, in, out, errOut := iostreams.NewTestIOStreams()
	return &Env{
		Config:  cfg,
		Streams: &streams,
		Out:     out,
		ErrOut:  errOut,
		In:      in,
		Client:  client,
		Driver:  backends.DriverConvex,
	}
}

// Context carries everything the root command's pre-run would store.
func (e *Env) Context() context.Context {
	ctx := context.WithValue(context.Background(), config.ConfigKey, e.Config)
	ctx = context.WithValue(ctx, iostreams.StreamsKey, e.Streams)
	ctx = context.WithValue(ctx, build.InfoKey, &build.Info{Version: "1.2.3", Commit: "abc123"})
	ctx = log.WithLogger(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)))
	factory := backends.Factory(func(context.Context, backends.Config) (*backends.Backend, error) {
		return backends.FromClient(e.Driver, e.Client, e.URL), nil
	})
	if e.Profiles != nil {
		ctx = context.WithValue(ctx, profile.ProfileManagerKey, e.Profiles)
	}
	return context.WithValue(ctx, backends.FactoryKey, factory)
}

// Execute runs c with args under the Env context.
func (e *Env) Execute(c *cobra.Command, args ...string) error {
	c.SetArgs(args)
	c.SetOut(e.Out)
	c.SetErr(e.ErrOut)
	c.SilenceUsage = true
	return c.ExecuteContext(e.Context())
}
