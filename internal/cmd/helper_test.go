package cmd

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	panelerr "github.com/convex-panel/panelctl/internal/err"
)

func TestPrepareExecutionErrorSilencesCommand(t *testing.T) {
	c := &cobra.Command{Use: "get"}
	e := PrepareExecutionError("failed to load users", errors.New("boom"), c, "table", "users")
	assert.True(t, c.SilenceUsage)
	assert.True(t, c.SilenceErrors)
	assert.Equal(t, "failed to load users", e.Msg)
	assert.Equal(t, []any{"table", "users"}, e.Attrs)
	assert.EqualError(t, e, "boom")
}

func TestPrepareExecutionErrorCarriesBackendPayload(t *testing.T) {
	backend := &panelerr.DataError{Msg: "Server Error", Data: map[string]any{"code": "Unauthorized"}}
	e := PrepareExecutionError("failed to list tables", backend, nil, "component", "chat")
	require.Equal(t, []any{"component", "chat", "code", "Unauthorized"}, e.Attrs)
	assert.ErrorIs(t, e, backend)
}
