package log

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToFileAndMirrorsErrors(t *testing.T) {
	t.Cleanup(EnableErrorMirroring)
	EnableErrorMirroring()

	path := filepath.Join(t.TempDir(), "logs", "panelctl.log")
	var console bytes.Buffer

	logger, closer, err := New(Options{Level: "trace", File: path, Console: &console})
	require.NoError(t, err)

	logger.Log(context.Background(), LevelTrace, "request sent")
	logger.Error("request failed")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"level":"TRACE"`)
	require.Contains(t, string(data), `"msg":"request failed"`)
	require.Equal(t, "Error: request failed\n", console.String())
}

func TestConfigLevelStringToSlogLevel(t *testing.T) {
	require.Equal(t, LevelTrace, ConfigLevelStringToSlogLevel("TRACE"))
	require.Equal(t, ConfigLevelStringToSlogLevel("error"), ConfigLevelStringToSlogLevel("bogus"))
}

func TestFromContextNeverReturnsNil(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	require.False(t, logger.Enabled(context.Background(), LevelTrace))

	require.NotNil(t, FromContext(WithLogger(context.Background(), nil)))
}
