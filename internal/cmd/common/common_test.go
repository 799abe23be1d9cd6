package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutputFormatRoundTrip(t *testing.T) {
	for _, name := range []string{"json", "yaml", "text"} {
		of, err := OutputFormatStringToIota(name)
		require.NoError(t, err)
		require.Equal(t, name, of.String())
	}

	of, err := OutputFormatStringToIota("")
	require.NoError(t, err)
	require.Equal(t, TEXT, of)

	_, err = OutputFormatStringToIota("table")
	require.Error(t, err)
}

func TestColorModeStringToIota(t *testing.T) {
	mode, err := ColorModeStringToIota("never")
	require.NoError(t, err)
	require.Equal(t, ColorModeNever, mode)
	require.Equal(t, "never", mode.String())

	_, err = ColorModeStringToIota("sometimes")
	require.Error(t, err)
}
