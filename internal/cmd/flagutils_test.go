package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagEnum(t *testing.T) {
	e := NewEnum([]string{"auto", "mac", "other"}, "auto")
	assert.Equal(t, "auto", e.String())
	assert.Equal(t, "auto|mac|other", e.Choices())

	require.NoError(t, e.Set(" MAC "))
	assert.Equal(t, "mac", e.String())

	err := e.Set("amiga")
	assert.EqualError(t, err, `invalid value "amiga", must be one of auto|mac|other`)
	assert.Equal(t, "mac", e.String())
}
