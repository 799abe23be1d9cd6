package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT(t *testing.T) {
	assert.Equal(t, "Delete documents", T("test.unset", "Delete documents"))

	Override("test.set", "Supprimer des documents")
	t.Cleanup(func() { overrides.Delete("test.set") })
	assert.Equal(t, "Supprimer des documents", T("test.set", "Delete documents"))
}
