package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLongDesc(t *testing.T) {
	in := "\n  Open the data browser.  \nPress q to quit.\t\n\n"
	assert.Equal(t, "Open the data browser.\nPress q to quit.", LongDesc(in))
}

func TestExamples(t *testing.T) {
	in := `
		# Print the link
		panelctl link messages k1

		# Open it
		panelctl link messages k1 \
		    --open
		`
	want := "  # Print the link\n" +
		"  panelctl link messages k1\n" +
		"\n" +
		"  # Open it\n" +
		"  panelctl link messages k1 \\\n" +
		"      --open"
	assert.Equal(t, want, Examples(in))
}

func TestExamplesEmpty(t *testing.T) {
	assert.Empty(t, Examples(""))
	assert.Empty(t, Examples("\n\t\t\n"))
}
