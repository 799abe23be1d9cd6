package links

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleID = "k57abcdefghij0123456789xyz"

func TestDocumentURL(t *testing.T) {
	tests := []struct {
		name       string
		deployment string
		table      string
		id         string
		component  string
		want       string
		ok         bool
	}{
		{
			name:       "basic",
			deployment: "https://happy-otter-123.convex.cloud",
			table:      "users",
			id:         sampleID,
			want:       "https://dashboard.convex.dev/happy-otter-123/data/users?id=" + sampleID,
			ok:         true,
		},
		{
			name:       "trailing slash and component",
			deployment: "https://happy-otter-123.convex.cloud/",
			table:      "messages",
			id:         sampleID,
			component:  "cmp1",
			want:       "https://dashboard.convex.dev/happy-otter-123/data/messages?id=" + sampleID + "&componentId=cmp1",
			ok:         true,
		},
		{name: "self hosted", deployment: "http://127.0.0.1:3210", table: "users", id: sampleID},
		{name: "other domain", deployment: "https://happy-otter-123.convex.site", table: "users", id: sampleID},
		{name: "plain http", deployment: "http://happy-otter-123.convex.cloud", table: "users", id: sampleID},
		{name: "short id", deployment: "https://happy-otter-123.convex.cloud", table: "users", id: "k123"},
		{name: "uppercase id", deployment: "https://happy-otter-123.convex.cloud", table: "users", id: "K57ABCDEFGHIJ0123456789XYZ"},
		{name: "wrong prefix", deployment: "https://happy-otter-123.convex.cloud", table: "users", id: "j57abcdefghij0123456789xyz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DocumentURL(tt.deployment, tt.table, tt.id, tt.component)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestOpenDelegatesToOpener(t *testing.T) {
	original := opener
	t.Cleanup(func() { opener = original })

	var opened string
	opener = func(target string) error {
		opened = target
		return nil
	}

	require.NoError(t, Open("https://dashboard.convex.dev/x/data/users"))
	require.Equal(t, "https://dashboard.convex.dev/x/data/users", opened)

	opener = func(string) error { return errors.New("no browser") }
	require.EqualError(t, Open("https://dashboard.convex.dev"), "no browser")
	require.Error(t, Open("not a url"))
}
