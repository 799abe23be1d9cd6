package convex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	path string
	auth string
	id   string
	body map[string]any
}

func newServer(t *testing.T, status int, response string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.id = r.Header.Get(requestIDHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got.body))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestQuerySendsPathArgsAndAdminKey(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"status":"success","value":{"users":1}}`, &got)

	c, err := New(Options{DeploymentURL: srv.URL + "/", AdminKey: "secret"})
	require.NoError(t, err)
	v, err := c.Query(context.Background(), "_system/frontend/tableMapping", nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"users": float64(1)}, v)
	assert.Equal(t, "/api/query", got.path)
	assert.Equal(t, "Convex secret", got.auth)
	assert.NotEmpty(t, got.id)
	assert.Equal(t, "_system/frontend/tableMapping", got.body["path"])
	assert.Equal(t, map[string]any{}, got.body["args"])
	assert.Equal(t, "json", got.body["format"])
}

func TestMutationErrorBecomesDataError(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusBadRequest,
		`{"status":"error","errorMessage":"Table exists","errorData":{"message":"Table notes already exists"}}`, &got)

	c, err := New(Options{DeploymentURL: srv.URL, AdminKey: "k"})
	require.NoError(t, err)
	_, err = c.Mutation(context.Background(), "_system/frontend/createTable", map[string]any{"table": "notes"})
	require.Error(t, err)

	var dataErr *panelerr.DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, "Table exists", dataErr.Error())
	assert.Equal(t, "Table notes already exists", panelerr.Message(err))
	assert.Equal(t, "/api/mutation", got.path)
}

func TestRawMutationUsesRunEndpoint(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"status":"success","value":null}`, &got)

	c, err := New(Options{DeploymentURL: srv.URL, AdminKey: "k"})
	require.NoError(t, err)
	v, err := c.RawMutation(context.Background(), "_system/frontend/createTable", map[string]any{"table": "notes"})
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, "/api/run/_system/frontend/createTable", got.path)
	assert.Equal(t, map[string]any{"table": "notes"}, got.body["args"])
}

func TestNonJSONFailure(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusBadGateway, `upstream down`, &got)

	c, err := New(Options{DeploymentURL: srv.URL, AdminKey: "k"})
	require.NoError(t, err)
	_, err = c.Query(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{DeploymentURL: "not a url", AdminKey: "k"})
	require.Error(t, err)
	_, err = New(Options{DeploymentURL: "https://happy-otter-123.convex.cloud"})
	require.Error(t, err)
}

func TestLoggingRedactsAdminKey(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"status":"success","value":1}`, &got)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: log.LevelTrace}))
	c, err := New(Options{DeploymentURL: srv.URL, AdminKey: "very-secret", Logger: logger})
	require.NoError(t, err)

	ctx := log.WithRequestLogContext(context.Background(), log.RequestLogContext{Table: "users"})
	_, err = c.Query(ctx, "_system/frontend/getSchemas", nil)
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "very-secret")
	assert.Contains(t, out, "[REDACTED]")
	assert.Contains(t, out, `"table":"users"`)
	assert.Contains(t, out, `"function":"_system/frontend/getSchemas"`)
	// Once per request and once per response, never inside the header map.
	assert.Equal(t, 2, strings.Count(out, got.id))
	assert.NotContains(t, out, requestIDHeader)
}
