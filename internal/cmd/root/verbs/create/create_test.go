package create

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convex-panel/panelctl/internal/admin"
	cmdpkg "github.com/convex-panel/panelctl/internal/cmd"
	"github.com/convex-panel/panelctl/internal/cmd/common"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	admintest "github.com/convex-panel/panelctl/test/admin"
	cmdtest "github.com/convex-panel/panelctl/test/cmd"
	configtest "github.com/convex-panel/panelctl/test/config"
)

func newEnv(t *testing.T, output string) (*cmdtest.Env, *admintest.Deployment) {
	t.Helper()
	dep := admintest.NewDeployment(map[string][]schema.Document{
		"users": {{"_id": "k1", "name": "Ada"}},
	})
	return cmdtest.NewEnv(configtest.Profiled(map[string]any{common.OutputConfigPath: output}), dep.Client()), dep
}

func execute(t *testing.T, env *cmdtest.Env, args ...string) error {
	t.Helper()
	c, err := NewCreateCmd()
	require.NoError(t, err)
	return env.Execute(c, args...)
}

func TestCreateTable(t *testing.T) {
	env, dep := newEnv(t, "text")
	require.NoError(t, execute(t, env, "table", "orders"))

	assert.Equal(t, "Table orders created.\n", env.Out.String())
	assert.Contains(t, dep.Tables, "orders")
	assert.Empty(t, dep.Docs("orders"))
}

func TestCreateTableJSON(t *testing.T) {
	env, _ := newEnv(t, "json")
	require.NoError(t, execute(t, env, "table", "orders"))

	var result tableResult
	require.NoError(t, json.Unmarshal(env.Out.Bytes(), &result))
	assert.Equal(t, tableResult{Name: "orders", Created: true}, result)
}

func TestCreateTableRejectsInvalidName(t *testing.T) {
	env, dep := newEnv(t, "text")
	for _, name := range []string{"_orders", "9lives", "order-items"} {
		err := execute(t, env, "table", name)
		var cfgErr *cmdpkg.ConfigurationError
		require.ErrorAs(t, err, &cfgErr, name)
		assert.NotContains(t, dep.Tables, name)
	}
}

func TestCreateTableRejectsExisting(t *testing.T) {
	env, _ := newEnv(t, "text")
	err := execute(t, env, "table", "users")
	assert.EqualError(t, err, `name: table "users" already exists`)
}

func TestCreateTableReportsBackendFailure(t *testing.T) {
	env, dep := newEnv(t, "text")
	dep.FailOn = admin.FuncCreateTable

	err := execute(t, env, "table", "orders")
	require.Error(t, err)
	assert.ErrorIs(t, err, admintest.ErrRejected)
	var execErr *cmdpkg.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Msg, "failed to create table orders")
}

func TestCreateDocument(t *testing.T) {
	env, dep := newEnv(t, "text")
	require.NoError(t, execute(t, env, "document", "users", `{"name":"Grace","age":85}`))

	assert.Equal(t, "Added document to users (age, name).\n", env.Out.String())
	docs := dep.Docs("users")
	require.Len(t, docs, 2)
	assert.Equal(t, "Grace", docs[1]["name"])
	assert.NotEmpty(t, docs[1].ID())
}

func TestCreateDocumentFromStdin(t *testing.T) {
	env, dep := newEnv(t, "text")
	env.In.WriteString(`{"name":"Linus"}`)
	require.NoError(t, execute(t, env, "document", "users", "-"))

	docs := dep.Docs("users")
	require.Len(t, docs, 2)
	assert.Equal(t, "Linus", docs[1]["name"])
}

func TestCreateDocumentRejectsSystemFields(t *testing.T) {
	env, dep := newEnv(t, "text")
	err := execute(t, env, "document", "users", `{"_id":"k9","name":"Grace"}`)

	var cfgErr *cmdpkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, dep.Docs("users"), 1)
}

func TestCreateDocumentRejectsNonObject(t *testing.T) {
	env, _ := newEnv(t, "text")
	err := execute(t, env, "document", "users", `[1,2]`)
	assert.EqualError(t, err, "document must be a JSON object")
}
