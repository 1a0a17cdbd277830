package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command tree against a shared data directory and returns
// its stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand("test")
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	full := []string{"--config", filepath.Join(dir, "config.yaml"), "--data-dir", dir}
	cmd.SetArgs(append(full, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestEnvCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "env", "create", "staging", "-V", "host=staging.test")
	require.NoError(t, err)
	assert.Contains(t, out, `Created environment "staging"`)

	out, err = run(t, dir, "env", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "staging")

	out, err = run(t, dir, "env", "use", "staging")
	require.NoError(t, err)
	assert.Contains(t, out, `Using environment "staging"`)

	out, err = run(t, dir, "env", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "*")

	out, err = run(t, dir, "env", "set", "staging", "token=abc123")
	require.NoError(t, err)
	assert.Contains(t, out, "token")

	out, err = run(t, dir, "env", "use")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")

	_, err = run(t, dir, "env", "use", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	out, err = run(t, dir, "env", "delete", "staging")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted")
}

func TestEnvSubstitutionInSend(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer server.Close()

	dir := t.TempDir()
	_, err := run(t, dir, "env", "create", "local", "-V", "base="+server.URL, "-V", "user=alice")
	require.NoError(t, err)
	_, err = run(t, dir, "env", "use", "local")
	require.NoError(t, err)

	_, err = run(t, dir, "send", "GET", "{{base}}/users/{{user}}")
	require.NoError(t, err)
	assert.Equal(t, "/users/alice", gotPath)
}

func TestImportExportCommands(t *testing.T) {
	dir := t.TempDir()

	doc := `{
		"info": {"name": "Sample API", "schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"},
		"item": [
			{"name": "Get Users", "request": {"method": "GET", "url": "https://api.test/users"}},
			{"name": "Create User", "request": {"method": "POST", "url": "https://api.test/users", "body": {"mode": "raw", "raw": "{\"name\":\"x\"}"}}}
		]
	}`
	src := filepath.Join(dir, "sample.postman.json")
	require.NoError(t, os.WriteFile(src, []byte(doc), 0o644))

	out, err := run(t, dir, "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, `Imported "Sample API" (2 requests)`)

	out, err = run(t, dir, "export")
	require.NoError(t, err)

	var exported map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	info := exported["info"].(map[string]any)
	assert.Equal(t, "Sample API", info["name"])
	assert.Len(t, exported["item"].([]any), 2)

	t.Run("export to file", func(t *testing.T) {
		dest := filepath.Join(dir, "out.json")
		out, err := run(t, dir, "export", "-o", dest)
		require.NoError(t, err)
		assert.Contains(t, out, "Exported to")

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Sample API")
	})
}

func TestImportCurlText(t *testing.T) {
	dir := t.TempDir()

	src := filepath.Join(dir, "requests.sh")
	script := "curl -X POST 'https://x.test/a' \\\n  -H 'X-Test: 1' \\\n  -d 'hello'\n"
	require.NoError(t, os.WriteFile(src, []byte(script), 0o644))

	out, err := run(t, dir, "import", "-f", "curl", src)
	require.NoError(t, err)
	assert.Contains(t, out, `Imported "Imported from cURL" (1 requests)`)
}

func TestTransferRoundTrip(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "env", "create", "prod", "-V", "host=prod.test")
	require.NoError(t, err)

	backup := filepath.Join(dir, "backup.json")
	_, err = run(t, dir, "export", "--all", "-o", backup)
	require.NoError(t, err)

	// Restore into a fresh data directory.
	fresh := t.TempDir()
	out, err := run(t, fresh, "import", "--all", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Data restored")

	out, err = run(t, fresh, "env", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "prod")

	t.Run("rejects a partial data file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"collections": []}`), 0o644))
		_, err := run(t, t.TempDir(), "import", "--all", bad)
		assert.Error(t, err)
	})
}

func TestHistoryCommands(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	dir := t.TempDir()

	out, err := run(t, dir, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No history")

	_, err = run(t, dir, "send", "GET", server.URL)
	require.NoError(t, err)

	out, err = run(t, dir, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "GET")
	assert.Contains(t, out, server.URL)

	out, err = run(t, dir, "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 entries")

	out, err = run(t, dir, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No history")
}
