package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermeshq/hermes/internal/core"
)

func TestSendCommand(t *testing.T) {
	t.Run("sends a request and prints the response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "secret", r.Header.Get("X-Token"))
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("created"))
		}))
		defer server.Close()

		out := &bytes.Buffer{}
		cmd := NewRootCommand("test")
		cmd.SetOut(out)
		cmd.SetArgs(testArgs(t, "send", "POST", server.URL,
			"-H", "X-Token: secret", "-d", "payload"))

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "HTTP 200 OK")
		assert.Contains(t, out.String(), "created")
	})

	t.Run("json output decodes as a response record", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		defer server.Close()

		out := &bytes.Buffer{}
		cmd := NewRootCommand("test")
		cmd.SetOut(out)
		cmd.SetArgs(testArgs(t, "send", "GET", server.URL, "--json"))

		require.NoError(t, cmd.Execute())

		var resp core.ResponseRecord
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		assert.Equal(t, 418, resp.StatusCode)
	})

	t.Run("transport failure is reported without an error", func(t *testing.T) {
		out := &bytes.Buffer{}
		cmd := NewRootCommand("test")
		cmd.SetOut(out)
		cmd.SetArgs(testArgs(t, "send", "GET", "http://127.0.0.1:1/unreachable"))

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "Network Error")
	})

	t.Run("requires method and url arguments", func(t *testing.T) {
		cmd := NewRootCommand("test")
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(testArgs(t, "send", "GET"))

		assert.Error(t, cmd.Execute())
	})
}

func TestGenerateCommand(t *testing.T) {
	t.Run("renders a curl snippet", func(t *testing.T) {
		out := &bytes.Buffer{}
		cmd := NewRootCommand("test")
		cmd.SetOut(out)
		cmd.SetArgs([]string{"generate", "curl", "POST", "https://api.test/items",
			"-H", "Content-Type: application/json", "-d", `{"a":1}`})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "curl")
		assert.Contains(t, out.String(), "-X POST")
		assert.Contains(t, out.String(), "https://api.test/items")
	})

	t.Run("rejects an unknown target", func(t *testing.T) {
		cmd := NewRootCommand("test")
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"generate", "rust", "GET", "https://api.test"})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown target")
		assert.Contains(t, err.Error(), "curl")
	})
}
