package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermeshq/hermes/internal/core"
)

type fakeStore struct {
	active    *core.EnvironmentRecord
	activeErr error
	history   []core.HistoryEntry
}

func (f *fakeStore) ActiveEnvironment(ctx context.Context) (*core.EnvironmentRecord, error) {
	return f.active, f.activeErr
}

func (f *fakeStore) AddHistory(ctx context.Context, entry core.HistoryEntry) (string, error) {
	f.history = append(f.history, entry)
	return entry.ID, nil
}

func TestResolve(t *testing.T) {
	cfg, err := core.NewRequestConfig("POST", "https://{{host}}/items")
	require.NoError(t, err)
	cfg.SetHeader("X-Token", "{{token}}")
	cfg.Body = `{"env":"{{env}}"}`
	cfg.Auth = core.NewBearerAuth("{{token}}")

	vars := map[string]string{
		"host":  "api.example.com",
		"token": "tok-1",
	}

	resolved := Resolve(cfg, vars)

	assert.Equal(t, "https://api.example.com/items", resolved.URL)
	assert.Equal(t, "tok-1", resolved.Headers["X-Token"])
	assert.Equal(t, "tok-1", resolved.Auth.Token)
	// Undefined variables stay verbatim.
	assert.Equal(t, `{"env":"{{env}}"}`, resolved.Body)

	// The original config is untouched.
	assert.Equal(t, "https://{{host}}/items", cfg.URL)
	assert.Equal(t, "{{token}}", cfg.Auth.Token)
}

func TestApp_Send(t *testing.T) {
	t.Run("substitutes active environment and records history", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		env := core.NewEnvironmentRecord("dev")
		env.SetVariable("base", server.URL)
		env.SetVariable("resource", "widgets")
		store := &fakeStore{active: &env}

		a := New(WithStore(store))

		cfg, err := core.NewRequestConfig("GET", "{{base}}/{{resource}}")
		require.NoError(t, err)

		resp := a.Send(context.Background(), cfg)

		require.NotNil(t, resp)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "/widgets", gotPath)

		require.Len(t, store.history, 1)
		assert.Equal(t, server.URL+"/widgets", store.history[0].RequestURL)
		assert.Equal(t, "dev", store.history[0].Environment)
		assert.Equal(t, 200, store.history[0].ResponseStatus)
	})

	t.Run("no active environment sends verbatim", func(t *testing.T) {
		store := &fakeStore{}
		a := New(WithStore(store))

		cfg, err := core.NewRequestConfig("GET", "http://{{unset}}.invalid/")
		require.NoError(t, err)

		resp := a.Send(context.Background(), cfg)
		require.NotNil(t, resp)
		assert.True(t, resp.IsTransportFailure())
		require.Len(t, store.history, 1)
	})

	t.Run("environment lookup failure still sends", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		store := &fakeStore{activeErr: errors.New("db locked")}
		a := New(WithStore(store))

		cfg, err := core.NewRequestConfig("GET", server.URL)
		require.NoError(t, err)

		resp := a.Send(context.Background(), cfg)
		assert.Equal(t, 204, resp.StatusCode)
	})

	t.Run("works without a store", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		a := New()
		cfg, err := core.NewRequestConfig("GET", server.URL)
		require.NoError(t, err)

		resp := a.Send(context.Background(), cfg)
		assert.Equal(t, 200, resp.StatusCode)
	})
}
