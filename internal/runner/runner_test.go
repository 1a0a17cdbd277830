package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermeshq/hermes/internal/app"
	"github.com/hermeshq/hermes/internal/core"
)

func newTestCollection(url string, count int) (core.CollectionRecord, []core.RequestItemRecord) {
	coll := core.NewCollectionRecord("Smoke")
	requests := make([]core.RequestItemRecord, 0, count)
	for i := 0; i < count; i++ {
		rec := core.NewRequestItemRecord("Check", "GET", url)
		rec.CollectionID = coll.ID
		requests = append(requests, rec)
	}
	return coll, requests
}

func TestRunner_Run(t *testing.T) {
	t.Run("executes every request in order", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
		}))
		defer server.Close()

		coll, requests := newTestCollection(server.URL, 3)
		summary := New(app.New()).Run(context.Background(), coll, requests)

		assert.Equal(t, 3, hits)
		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 3, summary.Executed)
		assert.Equal(t, 3, summary.Passed)
		assert.Equal(t, 0, summary.Failed)
		assert.True(t, summary.AllPassed())
		assert.Equal(t, "Smoke", summary.CollectionName)
	})

	t.Run("transport failure counts as failed but does not halt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		coll := core.NewCollectionRecord("Mixed")
		bad := core.NewRequestItemRecord("Bad", "GET", "http://127.0.0.1:1/nope")
		good := core.NewRequestItemRecord("Good", "GET", server.URL)

		summary := New(app.New()).Run(context.Background(), coll, []core.RequestItemRecord{bad, good})

		assert.Equal(t, 2, summary.Executed)
		assert.Equal(t, 1, summary.Passed)
		assert.Equal(t, 1, summary.Failed)
		assert.False(t, summary.AllPassed())
		assert.False(t, summary.Results[0].Passed())
		assert.True(t, summary.Results[1].Passed())
	})

	t.Run("runs the test script against each response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))
		defer server.Close()

		coll, requests := newTestCollection(server.URL, 2)
		r := New(app.New(), WithTestScript(`
			test("status is 200", function() {
				if (response.statusCode !== 200) throw new Error("got " + response.statusCode);
			});
			test("body is pong", function() {
				if (response.body !== "pong") throw new Error("bad body");
			});
		`))
		summary := r.Run(context.Background(), coll, requests)

		assert.Equal(t, 4, summary.TestsPassed)
		assert.Equal(t, 0, summary.TestsFailed)
		require.Len(t, summary.Results[0].Tests, 2)
		assert.True(t, summary.Results[0].Tests[0].Passed)
	})

	t.Run("failing assertions mark the request failed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		coll, requests := newTestCollection(server.URL, 1)
		r := New(app.New(), WithTestScript(`
			test("status is 200", function() {
				if (response.statusCode !== 200) throw new Error("got " + response.statusCode);
			});
		`))
		summary := r.Run(context.Background(), coll, requests)

		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, 1, summary.TestsFailed)
		assert.False(t, summary.Results[0].Passed())
	})

	t.Run("reports progress after each request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		var seen []int
		coll, requests := newTestCollection(server.URL, 3)
		r := New(app.New(), WithProgress(func(current, total int, result *Result) {
			assert.Equal(t, 3, total)
			assert.NotNil(t, result.Response)
			seen = append(seen, current)
		}))
		r.Run(context.Background(), coll, requests)

		assert.Equal(t, []int{1, 2, 3}, seen)
	})

	t.Run("cancelled context stops the run", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		coll, requests := newTestCollection("https://example.test", 5)
		summary := New(app.New()).Run(ctx, coll, requests)

		assert.Equal(t, 0, summary.Executed)
		assert.Equal(t, 5, summary.Total)
	})
}
