package exporter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermeshq/hermes/internal/core"
	"github.com/hermeshq/hermes/internal/importer"
)

func newTestRecord(collID, name, method, rawURL string) core.RequestItemRecord {
	rec := core.NewRequestItemRecord(name, method, rawURL)
	rec.CollectionID = collID
	return rec
}

func TestPostmanExporter_Export(t *testing.T) {
	exp := NewPostmanExporter()
	ctx := context.Background()

	t.Run("basic structure", func(t *testing.T) {
		coll := core.NewCollectionRecord("My API")
		rec := newTestRecord(coll.ID, "List Users", "GET", "https://api.example.com/v1/users")
		rec.Headers["Accept"] = "application/json"
		rec.QueryParams["page"] = "2"

		data, err := exp.Export(ctx, coll, []core.RequestItemRecord{rec})
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))

		info := doc["info"].(map[string]any)
		assert.Equal(t, "My API", info["name"])
		assert.Contains(t, info["schema"], "v2.1.0")

		items := doc["item"].([]any)
		require.Len(t, items, 1)

		req := items[0].(map[string]any)["request"].(map[string]any)
		assert.Equal(t, "GET", req["method"])

		urlObj := req["url"].(map[string]any)
		assert.Equal(t, "https://api.example.com/v1/users?page=2", urlObj["raw"])
		assert.Equal(t, "https", urlObj["protocol"])
		assert.Equal(t, []any{"api", "example", "com"}, urlObj["host"])
		assert.Equal(t, []any{"v1", "users"}, urlObj["path"])

		query := urlObj["query"].([]any)
		require.Len(t, query, 1)
		assert.Equal(t, "page", query[0].(map[string]any)["key"])
		assert.Equal(t, "2", query[0].(map[string]any)["value"])
	})

	t.Run("unparseable URL gets placeholder segments", func(t *testing.T) {
		coll := core.NewCollectionRecord("Broken")
		rec := newTestRecord(coll.ID, "Bad", "GET", "::not a url::")

		data, err := exp.Export(ctx, coll, []core.RequestItemRecord{rec})
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		urlObj := doc["item"].([]any)[0].(map[string]any)["request"].(map[string]any)["url"].(map[string]any)

		assert.Equal(t, "::not a url::", urlObj["raw"])
		assert.Equal(t, "http", urlObj["protocol"])
		assert.Equal(t, []any{"localhost"}, urlObj["host"])
	})

	t.Run("form body with unrecoverable fields falls back to raw", func(t *testing.T) {
		coll := core.NewCollectionRecord("Forms")
		rec := newTestRecord(coll.ID, "Bad Form", "POST", "https://x.test/submit")
		rec.BodyEncoding = core.EncodingFormMultipart
		rec.Body = "%%% no fields here %%%"

		data, err := exp.Export(ctx, coll, []core.RequestItemRecord{rec})
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		body := doc["item"].([]any)[0].(map[string]any)["request"].(map[string]any)["body"].(map[string]any)

		assert.Equal(t, "raw", body["mode"])
		assert.Equal(t, "%%% no fields here %%%", body["raw"])
	})

	t.Run("multipart body maps to formdata", func(t *testing.T) {
		coll := core.NewCollectionRecord("Forms")
		rec := newTestRecord(coll.ID, "Upload", "POST", "https://x.test/submit")
		rec.BodyEncoding = core.EncodingFormMultipart
		rec.Body = `[{"key":"name","value":"alice"}]`

		data, err := exp.Export(ctx, coll, []core.RequestItemRecord{rec})
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		body := doc["item"].([]any)[0].(map[string]any)["request"].(map[string]any)["body"].(map[string]any)

		assert.Equal(t, "formdata", body["mode"])
		formdata := body["formdata"].([]any)
		require.Len(t, formdata, 1)
		assert.Equal(t, "name", formdata[0].(map[string]any)["key"])
		assert.Equal(t, "alice", formdata[0].(map[string]any)["value"])
	})

	t.Run("empty collection id is invalid", func(t *testing.T) {
		_, err := exp.Export(ctx, core.CollectionRecord{}, nil)
		assert.ErrorIs(t, err, ErrInvalidCollection)
	})
}

func TestPostmanExporter_ExportAll(t *testing.T) {
	exp := NewPostmanExporter()
	ctx := context.Background()

	t.Run("single collection exports a document", func(t *testing.T) {
		coll := core.NewCollectionRecord("Only")
		data, err := exp.ExportAll(ctx, []core.CollectionRecord{coll}, nil)
		require.NoError(t, err)
		assert.Equal(t, byte('{'), data[0])
	})

	t.Run("multiple collections export an array", func(t *testing.T) {
		collA := core.NewCollectionRecord("A")
		collB := core.NewCollectionRecord("B")
		reqA := newTestRecord(collA.ID, "ReqA", "GET", "https://a.test/x")
		reqB := newTestRecord(collB.ID, "ReqB", "GET", "https://b.test/y")

		data, err := exp.ExportAll(ctx, []core.CollectionRecord{collA, collB}, []core.RequestItemRecord{reqA, reqB})
		require.NoError(t, err)
		assert.Equal(t, byte('['), data[0])

		var docs []map[string]any
		require.NoError(t, json.Unmarshal(data, &docs))
		require.Len(t, docs, 2)
		assert.Len(t, docs[0]["item"].([]any), 1)
		assert.Len(t, docs[1]["item"].([]any), 1)
	})
}

func TestPostmanRoundTrip(t *testing.T) {
	exp := NewPostmanExporter()
	imp := importer.NewPostmanImporter()
	ctx := context.Background()

	coll := core.NewCollectionRecord("Round Trip")

	bearer := newTestRecord(coll.ID, "Bearer Req", "POST", "https://api.example.com/items")
	bearer.Headers["Content-Type"] = "application/json"
	bearer.Headers["X-Trace"] = "abc"
	bearer.QueryParams["verbose"] = "true"
	bearer.Body = `{"name":"widget"}`
	bearer.Auth = core.NewBearerAuth("tok-42")

	basic := newTestRecord(coll.ID, "Basic Req", "DELETE", "https://api.example.com/items/7")
	basic.Auth = core.NewBasicAuth("alice", "pw")

	apikey := newTestRecord(coll.ID, "APIKey Req", "GET", "https://api.example.com/status")
	apikey.Auth = core.NewAPIKeyAuth("X-Api-Key", "secret")

	records := []core.RequestItemRecord{bearer, basic, apikey}

	data, err := exp.Export(ctx, coll, records)
	require.NoError(t, err)

	results, err := imp.Import(ctx, data)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Requests, len(records))

	for i, got := range results[0].Requests {
		want := records[i]
		t.Run(want.Name, func(t *testing.T) {
			assert.Equal(t, want.Name, got.Name)
			assert.Equal(t, want.Method, got.Method)
			assert.Equal(t, want.FullURL(), got.FullURL())
			for k, v := range want.Headers {
				assert.Equal(t, v, got.Headers[k])
			}
			if want.BodyEncoding == core.EncodingRaw {
				assert.Equal(t, want.Body, got.Body)
			}
			if want.Auth.IsConfigured() {
				require.NotNil(t, got.Auth)
				assert.Equal(t, want.Auth.Type, got.Auth.Type)
				assert.Equal(t, want.Auth.Token, got.Auth.Token)
				assert.Equal(t, want.Auth.Username, got.Auth.Username)
				assert.Equal(t, want.Auth.Password, got.Auth.Password)
				assert.Equal(t, want.Auth.HeaderName, got.Auth.HeaderName)
				assert.Equal(t, want.Auth.HeaderValue, got.Auth.HeaderValue)
			}
			assert.NotEqual(t, want.ID, got.ID)
		})
	}
}
