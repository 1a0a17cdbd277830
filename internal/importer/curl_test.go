package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurlText(t *testing.T) {
	t.Run("single request with method, header and body", func(t *testing.T) {
		text := "curl -X POST 'https://x.test/a'\n-H 'X-Test: 1'\n-d 'hello'"

		records := ParseCurlText(text)
		require.Len(t, records, 1)

		rec := records[0]
		assert.Equal(t, "POST", rec.Method)
		assert.Equal(t, "https://x.test/a", rec.URL)
		assert.Equal(t, map[string]string{"X-Test": "1"}, rec.Headers)
		assert.Equal(t, "hello", rec.Body)
	})

	t.Run("bare URL defaults to GET", func(t *testing.T) {
		records := ParseCurlText("curl 'https://example.com/users'")
		require.Len(t, records, 1)
		assert.Equal(t, "GET", records[0].Method)
		assert.Equal(t, "https://example.com/users", records[0].URL)
	})

	t.Run("multiple curl blocks", func(t *testing.T) {
		text := "curl 'https://a.test/one'\n-H 'Accept: text/plain'\ncurl -X DELETE 'https://b.test/two'"

		records := ParseCurlText(text)
		require.Len(t, records, 2)
		assert.Equal(t, "https://a.test/one", records[0].URL)
		assert.Equal(t, "text/plain", records[0].Headers["Accept"])
		assert.Equal(t, "DELETE", records[1].Method)
		assert.Equal(t, "https://b.test/two", records[1].URL)
	})

	t.Run("request without URL is dropped", func(t *testing.T) {
		records := ParseCurlText("curl -X POST\ncurl 'https://c.test/kept'")
		require.Len(t, records, 1)
		assert.Equal(t, "https://c.test/kept", records[0].URL)
	})

	t.Run("unrecognized lines are ignored", func(t *testing.T) {
		text := "# a comment\ncurl 'https://x.test/a'\n--compressed\necho done"

		records := ParseCurlText(text)
		require.Len(t, records, 1)
		assert.Equal(t, "https://x.test/a", records[0].URL)
	})

	t.Run("names derived from URL path", func(t *testing.T) {
		records := ParseCurlText("curl 'https://api.example.com/v1/users?page=2'")
		require.Len(t, records, 1)
		assert.Equal(t, "users", records[0].Name)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ParseCurlText(""))
	})
}

func TestCurlImporter_Import(t *testing.T) {
	imp := NewCurlImporter()
	ctx := context.Background()

	t.Run("wraps requests in a collection", func(t *testing.T) {
		results, err := imp.Import(ctx, []byte("curl 'https://x.test/a'\ncurl 'https://x.test/b'"))
		require.NoError(t, err)
		require.Len(t, results, 1)

		res := results[0]
		assert.Equal(t, "Imported from cURL", res.Collection.Name)
		require.Len(t, res.Requests, 2)
		for _, req := range res.Requests {
			assert.Equal(t, res.Collection.ID, req.CollectionID)
		}
	})

	t.Run("no parseable request is an error", func(t *testing.T) {
		_, err := imp.Import(ctx, []byte("just some text"))
		assert.ErrorIs(t, err, ErrParseError)
	})
}

func TestCurlImporter_DetectFormat(t *testing.T) {
	imp := NewCurlImporter()

	assert.True(t, imp.DetectFormat([]byte("curl https://x.test")))
	assert.True(t, imp.DetectFormat([]byte("  curl -X POST 'https://x.test'")))
	assert.False(t, imp.DetectFormat([]byte(`{"info": {}}`)))
}
