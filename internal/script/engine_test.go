package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermeshq/hermes/internal/core"
)

func TestEngine_RunTests(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()
	resp := core.NewResponseRecord(200, "OK", map[string]string{"Content-Type": "application/json"}, `{"ok":true}`, 42)

	t.Run("passing and failing tests", func(t *testing.T) {
		source := `
			test("status is 200", function() {
				if (response.statusCode !== 200) throw new Error("expected 200");
			});
			test("body mentions ok", function() {
				if (response.body.indexOf("ok") === -1) throw new Error("no ok");
			});
			test("always fails", function() {
				throw new Error("deliberate");
			});
		`

		results, err := engine.RunTests(ctx, source, resp)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.True(t, results[0].Passed)
		assert.True(t, results[1].Passed)
		assert.False(t, results[2].Passed)
		assert.Contains(t, results[2].Message, "deliberate")
	})

	t.Run("response fields are exposed via json names", func(t *testing.T) {
		source := `
			test("fields", function() {
				if (response.statusText !== "OK") throw new Error("statusText");
				if (response.elapsedMillis !== 42) throw new Error("elapsed");
				if (response.headers["Content-Type"] !== "application/json") throw new Error("headers");
			});
		`

		results, err := engine.RunTests(ctx, source, resp)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, results[0].Passed, results[0].Message)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := engine.RunTests(ctx, "test(((", resp)
		assert.Error(t, err)
	})

	t.Run("throw outside a test aborts", func(t *testing.T) {
		_, err := engine.RunTests(ctx, `throw new Error("boom")`, resp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("console output reaches the handler", func(t *testing.T) {
		var messages []string
		engine.SetConsoleHandler(func(level, msg string) {
			messages = append(messages, level+": "+msg)
		})
		defer engine.SetConsoleHandler(nil)

		_, err := engine.RunTests(ctx, `console.log("hello", 1)`, resp)
		require.NoError(t, err)
		assert.Equal(t, []string{"log: hello 1"}, messages)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.RunTests(cancelled, `test("x", function(){})`, resp)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
