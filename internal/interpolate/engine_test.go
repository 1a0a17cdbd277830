package interpolate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngine_Apply(t *testing.T) {
	t.Run("replaces defined variables", func(t *testing.T) {
		e := NewEngine()
		e.SetVariable("host", "api.example.com")
		e.SetVariable("id", "42")

		result := e.Apply("https://{{host}}/users/{{id}}")
		assert.Equal(t, "https://api.example.com/users/42", result)
	})

	t.Run("keeps undefined placeholders verbatim", func(t *testing.T) {
		e := NewEngine()
		e.SetVariable("host", "api.example.com")

		result := e.Apply("https://{{host}}/users/{{missing}}")
		assert.Equal(t, "https://api.example.com/users/{{missing}}", result)
	})

	t.Run("allows whitespace inside braces", func(t *testing.T) {
		e := NewEngine()
		e.SetVariable("name", "x")
		assert.Equal(t, "x", e.Apply("{{ name }}"))
	})

	t.Run("does not rescan substituted values", func(t *testing.T) {
		e := NewEngine()
		e.SetVariable("a", "{{b}}")
		e.SetVariable("b", "never")

		assert.Equal(t, "{{b}}", e.Apply("{{a}}"))
	})

	t.Run("self-referential value does not loop", func(t *testing.T) {
		e := NewEngine()
		e.SetVariable("a", "{{a}}")
		assert.Equal(t, "{{a}}", e.Apply("{{a}}"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", NewEngine().Apply(""))
	})

	t.Run("plain text untouched", func(t *testing.T) {
		assert.Equal(t, "no variables here", NewEngine().Apply("no variables here"))
	})

	t.Run("single braces untouched", func(t *testing.T) {
		e := NewEngine()
		e.SetVariable("a", "x")
		assert.Equal(t, "{a}", e.Apply("{a}"))
	})
}

func TestEngine_ApplyMap(t *testing.T) {
	e := NewEngine()
	e.SetVariable("token", "abc")

	result := e.ApplyMap(map[string]string{
		"Authorization": "Bearer {{token}}",
		"Accept":        "application/json",
	})

	assert.Equal(t, "Bearer abc", result["Authorization"])
	assert.Equal(t, "application/json", result["Accept"])
}

func TestEngine_ExtractVariables(t *testing.T) {
	e := NewEngine()
	vars := e.ExtractVariables("{{a}} and {{b}} and {{a}} again")
	assert.Equal(t, []string{"a", "b"}, vars)
}

func TestEngine_Validate(t *testing.T) {
	e := NewEngine()
	e.SetVariable("a", "1")

	assert.NoError(t, e.Validate("{{a}}"))
	err := e.Validate("{{a}} {{b}} {{c}}")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "b")
	assert.Contains(t, err.Error(), "c")
}

func TestEngine_VariableManagement(t *testing.T) {
	e := NewEngine()
	e.SetVariables(map[string]string{"a": "1", "b": "2"})
	assert.True(t, e.HasVariable("a"))

	e.DeleteVariable("a")
	assert.False(t, e.HasVariable("a"))

	e.Clear()
	assert.Empty(t, e.Variables())
}
