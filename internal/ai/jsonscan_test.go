package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstJSONObject(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		got, err := FirstJSONObject(`{"a": 1}`)
		require.NoError(t, err)
		assert.Equal(t, `{"a": 1}`, got)
	})

	t.Run("markdown fenced", func(t *testing.T) {
		input := "Here is the result:\n```json\n{\"summary\": \"ok\"}\n```\nLet me know!"
		got, err := FirstJSONObject(input)
		require.NoError(t, err)
		assert.Equal(t, `{"summary": "ok"}`, got)
	})

	t.Run("nested objects", func(t *testing.T) {
		input := `prose {"outer": {"inner": {"deep": true}}} trailing {"second": 1}`
		got, err := FirstJSONObject(input)
		require.NoError(t, err)
		assert.Equal(t, `{"outer": {"inner": {"deep": true}}}`, got)
	})

	t.Run("braces inside strings", func(t *testing.T) {
		input := `{"note": "a } inside", "more": "{ and this"}`
		got, err := FirstJSONObject(input)
		require.NoError(t, err)
		assert.JSONEq(t, input, got)
	})

	t.Run("escaped quotes inside strings", func(t *testing.T) {
		input := `{"quote": "she said \"}\" loudly"}`
		got, err := FirstJSONObject(input)
		require.NoError(t, err)

		var m map[string]string
		require.NoError(t, json.Unmarshal([]byte(got), &m))
		assert.Equal(t, `she said "}" loudly`, m["quote"])
	})

	t.Run("no object at all", func(t *testing.T) {
		_, err := FirstJSONObject("sorry, I cannot help with that")
		assert.ErrorIs(t, err, ErrNoJSONObject)
	})

	t.Run("unbalanced object", func(t *testing.T) {
		_, err := FirstJSONObject(`{"truncated": tru`)
		assert.ErrorIs(t, err, ErrNoJSONObject)
	})

	t.Run("stray close brace before object", func(t *testing.T) {
		got, err := FirstJSONObject(`} noise {"ok": true}`)
		require.NoError(t, err)
		assert.Equal(t, `{"ok": true}`, got)
	})
}
