package outputs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	got, err := Coerce(map[string]any{
		"text":   "done",
		"count":  float64(3),
		"ratio":  0.5,
		"ok":     true,
		"nested": map[string]any{"a": float64(1)},
		"list":   []any{"x", float64(2)},
		"none":   nil,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"text":   "done",
		"count":  "3",
		"ratio":  "0.5",
		"ok":     "true",
		"nested": `{"a":1}`,
		"list":   `["x",2]`,
		"none":   "",
	}, got)
}

func TestCoerceNilAndEmpty(t *testing.T) {
	got, err := Coerce(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Coerce(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{}, got)
}

func TestCoerceDoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"ok": false}
	_, err := Coerce(raw)
	require.NoError(t, err)
	assert.Equal(t, false, raw["ok"])
}
