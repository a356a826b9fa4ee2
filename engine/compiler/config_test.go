package compiler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolforge-ai/toolforge/engine/action"
)

func TestPropConfig_Validate(t *testing.T) {
	t.Run("Should accept the constructor-produced states", func(t *testing.T) {
		assert.NoError(t, Fixed("x").Validate(action.TypeString))
		assert.NoError(t, AI("desc").Validate(action.TypeString))
		assert.NoError(t, Empty().Validate(action.TypeString))
		assert.NoError(t, FixedItems(ArrayItem{Value: "a"}).Validate(action.TypeStringArray))
	})
	t.Run("Should reject an aiDescription on a fixed prop", func(t *testing.T) {
		cfg := PropConfig{Mode: ModeFixed, Value: "x", AIDescription: "stray"}
		assert.Error(t, cfg.Validate(action.TypeString))
	})
	t.Run("Should reject a fixed value on an ai prop", func(t *testing.T) {
		cfg := PropConfig{Mode: ModeAI, Value: "x"}
		assert.Error(t, cfg.Validate(action.TypeString))
	})
	t.Run("Should reject configuration on an empty prop", func(t *testing.T) {
		cfg := PropConfig{Mode: ModeEmpty, Value: "x"}
		assert.Error(t, cfg.Validate(action.TypeString))
	})
	t.Run("Should reject array items on a scalar prop", func(t *testing.T) {
		cfg := PropConfig{Mode: ModeFixed, Items: []ArrayItem{{Value: "a"}}}
		assert.Error(t, cfg.Validate(action.TypeString))
	})
	t.Run("Should reject an unknown mode", func(t *testing.T) {
		cfg := PropConfig{Mode: "frozen"}
		assert.Error(t, cfg.Validate(action.TypeString))
	})
}

func TestPropConfig_IsConfigured(t *testing.T) {
	t.Run("Should require a fixed mode with a non-empty value", func(t *testing.T) {
		assert.True(t, Fixed("drive_1").IsConfigured())
		assert.False(t, Fixed("").IsConfigured())
		assert.False(t, Fixed(nil).IsConfigured())
		assert.False(t, AI("desc").IsConfigured())
		assert.False(t, Empty().IsConfigured())
	})
	t.Run("Should treat zero and false as deliberate values", func(t *testing.T) {
		assert.True(t, Fixed(0).IsConfigured())
		assert.True(t, Fixed(false).IsConfigured())
	})
	t.Run("Should count base items for array props", func(t *testing.T) {
		assert.True(t, FixedItems(ArrayItem{Value: "a"}).IsConfigured())
		assert.False(t, FixedItems(ArrayItem{IsAI: true, AIPrompt: "gen"}).IsConfigured())
	})
}

func TestDocument_JSON(t *testing.T) {
	t.Run("Should flatten props and the async flag into one object", func(t *testing.T) {
		doc := Document{
			Props: ConfigMap{
				"sheetId": Fixed("1abc"),
			},
			IsAsync: true,
		}
		raw, err := json.Marshal(doc)
		require.NoError(t, err)
		var obj map[string]any
		require.NoError(t, json.Unmarshal(raw, &obj))
		assert.Equal(t, true, obj["_isAsync"])
		require.Contains(t, obj, "sheetId")
	})
	t.Run("Should round-trip configs and the async flag", func(t *testing.T) {
		doc := Document{
			Props: ConfigMap{
				"sheetId": Fixed("1abc"),
				"cells":   AI("cell values").WithForceRequired(),
				"tags":    FixedItems(ArrayItem{Value: "urgent"}, ArrayItem{IsAI: true, AIPrompt: "more"}).WithAddMore("add tags"),
			},
			IsAsync: true,
		}
		raw, err := json.Marshal(doc)
		require.NoError(t, err)
		var restored Document
		require.NoError(t, json.Unmarshal(raw, &restored))
		assert.True(t, restored.IsAsync)
		assert.Equal(t, doc.Props["sheetId"], restored.Props["sheetId"])
		assert.Equal(t, doc.Props["cells"], restored.Props["cells"])
		assert.Equal(t, doc.Props["tags"].Items, restored.Props["tags"].Items)
		assert.True(t, restored.Props["tags"].AICanAddMore)
	})
	t.Run("Should omit the async flag when not set", func(t *testing.T) {
		raw, err := json.Marshal(Document{Props: ConfigMap{"x": Empty()}})
		require.NoError(t, err)
		var obj map[string]any
		require.NoError(t, json.Unmarshal(raw, &obj))
		assert.NotContains(t, obj, "_isAsync")
	})
}
