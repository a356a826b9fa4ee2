package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("Should write structured fields to the configured output", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf})
		log.Info("tool registered", "tool", "create_row", "external_id", "ext_1")
		out := buf.String()
		assert.Contains(t, out, "tool registered")
		assert.Contains(t, out, "create_row")
	})
	t.Run("Should suppress messages below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: WarnLevel, Output: &buf})
		log.Info("hidden")
		log.Warn("shown")
		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "shown")
	})
	t.Run("Should emit JSON when configured", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})
		log.Info("compiled", "props", 3)
		assert.True(t, strings.Contains(buf.String(), `"msg":"compiled"`))
	})
}

func TestFromContext(t *testing.T) {
	t.Run("Should return the logger attached to the context", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: DebugLevel, Output: &buf})
		ctx := ContextWithLogger(context.Background(), log)
		FromContext(ctx).Debug("from ctx")
		assert.Contains(t, buf.String(), "from ctx")
	})
	t.Run("Should fall back to the default logger", func(t *testing.T) {
		require.NotNil(t, FromContext(context.Background()))
	})
	t.Run("Should carry fields added with With", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf}).With("agent_id", "agent_1")
		log.Info("attached")
		assert.Contains(t, buf.String(), "agent_1")
	})
}
