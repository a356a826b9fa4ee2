package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolforge-ai/toolforge/engine/core"
)

func TestValidationError(t *testing.T) {
	t.Run("Should list offending fields in the message", func(t *testing.T) {
		err := core.NewValidationError("Spreadsheet", "Worksheet")
		assert.Equal(t, "validation failed: Spreadsheet, Worksheet", err.Error())
	})
	t.Run("Should be matchable with errors.As through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("create tool: %w", core.NewValidationError("Label"))
		var vErr *core.ValidationError
		require.True(t, errors.As(wrapped, &vErr))
		assert.Equal(t, []string{"Label"}, vErr.Fields)
	})
}

func TestWrappedErrors(t *testing.T) {
	t.Run("Should unwrap to the underlying cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		assert.ErrorIs(t, core.NewCatalogError("resolveOptions", cause), cause)
		assert.ErrorIs(t, core.NewPersistenceError("insert", cause), cause)
		assert.ErrorIs(t, core.NewRegistrationError("createTool", cause), cause)
	})
	t.Run("Should include the operation in the message", func(t *testing.T) {
		err := core.NewRegistrationError("updateTool", errors.New("503"))
		assert.Contains(t, err.Error(), "updateTool")
	})
}
