package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should load defaults when no environment is set", func(t *testing.T) {
		cfg, err := Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 5001, cfg.Server.Port)
		assert.Equal(t, "toolforge", cfg.Database.DBName)
		assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
		assert.Equal(t, "info", cfg.Log.Level)
	})
	t.Run("Should override defaults from environment variables", func(t *testing.T) {
		t.Setenv("TOOLFORGE_SERVER_PORT", "8080")
		t.Setenv("TOOLFORGE_DATABASE_SSL_MODE", "require")
		t.Setenv("TOOLFORGE_PLATFORM_API_KEY", "pk_test")
		cfg, err := Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, "pk_test", cfg.Platform.APIKey)
	})
	t.Run("Should reject an invalid log level", func(t *testing.T) {
		t.Setenv("TOOLFORGE_LOG_LEVEL", "loud")
		_, err := Load(context.Background())
		require.Error(t, err)
	})
	t.Run("Should reject a malformed callback base URL", func(t *testing.T) {
		t.Setenv("TOOLFORGE_CALLBACK_BASE_URL", "not a url")
		_, err := Load(context.Background())
		require.Error(t, err)
	})
}
