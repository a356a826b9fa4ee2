package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TOOLFORGE_"

// envToPath maps environment variable suffixes (after the TOOLFORGE_
// prefix) to koanf paths. Explicit because several leaf keys contain
// underscores themselves.
var envToPath = map[string]string{
	"SERVER_HOST":          "server.host",
	"SERVER_PORT":          "server.port",
	"DATABASE_CONN_STRING": "database.conn_string",
	"DATABASE_HOST":        "database.host",
	"DATABASE_PORT":        "database.port",
	"DATABASE_USER":        "database.user",
	"DATABASE_PASSWORD":    "database.password",
	"DATABASE_NAME":        "database.name",
	"DATABASE_SSL_MODE":    "database.ssl_mode",
	"CATALOG_BASE_URL":     "catalog.base_url",
	"CATALOG_API_KEY":      "catalog.api_key",
	"CATALOG_TIMEOUT":      "catalog.timeout",
	"PLATFORM_BASE_URL":    "platform.base_url",
	"PLATFORM_API_KEY":     "platform.api_key",
	"PLATFORM_TIMEOUT":     "platform.timeout",
	"CALLBACK_BASE_URL":    "callback.base_url",
	"LOG_LEVEL":            "log.level",
	"LOG_JSON":             "log.json",
}

// Load builds the configuration from defaults overlaid with TOOLFORGE_*
// environment variables, then validates the result.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key string, value string) (string, any) {
			suffix := strings.TrimPrefix(key, envPrefix)
			if path, ok := envToPath[suffix]; ok {
				return path, value
			}
			return "", nil
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
