package config

import "time"

// Config is the application configuration tree. Defaults are declared
// here and may be overridden by TOOLFORGE_* environment variables,
// e.g. TOOLFORGE_DATABASE_HOST or TOOLFORGE_PLATFORM_API_KEY.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Platform PlatformConfig `koanf:"platform"`
	Callback CallbackConfig `koanf:"callback"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`
}

type DatabaseConfig struct {
	ConnString string `koanf:"conn_string"`
	Host       string `koanf:"host"`
	Port       string `koanf:"port"`
	User       string `koanf:"user"`
	Password   string `koanf:"password"`
	DBName     string `koanf:"name"`
	SSLMode    string `koanf:"ssl_mode"`
}

// CatalogConfig points at the action catalog service.
type CatalogConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// PlatformConfig points at the external agent platform tool registry.
type PlatformConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// CallbackConfig holds the public base URL handed to the agent platform
// as each tool's server.url.
type CallbackConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5001,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DBName:  "toolforge",
			SSLMode: "disable",
		},
		Catalog: CatalogConfig{
			BaseURL: "https://api.pipedream.com/v1",
			Timeout: 30 * time.Second,
		},
		Platform: PlatformConfig{
			BaseURL: "https://api.vapi.ai",
			Timeout: 30 * time.Second,
		},
		Callback: CallbackConfig{
			BaseURL: "http://localhost:5001",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
