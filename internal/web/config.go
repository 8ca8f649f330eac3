package web

import (
	"encoding/json"
	"os"

	"github.com/customer-recon/internal/config"
)

// Config represents the review server configuration
type Config struct {
	Server ServerConfig `json:"server"`
	Store  StoreConfig  `json:"store"`
	Auth   AuthConfig   `json:"auth"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port      int    `json:"port"`
	Host      string `json:"host"`
	StaticDir string `json:"static_dir"`
}

// StoreConfig points at the SQLite run store to serve
type StoreConfig struct {
	Path string `json:"path"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      8080,
			Host:      "0.0.0.0",
			StaticDir: "internal/web/static",
		},
		Store: StoreConfig{
			Path: "reconciliation.db",
		},
		Auth: AuthConfig{
			Enabled: false,
			Token:   "",
		},
	}
}

// LoadConfigFromEnv returns the default configuration overlaid with any
// RECON_WEB_* environment settings. Enabling auth requires a token.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.Server.Port = config.GetEnvInt("RECON_WEB_PORT", cfg.Server.Port)
	cfg.Server.Host = config.GetEnv("RECON_WEB_HOST", cfg.Server.Host)
	cfg.Server.StaticDir = config.GetEnv("RECON_WEB_STATIC_DIR", cfg.Server.StaticDir)
	cfg.Store.Path = config.GetEnv("RECON_STORE_PATH", cfg.Store.Path)
	cfg.Auth.Token = config.GetEnv("RECON_WEB_AUTH_TOKEN", cfg.Auth.Token)
	cfg.Auth.Enabled = cfg.Auth.Token != ""
	return cfg
}
