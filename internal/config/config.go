// Package config loads and persists application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application settings.
type Config struct {
	// DataDir is where the database and exports live.
	DataDir string `yaml:"dataDir"`

	// Timeout bounds each request execution.
	Timeout time.Duration `yaml:"timeout"`

	// FollowRedirects controls whether 3xx responses are chased.
	FollowRedirects bool `yaml:"followRedirects"`

	// ProxyEndpoint, when set, routes every request through a relay that
	// receives the target URL as a query parameter.
	ProxyEndpoint string `yaml:"proxyEndpoint,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		DataDir:         defaultDataDir(),
		Timeout:         30 * time.Second,
		FollowRedirects: true,
		LogLevel:        "info",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// Load reads the config from path, falling back to defaults when the file
// does not exist. Missing fields keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DatabasePath returns the SQLite database location under the data dir.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "hermes.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hermes"
	}
	return filepath.Join(home, ".hermes")
}

func defaultDataDir() string {
	return configDir()
}
