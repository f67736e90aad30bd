// Package config loads and manages mercato configuration.
// Configuration source priority (highest to lowest):
// 1. CLI flags (applied by the cmd package)
// 2. Environment variables (MERCATO_API_BASE, MERCATO_DATA_DIR, MERCATO_HTTP_TIMEOUT)
// 3. Config file path specified via --config flag
// 4. ~/.config/mercato/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIBase is the local development backend.
const DefaultAPIBase = "http://127.0.0.1:8000"

// Config is the complete configuration structure for mercato.
type Config struct {
	// APIBase is the storefront backend base URL.
	APIBase string `yaml:"api_base"`

	// DataDir holds local state (the session database). Empty means
	// ~/.local/share/mercato.
	DataDir string `yaml:"data_dir"`

	// HTTPTimeout is an optional transport-level timeout, as a Go
	// duration string ("10s"). Empty means no timeout: the gateway
	// itself never enforces one.
	HTTPTimeout string `yaml:"http_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIBase: DefaultAPIBase,
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mercato", "config.yaml")
}

// Load reads the config file and merges environment variable overrides.
// A missing file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		configPath = DefaultPath()
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	return cfg, nil
}

// ResolveDataDir returns the configured data directory, falling back to
// ~/.local/share/mercato.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "mercato"), nil
}

// DBPath returns the session database location under the data dir.
func (c *Config) DBPath() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mercato.db"), nil
}

// Timeout parses HTTPTimeout. Zero means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.HTTPTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid http_timeout %q: %w", c.HTTPTimeout, err)
	}
	return d, nil
}

// SaveToFile persists the given settings into the config file,
// preserving all other user settings.
func SaveToFile(configPath string, cfg *Config) error {
	if configPath == "" {
		configPath = DefaultPath()
		if configPath == "" {
			return fmt.Errorf("cannot determine config path")
		}
	}

	// Read existing file into a generic map to preserve unknown fields.
	raw := make(map[string]any)
	if data, err := os.ReadFile(configPath); err == nil {
		_ = yaml.Unmarshal(data, &raw) // ignore errors; start fresh if corrupt
	}

	raw["api_base"] = cfg.APIBase
	if cfg.DataDir != "" {
		raw["data_dir"] = cfg.DataDir
	}
	if cfg.HTTPTimeout != "" {
		raw["http_timeout"] = cfg.HTTPTimeout
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MERCATO_API_BASE"); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv("MERCATO_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("MERCATO_HTTP_TIMEOUT"); v != "" {
		cfg.HTTPTimeout = v
	}
}
