package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all mailrules configuration.
type Config struct {
	Gmail    GmailConfig    `toml:"gmail"`
	Fetch    FetchConfig    `toml:"fetch"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

// GmailConfig holds Gmail OAuth credentials.
// Users can override via config file or env vars.
type GmailConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// FetchConfig holds message ingestion settings.
type FetchConfig struct {
	MaxMessages int `toml:"max_messages"`
}

// DatabaseConfig holds local store settings. An empty Path means the
// default data directory.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func defaults() Config {
	return Config{
		Fetch: FetchConfig{
			MaxMessages: 25,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config from path. If path is empty or the file does not
// exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// ConfigDir returns the mailrules config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mailrules")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mailrules")
}

// DataDir returns the mailrules data directory path.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mailrules")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mailrules")
}
