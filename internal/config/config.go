// Package config loads and saves moneyplan's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that take precedence over the config file.
const (
	EnvDB   = "MONEYPLAN_DB"
	EnvAddr = "MONEYPLAN_ADDR"
)

// Config holds all moneyplan configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Budget     BudgetConfig     `toml:"budget"`
	Streak     StreakConfig     `toml:"streak"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath    string `toml:"db_path,omitempty"`
	ImportDir string `toml:"import_dir,omitempty"`
}

// BudgetConfig holds defaults for newly created budgets.
type BudgetConfig struct {
	DefaultAlertThreshold float64 `toml:"default_alert_threshold"`
	DefaultPeriod         string  `toml:"default_period"`
}

// StreakConfig controls the streak badge.
type StreakConfig struct {
	ShowBadge bool `toml:"show_badge"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Budget: BudgetConfig{
			DefaultAlertThreshold: 80,
			DefaultPeriod:         "monthly",
		},
		Streak: StreakConfig{
			ShowBadge: true,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "moneyplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "moneyplan")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "moneyplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "moneyplan")
}

// Load reads a .env file from the working directory if present, then the
// config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DBPath returns the database path from env var, config or the data dir, in
// that order.
func DBPath(cfg Config) string {
	if p := os.Getenv(EnvDB); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "moneyplan.db")
}

// ServerAddr returns the API listen address from env var or config.
func ServerAddr(cfg Config) string {
	if addr := os.Getenv(EnvAddr); addr != "" {
		return addr
	}
	if cfg.Server.Addr != "" {
		return cfg.Server.Addr
	}
	return DefaultConfig().Server.Addr
}
