package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if Exists() {
		t.Fatal("Exists() = true before any save")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Budget.DefaultAlertThreshold != 80 || cfg.Budget.DefaultPeriod != "monthly" {
		t.Fatalf("budget defaults = %+v", cfg.Budget)
	}
	if !cfg.Streak.ShowBadge {
		t.Fatal("ShowBadge default = false, want true")
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Fatalf("theme = %q, want flexoki-dark", cfg.Appearance.Theme)
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Streak.ShowBadge = false
	cfg.Budget.DefaultPeriod = "weekly"
	cfg.Server.Addr = "127.0.0.1:9999"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Streak.ShowBadge || got.Budget.DefaultPeriod != "weekly" || got.Server.Addr != "127.0.0.1:9999" {
		t.Fatalf("loaded = %+v", got)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "moneyplan", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[appearance]\ntheme = \"catppuccin-mocha\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Appearance.Theme != "catppuccin-mocha" {
		t.Fatalf("theme = %q", cfg.Appearance.Theme)
	}
	if cfg.Budget.DefaultAlertThreshold != 80 {
		t.Fatalf("alert threshold = %v, want default 80", cfg.Budget.DefaultAlertThreshold)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "moneyplan", "config.toml")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte("[budget\n"), 0o600)

	if _, err := Load(); err == nil {
		t.Fatal("Load of malformed TOML returned nil error")
	}
}

func TestDBPath_Precedence(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	t.Setenv(EnvDB, "")

	cfg := DefaultConfig()
	if got, want := DBPath(cfg), filepath.Join(data, "moneyplan", "moneyplan.db"); got != want {
		t.Fatalf("DBPath default = %q, want %q", got, want)
	}

	cfg.General.DBPath = "/srv/budget.db"
	if got := DBPath(cfg); got != "/srv/budget.db" {
		t.Fatalf("DBPath config = %q", got)
	}

	t.Setenv(EnvDB, "/tmp/override.db")
	if got := DBPath(cfg); got != "/tmp/override.db" {
		t.Fatalf("DBPath env = %q", got)
	}
}

func TestServerAddr_EnvOverride(t *testing.T) {
	t.Setenv(EnvAddr, "")
	cfg := DefaultConfig()
	if got := ServerAddr(cfg); got != "127.0.0.1:8787" {
		t.Fatalf("ServerAddr = %q", got)
	}
	t.Setenv(EnvAddr, ":9000")
	if got := ServerAddr(cfg); got != ":9000" {
		t.Fatalf("ServerAddr env = %q", got)
	}
}
