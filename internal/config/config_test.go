package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreate_WritesDefaultsOnFirstLaunch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
	if cfg.Driver != DefaultDriver {
		t.Fatalf("driver: %q", cfg.Driver)
	}
	if cfg.DBPath != filepath.Join(dir, "nested", DefaultDBName) {
		t.Fatalf("db path: %q", cfg.DBPath)
	}
	if cfg.Keys.Search != "/" || cfg.Keys.Toggle != " " {
		t.Fatalf("unexpected keys: %+v", cfg.Keys)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again != cfg {
		t.Fatalf("reloaded config differs:\n%+v\n%+v", again, cfg)
	}
}

func TestLoadOrCreate_FillsBlanksFromDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	data := "db_path = \"/tmp/other.db\"\n\n[keys]\nquit = \"x\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Fatalf("db path: %q", cfg.DBPath)
	}
	if cfg.Keys.Quit != "x" {
		t.Fatalf("quit key: %q", cfg.Keys.Quit)
	}
	if cfg.Keys.Add != "a" || cfg.DefaultFilter != "all" || cfg.Driver != DefaultDriver {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
}

func TestLoadOrCreate_EnvOverrides(t *testing.T) {
	t.Setenv("CALENDO_DRIVER", "pgx")
	t.Setenv("CALENDO_DSN", "postgres://localhost/calendo")
	t.Setenv("CALENDO_LOG_LEVEL", "debug")

	cfg, err := LoadOrCreate(filepath.Join(t.TempDir(), DefaultConfigFileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver != "pgx" || cfg.DSN != "postgres://localhost/calendo" || cfg.LogLevel != "debug" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadOrCreate_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	if err := os.WriteFile(path, []byte("driver = "), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadOrCreate(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestResolveConfigPath_Env(t *testing.T) {
	t.Setenv(envConfigPath, "/etc/calendo.toml")
	if got := ResolveConfigPath(); got != "/etc/calendo.toml" {
		t.Fatalf("got %q", got)
	}
}
