package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "calendo"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "calendo.db"
	DefaultLogName        = "calendo.log"
	DefaultDriver         = "sqlite"
	envConfigPath         = "CALENDO_CONFIG"
)

type Keymap struct {
	Quit        string `toml:"quit"`
	Add         string `toml:"add"`
	Edit        string `toml:"edit"`
	Delete      string `toml:"delete"`
	Toggle      string `toml:"toggle"`
	Search      string `toml:"search"`
	CycleStatus string `toml:"cycle_status"`
	ShowAll     string `toml:"show_all"`
	Today       string `toml:"today"`
	PrevMonth   string `toml:"prev_month"`
	NextMonth   string `toml:"next_month"`
	Left        string `toml:"left"`
	Right       string `toml:"right"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	Focus       string `toml:"focus"`
	Confirm     string `toml:"confirm"`
	Cancel      string `toml:"cancel"`
}

type Config struct {
	Driver        string `toml:"driver" env:"CALENDO_DRIVER"`
	DBPath        string `toml:"db_path" env:"CALENDO_DB_PATH"`
	DSN           string `toml:"dsn" env:"CALENDO_DSN"`
	LogLevel      string `toml:"log_level" env:"CALENDO_LOG_LEVEL"`
	LogFile       string `toml:"log_file" env:"CALENDO_LOG_FILE"`
	DefaultFilter string `toml:"default_filter"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath honours CALENDO_CONFIG, then the user config dir, then
// the working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(envConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// LoadOrCreate reads path, writing a default config there on first launch.
// Environment variables override whatever the file says.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, applyEnv(&cfg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	fillDefaults(&cfg, filepath.Dir(path))
	return cfg, applyEnv(&cfg)
}

func applyEnv(cfg *Config) error {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fillDefaults(cfg *Config, dir string) {
	def := defaultConfig(dir)
	if cfg.Driver == "" {
		cfg.Driver = def.Driver
	}
	if cfg.DBPath == "" {
		cfg.DBPath = def.DBPath
	}
	if cfg.LogFile == "" {
		cfg.LogFile = def.LogFile
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.DefaultFilter == "" {
		cfg.DefaultFilter = def.DefaultFilter
	}
	fillKeys(&cfg.Keys, def.Keys)
}

func fillKeys(k *Keymap, def Keymap) {
	pairs := []struct {
		dst *string
		val string
	}{
		{&k.Quit, def.Quit}, {&k.Add, def.Add}, {&k.Edit, def.Edit},
		{&k.Delete, def.Delete}, {&k.Toggle, def.Toggle}, {&k.Search, def.Search},
		{&k.CycleStatus, def.CycleStatus}, {&k.ShowAll, def.ShowAll}, {&k.Today, def.Today},
		{&k.PrevMonth, def.PrevMonth}, {&k.NextMonth, def.NextMonth},
		{&k.Left, def.Left}, {&k.Right, def.Right}, {&k.Up, def.Up}, {&k.Down, def.Down},
		{&k.Focus, def.Focus}, {&k.Confirm, def.Confirm}, {&k.Cancel, def.Cancel},
	}
	for _, p := range pairs {
		if *p.dst == "" {
			*p.dst = p.val
		}
	}
}

func defaultConfig(dir string) Config {
	return Config{
		Driver:        DefaultDriver,
		DBPath:        filepath.Join(dir, DefaultDBName),
		LogLevel:      "info",
		LogFile:       filepath.Join(dir, DefaultLogName),
		DefaultFilter: "all",
		Keys:          DefaultKeymap(),
	}
}

func DefaultKeymap() Keymap {
	return Keymap{
		Quit:        "q",
		Add:         "a",
		Edit:        "e",
		Delete:      "d",
		Toggle:      " ",
		Search:      "/",
		CycleStatus: "f",
		ShowAll:     "A",
		Today:       "t",
		PrevMonth:   "[",
		NextMonth:   "]",
		Left:        "h",
		Right:       "l",
		Up:          "k",
		Down:        "j",
		Focus:       "tab",
		Confirm:     "enter",
		Cancel:      "esc",
	}
}
