// Package cli wires config, logging, the store and the controller behind
// cobra commands. With no subcommand the TUI starts.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"calendo/internal/config"
	"calendo/internal/controller"
	"calendo/internal/logging"
	"calendo/internal/storage"
	"calendo/internal/ui"
)

type App struct {
	ConfigPath string
	DB         string
	Driver     string
	LogLevel   string
}

// session is everything one command invocation needs.
type session struct {
	cfg         config.Config
	configPath  string
	firstLaunch bool
	log         *log.Logger
	store       *storage.Store
	logFile     io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          config.AppName,
		Short:        "Calendar-driven todo list (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive calendar
  calendo

  # Add a todo for a day
  calendo add "Dentist" --date 2024-03-05 --priority high

  # Search across every day
  calendo search road trip from:2024-03-01 status:open
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config.toml (default: $CALENDO_CONFIG or the user config dir)")
	cmd.PersistentFlags().StringVar(&app.DB, "db", "", "Database file (sqlite) or DSN (pgx, postgres)")
	cmd.PersistentFlags().StringVar(&app.Driver, "driver", "", "Database driver: sqlite, pgx or postgres")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDayCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newCalendarCmd(app))
	cmd.AddCommand(newDoneCmd(app, true))
	cmd.AddCommand(newDoneCmd(app, false))
	cmd.AddCommand(newRmCmd(app))
	return cmd
}

func runTUI(app *App) error {
	s, err := app.open()
	if err != nil {
		return err
	}
	defer s.Close()

	status := ""
	if s.firstLaunch {
		status = fmt.Sprintf("Created config at %s. Press 'a' to add your first todo.", s.configPath)
	}
	ctrl := controller.New(s.store, controller.WithLogger(s.log))
	return ui.Run(ctrl, s.store, s.cfg, status)
}

// open resolves config, then applies flags over it. Flags beat env, env
// beats the file.
func (app *App) open() (*session, error) {
	path := app.ConfigPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	firstLaunch := false
	if _, err := os.Stat(path); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	app.applyFlags(&cfg)

	logger, logFile, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storage.Options{
		Driver: cfg.Driver,
		Path:   cfg.DBPath,
		DSN:    cfg.DSN,
		Logger: logger,
	})
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("session opened", "config", path, "driver", cfg.Driver)
	return &session{
		cfg:         cfg,
		configPath:  path,
		firstLaunch: firstLaunch,
		log:         logger,
		store:       store,
		logFile:     logFile,
	}, nil
}

func (app *App) applyFlags(cfg *config.Config) {
	if app.Driver != "" {
		cfg.Driver = app.Driver
	}
	if app.LogLevel != "" {
		cfg.LogLevel = app.LogLevel
	}
	if app.DB != "" {
		if cfg.Driver == "" || cfg.Driver == config.DefaultDriver {
			cfg.DBPath = app.DB
			cfg.DSN = ""
		} else {
			cfg.DSN = app.DB
		}
	}
}

func (s *session) Close() error {
	err := s.store.Close()
	if cerr := s.logFile.Close(); err == nil {
		err = cerr
	}
	return err
}
