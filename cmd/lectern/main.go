package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"lectern/internal/bootstrap"
	"lectern/internal/platform/config"
	"lectern/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "lectern",
		Short:         "Read library books from the terminal and keep your place",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory for config, session state and caches")

	root.AddCommand(newLoginCmd(&dataDir))
	root.AddCommand(newLogoutCmd(&dataDir))
	root.AddCommand(newWhoAmICmd(&dataDir))
	root.AddCommand(newStatusCmd(&dataDir))
	root.AddCommand(newRegisterCmd(&dataDir))
	root.AddCommand(newBooksCmd(&dataDir))
	root.AddCommand(newReadCmd(&dataDir))
	root.AddCommand(newStatsCmd(&dataDir))
	root.AddCommand(newReadingCmd(&dataDir))
	root.AddCommand(newTUICmd(&dataDir))
	return root
}

func defaultDataDir() string {
	if dir := os.Getenv("LECTERN_DATA_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "lectern")
	}
	return ".lectern"
}

func loadConfig(dataDir string) (config.Config, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, fmt.Errorf("create data dir: %w", err)
	}
	return config.New(dataDir)
}

// withApp wires the application with logs on stderr, runs fn and releases the
// app afterwards.
func withApp(cmd *cobra.Command, dataDir string, fn func(context.Context, *bootstrap.App) error) error {
	cfg, err := loadConfig(dataDir)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg, logging.New(cmd.ErrOrStderr(), cfg.Log.Level))
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(cmd.Context(), app)
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the catalog and read in the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*dataDir)
			if err != nil {
				return err
			}
			logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()

			app, err := bootstrap.New(cfg, logging.New(logFile, cfg.Log.Level))
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(cmd.Context(), app)
		},
	}
}
