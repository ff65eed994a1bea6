package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"spikejump/internal/config"
	"spikejump/internal/logging"
	"spikejump/internal/platform"
	"spikejump/internal/storage"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spikejumpctl",
		Short: "Run and inspect spike-jump lane sessions",
		Long: `spikejumpctl runs batches of neural jumpers along a spike lane,
persists the session results and reports the best high scores.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug or trace")
	rootCmd.PersistentFlags().String("store", "", "Store backend: memory or sqlite")
	rootCmd.PersistentFlags().String("store-path", "", "SQLite database path")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newWatchCmd(),
		newSessionsCmd(),
		newBestCmd(),
		newRunsCmd(),
		newGenomeCmd(),
	)
	return rootCmd
}

// loadConfig resolves defaults, the config file, env overrides and finally
// the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store.Kind = v
	}
	if v, _ := cmd.Flags().GetString("store-path"); v != "" {
		cfg.Store.Path = v
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.NewLoggerWithFormat(cfg.Logging.Level, cfg.Logging.Format, w)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	store, err := storage.NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, fmt.Errorf("init %s store: %w", cfg.Store.Kind, err)
	}
	return store, nil
}

func startPolis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*platform.Polis, func(), error) {
	store, err := storage.NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	p := platform.NewPolis(platform.Config{Store: store, Logger: logger})
	if err := p.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, nil, err
	}
	cleanup := func() {
		p.Stop()
		_ = storage.CloseIfSupported(store)
	}
	return p, cleanup, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
