package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hperssn/buildcalc/internal/config"
	"github.com/hperssn/buildcalc/internal/logging"
	"github.com/hperssn/buildcalc/internal/metrics"
	"github.com/hperssn/buildcalc/internal/storage"
)

var configPath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "buildcalc",
		Short:        "Construction cost estimate service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML settings file (environment variables override it)")

	root.AddCommand(serveCmd(), configCmd())
	return root
}

// env is what every command needs: settings, a logger and the store.
type env struct {
	cfg   *config.Config
	store storage.ConfigStore
}

func setup(cmd *cobra.Command, recorder metrics.Recorder) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	cmd.SetContext(logging.WithLogger(cmd.Context(), log))

	store, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN,
		storage.WithLogger(log), storage.WithRecorder(recorder))
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	return &env{cfg: cfg, store: store}, nil
}
