// Package cli wires the cobra commands for the bucketsync binary.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nrollins/bucketsync/internal/config"
	"github.com/nrollins/bucketsync/internal/logger"
	"github.com/nrollins/bucketsync/internal/service"
)

// GlobalFlags holds flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	LogFile    string
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags registers the shared flags on the root command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "config file path (default: search standard locations)")
	cmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&globalFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "write logs to file")
	cmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "suppress console log output")
}

// loadConfig loads config and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(globalFlags.ConfigPath)
	if err != nil {
		return nil, err
	}

	if globalFlags.LogLevel != "" {
		cfg.Log.Level = globalFlags.LogLevel
	}
	if globalFlags.LogFormat != "" {
		cfg.Log.Format = globalFlags.LogFormat
	}
	if globalFlags.LogFile != "" {
		cfg.Log.File = globalFlags.LogFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogger initializes the global logger from config.
func initLogger(cfg *config.Config) error {
	return logger.Init(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		Quiet:  globalFlags.Quiet,
		File: logger.FileConfig{
			Enabled:    cfg.Log.File != "",
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.FileMaxSizeMB,
			MaxAgeDays: cfg.Log.FileMaxAgeDays,
			MaxBackups: cfg.Log.FileMaxBackups,
			Compress:   cfg.Log.Compress,
		},
	})
}

// newService builds a sync service for a command run. The caller owns
// the returned service and the logger shutdown.
func newService(cmd *cobra.Command) (*service.SyncService, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := initLogger(cfg); err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := service.NewSyncService(ctx, cfg)
	if err != nil {
		logger.Shutdown()
		return nil, fmt.Errorf("failed to create sync service: %w", err)
	}
	return svc, nil
}
