package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/betonlab/mixopt/internal/config"
)

var (
	logLevel   string
	configPath string
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mixopt",
	Short: "Concrete mix design optimization",
	Long: `Mixopt searches for concrete formulations that minimize material cost
and embodied CO2 while meeting a target compressive strength, using an
evolutionary optimizer over a property-prediction oracle.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stderr, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
}

// loadConfig returns the merged configuration: built-in defaults, overlaid
// with the --config file when one was given.
func loadConfig() (*config.File, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}
