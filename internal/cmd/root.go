// Package cmd wires the selcap command line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"selcap/internal/config"
	"selcap/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "selcap",
	Short: "Capital indicators for single-character selection changes",
	Long: `Selcap listens for selection changes from a host screen reader and, when
exactly one uppercase character was selected or unselected, announces it
with the host's capital indicators: a beep, a spoken "cap" prefix, or a
pitch shift. Every other selection change keeps the host's default
announcement.`,
}

var (
	cfgFile  string
	logLevel string
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default searches the user config dir and .)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// loadConfig resolves the effective configuration and a logger for it.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return cfg, logging.New(os.Stderr, level), nil
}
