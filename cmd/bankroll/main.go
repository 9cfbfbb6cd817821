package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/newthinker/bankroll/internal/config"
	"github.com/newthinker/bankroll/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	debug    bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "bankroll",
	Short: "bankroll - trade-ledger equity simulator",
	Long: `bankroll replays closed trades from per-symbol trade logs through a simulated
account with compounding, a concurrency cap and a loss-streak guard, and sweeps
capital-per-trade settings to compare ending equity and drawdown.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config when given, otherwise the defaults, and validates
// the result.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	if logLevel == "" {
		return logger.New(debug)
	}
	return logger.NewAtLevel(debug, logLevel)
}

// outputPath resolves a relative output file against output.dir and makes
// sure its directory exists.
func outputPath(cfg *config.Config, name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) && cfg.Output.Dir != "" {
		path = filepath.Join(cfg.Output.Dir, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return path, nil
}
