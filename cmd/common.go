package cmd

import (
	"errors"
	"os"
	"strings"

	"tixload/cli/internal/config"
	"tixload/cli/internal/keychain"
	"tixload/cli/internal/logging"

	"github.com/pterm/pterm"
)

// loadConfig returns the effective configuration. Secrets not provided by the
// environment are taken from the OS keychain when one is available.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	applyKeychain(&cfg, os.Getenv)
	return cfg, nil
}

func applyKeychain(cfg *config.Config, getenv func(string) string) {
	needKey := strings.TrimSpace(getenv("SEATS_IO_KEY")) == ""
	needDSN := strings.TrimSpace(getenv("TIXLOAD_RESULTS_DSN")) == ""
	if !needKey && !needDSN {
		return
	}
	km, err := keychain.GetManager()
	if err != nil {
		return
	}
	if needKey {
		if v, err := km.LoadSeatsIOKey(); err == nil && v != "" {
			cfg.SeatsIOKey = v
		}
	}
	if needDSN {
		if v, err := km.LoadResultsDSN(); err == nil && v != "" {
			cfg.ResultsDSN = v
		} else if err != nil && !errors.Is(err, keychain.ErrNotFound) {
			pterm.Debug.Printf("keychain: %v\n", err)
		}
	}
}

// newLogger builds the logger for a command. verbose forces at least debug.
func newLogger(cfg config.Config, verbose bool) *pterm.Logger {
	level := cfg.LogLevel
	if verbose && logging.ParseLevel(level) > pterm.LogLevelDebug {
		level = "debug"
	}
	return logging.NewLogger(os.Stderr, level, cfg.LogFormat)
}
