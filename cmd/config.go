package cmd

import (
	"fmt"

	"tixload/cli/internal/config"
	"tixload/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var configWrite bool

// configCmd prints the effective configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `config prints the settings a run would use after applying the config file,
the environment and the keychain. Secrets are masked.

With --write the non-secret settings are saved to the config file so later runs
no longer need the environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		printConfig(cfg)

		if !configWrite {
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		p, _ := config.Path()
		pterm.Success.Printf("Saved %s\n", p)
		return nil
	},
}

func printConfig(cfg config.Config) {
	secret := func(s string) string {
		if s == "" {
			return pterm.Gray("not set")
		}
		return logging.MaskSecret(s)
	}
	dsn := pterm.Gray("not set")
	if cfg.ResultsDSN != "" {
		dsn = logging.Mask(cfg.ResultsDSN)
	}
	hold := cfg.HoldTokenOverride
	if hold == "" {
		hold = pterm.Gray("created per flow")
	}

	rows := [][]string{
		{"Setting", "Value"},
		{"base_url", cfg.BaseURL},
		{"app_id", cfg.AppID},
		{"app_channel", cfg.AppChannel},
		{"app_business", cfg.AppBusiness},
		{"event_id", cfg.EventID},
		{"seats_io_url", cfg.SeatsIOURL},
		{"seats_io_key", secret(cfg.SeatsIOKey)},
		{"hold_token", hold},
		{"seat", fmt.Sprintf("%s (%s, %s)", cfg.Seat.ObjectID, cfg.Seat.ObjectType, cfg.Seat.CategoryLabel)},
		{"ticket_type", cfg.Seat.TicketType},
		{"http_timeout", cfg.HTTPTimeout.String()},
		{"slow_threshold", cfg.SlowThreshold.String()},
		{"log", cfg.LogLevel + " / " + cfg.LogFormat},
		{"results_dsn", dsn},
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	pterm.Println()
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configWrite, "write", false, "Save the effective non-secret settings to the config file")
}
