package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"tixload/cli/internal/config"
	"tixload/cli/internal/loadrun"
	"tixload/cli/internal/metrics"
	"tixload/cli/internal/results"
	"tixload/cli/internal/scenario"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var resultsLimit int

var errNoResultsDSN = errors.New("no results database configured; set TIXLOAD_RESULTS_DSN or run 'tixload key set --dsn'")

// resultsCmd lists stored run summaries.
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List recent runs stored with --save",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.ResultsDSN == "" {
			return errNoResultsDSN
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		store, err := results.Open(ctx, cfg.ResultsDSN)
		if err != nil {
			return fmt.Errorf("results database: %w", err)
		}
		defer store.Close()

		runs, err := store.Recent(ctx, resultsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			pterm.Info.Println("No runs stored yet.")
			return nil
		}

		rows := [][]string{{"Started", "Scenario", "VUs", "Iterations", "Failed", "Error rate", "Mean flow", "Target"}}
		for _, r := range runs {
			rows = append(rows, []string{
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				r.Scenario,
				fmt.Sprint(r.VUs),
				fmt.Sprint(r.Iterations),
				fmt.Sprint(r.Failed),
				fmt.Sprintf("%.2f%%", r.ErrorRate()*100),
				r.MeanFlow.Round(time.Millisecond).String(),
				r.BaseURL,
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

// saveRun stores the summary of a finished run.
func saveRun(ctx context.Context, cfg config.Config, p scenario.Profile, rep loadrun.Report, snap metrics.Snapshot) error {
	if cfg.ResultsDSN == "" {
		return errNoResultsDSN
	}
	stop := startInlineSpinner(os.Stdout, "Saving run summary", spinnerFrames, 120*time.Millisecond)
	defer stop()

	store, err := results.Open(ctx, cfg.ResultsDSN)
	if err != nil {
		return fmt.Errorf("results database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	sum := results.NewRunSummary(profileLabel(p), cfg.BaseURL, cfg.EventID, p.VUs, rep, snap)
	if err := store.Save(ctx, sum); err != nil {
		return err
	}
	stop()
	pterm.Success.Printf("Saved run %s\n", sum.ID)
	return nil
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.Flags().IntVarP(&resultsLimit, "limit", "n", 10, "Number of runs to show")
}
