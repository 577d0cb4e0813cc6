// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tixload/cli/internal/backend"
	"tixload/cli/internal/loadrun"
	"tixload/cli/internal/metrics"
	"tixload/cli/internal/progress"
	"tixload/cli/internal/scenario"
	"tixload/cli/internal/terminal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	runScenario    string
	runFile        string
	runVUs         int
	runDuration    time.Duration
	runIterations  int
	runMetricsAddr string
	runNoPacing    bool
	runSave        bool
	runVerbose     bool
)

// runCmd runs a load test.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a load test scenario",
	Long: `Run starts virtual users that repeat a scenario until the duration elapses or
each user has done its iterations.

Built-in scenarios:
  purchase  full checkout, hold to QR code
  smoke     one user checking the SDK endpoint responds
  stress    workspace lookup and cart creation under heavy load
  spike     burst of workspace lookups, only server errors count

A YAML profile (--file) can name its own VUs, duration, think time and error
rate threshold. Flags override the profile.`,
	Example: `  tixload run --scenario smoke
  tixload run --scenario purchase --vus 20 --duration 10m --metrics-addr :9464
  tixload run --file profiles/evening-rush.yaml --save`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		profile, err := resolveProfile(cmd)
		if err != nil {
			return err
		}
		sc, _ := scenario.Lookup(profile.Body())

		live := terminal.IsInteractive() && !runVerbose
		log := newLogger(cfg, runVerbose)
		if live {
			// per-flow info lines would scroll the live view away
			log = log.WithLevel(max(log.Level, pterm.LogLevelWarn))
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom := metrics.NewPrometheus(reg)
		summary := metrics.NewSummary()

		if runMetricsAddr != "" {
			go func() {
				if err := metrics.Serve(ctx, runMetricsAddr, reg); err != nil {
					log.Error("metrics endpoint stopped", log.Args("addr", runMetricsAddr, "error", err.Error()))
				}
			}()
			log.Info("serving metrics", log.Args("addr", runMetricsAddr, "path", "/metrics"))
		}

		client := backend.NewHTTPClient(cfg)
		iterate := sc.Iteration(scenario.Deps{
			Store:    backend.New(cfg, client),
			Seats:    backend.NewSeatMap(cfg, client),
			Config:   cfg,
			Recorder: metrics.Multi{prom, summary},
			Log:      log,
			Pacing:   !runNoPacing,
		})

		runner := &loadrun.Runner{Plan: profile.Plan(), Iterate: iterate, Active: prom.ActiveVUs}

		pterm.DefaultSection.Printf("%s: %s", profileLabel(profile), sc.Description)
		pterm.Printf("%d VUs, %s against %s\n\n", profile.VUs, describeBounds(profile), cfg.BaseURL)

		var board *progress.Board
		if live {
			board = &progress.Board{Scenario: profileLabel(profile), VUs: profile.VUs, Duration: profile.Duration, Snapshot: summary.Snapshot}
			runner.OnIteration = board.Observe
			if err := board.Start(250 * time.Millisecond); err != nil {
				board = nil
			}
		}

		rep, runErr := runner.Run(ctx)
		if board != nil {
			board.Stop()
		}
		interrupted := errors.Is(runErr, context.Canceled)
		if runErr != nil && !interrupted {
			return runErr
		}

		snap := summary.Snapshot()
		printReport(rep, snap)
		if interrupted {
			pterm.Warning.Println("Interrupted, the report covers the iterations finished so far.")
		}

		if runSave {
			// the run context is already cancelled after Ctrl-C
			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			if err := saveRun(saveCtx, cfg, profile, rep, snap); err != nil {
				return err
			}
		}

		if profile.Exceeded(snap.ErrorRate()) {
			return fmt.Errorf("step error rate %.2f%% exceeds the %s threshold of %.2f%%",
				snap.ErrorRate()*100, profileLabel(profile), profile.MaxErrorRate*100)
		}
		return nil
	},
}

// resolveProfile picks the profile from --file or --scenario and applies the
// flags the user set explicitly.
func resolveProfile(cmd *cobra.Command) (scenario.Profile, error) {
	var profile scenario.Profile
	if runFile != "" {
		p, err := scenario.LoadProfile(runFile)
		if err != nil {
			return p, err
		}
		profile = p
	} else {
		sc, ok := scenario.Lookup(runScenario)
		if !ok {
			return profile, fmt.Errorf("unknown scenario %q, choose one of %v", runScenario, scenario.Names())
		}
		profile = sc.Profile
	}

	flags := cmd.Flags()
	if flags.Changed("vus") {
		profile.VUs = runVUs
	}
	if flags.Changed("iterations") {
		profile.Iterations = runIterations
		if !flags.Changed("duration") {
			// an explicit iteration budget replaces the default duration
			profile.Duration = 0
		}
	}
	if flags.Changed("duration") {
		profile.Duration = runDuration
	}
	return profile, profile.Validate()
}

func profileLabel(p scenario.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Body()
}

func describeBounds(p scenario.Profile) string {
	switch {
	case p.Duration > 0 && p.Iterations > 0:
		return fmt.Sprintf("up to %d iterations each within %s", p.Iterations, p.Duration)
	case p.Iterations > 0:
		return fmt.Sprintf("%d iterations each", p.Iterations)
	default:
		return "for " + p.Duration.String()
	}
}

func printReport(rep loadrun.Report, snap metrics.Snapshot) {
	rows := [][]string{{"Step", "Samples", "Errors", "Error rate"}}
	for _, st := range snap.Steps {
		rows = append(rows, []string{
			st.Name,
			fmt.Sprint(st.Total),
			fmt.Sprint(st.Errors),
			fmt.Sprintf("%.1f%%", st.ErrorRate()*100),
		})
	}
	if len(rows) > 1 {
		_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		pterm.Println()
	}

	pterm.Printf("iterations   %d (%d failed) in %s\n", rep.Iterations, rep.Failed, rep.Elapsed.Round(time.Millisecond))
	pterm.Printf("error rate   %.2f%% of %d step samples\n", snap.ErrorRate()*100, snap.StepSamples)
	if ok := snap.Flows - snap.Failures; ok > 0 {
		pterm.Printf("successful   %d, mean %s, max %s\n", ok, snap.MeanFlow.Round(time.Millisecond), snap.MaxFlow.Round(time.Millisecond))
	}
	for _, st := range snap.WorstSteps(3) {
		pterm.Printf("%s %s failed %d times\n", pterm.Red("✗"), st.Name, st.Errors)
	}
	pterm.Println()
}

func init() {
	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()
	f.StringVarP(&runScenario, "scenario", "s", "purchase", "Built-in scenario to run")
	f.StringVarP(&runFile, "file", "f", "", "YAML load profile; overrides --scenario")
	f.IntVar(&runVUs, "vus", 0, "Number of virtual users")
	f.DurationVarP(&runDuration, "duration", "d", 0, "How long to run, e.g. 30s or 10m")
	f.IntVarP(&runIterations, "iterations", "i", 0, "Iterations per virtual user")
	f.StringVar(&runMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9464")
	f.BoolVar(&runNoPacing, "no-pacing", false, "Skip the pauses between checkout steps")
	f.BoolVar(&runSave, "save", false, "Store the run summary in the results database")
	f.BoolVarP(&runVerbose, "verbose", "v", false, "Log every response; disables the live view")
	runCmd.MarkFlagsMutuallyExclusive("scenario", "file")
}
