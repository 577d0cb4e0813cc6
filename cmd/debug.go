package cmd

import (
	"errors"
	"fmt"
	"time"

	"tixload/cli/internal/backend"
	"tixload/cli/internal/checkout"
	apperr "tixload/cli/internal/errors"
	"tixload/cli/internal/httperrors"
	"tixload/cli/internal/logging"
	"tixload/cli/internal/metrics"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var debugNoPacing bool

// debugCmd runs a single purchase flow with full request logging.
var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Run one purchase flow and log every request",
	Long: `debug runs the purchase flow once with trace logging, so each response status,
body and header is printed. Use it to check an environment before a load test.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cfg.LogLevel = "trace"
		log := newLogger(cfg, true)

		pterm.DefaultSection.Println("Configuration")
		printConfig(cfg)

		var pacing checkout.Pacing
		if !debugNoPacing {
			pacing = checkout.DefaultPacing()
		}
		client := backend.NewHTTPClient(cfg)
		flow := checkout.NewFlow(backend.New(cfg, client), backend.NewSeatMap(cfg, client), cfg,
			metrics.Discard{}, log, checkout.WithPacing(pacing))

		pterm.DefaultSection.Println("Purchase flow")
		res := flow.Run(cmd.Context())

		printSteps(res)
		printSession(res.Session)

		if res.Session.ProcessorID == checkout.DefaultProcessorID && !res.Called(checkout.StepPaymentSetup) {
			pterm.Warning.Println("The cart had no payment processor; payment setup and confirmation were skipped.")
		}
		if res.OK() {
			pterm.Success.Printf("Purchase completed in %s\n", res.Duration.Round(time.Millisecond))
			return nil
		}
		if ctxErr := cmd.Context().Err(); ctxErr != nil && errors.Is(res.Err, ctxErr) {
			pterm.Warning.Println("Interrupted.")
			return nil
		}

		failed, ok := res.Failed()
		name := "purchase flow"
		if ok {
			name = string(failed.Step)
		}
		if apperr.KindOf(res.Err) == apperr.Transport {
			target := cfg.BaseURL
			if failed.Step == checkout.StepCreateHoldToken || failed.Step == checkout.StepHoldSeat {
				target = cfg.SeatsIOURL
			}
			httperrors.Print(res.Err, "calling "+name, target)
		} else {
			pterm.Println(logging.FormatFlowError(name, res.Err))
			pterm.Println()
		}
		if checkout.IsAborted(res.Err) {
			return fmt.Errorf("purchase flow aborted at %s", name)
		}
		return fmt.Errorf("purchase flow finished with errors")
	},
}

func printSteps(res checkout.Result) {
	rows := [][]string{{"Step", "Status", "Time", "Outcome"}}
	for _, st := range res.Steps {
		status := "-"
		if st.Status != 0 {
			status = fmt.Sprint(st.Status)
		}
		outcome := string(st.Outcome)
		switch st.Outcome {
		case checkout.OutcomeOK:
			outcome = pterm.Green(outcome)
		case checkout.OutcomeFailed:
			outcome = pterm.Red(outcome)
		default:
			outcome = pterm.Gray(outcome)
		}
		rows = append(rows, []string{string(st.Step), status, st.Duration.Round(time.Millisecond).String(), outcome})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	pterm.Println()
}

func printSession(s checkout.Session) {
	items := []struct{ k, v string }{
		{"hold token", s.HoldToken},
		{"workspace", s.WorkspaceID},
		{"cart", s.CartID},
		{"processor", s.ProcessorID},
		{"event", s.EventID},
		{"order", s.OrderNumber},
		{"qr code", s.QRCode},
	}
	for _, it := range items {
		v := it.v
		if v == "" {
			v = pterm.Gray("absent")
		}
		pterm.Printf("  %-11s %s\n", it.k, v)
	}
	pterm.Println()
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.Flags().BoolVar(&debugNoPacing, "no-pacing", false, "Skip the pauses between checkout steps")
}
