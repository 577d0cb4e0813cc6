// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface of tixload, a load generator
// for the ticket checkout API. It wires configuration, the API clients, the
// virtual user runner and the terminal UI together using the Cobra framework.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tixload/cli/internal/logging"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tixload",
	Short: "Load testing for the ticket checkout API",
	Long: `tixload drives the ticket checkout API with simulated buyers. Each buyer holds a
seat, builds a cart, fills in purchaser details, pays with a sandbox card and reads
back the order and its QR code, while tixload records per-step errors and timings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("tixload %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application. Ctrl-C cancels the command context so a
// running load test stops its virtual users and still prints its report.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("Error", err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
}
