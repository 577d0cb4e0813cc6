// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"tixload/cli/internal/keychain"
	"tixload/cli/internal/logging"
	"tixload/cli/internal/results"
	"tixload/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var keySetDSN bool

// keyCmd groups the commands that manage secrets in the OS keychain.
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the seat-map API key and results DSN in the OS keychain",
	Long: `Secrets never go to the config file. They come from SEATS_IO_KEY and
TIXLOAD_RESULTS_DSN, or from the OS keychain when those variables are unset.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the seat-map API key, or the results DSN with --dsn",
	RunE: func(cmd *cobra.Command, args []string) error {
		label := "Seat-map API key"
		if keySetDSN {
			label = "Results database DSN"
		}
		value, err := readSecretValue(label)
		if err != nil {
			return err
		}
		if value == "" {
			return errors.New("nothing entered")
		}

		km, err := keychain.GetManager()
		if err != nil {
			return fmt.Errorf("open keychain: %w", err)
		}
		if keySetDSN {
			if _, err := results.NormalizeDSN(value); err != nil {
				return err
			}
			if err := km.SaveResultsDSN(value); err != nil {
				return err
			}
			pterm.Success.Println("Results DSN saved to the keychain.")
			return nil
		}
		if err := km.SaveSeatsIOKey(value); err != nil {
			return err
		}
		pterm.Success.Println("Seat-map API key saved to the keychain.")
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored secrets, masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return fmt.Errorf("open keychain: %w", err)
		}
		show := func(name string, load func() (string, error), mask func(string) string) error {
			v, err := load()
			switch {
			case errors.Is(err, keychain.ErrNotFound):
				pterm.Printf("%-18s %s\n", name, pterm.Gray("not stored"))
			case err != nil:
				return err
			default:
				pterm.Printf("%-18s %s\n", name, mask(v))
			}
			return nil
		}
		if err := show("seat-map API key", km.LoadSeatsIOKey, logging.MaskSecret); err != nil {
			return err
		}
		return show("results DSN", km.LoadResultsDSN, logging.Mask)
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every tixload secret from the keychain",
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return fmt.Errorf("open keychain: %w", err)
		}
		if err := km.ClearAll(); err != nil {
			return err
		}
		pterm.Success.Println("Keychain entries removed.")
		return nil
	},
}

// readSecretValue prompts without echo on a terminal and reads one line from
// stdin otherwise, so values can be piped in.
func readSecretValue(label string) (string, error) {
	if !terminal.IsInputInteractive() {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read %s from stdin: %w", strings.ToLower(label), err)
		}
		return strings.TrimSpace(line), nil
	}
	prompt := label + ": "
	fmt.Print(prompt)
	v, err := terminal.ReadSecret()
	fmt.Println()
	terminal.ClearPreviousLines(len(prompt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd, keyShowCmd, keyClearCmd)
	keySetCmd.Flags().BoolVar(&keySetDSN, "dsn", false, "Store the results database DSN instead of the API key")
}
