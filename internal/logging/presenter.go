// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	apperr "tixload/cli/internal/errors"

	"github.com/pterm/pterm"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatFlowError explains a failed checkout step in a user-friendly way.
func FormatFlowError(step string, err error) string {
	var b strings.Builder

	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("%s failed", step))
	b.WriteString("\n\n")

	switch apperr.KindOf(err) {
	case apperr.Transport:
		b.WriteString("The request never got a response.\n")
		b.WriteString("This usually happens when:\n")
		b.WriteString("  • BASE_URL or SEATS_IO_URL points to the wrong host\n")
		b.WriteString("  • The API is down or rejecting connections\n")
		b.WriteString("  • The HTTP timeout is shorter than the server's response time\n")
	case apperr.UnexpectedStatus:
		b.WriteString("The API answered with an unexpected status code.\n")
		b.WriteString("Check that:\n")
		b.WriteString("  • APP_ID, APP_CHANNEL_SF and APP_BUSINESS match the target environment\n")
		b.WriteString("  • EVENT_ID exists and still has the configured seat available\n")
		b.WriteString("  • The seat-map API key belongs to the same workspace\n")
	case apperr.Decode:
		b.WriteString("The response body did not have the expected shape.\n")
	case apperr.MissingDependency:
		b.WriteString("A previous step did not produce an identifier this step needs.\n")
	default:
		b.WriteString("The flow stopped unexpectedly.\n")
	}

	if err != nil {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}
	return b.String()
}
