package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// NewLogger builds the structured logger used across the CLI.
// level is one of trace, debug, info, warn, error; format "json" switches the
// formatter, anything else keeps the colored console output.
func NewLogger(w io.Writer, level, format string) *pterm.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := pterm.DefaultLogger.
		WithWriter(w).
		WithLevel(ParseLevel(level)).
		WithTime(true)
	if strings.EqualFold(format, "json") {
		l = l.WithFormatter(pterm.LogFormatterJSON)
	}
	return l
}

// Discard returns a logger that drops everything; tests use it.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.WithWriter(io.Discard).WithLevel(pterm.LogLevelDisabled)
}

// ParseLevel maps a textual level to pterm's; unknown values mean info.
func ParseLevel(s string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}
