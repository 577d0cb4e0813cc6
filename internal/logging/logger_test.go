package logging

import (
	"bytes"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, pterm.LogLevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, pterm.LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, pterm.LogLevelDisabled, ParseLevel("off"))
	assert.Equal(t, pterm.LogLevelInfo, ParseLevel("nonsense"))
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "info", "json")
	l.Info("step done", l.Args("step", "GetCart"))
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `"step":"GetCart"`)
	assert.NotContains(t, out, "hidden")
}
