package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseRunFlags binds the run flags to a fresh command, which also resets
// the package-level flag values to their defaults.
func parseRunFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "run"}
	f := c.Flags()
	f.StringVarP(&runScenario, "scenario", "s", "purchase", "")
	f.StringVarP(&runFile, "file", "f", "", "")
	f.IntVar(&runVUs, "vus", 0, "")
	f.DurationVarP(&runDuration, "duration", "d", 0, "")
	f.IntVarP(&runIterations, "iterations", "i", 0, "")
	require.NoError(t, f.Parse(args))
	return c
}

func TestResolveProfileBuiltIn(t *testing.T) {
	p, err := resolveProfile(parseRunFlags(t, "--scenario", "smoke"))
	require.NoError(t, err)
	assert.Equal(t, "smoke", p.Name)
	assert.Equal(t, 1, p.VUs)
	assert.Equal(t, 30*time.Second, p.Duration)
}

func TestResolveProfileOverrides(t *testing.T) {
	p, err := resolveProfile(parseRunFlags(t, "--scenario", "stress", "--vus", "7", "--duration", "45s"))
	require.NoError(t, err)
	assert.Equal(t, 7, p.VUs)
	assert.Equal(t, 45*time.Second, p.Duration)
	assert.Equal(t, 0.1, p.MaxErrorRate)
}

func TestResolveProfileIterationsReplaceDuration(t *testing.T) {
	p, err := resolveProfile(parseRunFlags(t, "--scenario", "purchase", "--iterations", "3"))
	require.NoError(t, err)
	assert.Equal(t, 3, p.Iterations)
	assert.Zero(t, p.Duration)
	assert.Equal(t, "3 iterations each", describeBounds(p))
}

func TestResolveProfileUnknownScenario(t *testing.T) {
	_, err := resolveProfile(parseRunFlags(t, "--scenario", "checkout-storm"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkout-storm")
}

func TestResolveProfileFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rush.yaml")
	body := "name: evening-rush\nscenario: spike\nvus: 40\nduration: 2m\nmax_error_rate: 0.05\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	p, err := resolveProfile(parseRunFlags(t, "--file", path, "--vus", "5"))
	require.NoError(t, err)
	assert.Equal(t, "evening-rush", p.Name)
	assert.Equal(t, "spike", p.Body())
	assert.Equal(t, 5, p.VUs)
	assert.Equal(t, "for 2m0s", describeBounds(p))
}
