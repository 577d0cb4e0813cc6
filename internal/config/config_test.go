package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"), envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), c)
	require.NoError(t, c.Validate())
}

func TestLoadFromFileThenEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{
		"base_url": "https://file.example.com",
		"event_id": "evt-file",
		"http_timeout": "10s",
		"seat": {"object_id": "A 1"}
	}`), 0o600))

	c, err := LoadFrom(p, envMap(map[string]string{
		"EVENT_ID":             "evt-env",
		"SEATS_IO_KEY":         "key-env",
		"SEAT_IO_HOLD_TOKEN":   "pWA93eh3nJ",
		"TIXLOAD_HTTP_TIMEOUT": "2s",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.com", c.BaseURL)
	assert.Equal(t, "evt-env", c.EventID)
	assert.Equal(t, "key-env", c.SeatsIOKey)
	assert.Equal(t, "pWA93eh3nJ", c.HoldTokenOverride)
	assert.Equal(t, 2*time.Second, c.HTTPTimeout.Duration)
	assert.Equal(t, "A 1", c.Seat.ObjectID)
	// fields absent from the file keep their defaults
	assert.Equal(t, "StoreFront", c.AppChannel)
}

func TestLoadFromBadDuration(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "none.json"), envMap(map[string]string{
		"TIXLOAD_HTTP_TIMEOUT": "soon",
	}))
	require.Error(t, err)
}

func TestSaveToOmitsSecrets(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	c := Defaults()
	c.ResultsDSN = "postgres://u:p@localhost/db"
	c.HoldTokenOverride = "hold-4f2a91"
	require.NoError(t, SaveTo(p, c))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.NotContains(t, string(data), c.SeatsIOKey)
	assert.NotContains(t, string(data), "postgres://")
	assert.NotContains(t, string(data), "hold-4f2a91")
	assert.NotContains(t, string(data), "hold_token")
	assert.Contains(t, string(data), `"http_timeout": "30s"`)

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestValidate(t *testing.T) {
	c := Defaults()
	c.BaseURL = "not a url"
	assert.Error(t, c.Validate())

	c = Defaults()
	c.EventID = " "
	assert.ErrorContains(t, c.Validate(), "event_id")

	c = Defaults()
	c.HTTPTimeout = Duration{}
	assert.Error(t, c.Validate())
}
