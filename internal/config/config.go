// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept in the file; the seat-map API key and the
// results DSN come from the environment or the OS keychain.
//
// Precedence, lowest first: Defaults, config file, environment, command flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tixload/cli/internal/xdg"
)

// Config holds everything a checkout flow needs to reach the remote services.
type Config struct {
	// BaseURL is the storefront API origin; requests go to BaseURL + "/sdk/request".
	BaseURL     string `json:"base_url"`
	AppID       string `json:"app_id"`
	AppChannel  string `json:"app_channel"`
	AppBusiness string `json:"app_business"`
	EventID     string `json:"event_id"`

	SeatsIOURL string `json:"seats_io_url"`
	// SeatsIOKey is the base64 basic-auth secret of the seat-map workspace.
	SeatsIOKey string `json:"-"`
	// HoldTokenOverride skips hold-token creation when set.
	HoldTokenOverride string `json:"-"`

	Seat SeatConfig `json:"seat"`

	HTTPTimeout   Duration `json:"http_timeout"`
	SlowThreshold Duration `json:"slow_threshold"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	ResultsDSN string `json:"-"`
}

// SeatConfig describes the seat every flow holds and puts in the cart.
type SeatConfig struct {
	ObjectID      string `json:"object_id"`
	TicketType    string `json:"ticket_type"`
	ObjectType    string `json:"object_type"`
	CategoryLabel string `json:"category_label"`
	CategoryKey   string `json:"category_key"`
}

// Duration is a time.Duration that reads and writes as "30s" in JSON.
type Duration struct{ time.Duration }

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Defaults returns the development-environment configuration.
func Defaults() Config {
	return Config{
		BaseURL:     "https://pl-staging-api.gbst.ticketsocket.com",
		AppID:       "683f16cedeca4b490dc580ce",
		AppChannel:  "StoreFront",
		AppBusiness: "Seated",
		EventID:     "6847fc2b272f1a48fbb04154",
		SeatsIOURL:  "https://api-na.seatsio.net",
		SeatsIOKey:  "NjJkMjhlYmYtMjJjMS00OWNlLTg4MWMtMjRhYzcwYjc4MWExOg==",
		Seat: SeatConfig{
			ObjectID:      "107 V",
			TicketType:    "68481b94861e9c995183b3ed",
			ObjectType:    "GeneralAdmissionArea",
			CategoryLabel: "VIP Zone",
			CategoryKey:   "5",
		},
		HTTPTimeout:   Duration{30 * time.Second},
		SlowThreshold: Duration{5 * time.Second},
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file and applies the process environment.
// A missing file yields the defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(p, os.Getenv)
}

// LoadFrom reads the file at path over the defaults, then applies getenv.
func LoadFrom(path string, getenv func(string) string) (Config, error) {
	c := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := c.ApplyEnv(getenv); err != nil {
		return c, err
	}
	return c, nil
}

// ApplyEnv overrides fields from environment variables that are set and non-empty.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("BASE_URL", &c.BaseURL)
	str("APP_ID", &c.AppID)
	str("APP_CHANNEL_SF", &c.AppChannel)
	str("APP_BUSINESS", &c.AppBusiness)
	str("EVENT_ID", &c.EventID)
	str("SEATS_IO_URL", &c.SeatsIOURL)
	str("SEATS_IO_KEY", &c.SeatsIOKey)
	str("SEAT_IO_HOLD_TOKEN", &c.HoldTokenOverride)
	str("TIXLOAD_RESULTS_DSN", &c.ResultsDSN)
	str("TIXLOAD_LOG_LEVEL", &c.LogLevel)
	str("TIXLOAD_LOG_FORMAT", &c.LogFormat)

	if v := strings.TrimSpace(getenv("TIXLOAD_HTTP_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TIXLOAD_HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = Duration{d}
	}
	return nil
}

// Validate reports the first setting that makes the config unusable.
func (c Config) Validate() error {
	for _, u := range []struct{ name, value string }{
		{"base_url", c.BaseURL},
		{"seats_io_url", c.SeatsIOURL},
	} {
		parsed, err := url.Parse(u.value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", u.name, u.value)
		}
	}
	required := map[string]string{
		"app_id":         c.AppID,
		"app_channel":    c.AppChannel,
		"app_business":   c.AppBusiness,
		"event_id":       c.EventID,
		"seat.object_id": c.Seat.ObjectID,
	}
	for _, name := range []string{"app_id", "app_channel", "app_business", "event_id", "seat.object_id"} {
		if strings.TrimSpace(required[name]) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if c.HTTPTimeout.Duration <= 0 {
		return errors.New("http_timeout must be positive")
	}
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes c to path with 0600 permissions.
func SaveTo(path string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
