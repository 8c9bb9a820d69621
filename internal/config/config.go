// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Calendar provider selection.
const (
	ProviderMock   = "mock"
	ProviderGoogle = "google"
)

// Config holds the server configuration. Environment variables are parsed
// from the APPT_ prefix; command-line flags in main override the address and
// directory settings.
type Config struct {
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8099"`
	DataDir   string `envconfig:"DATA_DIR" default:"./data"`
	StaticDir string `envconfig:"STATIC_DIR" default:"./static"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// CalendarProvider selects the calendar gateway: mock or google.
	CalendarProvider string `envconfig:"CALENDAR_PROVIDER" default:"mock"`

	// Mock gateway tuning.
	MockAuthFailureRate float64       `envconfig:"MOCK_AUTH_FAILURE_RATE" default:"0.1"`
	MockAPIFailureRate  float64       `envconfig:"MOCK_API_FAILURE_RATE" default:"0.05"`
	MockLatency         time.Duration `envconfig:"MOCK_LATENCY" default:"100ms"`

	// Google gateway settings, used when CalendarProvider is google.
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID" default:""`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET" default:""`
	GoogleTokenFile    string `envconfig:"GOOGLE_TOKEN_FILE" default:"token.json"`
	GoogleCalendarID   string `envconfig:"GOOGLE_CALENDAR_ID" default:"primary"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("appt", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.CalendarProvider {
	case ProviderMock, ProviderGoogle:
	default:
		return fmt.Errorf("unknown calendar provider %q", c.CalendarProvider)
	}
	if c.MockAuthFailureRate < 0 || c.MockAuthFailureRate > 1 {
		return fmt.Errorf("mock auth failure rate %v out of range [0,1]", c.MockAuthFailureRate)
	}
	if c.MockAPIFailureRate < 0 || c.MockAPIFailureRate > 1 {
		return fmt.Errorf("mock api failure rate %v out of range [0,1]", c.MockAPIFailureRate)
	}
	return nil
}
