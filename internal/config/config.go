package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the Timely client.
// Environment variables are parsed from the TIMELY_ prefix.
type Config struct {
	// Remote services
	SyncBaseURL     string `envconfig:"SYNC_BASE_URL" default:"https://sync.timely.app"`
	IdentityBaseURL string `envconfig:"IDENTITY_BASE_URL" default:"https://id.timely.app"`

	// Google Calendar (Meet links ride on calendar events)
	GoogleBaseURL     string `envconfig:"GOOGLE_BASE_URL" default:"https://www.googleapis.com/calendar/v3"`
	GoogleAccessToken string `envconfig:"GOOGLE_ACCESS_TOKEN" default:""`

	// Zoom server-to-server OAuth app
	ZoomBaseURL      string `envconfig:"ZOOM_BASE_URL" default:"https://api.zoom.us/v2"`
	ZoomTokenURL     string `envconfig:"ZOOM_TOKEN_URL" default:"https://zoom.us/oauth/token"`
	ZoomAccountID    string `envconfig:"ZOOM_ACCOUNT_ID" default:""`
	ZoomClientID     string `envconfig:"ZOOM_CLIENT_ID" default:""`
	ZoomClientSecret string `envconfig:"ZOOM_CLIENT_SECRET" default:""`

	// Microsoft Teams. The Graph integration is request-shape only; the
	// client refuses to run outside sandbox mode.
	TeamsBaseURL string `envconfig:"TEAMS_BASE_URL" default:"https://graph.microsoft.com/v1.0"`
	TeamsSandbox bool   `envconfig:"TEAMS_SANDBOX" default:"true"`

	// HTTP behaviour
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	// Default IANA timezone for schedules when the profile has none.
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`
}

// Validate rejects combinations the client cannot run with.
func (c *Config) Validate() error {
	if c.SyncBaseURL == "" {
		return fmt.Errorf("sync base URL must not be empty")
	}
	if c.IdentityBaseURL == "" {
		return fmt.Errorf("identity base URL must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	// Zoom credentials travel together; a partial set is a misconfiguration.
	set := 0
	for _, v := range []string{c.ZoomAccountID, c.ZoomClientID, c.ZoomClientSecret} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("zoom account id, client id, and client secret must be set together")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: TIMELY_SYNC_BASE_URL, TIMELY_ZOOM_ACCOUNT_ID.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("TIMELY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("sync_base_url", cfg.SyncBaseURL).
		Str("identity_base_url", cfg.IdentityBaseURL).
		Bool("zoom_configured", cfg.ZoomClientID != "").
		Bool("teams_sandbox", cfg.TeamsSandbox).
		Dur("http_timeout", cfg.HTTPTimeout).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config pointed at test servers.
func NewForTesting(syncURL, identityURL string) *Config {
	return &Config{
		SyncBaseURL:     syncURL,
		IdentityBaseURL: identityURL,
		HTTPTimeout:     5 * time.Second,
		TeamsSandbox:    true,
		Timezone:        "UTC",
	}
}
