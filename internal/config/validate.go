package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Drivers lists the supported store backends.
var Drivers = []string{"memory", "file", "sqlite", "postgres"}

// Validate checks the settings a command mode depends on. Modes are "serve"
// and "cli"; both validate the store and the configured sync targets.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	case "cli":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "memory":
	case "file", "sqlite":
		if c.Store.Path == "" {
			errs = append(errs, "store.path is required for the "+c.Store.Driver+" driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for the postgres driver")
		}
	default:
		errs = append(errs, "store.driver must be one of "+strings.Join(Drivers, ", "))
	}

	if c.Capture.SettleDelayMS < 0 {
		errs = append(errs, "capture.settle_delay_ms must be >= 0")
	}
	if c.Forward.RatePerSec < 0 || c.PageSpeed.RatePerSec < 0 {
		errs = append(errs, "rate_per_sec values must be >= 0")
	}
	if c.Notion.Token != "" && c.Notion.LeadDB == "" {
		errs = append(errs, "notion.lead_db is required when notion.token is set")
	}
	if c.Salesforce.ClientID != "" && (c.Salesforce.Username == "" || c.Salesforce.KeyPath == "") {
		errs = append(errs, "salesforce.username and salesforce.key_path are required when salesforce.client_id is set")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
