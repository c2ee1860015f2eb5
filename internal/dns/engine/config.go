package engine

import (
	"fmt"
	"time"

	"nathanbeddoewebdev/dnsctl/internal/dns/names"
)

// Config is the typed view of the settings every provider understands.
// Provider-specific structs embed it with `mapstructure:",squash"`.
type Config struct {
	ProviderName  string        `mapstructure:"provider_name"`
	Domain        string        `mapstructure:"domain"`
	APIEndpoint   string        `mapstructure:"api_endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	TTL           int           `mapstructure:"ttl"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
}

// Validate normalises the domain and applies defaults.
func (c *Config) Validate() error {
	c.Domain = names.Zone(c.Domain)
	if c.Domain == "" {
		return fmt.Errorf("engine: domain is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.TTL < 0 {
		return fmt.Errorf("engine: ttl must not be negative, got %d", c.TTL)
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 1
	}
	return nil
}

// Endpoint returns the configured API endpoint, or fallback when unset.
func (c Config) Endpoint(fallback string) string {
	if c.APIEndpoint != "" {
		return c.APIEndpoint
	}
	return fallback
}
