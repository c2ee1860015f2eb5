package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nathanbeddoewebdev/dnsctl/internal/dns/names"
	"nathanbeddoewebdev/dnsctl/internal/util"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "dns-provider").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set validates value and applies it to the given Config (in memory
	// only; the caller is responsible for calling Save). An empty value
	// clears the key.
	Set func(cfg *Config, value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "dns-provider",
		Description: "DNS provider used when --provider is not specified",
		Get:         func(cfg *Config) string { return cfg.DNSProvider },
		Set: func(cfg *Config, v string) error {
			cfg.DNSProvider = util.NormalizeKey(v)
			return nil
		},
	},
	{
		Name:        "dns-domain",
		Description: "Domain used when --domain is not specified",
		Get:         func(cfg *Config) string { return cfg.DNSDomain },
		Set: func(cfg *Config, v string) error {
			if v != "" {
				if err := names.Validate(v, ""); err != nil {
					return err
				}
			}
			cfg.DNSDomain = names.Zone(v)
			return nil
		},
	},
	{
		Name:        "default-ttl",
		Description: "TTL in seconds for records created without --ttl",
		Get: func(cfg *Config) string {
			if cfg.DefaultTTL == 0 {
				return ""
			}
			return strconv.Itoa(cfg.DefaultTTL)
		},
		Set: func(cfg *Config, v string) error {
			if v == "" {
				cfg.DefaultTTL = 0
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("default-ttl must be a positive number of seconds, got %q", v)
			}
			cfg.DefaultTTL = n
			return nil
		},
	},
	{
		Name:        "timeout",
		Description: "Per-request timeout for provider APIs (e.g. 30s)",
		Get:         func(cfg *Config) string { return cfg.Timeout },
		Set: func(cfg *Config, v string) error {
			if v != "" {
				if d, err := time.ParseDuration(v); err != nil || d <= 0 {
					return fmt.Errorf("timeout must be a positive duration, got %q", v)
				}
			}
			cfg.Timeout = v
			return nil
		},
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := util.NormalizeKey(name)
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
