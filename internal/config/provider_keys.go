package config

import (
	"fmt"
	"slices"
	"strings"

	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/util"
)

// ProviderSettingNames are the engine settings that may be stored per
// provider as "<provider>.<setting>". Credentials are deliberately absent;
// they belong in the keychain.
var ProviderSettingNames = []string{
	engine.KeyAPIEndpoint,
	engine.KeyTimeout,
	engine.KeyTTL,
	engine.KeyRetryAttempts,
}

// ParseProviderKey splits "zonomi.api_endpoint" into its provider and
// setting. ok is false for keys without a dot.
func ParseProviderKey(key string) (provider, setting string, ok bool, err error) {
	provider, setting, ok = strings.Cut(util.NormalizeKey(key), ".")
	if !ok {
		return "", "", false, nil
	}
	if provider == "" || !slices.Contains(ProviderSettingNames, setting) {
		return "", "", true, fmt.Errorf("unknown provider setting %q (valid: <provider>.%s)", key, strings.Join(ProviderSettingNames, "|"))
	}
	return provider, setting, true, nil
}

// ProviderSetting returns the stored value, or "".
func (c *Config) ProviderSetting(provider, setting string) string {
	return c.Providers[provider][setting]
}

// SetProviderSetting stores value, or removes the setting when value is
// empty. Empty provider maps are dropped.
func (c *Config) SetProviderSetting(provider, setting, value string) {
	if value == "" {
		delete(c.Providers[provider], setting)
		if len(c.Providers[provider]) == 0 {
			delete(c.Providers, provider)
		}
		return
	}
	if c.Providers == nil {
		c.Providers = map[string]map[string]string{}
	}
	if c.Providers[provider] == nil {
		c.Providers[provider] = map[string]string{}
	}
	c.Providers[provider][setting] = value
}
