// Package engine holds the layered key/value settings a provider is
// constructed from: credentials, target domain and engine options such
// as the API endpoint and request timeout.
package engine

import (
	"fmt"
	"maps"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Well-known setting keys shared by every provider.
const (
	KeyProviderName  = "provider_name"
	KeyDomain        = "domain"
	KeyAPIEndpoint   = "api_endpoint"
	KeyTimeout       = "timeout"
	KeyTTL           = "ttl"
	KeyRetryAttempts = "retry_attempts"
)

// DefaultTimeout bounds every HTTP request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Settings is one layer of provider configuration.
type Settings map[string]string

// Merge layers settings left to right. On key conflict the later layer
// wins, so Merge(base, overrides) lets overrides replace base values
// while keeping every base key it does not mention. Empty values never
// replace a set one. The inputs are not modified.
func Merge(layers ...Settings) Settings {
	out := Settings{}
	for _, layer := range layers {
		for k, v := range layer {
			k = normalizeKey(k)
			if v == "" {
				if _, ok := out[k]; ok {
					continue
				}
			}
			out[k] = v
		}
	}
	return out
}

// Get returns the value for key, or "" when unset.
func (s Settings) Get(key string) string {
	return s[normalizeKey(key)]
}

// Clone returns a shallow copy of s.
func (s Settings) Clone() Settings {
	return maps.Clone(s)
}

// Keys returns the sorted setting keys.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode copies s into the struct pointed to by out using mapstructure
// tags. Strings are converted to the field types ("30s" to a
// time.Duration, "3600" to an int).
func Decode(s Settings, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := dec.Decode(map[string]string(s)); err != nil {
		return fmt.Errorf("engine: invalid settings: %w", err)
	}
	return nil
}

// EnvKey returns the environment variable consulted for a provider
// setting, e.g. EnvKey("zonomi", "auth_token") is DNSCTL_ZONOMI_AUTH_TOKEN.
func EnvKey(provider, key string) string {
	r := strings.NewReplacer("-", "_", ".", "_")
	return "DNSCTL_" + strings.ToUpper(r.Replace(provider)) + "_" + strings.ToUpper(r.Replace(key))
}

// FromEnv reads the given keys for provider from the environment.
// Unset variables are omitted.
func FromEnv(provider string, keys ...string) Settings {
	out := Settings{}
	for _, k := range keys {
		if v, ok := os.LookupEnv(EnvKey(provider, k)); ok && v != "" {
			out[normalizeKey(k)] = v
		}
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), "-", "_")
}
