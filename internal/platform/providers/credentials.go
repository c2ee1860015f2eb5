// Package providers describes how each DNS backend authenticates: which
// secrets it needs, how they are labelled in prompts, where they live in
// the keychain and which engine setting receives them.
package providers

import (
	"fmt"
	"slices"

	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/util"
)

// CredentialKey is one secret of a provider.
type CredentialKey struct {
	Key     string // keychain suffix; empty for single-secret providers
	Setting string // engine setting, e.g. "auth_token"
	Prompt  string
	Secret  bool // mask input
}

// CredentialSpec lists the secrets of one provider.
type CredentialSpec struct {
	Provider    string
	DisplayName string
	Keys        []CredentialKey
}

// KeychainKey is "<provider>" for a suffix-less key and
// "<provider>-<suffix>" otherwise.
func (s CredentialSpec) KeychainKey(k CredentialKey) string {
	if k.Key == "" {
		return s.Provider
	}
	return s.Provider + "-" + k.Key
}

// SettingKeys returns the engine setting names in declaration order.
func (s CredentialSpec) SettingKeys() []string {
	keys := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		keys[i] = k.Setting
	}
	return keys
}

// Settings resolves every secret through get, which receives the
// keychain key. The first failure names the login command to run.
func (s CredentialSpec) Settings(get func(keychainKey string) (string, error)) (engine.Settings, error) {
	settings := make(engine.Settings, len(s.Keys))
	for _, k := range s.Keys {
		v, err := get(s.KeychainKey(k))
		if err != nil {
			return nil, fmt.Errorf("%s %s not found (run 'dnsctl auth login %s'): %w", s.Provider, k.Prompt, s.Provider, err)
		}
		settings[k.Setting] = v
	}
	return settings, nil
}

func token(prompt string) []CredentialKey {
	return []CredentialKey{{Setting: "auth_token", Prompt: prompt, Secret: true}}
}

// specs is sorted by provider name.
var specs = []CredentialSpec{
	{Provider: "cloudflare", DisplayName: "Cloudflare", Keys: token("Account API Token (not Global API Key)")},
	{Provider: "porkbun", DisplayName: "Porkbun", Keys: []CredentialKey{
		{Key: "apikey", Setting: "auth_key", Prompt: "API Key", Secret: true},
		{Key: "secretapikey", Setting: "auth_secret", Prompt: "Secret API Key", Secret: true},
	}},
	{Provider: "zonomi", DisplayName: "Zonomi", Keys: token("API Key")},
}

// Lookup returns the CredentialSpec for providerName, or nil.
func Lookup(providerName string) *CredentialSpec {
	name := util.NormalizeKey(providerName)
	i := slices.IndexFunc(specs, func(s CredentialSpec) bool { return s.Provider == name })
	if i < 0 {
		return nil
	}
	return &specs[i]
}

// All returns a copy of every spec.
func All() []CredentialSpec {
	return slices.Clone(specs)
}
