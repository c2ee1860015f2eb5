// Package auth stores provider credentials in the OS keychain.
package auth

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/platform/providers"
	"nathanbeddoewebdev/dnsctl/internal/util"
)

const ServiceName = "dnsctl"

var ErrTokenNotFound = errors.New("auth token not found")

// Store persists one secret per keychain key.
type Store interface {
	SetToken(provider string, token string) error
	GetToken(provider string) (string, error)
	DeleteToken(provider string) error
}

// DefaultStore returns the standard auth store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeychainStore(ServiceName)
}

// NormalizeProvider normalizes a provider name for consistent key lookup.
func NormalizeProvider(provider string) string {
	return util.NormalizeKey(provider)
}

// Credentials returns the engine settings for provider. Values in the
// environment (DNSCTL_<PROVIDER>_<SETTING>) win over the keychain, so a
// .env file or CI secret works without a login.
func Credentials(store Store, provider string) (engine.Settings, error) {
	spec := providers.Lookup(provider)
	if spec == nil {
		return nil, fmt.Errorf("no credential scheme registered for provider %q", provider)
	}

	env := engine.FromEnv(spec.Provider, spec.SettingKeys()...)
	return spec.Settings(func(keychainKey string) (string, error) {
		for _, k := range spec.Keys {
			if spec.KeychainKey(k) == keychainKey {
				if v := env.Get(k.Setting); v != "" {
					return v, nil
				}
			}
		}
		return store.GetToken(keychainKey)
	})
}

// Logout removes every stored credential of spec. Missing entries are
// ignored.
func Logout(store Store, spec providers.CredentialSpec) error {
	var errs []error
	for _, k := range spec.Keys {
		err := store.DeleteToken(spec.KeychainKey(k))
		if err != nil && !errors.Is(err, ErrTokenNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
