package services

import (
	"fmt"

	"nathanbeddoewebdev/dnsctl/internal/config"
	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
	dnsproviders "nathanbeddoewebdev/dnsctl/internal/dns/providers"
	"nathanbeddoewebdev/dnsctl/internal/services/auth"
)

// ProviderFor builds the registered provider name bound to domainName.
// Settings are layered as config, then stored or environment
// credentials, then the domain.
func ProviderFor(cfg *config.Config, store auth.Store, name, domainName string) (domain.Provider, error) {
	credentials, err := auth.Credentials(store, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}
	settings := engine.Merge(
		cfg.ProviderSettings(name),
		credentials,
		engine.Settings{engine.KeyDomain: names.Zone(domainName)},
	)
	return dnsproviders.Get(name, settings)
}
