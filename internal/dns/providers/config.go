package providers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
)

// decodeConfig decodes settings into out, whose embedded engine.Config
// is base, and validates the engine part.
func decodeConfig(provider string, settings engine.Settings, out any, base *engine.Config) error {
	if err := engine.Decode(settings, out); err != nil {
		return fmt.Errorf("%s: %w", provider, err)
	}
	if err := base.Validate(); err != nil {
		return fmt.Errorf("%s: %w", provider, err)
	}
	return nil
}

// requireCredential fails with domain.ErrAuthentication when a
// credential setting is empty.
func requireCredential(provider, key, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s requires the %q setting", domain.ErrAuthentication, provider, key)
	}
	return nil
}

// authFailure classifies an error seen while authenticating. Anything
// that is not a network failure means the credentials or the domain
// were rejected.
func authFailure(provider, zone string, err error) error {
	if errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrAuthentication) {
		return err
	}
	return fmt.Errorf("%w: %s: domain %q is not available to this account: %v", domain.ErrAuthentication, provider, zone, err)
}

// parseInt converts a string to int, returning 0 on failure.
func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
