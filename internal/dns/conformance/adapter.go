// Package conformance is the backend-agnostic test battery every DNS
// provider runs. A backend declares an Adapter (how to build the
// provider, which domain to use, which secrets to scrub from fixtures
// and which cases it skips, with reasons) and calls Run from its test.
package conformance

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
	"nathanbeddoewebdev/dnsctl/internal/dns/transport"
)

// DefaultUnmanagedDomain is a domain no test account owns.
const DefaultUnmanagedDomain = "thisisadomainidonotown.com"

// DefaultTimeout bounds every request and every case.
const DefaultTimeout = "30s"

// Factory builds the provider under test. providers.Factory satisfies it.
type Factory func(settings engine.Settings, opts ...transport.Option) (domain.Provider, error)

// Adapter declares how the suite drives one backend.
type Adapter struct {
	// ProviderName names the fixture directory and the credential
	// environment variables (DNSCTL_<PROVIDER>_<KEY>).
	ProviderName string

	Factory Factory

	// Domain is the zone the cases create records in.
	Domain string

	// UnmanagedDomain must be rejected by Authenticate. Defaults to
	// DefaultUnmanagedDomain.
	UnmanagedDomain string

	// Credentials lists the setting keys that carry secrets.
	Credentials []string

	// FilterQueryParameters, FilterPostDataParameters and FilterHeaders
	// are scrubbed from recorded fixtures.
	FilterQueryParameters    []string
	FilterPostDataParameters []string
	FilterHeaders            []string

	// EngineOverrides replace the suite's base engine settings.
	EngineOverrides engine.Settings

	// Skips maps a case name to the reason the backend cannot pass it.
	Skips map[string]string

	// MultiMatch is the backend's update behaviour for filters matching
	// several records. Empty means domain.MultiMatchError.
	MultiMatch domain.MultiMatchPolicy

	// Backend, when set, builds an in-process emulation of the API. Cases
	// without a recorded fixture run against it.
	Backend func(settings engine.Settings) http.Handler

	// FixtureDir holds recorded fixtures. Defaults to testdata/fixtures
	// relative to the calling test's package.
	FixtureDir string
}

// Validate reports every declaration error in a.
func (a Adapter) Validate() error {
	var errs []error
	if strings.TrimSpace(a.ProviderName) == "" {
		errs = append(errs, errors.New("provider name is required"))
	}
	if a.Factory == nil {
		errs = append(errs, errors.New("factory is required"))
	}
	if err := names.Validate(a.Domain, ""); err != nil {
		errs = append(errs, fmt.Errorf("domain: %w", err))
	}
	if a.UnmanagedDomain != "" {
		if err := names.Validate(a.UnmanagedDomain, ""); err != nil {
			errs = append(errs, fmt.Errorf("unmanaged domain: %w", err))
		}
	}
	switch a.MultiMatch {
	case "", domain.MultiMatchError, domain.MultiMatchFirst, domain.MultiMatchAll:
	default:
		errs = append(errs, fmt.Errorf("unknown multi-match policy %q", a.MultiMatch))
	}

	skipped := make([]string, 0, len(a.Skips))
	for name := range a.Skips {
		skipped = append(skipped, name)
	}
	sort.Strings(skipped)
	for _, name := range skipped {
		if !slices.Contains(CaseNames(), name) {
			errs = append(errs, fmt.Errorf("skip names unknown case %q", name))
		}
		if strings.TrimSpace(a.Skips[name]) == "" {
			errs = append(errs, fmt.Errorf("skip of %q has no reason", name))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("conformance: invalid adapter %q: %w", a.ProviderName, err)
	}
	return nil
}

func (a Adapter) unmanagedDomain() string {
	if a.UnmanagedDomain != "" {
		return a.UnmanagedDomain
	}
	return DefaultUnmanagedDomain
}

func (a Adapter) multiMatch() domain.MultiMatchPolicy {
	if a.MultiMatch == "" {
		return domain.MultiMatchError
	}
	return a.MultiMatch
}

func (a Adapter) fixtureDir() string {
	if a.FixtureDir != "" {
		return a.FixtureDir
	}
	return "testdata/fixtures"
}

// BaseEngineOverrides returns the engine settings every case starts
// from.
func BaseEngineOverrides(a Adapter) engine.Settings {
	return engine.Settings{
		engine.KeyProviderName:  a.ProviderName,
		engine.KeyDomain:        a.Domain,
		engine.KeyTimeout:       DefaultTimeout,
		engine.KeyRetryAttempts: "1",
	}
}

// EngineSettings merges the base overrides, the credentials and the
// adapter's own overrides. Later layers win.
func EngineSettings(a Adapter, credentials engine.Settings) engine.Settings {
	return engine.Merge(BaseEngineOverrides(a), credentials, a.EngineOverrides)
}

// PlaceholderCredentials returns a stand-in value for every credential
// key, used when replaying fixtures or recording against a fake.
func PlaceholderCredentials(a Adapter) engine.Settings {
	out := engine.Settings{}
	for _, k := range a.Credentials {
		out[k] = "placeholder_" + k
	}
	return out
}

// Deviation is one skipped case of one backend.
type Deviation struct {
	Provider string `json:"provider"`
	Case     string `json:"case"`
	Reason   string `json:"reason"`
}

// Deviations lists every declared skip, sorted by provider then case.
func Deviations(adapters ...Adapter) []Deviation {
	var out []Deviation
	for _, a := range adapters {
		for name, reason := range a.Skips {
			out = append(out, Deviation{Provider: a.ProviderName, Case: name, Reason: reason})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Case < out[j].Case
	})
	return out
}
