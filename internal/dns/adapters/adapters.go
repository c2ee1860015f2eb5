// Package adapters declares how the conformance suite drives each
// registered DNS backend.
package adapters

import (
	"net/http"

	"nathanbeddoewebdev/dnsctl/internal/dns/conformance"
	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/dns/fakes"
	"nathanbeddoewebdev/dnsctl/internal/dns/providers"
)

// Zonomi identifies records by name, so renaming by identifier has no
// meaning there.
func Zonomi() conformance.Adapter {
	return conformance.Adapter{
		ProviderName: "zonomi",
		Factory:      providers.NewZonomi,
		Domain:       "pcekper.com.ar",
		Credentials:  []string{"auth_token"},

		FilterQueryParameters: []string{"api_key"},
		EngineOverrides: engine.Settings{
			engine.KeyAPIEndpoint: "https://zonomi.com/app",
		},
		Skips: map[string]string{
			conformance.UpdateRecordShouldModifyRecordNameSpecified: "The record identifier is based on the name, this needs disabled",
		},
		MultiMatch: providers.ZonomiMultiMatch,
		Backend: func(s engine.Settings) http.Handler {
			return fakes.NewZonomi(s.Get("auth_token"), s.Get(engine.KeyDomain))
		},
	}
}

func Porkbun() conformance.Adapter {
	return conformance.Adapter{
		ProviderName: "porkbun",
		Factory:      providers.NewPorkbun,
		Domain:       "example.com",
		Credentials:  []string{"auth_key", "auth_secret"},

		FilterPostDataParameters: []string{"apikey", "secretapikey"},
		MultiMatch:               domain.MultiMatchError,
		Backend: func(s engine.Settings) http.Handler {
			return fakes.NewPorkbun(s.Get("auth_key"), s.Get("auth_secret"), s.Get(engine.KeyDomain))
		},
	}
}

// Cloudflare updates every record a filter matches.
func Cloudflare() conformance.Adapter {
	return conformance.Adapter{
		ProviderName: "cloudflare",
		Factory:      providers.NewCloudflare,
		Domain:       "example.com",
		Credentials:  []string{"auth_token"},

		FilterHeaders: []string{"Authorization"},
		MultiMatch:    domain.MultiMatchAll,
		Backend: func(s engine.Settings) http.Handler {
			return fakes.NewCloudflare(s.Get("auth_token"), s.Get(engine.KeyDomain))
		},
	}
}

// All returns every adapter, sorted by provider name.
func All() []conformance.Adapter {
	return []conformance.Adapter{Cloudflare(), Porkbun(), Zonomi()}
}
