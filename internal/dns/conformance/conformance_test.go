package conformance_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nathanbeddoewebdev/dnsctl/internal/dns/conformance"
	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/dns/providers"
	"nathanbeddoewebdev/dnsctl/internal/dns/transport"
)

func nopFactory(engine.Settings, ...transport.Option) (domain.Provider, error) {
	return nil, nil
}

func TestCaseNames_UniqueAndStable(t *testing.T) {
	names := conformance.CaseNames()
	if len(names) == 0 {
		t.Fatal("empty catalog")
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate case %q", n)
		}
		seen[n] = true
	}
	if names[0] != conformance.Authenticate {
		t.Errorf("first case = %q, want %q", names[0], conformance.Authenticate)
	}
}

func TestAdapter_Validate(t *testing.T) {
	valid := conformance.Adapter{
		ProviderName: "zonomi",
		Factory:      nopFactory,
		Domain:       "example.com",
		Skips: map[string]string{
			conformance.UpdateRecordShouldModifyRecordNameSpecified: "identifier is the name",
		},
	}

	tests := []struct {
		name    string
		mutate  func(*conformance.Adapter)
		wantErr []string
	}{
		{name: "valid", mutate: func(*conformance.Adapter) {}},
		{
			name:    "missing provider name",
			mutate:  func(a *conformance.Adapter) { a.ProviderName = " " },
			wantErr: []string{"provider name is required"},
		},
		{
			name:    "missing factory",
			mutate:  func(a *conformance.Adapter) { a.Factory = nil },
			wantErr: []string{"factory is required"},
		},
		{
			name:    "invalid domain",
			mutate:  func(a *conformance.Adapter) { a.Domain = "" },
			wantErr: []string{"domain:"},
		},
		{
			name:    "unknown policy",
			mutate:  func(a *conformance.Adapter) { a.MultiMatch = "some" },
			wantErr: []string{`unknown multi-match policy "some"`},
		},
		{
			name: "skip of unknown case without reason",
			mutate: func(a *conformance.Adapter) {
				a.Skips = map[string]string{"NoSuchCase": ""}
			},
			wantErr: []string{`unknown case "NoSuchCase"`, `skip of "NoSuchCase" has no reason`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			err := a.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error = %q, want it to contain %q", err, want)
				}
			}
		})
	}
}

func TestDeviations_Sorted(t *testing.T) {
	a := conformance.Adapter{ProviderName: "zonomi", Skips: map[string]string{
		conformance.UpdateRecordShouldModifyRecordNameSpecified: "name is the identifier",
		conformance.CreateRecordForCNAME:                        "no CNAME",
	}}
	b := conformance.Adapter{ProviderName: "cloudflare", Skips: map[string]string{
		conformance.DeleteRecordMissingShouldSucceed: "strict",
	}}

	got := conformance.Deviations(a, b)
	want := []conformance.Deviation{
		{Provider: "cloudflare", Case: conformance.DeleteRecordMissingShouldSucceed, Reason: "strict"},
		{Provider: "zonomi", Case: conformance.CreateRecordForCNAME, Reason: "no CNAME"},
		{Provider: "zonomi", Case: conformance.UpdateRecordShouldModifyRecordNameSpecified, Reason: "name is the identifier"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Deviations() mismatch (-want +got):\n%s", diff)
	}
	if got := conformance.Deviations(); len(got) != 0 {
		t.Errorf("Deviations() = %v, want empty", got)
	}
}

func TestEngineSettings_Layering(t *testing.T) {
	a := conformance.Adapter{
		ProviderName:    "zonomi",
		Domain:          "example.com",
		Credentials:     []string{"auth_token"},
		EngineOverrides: engine.Settings{"timeout": "5s", "api_endpoint": "https://zonomi.com/app"},
	}

	got := conformance.EngineSettings(a, conformance.PlaceholderCredentials(a))
	want := engine.Settings{
		"provider_name":  "zonomi",
		"domain":         "example.com",
		"timeout":        "5s",
		"retry_attempts": "1",
		"auth_token":     "placeholder_auth_token",
		"api_endpoint":   "https://zonomi.com/app",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EngineSettings() mismatch (-want +got):\n%s", diff)
	}
}

// With no fixtures and no emulated backend every case skips.
func TestRun_SkipsWithoutFixtures(t *testing.T) {
	conformance.Run(t, conformance.Adapter{
		ProviderName: "zonomi",
		Factory:      providers.NewZonomi,
		Domain:       "example.com",
		Credentials:  []string{"auth_token"},
		FixtureDir:   t.TempDir(),
	})
}
