package conformance

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
	"nathanbeddoewebdev/dnsctl/internal/dns/transport"
	"nathanbeddoewebdev/dnsctl/internal/fixture"
	"nathanbeddoewebdev/dnsctl/internal/log"
)

// FixturesEnv selects live recording when set to "live".
const FixturesEnv = "DNSCTL_FIXTURES"

// Harness is the per-case state handed to every case body.
type Harness struct {
	t        *testing.T
	adapter  Adapter
	settings engine.Settings
	timeout  time.Duration
	opts     []transport.Option

	// Ctx carries the test logger and the case deadline.
	Ctx context.Context

	// Provider is bound to the adapter's domain.
	Provider domain.Provider

	// Domain is the adapter's domain in canonical form.
	Domain string
}

// newHarness selects the fixture mode, starts the recorder and builds
// the provider for one case.
func newHarness(t *testing.T, a Adapter, caseName string) *Harness {
	t.Helper()

	live := os.Getenv(FixturesEnv) == "live"
	credentials := PlaceholderCredentials(a)
	if live {
		credentials = engine.FromEnv(a.ProviderName, a.Credentials...)
		for _, k := range a.Credentials {
			if credentials.Get(k) == "" {
				t.Skipf("live recording needs %s", engine.EnvKey(a.ProviderName, k))
			}
		}
	}
	settings := EngineSettings(a, credentials)

	var cfg engine.Config
	if err := engine.Decode(settings, &cfg); err != nil {
		t.Fatalf("engine settings: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("engine settings: %v", err)
	}

	opts := fixture.Options{
		Path: fixture.Path(a.fixtureDir(), a.ProviderName, caseName),
		Scrubber: fixture.Scrubber{
			QueryParameters:    a.FilterQueryParameters,
			PostDataParameters: a.FilterPostDataParameters,
			Headers:            a.FilterHeaders,
		},
	}
	switch _, err := os.Stat(opts.Path); {
	case live:
		opts.Mode = recorder.ModeRecordOnly
	case err == nil:
		opts.Mode = recorder.ModeReplayOnly
	case a.Backend != nil:
		opts.Mode = recorder.ModeRecordOnly
		opts.Path = fixture.Path(t.TempDir(), a.ProviderName, caseName)
		opts.Transport = fixture.HandlerTransport{Handler: a.Backend(settings)}
	default:
		t.Skip("no fixture recorded")
	}

	rec, err := fixture.New(opts)
	if err != nil {
		t.Fatalf("fixture recorder: %v", err)
	}
	// Registered first so it runs after every cleanup the case adds.
	t.Cleanup(func() {
		if err := rec.Stop(); err != nil {
			t.Errorf("saving fixture: %v", err)
			return
		}
		if opts.Mode == recorder.ModeRecordOnly {
			assertScrubbed(t, opts.Path, credentials)
		}
	})

	ctx, cancel := context.WithTimeout(log.WithLogger(context.Background(), zaptest.NewLogger(t)), cfg.Timeout)
	t.Cleanup(cancel)

	h := &Harness{
		t:        t,
		adapter:  a,
		settings: settings,
		timeout:  cfg.Timeout,
		opts:     []transport.Option{transport.WithRoundTripper(rec)},
		Ctx:      ctx,
		Domain:   names.Zone(a.Domain),
	}
	h.Provider = h.newProvider(a.Domain)
	return h
}

// assertScrubbed fails the test when a secret reached the fixture file.
func assertScrubbed(t *testing.T, path string, credentials engine.Settings) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		t.Errorf("reading fixture: %v", err)
		return
	}
	values := make([]string, 0, len(credentials))
	for _, v := range credentials {
		values = append(values, v)
	}
	for _, leaked := range fixture.Leaks(string(data), values...) {
		t.Errorf("fixture %s contains an unredacted credential (%d characters)", path, len(leaked))
	}
}

func (h *Harness) newProvider(zone string) domain.Provider {
	h.t.Helper()
	settings := engine.Merge(h.settings, engine.Settings{engine.KeyDomain: zone})
	p, err := h.adapter.Factory(settings, h.opts...)
	if err != nil {
		h.t.Fatalf("building provider: %v", err)
	}
	return p
}

// Full returns sub qualified with the domain, without the trailing dot.
func (h *Harness) Full(sub string) string {
	return sub + "." + h.Domain
}

// FQDN returns sub qualified with the domain and a trailing dot.
func (h *Harness) FQDN(sub string) string {
	return sub + "." + h.Domain + "."
}

// Create creates a record and registers its removal at cleanup.
func (h *Harness) Create(typ domain.RecordType, name, content string, ttl int) {
	h.t.Helper()
	h.cleanup(typ, name)
	err := h.Provider.CreateRecord(h.Ctx, domain.CreateRecordOpts{Type: typ, Name: name, Content: content, TTL: ttl})
	if err != nil {
		h.t.Fatalf("CreateRecord(%s %s %q) error = %v", typ, name, content, err)
	}
}

// cleanup deletes every record of (typ, name) when the case ends.
func (h *Harness) cleanup(typ domain.RecordType, name string) {
	h.t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(log.WithLogger(context.Background(), zaptest.NewLogger(h.t)), h.timeout)
		defer cancel()
		if err := h.Provider.DeleteRecord(ctx, domain.ByFilter(domain.Filter{Type: typ, Name: name})); err != nil {
			h.t.Errorf("cleanup of %s %s: %v", typ, name, err)
		}
	})
}

// List lists records and fails the case on error.
func (h *Harness) List(filter domain.Filter) []domain.Record {
	h.t.Helper()
	records, err := h.Provider.ListRecords(h.Ctx, filter)
	if err != nil {
		h.t.Fatalf("ListRecords(%s) error = %v", filter, err)
	}
	if records == nil {
		h.t.Fatalf("ListRecords(%s) returned a nil slice", filter)
	}
	return records
}

// ExpectContents lists filter and checks the returned records carry
// exactly the given contents in any order. Every record must also
// match the filter's type and name.
func (h *Harness) ExpectContents(filter domain.Filter, contents ...string) []domain.Record {
	h.t.Helper()
	records := h.List(filter)

	want := map[string]int{}
	for _, c := range contents {
		want[c]++
	}
	for _, r := range records {
		if !filter.Matches(r, h.Domain) {
			h.t.Errorf("ListRecords(%s) returned non-matching record %+v", filter, r)
		}
		if filter.Name != "" && r.Name != names.Full(filter.Name, h.Domain) {
			h.t.Errorf("record name = %q, want %q", r.Name, names.Full(filter.Name, h.Domain))
		}
		want[r.Content]--
	}
	for _, n := range want {
		if n != 0 {
			h.t.Errorf("ListRecords(%s) = %s, want contents %q", filter, describe(records), contents)
			break
		}
	}
	return records
}

// ID returns the identifier of the single record matching filter.
func (h *Harness) ID(filter domain.Filter) string {
	h.t.Helper()
	records := h.List(filter)
	if len(records) != 1 {
		h.t.Fatalf("ListRecords(%s) = %s, want exactly one record", filter, describe(records))
	}
	if records[0].ID == "" {
		h.t.Fatalf("record %+v has no identifier", records[0])
	}
	return records[0].ID
}
