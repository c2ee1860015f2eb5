package providers

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/dns/fakes"
)

const zonomiKey = "zonomi-test-key"

func newTestZonomi(t *testing.T, kv ...string) (*ZonomiProvider, *fakes.Zonomi) {
	t.Helper()
	fake := fakes.NewZonomi(zonomiKey, testZone)
	p := newZonomiAt(t, serve(t, fake), kv...)
	return p, fake
}

func newZonomiAt(t *testing.T, endpoint string, kv ...string) *ZonomiProvider {
	t.Helper()
	kv = append([]string{"auth_token", zonomiKey}, kv...)
	p, err := NewZonomi(settingsFor(endpoint, kv...))
	if err != nil {
		t.Fatalf("NewZonomi() error = %v", err)
	}
	return p.(*ZonomiProvider)
}

var sortRecords = cmpopts.SortSlices(func(a, b domain.Record) bool {
	return a.Type+domain.RecordType(a.Name+a.Content) < b.Type+domain.RecordType(b.Name+b.Content)
})

func TestNewZonomi_Endpoint(t *testing.T) {
	tests := []struct {
		name     string
		settings engine.Settings
		want     string
	}{
		{"default entrypoint", engine.Settings{}, "https://rimuhosting.com/app"},
		{"zonomi entrypoint", engine.Settings{"auth_entrypoint": "zonomi"}, "https://zonomi.com/app"},
		{"endpoint wins", engine.Settings{"auth_entrypoint": "zonomi", "api_endpoint": "http://localhost:9/app/"}, "http://localhost:9/app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := engine.Merge(engine.Settings{"domain": testZone, "auth_token": "k"}, tt.settings)
			p, err := NewZonomi(s)
			if err != nil {
				t.Fatalf("NewZonomi() error = %v", err)
			}
			if got := p.(*ZonomiProvider).Endpoint(); got != tt.want {
				t.Errorf("Endpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewZonomi_InvalidSettings(t *testing.T) {
	_, err := NewZonomi(engine.Settings{"domain": testZone})
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Errorf("missing token err = %v, want ErrAuthentication", err)
	}

	_, err = NewZonomi(engine.Settings{"domain": testZone, "auth_token": "k", "auth_entrypoint": "nope"})
	if err == nil || !strings.Contains(err.Error(), "auth_entrypoint") {
		t.Errorf("unknown entrypoint err = %v", err)
	}

	_, err = NewZonomi(engine.Settings{"auth_token": "k"})
	if err == nil {
		t.Error("missing domain: expected error")
	}
}

func TestZonomi_Authenticate(t *testing.T) {
	p, _ := newTestZonomi(t)
	if err := p.Authenticate(testContext(t)); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
}

func TestZonomi_Authenticate_BadKey(t *testing.T) {
	url := serve(t, fakes.NewZonomi("other-key", testZone))
	p := newZonomiAt(t, url)

	err := p.Authenticate(testContext(t))
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
	if strings.Contains(err.Error(), zonomiKey) {
		t.Errorf("error leaks the api key: %v", err)
	}
}

func TestZonomi_Authenticate_UnmanagedDomain(t *testing.T) {
	url := serve(t, fakes.NewZonomi(zonomiKey, "other.org"))
	p := newZonomiAt(t, url)

	if err := p.Authenticate(testContext(t)); !errors.Is(err, domain.ErrAuthentication) {
		t.Errorf("err = %v, want ErrAuthentication", err)
	}
}

func TestZonomi_LazyAuthenticationRunsOnce(t *testing.T) {
	counter := &countingHandler{next: fakes.NewZonomi(zonomiKey, testZone)}
	p := newZonomiAt(t, serve(t, counter))
	ctx := testContext(t)

	for range 2 {
		if _, err := p.ListRecords(ctx, domain.Filter{}); err != nil {
			t.Fatalf("ListRecords() error = %v", err)
		}
	}
	// One authentication query plus one query per listing.
	if counter.count != 3 {
		t.Errorf("requests = %d, want 3", counter.count)
	}
}

func TestZonomi_CreateIsIdempotent(t *testing.T) {
	p, fake := newTestZonomi(t)
	ctx := testContext(t)

	for range 2 {
		mustCreate(t, ctx, p, domain.RecordTypeTXT, "_acme-challenge.fqdn.example.com.", "challengetoken")
	}

	if got := fake.Records(testZone); len(got) != 1 {
		t.Errorf("records = %+v, want exactly one", got)
	}
}

func TestZonomi_ListRecords_NameForms(t *testing.T) {
	p, fake := newTestZonomi(t)
	fake.Seed(testZone,
		domain.Record{Type: "A", Name: "www", Content: "127.0.0.1", TTL: 3600},
		domain.Record{Type: "TXT", Name: "other", Content: "x", TTL: 3600},
	)
	ctx := testContext(t)

	want := []domain.Record{{ID: "www.example.com", Type: "A", Name: "www.example.com", Content: "127.0.0.1", TTL: 3600}}
	for _, name := range []string{"www", "www.example.com", "www.example.com."} {
		got, err := p.ListRecords(ctx, domain.Filter{Name: name})
		if err != nil {
			t.Fatalf("ListRecords(%q) error = %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ListRecords(%q) mismatch (-want +got):\n%s", name, diff)
		}
	}

	got, err := p.ListRecords(ctx, domain.Filter{Name: "missing"})
	if err != nil {
		t.Fatalf("ListRecords(missing) error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListRecords(missing) = %#v, want empty non-nil slice", got)
	}
}

func TestZonomi_UpdateRecord_ByFilter(t *testing.T) {
	p, fake := newTestZonomi(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "orig.test", "challengetoken")

	err := p.UpdateRecord(ctx,
		domain.ByFilter(domain.Filter{Type: "TXT", Name: "orig.test"}),
		domain.UpdateRecordOpts{Content: "updated", TTL: 600})
	if err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}

	want := []domain.Record{{Type: "TXT", Name: "orig.test.example.com", Content: "updated", TTL: 600}}
	if diff := cmp.Diff(want, fake.Records(testZone), cmpopts.IgnoreFields(domain.Record{}, "ID")); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestZonomi_UpdateRecord_TTLOnlyKeepsRecord(t *testing.T) {
	p, fake := newTestZonomi(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeA, "www", "127.0.0.1")

	if err := p.UpdateRecord(ctx, domain.ByID("www.example.com"), domain.UpdateRecordOpts{TTL: 3600}); err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}

	got := fake.Records(testZone)
	if len(got) != 1 || got[0].TTL != 3600 || got[0].Content != "127.0.0.1" {
		t.Errorf("records = %+v, want one A record with ttl 3600", got)
	}
}

func TestZonomi_UpdateRecord_RenameByIDUnsupported(t *testing.T) {
	p, _ := newTestZonomi(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "orig.nameonly.test", "challengetoken")

	err := p.UpdateRecord(ctx, domain.ByID("orig.nameonly.test.example.com"), domain.UpdateRecordOpts{Name: "renamed.test"})
	if !errors.Is(err, domain.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestZonomi_UpdateRecord_Errors(t *testing.T) {
	p, _ := newTestZonomi(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "one")
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "two")

	err := p.UpdateRecord(ctx, domain.ByFilter(domain.Filter{Name: "missing"}), domain.UpdateRecordOpts{Content: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing target err = %v, want ErrNotFound", err)
	}

	err = p.UpdateRecord(ctx, domain.ByFilter(domain.Filter{Type: "TXT", Name: "set"}), domain.UpdateRecordOpts{Content: "x"})
	if !errors.Is(err, domain.ErrAmbiguousMatch) {
		t.Errorf("ambiguous target err = %v, want ErrAmbiguousMatch", err)
	}
}

func TestZonomi_DeleteRecord(t *testing.T) {
	p, fake := newTestZonomi(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "one")
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "two")
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "keep", "one")

	if err := p.DeleteRecord(ctx, domain.ByFilter(domain.Filter{Type: "TXT", Name: "set", Content: "one"})); err != nil {
		t.Fatalf("DeleteRecord(content) error = %v", err)
	}
	if err := p.DeleteRecord(ctx, domain.ByFilter(domain.Filter{Name: "missing"})); err != nil {
		t.Fatalf("DeleteRecord(missing) error = %v", err)
	}

	want := []domain.Record{
		{Type: "TXT", Name: "keep.example.com", Content: "one", TTL: 86400},
		{Type: "TXT", Name: "set.example.com", Content: "two", TTL: 86400},
	}
	if diff := cmp.Diff(want, fake.Records(testZone), cmpopts.IgnoreFields(domain.Record{}, "ID"), sortRecords); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestZonomi_TimeoutIsNetworkError(t *testing.T) {
	fake := fakes.NewZonomi(zonomiKey, testZone)
	fake.Slow(200 * time.Millisecond)
	p := newZonomiAt(t, serve(t, fake), "timeout", "20ms")

	err := p.Authenticate(testContext(t))
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if strings.Contains(err.Error(), zonomiKey) {
		t.Errorf("error leaks the api key: %v", err)
	}
}

func TestZonomiStatusError(t *testing.T) {
	tests := []struct {
		status int
		msg    string
		want   error
	}{
		{http.StatusUnauthorized, "ERROR: Invalid or missing api_key", domain.ErrAuthentication},
		{http.StatusOK, "ERROR: bad api key", domain.ErrAuthentication},
		{http.StatusNotFound, "ERROR: No zone found", domain.ErrNotFound},
		{http.StatusTooManyRequests, "slow down", domain.ErrRateLimited},
	}
	for _, tt := range tests {
		if err := zonomiStatusError(tt.status, tt.msg); !errors.Is(err, tt.want) {
			t.Errorf("zonomiStatusError(%d, %q) = %v, want %v", tt.status, tt.msg, err, tt.want)
		}
	}
}
