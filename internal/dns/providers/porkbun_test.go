package providers

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/fakes"
)

// --- Test helpers ---

// newTestPorkbunProvider creates a PorkbunProvider pointed at the given test server.
func newTestPorkbunProvider(t *testing.T, serverURL string) *PorkbunProvider {
	t.Helper()
	p, err := NewPorkbun(settingsFor(serverURL, "auth_key", "test-api-key", "auth_secret", "test-secret-key"))
	if err != nil {
		t.Fatalf("NewPorkbun() error = %v", err)
	}
	return p.(*PorkbunProvider)
}

// newFakePorkbun returns a provider backed by an in-memory Porkbun fake.
func newFakePorkbun(t *testing.T) (*PorkbunProvider, *fakes.Porkbun) {
	t.Helper()
	fake := fakes.NewPorkbun("test-api-key", "test-secret-key", testZone, "another.io")
	return newTestPorkbunProvider(t, serve(t, fake)), fake
}

// porkbunSuccess returns a minimal success response body.
func porkbunSuccess(extra map[string]any) map[string]any {
	m := map[string]any{"status": "SUCCESS"}
	maps.Copy(m, extra)
	return m
}

// porkbunError returns an error response body.
func porkbunError(message string) map[string]any {
	return map[string]any{
		"status":  "ERROR",
		"message": message,
	}
}

// newStaticServer creates an httptest.Server that always returns the given JSON.
func newStaticServer(t *testing.T, body any) string {
	t.Helper()
	return serve(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("failed to encode test response: %v", err)
		}
	}))
}

// --- Construction ---

func TestNewPorkbun_MissingCredentials(t *testing.T) {
	tests := []map[string]string{
		{"domain": testZone, "auth_secret": "sk"},
		{"domain": testZone, "auth_key": "ak"},
	}
	for _, s := range tests {
		if _, err := NewPorkbun(s); !errors.Is(err, domain.ErrAuthentication) {
			t.Errorf("NewPorkbun(%v) err = %v, want ErrAuthentication", s, err)
		}
	}
}

// --- ListDomains tests ---

func TestPorkbun_ListDomains_HappyPath(t *testing.T) {
	p, _ := newFakePorkbun(t)

	domains, err := p.ListDomains(testContext(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []domain.Domain{
		{Name: "another.io", Status: "ACTIVE", TLD: "io", CreateDate: "2023-01-01 00:00:00", ExpireDate: "2030-01-01 00:00:00"},
		{Name: "example.com", Status: "ACTIVE", TLD: "com", CreateDate: "2023-01-01 00:00:00", ExpireDate: "2030-01-01 00:00:00"},
	}
	if diff := cmp.Diff(want, domains); diff != "" {
		t.Errorf("ListDomains mismatch (-want +got):\n%s", diff)
	}
}

func TestPorkbun_ListDomains_Unauthorized(t *testing.T) {
	url := newStaticServer(t, porkbunError("Invalid API key. (002)"))
	p := newTestPorkbunProvider(t, url)

	_, err := p.ListDomains(testContext(t))
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Errorf("expected ErrAuthentication, got: %v", err)
	}
}

// --- Authentication ---

func TestPorkbun_Authenticate(t *testing.T) {
	p, _ := newFakePorkbun(t)
	if err := p.Authenticate(testContext(t)); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
}

func TestPorkbun_Authenticate_Failures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakes.Porkbun
	}{
		{"bad credentials", fakes.NewPorkbun("other", "other", testZone)},
		{"unmanaged domain", fakes.NewPorkbun("test-api-key", "test-secret-key", "other.org")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPorkbunProvider(t, serve(t, tt.fake))
			err := p.Authenticate(testContext(t))
			if !errors.Is(err, domain.ErrAuthentication) {
				t.Errorf("err = %v, want ErrAuthentication", err)
			}
		})
	}
}

// --- ListRecords tests ---

func TestPorkbun_ListRecords_HappyPath(t *testing.T) {
	url := newStaticServer(t, porkbunSuccess(map[string]any{
		"records": []any{
			map[string]any{"id": "1", "name": "example.com", "type": "a", "content": "1.2.3.4", "ttl": "600", "prio": "0", "notes": ""},
			map[string]any{"id": "2", "name": "mail.example.com", "type": "MX", "content": "mx.example.com", "ttl": "3600", "prio": "10", "notes": "primary"},
		},
	}))
	p := newTestPorkbunProvider(t, url)

	records, err := p.ListRecords(testContext(t), domain.Filter{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []domain.Record{
		{ID: "1", Name: "example.com", Type: "A", Content: "1.2.3.4", TTL: 600},
		{ID: "2", Name: "mail.example.com", Type: "MX", Content: "mx.example.com", TTL: 3600, Priority: 10, Notes: "primary"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("ListRecords mismatch (-want +got):\n%s", diff)
	}

	records, err = p.ListRecords(testContext(t), domain.Filter{Type: "MX", Name: "mail"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 1 || records[0].ID != "2" {
		t.Errorf("filtered records = %+v, want record 2", records)
	}
}

// --- CreateRecord tests ---

func TestPorkbun_CreateRecord_HappyPath(t *testing.T) {
	p, fake := newFakePorkbun(t)
	ctx := testContext(t)

	err := p.CreateRecord(ctx, domain.CreateRecordOpts{
		Type: domain.RecordTypeMX, Name: "mail.example.com.", Content: "mx.example.com", TTL: 3600, Priority: 10, Notes: "primary",
	})
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	// Second create of the same (type, name, content) is a no-op.
	mustCreate(t, ctx, p, domain.RecordTypeMX, "mail", "mx.example.com")

	want := []domain.Record{{ID: "1", Type: "MX", Name: "mail.example.com", Content: "mx.example.com", TTL: 3600, Priority: 10, Notes: "primary"}}
	if diff := cmp.Diff(want, fake.Records(testZone)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestPorkbun_CreateRecord_APIError(t *testing.T) {
	p, _ := newFakePorkbun(t)

	err := p.CreateRecord(testContext(t), domain.CreateRecordOpts{Type: domain.RecordTypeA, Name: "www"})
	if err == nil {
		t.Fatal("expected error for missing content, got nil")
	}
}

// --- UpdateRecord tests ---

func TestPorkbun_UpdateRecord_HappyPath(t *testing.T) {
	p, fake := newFakePorkbun(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeA, "www", "1.2.3.4")

	err := p.UpdateRecord(ctx, domain.ByID("1"), domain.UpdateRecordOpts{Name: "web", Content: "5.6.7.8"})
	if err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}

	want := []domain.Record{{ID: "1", Type: "A", Name: "web.example.com", Content: "5.6.7.8", TTL: 600}}
	if diff := cmp.Diff(want, fake.Records(testZone)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestPorkbun_UpdateRecord_NotFoundAndAmbiguous(t *testing.T) {
	p, _ := newFakePorkbun(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "one")
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "two")

	if err := p.UpdateRecord(ctx, domain.ByID("99"), domain.UpdateRecordOpts{Content: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
	err := p.UpdateRecord(ctx, domain.ByFilter(domain.Filter{Type: "TXT", Name: "set"}), domain.UpdateRecordOpts{Content: "x"})
	if !errors.Is(err, domain.ErrAmbiguousMatch) {
		t.Errorf("ambiguous err = %v, want ErrAmbiguousMatch", err)
	}
}

// --- DeleteRecord tests ---

func TestPorkbun_DeleteRecord_HappyPath(t *testing.T) {
	p, fake := newFakePorkbun(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "one")
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "two")
	mustCreate(t, ctx, p, domain.RecordTypeA, "www", "1.2.3.4")

	if err := p.DeleteRecord(ctx, domain.ByFilter(domain.Filter{Type: "TXT", Name: "set.example.com"})); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}

	want := []domain.Record{{Type: "A", Name: "www.example.com", Content: "1.2.3.4", TTL: 600}}
	if diff := cmp.Diff(want, fake.Records(testZone), cmpopts.IgnoreFields(domain.Record{}, "ID")); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestPorkbun_DeleteRecord_NotFound(t *testing.T) {
	p, _ := newFakePorkbun(t)

	if err := p.DeleteRecord(testContext(t), domain.ByID("42")); err != nil {
		t.Errorf("deleting a missing record: err = %v, want nil", err)
	}
}

func TestMapAPIError(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"Invalid API key. (002)", domain.ErrAuthentication},
		{"Invalid domain.", domain.ErrNotFound},
		{"Edit error: Invalid record id.", domain.ErrNotFound},
		{"Too many requests", domain.ErrRateLimited},
		{"Create error: it already exists.", domain.ErrConflict},
	}
	for _, tt := range tests {
		if err := mapAPIError(porkbunResponse{Status: "ERROR", Message: tt.msg}.err()); !errors.Is(err, tt.want) {
			t.Errorf("mapAPIError(%q) = %v, want %v", tt.msg, err, tt.want)
		}
	}
	if err := mapAPIError(nil); err != nil {
		t.Errorf("mapAPIError(nil) = %v", err)
	}
}
