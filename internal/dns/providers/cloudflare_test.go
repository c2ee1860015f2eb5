package providers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/fakes"
)

// --- Test helpers ---

// newTestCloudflareProvider creates a CloudflareProvider pointed at the given test server.
func newTestCloudflareProvider(t *testing.T, serverURL string) *CloudflareProvider {
	t.Helper()
	p, err := NewCloudflare(settingsFor(serverURL, "auth_token", "test-token"))
	if err != nil {
		t.Fatalf("NewCloudflare() error = %v", err)
	}
	return p.(*CloudflareProvider)
}

// newFakeCloudflare returns a provider backed by an in-memory Cloudflare fake.
func newFakeCloudflare(t *testing.T) (*CloudflareProvider, *fakes.Cloudflare) {
	t.Helper()
	fake := fakes.NewCloudflare("test-token", testZone)
	return newTestCloudflareProvider(t, serve(t, fake)), fake
}

// cfSuccessListEnvelope returns a Cloudflare success list envelope with pagination.
func cfSuccessListEnvelope(result []any, page, totalPages, totalCount int) map[string]any {
	return map[string]any{
		"success":  true,
		"errors":   []any{},
		"messages": []any{},
		"result":   result,
		"result_info": map[string]any{
			"page":        page,
			"per_page":    50,
			"total_pages": totalPages,
			"count":       len(result),
			"total_count": totalCount,
		},
	}
}

// cfErrorEnvelope returns a Cloudflare error envelope.
func cfErrorEnvelope(code int, message string) map[string]any {
	return map[string]any{
		"success":  false,
		"errors":   []any{map[string]any{"code": code, "message": message}},
		"messages": []any{},
		"result":   nil,
	}
}

// testCFZoneJSON returns a sample Cloudflare zone object.
func testCFZoneJSON(id, name, status string) map[string]any {
	return map[string]any{
		"id":         id,
		"name":       name,
		"status":     status,
		"created_on": "2024-01-01T00:00:00.000000Z",
	}
}

// newCFRouter creates a test server routing "METHOD /path" patterns to handlers.
func newCFRouter(t *testing.T, handlers map[string]http.HandlerFunc) string {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range handlers {
		mux.HandleFunc(pattern, h)
	}
	return serve(t, mux)
}

func writeCF(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// --- ListDomains tests ---

func TestCloudflare_ListDomains_Pagination(t *testing.T) {
	callCount := 0
	url := newCFRouter(t, map[string]http.HandlerFunc{
		"GET /zones": func(w http.ResponseWriter, r *http.Request) {
			callCount++
			if r.URL.Query().Get("page") == "1" {
				writeCF(w, http.StatusOK, cfSuccessListEnvelope([]any{testCFZoneJSON("zone-1", "example.com", "active")}, 1, 2, 2))
				return
			}
			writeCF(w, http.StatusOK, cfSuccessListEnvelope([]any{testCFZoneJSON("zone-2", "another.co.uk", "active")}, 2, 2, 2))
		},
	})

	p := newTestCloudflareProvider(t, url)

	domains, err := p.ListDomains(testContext(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []domain.Domain{
		{Name: "example.com", Status: "active", TLD: "com", CreateDate: "2024-01-01T00:00:00.000000Z", ExpireDate: "N/A"},
		{Name: "another.co.uk", Status: "active", TLD: "co.uk", CreateDate: "2024-01-01T00:00:00.000000Z", ExpireDate: "N/A"},
	}
	if diff := cmp.Diff(want, domains); diff != "" {
		t.Errorf("ListDomains mismatch (-want +got):\n%s", diff)
	}
	if callCount != 2 {
		t.Errorf("expected 2 API calls for pagination, got %d", callCount)
	}
}

func TestCloudflare_ListDomains_Unauthorized(t *testing.T) {
	url := newCFRouter(t, map[string]http.HandlerFunc{
		"GET /zones": func(w http.ResponseWriter, r *http.Request) {
			writeCF(w, http.StatusUnauthorized, cfErrorEnvelope(9109, "Invalid access token"))
		},
	})

	p := newTestCloudflareProvider(t, url)

	_, err := p.ListDomains(testContext(t))
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Errorf("expected ErrAuthentication, got: %v", err)
	}
}

// --- Authentication ---

func TestCloudflare_Authenticate_ResolvesZone(t *testing.T) {
	var capturedAuth string
	url := newCFRouter(t, map[string]http.HandlerFunc{
		"GET /zones": func(w http.ResponseWriter, r *http.Request) {
			capturedAuth = r.Header.Get("Authorization")
			writeCF(w, http.StatusOK, cfSuccessListEnvelope([]any{testCFZoneJSON("zone-123", testZone, "active")}, 1, 1, 1))
		},
	})

	p := newTestCloudflareProvider(t, url)
	if err := p.Authenticate(testContext(t)); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if p.zoneID != "zone-123" {
		t.Errorf("zoneID = %q, want zone-123", p.zoneID)
	}
	if capturedAuth != "Bearer test-token" {
		t.Errorf("expected Authorization = %q, got %q", "Bearer test-token", capturedAuth)
	}
}

func TestCloudflare_Authenticate_Failures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakes.Cloudflare
	}{
		{"bad token", fakes.NewCloudflare("another-token", testZone)},
		{"unmanaged domain", fakes.NewCloudflare("test-token", "other.org")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestCloudflareProvider(t, serve(t, tt.fake))
			if err := p.Authenticate(testContext(t)); !errors.Is(err, domain.ErrAuthentication) {
				t.Errorf("err = %v, want ErrAuthentication", err)
			}
		})
	}
}

// --- Record operations ---

func TestCloudflare_CreateAndListRecords(t *testing.T) {
	p, _ := newFakeCloudflare(t)
	ctx := testContext(t)

	err := p.CreateRecord(ctx, domain.CreateRecordOpts{
		Type: domain.RecordTypeMX, Name: "@", Content: "mx.example.com", TTL: 3600, Priority: 10, Notes: "primary",
	})
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	mustCreate(t, ctx, p, domain.RecordTypeMX, "example.com.", "mx.example.com")
	mustCreate(t, ctx, p, domain.RecordTypeA, "www", "1.2.3.4")

	got, err := p.ListRecords(ctx, domain.Filter{Type: "MX"})
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	want := []domain.Record{{Type: "MX", Name: "example.com", Content: "mx.example.com", TTL: 3600, Priority: 10, Notes: "primary"}}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(domain.Record{}, "ID")); diff != "" {
		t.Errorf("ListRecords mismatch (-want +got):\n%s", diff)
	}
	if len(got[0].ID) != 32 {
		t.Errorf("record ID = %q, want a 32 character identifier", got[0].ID)
	}
}

func TestCloudflare_UpdateRecord_UpdatesEveryMatch(t *testing.T) {
	p, fake := newFakeCloudflare(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "one")
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "two")

	err := p.UpdateRecord(ctx, domain.ByFilter(domain.Filter{Type: "TXT", Name: "set"}), domain.UpdateRecordOpts{TTL: 300})
	if err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}
	for _, r := range fake.Records(testZone) {
		if r.TTL != 300 {
			t.Errorf("record %+v not updated", r)
		}
	}
}

func TestCloudflare_UpdateRecord_ByIDRename(t *testing.T) {
	p, fake := newFakeCloudflare(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "orig.nameonly.test", "challengetoken")
	id := fake.Records(testZone)[0].ID

	if err := p.UpdateRecord(ctx, domain.ByID(id), domain.UpdateRecordOpts{Name: "renamed.test"}); err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}
	got := fake.Records(testZone)
	if len(got) != 1 || got[0].ID != id || got[0].Name != "renamed.test.example.com" {
		t.Errorf("records = %+v, want record %s renamed", got, id)
	}
}

func TestCloudflare_UpdateRecord_NotFound(t *testing.T) {
	p, _ := newFakeCloudflare(t)

	err := p.UpdateRecord(testContext(t), domain.ByID("missing"), domain.UpdateRecordOpts{Content: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestCloudflare_DeleteRecord(t *testing.T) {
	p, fake := newFakeCloudflare(t)
	ctx := testContext(t)
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "one")
	mustCreate(t, ctx, p, domain.RecordTypeTXT, "set", "two")

	if err := p.DeleteRecord(ctx, domain.ByFilter(domain.Filter{Name: "set.example.com.", Content: "two"})); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	if err := p.DeleteRecord(ctx, domain.ByID("missing")); err != nil {
		t.Fatalf("DeleteRecord(missing) error = %v", err)
	}

	got := fake.Records(testZone)
	if len(got) != 1 || got[0].Content != "one" {
		t.Errorf("records = %+v, want only the \"one\" value", got)
	}
}

func TestEnvelopeError(t *testing.T) {
	tests := []struct {
		status int
		code   int
		want   error
	}{
		{http.StatusForbidden, 0, domain.ErrAuthentication},
		{http.StatusBadRequest, 10000, domain.ErrAuthentication},
		{http.StatusBadRequest, 81044, domain.ErrNotFound},
		{http.StatusBadRequest, 81058, domain.ErrConflict},
		{http.StatusTooManyRequests, 0, domain.ErrRateLimited},
	}
	for _, tt := range tests {
		err := envelopeError(false, []cfError{{Code: tt.code, Message: "x"}}, tt.status)
		if !errors.Is(err, tt.want) {
			t.Errorf("envelopeError(%d, %d) = %v, want %v", tt.status, tt.code, err, tt.want)
		}
	}
	if err := envelopeError(true, nil, http.StatusOK); err != nil {
		t.Errorf("success envelope: err = %v", err)
	}
}
