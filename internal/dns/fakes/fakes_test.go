package fakes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
)

func do(t *testing.T, h http.Handler, method, target, body string, header http.Header) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out, _ := io.ReadAll(rec.Result().Body)
	return rec.Code, string(out)
}

func zonomiURL(params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return "https://zonomi.com/app/dns/dyndns.jsp?" + q.Encode()
}

var ignoreID = cmpopts.IgnoreFields(domain.Record{}, "ID")

func TestZonomi_SetIsAdditive(t *testing.T) {
	z := NewZonomi("key", "example.com")

	for _, v := range []string{"one", "two", "two"} {
		code, body := do(t, z, http.MethodGet, zonomiURL(map[string]string{
			"action": "SET", "api_key": "key", "name": "txt.example.com", "type": "TXT", "value": v, "ttl": "300",
		}), "", nil)
		if code != http.StatusOK || !strings.Contains(body, "<is_ok>OK:</is_ok>") {
			t.Fatalf("SET %s = %d %s", v, code, body)
		}
	}

	want := []domain.Record{
		{Type: "TXT", Name: "txt.example.com", Content: "one", TTL: 300},
		{Type: "TXT", Name: "txt.example.com", Content: "two", TTL: 300},
	}
	if diff := cmp.Diff(want, z.Records("example.com"), ignoreID); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestZonomi_QueryWildcardAndDelete(t *testing.T) {
	z := NewZonomi("key", "example.com")
	z.Seed("example.com",
		domain.Record{Type: "A", Name: "www", Content: "1.2.3.4", TTL: 3600},
		domain.Record{Type: "TXT", Name: "www", Content: "hello", TTL: 3600},
	)

	_, body := do(t, z, http.MethodGet, zonomiURL(map[string]string{
		"action": "QUERY", "api_key": "key", "name": "**.example.com",
	}), "", nil)
	if !strings.Contains(body, `value="1.2.3.4"`) || !strings.Contains(body, `ttl="3600 seconds"`) {
		t.Errorf("QUERY body = %s", body)
	}

	do(t, z, http.MethodGet, zonomiURL(map[string]string{
		"action": "DELETE", "api_key": "key", "name": "www.example.com", "type": "TXT",
	}), "", nil)
	if got := z.Records("example.com"); len(got) != 1 || got[0].Type != "A" {
		t.Errorf("records after DELETE = %+v", got)
	}
}

func TestZonomi_Errors(t *testing.T) {
	z := NewZonomi("key", "example.com")

	code, body := do(t, z, http.MethodGet, zonomiURL(map[string]string{
		"action": "QUERY", "api_key": "wrong", "name": "**.example.com",
	}), "", nil)
	if code != http.StatusUnauthorized || !strings.Contains(body, "<error>") {
		t.Errorf("bad key = %d %s", code, body)
	}

	code, _ = do(t, z, http.MethodGet, zonomiURL(map[string]string{
		"action": "QUERY", "api_key": "key", "name": "**.other.org",
	}), "", nil)
	if code != http.StatusNotFound {
		t.Errorf("unmanaged zone status = %d, want 404", code)
	}
}

func TestPorkbun_CreateRetrieveDelete(t *testing.T) {
	p := NewPorkbun("pk", "sk", "example.com")
	auth := `"apikey":"pk","secretapikey":"sk"`

	code, body := do(t, p, http.MethodPost, "/api/json/v3/dns/create/example.com",
		`{`+auth+`,"name":"www","type":"A","content":"1.2.3.4","ttl":"600"}`, nil)
	if code != http.StatusOK {
		t.Fatalf("create = %d %s", code, body)
	}
	var created struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal([]byte(body), &created); err != nil || created.ID == 0 {
		t.Fatalf("create body = %s", body)
	}

	code, _ = do(t, p, http.MethodPost, "/api/json/v3/dns/create/example.com",
		`{`+auth+`,"name":"www","type":"A","content":"1.2.3.4"}`, nil)
	if code != http.StatusBadRequest {
		t.Errorf("duplicate create status = %d, want 400", code)
	}

	_, body = do(t, p, http.MethodPost, "/api/json/v3/dns/retrieve/example.com", `{`+auth+`}`, nil)
	if !strings.Contains(body, `"name":"www.example.com"`) {
		t.Errorf("retrieve body = %s", body)
	}

	code, _ = do(t, p, http.MethodPost, "/api/json/v3/dns/delete/example.com/1", `{`+auth+`}`, nil)
	if code != http.StatusOK || len(p.Records("example.com")) != 0 {
		t.Errorf("delete status = %d, records = %+v", code, p.Records("example.com"))
	}
}

func TestPorkbun_RejectsBadCredentialsAndDomains(t *testing.T) {
	p := NewPorkbun("pk", "sk", "example.com")

	code, body := do(t, p, http.MethodPost, "/api/json/v3/ping", `{"apikey":"pk","secretapikey":"nope"}`, nil)
	if code != http.StatusForbidden || !strings.Contains(body, "Invalid API key") {
		t.Errorf("bad key = %d %s", code, body)
	}

	code, body = do(t, p, http.MethodPost, "/api/json/v3/dns/retrieve/other.org", `{"apikey":"pk","secretapikey":"sk"}`, nil)
	if code != http.StatusBadRequest || !strings.Contains(body, "Invalid domain") {
		t.Errorf("unmanaged = %d %s", code, body)
	}
}

func TestCloudflare_ZoneLookupAndRecords(t *testing.T) {
	c := NewCloudflare("tok", "example.com")
	auth := http.Header{"Authorization": {"Bearer tok"}}

	_, body := do(t, c, http.MethodGet, "/client/v4/zones?name=example.com", "", auth)
	var zones struct {
		Result []struct {
			ID string `json:"id"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(body), &zones); err != nil || len(zones.Result) != 1 {
		t.Fatalf("zones body = %s", body)
	}
	if len(zones.Result[0].ID) != 32 {
		t.Errorf("zone id = %q, want 32 hex digits", zones.Result[0].ID)
	}
	base := "/client/v4/zones/" + zones.Result[0].ID + "/dns_records"

	code, body := do(t, c, http.MethodPost, base, `{"type":"TXT","name":"_acme.example.com","content":"v","ttl":120}`, auth)
	if code != http.StatusOK {
		t.Fatalf("create = %d %s", code, body)
	}
	code, body = do(t, c, http.MethodPost, base, `{"type":"TXT","name":"_acme.example.com","content":"v"}`, auth)
	if code != http.StatusBadRequest || !strings.Contains(body, "81058") {
		t.Errorf("duplicate create = %d %s", code, body)
	}

	_, body = do(t, c, http.MethodGet, base+"?type=TXT&name=_acme.example.com", "", auth)
	if !strings.Contains(body, `"content":"v"`) {
		t.Errorf("filtered list = %s", body)
	}

	code, body = do(t, c, http.MethodDelete, base+"/missing", "", auth)
	if code != http.StatusNotFound || !strings.Contains(body, "81044") {
		t.Errorf("delete missing = %d %s", code, body)
	}
}

func TestCloudflare_Unauthorized(t *testing.T) {
	c := NewCloudflare("tok", "example.com")
	code, body := do(t, c, http.MethodGet, "/client/v4/zones", "", http.Header{"Authorization": {"Bearer bad"}})
	if code != http.StatusUnauthorized || !strings.Contains(body, "10000") {
		t.Errorf("bad token = %d %s", code, body)
	}
}
