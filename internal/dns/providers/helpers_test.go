package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/log"
)

const testZone = "example.com"

// testContext returns a context carrying a test logger.
func testContext(t *testing.T) context.Context {
	t.Helper()
	return log.WithLogger(context.Background(), zaptest.NewLogger(t))
}

// serve starts an httptest server for h and returns its URL.
func serve(t *testing.T, h http.Handler) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL
}

// settingsFor returns settings pointing a provider at endpoint for the
// test zone, merged with extra key/value pairs.
func settingsFor(endpoint string, kv ...string) engine.Settings {
	s := engine.Settings{
		engine.KeyDomain:        testZone,
		engine.KeyAPIEndpoint:   endpoint,
		engine.KeyRetryAttempts: "1",
	}
	for i := 0; i+1 < len(kv); i += 2 {
		s[kv[i]] = kv[i+1]
	}
	return s
}

// countingHandler counts the requests it forwards to next.
type countingHandler struct {
	next  http.Handler
	count int
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.count++
	c.next.ServeHTTP(w, r)
}

// mustCreate creates a record or fails the test.
func mustCreate(t *testing.T, ctx context.Context, p domain.Provider, typ domain.RecordType, name, content string) {
	t.Helper()
	if err := p.CreateRecord(ctx, domain.CreateRecordOpts{Type: typ, Name: name, Content: content}); err != nil {
		t.Fatalf("CreateRecord(%s %s %s) error = %v", typ, name, content, err)
	}
}
