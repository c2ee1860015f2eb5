package fixture

import (
	"net/http"
	"net/http/httptest"
)

// HandlerTransport serves requests in-process from an http.Handler,
// whatever host the request URL names. Recording through it against a
// fake backend keeps cassette URLs identical to live ones.
type HandlerTransport struct {
	Handler http.Handler
}

// RoundTrip implements http.RoundTripper.
func (t HandlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	rec := httptest.NewRecorder()
	t.Handler.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}
