package fixture

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"gopkg.in/dnaeon/go-vcr.v4/pkg/cassette"
)

// Placeholder replaces every scrubbed value.
const Placeholder = "REDACTED"

// Scrubber names the request values that must never be persisted.
type Scrubber struct {
	// QueryParameters are URL query parameter names (e.g. "api_key").
	QueryParameters []string

	// PostDataParameters are form fields or top-level JSON body fields
	// (e.g. "apikey", "secretapikey").
	PostDataParameters []string

	// Headers are request header names (e.g. "Authorization").
	Headers []string
}

// URL returns raw with the declared query parameters replaced and the
// query re-encoded in sorted order, so equal requests compare equal.
func (s Scrubber) URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	for _, name := range s.QueryParameters {
		if _, ok := q[name]; ok {
			q.Set(name, Placeholder)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Body returns body with the declared post data parameters replaced.
// Bodies that are neither form-encoded nor a JSON object are returned
// unchanged.
func (s Scrubber) Body(contentType, body string) string {
	if body == "" || len(s.PostDataParameters) == 0 {
		return body
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(body)
		if err != nil {
			return body
		}
		for _, name := range s.PostDataParameters {
			if _, ok := values[name]; ok {
				values.Set(name, Placeholder)
			}
		}
		return values.Encode()

	case mediaType == "application/json" || strings.HasPrefix(strings.TrimSpace(body), "{"):
		var obj map[string]any
		if err := json.Unmarshal([]byte(body), &obj); err != nil {
			return body
		}
		changed := false
		for _, name := range s.PostDataParameters {
			if _, ok := obj[name]; ok {
				obj[name] = Placeholder
				changed = true
			}
		}
		if !changed {
			return body
		}
		out, err := json.Marshal(obj)
		if err != nil {
			return body
		}
		return string(out)
	}

	return body
}

// Header returns a copy of h with the declared headers replaced.
func (s Scrubber) Header(h http.Header) http.Header {
	if len(h) == 0 {
		return nil
	}
	out := h.Clone()
	for _, name := range s.Headers {
		key := http.CanonicalHeaderKey(name)
		if _, ok := out[key]; ok {
			out[key] = []string{Placeholder}
		}
	}
	return out
}

// Form returns a copy of v with every declared query and post data
// parameter replaced. Parsed forms merge the URL query into the body
// values, so both lists apply.
func (s Scrubber) Form(v url.Values) url.Values {
	if len(v) == 0 {
		return v
	}
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	for _, names := range [][]string{s.QueryParameters, s.PostDataParameters} {
		for _, name := range names {
			if _, ok := out[name]; ok {
				out.Set(name, Placeholder)
			}
		}
	}
	return out
}

// Scrub redacts an interaction in place before it is saved.
func (s Scrubber) Scrub(i *cassette.Interaction) error {
	i.Request.URL = s.URL(i.Request.URL)
	i.Request.Headers = s.Header(i.Request.Headers)
	i.Request.Body = s.Body(i.Request.Headers.Get("Content-Type"), i.Request.Body)
	i.Request.Form = s.Form(i.Request.Form)
	return nil
}

// Matches reports whether a live request corresponds to a recorded one.
// Both sides are compared after redaction, so replays succeed with any
// credentials.
func (s Scrubber) Matches(r *http.Request, i cassette.Request) bool {
	return r.Method == i.Method && s.URL(r.URL.String()) == s.URL(i.URL)
}

// Leaks returns the values that occur verbatim in text.
func Leaks(text string, values ...string) []string {
	var found []string
	for _, v := range values {
		if v != "" && strings.Contains(text, v) {
			found = append(found, v)
		}
	}
	return found
}
