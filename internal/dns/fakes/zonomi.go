package fakes

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
)

const zonomiDefaultTTL = 86400

// Zonomi emulates the Zonomi dynamic DNS API served at /dns/dyndns.jsp.
//
// SET adds a value next to any existing values of the same name and type.
// Setting an exact duplicate only refreshes its TTL.
type Zonomi struct {
	store  *store
	apiKey string
}

// NewZonomi returns a fake that accepts apiKey and manages zones.
func NewZonomi(apiKey string, zones ...string) *Zonomi {
	return &Zonomi{store: newStore(zones), apiKey: apiKey}
}

// Seed inserts records into zone.
func (z *Zonomi) Seed(zone string, records ...domain.Record) { z.store.seed(zone, records...) }

// Records returns every record in zone.
func (z *Zonomi) Records(zone string) []domain.Record { return z.store.snapshot(zone) }

// Slow delays every response by d.
func (z *Zonomi) Slow(d time.Duration) { z.store.latency = d }

type zonomiResult struct {
	XMLName xml.Name       `xml:"dnsapi_result"`
	IsOK    string         `xml:"is_ok"`
	Actions []zonomiAction `xml:"actions>action"`
}

type zonomiAction struct {
	Action  string         `xml:"action,attr"`
	Host    string         `xml:"host,attr"`
	Records []zonomiRecord `xml:"record"`
}

type zonomiRecord struct {
	Type       string `xml:"type,attr"`
	Host       string `xml:"host,attr"`
	Value      string `xml:"value,attr"`
	TTL        string `xml:"ttl,attr"`
	ChangeDate int64  `xml:"change_date,attr"`
}

func (z *Zonomi) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	z.store.sleep()

	if strings.TrimPrefix(r.URL.Path, "/app") != "/dns/dyndns.jsp" {
		zonomiError(w, http.StatusNotFound, "ERROR: Unknown page "+r.URL.Path)
		return
	}
	q := r.URL.Query()
	if q.Get("api_key") == "" || q.Get("api_key") != z.apiKey {
		zonomiError(w, http.StatusUnauthorized, "ERROR: Invalid or missing api_key")
		return
	}

	name := strings.TrimPrefix(q.Get("name"), "**.")
	zone, ok := z.store.zoneFor(name)
	if name == "" || !ok {
		zonomiError(w, http.StatusNotFound, fmt.Sprintf("ERROR: No zone found for %q in this account", q.Get("name")))
		return
	}

	z.store.mu.Lock()
	defer z.store.mu.Unlock()

	action := zonomiAction{Action: strings.ToUpper(q.Get("action")), Host: q.Get("name")}
	filter := domain.Filter{Type: domain.RecordType(strings.ToUpper(q.Get("type"))), Content: q.Get("value")}
	if !strings.HasPrefix(q.Get("name"), "**.") {
		filter.Name = names.Full(name, zone)
	}

	switch action.Action {
	case "QUERY":
		for _, rec := range z.store.list(zone, filter) {
			action.Records = append(action.Records, toZonomiRecord(rec))
		}
	case "SET":
		if filter.Name == "" || filter.Content == "" {
			zonomiError(w, http.StatusBadRequest, "ERROR: SET requires name and value")
			return
		}
		typ := filter.Type
		if typ == "" {
			typ = domain.RecordTypeA
		}
		ttl := zonomiDefaultTTL
		if v := q.Get("ttl"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				zonomiError(w, http.StatusBadRequest, "ERROR: Invalid ttl "+v)
				return
			}
			ttl = n
		}
		rec, _ := z.store.add(zone, domain.Record{Type: typ, Name: filter.Name, Content: filter.Content, TTL: ttl})
		action.Records = append(action.Records, toZonomiRecord(rec))
	case "DELETE":
		if filter.Name == "" {
			zonomiError(w, http.StatusBadRequest, "ERROR: DELETE requires a name")
			return
		}
		for _, rec := range z.store.list(zone, filter) {
			action.Records = append(action.Records, toZonomiRecord(rec))
		}
		z.store.remove(zone, func(rec domain.Record) bool { return filter.Matches(rec, zone) })
	default:
		zonomiError(w, http.StatusBadRequest, "ERROR: Unknown action "+q.Get("action"))
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	out, _ := xml.Marshal(zonomiResult{IsOK: "OK:", Actions: []zonomiAction{action}})
	_, _ = w.Write(append([]byte(xml.Header), out...))
}

func toZonomiRecord(r domain.Record) zonomiRecord {
	return zonomiRecord{
		Type:       string(r.Type),
		Host:       r.Name,
		Value:      r.Content,
		TTL:        fmt.Sprintf("%d seconds", r.TTL),
		ChangeDate: 1700000000,
	}
}

func zonomiError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	var b strings.Builder
	b.WriteString(xml.Header + "<error>")
	_ = xml.EscapeText(&b, []byte(msg))
	b.WriteString("</error>")
	_, _ = w.Write([]byte(b.String()))
}
