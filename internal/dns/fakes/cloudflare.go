package fakes

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
)

// Cloudflare emulates the zone and DNS record endpoints of the
// Cloudflare API v4. Zone and record identifiers are random 32-digit
// hex strings, as on the real service.
type Cloudflare struct {
	store   *store
	token   string
	zoneIDs map[string]string
}

// NewCloudflare returns a fake that accepts the bearer token and manages zones.
func NewCloudflare(token string, zones ...string) *Cloudflare {
	s := newStore(zones)
	s.newID = func(*store) string { return hexID() }
	c := &Cloudflare{store: s, token: token, zoneIDs: map[string]string{}}
	for z := range s.zones {
		c.zoneIDs[hexID()] = z
	}
	return c
}

func hexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Seed inserts records into zone.
func (c *Cloudflare) Seed(zone string, records ...domain.Record) { c.store.seed(zone, records...) }

// Records returns every record in zone.
func (c *Cloudflare) Records(zone string) []domain.Record { return c.store.snapshot(zone) }

// Slow delays every response by d.
func (c *Cloudflare) Slow(d time.Duration) { c.store.latency = d }

type cfError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type cfRecord struct {
	ID       string `json:"id"`
	ZoneID   string `json:"zone_id"`
	ZoneName string `json:"zone_name"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl"`
	Priority *int   `json:"priority,omitempty"`
	Comment  string `json:"comment"`
}

type cfRecordBody struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Content  string  `json:"content"`
	TTL      int     `json:"ttl"`
	Priority *int    `json:"priority"`
	Comment  *string `json:"comment"`
}

func (c *Cloudflare) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.store.sleep()

	if r.Header.Get("Authorization") != "Bearer "+c.token || c.token == "" {
		cfFail(w, http.StatusUnauthorized, 10000, "Authentication error")
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/client/v4"), "/"), "/")
	if parts[0] != "zones" {
		cfFail(w, http.StatusNotFound, 7000, "No route for that URI")
		return
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if len(parts) == 1 {
		c.listZones(w, r)
		return
	}
	zone, ok := c.zoneIDs[parts[1]]
	if !ok || len(parts) < 3 || parts[2] != "dns_records" {
		cfFail(w, http.StatusNotFound, 7003, "Could not route to "+r.URL.Path+", perhaps your object identifier is invalid?")
		return
	}

	if len(parts) == 3 {
		switch r.Method {
		case http.MethodGet:
			c.listRecords(w, r, parts[1], zone)
		case http.MethodPost:
			c.createRecord(w, r, parts[1], zone)
		default:
			cfFail(w, http.StatusMethodNotAllowed, 10405, "Method not allowed")
		}
		return
	}

	id := parts[3]
	existing, found := c.store.get(zone, id)
	if !found {
		cfFail(w, http.StatusNotFound, 81044, "Record does not exist.")
		return
	}
	switch r.Method {
	case http.MethodGet:
		cfOK(w, toCFRecord(parts[1], zone, existing))
	case http.MethodPatch, http.MethodPut:
		c.updateRecord(w, r, parts[1], zone, existing)
	case http.MethodDelete:
		c.store.remove(zone, func(rec domain.Record) bool { return rec.ID == id })
		cfOK(w, map[string]string{"id": id})
	default:
		cfFail(w, http.StatusMethodNotAllowed, 10405, "Method not allowed")
	}
}

func (c *Cloudflare) listZones(w http.ResponseWriter, r *http.Request) {
	want := names.Zone(r.URL.Query().Get("name"))
	ids := make([]string, 0, len(c.zoneIDs))
	for id, z := range c.zoneIDs {
		if want == "" || want == z {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return c.zoneIDs[ids[i]] < c.zoneIDs[ids[j]] })

	zones := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		zones = append(zones, map[string]string{
			"id":         id,
			"name":       c.zoneIDs[id],
			"status":     "active",
			"created_on": "2023-01-01T00:00:00Z",
		})
	}
	cfList(w, zones, len(zones))
}

func (c *Cloudflare) listRecords(w http.ResponseWriter, r *http.Request, zoneID, zone string) {
	q := r.URL.Query()
	filter := domain.Filter{
		Type:    domain.RecordType(strings.ToUpper(q.Get("type"))),
		Name:    q.Get("name"),
		Content: q.Get("content"),
	}
	if filter.Name != "" {
		filter.Name = names.Full(filter.Name, zone)
	}
	recs := c.store.list(zone, filter)
	out := make([]cfRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toCFRecord(zoneID, zone, rec))
	}
	cfList(w, out, len(out))
}

func (c *Cloudflare) createRecord(w http.ResponseWriter, r *http.Request, zoneID, zone string) {
	var body cfRecordBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Type == "" || body.Content == "" {
		cfFail(w, http.StatusBadRequest, 9000, "DNS record type and content are required")
		return
	}
	rec := fromCFBody(body, zone, domain.Record{TTL: 1})
	created, isNew := c.store.add(zone, rec)
	if !isNew {
		cfFail(w, http.StatusBadRequest, 81058, "An identical record already exists.")
		return
	}
	cfOK(w, toCFRecord(zoneID, zone, created))
}

func (c *Cloudflare) updateRecord(w http.ResponseWriter, r *http.Request, zoneID, zone string, existing domain.Record) {
	var body cfRecordBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		cfFail(w, http.StatusBadRequest, 9000, "Invalid request body")
		return
	}
	rec := fromCFBody(body, zone, existing)
	c.store.replace(zone, rec)
	cfOK(w, toCFRecord(zoneID, zone, rec))
}

// fromCFBody applies the set fields of body on top of base.
func fromCFBody(body cfRecordBody, zone string, base domain.Record) domain.Record {
	if body.Type != "" {
		base.Type = domain.RecordType(strings.ToUpper(body.Type))
	}
	if body.Name != "" {
		base.Name = names.Full(body.Name, zone)
	}
	if base.Name == "" {
		base.Name = zone
	}
	if body.Content != "" {
		base.Content = body.Content
	}
	if body.TTL > 0 {
		base.TTL = body.TTL
	}
	if body.Priority != nil {
		base.Priority = *body.Priority
	}
	if body.Comment != nil {
		base.Notes = *body.Comment
	}
	return base
}

func toCFRecord(zoneID, zone string, r domain.Record) cfRecord {
	out := cfRecord{
		ID:       r.ID,
		ZoneID:   zoneID,
		ZoneName: zone,
		Name:     r.Name,
		Type:     string(r.Type),
		Content:  r.Content,
		TTL:      r.TTL,
		Comment:  r.Notes,
	}
	if r.Priority > 0 {
		p := r.Priority
		out.Priority = &p
	}
	return out
}

func cfOK(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"errors":   []cfError{},
		"messages": []cfError{},
		"result":   result,
	})
}

func cfList(w http.ResponseWriter, result any, count int) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"errors":  []cfError{},
		"result":  result,
		"result_info": map[string]int{
			"page":        1,
			"per_page":    max(count, 100),
			"total_pages": 1,
			"count":       count,
			"total_count": count,
		},
	})
}

func cfFail(w http.ResponseWriter, status, code int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"errors":  []cfError{{Code: code, Message: msg}},
		"result":  nil,
	})
}
