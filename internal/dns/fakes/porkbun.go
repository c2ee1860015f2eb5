package fakes

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
)

// Porkbun emulates the Porkbun JSON API v3. Credentials travel in the
// request body, every call is a POST.
type Porkbun struct {
	store     *store
	apiKey    string
	secretKey string
}

// NewPorkbun returns a fake that accepts the given key pair and manages zones.
func NewPorkbun(apiKey, secretKey string, zones ...string) *Porkbun {
	return &Porkbun{store: newStore(zones), apiKey: apiKey, secretKey: secretKey}
}

// Seed inserts records into zone.
func (p *Porkbun) Seed(zone string, records ...domain.Record) { p.store.seed(zone, records...) }

// Records returns every record in zone.
func (p *Porkbun) Records(zone string) []domain.Record { return p.store.snapshot(zone) }

// Slow delays every response by d.
func (p *Porkbun) Slow(d time.Duration) { p.store.latency = d }

type porkbunRequest struct {
	APIKey    string `json:"apikey"`
	SecretKey string `json:"secretapikey"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	TTL       string `json:"ttl"`
	Prio      string `json:"prio"`
	Notes     string `json:"notes"`
}

type porkbunRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     string `json:"ttl"`
	Prio    string `json:"prio"`
	Notes   string `json:"notes"`
}

func (p *Porkbun) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.store.sleep()

	if r.Method != http.MethodPost {
		porkbunFail(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	var req porkbunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		porkbunFail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if req.APIKey != p.apiKey || req.SecretKey != p.secretKey || req.APIKey == "" {
		porkbunFail(w, http.StatusForbidden, "Invalid API key. (002)")
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/json/v3"), "/"), "/")

	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	switch {
	case len(parts) == 1 && parts[0] == "ping":
		writeJSON(w, http.StatusOK, map[string]any{"status": "SUCCESS", "yourIp": "127.0.0.1"})
	case len(parts) == 2 && parts[0] == "domain" && parts[1] == "listAll":
		p.listDomains(w)
	case len(parts) >= 3 && parts[0] == "dns":
		zone := names.Zone(parts[2])
		if !p.store.managed(zone) {
			porkbunFail(w, http.StatusBadRequest, "Invalid domain.")
			return
		}
		id := ""
		if len(parts) > 3 {
			id = parts[3]
		}
		p.dns(w, parts[1], zone, id, req)
	default:
		porkbunFail(w, http.StatusNotFound, "Invalid endpoint.")
	}
}

func (p *Porkbun) listDomains(w http.ResponseWriter) {
	zones := make([]string, 0, len(p.store.zones))
	for z := range p.store.zones {
		zones = append(zones, z)
	}
	sort.Strings(zones)

	domains := make([]map[string]any, 0, len(zones))
	for _, z := range zones {
		domains = append(domains, map[string]any{
			"domain":     z,
			"status":     "ACTIVE",
			"tld":        z[strings.LastIndexByte(z, '.')+1:],
			"createDate": "2023-01-01 00:00:00",
			"expireDate": "2030-01-01 00:00:00",
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "SUCCESS", "domains": domains})
}

func (p *Porkbun) dns(w http.ResponseWriter, op, zone, id string, req porkbunRequest) {
	switch op {
	case "retrieve":
		var out []porkbunRecord
		for _, rec := range p.store.list(zone, domain.Filter{}) {
			if id == "" || rec.ID == id {
				out = append(out, toPorkbunRecord(rec))
			}
		}
		if out == nil {
			out = []porkbunRecord{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "SUCCESS", "records": out})
	case "create":
		rec, ok := fromPorkbunRequest(req, zone)
		if !ok {
			porkbunFail(w, http.StatusBadRequest, "Invalid type, content or TTL.")
			return
		}
		created, isNew := p.store.add(zone, rec)
		if !isNew {
			porkbunFail(w, http.StatusBadRequest, "Create error: We were unable to create the DNS record, it already exists.")
			return
		}
		n, _ := strconv.Atoi(created.ID)
		writeJSON(w, http.StatusOK, map[string]any{"status": "SUCCESS", "id": n})
	case "edit":
		if _, found := p.store.get(zone, id); !found {
			porkbunFail(w, http.StatusBadRequest, "Edit error: Invalid record id.")
			return
		}
		rec, ok := fromPorkbunRequest(req, zone)
		if !ok {
			porkbunFail(w, http.StatusBadRequest, "Invalid type, content or TTL.")
			return
		}
		rec.ID = id
		p.store.replace(zone, rec)
		writeJSON(w, http.StatusOK, map[string]any{"status": "SUCCESS"})
	case "delete":
		if p.store.remove(zone, func(rec domain.Record) bool { return rec.ID == id }) == 0 {
			porkbunFail(w, http.StatusBadRequest, "Delete error: Invalid record id.")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "SUCCESS"})
	default:
		porkbunFail(w, http.StatusNotFound, "Invalid endpoint.")
	}
}

func fromPorkbunRequest(req porkbunRequest, zone string) (domain.Record, bool) {
	if req.Type == "" || req.Content == "" {
		return domain.Record{}, false
	}
	ttl := 600
	if req.TTL != "" {
		n, err := strconv.Atoi(req.TTL)
		if err != nil {
			return domain.Record{}, false
		}
		ttl = n
	}
	prio, _ := strconv.Atoi(req.Prio)
	return domain.Record{
		Type:     domain.RecordType(strings.ToUpper(req.Type)),
		Name:     names.Full(req.Name, zone),
		Content:  req.Content,
		TTL:      ttl,
		Priority: prio,
		Notes:    req.Notes,
	}, true
}

func toPorkbunRecord(r domain.Record) porkbunRecord {
	return porkbunRecord{
		ID:      r.ID,
		Name:    r.Name,
		Type:    string(r.Type),
		Content: r.Content,
		TTL:     strconv.Itoa(r.TTL),
		Prio:    strconv.Itoa(r.Priority),
		Notes:   r.Notes,
	}
}

func porkbunFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"status": "ERROR", "message": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
