// Package fakes provides in-memory emulations of the DNS backends'
// HTTP APIs. They back provider unit tests and let the conformance suite
// record fixtures without network access.
package fakes

import (
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/miekg/dns"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
)

// store is the zone database shared by every fake.
type store struct {
	mu      sync.Mutex
	zones   map[string][]domain.Record
	nextID  int
	newID   func(*store) string
	latency time.Duration
}

func newStore(zones []string) *store {
	s := &store{zones: map[string][]domain.Record{}}
	for _, z := range zones {
		s.zones[names.Zone(z)] = nil
	}
	s.newID = func(s *store) string {
		s.nextID++
		return strconv.Itoa(s.nextID)
	}
	return s
}

func (s *store) sleep() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

func (s *store) managed(zone string) bool {
	_, ok := s.zones[names.Zone(zone)]
	return ok
}

// zoneFor returns the managed zone containing name.
func (s *store) zoneFor(name string) (string, bool) {
	full := dns.Fqdn(names.Zone(name))
	best := ""
	for z := range s.zones {
		if dns.IsSubDomain(dns.Fqdn(z), full) && len(z) > len(best) {
			best = z
		}
	}
	return best, best != ""
}

func (s *store) list(zone string, f domain.Filter) []domain.Record {
	out := []domain.Record{}
	for _, r := range s.zones[names.Zone(zone)] {
		if f.Matches(r, zone) {
			out = append(out, r)
		}
	}
	return out
}

// add inserts r unless an identical (type, name, content) record
// exists, in which case the existing record's TTL is refreshed.
func (s *store) add(zone string, r domain.Record) (domain.Record, bool) {
	zone = names.Zone(zone)
	r.Name = names.Full(r.Name, zone)
	for i, existing := range s.zones[zone] {
		if existing.Type == r.Type && existing.Name == r.Name && existing.Content == r.Content {
			if r.TTL > 0 {
				s.zones[zone][i].TTL = r.TTL
			}
			return s.zones[zone][i], false
		}
	}
	if r.ID == "" {
		r.ID = s.newID(s)
	}
	s.zones[zone] = append(s.zones[zone], r)
	return r, true
}

func (s *store) get(zone, id string) (domain.Record, bool) {
	for _, r := range s.zones[names.Zone(zone)] {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Record{}, false
}

func (s *store) replace(zone string, r domain.Record) bool {
	zone = names.Zone(zone)
	for i, existing := range s.zones[zone] {
		if existing.ID == r.ID {
			r.Name = names.Full(r.Name, zone)
			s.zones[zone][i] = r
			return true
		}
	}
	return false
}

// remove deletes the records for which match returns true and reports
// how many were removed.
func (s *store) remove(zone string, match func(domain.Record) bool) int {
	zone = names.Zone(zone)
	before := len(s.zones[zone])
	s.zones[zone] = slices.DeleteFunc(s.zones[zone], match)
	return before - len(s.zones[zone])
}

// snapshot returns a copy of every record in zone.
func (s *store) snapshot(zone string) []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Record{}, s.zones[names.Zone(zone)]...)
}

func (s *store) seed(zone string, records ...domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.add(zone, r)
	}
}
