package domain

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"

	"nathanbeddoewebdev/dnsctl/internal/dns/names"
)

// RecordType represents a DNS record type.
type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeAlias RecordType = "ALIAS"
	RecordTypeTXT   RecordType = "TXT"
	RecordTypeNS    RecordType = "NS"
	RecordTypeMX    RecordType = "MX"
	RecordTypeSRV   RecordType = "SRV"
	RecordTypeTLSA  RecordType = "TLSA"
	RecordTypeCAA   RecordType = "CAA"
	RecordTypeHTTPS RecordType = "HTTPS"
	RecordTypeSVCB  RecordType = "SVCB"
	RecordTypeSSHFP RecordType = "SSHFP"
)

// ParseRecordType upper-cases s and checks it against the DNS type table.
// ALIAS is accepted even though it is a provider pseudo-type.
func ParseRecordType(s string) (RecordType, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return "", fmt.Errorf("record type is required")
	}
	if RecordType(t) == RecordTypeAlias {
		return RecordTypeAlias, nil
	}
	if _, ok := dns.StringToType[t]; !ok {
		return "", fmt.Errorf("unsupported record type %q", s)
	}
	return RecordType(t), nil
}

// Record represents a single DNS record.
type Record struct {
	// ID is the provider-assigned record identifier. Some backends derive
	// it from the record name instead of assigning a serial.
	ID string `json:"id"`

	// Type is the DNS record type (A, AAAA, CNAME, etc.).
	Type RecordType `json:"type"`

	// Name is the fully-qualified record name, lowercase and without the
	// trailing dot (e.g. "www.example.com" or "example.com" for the apex).
	Name string `json:"name"`

	// Content is the record value (IP address, hostname, text, etc.).
	Content string `json:"content"`

	// TTL is the time-to-live in seconds. Zero means unknown.
	TTL int `json:"ttl"`

	// Priority is used for record types that support it (MX, SRV, etc.).
	// Zero means not applicable.
	Priority int `json:"priority,omitempty"`

	// Notes is an optional human-readable annotation on the record.
	Notes string `json:"notes,omitempty"`
}

// Domain represents a domain name in the provider account.
type Domain struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	TLD        string `json:"tld"`
	CreateDate string `json:"create_date"`
	ExpireDate string `json:"expire_date"`
}

// Filter selects records by type, name and content. Fields are
// conjunctive and an empty field matches every record.
type Filter struct {
	Type    RecordType
	Name    string
	Content string
}

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool {
	return f.Type == "" && f.Name == "" && f.Content == ""
}

// Matches reports whether r satisfies every set field of f. Names are
// compared in full form relative to zone, so "www", "www.example.com"
// and "www.example.com." all select the same record.
func (f Filter) Matches(r Record, zone string) bool {
	if f.Type != "" && !strings.EqualFold(string(f.Type), string(r.Type)) {
		return false
	}
	if f.Name != "" && names.Full(f.Name, zone) != names.Full(r.Name, zone) {
		return false
	}
	if f.Content != "" && f.Content != r.Content {
		return false
	}
	return true
}

// String renders the filter for error messages.
func (f Filter) String() string {
	parts := make([]string, 0, 3)
	if f.Type != "" {
		parts = append(parts, "type="+string(f.Type))
	}
	if f.Name != "" {
		parts = append(parts, "name="+f.Name)
	}
	if f.Content != "" {
		parts = append(parts, "content="+f.Content)
	}
	if len(parts) == 0 {
		return "all records"
	}
	return strings.Join(parts, " ")
}

// Target selects the records an update or delete applies to: a single
// record by ID, or every record matching the filter.
type Target struct {
	ID string
	Filter
}

// ByID returns a Target selecting the record with the given identifier.
func ByID(id string) Target {
	return Target{ID: id}
}

// ByFilter returns a Target selecting records matching f.
func ByFilter(f Filter) Target {
	return Target{Filter: f}
}

// IsZero reports whether t selects nothing.
func (t Target) IsZero() bool {
	return t.ID == "" && t.Filter.IsZero()
}

func (t Target) String() string {
	if t.ID != "" {
		return "id=" + t.ID
	}
	return t.Filter.String()
}

// Select returns the records t picks out of records.
func (t Target) Select(records []Record, zone string) []Record {
	var out []Record
	for _, r := range records {
		if t.ID != "" {
			if r.ID == t.ID && t.Filter.Matches(r, zone) {
				out = append(out, r)
			}
			continue
		}
		if t.Filter.Matches(r, zone) {
			out = append(out, r)
		}
	}
	return out
}
