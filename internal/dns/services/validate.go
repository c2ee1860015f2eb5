package services

import (
	"fmt"
	"net"
	"strings"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
)

// DefaultTTL is the TTL applied when none is specified (matches Porkbun's minimum).
const DefaultTTL = 600

// normalizeSubdomain returns sub relative to domainName, lowercased.
// Full and fully-qualified names are reduced; the apex becomes "".
func normalizeSubdomain(sub, domainName string) string {
	return names.Relative(sub, domainName)
}

// validateRecordType returns an error if t is not a supported record type.
func validateRecordType(t domain.RecordType) (domain.RecordType, error) {
	return domain.ParseRecordType(string(t))
}

// validateContent catches obvious mismatches (e.g. a non-IP value for an
// A record) to give the user an early error.
func validateContent(t domain.RecordType, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("record content cannot be empty")
	}

	switch t {
	case domain.RecordTypeA:
		ip := net.ParseIP(content)
		if ip == nil || ip.To4() == nil {
			return fmt.Errorf("A record content must be a valid IPv4 address, got %q", content)
		}
	case domain.RecordTypeAAAA:
		ip := net.ParseIP(content)
		if ip == nil || ip.To4() != nil {
			return fmt.Errorf("AAAA record content must be a valid IPv6 address, got %q", content)
		}
	}

	return nil
}

func normalizeFilter(f domain.Filter, zone string) (domain.Filter, error) {
	if f.Type != "" {
		t, err := validateRecordType(f.Type)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	if strings.TrimSpace(f.Name) != "" {
		if err := names.Validate(f.Name, zone); err != nil {
			return f, err
		}
		f.Name = normalizeSubdomain(f.Name, zone)
		if f.Name == "" {
			f.Name = "@"
		}
	}
	return f, nil
}
