// Package names converts DNS record names between the relative
// ("www"), full ("www.example.com") and fully-qualified
// ("www.example.com.") forms accepted by the provider interface.
package names

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// Zone normalises a domain name: trimmed, lowercase, no trailing dot.
func Zone(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
}

// Full returns name in full form relative to zone: lowercase, without the
// trailing dot, with the zone appended when name is relative. Empty and
// "@" name the zone apex.
func Full(name, zone string) string {
	zone = Zone(zone)
	name = strings.TrimSpace(name)
	if name == "" || name == "@" {
		return zone
	}
	if dns.IsFqdn(name) {
		return strings.TrimSuffix(dns.CanonicalName(name), ".")
	}

	name = strings.ToLower(name)
	if zone == "" || dns.IsSubDomain(dns.Fqdn(zone), dns.Fqdn(name)) {
		return name
	}
	return name + "." + zone
}

// Relative returns name with the zone suffix removed. The apex is "".
func Relative(name, zone string) string {
	zone = Zone(zone)
	full := Full(name, zone)
	if full == zone {
		return ""
	}
	return strings.TrimSuffix(full, "."+zone)
}

// FQDN returns name in fully-qualified form with the trailing dot.
func FQDN(name, zone string) string {
	return dns.Fqdn(Full(name, zone))
}

// Validate checks that name is a syntactically valid domain name once
// expanded against zone. Underscore labels such as "_acme-challenge"
// are allowed.
func Validate(name, zone string) error {
	full := Full(name, zone)
	if full == "" {
		return fmt.Errorf("record name is required")
	}
	if _, ok := dns.IsDomainName(full); !ok {
		return fmt.Errorf("invalid record name %q", name)
	}
	return nil
}
