package services

import (
	"strings"

	"nathanbeddoewebdev/dnsctl/internal/util"
)

// DisableCacheEnv turns off list caching when set to "1".
const DisableCacheEnv = "DNSCTL_DISABLE_DNS_CACHE"

const keySep = "|"

// cacheKey joins parts positionally, so an empty filter field never
// shifts the fields after it. Only the provider is case-folded; record
// content such as TXT values is case-sensitive.
func cacheKey(provider string, parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, util.NormalizeKey(provider))
	for _, part := range parts {
		values = append(values, strings.TrimSpace(part))
	}
	return strings.Join(values, keySep)
}

// cachePrefix matches every key that starts with the given fields.
func cachePrefix(provider string, parts ...string) string {
	return cacheKey(provider, parts...) + keySep
}
