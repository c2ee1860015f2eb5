package services

import (
	"strings"
	"testing"
)

func TestCacheKey_Positional(t *testing.T) {
	byName := cacheKey("Zonomi", "records", "example.com", "", "www", "")
	byContent := cacheKey("Zonomi", "records", "example.com", "", "", "www")
	if byName == byContent {
		t.Fatalf("name and content filters share key %q", byName)
	}
	if want := "zonomi|records|example.com||www|"; byName != want {
		t.Fatalf("cacheKey = %q, want %q", byName, want)
	}
}

func TestCacheKey_KeepsContentCase(t *testing.T) {
	lower := cacheKey("zonomi", "records", "example.com", "TXT", "", "token-abc")
	upper := cacheKey("zonomi", "records", "example.com", "TXT", "", "token-ABC")
	if lower == upper {
		t.Fatal("TXT contents differing in case share a key")
	}
}

func TestCachePrefix_MatchesOnlyItsZone(t *testing.T) {
	prefix := cachePrefix("zonomi", "records", "example.com")
	if !strings.HasPrefix(cacheKey("zonomi", "records", "example.com", "A", "", ""), prefix) {
		t.Fatal("prefix does not match its own zone")
	}
	if strings.HasPrefix(cacheKey("zonomi", "records", "example.com.au", "A", "", ""), prefix) {
		t.Fatal("prefix matches a longer zone")
	}
}
