package config

import (
	"strings"
	"testing"
)

func TestLookup_Exists(t *testing.T) {
	spec := Lookup("dns-provider")
	if spec == nil {
		t.Fatal("expected to find key 'dns-provider', got nil")
	}
	if spec.Name != "dns-provider" {
		t.Errorf("expected Name %q, got %q", "dns-provider", spec.Name)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	spec := Lookup("  DEFAULT-TTL ")
	if spec == nil {
		t.Fatal("expected case-insensitive lookup to succeed")
	}
	if spec.Name != "default-ttl" {
		t.Errorf("expected Name %q, got %q", "default-ttl", spec.Name)
	}
}

func TestLookup_NotFound(t *testing.T) {
	spec := Lookup("nonexistent-key")
	if spec != nil {
		t.Errorf("expected nil for unknown key, got %+v", spec)
	}
}

func TestKeys_AllHaveGetAndSet(t *testing.T) {
	for _, k := range Keys {
		if k.Get == nil {
			t.Errorf("key %q has nil Get function", k.Name)
		}
		if k.Set == nil {
			t.Errorf("key %q has nil Set function", k.Name)
		}
		if k.Description == "" {
			t.Errorf("key %q has empty Description", k.Name)
		}
	}
}

func TestKeys_SetGet(t *testing.T) {
	cases := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{key: "dns-provider", value: " Zonomi ", want: "zonomi"},
		{key: "dns-domain", value: "Example.COM.", want: "example.com"},
		{key: "dns-domain", value: "bad..domain", wantErr: true},
		{key: "default-ttl", value: "3600", want: "3600"},
		{key: "default-ttl", value: "0", wantErr: true},
		{key: "default-ttl", value: "soon", wantErr: true},
		{key: "default-ttl", value: "", want: ""},
		{key: "timeout", value: "45s", want: "45s"},
		{key: "timeout", value: "-1s", wantErr: true},
		{key: "timeout", value: "45", wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.key+"="+c.value, func(t *testing.T) {
			cfg := &Config{}
			spec := Lookup(c.key)
			err := spec.Set(cfg, c.value)
			if c.wantErr {
				if err == nil {
					t.Fatalf("Set(%q) error = nil", c.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set(%q) error = %v", c.value, err)
			}
			if got := spec.Get(cfg); got != c.want {
				t.Errorf("Get() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestKeyNames(t *testing.T) {
	names := KeyNames()
	if len(names) != len(Keys) {
		t.Fatalf("expected %d names, got %d", len(Keys), len(names))
	}
	for i, name := range names {
		if name != Keys[i].Name {
			t.Errorf("index %d: expected %q, got %q", i, Keys[i].Name, name)
		}
	}
}

func TestKeysHelp_ContainsAllKeys(t *testing.T) {
	help := KeysHelp()
	if !strings.Contains(help, "Available keys:") {
		t.Error("expected 'Available keys:' header in help output")
	}
	for _, k := range Keys {
		if !strings.Contains(help, k.Name) {
			t.Errorf("expected key %q in help output", k.Name)
		}
		if !strings.Contains(help, k.Description) {
			t.Errorf("expected description %q in help output", k.Description)
		}
	}
}
