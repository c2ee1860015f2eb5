// Package config handles persistent user configuration for dnsctl.
//
// Configuration is stored as JSON at ~/.config/dnsctl/config.json (or the
// platform-equivalent path returned by os.UserConfigDir). A file passed
// with --config may also be TOML or YAML; the extension picks the format.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/util"
)

const (
	appDir   = "dnsctl"
	fileName = "config.json"
)

// pathOverride, when non-empty, replaces the default config file path.
// Set by --config and by tests. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds user preferences that persist across invocations.
type Config struct {
	DNSProvider string `json:"dns_provider,omitempty" toml:"dns_provider,omitempty" yaml:"dns_provider,omitempty"`
	DNSDomain   string `json:"dns_domain,omitempty" toml:"dns_domain,omitempty" yaml:"dns_domain,omitempty"`
	DefaultTTL  int    `json:"default_ttl,omitempty" toml:"default_ttl,omitempty" yaml:"default_ttl,omitempty"`
	Timeout     string `json:"timeout,omitempty" toml:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Providers holds per-provider engine settings such as api_endpoint,
	// keyed by provider name. Credentials never live here.
	Providers map[string]map[string]string `json:"providers,omitempty" toml:"providers,omitempty" yaml:"providers,omitempty"`
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
// Otherwise it uses os.UserConfigDir which resolves to
// ~/Library/Application Support on macOS, ~/.config on Linux, and
// %AppData% on Windows.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and returns the parsed Config.
// If the file does not exist, a zero-value Config is returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

type format int

const (
	formatJSON format = iota
	formatTOML
	formatYAML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML
	case ".yaml", ".yml":
		return formatYAML
	}
	return formatJSON
}

func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	switch formatOf(path) {
	case formatTOML:
		err = toml.Unmarshal(data, &cfg)
	case formatYAML:
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := c.marshal(formatOf(path))
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

func (c *Config) marshal(f format) ([]byte, error) {
	switch f {
	case formatTOML:
		return toml.Marshal(c)
	case formatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), enc.Close()
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// LoadFrom reads the config from the given path. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}

// ProviderSettings returns the engine settings the config contributes for
// provider: the global ttl and timeout, then the provider's own map.
func (c *Config) ProviderSettings(provider string) engine.Settings {
	global := engine.Settings{}
	if c.Timeout != "" {
		global[engine.KeyTimeout] = c.Timeout
	}
	if c.DefaultTTL > 0 {
		global[engine.KeyTTL] = strconv.Itoa(c.DefaultTTL)
	}
	return engine.Merge(global, c.Providers[util.NormalizeKey(provider)])
}

// LoadEnvFile loads KEY=value lines from path into the process
// environment without overriding variables that are already set. An
// empty path means ".env" in the working directory, which may be absent.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: failed to load %s: %w", path, err)
	}
	return nil
}
