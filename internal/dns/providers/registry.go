package providers

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/dns/transport"
	"nathanbeddoewebdev/dnsctl/internal/util"
)

// ErrUnknownProvider is returned by Get for names nobody registered.
var ErrUnknownProvider = errors.New("unknown provider")

// Factory builds a DNS Provider from merged engine settings. The
// settings carry the target domain, credentials and engine options.
type Factory func(settings engine.Settings, opts ...transport.Option) (domain.Provider, error)

// builtins are the backends RegisterAll installs.
var builtins = map[string]Factory{
	"cloudflare": NewCloudflare,
	"porkbun":    NewPorkbun,
	"zonomi":     NewZonomi,
}

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds a factory under name. Empty names, nil factories and
// duplicates are programming errors and panic.
func Register(name string, factory Factory) {
	key := util.NormalizeKey(name)
	switch {
	case key == "":
		panic("dns/providers: empty provider name")
	case factory == nil:
		panic(fmt.Sprintf("dns/providers: nil factory for %q", name))
	}

	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[key]; dup {
		panic(fmt.Sprintf("dns/providers: provider %q already registered", key))
	}
	factories[key] = factory
}

// Get builds the named provider. The normalized name is added to the
// settings as provider_name.
func Get(name string, settings engine.Settings, opts ...transport.Option) (domain.Provider, error) {
	key := util.NormalizeKey(name)

	mu.RLock()
	factory := factories[key]
	mu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("dns/providers: %w %q", ErrUnknownProvider, name)
	}

	return factory(engine.Merge(settings, engine.Settings{engine.KeyProviderName: key}), opts...)
}

// List returns the registered provider names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(factories))
}

// Reset empties the registry. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	clear(factories)
}

// RegisterAll registers every built-in backend.
func RegisterAll() {
	for name, factory := range builtins {
		Register(name, factory)
	}
}
