package llm

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// ErrProviderUnavailable is returned when a provider is unknown or has no
// usable API key
var ErrProviderUnavailable = errors.New("language model provider unavailable")

// Router resolves provider names to providers. Sessions that bring their own
// key get a fresh instance from the provider's factory.
type Router struct {
	mu              sync.RWMutex
	providers       map[string]Provider
	factories       map[string]ProviderFactory
	defaultProvider string
}

func NewRouter(defaultProvider string) *Router {
	return &Router{
		providers:       make(map[string]Provider),
		factories:       make(map[string]ProviderFactory),
		defaultProvider: defaultProvider,
	}
}

// RegisterProvider adds the server-wide instance of a provider
func (r *Router) RegisterProvider(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// RegisterFactory adds the per-session constructor of a provider
func (r *Router) RegisterFactory(name string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// GetProviderWithConfig builds a session provider from config when the
// provider has a factory, and falls back to the shared instance otherwise
func (r *Router) GetProviderWithConfig(name string, config map[string]any) (Provider, error) {
	name = r.resolve(name)

	r.mu.RLock()
	factory, hasFactory := r.factories[name]
	r.mu.RUnlock()

	if len(config) == 0 || !hasFactory {
		return r.GetProvider(name)
	}

	p, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, name, err)
	}
	return p, nil
}

// GetProvider returns the shared instance of a configured provider
func (r *Router) GetProvider(name string) (Provider, error) {
	name = r.resolve(name)

	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()

	switch {
	case !ok:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrProviderUnavailable, name)
	case !p.IsConfigured():
		return nil, fmt.Errorf("%w: %s has no API key", ErrProviderUnavailable, name)
	}
	return p, nil
}

func (r *Router) resolve(name string) string {
	if name == "" {
		return r.defaultProvider
	}
	return name
}

// ListProviders returns the sorted names of providers with a server-side key
func (r *Router) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(lo.PickBy(r.providers, func(_ string, p Provider) bool {
		return p.IsConfigured()
	}))
	sort.Strings(names)
	return names
}

func (r *Router) DefaultProvider() string {
	return r.defaultProvider
}

// ProviderInfo describes a provider to clients choosing one. Providers that
// are not configured still accept a session's own key.
type ProviderInfo struct {
	Name        string   `json:"name"`
	Models      []string `json:"models"`
	Default     bool     `json:"default"`
	Configured  bool     `json:"configured"`
	AcceptsKeys bool     `json:"accepts_user_keys"`
}

// GetProvidersInfo describes every registered provider, sorted by name
func (r *Router) GetProvidersInfo() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := lo.MapToSlice(r.providers, func(name string, p Provider) ProviderInfo {
		_, hasFactory := r.factories[name]
		return ProviderInfo{
			Name:        name,
			Models:      p.AvailableModels(),
			Default:     name == r.defaultProvider,
			Configured:  p.IsConfigured(),
			AcceptsKeys: hasFactory,
		}
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
