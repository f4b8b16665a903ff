package providers

import (
	"strings"

	"github.com/oxhq/unnest/core"
	"github.com/oxhq/unnest/providers/catalog"
)

// Adapter extends the core indexing contract with registration metadata.
type Adapter interface {
	core.Adapter

	Aliases() []string
	Extensions() []string
	Strategy() string
}

// Registry maps dialect tags and aliases to adapters and implements
// core.AdapterRegistry. An optional fallback adapter serves dialects with no
// dedicated strategy (the indentation tracker handles anything line-based).
type Registry struct {
	adapters map[string]Adapter
	fallback Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its dialect tag and aliases and records its
// metadata in the catalog.
func (r *Registry) Register(adapter Adapter) {
	r.adapters[strings.ToLower(adapter.Dialect())] = adapter
	for _, alias := range adapter.Aliases() {
		r.adapters[strings.ToLower(alias)] = adapter
	}
	catalog.Register(catalog.DialectInfo{
		ID:         adapter.Dialect(),
		Aliases:    adapter.Aliases(),
		Extensions: adapter.Extensions(),
		Strategy:   adapter.Strategy(),
	})
}

// SetFallback installs the adapter used for unregistered dialect tags.
func (r *Registry) SetFallback(adapter Adapter) {
	r.fallback = adapter
}

// Get resolves a dialect tag, falling back when no dedicated adapter exists.
func (r *Registry) Get(dialect string) (core.Adapter, bool) {
	if a, ok := r.adapters[strings.ToLower(dialect)]; ok {
		return a, true
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}

// List returns distinct registered adapters.
func (r *Registry) List() []Adapter {
	seen := make(map[string]struct{})
	result := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		if _, dup := seen[a.Dialect()]; dup {
			continue
		}
		seen[a.Dialect()] = struct{}{}
		result = append(result, a)
	}
	return result
}

// Dialects returns all registered tags and aliases.
func (r *Registry) Dialects() []string {
	tags := make([]string, 0, len(r.adapters))
	for tag := range r.adapters {
		tags = append(tags, tag)
	}
	return tags
}
