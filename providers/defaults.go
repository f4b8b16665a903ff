package providers

import (
	"github.com/oxhq/unnest/providers/delim"
	"github.com/oxhq/unnest/providers/indent"
	"github.com/oxhq/unnest/providers/tree"
)

// DefaultRegistry builds a registry with every built-in adapter registered.
// Unknown dialect tags fall back to the generic indentation tracker.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(tree.New())
	r.Register(delim.New("c"))
	r.Register(delim.New("cpp"))
	r.Register(delim.New("java"))
	r.Register(delim.New("javascript"))
	r.Register(indent.New())
	r.SetFallback(indent.NewGeneric())
	return r
}
