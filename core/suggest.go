package core

import (
	"context"
	"time"
)

// Suggestion is an optional naming hint for an extracted subroutine.
type Suggestion struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// SuggestionProvider supplies naming hints for method extraction, keyed by
// region fingerprint. It is looked up at most once per subroutine and is
// never required for correctness: ok=false means the engine keeps its
// placeholder name.
type SuggestionProvider interface {
	Suggest(ctx context.Context, fp Fingerprint) (Suggestion, bool)
}

// NoopProvider never suggests anything.
type NoopProvider struct{}

func (NoopProvider) Suggest(context.Context, Fingerprint) (Suggestion, bool) {
	return Suggestion{}, false
}

// BoundedProvider wraps a provider with a hard timeout so a slow collaborator
// can never block a transform. On timeout it behaves like NoopProvider.
type BoundedProvider struct {
	Inner   SuggestionProvider
	Timeout time.Duration
}

// DefaultSuggestionTimeout bounds provider lookups when no timeout is set.
const DefaultSuggestionTimeout = 250 * time.Millisecond

func (b BoundedProvider) Suggest(ctx context.Context, fp Fingerprint) (Suggestion, bool) {
	if b.Inner == nil {
		return Suggestion{}, false
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultSuggestionTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		s  Suggestion
		ok bool
	}
	ch := make(chan result, 1)
	go func() {
		s, ok := b.Inner.Suggest(ctx, fp)
		ch <- result{s, ok}
	}()

	select {
	case <-ctx.Done():
		return Suggestion{}, false
	case r := <-ch:
		return r.s, r.ok
	}
}
