package tree

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
)

// ASTCache is a lock-free cache for parsed trees, shared by all tree-based
// adapters. Entries expire after maxAge so long-running callers do not pin
// stale sources.
type ASTCache struct {
	cache  sync.Map
	hits   atomic.Int64
	misses atomic.Int64
	maxAge time.Duration
}

type cachedTree struct {
	tree      *sitter.Tree
	timestamp time.Time
}

// globalCache is shared across adapters; identical sources parse once.
var globalCache = &ASTCache{maxAge: 5 * time.Minute}

// GetOrParse returns a copy of the cached tree or parses a new one. The
// boolean reports a cache hit.
func (c *ASTCache) GetOrParse(parser *sitter.Parser, source []byte) (*sitter.Tree, bool) {
	key := c.hash(source)

	if cached, ok := c.cache.Load(key); ok {
		entry := cached.(*cachedTree)
		if time.Since(entry.timestamp) <= c.maxAge {
			c.hits.Add(1)
			return entry.tree.Copy(), true
		}
		c.cache.Delete(key)
		entry.tree.Close()
	}

	c.misses.Add(1)

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return nil, false
	}

	entry := &cachedTree{tree: tree.Copy(), timestamp: time.Now()}
	if _, loaded := c.cache.LoadOrStore(key, entry); loaded {
		// Lost the race; drop our stored copy and return the fresh parse.
		entry.tree.Close()
	}
	return tree, false
}

// Stats returns hit/miss counters for observability in tests.
func (c *ASTCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ASTCache) hash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
