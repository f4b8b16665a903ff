package catalog

import (
	"sort"
	"strings"
	"sync"
)

// DialectInfo captures metadata about a registered dialect adapter.
type DialectInfo struct {
	ID         string
	Aliases    []string
	Extensions []string
	Strategy   string // tree, delimiter or indentation
}

var (
	mu        sync.RWMutex
	byDialect = make(map[string]DialectInfo)
	byExt     = make(map[string]DialectInfo)
)

// Register stores dialect metadata for extension lookups. Re-registering a
// dialect overwrites prior data so the catalog tracks the latest adapter.
func Register(info DialectInfo) {
	if info.ID == "" {
		return
	}

	info.Extensions = uniqueExtensions(info.Extensions)

	mu.Lock()
	defer mu.Unlock()

	byDialect[strings.ToLower(info.ID)] = info
	for _, alias := range info.Aliases {
		byDialect[strings.ToLower(alias)] = info
	}
	for _, ext := range info.Extensions {
		byExt[ext] = info
	}
}

// Lookup returns the dialect info for a tag or alias.
func Lookup(dialect string) (DialectInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()
	info, ok := byDialect[strings.ToLower(dialect)]
	return info, ok
}

// LookupByExtension returns the dialect info for a file extension.
func LookupByExtension(ext string) (DialectInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()
	info, ok := byExt[strings.ToLower(ext)]
	return info, ok
}

// Dialects returns all registered dialect infos sorted by ID.
func Dialects() []DialectInfo {
	mu.RLock()
	defer mu.RUnlock()

	seen := make(map[string]struct{})
	infos := make([]DialectInfo, 0, len(byDialect))
	for _, info := range byDialect {
		if _, dup := seen[info.ID]; dup {
			continue
		}
		seen[info.ID] = struct{}{}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}

func uniqueExtensions(exts []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(exts))
	for _, ext := range exts {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
