package core

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/unnest/providers/catalog"
)

// FileScope defines which files the walker should surface.
type FileScope struct {
	Path     string   `json:"path"`
	Include  []string `json:"include,omitempty"`
	Exclude  []string `json:"exclude,omitempty"`
	MaxDepth int      `json:"max_depth,omitempty"`
	MaxFiles int      `json:"max_files,omitempty"`
	Dialect  string   `json:"dialect,omitempty"` // forced; auto-detected when empty
}

// WalkResult is one discovered file.
type WalkResult struct {
	Path    string
	Info    fs.FileInfo
	Dialect string
	Error   error
}

// FileWalker performs parallel directory traversal with glob matching. The
// CLI uses it to assemble SourceUnits; the engine itself never walks disks.
type FileWalker struct {
	workers    int
	bufferSize int
}

// NewFileWalker creates a walker sized for IO-bound work.
func NewFileWalker() *FileWalker {
	return &FileWalker{
		workers:    runtime.NumCPU() * 2,
		bufferSize: 256,
	}
}

// Walk streams matching files until the scope is exhausted or ctx ends.
func (fw *FileWalker) Walk(ctx context.Context, scope FileScope) (<-chan WalkResult, error) {
	if scope.Path == "" {
		return nil, fmt.Errorf("scope path is required")
	}
	if info, err := os.Stat(scope.Path); err != nil {
		return nil, fmt.Errorf("invalid scope path: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("scope path must be a directory: %s", scope.Path)
	}

	results := make(chan WalkResult, fw.bufferSize)
	paths := make(chan string, fw.bufferSize)

	var wg sync.WaitGroup
	for i := 0; i < fw.workers; i++ {
		wg.Add(1)
		go fw.worker(ctx, paths, results, scope, &wg)
	}

	go func() {
		defer close(paths)
		processed := 0
		fw.scanDirectory(ctx, scope.Path, scope, paths, 0, &processed)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

func (fw *FileWalker) worker(
	ctx context.Context,
	paths <-chan string,
	results chan<- WalkResult,
	scope FileScope,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			result := fw.processFile(path, scope)
			select {
			case <-ctx.Done():
				return
			case results <- result:
			}
		}
	}
}

func (fw *FileWalker) scanDirectory(
	ctx context.Context,
	dirPath string,
	scope FileScope,
	paths chan<- string,
	depth int,
	processed *int,
) {
	if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
		return
	}
	select {
	case <-ctx.Done():
		return
	default:
	}
	if scope.MaxDepth > 0 && depth > scope.MaxDepth {
		return
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return // skip unreadable directories
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fullPath := filepath.Join(dirPath, entry.Name())

		if fw.matchesAny(fullPath, scope.Exclude) {
			continue
		}

		if entry.IsDir() {
			fw.scanDirectory(ctx, fullPath, scope, paths, depth+1, processed)
			continue
		}

		if fw.isIncluded(fullPath, scope.Include) {
			if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
				return
			}
			select {
			case <-ctx.Done():
				return
			case paths <- fullPath:
				*processed++
			}
		}
	}
}

func (fw *FileWalker) processFile(path string, scope FileScope) WalkResult {
	info, err := os.Stat(path)
	if err != nil {
		return WalkResult{Path: path, Error: err}
	}

	dialect := scope.Dialect
	if dialect == "" {
		dialect = DetectDialect(path)
	}

	return WalkResult{
		Path:    path,
		Info:    info,
		Dialect: dialect,
	}
}

// DetectDialect resolves a dialect tag from the file extension via the
// adapter catalog.
func DetectDialect(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if info, ok := catalog.LookupByExtension(ext); ok {
		return info.ID
	}
	return ""
}

func (fw *FileWalker) isIncluded(path string, include []string) bool {
	if len(include) == 0 {
		return DetectDialect(path) != ""
	}
	return fw.matchesAny(path, include)
}

func (fw *FileWalker) matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.PathMatch(pattern, path); err == nil && matched {
			return true
		}
		// Also match against the basename so "*.py" works anywhere.
		if matched, err := doublestar.PathMatch(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}
	return false
}
