package core_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/oxhq/unnest/core"
	"github.com/oxhq/unnest/providers"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func collectWalk(t *testing.T, scope core.FileScope) []core.WalkResult {
	t.Helper()
	ch, err := core.NewFileWalker().Walk(context.Background(), scope)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	var results []core.WalkResult
	for r := range ch {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

func TestWalkDetectsDialects(t *testing.T) {
	providers.DefaultRegistry() // populate the extension catalog

	dir := writeTree(t, map[string]string{
		"a.py":     "x = 1\n",
		"b.go":     "package b\n",
		"notes.md": "# notes\n",
		"sub/c.js": "run();\n",
	})

	results := collectWalk(t, core.FileScope{Path: dir})
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3 (notes.md has no dialect)", len(results))
	}

	dialects := make(map[string]string)
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("%s: %v", r.Path, r.Error)
		}
		dialects[filepath.Base(r.Path)] = r.Dialect
	}
	if dialects["a.py"] != "python" || dialects["b.go"] != "go" || dialects["c.js"] != "javascript" {
		t.Errorf("dialects = %v", dialects)
	}
}

func TestWalkIncludeExclude(t *testing.T) {
	providers.DefaultRegistry()

	dir := writeTree(t, map[string]string{
		"keep.py":     "x = 1\n",
		"skip.py":     "x = 1\n",
		"vendor/v.py": "x = 1\n",
	})

	results := collectWalk(t, core.FileScope{
		Path:    dir,
		Include: []string{"*.py"},
		Exclude: []string{"skip.py", "vendor"},
	})
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if filepath.Base(results[0].Path) != "keep.py" {
		t.Errorf("kept %s", results[0].Path)
	}
}

func TestWalkForcedDialect(t *testing.T) {
	providers.DefaultRegistry()

	dir := writeTree(t, map[string]string{"script.py": "x = 1\n"})
	results := collectWalk(t, core.FileScope{Path: dir, Dialect: "generic"})
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Dialect != "generic" {
		t.Errorf("dialect = %q, want forced generic", results[0].Dialect)
	}
}

func TestWalkMaxFiles(t *testing.T) {
	providers.DefaultRegistry()

	dir := writeTree(t, map[string]string{
		"a.py": "x\n", "b.py": "x\n", "c.py": "x\n", "d.py": "x\n",
	})
	results := collectWalk(t, core.FileScope{Path: dir, MaxFiles: 2})
	if len(results) != 2 {
		t.Errorf("results = %d, want MaxFiles cap of 2", len(results))
	}
}

func TestWalkRejectsBadScope(t *testing.T) {
	if _, err := core.NewFileWalker().Walk(context.Background(), core.FileScope{}); err == nil {
		t.Error("empty path should fail")
	}
	if _, err := core.NewFileWalker().Walk(context.Background(), core.FileScope{Path: "/does/not/exist"}); err == nil {
		t.Error("missing path should fail")
	}
}
