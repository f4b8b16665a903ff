package catalog

import "testing"

func TestRegisterAndLookup(t *testing.T) {
	Register(DialectInfo{
		ID:         "testlang",
		Aliases:    []string{"TL"},
		Extensions: []string{".tl", "tlx", ".TL"},
		Strategy:   "indentation",
	})

	info, ok := Lookup("testlang")
	if !ok {
		t.Fatal("Lookup failed for registered dialect")
	}
	if info.Strategy != "indentation" {
		t.Errorf("strategy = %q", info.Strategy)
	}

	// Aliases resolve case-insensitively.
	if _, ok := Lookup("tl"); !ok {
		t.Error("alias lookup failed")
	}

	// Extensions are normalized to lowercase dotted form, deduplicated.
	if len(info.Extensions) != 2 {
		t.Errorf("extensions = %v, want 2 normalized entries", info.Extensions)
	}
	if _, ok := LookupByExtension(".tlx"); !ok {
		t.Error("extension lookup failed for normalized extension")
	}
}

func TestRegisterIgnoresEmptyID(t *testing.T) {
	before := len(Dialects())
	Register(DialectInfo{Extensions: []string{".none"}})
	if after := len(Dialects()); after != before {
		t.Errorf("empty-ID registration changed catalog size: %d -> %d", before, after)
	}
}

func TestDialectsSortedAndDeduplicated(t *testing.T) {
	Register(DialectInfo{ID: "zz-last", Strategy: "tree"})
	Register(DialectInfo{ID: "aa-first", Aliases: []string{"aaf"}, Strategy: "tree"})

	infos := Dialects()
	seen := make(map[string]int)
	for i, info := range infos {
		seen[info.ID]++
		if i > 0 && infos[i-1].ID > info.ID {
			t.Errorf("dialects not sorted: %q before %q", infos[i-1].ID, info.ID)
		}
	}
	if seen["aa-first"] != 1 {
		t.Errorf("aliased dialect appears %d times", seen["aa-first"])
	}
}
