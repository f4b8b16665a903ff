package providers

import (
	"testing"

	"github.com/oxhq/unnest/core"
)

// stubAdapter for registry tests.
type stubAdapter struct {
	dialect string
	aliases []string
}

func (s *stubAdapter) Dialect() string      { return s.dialect }
func (s *stubAdapter) Aliases() []string    { return s.aliases }
func (s *stubAdapter) Extensions() []string { return nil }
func (s *stubAdapter) Strategy() string     { return "indentation" }

func (s *stubAdapter) Syntax() core.Syntax { return core.Syntax{} }

func (s *stubAdapter) Index(text string) (*core.Block, error) {
	return &core.Block{Kind: core.KindOther, EndByte: len(text)}, nil
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubAdapter{dialect: "ruby", aliases: []string{"rb"}})

	if _, ok := r.Get("ruby"); !ok {
		t.Error("Get failed for registered dialect")
	}
	if _, ok := r.Get("RB"); !ok {
		t.Error("Get failed for alias in different case")
	}
	if _, ok := r.Get("unknown"); ok {
		t.Error("Get succeeded for unknown dialect without fallback")
	}
}

func TestRegistryFallback(t *testing.T) {
	r := NewRegistry()
	fallback := &stubAdapter{dialect: "generic"}
	r.SetFallback(fallback)

	got, ok := r.Get("never-registered")
	if !ok {
		t.Fatal("fallback should serve unknown dialects")
	}
	if got.Dialect() != "generic" {
		t.Errorf("fallback dialect = %q", got.Dialect())
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubAdapter{dialect: "ruby", aliases: []string{"rb"}})
	r.Register(&stubAdapter{dialect: "lua"})

	list := r.List()
	if len(list) != 2 {
		t.Errorf("List returned %d adapters, want 2 (aliases deduplicated)", len(list))
	}
}

func TestDefaultRegistryCoversBuiltins(t *testing.T) {
	r := DefaultRegistry()

	for _, dialect := range []string{"go", "golang", "c", "cpp", "c++", "java", "javascript", "js", "python", "py"} {
		if _, ok := r.Get(dialect); !ok {
			t.Errorf("default registry missing %q", dialect)
		}
	}

	// Unknown dialects land on the generic indentation tracker.
	adapter, ok := r.Get("ruby")
	if !ok {
		t.Fatal("default registry has no fallback")
	}
	if adapter.Dialect() != "generic" {
		t.Errorf("fallback dialect = %q, want generic", adapter.Dialect())
	}
}
