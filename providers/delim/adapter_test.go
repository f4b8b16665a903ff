package delim

import (
	"strings"
	"testing"

	"github.com/oxhq/unnest/core"
)

func firstConditional(root *core.Block) *core.Block {
	var found *core.Block
	root.Walk(func(b *core.Block) bool {
		if found == nil && b.Kind == core.KindConditional {
			found = b
			return false
		}
		return found == nil
	})
	return found
}

func TestIndexNestedChain(t *testing.T) {
	source := `function check(account) {
  if (account) {
    if (account.active) {
      if (account.balance > 0) {
        return charge(account);
      }
    }
  }
}
`
	root, err := New("javascript").Index(source)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	cond := firstConditional(root)
	if cond == nil {
		t.Fatal("expected a conditional block")
	}
	if depth := core.ChainDepth(cond); depth != 3 {
		t.Errorf("ChainDepth = %d, want 3", depth)
	}
	if cond.Branches[0].Condition != "account" {
		t.Errorf("condition = %q, want %q", cond.Branches[0].Condition, "account")
	}
}

func TestIndexElseIfWrapsNestedConditional(t *testing.T) {
	source := `if (x < 0) {
  return -1;
} else if (x === 0) {
  return 0;
} else {
  return 1;
}
`
	root, err := New("javascript").Index(source)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	cond := firstConditional(root)
	if cond == nil {
		t.Fatal("expected a conditional block")
	}
	if depth := core.ChainDepth(cond); depth != 2 {
		t.Errorf("ChainDepth = %d, want 2", depth)
	}
	if len(cond.Branches) != 2 {
		t.Fatalf("branches = %d, want 2 (then + else wrapper)", len(cond.Branches))
	}

	// Chain spans must cover the whole else-if ladder.
	lastBrace := strings.LastIndex(source, "}")
	if cond.EndByte != lastBrace+1 {
		t.Errorf("chain EndByte = %d, want %d", cond.EndByte, lastBrace+1)
	}

	nested := firstConditional(cond.Branches[1].Body)
	if nested == nil {
		t.Fatal("expected nested else-if conditional")
	}
	if nested.Branches[0].Condition != "x === 0" {
		t.Errorf("nested condition = %q", nested.Branches[0].Condition)
	}
}

func TestIndexLiteralsAndCommentsMasked(t *testing.T) {
	source := `if (a) {
  s = "}{";
  // } stray comment brace {
  if (b) {
    go();
  }
}
`
	root, err := New("c").Index(source)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	cond := firstConditional(root)
	if cond == nil {
		t.Fatal("expected a conditional block")
	}
	if depth := core.ChainDepth(cond); depth != 2 {
		t.Errorf("ChainDepth = %d, want 2", depth)
	}
}

func TestIndexLoopBreaksChain(t *testing.T) {
	source := `if (ready) {
  while (next()) {
    if (a) {
      if (b) {
        emit();
      }
    }
  }
}
`
	root, err := New("c").Index(source)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	cond := firstConditional(root)
	if depth := core.ChainDepth(cond); depth != 1 {
		t.Errorf("ChainDepth = %d, want 1 (loop breaks the chain)", depth)
	}
}

func TestIndexMalformed(t *testing.T) {
	tests := []struct {
		name   string
		source string
		reason string
	}{
		{
			name:   "stray_closing_brace",
			source: "}\n",
			reason: "unbalanced closing delimiter",
		},
		{
			name:   "unclosed_block",
			source: "if (a) {\n  run();\n",
			reason: "unclosed delimiter at end of input",
		},
	}

	adapter := New("javascript")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.Index(tt.source)
			if err == nil {
				t.Fatal("expected error")
			}
			if !core.IsMalformed(err) {
				t.Errorf("expected MalformedStructureError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.reason)
			}
		})
	}
}

func TestDialectMetadata(t *testing.T) {
	cpp := New("cpp")
	if got := cpp.Aliases(); len(got) != 1 || got[0] != "c++" {
		t.Errorf("cpp aliases = %v", got)
	}
	if syntax := cpp.Syntax(); syntax.Style != core.StyleBraced || syntax.Negation != "!" {
		t.Errorf("unexpected syntax %+v", syntax)
	}
}
