// Package tree implements the tree-based dialect adapter on top of
// tree-sitter. The grammar gives exact statement spans, so indexed blocks
// carry byte ranges straight from the parse tree instead of being
// reconstructed from delimiters.
package tree

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/oxhq/unnest/core"
)

// Adapter indexes Go source through a tree-sitter grammar.
type Adapter struct {
	dialect string
	parser  *sitter.Parser
	mu      sync.Mutex
	cache   *ASTCache
}

// New creates the go adapter.
func New() *Adapter {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	return &Adapter{
		dialect: "go",
		parser:  parser,
		cache:   globalCache,
	}
}

func (a *Adapter) Dialect() string      { return a.dialect }
func (a *Adapter) Aliases() []string    { return []string{"golang"} }
func (a *Adapter) Extensions() []string { return []string{".go"} }
func (a *Adapter) Strategy() string     { return "tree" }

func (a *Adapter) Syntax() core.Syntax {
	return core.Syntax{
		Style:       core.StyleBraced,
		Negation:    "!",
		Conjunction: "&&",
		SubForm:     core.SubClosure,
	}
}

// Index parses the source and lowers the tree-sitter AST into a Block tree.
// Any ERROR or missing node in the parse is a malformed-structure error.
func (a *Adapter) Index(text string) (*core.Block, error) {
	a.mu.Lock()
	tree, _ := a.cache.GetOrParse(a.parser, []byte(text))
	a.mu.Unlock()
	if tree == nil {
		return nil, &core.MalformedStructureError{
			Dialect: a.dialect,
			Line:    1,
			Reason:  "parse failed",
		}
	}
	defer tree.Close()

	if bad := findError(tree.RootNode()); bad != nil {
		return nil, &core.MalformedStructureError{
			Dialect: a.dialect,
			Line:    int(bad.StartPoint().Row) + 1,
			Reason:  "syntax error",
		}
	}

	root := &core.Block{
		Kind:      core.KindOther,
		StartByte: 0,
		EndByte:   len(text),
		StartLine: 1,
		EndLine:   strings.Count(text, "\n") + 1,
	}
	b := &builder{text: text}
	b.collect(tree.RootNode(), root, 0)
	return root, nil
}

func findError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := findError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

type builder struct {
	text string
}

// collect walks named children and attaches structural blocks to parent.
// Nodes without structural meaning are descended transparently, so a
// conditional buried in an expression still lands on the nearest block.
func (b *builder) collect(n *sitter.Node, parent *core.Block, condDepth int) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "if_statement":
			blk := b.conditional(child, condDepth)
			parent.Children = append(parent.Children, blk)
		case "for_statement":
			blk := b.span(child, core.KindLoop, condDepth)
			if body := child.ChildByFieldName("body"); body != nil {
				b.collect(body, blk, condDepth)
			}
			parent.Children = append(parent.Children, blk)
		case "function_declaration", "method_declaration", "func_literal":
			blk := b.span(child, core.KindOther, 0)
			if body := child.ChildByFieldName("body"); body != nil {
				b.collect(body, blk, 0)
			}
			parent.Children = append(parent.Children, blk)
		default:
			b.collect(child, parent, condDepth)
		}
	}
}

// conditional lowers an if_statement. An else-if arm becomes a conditional
// nested in the else body so every decision level counts toward chain depth.
func (b *builder) conditional(n *sitter.Node, condDepth int) *core.Block {
	blk := b.span(n, core.KindConditional, condDepth+1)

	cons := n.ChildByFieldName("consequence")
	cond := b.condition(n, cons)

	body := b.branchBody(cons, condDepth+1)
	blk.Branches = append(blk.Branches, core.Branch{Condition: cond, Body: body})
	blk.Children = append(blk.Children, body)

	alt := n.ChildByFieldName("alternative")
	if alt == nil {
		return blk
	}
	switch alt.Type() {
	case "block":
		elseBody := b.branchBody(alt, condDepth+1)
		blk.Branches = append(blk.Branches, core.Branch{Body: elseBody})
		blk.Children = append(blk.Children, elseBody)
	case "if_statement":
		nested := b.conditional(alt, condDepth+1)
		wrapper := &core.Block{
			Kind:      core.KindOther,
			Depth:     condDepth + 1,
			StartByte: nested.StartByte,
			EndByte:   nested.EndByte,
			StartLine: nested.StartLine,
			EndLine:   nested.EndLine,
			Children:  []*core.Block{nested},
		}
		blk.Branches = append(blk.Branches, core.Branch{Body: wrapper})
		blk.Children = append(blk.Children, wrapper)
	}
	return blk
}

// condition slices everything between the if keyword and the consequence
// block, so init statements like `if x := f(); x > 0` survive intact.
func (b *builder) condition(n *sitter.Node, cons *sitter.Node) string {
	start := n.StartByte() + 2
	if kw := n.Child(0); kw != nil && kw.Type() == "if" {
		start = kw.EndByte()
	}
	end := n.EndByte()
	if cons != nil {
		end = cons.StartByte()
	}
	if start >= end {
		return ""
	}
	return strings.TrimSpace(b.text[start:end])
}

// branchBody builds a body block from a braced block node. The span
// excludes the braces themselves, matching how delimiter-tracked bodies
// are sliced.
func (b *builder) branchBody(block *sitter.Node, condDepth int) *core.Block {
	body := &core.Block{Kind: core.KindOther, Depth: condDepth}
	if block == nil {
		return body
	}
	body.StartByte = int(block.StartByte()) + 1
	body.EndByte = int(block.EndByte()) - 1
	if body.EndByte < body.StartByte {
		body.EndByte = body.StartByte
	}
	body.StartLine = int(block.StartPoint().Row) + 1
	body.EndLine = int(block.EndPoint().Row) + 1
	b.collect(block, body, condDepth)
	return body
}

func (b *builder) span(n *sitter.Node, kind core.BlockKind, depth int) *core.Block {
	return &core.Block{
		Kind:      kind,
		Depth:     depth,
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
}
