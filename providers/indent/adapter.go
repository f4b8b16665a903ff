// Package indent implements the indentation-tracking dialect adapter: depth
// is derived from leading-whitespace run length. It backs whitespace
// significant dialects (python) and doubles as the fallback strategy for any
// line-oriented dialect without a dedicated adapter.
package indent

import (
	"strings"

	"github.com/oxhq/unnest/core"
)

// Adapter indexes source text by indentation.
type Adapter struct {
	dialect    string
	aliases    []string
	extensions []string
}

// New creates the python adapter.
func New() *Adapter {
	return &Adapter{
		dialect:    "python",
		aliases:    []string{"py"},
		extensions: []string{".py", ".pyw"},
	}
}

// NewGeneric creates the fallback adapter for unknown dialects.
func NewGeneric() *Adapter {
	return &Adapter{dialect: "generic"}
}

func (a *Adapter) Dialect() string      { return a.dialect }
func (a *Adapter) Aliases() []string    { return a.aliases }
func (a *Adapter) Extensions() []string { return a.extensions }
func (a *Adapter) Strategy() string     { return "indentation" }

func (a *Adapter) Syntax() core.Syntax {
	return core.Syntax{
		Style:       core.StyleIndented,
		Negation:    "not ",
		Conjunction: "and",
		SubForm:     core.SubDef,
	}
}

type line struct {
	indent    string
	text      string // without leading whitespace
	startByte int    // offset of first non-whitespace byte
	endByte   int    // offset past the last byte of the line
	number    int
}

// Index builds a Block tree from indentation structure. Mixed tabs and
// spaces in indentation are a malformed-structure error, not a guess.
func (a *Adapter) Index(text string) (*core.Block, error) {
	lines, err := a.scanLines(text)
	if err != nil {
		return nil, err
	}

	root := &core.Block{
		Kind:      core.KindOther,
		StartByte: 0,
		EndByte:   len(text),
		StartLine: 1,
		EndLine:   strings.Count(text, "\n") + 1,
	}
	p := &parser{adapter: a, lines: lines}
	if err := p.parseSuite(root, "", 0); err != nil {
		return nil, err
	}
	return root, nil
}

func (a *Adapter) scanLines(text string) ([]line, error) {
	var lines []line
	indentChar := byte(0)

	offset := 0
	for number, raw := range strings.Split(text, "\n") {
		content := strings.TrimRight(raw, "\r")
		ws := leadingWhitespace(content)
		body := content[len(ws):]

		if body != "" {
			if strings.Contains(ws, " ") && strings.Contains(ws, "\t") {
				return nil, &core.MalformedStructureError{
					Dialect: a.dialect,
					Line:    number + 1,
					Reason:  "mixed tabs and spaces in indentation",
				}
			}
			if len(ws) > 0 {
				if indentChar == 0 {
					indentChar = ws[0]
				} else if ws[0] != indentChar {
					return nil, &core.MalformedStructureError{
						Dialect: a.dialect,
						Line:    number + 1,
						Reason:  "inconsistent indentation characters",
					}
				}
			}
			lines = append(lines, line{
				indent:    ws,
				text:      body,
				startByte: offset + len(ws),
				endByte:   offset + len(content),
				number:    number + 1,
			})
		}
		offset += len(raw) + 1
	}
	return lines, nil
}

type parser struct {
	adapter *Adapter
	lines   []line
	pos     int
}

// parseSuite consumes lines at exactly the given indent, attaching the
// blocks they open to parent. condDepth counts enclosing conditionals.
func (p *parser) parseSuite(parent *core.Block, indent string, condDepth int) error {
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if len(ln.indent) < len(indent) {
			return nil // dedent closes this suite
		}
		if len(ln.indent) > len(indent) {
			// Deeper than the suite without an opener: ordinary
			// continuation lines; nothing structural to record.
			p.pos++
			continue
		}

		switch {
		case isIfLine(ln.text):
			block, err := p.parseConditional(ln, indent, condDepth)
			if err != nil {
				return err
			}
			parent.Children = append(parent.Children, block)
		case isLoopLine(ln.text):
			block, err := p.parseCompound(ln, indent, core.KindLoop, condDepth)
			if err != nil {
				return err
			}
			parent.Children = append(parent.Children, block)
		case isScopeLine(ln.text):
			block, err := p.parseCompound(ln, indent, core.KindOther, condDepth)
			if err != nil {
				return err
			}
			parent.Children = append(parent.Children, block)
		default:
			p.pos++
		}
	}
	return nil
}

// parseConditional handles an if line and its elif/else continuations. An
// elif arm becomes a conditional nested in the else body so every decision
// level counts toward chain depth.
func (p *parser) parseConditional(ln line, indent string, condDepth int) (*core.Block, error) {
	cond, err := p.headerCondition(ln, "if")
	if err != nil {
		return nil, err
	}
	p.pos++

	block := &core.Block{
		Kind:      core.KindConditional,
		Depth:     condDepth + 1,
		StartByte: ln.startByte,
		EndByte:   ln.endByte,
		StartLine: ln.number,
		EndLine:   ln.number,
	}

	body, err := p.parseBody(indent, condDepth+1)
	if err != nil {
		return nil, err
	}
	block.Branches = append(block.Branches, core.Branch{Condition: cond, Body: body})
	block.Children = append(block.Children, body)
	extendSpan(block, body)

	// elif / else continuations at the same indent.
	if p.pos < len(p.lines) {
		next := p.lines[p.pos]
		if next.indent == indent && strings.HasPrefix(next.text, "elif") {
			rewritten := next
			rewritten.text = "if" + strings.TrimPrefix(next.text, "elif")
			rewritten.startByte = next.startByte
			p.lines[p.pos] = rewritten

			nested, err := p.parseConditional(p.lines[p.pos], indent, condDepth+1)
			if err != nil {
				return nil, err
			}
			elseBody := &core.Block{
				Kind:      core.KindOther,
				Depth:     condDepth + 1,
				StartByte: nested.StartByte,
				EndByte:   nested.EndByte,
				StartLine: nested.StartLine,
				EndLine:   nested.EndLine,
				Children:  []*core.Block{nested},
			}
			block.Branches = append(block.Branches, core.Branch{Body: elseBody})
			block.Children = append(block.Children, elseBody)
			extendSpan(block, elseBody)
			return block, nil
		}
		if next.indent == indent && (next.text == "else:" || strings.HasPrefix(next.text, "else:")) {
			p.pos++
			elseBody, err := p.parseBody(indent, condDepth+1)
			if err != nil {
				return nil, err
			}
			block.Branches = append(block.Branches, core.Branch{Body: elseBody})
			block.Children = append(block.Children, elseBody)
			extendSpan(block, elseBody)
			return block, nil
		}
		if next.indent == indent && next.text == "else" {
			return nil, &core.MalformedStructureError{
				Dialect: p.adapter.dialect,
				Line:    next.number,
				Reason:  "missing trailing colon",
			}
		}
	}
	return block, nil
}

// parseCompound handles loop and scope headers (for, while, def, class, ...).
func (p *parser) parseCompound(ln line, indent string, kind core.BlockKind, condDepth int) (*core.Block, error) {
	if !strings.HasSuffix(strings.TrimSpace(ln.text), ":") {
		return nil, &core.MalformedStructureError{
			Dialect: p.adapter.dialect,
			Line:    ln.number,
			Reason:  "missing trailing colon",
		}
	}
	p.pos++

	block := &core.Block{
		Kind:      kind,
		Depth:     condDepth,
		StartByte: ln.startByte,
		EndByte:   ln.endByte,
		StartLine: ln.number,
		EndLine:   ln.number,
	}
	body, err := p.parseBody(indent, condDepth)
	if err != nil {
		return nil, err
	}
	block.Children = append(block.Children, body.Children...)
	block.EndByte = max(block.EndByte, body.EndByte)
	block.EndLine = max(block.EndLine, body.EndLine)
	return block, nil
}

// parseBody consumes the indented suite following a header line and wraps it
// in a body Block.
func (p *parser) parseBody(headerIndent string, condDepth int) (*core.Block, error) {
	if p.pos >= len(p.lines) {
		return nil, &core.MalformedStructureError{
			Dialect: p.adapter.dialect,
			Reason:  "header with empty body at end of input",
		}
	}
	first := p.lines[p.pos]
	if len(first.indent) <= len(headerIndent) {
		return nil, &core.MalformedStructureError{
			Dialect: p.adapter.dialect,
			Line:    first.number,
			Reason:  "header with empty body",
		}
	}

	body := &core.Block{
		Kind:      core.KindOther,
		Depth:     condDepth,
		StartByte: first.startByte - len(first.indent),
		EndByte:   first.endByte,
		StartLine: first.number,
		EndLine:   first.number,
	}

	suiteIndent := first.indent
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if len(ln.indent) <= len(headerIndent) {
			break
		}
		if err := p.parseSuiteLine(body, suiteIndent, condDepth); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// parseSuiteLine advances over one statement (possibly a nested compound) of
// the suite and extends the body span.
func (p *parser) parseSuiteLine(body *core.Block, suiteIndent string, condDepth int) error {
	ln := p.lines[p.pos]
	switch {
	case ln.indent == suiteIndent && isIfLine(ln.text):
		block, err := p.parseConditional(ln, suiteIndent, condDepth)
		if err != nil {
			return err
		}
		body.Children = append(body.Children, block)
		extendSpan(body, block)
	case ln.indent == suiteIndent && isLoopLine(ln.text):
		block, err := p.parseCompound(ln, suiteIndent, core.KindLoop, condDepth)
		if err != nil {
			return err
		}
		body.Children = append(body.Children, block)
		extendSpan(body, block)
	case ln.indent == suiteIndent && isScopeLine(ln.text):
		block, err := p.parseCompound(ln, suiteIndent, core.KindOther, condDepth)
		if err != nil {
			return err
		}
		body.Children = append(body.Children, block)
		extendSpan(body, block)
	default:
		body.EndByte = max(body.EndByte, ln.endByte)
		body.EndLine = max(body.EndLine, ln.number)
		p.pos++
	}
	return nil
}

func (p *parser) headerCondition(ln line, keyword string) (string, error) {
	rest := strings.TrimPrefix(ln.text, keyword)
	rest = strings.TrimSpace(rest)
	if !strings.HasSuffix(rest, ":") {
		return "", &core.MalformedStructureError{
			Dialect: p.adapter.dialect,
			Line:    ln.number,
			Reason:  "missing trailing colon",
		}
	}
	return strings.TrimSpace(strings.TrimSuffix(rest, ":")), nil
}

func extendSpan(b, child *core.Block) {
	if child.EndByte > b.EndByte {
		b.EndByte = child.EndByte
	}
	if child.EndLine > b.EndLine {
		b.EndLine = child.EndLine
	}
}

func isIfLine(text string) bool {
	return text == "if:" || strings.HasPrefix(text, "if ") || strings.HasPrefix(text, "if(")
}

func isLoopLine(text string) bool {
	return strings.HasPrefix(text, "for ") || strings.HasPrefix(text, "while ") || strings.HasPrefix(text, "while(")
}

var scopeHeads = []string{"def ", "class ", "try:", "try ", "with ", "except", "finally"}

func isScopeLine(text string) bool {
	for _, head := range scopeHeads {
		if strings.HasPrefix(text, head) {
			return true
		}
	}
	return false
}

func leadingWhitespace(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[:i]
		}
	}
	return s
}
