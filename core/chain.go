package core

import (
	"regexp"
	"strings"
)

// ChainShape classifies how a nesting chain is linked together.
type ChainShape int

const (
	// ShapeNestedThen: each level's then-body holds the next conditional
	// (if a { if b { ... } }).
	ShapeNestedThen ChainShape = iota
	// ShapeElseIf: each level's else arm holds the next conditional
	// (if a {...} else if b {...}).
	ShapeElseIf
	// ShapeMixed: anything else, such as side statements next to a
	// nested conditional or chains branching in both directions.
	ShapeMixed
)

func (s ChainShape) String() string {
	switch s {
	case ShapeNestedThen:
		return "nested-then"
	case ShapeElseIf:
		return "else-if"
	default:
		return "mixed"
	}
}

// ChainArm is one decision arm of a flattened chain view.
type ChainArm struct {
	Condition string
	Body      string
	BodyBlock *Block
	Terminal  bool
}

// Chain is the flattened view of a conditional nesting chain, extracted once
// and shared by the pattern selector and the transform engine.
type Chain struct {
	Shape ChainShape
	Depth int

	// Arms holds the decision arms in source order. For ShapeNestedThen the
	// arm bodies are the per-level else alternatives (empty when a level has
	// no else); the innermost then-body is Payload.
	Arms []ChainArm
	Else *ChainArm

	Payload      string
	PayloadBlock *Block
}

// ChainDepth measures the longest conditional-within-branch-body descent
// rooted at b. Non-conditional blocks break the chain.
func ChainDepth(b *Block) int {
	if b == nil || b.Kind != KindConditional {
		return 0
	}
	deepest := 0
	for _, br := range b.Branches {
		if br.Body == nil {
			continue
		}
		for _, ch := range br.Body.Children {
			if ch.Kind != KindConditional {
				continue
			}
			if d := ChainDepth(ch); d > deepest {
				deepest = d
			}
		}
	}
	return 1 + deepest
}

// CollectChain flattens the chain rooted at root against its source text.
func CollectChain(root *Block, text string) *Chain {
	chain := &Chain{Depth: ChainDepth(root)}
	if root == nil || root.Kind != KindConditional {
		return chain
	}

	thenLinks, elseLinks := 0, 0
	cur := root

	for {
		then := thenBranch(cur)
		els := elseBranch(cur)

		var tNext, eNext *Block
		if then != nil {
			tNext = soleConditional(then.Body, text)
		}
		if els != nil {
			eNext = soleConditional(els.Body, text)
		}

		switch {
		case tNext != nil && eNext == nil:
			// Guard-style link: condition guards the next level, the else
			// arm (if any) is this level's skip alternative.
			arm := ChainArm{Condition: then.Condition}
			if els != nil {
				arm.Body = bodyText(els.Body, text)
				arm.BodyBlock = els.Body
				arm.Terminal = IsTerminalBody(arm.Body)
			}
			chain.Arms = append(chain.Arms, arm)
			thenLinks++
			cur = tNext
			continue
		case eNext != nil && tNext == nil:
			// else-if link: this level's then-body is a real arm.
			body := bodyText(then.Body, text)
			chain.Arms = append(chain.Arms, ChainArm{
				Condition: then.Condition,
				Body:      body,
				BodyBlock: then.Body,
				Terminal:  IsTerminalBody(body),
			})
			elseLinks++
			cur = eNext
			continue
		}

		// Chain ends at cur: its then-body is the final arm or payload.
		body := bodyText(then.Body, text)
		last := ChainArm{
			Condition: then.Condition,
			Body:      body,
			BodyBlock: then.Body,
			Terminal:  IsTerminalBody(body),
		}
		if thenLinks > 0 && elseLinks == 0 {
			chain.Payload = body
			chain.PayloadBlock = then.Body
			chain.Arms = append(chain.Arms, ChainArm{Condition: then.Condition})
			// Innermost else arm still acts as a skip alternative.
			if els != nil {
				arm := &chain.Arms[len(chain.Arms)-1]
				arm.Body = bodyText(els.Body, text)
				arm.BodyBlock = els.Body
				arm.Terminal = IsTerminalBody(arm.Body)
			}
		} else {
			chain.Arms = append(chain.Arms, last)
			if els != nil {
				body := bodyText(els.Body, text)
				chain.Else = &ChainArm{
					Body:      body,
					BodyBlock: els.Body,
					Terminal:  IsTerminalBody(body),
				}
			}
		}
		break
	}

	links := thenLinks + elseLinks
	switch {
	case chain.Depth != links+1:
		// Conditionals hang off the chain beside other statements.
		chain.Shape = ShapeMixed
	case elseLinks == 0 && thenLinks > 0:
		chain.Shape = ShapeNestedThen
	case thenLinks == 0 && elseLinks > 0:
		chain.Shape = ShapeElseIf
	case links == 0:
		chain.Shape = ShapeMixed
	default:
		chain.Shape = ShapeMixed
	}

	if chain.Shape == ShapeMixed {
		chain.collapseToTopLevel(root, text)
	}
	return chain
}

// collapseToTopLevel rebuilds the arm view from the chain root's own
// branches, the granularity method extraction dispatches on.
func (c *Chain) collapseToTopLevel(root *Block, text string) {
	c.Arms = nil
	c.Else = nil
	c.Payload = ""
	c.PayloadBlock = nil

	for _, br := range root.Branches {
		body := bodyText(br.Body, text)
		arm := ChainArm{
			Condition: br.Condition,
			Body:      body,
			BodyBlock: br.Body,
			Terminal:  IsTerminalBody(body),
		}
		if br.Condition == "" {
			c.Else = &arm
		} else {
			c.Arms = append(c.Arms, arm)
		}
	}
}

// BranchCount is the number of decision arms including a trailing else.
func (c *Chain) BranchCount() int {
	n := len(c.Arms)
	if c.Else != nil {
		n++
	}
	return n
}

// HasEarlyExit reports whether any arm, the else or the payload terminates.
func (c *Chain) HasEarlyExit() bool {
	for _, arm := range c.Arms {
		if arm.Terminal {
			return true
		}
	}
	if c.Else != nil && c.Else.Terminal {
		return true
	}
	return c.Payload != "" && IsTerminalBody(c.Payload)
}

func thenBranch(b *Block) *Branch {
	for i := range b.Branches {
		if b.Branches[i].Condition != "" {
			return &b.Branches[i]
		}
	}
	if len(b.Branches) > 0 {
		return &b.Branches[0]
	}
	return nil
}

func elseBranch(b *Block) *Branch {
	for i := range b.Branches {
		if b.Branches[i].Condition == "" {
			return &b.Branches[i]
		}
	}
	return nil
}

// soleConditional returns the conditional child of body when it is the only
// content of the body (pure chain link), nil otherwise.
func soleConditional(body *Block, text string) *Block {
	if body == nil {
		return nil
	}
	var cond *Block
	for _, ch := range body.Children {
		if ch.Kind == KindConditional {
			if cond != nil {
				return nil
			}
			cond = ch
		} else {
			return nil
		}
	}
	if cond == nil {
		return nil
	}
	// Residue text around the nested conditional means side statements.
	if strings.TrimSpace(sliceText(text, body.StartByte, cond.StartByte)) != "" {
		return nil
	}
	if strings.TrimSpace(sliceText(text, cond.EndByte, body.EndByte)) != "" {
		return nil
	}
	return cond
}

func bodyText(body *Block, text string) string {
	if body == nil {
		return ""
	}
	return sliceText(text, body.StartByte, body.EndByte)
}

func sliceText(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ""
	}
	return text[start:end]
}

var terminalRe = regexp.MustCompile(`^(return\b|throw\b|raise\b|break\b|continue\b|panic\(|os\.Exit\(|sys\.exit\(|exit\()`)

// IsTerminalBody reports whether the last top-level statement of body exits
// the enclosing flow (return, throw, raise, break, continue, panic, exit).
// A terminator sitting deeper than the body's own indentation level is only
// conditionally reached and does not count; the statement owning it does.
func IsTerminalBody(body string) bool {
	lines := strings.Split(body, "\n")

	topIndent := -1
	for _, line := range lines {
		if passiveLine(strings.TrimSpace(line)) {
			continue
		}
		if w := indentWidth(line); topIndent < 0 || w < topIndent {
			topIndent = w
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if passiveLine(trimmed) {
			continue
		}
		if indentWidth(lines[i]) > topIndent {
			continue // nested under an earlier top-level statement
		}
		return terminalRe.MatchString(trimmed)
	}
	return false
}

// containsTerminator reports whether body holds a flow terminator at any
// nesting level. Moving such a body across a call boundary swallows the
// exit, so extraction refuses these bodies.
func containsTerminator(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if passiveLine(trimmed) {
			continue
		}
		if terminalRe.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// passiveLine: blank, closing delimiter or comment; carries no statement.
func passiveLine(trimmed string) bool {
	if trimmed == "" || trimmed == "}" || trimmed == "};" {
		return true
	}
	return strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#")
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
