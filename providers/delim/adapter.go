// Package delim implements the delimiter-tracking dialect adapter for
// C-family dialects: conditional keywords followed by brace-delimited bodies,
// with a lexical pre-pass so delimiters inside comments and string literals
// are never counted.
package delim

import (
	"strings"

	"github.com/oxhq/unnest/core"
)

// Adapter indexes brace-delimited source text.
type Adapter struct {
	dialect    string
	aliases    []string
	extensions []string
}

var dialectExtensions = map[string][]string{
	"c":          {".c", ".h"},
	"cpp":        {".cpp", ".cc", ".cxx", ".hpp"},
	"java":       {".java"},
	"javascript": {".js", ".jsx", ".mjs", ".cjs"},
}

var dialectAliases = map[string][]string{
	"cpp":        {"c++"},
	"javascript": {"js"},
}

// New creates an adapter for one C-family dialect tag.
func New(dialect string) *Adapter {
	return &Adapter{
		dialect:    dialect,
		aliases:    dialectAliases[dialect],
		extensions: dialectExtensions[dialect],
	}
}

func (a *Adapter) Dialect() string      { return a.dialect }
func (a *Adapter) Aliases() []string    { return a.aliases }
func (a *Adapter) Extensions() []string { return a.extensions }
func (a *Adapter) Strategy() string     { return "delimiter" }

func (a *Adapter) Syntax() core.Syntax {
	return core.Syntax{
		Style:       core.StyleBraced,
		Negation:    "!",
		Conjunction: "&&",
		SubForm:     core.SubFunction,
	}
}

// Index scans paired delimiters and builds the Block tree. Unbalanced
// braces or parens are a malformed-structure error.
func (a *Adapter) Index(text string) (*core.Block, error) {
	masked := maskLiterals(text)
	s := &scanner{
		adapter:  a,
		text:     text,
		masked:   masked,
		line:     1,
		elseWrap: make(map[*core.Block]elseLink),
	}
	return s.run()
}

type elseLink struct {
	owner *core.Block // conditional owning the else arm
	wrap  *core.Block // the else-branch body wrapping the nested conditional
}

type frame struct {
	body   *core.Block
	owner  *core.Block // conditional/loop block closed alongside body, if any
	isCond bool
}

type scanner struct {
	adapter *Adapter
	text    string
	masked  string
	pos     int
	line    int

	stack     []frame
	condDepth int

	// pending header state between a keyword and its opening brace
	pendingKind  core.BlockKind
	pendingStart int
	pendingLine  int
	pendingCond  string
	havePending  bool

	// else attachment state
	lastClosed *core.Block // most recently closed conditional
	elseFor    *core.Block // conditional whose else arm is being attached
	elseWrap   map[*core.Block]elseLink
}

func (s *scanner) malformed(line int, reason string) error {
	return &core.MalformedStructureError{Dialect: s.adapter.dialect, Line: line, Reason: reason}
}

func (s *scanner) run() (*core.Block, error) {
	root := &core.Block{
		Kind:      core.KindOther,
		StartByte: 0,
		EndByte:   len(s.text),
		StartLine: 1,
		EndLine:   strings.Count(s.text, "\n") + 1,
	}
	s.stack = []frame{{body: root}}

	for s.pos < len(s.masked) {
		c := s.masked[s.pos]
		switch {
		case c == '\n':
			s.line++
			s.pos++
		case c == '{':
			s.openBrace()
		case c == '}':
			if err := s.closeBrace(); err != nil {
				return nil, err
			}
		case isWordStart(c):
			s.word()
		default:
			s.pos++
		}
	}

	if len(s.stack) != 1 {
		return nil, s.malformed(s.line, "unclosed delimiter at end of input")
	}
	return root, nil
}

// word consumes one identifier/keyword and updates header state.
func (s *scanner) word() {
	start := s.pos
	for s.pos < len(s.masked) && isWordPart(s.masked[s.pos]) {
		s.pos++
	}
	w := s.masked[start:s.pos]

	switch w {
	case "if":
		kwStart, kwLine := start, s.line
		cond, ok := s.captureCondition()
		if !ok {
			return
		}
		s.havePending = true
		s.pendingKind = core.KindConditional
		s.pendingCond = cond
		s.pendingStart = kwStart
		s.pendingLine = kwLine
	case "for", "while", "do":
		s.havePending = true
		s.pendingKind = core.KindLoop
		s.pendingStart = start
		s.pendingLine = s.line
		s.pendingCond = ""
		s.elseFor = nil
		s.lastClosed = nil
	case "else":
		if s.lastClosed != nil {
			s.elseFor = s.lastClosed
			s.lastClosed = nil
		}
	default:
		// Any other statement token breaks if/else adjacency.
		s.lastClosed = nil
		if !s.havePending {
			s.elseFor = nil
		}
	}
}

// captureCondition reads the parenthesized condition following an if/while
// keyword. Text is sliced from the original source, parens are matched on
// the masked copy.
func (s *scanner) captureCondition() (string, bool) {
	i := s.pos
	for i < len(s.masked) && (s.masked[i] == ' ' || s.masked[i] == '\t' || s.masked[i] == '\n') {
		if s.masked[i] == '\n' {
			s.line++
		}
		i++
	}
	if i >= len(s.masked) || s.masked[i] != '(' {
		return "", false
	}
	depth := 0
	open := i
	for ; i < len(s.masked); i++ {
		switch s.masked[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				s.pos = i + 1
				return strings.TrimSpace(s.text[open+1 : i]), true
			}
		case '\n':
			s.line++
		}
	}
	s.pos = i
	return "", false
}

// openBrace starts a block body. Pending headers become conditional/loop
// blocks; bare braces become plain blocks so scopes still break chains.
func (s *scanner) openBrace() {
	parent := s.stack[len(s.stack)-1].body

	switch {
	case s.elseFor != nil && !s.havePending:
		// else { ... }: plain else arm of the last conditional.
		owner := s.elseFor
		s.elseFor = nil
		body := &core.Block{
			Kind:      core.KindOther,
			Depth:     s.condDepth,
			StartByte: s.pos + 1,
			StartLine: s.line,
		}
		owner.Branches = append(owner.Branches, core.Branch{Body: body})
		owner.Children = append(owner.Children, body)
		s.stack = append(s.stack, frame{body: body, owner: owner, isCond: true})
		s.condDepth++

	case s.havePending && s.pendingKind == core.KindConditional:
		block := &core.Block{
			Kind:      core.KindConditional,
			Depth:     s.condDepth + 1,
			StartByte: s.pendingStart,
			StartLine: s.pendingLine,
		}
		body := &core.Block{
			Kind:      core.KindOther,
			Depth:     s.condDepth + 1,
			StartByte: s.pos + 1,
			StartLine: s.line,
		}
		block.Branches = append(block.Branches, core.Branch{Condition: s.pendingCond, Body: body})
		block.Children = append(block.Children, body)

		if s.elseFor != nil {
			// else-if: wrap the new conditional in the owner's else body.
			wrap := &core.Block{
				Kind:      core.KindOther,
				Depth:     s.condDepth,
				StartByte: block.StartByte,
				StartLine: block.StartLine,
				Children:  []*core.Block{block},
			}
			s.elseFor.Branches = append(s.elseFor.Branches, core.Branch{Body: wrap})
			s.elseFor.Children = append(s.elseFor.Children, wrap)
			s.elseWrap[block] = elseLink{owner: s.elseFor, wrap: wrap}
			s.elseFor = nil
		} else {
			parent.Children = append(parent.Children, block)
		}

		s.stack = append(s.stack, frame{body: body, owner: block, isCond: true})
		s.condDepth++
		s.havePending = false

	case s.havePending && s.pendingKind == core.KindLoop:
		block := &core.Block{
			Kind:      core.KindLoop,
			Depth:     s.condDepth,
			StartByte: s.pendingStart,
			StartLine: s.pendingLine,
		}
		parent.Children = append(parent.Children, block)
		s.stack = append(s.stack, frame{body: block})
		s.havePending = false

	default:
		// Function body, bare scope, struct literal: a plain block that
		// still breaks conditional chains.
		block := &core.Block{
			Kind:      core.KindOther,
			Depth:     s.condDepth,
			StartByte: s.pos,
			StartLine: s.line,
		}
		parent.Children = append(parent.Children, block)
		s.stack = append(s.stack, frame{body: block})
	}

	s.pos++
}

func (s *scanner) closeBrace() error {
	if len(s.stack) <= 1 {
		return s.malformed(s.line, "unbalanced closing delimiter")
	}

	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	f.body.EndByte = s.pos
	f.body.EndLine = s.line
	end := s.pos + 1

	if f.owner != nil {
		f.owner.EndByte = end
		f.owner.EndLine = s.line
		s.propagateEnd(f.owner, end)
		if f.owner.Kind == core.KindConditional {
			s.lastClosed = f.owner
		}
	} else if f.body.Kind == core.KindLoop {
		f.body.EndByte = end
		s.lastClosed = nil
	} else {
		f.body.EndByte = end
		s.lastClosed = nil
	}
	if f.isCond {
		s.condDepth--
	}

	s.pos++
	return nil
}

// propagateEnd extends enclosing else-if wrappers and their owners so the
// outermost conditional of a chain spans every arm.
func (s *scanner) propagateEnd(block *core.Block, end int) {
	for {
		link, ok := s.elseWrap[block]
		if !ok {
			return
		}
		link.wrap.EndByte = end
		link.wrap.EndLine = s.line
		link.owner.EndByte = end
		link.owner.EndLine = s.line
		block = link.owner
	}
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9')
}

// maskLiterals blanks comments and string/char literals, preserving length
// and newlines so offsets and line counts survive the pre-pass.
func maskLiterals(src string) string {
	out := []byte(src)
	const (
		code = iota
		lineComment
		blockComment
		dquote
		squote
		backtick
	)
	state := code

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				state = lineComment
				out[i] = ' '
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				state = blockComment
				out[i] = ' '
			case c == '"':
				state = dquote
			case c == '\'':
				state = squote
			case c == '`':
				state = backtick
			}
		case lineComment:
			if c == '\n' {
				state = code
			} else {
				out[i] = ' '
			}
		case blockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				state = code
			} else if c != '\n' {
				out[i] = ' '
			}
		case dquote, squote, backtick:
			closer := byte('"')
			if state == squote {
				closer = '\''
			} else if state == backtick {
				closer = '`'
			}
			switch {
			case c == '\\' && i+1 < len(src):
				out[i] = ' '
				if src[i+1] != '\n' {
					out[i+1] = ' '
				}
				i++
			case c == closer:
				state = code
			case c == '\n' && state != backtick:
				// Unterminated literal; fall back to code at line end.
				state = code
			default:
				out[i] = ' '
			}
		}
	}
	return string(out)
}
