package core

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Transformer rewrites a region's text according to a selected pattern. It
// operates on a copy of the span and never mutates the SourceUnit.
type Transformer struct {
	provider SuggestionProvider
}

// NewTransformer wraps the optional suggestion provider with a bounded
// timeout; nil means placeholder names only.
func NewTransformer(provider SuggestionProvider) *Transformer {
	if provider == nil {
		provider = NoopProvider{}
	}
	return &Transformer{provider: BoundedProvider{Inner: provider}}
}

// Apply produces a candidate for the region from the original unit text.
// FullText is left for the caller to splice, since only the caller knows the
// current working text of the unit.
func (t *Transformer) Apply(
	ctx context.Context,
	text string,
	region ConditionalRegion,
	chain *Chain,
	pattern Pattern,
	syntax Syntax,
) (*RefactoringCandidate, error) {
	if chain == nil || len(chain.Arms) == 0 {
		return nil, ErrTransformInfeasible
	}

	e := &emitter{
		syntax: syntax,
		base:   lineIndentAt(text, region.StartByte),
		unit:   detectIndentUnit(text),
	}

	var (
		segments []string
		subs     []Subroutine
		err      error
	)
	switch pattern {
	case PatternGuardClause:
		segments, err = t.guardClause(e, chain)
	case PatternEarlyReturn:
		segments, err = t.earlyReturn(e, chain)
	case PatternMethodExtraction:
		segments, subs, err = t.methodExtraction(ctx, e, region, chain)
	default:
		return nil, fmt.Errorf("unknown pattern %q", pattern)
	}
	if err != nil {
		return nil, err
	}

	return &RefactoringCandidate{
		Pattern:     pattern,
		RegionText:  strings.Join(segments, "\n"),
		Segments:    segments,
		Subroutines: subs,
	}, nil
}

// guardClause inverts each level's condition into an early exit, collapsing
// the chain to depth one. Execution only reached deeper levels when every
// enclosing condition held, so the inverted guards preserve order.
func (t *Transformer) guardClause(e *emitter, chain *Chain) ([]string, error) {
	if chain.Payload == "" {
		return nil, ErrTransformInfeasible
	}

	segments := make([]string, 0, len(chain.Arms)+1)
	for _, arm := range chain.Arms {
		skip := e.skipStatement()
		if arm.Body != "" {
			skip = arm.Body
		}
		segments = append(segments, e.conditional(e.invert(arm.Condition), skip))
	}
	segments = append(segments, reindent(chain.Payload, e.base))
	return segments, nil
}

// earlyReturn flattens an else-if chain into independent conditionals. Every
// arm terminates, so first-match-wins order is preserved without inversion.
func (t *Transformer) earlyReturn(e *emitter, chain *Chain) ([]string, error) {
	segments := make([]string, 0, len(chain.Arms)+1)
	for _, arm := range chain.Arms {
		segments = append(segments, e.conditional(arm.Condition, arm.Body))
	}
	if chain.Else != nil {
		segments = append(segments, reindent(chain.Else.Body, e.base))
	}
	return segments, nil
}

// methodExtraction moves each top-level arm body into its own subroutine and
// replaces the region with a flat dispatch. Names fall back to branch_N when
// the suggestion provider has nothing to offer.
func (t *Transformer) methodExtraction(
	ctx context.Context,
	e *emitter,
	region ConditionalRegion,
	chain *Chain,
) ([]string, []Subroutine, error) {
	if chain.Shape == ShapeNestedThen && chain.Payload != "" {
		return t.extractPayload(ctx, e, region, chain)
	}

	arms := make([]ChainArm, 0, len(chain.Arms)+1)
	arms = append(arms, chain.Arms...)
	if chain.Else != nil {
		arms = append(arms, *chain.Else)
	}

	condArms, elseArms := 0, 0
	for _, arm := range arms {
		if strings.TrimSpace(arm.Body) == "" {
			continue
		}
		// A return (or raise, break, ...) inside an extracted body would
		// exit the subroutine instead of the original scope.
		if containsTerminator(arm.Body) {
			return nil, nil, ErrTransformInfeasible
		}
		if arm.Condition == "" {
			elseArms++
		} else {
			condArms++
		}
	}
	// Guard-style dispatch exits after the matching call; with statements
	// after the region that exit would skip them. Only the exact if/else
	// pair keeps the surrounding flow intact.
	if region.TrailingCode && !(condArms == 1 && elseArms == 1) {
		return nil, nil, ErrTransformInfeasible
	}

	var segments []string
	subs := make([]Subroutine, 0, len(arms))
	seen := make(map[string]struct{})

	for i, arm := range arms {
		if strings.TrimSpace(arm.Body) == "" {
			continue
		}
		sub := Subroutine{
			Name:   fmt.Sprintf("branch_%d", i+1),
			Params: freeVariables(arm.Body),
		}
		if s, ok := t.provider.Suggest(ctx, region.Fingerprint); ok && s.Name != "" {
			if _, dup := seen[s.Name]; !dup && identifierRe.MatchString(s.Name) {
				sub.Name = s.Name
				sub.Comment = s.Comment
			}
		}
		seen[sub.Name] = struct{}{}
		arms[i].Condition = arm.Condition // keep original for dispatch
		arms[i].Body = sub.Name           // reuse as call target
		subs = append(subs, sub)
		segments = append(segments, e.subroutine(sub, reindentBody(arm.Body)))
	}
	if len(subs) == 0 {
		return nil, nil, ErrTransformInfeasible
	}

	segments = append(segments, e.dispatch(arms, subs)...)
	return segments, subs, nil
}

// extractPayload handles the nested-then chain where guard inversion is off
// the table. The conditions carry no side effects (the selector rejected
// those), so short-circuit conjunction preserves evaluation order exactly.
// Payloads holding a flow terminator and non-terminal skip alternatives have
// no flat equivalent and stay infeasible.
func (t *Transformer) extractPayload(
	ctx context.Context,
	e *emitter,
	region ConditionalRegion,
	chain *Chain,
) ([]string, []Subroutine, error) {
	if containsTerminator(chain.Payload) {
		return nil, nil, ErrTransformInfeasible
	}

	conditions := make([]string, 0, len(chain.Arms))
	for _, arm := range chain.Arms {
		if strings.TrimSpace(arm.Body) != "" {
			return nil, nil, ErrTransformInfeasible
		}
		conditions = append(conditions, e.parenthesize(arm.Condition))
	}

	sub := Subroutine{
		Name:   "branch_1",
		Params: freeVariables(chain.Payload),
	}
	if s, ok := t.provider.Suggest(ctx, region.Fingerprint); ok && s.Name != "" && identifierRe.MatchString(s.Name) {
		sub.Name = s.Name
		sub.Comment = s.Comment
	}

	joined := strings.Join(conditions, " "+e.syntax.Conjunction+" ")
	segments := []string{
		e.subroutine(sub, reindentBody(chain.Payload)),
		e.conditional(joined, e.base+e.unit+e.call(sub)),
	}
	return segments, []Subroutine{sub}, nil
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// emitter renders dialect-shaped source from the adapter's Syntax.
type emitter struct {
	syntax Syntax
	base   string
	unit   string
}

func (e *emitter) skipStatement() string {
	if e.syntax.Style == StyleBraced && e.syntax.SubForm == SubFunction {
		return "return;"
	}
	return "return"
}

func (e *emitter) commentMarker() string {
	if e.syntax.Style == StyleIndented {
		return "#"
	}
	return "//"
}

// conditional emits one flat conditional with the given raw body text.
func (e *emitter) conditional(condition, body string) string {
	inner := reindent(body, e.base+e.unit)
	if strings.TrimSpace(body) == "" {
		inner = e.base + e.unit + e.skipStatement()
	}
	if e.syntax.Style == StyleIndented {
		return fmt.Sprintf("%sif %s:\n%s", e.base, condition, inner)
	}
	return fmt.Sprintf("%sif %s {\n%s\n%s}", e.base, condition, inner, e.base)
}

// subroutine emits one extracted body in the dialect's subroutine form.
func (e *emitter) subroutine(sub Subroutine, body string) string {
	inner := reindent(body, e.base+e.unit)
	var header string
	switch e.syntax.SubForm {
	case SubDef:
		header = fmt.Sprintf("%sdef %s(%s):", e.base, sub.Name, strings.Join(sub.Params, ", "))
	case SubFunction:
		header = fmt.Sprintf("%sfunction %s(%s) {", e.base, sub.Name, strings.Join(sub.Params, ", "))
	default:
		// Local closure: free variables are captured, not passed.
		header = fmt.Sprintf("%s%s := func() {", e.base, sub.Name)
	}

	var b strings.Builder
	if sub.Comment != "" {
		fmt.Fprintf(&b, "%s%s %s\n", e.base, e.commentMarker(), sub.Comment)
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(inner)
	if e.syntax.SubForm != SubDef {
		b.WriteString("\n" + e.base + "}")
	}
	return b.String()
}

// call renders the dispatch invocation of a subroutine.
func (e *emitter) call(sub Subroutine) string {
	if e.syntax.SubForm == SubClosure {
		return sub.Name + "()"
	}
	return fmt.Sprintf("%s(%s)", sub.Name, strings.Join(sub.Params, ", "))
}

// dispatch emits the flat replacement of the original chain. Two arms with
// exact if/else semantics stay a single conditional; longer arm lists become
// guard-style conditionals that exit after the matching call.
func (e *emitter) dispatch(arms []ChainArm, subs []Subroutine) []string {
	// Pair arms back up with their subroutines by call-target name.
	byName := make(map[string]Subroutine, len(subs))
	for _, s := range subs {
		byName[s.Name] = s
	}

	conditioned := make([]ChainArm, 0, len(arms))
	var elseArm *ChainArm
	for i := range arms {
		if _, ok := byName[arms[i].Body]; !ok {
			continue
		}
		if arms[i].Condition == "" {
			elseArm = &arms[i]
		} else {
			conditioned = append(conditioned, arms[i])
		}
	}

	if len(conditioned) == 1 && elseArm != nil {
		// Exact if/else replacement.
		thenCall := e.call(byName[conditioned[0].Body])
		elseCall := e.call(byName[elseArm.Body])
		if e.syntax.Style == StyleIndented {
			return []string{fmt.Sprintf("%sif %s:\n%s%s%s\n%selse:\n%s%s%s",
				e.base, conditioned[0].Condition,
				e.base, e.unit, thenCall,
				e.base,
				e.base, e.unit, elseCall)}
		}
		return []string{fmt.Sprintf("%sif %s {\n%s%s%s\n%s} else {\n%s%s%s\n%s}",
			e.base, conditioned[0].Condition,
			e.base, e.unit, thenCall,
			e.base,
			e.base, e.unit, elseCall,
			e.base)}
	}

	segments := make([]string, 0, len(conditioned)+1)
	for _, arm := range conditioned {
		body := e.call(byName[arm.Body]) + "\n" + e.skipStatement()
		segments = append(segments, e.conditional(arm.Condition, body))
	}
	if elseArm != nil {
		segments = append(segments, e.base+e.call(byName[elseArm.Body]))
	}
	return segments
}

var comparisonRe = regexp.MustCompile(`^\s*(.+?)\s*(==|!=|<=|>=|<|>)\s*(.+?)\s*$`)

var comparisonFlip = map[string]string{
	"==": "!=", "!=": "==",
	"<": ">=", ">=": "<",
	">": "<=", "<=": ">",
}

// invert negates a condition. Single comparisons flip their operator; any
// compound expression is wrapped in the dialect negation.
func (e *emitter) invert(condition string) string {
	trimmed := strings.TrimSpace(condition)
	if !strings.ContainsAny(trimmed, "&|") &&
		!strings.Contains(trimmed, " and ") && !strings.Contains(trimmed, " or ") {
		if m := comparisonRe.FindStringSubmatch(trimmed); m != nil {
			return fmt.Sprintf("%s %s %s", m[1], comparisonFlip[m[2]], m[3])
		}
	}
	if e.syntax.Negation == "not " {
		return "not (" + trimmed + ")"
	}
	return "!(" + trimmed + ")"
}

// parenthesize wraps compound conditions so joining them with a conjunction
// cannot rebind their operators.
func (e *emitter) parenthesize(condition string) string {
	trimmed := strings.TrimSpace(condition)
	if strings.ContainsAny(trimmed, "&|") ||
		strings.Contains(trimmed, " and ") || strings.Contains(trimmed, " or ") {
		return "(" + trimmed + ")"
	}
	return trimmed
}

// reindentBody normalizes a body to zero indent before re-indenting.
func reindentBody(body string) string {
	return reindent(body, "")
}

var wordRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

var reservedWords = map[string]struct{}{
	"if": {}, "else": {}, "elif": {}, "for": {}, "while": {}, "return": {},
	"break": {}, "continue": {}, "def": {}, "func": {}, "function": {},
	"var": {}, "let": {}, "const": {}, "true": {}, "false": {}, "nil": {},
	"null": {}, "None": {}, "True": {}, "False": {}, "not": {}, "and": {},
	"or": {}, "in": {}, "range": {}, "new": {}, "throw": {}, "raise": {},
	"try": {}, "except": {}, "catch": {}, "finally": {}, "switch": {},
	"case": {}, "default": {}, "print": {}, "len": {}, "panic": {},
}

// freeVariables infers the enclosing-scope names a body reads: identifiers
// in order of first use, minus keywords, call targets, attribute names and
// names the body itself binds first. Attribute receivers (item in
// item.save()) are reads and stay in.
func freeVariables(body string) []string {
	bound := make(map[string]struct{})
	seen := make(map[string]struct{})
	var free []string

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		assignAt := assignmentIndex(trimmed)

		for _, loc := range wordRe.FindAllStringIndex(trimmed, -1) {
			word := trimmed[loc[0]:loc[1]]
			if _, ok := reservedWords[word]; ok {
				continue
			}
			if loc[0] > 0 && trimmed[loc[0]-1] == '.' {
				continue
			}
			// Call targets are not data reads; attribute receivers are.
			if loc[1] < len(trimmed) && trimmed[loc[1]] == '(' {
				continue
			}
			if _, ok := bound[word]; ok {
				continue
			}
			if assignAt >= 0 && loc[1] <= assignAt {
				// Left-hand side of the first assignment on this line
				// binds the name locally.
				bound[word] = struct{}{}
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			free = append(free, word)
		}
	}
	return free
}

// assignmentIndex returns the byte index of a plain assignment operator on
// the line, or -1. Comparison and compound operators do not count.
func assignmentIndex(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != '=' {
			continue
		}
		if i+1 < len(line) && line[i+1] == '=' {
			i++
			continue
		}
		if i > 0 && strings.ContainsRune("=!<>+-*/%&|^", rune(line[i-1])) {
			continue
		}
		if i > 0 && line[i-1] == ':' {
			return i - 1
		}
		return i
	}
	return -1
}
