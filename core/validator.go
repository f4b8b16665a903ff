package core

import (
	"fmt"
	"strings"
)

// validator states; the loop is Produced -> Validating -> {Accepted,
// Repairing -> Validating, Rejected}.
type vstate int

const (
	stateValidating vstate = iota
	stateRepairing
	stateAccepted
	stateRejected
)

// Validator re-indexes a candidate with the same adapter that produced the
// original Block tree and repairs or discards candidates that fail. It is
// the safety guarantee of the engine: a caller never receives structurally
// broken output.
type Validator struct {
	Adapter     Adapter
	MaxAttempts int
	Threshold   int
}

func NewValidator(adapter Adapter, maxAttempts, threshold int) *Validator {
	if maxAttempts < 0 {
		maxAttempts = 0
	}
	if threshold < 2 {
		threshold = 2
	}
	return &Validator{Adapter: adapter, MaxAttempts: maxAttempts, Threshold: threshold}
}

// Run validates cand against the working unit text. base is the full text
// the candidate's region text gets spliced into at [start, end). On success
// the returned candidate carries the accepted FullText and the result holds
// the measured depth of the rewritten span. On rejection the candidate is
// nil and the caller keeps the original region untouched.
func (v *Validator) Run(cand *RefactoringCandidate, region ConditionalRegion, base string, start, end int) (ValidationResult, *RefactoringCandidate, int) {
	res := ValidationResult{}
	state := stateValidating
	var lastErr error
	depthAfter := region.Depth

	for {
		switch state {
		case stateValidating:
			cand.FullText = splice(base, start, end, cand.RegionText)

			root, err := v.Adapter.Index(cand.FullText)
			if err != nil {
				lastErr = err
				state = stateRepairing
				continue
			}

			spanEnd := start + len(cand.RegionText)
			depth := maxChainDepthIn(root, start, spanEnd)
			// Accepting requires the span to stop being a region at all:
			// strictly shallower than before AND below the detection
			// threshold, otherwise a second pass would find it again.
			if depth >= region.Depth || depth >= v.Threshold {
				lastErr = fmt.Errorf("depth not reduced enough: %d -> %d (threshold %d)",
					region.Depth, depth, v.Threshold)
				state = stateRepairing
				continue
			}

			if cand.Pattern == PatternMethodExtraction && !v.roundTrips(cand) {
				lastErr = fmt.Errorf("extracted subroutines do not round-trip")
				state = stateRepairing
				continue
			}

			depthAfter = depth
			state = stateAccepted

		case stateRepairing:
			if res.Attempts >= v.MaxAttempts {
				state = stateRejected
				continue
			}
			res.Attempts++
			if !v.repair(cand, lastErr) {
				state = stateRejected
				continue
			}
			state = stateValidating

		case stateAccepted:
			res.Valid = true
			res.RoundTripped = cand.Pattern == PatternMethodExtraction
			return res, cand, depthAfter

		case stateRejected:
			res.Valid = false
			if lastErr != nil {
				res.Err = lastErr.Error()
			}
			return res, nil, region.Depth
		}
	}
}

// repair applies one minimal corrective heuristic chosen from the failure
// kind: delimiter balancing for malformed braced output, trailing-colon
// insertion for malformed indented output, and reverting the most recently
// introduced segment for everything else. Returns false when no heuristic
// applies, which rejects the candidate immediately.
func (v *Validator) repair(cand *RefactoringCandidate, cause error) bool {
	if IsMalformed(cause) {
		if v.Adapter.Syntax().Style == StyleBraced {
			return balanceDelimiters(cand)
		}
		return insertTrailingColons(cand)
	}
	return revertLastSegment(cand)
}

func balanceDelimiters(cand *RefactoringCandidate) bool {
	open := strings.Count(cand.RegionText, "{")
	closed := strings.Count(cand.RegionText, "}")
	switch {
	case open > closed:
		cand.RegionText += strings.Repeat("\n}", open-closed)
		return true
	case closed > open:
		text := cand.RegionText
		for closed > open {
			i := strings.LastIndex(text, "}")
			if i < 0 {
				return false
			}
			text = text[:i] + text[i+1:]
			closed--
		}
		cand.RegionText = strings.TrimRight(text, " \t\n")
		return true
	}
	return false
}

var colonHeads = []string{"if ", "elif ", "else", "def ", "for ", "while ", "try", "except", "finally"}

func insertTrailingColons(cand *RefactoringCandidate) bool {
	lines := strings.Split(cand.RegionText, "\n")
	fixed := false
	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		stripped := strings.TrimSpace(trimmed)
		if stripped == "" || strings.HasSuffix(trimmed, ":") {
			continue
		}
		for _, head := range colonHeads {
			if stripped == strings.TrimSpace(head) || strings.HasPrefix(stripped, head) {
				lines[i] = trimmed + ":"
				fixed = true
				break
			}
		}
	}
	if !fixed {
		return false
	}
	cand.RegionText = strings.Join(lines, "\n")
	return true
}

func revertLastSegment(cand *RefactoringCandidate) bool {
	if len(cand.Segments) < 2 {
		return false
	}
	cand.Segments = cand.Segments[:len(cand.Segments)-1]
	cand.RegionText = strings.Join(cand.Segments, "\n")
	return true
}

// roundTrips confirms every extracted subroutine is both defined and called
// inside the rewritten region text, matching the dialect's definition header
// so a name surviving only in a comment does not pass.
func (v *Validator) roundTrips(cand *RefactoringCandidate) bool {
	for _, sub := range cand.Subroutines {
		var header, call string
		switch v.Adapter.Syntax().SubForm {
		case SubDef:
			header = "def " + sub.Name + "("
			call = sub.Name + "("
		case SubFunction:
			header = "function " + sub.Name + "("
			call = sub.Name + "("
		default:
			header = sub.Name + " := func"
			call = sub.Name + "()"
		}
		if !strings.Contains(cand.RegionText, header) {
			return false
		}
		calls := strings.Count(cand.RegionText, call)
		if strings.Contains(header, call) {
			calls-- // the definition header itself matches the call form
		}
		if calls < 1 {
			return false
		}
	}
	return true
}

// maxChainDepthIn measures the deepest conditional chain rooted inside the
// byte span [start, end).
func maxChainDepthIn(root *Block, start, end int) int {
	deepest := 0
	var walk func(b *Block, inChain bool)
	walk = func(b *Block, inChain bool) {
		for _, child := range b.Children {
			isRoot := child.Kind == KindConditional && !inChain
			if isRoot && child.StartByte >= start && child.StartByte < end {
				if d := ChainDepth(child); d > deepest {
					deepest = d
				}
			}
			walk(child, child.Kind == KindConditional)
		}
	}
	if root != nil {
		walk(root, root.Kind == KindConditional)
	}
	return deepest
}
