package core

import (
	"regexp"
	"strings"
)

// sideEffectRe catches conditions that assign or mutate, which no pattern
// can safely reorder or invert.
var sideEffectRe = regexp.MustCompile(`(\+\+|--|(^|[^=!<>+\-*/%&|^])=([^=]|$))`)

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

var conditionKeywords = map[string]struct{}{
	"not": {}, "len": {}, "true": {}, "false": {}, "nil": {}, "null": {}, "None": {},
}

// SelectPattern picks the flattening pattern for a collected chain. trailing
// reports statements after the chain inside its enclosing block. The rules
// are evaluated in order and the first match wins:
//
//  1. nested-then chain whose payload and skip alternatives all terminate,
//     with nothing running after the chain -> guard-clause
//  2. else-if chain of conditions on one subject, every arm terminal, no
//     shared trailing computation -> early-return
//  3. anything else -> method-extraction
//
// Chains whose conditions carry side effects select nothing and return
// ErrTransformInfeasible.
func SelectPattern(chain *Chain, trailing bool) (Pattern, error) {
	if chain == nil || len(chain.Arms) == 0 {
		return "", ErrTransformInfeasible
	}
	for _, arm := range chain.Arms {
		if arm.Condition != "" && sideEffectRe.MatchString(arm.Condition) {
			return "", ErrTransformInfeasible
		}
	}

	if guardApplies(chain, trailing) {
		return PatternGuardClause, nil
	}
	if earlyReturnApplies(chain) {
		return PatternEarlyReturn, nil
	}
	return PatternMethodExtraction, nil
}

func guardApplies(chain *Chain, trailing bool) bool {
	if chain.Shape != ShapeNestedThen {
		return false
	}
	// Inverted guards exit the scope where the original chain fell through
	// to whatever follows it, so trailing statements rule the pattern out.
	if trailing {
		return false
	}
	if chain.Payload == "" || !IsTerminalBody(chain.Payload) {
		return false
	}
	// Every level's skip alternative must terminate too, otherwise inverting
	// the condition changes what runs after the chain.
	for _, arm := range chain.Arms {
		if arm.Body != "" && !arm.Terminal {
			return false
		}
	}
	return true
}

func earlyReturnApplies(chain *Chain) bool {
	if chain.Shape != ShapeElseIf {
		return false
	}
	for _, arm := range chain.Arms {
		if !arm.Terminal {
			return false
		}
	}
	if chain.Else != nil && !chain.Else.Terminal {
		return false
	}
	return sameSubject(chain.Arms)
}

// sameSubject reports whether every arm condition leads with one identifier,
// the "increasingly specific conditions on the same subject" shape.
func sameSubject(arms []ChainArm) bool {
	subject := ""
	for _, arm := range arms {
		id := leadingIdentifier(arm.Condition)
		if id == "" {
			return false
		}
		if subject == "" {
			subject = id
			continue
		}
		if id != subject {
			return false
		}
	}
	return subject != ""
}

func leadingIdentifier(condition string) string {
	condition = strings.TrimSpace(condition)
	for {
		trimmed := strings.TrimPrefix(condition, "(")
		trimmed = strings.TrimPrefix(trimmed, "!")
		trimmed = strings.TrimPrefix(trimmed, "not ")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == condition {
			break
		}
		condition = trimmed
	}
	loc := identRe.FindStringIndex(condition)
	if loc == nil || loc[0] != 0 {
		return ""
	}
	id := condition[loc[0]:loc[1]]
	if _, reserved := conditionKeywords[id]; reserved {
		return ""
	}
	return id
}
