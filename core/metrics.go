package core

// Pattern-specific base confidence, scaled by how much nesting the rewrite
// removed and by how many repair attempts the validator burned.
var baseConfidence = map[Pattern]float64{
	PatternGuardClause:      0.9,
	PatternEarlyReturn:      0.75,
	PatternMethodExtraction: 0.6,
}

const (
	confidenceFloor = 0.1
	repairPenalty   = 0.1
	baseWeight      = 0.7
	reductionWeight = 0.3
)

// CompareMetrics builds the before/after snapshot for an accepted candidate.
func CompareMetrics(pattern Pattern, depthBefore, depthAfter, branchesBefore, branchesAfter, repairs int) MetricsSnapshot {
	return MetricsSnapshot{
		DepthBefore:    depthBefore,
		DepthAfter:     depthAfter,
		BranchesBefore: branchesBefore,
		BranchesAfter:  branchesAfter,
		Confidence:     Confidence(pattern, depthBefore, depthAfter, repairs),
	}
}

// Confidence combines the pattern base score with the depth-reduction ratio,
// minus 0.1 per repair attempt, floored at 0.1 and capped at 1.0.
func Confidence(pattern Pattern, depthBefore, depthAfter, repairs int) float64 {
	base := baseConfidence[pattern]

	ratio := 0.0
	if depthBefore > 0 && depthAfter < depthBefore {
		ratio = float64(depthBefore-depthAfter) / float64(depthBefore)
	}

	score := baseWeight*base + reductionWeight*ratio
	score -= repairPenalty * float64(repairs)

	if score < confidenceFloor {
		return confidenceFloor
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

// countBranches counts conditional decision arms rooted in [start, end).
func countBranches(root *Block, start, end int) int {
	count := 0
	root.Walk(func(b *Block) bool {
		if b.Kind != KindConditional {
			return true
		}
		if b.StartByte >= start && b.StartByte < end {
			count += len(b.Branches)
		}
		return true
	})
	return count
}
