package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		before  int
		after   int
		repairs int
		want    float64
	}{
		{"guard_full_reduction", PatternGuardClause, 3, 1, 0, 0.7*0.9 + 0.3*(2.0/3.0)},
		{"early_return", PatternEarlyReturn, 3, 1, 0, 0.7*0.75 + 0.3*(2.0/3.0)},
		{"extraction", PatternMethodExtraction, 4, 2, 0, 0.7*0.6 + 0.3*0.5},
		{"repair_penalty", PatternGuardClause, 3, 1, 2, 0.7*0.9 + 0.3*(2.0/3.0) - 0.2},
		{"floor", PatternMethodExtraction, 3, 2, 5, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.pattern, tt.before, tt.after, tt.repairs)
			if !almostEqual(got, tt.want) {
				t.Errorf("Confidence = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestConfidenceBounds(t *testing.T) {
	for repairs := 0; repairs < 10; repairs++ {
		got := Confidence(PatternGuardClause, 6, 1, repairs)
		if got < confidenceFloor || got > 1.0 {
			t.Errorf("Confidence out of bounds with %d repairs: %g", repairs, got)
		}
	}
}

func TestCompareMetrics(t *testing.T) {
	m := CompareMetrics(PatternGuardClause, 3, 1, 4, 4, 1)
	if m.DepthBefore != 3 || m.DepthAfter != 1 {
		t.Errorf("depth snapshot = %d -> %d", m.DepthBefore, m.DepthAfter)
	}
	if m.BranchesBefore != 4 || m.BranchesAfter != 4 {
		t.Errorf("branch snapshot = %d -> %d", m.BranchesBefore, m.BranchesAfter)
	}
	want := Confidence(PatternGuardClause, 3, 1, 1)
	if !almostEqual(m.Confidence, want) {
		t.Errorf("confidence = %g, want %g", m.Confidence, want)
	}
}
