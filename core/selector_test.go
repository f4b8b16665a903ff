package core

import (
	"errors"
	"testing"
)

func TestSelectPatternGuardClause(t *testing.T) {
	// if a: if b: if c: return  -- nested-then with a terminal payload.
	chain := &Chain{
		Shape:   ShapeNestedThen,
		Depth:   3,
		Payload: "return process(value)",
		Arms: []ChainArm{
			{Condition: "value"},
			{Condition: "value > 0"},
			{Condition: "value < 100"},
		},
	}

	pattern, err := SelectPattern(chain, false)
	if err != nil {
		t.Fatalf("SelectPattern failed: %v", err)
	}
	if pattern != PatternGuardClause {
		t.Errorf("pattern = %q, want guard-clause", pattern)
	}
}

func TestSelectPatternGuardRefusedWithTrailingCode(t *testing.T) {
	// Statements after the chain still run when a condition fails; guard
	// returns would skip them.
	chain := &Chain{
		Shape:   ShapeNestedThen,
		Depth:   3,
		Payload: "return process(value)",
		Arms: []ChainArm{
			{Condition: "value"},
			{Condition: "value > 0"},
			{Condition: "value < 100"},
		},
	}

	pattern, err := SelectPattern(chain, true)
	if err != nil {
		t.Fatalf("SelectPattern failed: %v", err)
	}
	if pattern == PatternGuardClause {
		t.Error("guard-clause selected despite trailing code after the chain")
	}
}

func TestSelectPatternGuardNeedsTerminalAlternatives(t *testing.T) {
	// A non-terminal else arm means inverting would change what runs next.
	chain := &Chain{
		Shape:   ShapeNestedThen,
		Depth:   3,
		Payload: "return process(value)",
		Arms: []ChainArm{
			{Condition: "value", Body: "log(value)", Terminal: false},
			{Condition: "value > 0"},
			{Condition: "value < 100"},
		},
	}

	pattern, err := SelectPattern(chain, false)
	if err != nil {
		t.Fatalf("SelectPattern failed: %v", err)
	}
	if pattern != PatternMethodExtraction {
		t.Errorf("pattern = %q, want method-extraction", pattern)
	}
}

func TestSelectPatternEarlyReturn(t *testing.T) {
	chain := &Chain{
		Shape: ShapeElseIf,
		Depth: 3,
		Arms: []ChainArm{
			{Condition: "x < 0", Body: "return \"negative\"", Terminal: true},
			{Condition: "x == 0", Body: "return \"zero\"", Terminal: true},
			{Condition: "x < 10", Body: "return \"small\"", Terminal: true},
		},
		Else: &ChainArm{Body: "return \"large\"", Terminal: true},
	}

	pattern, err := SelectPattern(chain, false)
	if err != nil {
		t.Fatalf("SelectPattern failed: %v", err)
	}
	if pattern != PatternEarlyReturn {
		t.Errorf("pattern = %q, want early-return", pattern)
	}
}

func TestSelectPatternEarlyReturnNeedsOneSubject(t *testing.T) {
	chain := &Chain{
		Shape: ShapeElseIf,
		Depth: 3,
		Arms: []ChainArm{
			{Condition: "x < 0", Body: "return 1", Terminal: true},
			{Condition: "y == 0", Body: "return 2", Terminal: true},
			{Condition: "x < 10", Body: "return 3", Terminal: true},
		},
	}

	pattern, err := SelectPattern(chain, false)
	if err != nil {
		t.Fatalf("SelectPattern failed: %v", err)
	}
	if pattern != PatternMethodExtraction {
		t.Errorf("pattern = %q, want method-extraction for mixed subjects", pattern)
	}
}

func TestSelectPatternMixedShape(t *testing.T) {
	chain := &Chain{
		Shape: ShapeMixed,
		Depth: 3,
		Arms: []ChainArm{
			{Condition: "kind == \"a\"", Body: "handle_a(payload)"},
		},
		Else: &ChainArm{Body: "handle_b(payload)"},
	}

	pattern, err := SelectPattern(chain, false)
	if err != nil {
		t.Fatalf("SelectPattern failed: %v", err)
	}
	if pattern != PatternMethodExtraction {
		t.Errorf("pattern = %q, want method-extraction", pattern)
	}
}

func TestSelectPatternSideEffectingCondition(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		feasible  bool
	}{
		{"assignment", "n = next()", false},
		{"increment", "count++ < 3", false},
		{"decrement", "--retries > 0", false},
		{"comparison", "n == 3", true},
		{"not_equal", "n != 3", true},
		{"lte", "n <= 3", true},
		{"compound_assign_target", "a >= b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &Chain{
				Shape:   ShapeNestedThen,
				Depth:   3,
				Payload: "return x",
				Arms:    []ChainArm{{Condition: tt.condition}, {Condition: "b"}, {Condition: "c"}},
			}
			_, err := SelectPattern(chain, false)
			if tt.feasible && err != nil {
				t.Errorf("condition %q should be feasible, got %v", tt.condition, err)
			}
			if !tt.feasible && !errors.Is(err, ErrTransformInfeasible) {
				t.Errorf("condition %q should be infeasible, got %v", tt.condition, err)
			}
		})
	}
}

func TestSelectPatternEmptyChain(t *testing.T) {
	if _, err := SelectPattern(nil, false); !errors.Is(err, ErrTransformInfeasible) {
		t.Errorf("nil chain: err = %v", err)
	}
	if _, err := SelectPattern(&Chain{}, false); !errors.Is(err, ErrTransformInfeasible) {
		t.Errorf("empty chain: err = %v", err)
	}
}
