package core_test

import (
	"strings"
	"testing"

	"github.com/oxhq/unnest/core"
	"github.com/oxhq/unnest/providers/indent"
)

const nestedSource = `def f(x):
    if x:
        if x > 0:
            if x < 5:
                return go(x)
`

func nestedRegion(t *testing.T, source string) (core.ConditionalRegion, int, int) {
	t.Helper()
	root := indexPython(t, source)
	regions := core.NewDetector(3).Detect(root, source)
	if len(regions) != 1 {
		t.Fatalf("regions = %d, want 1", len(regions))
	}
	return regions[0], regions[0].StartByte, regions[0].EndByte
}

func guardSegments() []string {
	return []string{
		"    if not (x):\n        return",
		"    if x <= 0:\n        return",
		"    if x >= 5:\n        return",
		"    return go(x)",
	}
}

func TestValidatorAccepts(t *testing.T) {
	region, start, end := nestedRegion(t, nestedSource)

	segs := guardSegments()
	cand := &core.RefactoringCandidate{
		Pattern:    core.PatternGuardClause,
		RegionText: strings.Join(segs, "\n"),
		Segments:   segs,
	}

	v := core.NewValidator(indent.New(), 3, 3)
	res, accepted, depthAfter := v.Run(cand, region, nestedSource, start, end)
	if !res.Valid {
		t.Fatalf("rejected: %s", res.Err)
	}
	if res.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", res.Attempts)
	}
	if depthAfter != 1 {
		t.Errorf("depthAfter = %d, want 1", depthAfter)
	}
	if !strings.Contains(accepted.FullText, "if not (x):") {
		t.Errorf("accepted text missing guard: %q", accepted.FullText)
	}
	if strings.Contains(accepted.FullText, "if x > 0:") {
		t.Error("accepted text still contains the nested chain")
	}
}

func TestValidatorRepairsMissingColon(t *testing.T) {
	region, start, end := nestedRegion(t, nestedSource)

	segs := guardSegments()
	segs[0] = "    if not (x)\n        return" // drop the colon
	cand := &core.RefactoringCandidate{
		Pattern:    core.PatternGuardClause,
		RegionText: strings.Join(segs, "\n"),
		Segments:   segs,
	}

	v := core.NewValidator(indent.New(), 3, 3)
	res, accepted, _ := v.Run(cand, region, nestedSource, start, end)
	if !res.Valid {
		t.Fatalf("rejected after repair: %s", res.Err)
	}
	if res.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", res.Attempts)
	}
	if !strings.Contains(accepted.RegionText, "if not (x):") {
		t.Errorf("colon not restored: %q", accepted.RegionText)
	}
}

func TestValidatorRejectsInsufficientReduction(t *testing.T) {
	region, start, end := nestedRegion(t, nestedSource)

	// A "rewrite" that reproduces the original nesting must be rejected, or
	// a second pass would detect the same region again.
	original := nestedSource[start:end]
	cand := &core.RefactoringCandidate{
		Pattern:    core.PatternGuardClause,
		RegionText: original,
		Segments:   []string{original},
	}

	v := core.NewValidator(indent.New(), 3, 3)
	res, accepted, depthAfter := v.Run(cand, region, nestedSource, start, end)
	if res.Valid {
		t.Fatal("unreduced candidate was accepted")
	}
	if accepted != nil {
		t.Error("rejected run returned a candidate")
	}
	if depthAfter != region.Depth {
		t.Errorf("depthAfter = %d, want original depth %d", depthAfter, region.Depth)
	}
	if !strings.Contains(res.Err, "depth not reduced") {
		t.Errorf("err = %q", res.Err)
	}
}

func TestValidatorZeroAttempts(t *testing.T) {
	region, start, end := nestedRegion(t, nestedSource)

	cand := &core.RefactoringCandidate{
		Pattern:    core.PatternGuardClause,
		RegionText: "    if broken\n        return",
		Segments:   []string{"    if broken\n        return"},
	}

	v := core.NewValidator(indent.New(), 0, 3)
	res, _, _ := v.Run(cand, region, nestedSource, start, end)
	if res.Valid {
		t.Fatal("broken candidate accepted")
	}
	if res.Attempts != 0 {
		t.Errorf("attempts = %d, want 0 when repairs are disabled", res.Attempts)
	}
}

func TestValidatorRoundTripNeedsDefinitionAndCall(t *testing.T) {
	region, start, end := nestedRegion(t, nestedSource)
	v := core.NewValidator(indent.New(), 1, 3)

	// The name survives twice in a comment but its definition is gone.
	text := "    # helper replaced, wire helper back in\n    plain()"
	cand := &core.RefactoringCandidate{
		Pattern:     core.PatternMethodExtraction,
		RegionText:  text,
		Segments:    []string{text},
		Subroutines: []core.Subroutine{{Name: "helper"}},
	}
	res, _, _ := v.Run(cand, region, nestedSource, start, end)
	if res.Valid {
		t.Fatal("comment mentions passed the round-trip check")
	}
	if !strings.Contains(res.Err, "round-trip") {
		t.Errorf("err = %q", res.Err)
	}

	// Defined and called is the real round-trip.
	good := "    def helper(x):\n        go(x)\n    helper(x)"
	cand = &core.RefactoringCandidate{
		Pattern:     core.PatternMethodExtraction,
		RegionText:  good,
		Segments:    []string{good},
		Subroutines: []core.Subroutine{{Name: "helper"}},
	}
	res, accepted, _ := v.Run(cand, region, nestedSource, start, end)
	if !res.Valid {
		t.Fatalf("defined-and-called candidate rejected: %s", res.Err)
	}
	if accepted == nil {
		t.Fatal("accepted run returned no candidate")
	}
}

func TestValidatorRoundTripCheck(t *testing.T) {
	region, start, end := nestedRegion(t, nestedSource)

	// Claims an extracted subroutine that the region text never calls.
	text := "    def helper():\n        return go(x)\n    plain()"
	cand := &core.RefactoringCandidate{
		Pattern:     core.PatternMethodExtraction,
		RegionText:  text,
		Segments:    []string{text},
		Subroutines: []core.Subroutine{{Name: "missing_sub"}},
	}

	v := core.NewValidator(indent.New(), 1, 3)
	res, _, _ := v.Run(cand, region, nestedSource, start, end)
	if res.Valid {
		t.Fatal("candidate without round-trip accepted")
	}
	if !strings.Contains(res.Err, "round-trip") {
		t.Errorf("err = %q", res.Err)
	}
}
