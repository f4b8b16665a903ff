package core

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Detector walks a Block tree and emits one ConditionalRegion per maximal
// nesting chain whose depth reaches the threshold. Interior sub-chains of a
// reported chain are never reported on their own.
type Detector struct {
	Threshold int
}

// NewDetector creates a detector. Thresholds below 2 are raised to 2.
func NewDetector(threshold int) *Detector {
	if threshold < 2 {
		threshold = 2
	}
	return &Detector{Threshold: threshold}
}

// Detect returns the regions of root in ascending start order.
func (d *Detector) Detect(root *Block, text string) []ConditionalRegion {
	if root == nil {
		return nil
	}

	var regions []ConditionalRegion
	d.scan(root, text, root.EndByte, &regions)

	sort.Slice(regions, func(i, j int) bool {
		return regions[i].StartByte < regions[j].StartByte
	})
	for i := range regions {
		regions[i].ID = uuid.NewString()
	}
	return regions
}

// scan looks for chain roots among the children of a non-conditional block.
// enclosingEnd bounds the content of b, so a chain root can tell whether
// statements follow it inside the same block.
func (d *Detector) scan(b *Block, text string, enclosingEnd int, regions *[]ConditionalRegion) {
	for _, child := range b.Children {
		if child.Kind == KindConditional {
			d.visitChainRoot(child, text, enclosingEnd, regions)
		} else {
			d.scan(child, text, child.EndByte, regions)
		}
	}
}

// visitChainRoot measures the chain rooted at c, records it when deep
// enough, and keeps scanning below chain breaks for independent chains.
func (d *Detector) visitChainRoot(c *Block, text string, enclosingEnd int, regions *[]ConditionalRegion) {
	depth := ChainDepth(c)
	if depth >= d.Threshold {
		chain := CollectChain(c, text)
		// Widen the span to the start of the line so a replacement carrying
		// its own indentation splices in cleanly.
		start := c.StartByte
		if ls := strings.LastIndexByte(text[:start], '\n') + 1; strings.TrimSpace(text[ls:start]) == "" {
			start = ls
		}
		*regions = append(*regions, ConditionalRegion{
			StartByte:    start,
			EndByte:      c.EndByte,
			StartLine:    c.StartLine,
			EndLine:      c.EndLine,
			Depth:        depth,
			Severity:     SeverityFor(depth),
			TrailingCode: trailingCode(text, c.EndByte, enclosingEnd),
			Fingerprint: NewFingerprint(
				chain.BranchCount(), depth, chain.Else != nil, chain.HasEarlyExit()),
			Root: c,
		})
		// The whole chain is covered by this region; only descend past
		// non-conditional boundaries to find independent chains.
		d.scanChainInterior(c, text, regions)
		return
	}

	// Shallow chain: its interior conditionals are part of the same run, but
	// anything below a non-conditional boundary starts fresh.
	d.scanChainInterior(c, text, regions)
}

func (d *Detector) scanChainInterior(c *Block, text string, regions *[]ConditionalRegion) {
	for _, br := range c.Branches {
		if br.Body == nil {
			continue
		}
		for _, child := range br.Body.Children {
			if child.Kind == KindConditional {
				d.scanChainInterior(child, text, regions)
			} else {
				d.scan(child, text, child.EndByte, regions)
			}
		}
	}
}

// trailingCode reports whether real statements sit between from and to,
// ignoring whitespace and lines made only of closing delimiters.
func trailingCode(text string, from, to int) bool {
	if to > len(text) {
		to = len(text)
	}
	if from >= to {
		return false
	}
	for _, line := range strings.Split(text[from:to], "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.Trim(trimmed, "}){;") == "" {
			continue
		}
		return true
	}
	return false
}
