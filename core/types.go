package core

// SourceUnit is an immutable piece of source text handed to the engine.
// The engine only reads it; rewritten text is returned through a Report.
type SourceUnit struct {
	Path    string `json:"path,omitempty"`
	Dialect string `json:"dialect"`
	Text    string `json:"-"`
}

// BlockKind classifies a structural node.
type BlockKind int

const (
	KindOther BlockKind = iota
	KindConditional
	KindLoop
)

func (k BlockKind) String() string {
	switch k {
	case KindConditional:
		return "conditional"
	case KindLoop:
		return "loop"
	default:
		return "other"
	}
}

// Block is a structural node produced by a dialect adapter. Depth counts the
// enclosing conditional blocks (a conditional's own Depth includes itself).
// Branch bodies appear both in Branches and in Children so downstream walks
// stay adapter-agnostic.
type Block struct {
	Kind      BlockKind `json:"kind"`
	Depth     int       `json:"depth"`
	StartByte int       `json:"start_byte"`
	EndByte   int       `json:"end_byte"`
	StartLine int       `json:"start_line"`
	EndLine   int       `json:"end_line"`
	Children  []*Block  `json:"children,omitempty"`
	Branches  []Branch  `json:"branches,omitempty"`
}

// Branch is one arm of a conditional Block. The trailing unconditional else
// arm has an empty Condition.
type Branch struct {
	Condition string `json:"condition"`
	Body      *Block `json:"body"`
}

// Walk visits the block and its descendants depth-first. Returning false from
// fn stops descent below that block.
func (b *Block) Walk(fn func(*Block) bool) {
	if b == nil || !fn(b) {
		return
	}
	for _, child := range b.Children {
		child.Walk(fn)
	}
}

// Severity of a detected region.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityFor maps a chain depth to a severity. Depth 4 and above is high,
// anything at the threshold is medium.
func SeverityFor(depth int) Severity {
	if depth >= 4 {
		return SeverityHigh
	}
	return SeverityMedium
}

// ConditionalRegion references a maximal chain of nested conditionals at or
// above the detection threshold. Regions are immutable once emitted.
type ConditionalRegion struct {
	ID          string      `json:"id"`
	StartByte   int         `json:"start_byte"`
	EndByte     int         `json:"end_byte"`
	StartLine   int         `json:"start_line"`
	EndLine     int         `json:"end_line"`
	Depth       int         `json:"depth"`
	Severity    Severity    `json:"severity"`
	Fingerprint Fingerprint `json:"fingerprint"`

	// TrailingCode reports that statements follow the chain inside its
	// enclosing block, so a rewrite that returns early would skip them.
	TrailingCode bool `json:"trailing_code,omitempty"`

	// Root points into the Block tree the region was detected in.
	Root *Block `json:"-"`
}

// Pattern identifies a flattening transformation.
type Pattern string

const (
	PatternGuardClause      Pattern = "guard-clause"
	PatternEarlyReturn      Pattern = "early-return"
	PatternMethodExtraction Pattern = "method-extraction"
)

// Subroutine describes a stub introduced by method extraction.
type Subroutine struct {
	Name    string   `json:"name"`
	Params  []string `json:"params,omitempty"`
	Comment string   `json:"comment,omitempty"`
}

// RefactoringCandidate is a transform output awaiting validation. Segments
// holds the emitted top-level pieces of RegionText in order, so the validator
// can revert the most recently introduced one as a repair step.
type RefactoringCandidate struct {
	Pattern     Pattern      `json:"pattern"`
	RegionText  string       `json:"region_text"`
	FullText    string       `json:"-"`
	Segments    []string     `json:"-"`
	Subroutines []Subroutine `json:"subroutines,omitempty"`
}

// ValidationResult reports the outcome of the validate/repair loop.
type ValidationResult struct {
	Valid        bool   `json:"valid"`
	Err          string `json:"error,omitempty"`
	Attempts     int    `json:"repair_attempts"`
	RoundTripped bool   `json:"round_tripped"`
}

// MetricsSnapshot compares a region before and after a rewrite. DepthAfter is
// strictly less than DepthBefore for any accepted candidate.
type MetricsSnapshot struct {
	DepthBefore    int     `json:"depth_before"`
	DepthAfter     int     `json:"depth_after"`
	BranchesBefore int     `json:"branches_before"`
	BranchesAfter  int     `json:"branches_after"`
	Confidence     float64 `json:"confidence"`
}

// Outcome flags attached to a region in the report.
const (
	FlagLowConfidence = "low-confidence"
	FlagRepaired      = "repaired"
	FlagOverlap       = "overlapping-span"
)

// RegionOutcome is the per-region entry of a Report. Pattern is empty when
// the region was left unmodified.
type RegionOutcome struct {
	Region  ConditionalRegion `json:"region"`
	Pattern Pattern           `json:"pattern,omitempty"`
	Applied bool              `json:"applied"`
	Metrics *MetricsSnapshot  `json:"metrics,omitempty"`
	Flags   []string          `json:"flags,omitempty"`
	Reason  string            `json:"reason,omitempty"`
}

// PatternLabel names the applied pattern, or "not-refactored".
func (o RegionOutcome) PatternLabel() string {
	if !o.Applied || o.Pattern == "" {
		return "not-refactored"
	}
	return string(o.Pattern)
}

// Report is the full result for one SourceUnit. Text equals the input text
// when nothing was rewritten.
type Report struct {
	Path     string          `json:"path,omitempty"`
	Dialect  string          `json:"dialect"`
	Text     string          `json:"-"`
	Outcomes []RegionOutcome `json:"outcomes"`
	Diff     string          `json:"diff,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Changed reports whether any region rewrite was applied.
func (r *Report) Changed() bool {
	for _, o := range r.Outcomes {
		if o.Applied {
			return true
		}
	}
	return false
}

// Style distinguishes block delimitation conventions.
type Style int

const (
	StyleBraced Style = iota
	StyleIndented
)

// SubroutineForm selects how method extraction spells a new subroutine.
type SubroutineForm int

const (
	SubClosure  SubroutineForm = iota // name := func() { ... }
	SubFunction                       // function name(a, b) { ... }
	SubDef                            // def name(a, b):
)

// Syntax carries the few dialect facts the transform engine and validator
// need. Adapters provide it so dialect branching stays out of core logic.
type Syntax struct {
	Style       Style
	Negation    string // "!" or "not "
	Conjunction string // "&&" or "and"
	SubForm     SubroutineForm
}

// Adapter is the dialect adapter contract: turn raw text into a Block tree.
// Index returns a *MalformedStructureError when the text has no consistent
// structure (unbalanced delimiters, inconsistent indentation).
type Adapter interface {
	Dialect() string
	Syntax() Syntax
	Index(text string) (*Block, error)
}

// AdapterRegistry resolves a dialect tag to an adapter.
type AdapterRegistry interface {
	Get(dialect string) (Adapter, bool)
}
