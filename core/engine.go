package core

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Engine drives the full pipeline for one or more SourceUnits: index,
// detect, select, transform, validate, measure. Units are independent and
// processed in parallel by ProcessAll; regions within a unit are strictly
// sequential because each validation consumes the just-produced candidate.
type Engine struct {
	registry AdapterRegistry
	config   Config
	provider SuggestionProvider
}

// NewEngine builds an engine over the given adapter registry. Invalid config
// fields fall back to defaults.
func NewEngine(registry AdapterRegistry, config Config) *Engine {
	if config.Validate() != nil {
		config = DefaultConfig()
	}
	return &Engine{
		registry: registry,
		config:   config,
		provider: NoopProvider{},
	}
}

// SetSuggestionProvider installs the optional naming collaborator.
func (e *Engine) SetSuggestionProvider(p SuggestionProvider) {
	if p == nil {
		p = NoopProvider{}
	}
	e.provider = p
}

// ProcessUnit analyzes and rewrites one unit. The returned report always
// carries structurally valid text: regions that cannot be safely improved
// stay byte-identical to the input.
func (e *Engine) ProcessUnit(ctx context.Context, unit SourceUnit) (*Report, error) {
	adapter, ok := e.registry.Get(unit.Dialect)
	if !ok {
		return nil, ErrUnknownDialect
	}

	report := &Report{Path: unit.Path, Dialect: unit.Dialect, Text: unit.Text}

	root, err := adapter.Index(unit.Text)
	if err != nil {
		// The whole unit has no consistent structure; report and leave it
		// untouched rather than guessing.
		report.Error = err.Error()
		return report, nil
	}

	detector := NewDetector(e.config.DepthThreshold)
	regions := detector.Detect(root, unit.Text)

	transformer := NewTransformer(e.provider)
	validator := NewValidator(adapter, e.config.MaxRepairAttempts, e.config.DepthThreshold)

	working := unit.Text
	delta := 0
	var touched [][2]int

	for _, region := range regions {
		outcome := RegionOutcome{Region: region}

		if overlaps(touched, region.StartByte, region.EndByte) {
			outcome.Flags = append(outcome.Flags, FlagOverlap)
			outcome.Reason = "span already rewritten by an enclosing region"
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		chain := CollectChain(region.Root, unit.Text)
		pattern, err := SelectPattern(chain, region.TrailingCode)
		if err != nil {
			outcome.Reason = err.Error()
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}
		outcome.Pattern = pattern

		cand, err := transformer.Apply(ctx, unit.Text, region, chain, pattern, adapter.Syntax())
		if err != nil {
			outcome.Pattern = ""
			outcome.Reason = err.Error()
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		start := region.StartByte + delta
		end := region.EndByte + delta
		res, accepted, depthAfter := validator.Run(cand, region, working, start, end)
		if !res.Valid {
			outcome.Pattern = ""
			outcome.Reason = ErrValidationExhausted.Error() + ": " + res.Err
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		working = accepted.FullText
		delta += len(accepted.RegionText) - (region.EndByte - region.StartByte)
		touched = append(touched, [2]int{region.StartByte, region.EndByte})

		newRoot, idxErr := adapter.Index(working)
		branchesAfter := 0
		if idxErr == nil {
			branchesAfter = countBranches(newRoot, start, start+len(accepted.RegionText))
		}

		metrics := CompareMetrics(pattern,
			region.Depth, depthAfter,
			region.Fingerprint.BranchCount, branchesAfter,
			res.Attempts)

		outcome.Applied = true
		outcome.Metrics = &metrics
		if res.Attempts > 0 {
			outcome.Flags = append(outcome.Flags, FlagRepaired)
		}
		if metrics.Confidence < e.config.AcceptanceConfidence {
			outcome.Flags = append(outcome.Flags, FlagLowConfidence)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.Text = working
	report.Diff = GenerateDiff(unit.Text, working, unit.Path)
	return report, nil
}

// ProcessAll fans units out across a bounded worker pool. Reports line up
// with the input order; a per-unit failure never aborts its siblings.
func (e *Engine) ProcessAll(ctx context.Context, units []SourceUnit) []*Report {
	reports := make([]*Report, len(units))

	workers := e.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			report, err := e.ProcessUnit(ctx, unit)
			if err != nil {
				report = &Report{
					Path:    unit.Path,
					Dialect: unit.Dialect,
					Text:    unit.Text,
					Error:   err.Error(),
				}
			}
			reports[i] = report
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

func overlaps(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}
