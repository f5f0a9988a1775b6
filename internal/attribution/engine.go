// Package attribution assigns each lead to the marketing channel that most
// likely produced it. A fixed cascade of heuristic classifiers runs in
// order (direct customer match, SEO keyword match, PPC time-window match,
// referral pattern match); each stage only sees leads the earlier stages
// left unattributed, and the first match is final for that lead.
package attribution

import (
	"context"
	"runtime"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/attribution-cli/internal/match"
	"github.com/sells-group/attribution-cli/internal/model"
)

const defaultPPCLookback = 48 * time.Hour

// Inputs are the read-only reference tables the cascade scores against.
// Any of them may be absent; the affected stage then attributes nothing.
type Inputs struct {
	Customers *model.CustomerEmailSet
	SEO       []model.SEORecord
	// SEOSource tags where the ranking table came from; empty means the
	// CSV export.
	SEOSource model.DataSource
	PPC       []model.PPCRecord
}

// Engine runs the four-stage cascade over a lead batch.
type Engine struct {
	stages      []stage
	thresholds  model.Thresholds
	scorer      match.SimilarityScorer
	concurrency int
	ppcLookback time.Duration
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithThresholds overrides the default confidence cut points.
func WithThresholds(t model.Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithScorer swaps the keyword similarity scorer. Passing
// match.ExactScorer{} degrades matching to exact-only.
func WithScorer(s match.SimilarityScorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithConcurrency caps parallel per-lead scoring within a stage.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithPPCLookback overrides the 48-hour click-attribution window.
func WithPPCLookback(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.ppcLookback = d
		}
	}
}

// NewEngine builds the cascade over the given reference data.
func NewEngine(in Inputs, opts ...Option) *Engine {
	e := &Engine{
		thresholds:  model.DefaultThresholds(),
		scorer:      match.NewTokenSortScorer(),
		concurrency: runtime.GOMAXPROCS(0),
		ppcLookback: defaultPPCLookback,
	}
	for _, opt := range opts {
		opt(e)
	}

	seoSource := in.SEOSource
	if seoSource == "" {
		seoSource = model.DataSourceSEOCSV
	}

	low := e.thresholds.Low
	e.stages = []stage{
		&directStage{customers: in.Customers},
		&seoStage{records: in.SEO, dataSource: seoSource, scorer: e.scorer, low: low},
		&ppcStage{records: in.PPC, scorer: e.scorer, low: low, lookback: e.ppcLookback},
		&referralStage{low: low},
	}
	return e
}

// Run executes the cascade, stage by stage, then bands every lead's
// confidence level. Leads are mutated in place; every input lead comes out
// exactly once, attributed or Unknown. Scoring within a stage runs in
// parallel, but stages themselves are strictly sequential because each
// depends on the Unknown set its predecessors left behind.
func (e *Engine) Run(ctx context.Context, leads []*model.Lead) (*Summary, error) {
	log := zap.L().With(zap.String("component", "attribution"))
	summary := &Summary{Total: len(leads)}

	for _, st := range e.stages {
		ss := StageSummary{Stage: st.name(), Source: st.source()}
		if !st.enabled() {
			ss.Skipped = true
			summary.Stages = append(summary.Stages, ss)
			log.Warn("stage degraded to no-op",
				zap.String("stage", st.name()),
				zap.Error(ErrMissingDataSource))
			continue
		}

		st.prepare(leads)

		var candidates []*model.Lead
		for _, l := range leads {
			if !l.Attributed() && st.eligible(l) {
				candidates = append(candidates, l)
			}
		}
		ss.Considered = len(candidates)

		results := make([]StageResult, len(candidates))
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for i, l := range candidates {
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				results[i] = st.evaluate(l)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrapf(err, "attribution: %s stage", st.name())
		}

		for i, l := range candidates {
			r := results[i]
			if !r.Matched {
				continue
			}
			l.Source = st.source()
			l.Confidence = r.Confidence
			l.Detail = r.Detail
			l.DataSource = r.DataSource
			ss.Attributed++
		}
		summary.Stages = append(summary.Stages, ss)

		log.Info("stage complete",
			zap.String("stage", st.name()),
			zap.Int("attributed", ss.Attributed),
			zap.Int("considered", ss.Considered),
			zap.Float64("pct", ss.Rate()))
	}

	e.finalize(leads, summary)
	return summary, nil
}

// finalize bands confidence levels and tallies the aggregate breakdowns.
func (e *Engine) finalize(leads []*model.Lead, summary *Summary) {
	summary.BySource = make(map[model.Source]int)
	summary.ByLevel = make(map[model.ConfidenceLevel]int)
	summary.ByDataSource = make(map[model.DataSource]int)
	for _, l := range leads {
		l.ConfidenceLevel = e.thresholds.Level(l.Confidence)
		summary.BySource[l.Source]++
		summary.ByLevel[l.ConfidenceLevel]++
		summary.ByDataSource[l.DataSource]++
	}
}
