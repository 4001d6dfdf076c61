// Package correlate orchestrates a correlation run: ingestion, candidate
// pairing, parallel detection and scoring, graph grouping, and insight
// assembly. The engine is stateless; every run starts from its inputs alone.
package correlate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/detect"
	"github.com/worklens/worklens/internal/graph"
	"github.com/worklens/worklens/internal/score"
	"github.com/worklens/worklens/internal/story"
	"github.com/worklens/worklens/internal/techdetect"
	"github.com/worklens/worklens/internal/telemetry"
	"github.com/worklens/worklens/internal/timeline"
	"github.com/worklens/worklens/internal/types"
)

// Annotator enriches accepted relationships after scoring. Implementations
// may rewrite rationale text only; the engine ignores every other change.
type Annotator interface {
	Annotate(ctx context.Context, rels []types.EvidenceRelationship) ([]types.EvidenceRelationship, error)
}

// Engine runs the correlation pipeline for one evidence snapshot.
type Engine struct {
	cfg       config.Config
	detectors []detect.Detector
	scorer    *score.Scorer
	annotator Annotator
}

// New builds an engine from config. The detector set and their strengths
// come entirely from cfg.
func New(cfg config.Config) *Engine {
	return &Engine{
		cfg: cfg,
		detectors: []detect.Detector{
			detect.IssueKeyMatcher{Strength: cfg.IssueKeyStrength},
			detect.BranchMatcher{Strength: cfg.BranchNameStrength},
			detect.ContentMatcher{Ceiling: cfg.ContentCeiling, Floor: cfg.SimilarityFloor},
		},
		scorer: score.New(score.Config{
			MaxTemporalBonus:       cfg.MaxTemporalBonus,
			TemporalWindowDays:     cfg.TemporalWindowDays,
			AuthorBonus:            cfg.AuthorBonus,
			PlausibilityWindowDays: cfg.PlausibilityWindowDays,
		}),
	}
}

// SetAnnotator attaches an optional post-hoc annotator.
func (e *Engine) SetAnnotator(a Annotator) {
	e.annotator = a
}

// Run correlates the evidence snapshot. Invalid items are rejected with
// warnings rather than aborting; an empty or all-invalid snapshot yields an
// empty collection and a nil error. Cancellation stops pair evaluation and
// marks the output Partial, grouping whatever had been accepted by then.
func (e *Engine) Run(ctx context.Context, items []types.EvidenceItem) (*types.CorrelatedCollection, error) {
	start := time.Now()
	tracer := telemetry.Tracer("")
	ctx, span := tracer.Start(ctx, "worklens.correlate.run")
	defer span.End()

	if e.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.RunTimeout))
		defer cancel()
	}

	valid, warnings := ingest(items)
	out := &types.CorrelatedCollection{
		Warnings:  warnings,
		InputHash: types.SnapshotHash(valid),
	}
	if len(valid) == 0 {
		out.Warnings = append(out.Warnings, types.RunWarning{
			Reason: "no valid evidence items to correlate",
		})
		recordRunMetrics(ctx, len(items), out, time.Since(start))
		return out, nil
	}

	rels, partial, pairWarnings := e.scorePairs(ctx, valid)
	out.Partial = partial
	out.Warnings = append(out.Warnings, pairWarnings...)

	g := graph.Build(valid, rels, e.cfg.AcceptThreshold)
	out.Relationships = g.Accepted()
	out.Stories = e.buildStories(valid, g)

	if e.annotator != nil && len(out.Relationships) > 0 {
		rationales := e.annotateAccepted(ctx, out.Relationships, out)
		applyRationales(out.Relationships, rationales)
		for i := range out.Stories {
			applyRationales(out.Stories[i].Relationships, rationales)
		}
	}

	out.Insights = assembleInsights(valid, out)

	span.SetAttributes(
		attribute.Int("worklens.items", len(valid)),
		attribute.Int("worklens.stories", len(out.Stories)),
		attribute.Int("worklens.relationships", len(out.Relationships)),
	)
	recordRunMetrics(ctx, len(items), out, time.Since(start))
	return out, nil
}

// ingest validates and normalizes the snapshot. Output order is sorted by
// id so the rest of the run is independent of input order.
func ingest(items []types.EvidenceItem) ([]types.EvidenceItem, []types.RunWarning) {
	var valid []types.EvidenceItem
	var warnings []types.RunWarning
	seen := make(map[string]bool, len(items))

	for i := range items {
		item := items[i]
		if err := item.Validate(); err != nil {
			warnings = append(warnings, types.RunWarning{
				ItemID: item.ID,
				Reason: fmt.Sprintf("rejected: %v", err),
			})
			continue
		}
		if seen[item.ID] {
			warnings = append(warnings, types.RunWarning{
				ItemID: item.ID,
				Reason: "rejected: duplicate id",
			})
			continue
		}
		seen[item.ID] = true
		item.SetDefaults()
		valid = append(valid, item)
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].ID < valid[j].ID })
	return valid, warnings
}

// scorePairs evaluates all candidate pairs through a bounded worker pool.
// Each pair writes to its own result slot, so the merge needs no locking
// and the outcome does not depend on completion order.
func (e *Engine) scorePairs(ctx context.Context, items []types.EvidenceItem) ([]types.EvidenceRelationship, bool, []types.RunWarning) {
	pairs := candidatePairs(items)

	type pairResult struct {
		rel  types.EvidenceRelationship
		ok   bool
		errs []error
	}
	results := make([]pairResult, len(pairs))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(e.cfg.EffectiveParallelism())

	partial := false
	for i, p := range pairs {
		if gctx.Err() != nil {
			partial = true
			break
		}
		i, p := i, p
		group.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			a, b := &items[p[0]], &items[p[1]]
			signals, errs := detect.Run(e.detectors, a, b)
			results[i].errs = errs
			if rel, ok := e.scorer.Score(a, b, signals); ok {
				results[i].rel = rel
				results[i].ok = true
			}
			return nil
		})
	}
	_ = group.Wait()
	if ctx.Err() != nil {
		partial = true
	}

	var rels []types.EvidenceRelationship
	var warnings []types.RunWarning
	for _, r := range results {
		for _, err := range r.errs {
			warnings = append(warnings, types.RunWarning{Reason: err.Error()})
		}
		if r.ok {
			rels = append(rels, r.rel)
		}
	}
	if partial {
		warnings = append(warnings, types.RunWarning{
			Reason: "run cancelled before all candidate pairs were evaluated",
		})
	}

	sort.Slice(rels, func(i, j int) bool { return rels[i].PairKey() < rels[j].PairKey() })
	return rels, partial, warnings
}

// annotationCutoff bounds which accepted relationships are worth sending
// out. An explicit key match at 0.9 already has a self-explanatory
// mechanical rationale; only weaker pairs benefit from a written one.
const annotationCutoff = 0.9

// annotateAccepted sends the low-confidence subset of the accepted
// relationships to the annotator and returns the rewritten rationales by
// pair key. Scores, kinds, methods, and pair identity are pinned: anything
// else the annotator changes is discarded. Failure leaves the mechanical
// rationales in place.
func (e *Engine) annotateAccepted(ctx context.Context, accepted []types.EvidenceRelationship, out *types.CorrelatedCollection) map[string]string {
	var lowConfidence []types.EvidenceRelationship
	for _, rel := range accepted {
		if rel.Confidence < annotationCutoff {
			lowConfidence = append(lowConfidence, rel)
		}
	}
	if len(lowConfidence) == 0 {
		return nil
	}

	annotated, err := e.annotator.Annotate(ctx, lowConfidence)
	if err != nil {
		out.Warnings = append(out.Warnings, types.RunWarning{
			Reason: fmt.Sprintf("annotation skipped: %v", err),
		})
		return nil
	}

	byPair := make(map[string]string, len(annotated))
	for _, rel := range annotated {
		if rel.Rationale != "" {
			byPair[rel.PairKey()] = rel.Rationale
		}
	}
	return byPair
}

func applyRationales(rels []types.EvidenceRelationship, byPair map[string]string) {
	if len(byPair) == 0 {
		return
	}
	for i := range rels {
		if rationale, ok := byPair[rels[i].PairKey()]; ok {
			rels[i].Rationale = rationale
		}
	}
}

// buildStories groups the graph into stories and enriches each with
// milestones, technology tags, and a complexity estimate.
func (e *Engine) buildStories(items []types.EvidenceItem, g *graph.Graph) []types.WorkStory {
	byID := make(map[string]*types.EvidenceItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	weights := techdetect.Weights{
		Volume:    e.cfg.ComplexityVolumeWeight,
		Commits:   e.cfg.ComplexityCommitsWeight,
		Diversity: e.cfg.ComplexityDiversityWeight,
		Duration:  e.cfg.ComplexityDurationWeight,
	}

	stories := story.Group(items, g)
	for i := range stories {
		members := make([]*types.EvidenceItem, 0, len(stories[i].EvidenceIDs))
		for _, id := range stories[i].EvidenceIDs {
			if item, ok := byID[id]; ok {
				members = append(members, item)
			}
		}
		stories[i].Milestones = timeline.Milestones(members)
		stories[i].Technologies = techdetect.Technologies(members)
		stories[i].ComplexityScore = techdetect.Complexity(&stories[i], members, weights)
	}
	return stories
}

func assembleInsights(items []types.EvidenceItem, out *types.CorrelatedCollection) types.CorrelationInsights {
	insights := types.CorrelationInsights{
		TotalStories:        len(out.Stories),
		TotalRelationships:  len(out.Relationships),
		TechnologyFrequency: techdetect.Frequency(out.Stories),
		Temporal:            timeline.Aggregate(out.Stories),
	}

	linked := 0
	for _, s := range out.Stories {
		if s.IsSingleton() {
			insights.SingletonStories++
		} else {
			linked += s.Size()
		}
	}
	if len(items) > 0 {
		insights.LinkedEvidenceRatio = float64(linked) / float64(len(items))
	}

	if len(out.Relationships) > 0 {
		sum := 0.0
		for _, rel := range out.Relationships {
			sum += rel.Confidence
		}
		insights.MeanConfidence = sum / float64(len(out.Relationships))
	}
	return insights
}
