// Package timeline derives per-story milestones and the cross-story
// temporal statistics. It reads story membership, never changes it.
package timeline

import (
	"sort"
	"time"

	"github.com/worklens/worklens/internal/types"
)

// Milestones computes the story's milestone map from its member items. A
// milestone appears only when the story actually holds an item of the
// relevant kind.
func Milestones(members []*types.EvidenceItem) map[types.MilestoneKind]time.Time {
	ms := make(map[types.MilestoneKind]time.Time)

	for _, item := range members {
		switch item.Source {
		case types.SourceTicket:
			setEarliest(ms, types.MilestoneTicketCreated, item.CreatedAt)
			if item.IsResolvedTicket() {
				setLatest(ms, types.MilestoneTicketResolved, item.UpdatedAt)
			}
		case types.SourceCommit:
			setEarliest(ms, types.MilestoneFirstCommit, item.CreatedAt)
			setLatest(ms, types.MilestoneLastCommit, item.CreatedAt)
		case types.SourceMergeRequest:
			setEarliest(ms, types.MilestoneFirstReview, item.CreatedAt)
			if item.IsMerged() {
				setLatest(ms, types.MilestoneMerged, item.UpdatedAt)
			}
		}
	}

	if len(ms) == 0 {
		return nil
	}
	return ms
}

func setEarliest(ms map[types.MilestoneKind]time.Time, kind types.MilestoneKind, t time.Time) {
	if cur, ok := ms[kind]; !ok || t.Before(cur) {
		ms[kind] = t
	}
}

func setLatest(ms map[types.MilestoneKind]time.Time, kind types.MilestoneKind, t time.Time) {
	if cur, ok := ms[kind]; !ok || t.After(cur) {
		ms[kind] = t
	}
}

// Aggregate computes the cross-story temporal stats. Lead time is the
// ticket-created to first-commit lag; only stories holding both milestones
// contribute a sample. The span mean covers stories whose milestones
// actually spread over time: zero-span stories (singletons, or one burst
// of same-instant activity) carry no duration information and would only
// drag the mean toward zero, so they contribute no sample.
func Aggregate(stories []types.WorkStory) types.TemporalStats {
	var leads []float64
	var spanSum float64
	var spanCount int

	for _, story := range stories {
		created, okCreated := story.Milestones[types.MilestoneTicketCreated]
		first, okFirst := story.Milestones[types.MilestoneFirstCommit]
		if okCreated && okFirst && !first.Before(created) {
			leads = append(leads, first.Sub(created).Hours()/24)
		}
		if span := story.Span(); span > 0 {
			spanSum += span.Hours() / 24
			spanCount++
		}
	}

	stats := types.TemporalStats{LeadSamples: len(leads)}
	if len(leads) > 0 {
		stats.MeanTicketLeadDays = mean(leads)
		stats.MedianTicketLeadDays = median(leads)
	}
	if spanCount > 0 {
		stats.MeanStorySpanDays = spanSum / float64(spanCount)
	}
	return stats
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
