// Package types defines the core data structures for the worklens
// evidence correlation engine.
package types

import (
	"fmt"
	"time"
)

// EvidenceItem is one normalized activity record from source control or
// ticket tracking. Items are immutable once ingested; the engine never
// mutates them.
type EvidenceItem struct {
	ID        string            `json:"id"`
	Source    SourceKind        `json:"source"`
	Author    string            `json:"author"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Title     string            `json:"title"`
	Body      string            `json:"body,omitempty"`
	URL       string            `json:"url,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate checks the fields required for an item to enter a correlation
// run. Items failing validation are rejected individually and reported in
// the run warnings; they never abort the run.
func (e *EvidenceItem) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !e.Source.IsValid() {
		return fmt.Errorf("invalid source kind: %q", e.Source)
	}
	if e.Author == "" {
		return fmt.Errorf("author is required")
	}
	if e.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	if e.Title == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// SetDefaults fills derivable fields omitted by the ingestion pipeline.
// Currently only UpdatedAt, which defaults to CreatedAt.
func (e *EvidenceItem) SetDefaults() {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
}

// IsTicket reports whether the item is a ticket anchor. Ticket comments are
// ticket-platform activity but not anchors; stories elect primaries from
// ticket-kind items only.
func (e *EvidenceItem) IsTicket() bool {
	return e.Source == SourceTicket
}

// SourceKind identifies which kind of system activity an evidence item
// records.
type SourceKind string

// Source kind constants
const (
	SourceCommit        SourceKind = "commit"
	SourceMergeRequest  SourceKind = "merge_request"
	SourceTicket        SourceKind = "ticket"
	SourceTicketComment SourceKind = "ticket_comment"
)

// IsValid checks if the source kind value is valid
func (s SourceKind) IsValid() bool {
	switch s {
	case SourceCommit, SourceMergeRequest, SourceTicket, SourceTicketComment:
		return true
	}
	return false
}

// RelationshipKind categorizes what a relationship between two evidence
// items asserts.
type RelationshipKind string

// Relationship kind constants
const (
	// KindSolves marks work that resolves a ticket ("fixes ABC-123").
	KindSolves RelationshipKind = "solves"
	// KindReferences marks an explicit mention without resolution intent.
	KindReferences RelationshipKind = "references"
	// KindRelatedTo is the neutral default for everything else.
	KindRelatedTo RelationshipKind = "related_to"
)

// IsValid checks if the relationship kind value is valid
func (k RelationshipKind) IsValid() bool {
	switch k {
	case KindSolves, KindReferences, KindRelatedTo:
		return true
	}
	return false
}

// DetectionMethod names the signal that produced a relationship candidate.
type DetectionMethod string

// Detection method constants
const (
	MethodIssueKey          DetectionMethod = "issue_key"
	MethodBranchName        DetectionMethod = "branch_name"
	MethodContentSimilarity DetectionMethod = "content_similarity"
	// MethodMerged marks a relationship backed by more than one detector.
	MethodMerged DetectionMethod = "merged"
)

// IsValid checks if the detection method value is valid
func (m DetectionMethod) IsValid() bool {
	switch m {
	case MethodIssueKey, MethodBranchName, MethodContentSimilarity, MethodMerged:
		return true
	}
	return false
}

// Priority orders detection methods for tie-breaking when two detectors
// report equal strength: issue-key beats branch-name beats content.
func (m DetectionMethod) Priority() int {
	switch m {
	case MethodIssueKey:
		return 3
	case MethodBranchName:
		return 2
	case MethodContentSimilarity:
		return 1
	}
	return 0
}

// EvidenceRelationship is a scored link between two evidence items.
// PrimaryID is the activity side (commit, merge request, comment) and
// RelatedID the ticket side where the pairing is cross-kind. There is at
// most one relationship per unordered id pair: when several detectors fire
// on the same pair their signals are fused into a single record.
type EvidenceRelationship struct {
	PrimaryID  string           `json:"primary_id"`
	RelatedID  string           `json:"related_id"`
	Kind       RelationshipKind `json:"kind"`
	Confidence float64          `json:"confidence"`
	Method     DetectionMethod  `json:"method"`
	Rationale  string           `json:"rationale"`
}

// Validate checks the invariants every accepted relationship must hold.
func (r *EvidenceRelationship) Validate() error {
	if r.PrimaryID == "" || r.RelatedID == "" {
		return fmt.Errorf("both evidence ids are required")
	}
	if r.PrimaryID == r.RelatedID {
		return fmt.Errorf("relationship cannot link an item to itself")
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("invalid relationship kind: %q", r.Kind)
	}
	if r.Confidence < 0.0 || r.Confidence > 1.0 {
		return fmt.Errorf("confidence must be in [0.0, 1.0] (got %v)", r.Confidence)
	}
	if !r.Method.IsValid() {
		return fmt.Errorf("invalid detection method: %q", r.Method)
	}
	if r.Rationale == "" {
		return fmt.Errorf("rationale is required")
	}
	return nil
}

// PairKey returns the canonical unordered key for the relationship's two
// ids, used to enforce one-record-per-pair.
func (r *EvidenceRelationship) PairKey() string {
	return PairKey(r.PrimaryID, r.RelatedID)
}

// PairKey returns the canonical unordered key for two evidence ids.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// MilestoneKind names a key event on a work story timeline.
type MilestoneKind string

// Milestone kind constants
const (
	MilestoneTicketCreated  MilestoneKind = "ticket_created"
	MilestoneFirstCommit    MilestoneKind = "first_commit"
	MilestoneLastCommit     MilestoneKind = "last_commit"
	MilestoneFirstReview    MilestoneKind = "first_review"
	MilestoneMerged         MilestoneKind = "merged"
	MilestoneTicketResolved MilestoneKind = "ticket_resolved"
)

// WorkStory is a connected group of evidence items believed to represent
// one coherent unit of work. Every evidence item in a run belongs to
// exactly one story; items with no accepted relationships become singleton
// stories.
type WorkStory struct {
	ID              string                      `json:"id"`
	Title           string                      `json:"title"`
	EvidenceIDs     []string                    `json:"evidence_ids"`
	Relationships   []EvidenceRelationship      `json:"relationships,omitempty"`
	PrimaryTicketID string                      `json:"primary_ticket_id,omitempty"`
	Milestones      map[MilestoneKind]time.Time `json:"milestones,omitempty"`
	Technologies    []string                    `json:"technologies,omitempty"`
	ComplexityScore float64                     `json:"complexity_score"`
	Authors         []string                    `json:"authors,omitempty"`
}

// Size returns the number of evidence items the story owns.
func (w *WorkStory) Size() int {
	return len(w.EvidenceIDs)
}

// IsSingleton reports whether the story holds a single unlinked item.
func (w *WorkStory) IsSingleton() bool {
	return len(w.EvidenceIDs) == 1
}

// Span returns the duration between the story's earliest and latest
// milestones, or zero when fewer than two milestones exist.
func (w *WorkStory) Span() time.Duration {
	var first, last time.Time
	for _, ts := range w.Milestones {
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if last.IsZero() || ts.After(last) {
			last = ts
		}
	}
	if first.IsZero() || last.IsZero() {
		return 0
	}
	return last.Sub(first)
}

// TemporalStats summarizes cross-story timing distributions.
type TemporalStats struct {
	// MeanTicketLeadDays is the mean lag from ticket creation to the first
	// commit, over stories that have both milestones.
	MeanTicketLeadDays float64 `json:"mean_ticket_lead_days"`
	// MedianTicketLeadDays is the median of the same distribution.
	MedianTicketLeadDays float64 `json:"median_ticket_lead_days"`
	// MeanStorySpanDays is the mean milestone span across all stories.
	MeanStorySpanDays float64 `json:"mean_story_span_days"`
	// LeadSamples counts the stories contributing to the lead statistics.
	LeadSamples int `json:"lead_samples"`
}

// CorrelationInsights aggregates counts and distributions across one run.
type CorrelationInsights struct {
	TotalStories        int            `json:"total_stories"`
	SingletonStories    int            `json:"singleton_stories"`
	TotalRelationships  int            `json:"total_relationships"`
	MeanConfidence      float64        `json:"mean_confidence"`
	LinkedEvidenceRatio float64        `json:"linked_evidence_ratio"`
	TechnologyFrequency map[string]int `json:"technology_frequency,omitempty"`
	Temporal            TemporalStats  `json:"temporal"`
}

// RunWarning records a non-fatal problem encountered during a run: a
// rejected evidence item, a detector failure, or a cancellation marker.
// Nothing is ever dropped without one of these.
type RunWarning struct {
	ItemID string `json:"item_id,omitempty"`
	Reason string `json:"reason"`
}

// CorrelatedCollection is the complete output of one correlation run.
type CorrelatedCollection struct {
	Stories       []WorkStory            `json:"stories"`
	Relationships []EvidenceRelationship `json:"relationships"`
	Insights      CorrelationInsights    `json:"insights"`
	Warnings      []RunWarning           `json:"warnings,omitempty"`
	// Partial is true when the run was cancelled before all candidate
	// pairs were evaluated; grouping then covers only the relationships
	// accepted before cancellation.
	Partial bool `json:"partial,omitempty"`
	// InputHash is the content hash of the input snapshot. Two runs over
	// byte-identical input produce the same hash, so callers may use it as
	// a cache key.
	InputHash string `json:"input_hash"`
}
