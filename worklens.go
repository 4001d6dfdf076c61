// Package worklens provides a minimal public API for embedding the
// evidence correlation engine in other Go programs.
//
// It exports only the essential types and the run entry point; programs
// needing finer control (custom detectors, annotators) can build on the
// internal packages through their own fork.
package worklens

import (
	"context"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/correlate"
	"github.com/worklens/worklens/internal/types"
)

// Core types for working with evidence and correlation output
type (
	EvidenceItem         = types.EvidenceItem
	EvidenceRelationship = types.EvidenceRelationship
	WorkStory            = types.WorkStory
	CorrelatedCollection = types.CorrelatedCollection
	CorrelationInsights  = types.CorrelationInsights
	RunWarning           = types.RunWarning
	Config               = config.Config
)

// Source kind constants
const (
	SourceCommit        = types.SourceCommit
	SourceMergeRequest  = types.SourceMergeRequest
	SourceTicket        = types.SourceTicket
	SourceTicketComment = types.SourceTicketComment
)

// Relationship kind constants
const (
	KindSolves     = types.KindSolves
	KindReferences = types.KindReferences
	KindRelatedTo  = types.KindRelatedTo
)

// DefaultConfig returns the documented default tuning.
func DefaultConfig() Config {
	return config.Default()
}

// Correlate runs the correlation pipeline over an evidence snapshot with
// the given config.
func Correlate(ctx context.Context, cfg Config, items []EvidenceItem) (*CorrelatedCollection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return correlate.New(cfg).Run(ctx, items)
}
