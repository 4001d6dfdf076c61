// Package score fuses raw detector signals for one evidence pair into a
// single relationship with a calibrated confidence. Fusion takes the
// strongest signal rather than summing: three weak detectors agreeing is
// corroboration, not three times the evidence.
package score

import (
	"fmt"
	"sort"
	"strings"

	"github.com/worklens/worklens/internal/detect"
	"github.com/worklens/worklens/internal/types"
)

// Config holds the scorer's tunables. Zero values are not usable; callers
// go through config.Default() or the yaml layer.
type Config struct {
	// MaxTemporalBonus is added when both items were created at the same
	// instant, decaying linearly to zero at TemporalWindowDays.
	MaxTemporalBonus float64
	// TemporalWindowDays is the proximity window for the temporal bonus.
	TemporalWindowDays int
	// AuthorBonus is added when both items share an author.
	AuthorBonus float64
	// PlausibilityWindowDays rejects pairs where the ticket was created more
	// than this many days after the activity item's last update. A ticket
	// filed half a year after the work cannot have motivated it.
	PlausibilityWindowDays int
}

// Scorer turns a pair's signals into at most one relationship.
type Scorer struct {
	cfg Config
}

// New returns a Scorer for the given config.
func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score fuses signals for the (a, b) pair. Returns false when no signal
// fired or the pair fails the plausibility guard. The relationship is
// oriented activity→ticket when the pair has a ticket side, else a→b.
func (s *Scorer) Score(a, b *types.EvidenceItem, signals []detect.Signal) (types.EvidenceRelationship, bool) {
	if len(signals) == 0 {
		return types.EvidenceRelationship{}, false
	}
	if !s.plausible(a, b) {
		return types.EvidenceRelationship{}, false
	}

	best := pickBest(signals)

	confidence := best.Strength
	var bonuses []string

	if tb := s.temporalBonus(a, b); tb > 0 {
		confidence += tb
		bonuses = append(bonuses, fmt.Sprintf("temporal proximity +%.2f", tb))
	}
	if sameAuthor(a, b) {
		confidence += s.cfg.AuthorBonus
		bonuses = append(bonuses, fmt.Sprintf("same author +%.2f", s.cfg.AuthorBonus))
	}
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}

	method := best.Method
	if len(signals) > 1 {
		method = types.MethodMerged
	}

	primary, related := orient(a, b)
	return types.EvidenceRelationship{
		PrimaryID:  primary.ID,
		RelatedID:  related.ID,
		Kind:       best.Kind,
		Confidence: confidence,
		Method:     method,
		Rationale:  assembleRationale(signals, bonuses),
	}, true
}

// pickBest selects the signal with the highest strength, breaking ties by
// method priority so runs stay deterministic.
func pickBest(signals []detect.Signal) detect.Signal {
	best := signals[0]
	for _, sig := range signals[1:] {
		if sig.Strength > best.Strength {
			best = sig
			continue
		}
		if sig.Strength == best.Strength && sig.Method.Priority() > best.Method.Priority() {
			best = sig
		}
	}
	return best
}

// temporalBonus rewards creation-time proximity with linear decay across
// the window.
func (s *Scorer) temporalBonus(a, b *types.EvidenceItem) float64 {
	if s.cfg.MaxTemporalBonus <= 0 || s.cfg.TemporalWindowDays <= 0 {
		return 0
	}
	gap := types.DaysBetween(a.CreatedAt, b.CreatedAt)
	if gap >= s.cfg.TemporalWindowDays {
		return 0
	}
	return s.cfg.MaxTemporalBonus * (1 - float64(gap)/float64(s.cfg.TemporalWindowDays))
}

// plausible rejects pairs where the ticket was filed long after the
// activity item last moved.
func (s *Scorer) plausible(a, b *types.EvidenceItem) bool {
	if s.cfg.PlausibilityWindowDays <= 0 {
		return true
	}
	ticket, other := a, b
	if !ticket.IsTicket() {
		ticket, other = b, a
	}
	if !ticket.IsTicket() {
		return true
	}
	if !ticket.CreatedAt.After(other.UpdatedAt) {
		return true
	}
	return types.DaysBetween(ticket.CreatedAt, other.UpdatedAt) <= s.cfg.PlausibilityWindowDays
}

func sameAuthor(a, b *types.EvidenceItem) bool {
	return a.Author != "" && strings.EqualFold(a.Author, b.Author)
}

// orient puts the activity item first and the ticket second. Pairs without
// a ticket side keep their input order.
func orient(a, b *types.EvidenceItem) (primary, related *types.EvidenceItem) {
	if a.IsTicket() && !b.IsTicket() {
		return b, a
	}
	return a, b
}

// assembleRationale joins each contributing detector's rationale, strongest
// method first, then any bonuses.
func assembleRationale(signals []detect.Signal, bonuses []string) string {
	ordered := make([]detect.Signal, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Strength != ordered[j].Strength {
			return ordered[i].Strength > ordered[j].Strength
		}
		return ordered[i].Method.Priority() > ordered[j].Method.Priority()
	})

	parts := make([]string, 0, len(ordered)+len(bonuses))
	for _, sig := range ordered {
		parts = append(parts, sig.Rationale)
	}
	parts = append(parts, bonuses...)
	return strings.Join(parts, "; ")
}
