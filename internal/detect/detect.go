// Package detect implements the pairwise relationship detectors. Each
// detector is a pure function over one evidence pair that either fires with
// a raw signal or stays silent; fusing signals into a confidence score is
// the scorer's job, not the detectors'.
package detect

import (
	"fmt"

	"github.com/worklens/worklens/internal/types"
)

// Signal is one detector's raw output for an evidence pair. Strength is the
// detector's base strength in [0,1] before any contextual bonuses.
type Signal struct {
	Strength  float64
	Method    types.DetectionMethod
	Kind      types.RelationshipKind
	Rationale string
}

// Detector extracts zero or one signal from an evidence pair. Detectors
// must be pure and independently swappable: they hold configuration but no
// per-run state.
type Detector interface {
	Name() string
	Detect(a, b *types.EvidenceItem) (Signal, bool)
}

// Run applies every detector to the pair. A panicking detector is isolated:
// its signal is treated as "did not fire", an error is reported for the
// caller to log, and the remaining detectors still run.
func Run(detectors []Detector, a, b *types.EvidenceItem) (signals []Signal, errs []error) {
	for _, d := range detectors {
		sig, ok, err := runOne(d, a, b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			signals = append(signals, sig)
		}
	}
	return signals, errs
}

func runOne(d Detector, a, b *types.EvidenceItem) (sig Signal, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("detector %s failed on pair (%s, %s): %v", d.Name(), a.ID, b.ID, r)
		}
	}()
	sig, ok = d.Detect(a, b)
	return sig, ok, nil
}

// splitTicketPair orients a pair into (activity, ticket). All three
// detectors correlate activity items against ticket anchors, so a pair
// with zero or two ticket-kind items yields no signal.
func splitTicketPair(a, b *types.EvidenceItem) (activity, ticket *types.EvidenceItem, ok bool) {
	switch {
	case a.IsTicket() && !b.IsTicket():
		return b, a, true
	case b.IsTicket() && !a.IsTicket():
		return a, b, true
	}
	return nil, nil, false
}
