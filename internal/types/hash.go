package types

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ContentHash creates a deterministic hash of the item's content. All
// substantive fields are hashed in a stable order so that identical content
// produces identical hashes regardless of where the item was ingested.
func (e *EvidenceItem) ContentHash() string {
	h := sha256.New()

	h.Write([]byte(e.ID))
	h.Write([]byte{0})
	h.Write([]byte(e.Source))
	h.Write([]byte{0})
	h.Write([]byte(e.Author))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(e.CreatedAt.UTC().UnixNano(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(e.UpdatedAt.UTC().UnixNano(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(e.Title))
	h.Write([]byte{0})
	h.Write([]byte(e.Body))
	h.Write([]byte{0})
	h.Write([]byte(e.URL))
	h.Write([]byte{0})

	// Metadata in sorted key order.
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(e.Metadata[k]))
		h.Write([]byte{0})
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}

// SnapshotHash computes an order-independent content hash over an input
// snapshot. Re-running the engine on a snapshot with the same hash yields
// identical output, so the hash doubles as a cache key.
func SnapshotHash(items []EvidenceItem) string {
	digests := make([]string, len(items))
	for i := range items {
		digests[i] = items[i].ContentHash()
	}
	sort.Strings(digests)

	h := sha256.New()
	for _, d := range digests {
		h.Write([]byte(d))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// StoryID derives a deterministic story id from the story's member ids.
// Membership alone decides the id, so identical runs produce identical ids.
func StoryID(memberIDs []string) string {
	sorted := make([]string, len(memberIDs))
	copy(sorted, memberIDs)
	sort.Strings(sorted)

	h := sha256.New()
	for _, id := range sorted {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return "ws-" + fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// DaysBetween returns the absolute gap between two timestamps in whole
// days, the granularity used by temporal scoring.
func DaysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
