package detect

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/worklens/worklens/internal/types"
)

// stopwords excluded from token vectors: too common to discriminate between
// unrelated work items.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "have": true, "when": true, "will": true,
	"should": true, "would": true, "been": true, "into": true, "also": true,
	"than": true, "then": true, "them": true, "were": true, "what": true,
	"which": true, "while": true, "after": true, "before": true, "update": true,
	"updated": true, "change": true, "changed": true, "added": true,
}

// Tokenize splits text into lowercase word tokens with counts, removing
// punctuation, stopwords, and short tokens.
func Tokenize(text string) map[string]int {
	tokens := make(map[string]int)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	for _, w := range words {
		if len(w) > 3 && !stopwords[w] {
			tokens[w]++
		}
	}
	return tokens
}

// JaccardSimilarity computes the multiset Jaccard similarity of two token
// vectors.
func JaccardSimilarity(a, b map[string]int) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	union := 0

	for token, countA := range a {
		if countB, ok := b[token]; ok {
			if countA < countB {
				intersection += countA
			} else {
				intersection += countB
			}
			if countA > countB {
				union += countA
			} else {
				union += countB
			}
		} else {
			union += countA
		}
	}
	for token, countB := range b {
		if _, ok := a[token]; !ok {
			union += countB
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// CosineSimilarity computes the cosine similarity of two token vectors.
func CosineSimilarity(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	dotProduct := 0.0
	magA := 0.0
	magB := 0.0

	for token, countA := range a {
		fa := float64(countA)
		magA += fa * fa
		if countB, ok := b[token]; ok {
			dotProduct += fa * float64(countB)
		}
	}
	for _, countB := range b {
		fb := float64(countB)
		magB += fb * fb
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(magA) * math.Sqrt(magB))
}

// ContentMatcher fires when the activity item's text is similar enough to
// the ticket's text. The weakest detector: even a perfect textual match only
// reaches Ceiling, because shared vocabulary is circumstantial evidence.
type ContentMatcher struct {
	// Ceiling caps the reported strength; strength = similarity * Ceiling.
	Ceiling float64
	// Floor is the minimum similarity below which the matcher stays silent.
	Floor float64
	// MinTokens is the minimum distinct-token count each side must have for
	// a comparison to be meaningful at all.
	MinTokens int
}

// Name implements Detector.
func (m ContentMatcher) Name() string { return string(types.MethodContentSimilarity) }

// Detect implements Detector.
func (m ContentMatcher) Detect(a, b *types.EvidenceItem) (Signal, bool) {
	activity, ticket, ok := splitTicketPair(a, b)
	if !ok {
		return Signal{}, false
	}

	ta := Tokenize(itemText(activity))
	tb := Tokenize(itemText(ticket))
	minTokens := m.MinTokens
	if minTokens <= 0 {
		minTokens = 3
	}
	if len(ta) < minTokens || len(tb) < minTokens {
		return Signal{}, false
	}

	similarity := (JaccardSimilarity(ta, tb) + CosineSimilarity(ta, tb)) / 2
	if similarity < m.Floor {
		return Signal{}, false
	}

	return Signal{
		Strength:  similarity * m.Ceiling,
		Method:    types.MethodContentSimilarity,
		Kind:      types.KindRelatedTo,
		Rationale: fmt.Sprintf("text similarity %.2f between activity and ticket", similarity),
	}, true
}

// itemText returns the combined text content of an item for comparison.
func itemText(item *types.EvidenceItem) string {
	parts := []string{item.Title}
	if item.Body != "" {
		parts = append(parts, item.Body)
	}
	return strings.Join(parts, " ")
}
