package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/worklens/worklens/internal/types"
)

// keyPattern matches conventional ticket keys: a 2-10 character uppercase
// project prefix, a dash, and a numeric suffix (ABC-123, PROJ-4567).
var keyPattern = regexp.MustCompile(`\b([A-Z][A-Z0-9]{1,9}-\d+)\b`)

// Keys returns the distinct ticket keys found in text, in order of first
// appearance.
func Keys(text string) []string {
	matches := keyPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var keys []string
	for _, m := range matches {
		if len(m) > 1 && !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

// TicketKey extracts the ticket's own key: metadata first, then title, then
// body. Returns "" when the item carries no recognizable key.
func TicketKey(item *types.EvidenceItem) string {
	if key := item.TicketKey(); key != "" {
		return key
	}
	if m := keyPattern.FindStringSubmatch(item.Title); m != nil {
		return m[1]
	}
	if m := keyPattern.FindStringSubmatch(item.Body); m != nil {
		return m[1]
	}
	return ""
}

// Keyword tables deciding the relationship kind when a key reference is
// found. Matching is token-based so "prefix" does not count as "fix".
var (
	solveKeywords = map[string]bool{
		"fix": true, "fixes": true, "fixed": true,
		"resolve": true, "resolves": true, "resolved": true,
		"close": true, "closes": true, "closed": true,
	}
	referenceKeywords = map[string]bool{
		"ref": true, "refs": true, "reference": true, "references": true,
		"related": true, "see": true, "regarding": true,
	}
)

// IssueKeyMatcher fires when an activity item explicitly references the
// ticket's key in its title or body. Explicit key references are the
// strongest signal the engine has; keys embedded only in a branch name are
// the BranchMatcher's weaker territory.
type IssueKeyMatcher struct {
	// Strength is the base strength reported when the matcher fires.
	Strength float64
}

// Name implements Detector.
func (m IssueKeyMatcher) Name() string { return string(types.MethodIssueKey) }

// Detect implements Detector.
func (m IssueKeyMatcher) Detect(a, b *types.EvidenceItem) (Signal, bool) {
	activity, ticket, ok := splitTicketPair(a, b)
	if !ok {
		return Signal{}, false
	}
	ticketKey := TicketKey(ticket)
	if ticketKey == "" {
		return Signal{}, false
	}

	location := referenceLocation(activity, ticketKey)
	if location == "" {
		return Signal{}, false
	}

	return Signal{
		Strength:  m.Strength,
		Method:    types.MethodIssueKey,
		Kind:      classifyReference(activity),
		Rationale: fmt.Sprintf("issue key %s referenced in %s", ticketKey, location),
	}, true
}

// referenceLocation reports where the activity item mentions the key, or ""
// when it does not. Title wins over body. Branch names are deliberately not
// checked here: a key that appears only in the branch is circumstantial, so
// it carries branch-name strength, not issue-key strength.
func referenceLocation(activity *types.EvidenceItem, key string) string {
	if containsKey(activity.Title, key) {
		return "title"
	}
	if containsKey(activity.Body, key) {
		return "body"
	}
	return ""
}

// containsKey checks for the key as a whole token, not a substring, so
// ABC-12 does not match inside ABC-123.
func containsKey(text, key string) bool {
	for _, found := range Keys(text) {
		if found == key {
			return true
		}
	}
	return false
}

// classifyReference decides the relationship kind from the activity item's
// wording: solve keywords beat reference keywords beat the neutral default.
func classifyReference(activity *types.EvidenceItem) types.RelationshipKind {
	tokens := strings.FieldsFunc(strings.ToLower(activity.Title+" "+activity.Body), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	sawReference := false
	for _, tok := range tokens {
		if solveKeywords[tok] {
			return types.KindSolves
		}
		if referenceKeywords[tok] {
			sawReference = true
		}
	}
	if sawReference {
		return types.KindReferences
	}
	return types.KindRelatedTo
}
