package detect

import (
	"fmt"
	"regexp"

	"github.com/worklens/worklens/internal/types"
)

// branchPatterns are the naming conventions a branch can follow to carry a
// ticket key. %s is the quoted key.
var branchPatterns = []string{
	`^feature/%s\b`,
	`^bugfix/%s\b`,
	`^hotfix/%s\b`,
	`\b%s[-_]`,
	`\b%s$`,
}

// BranchMatcher fires when the activity item's branch name embeds the
// ticket's key following a recognized convention. Weaker than an explicit
// key reference in the message itself.
type BranchMatcher struct {
	Strength float64
}

// Name implements Detector.
func (m BranchMatcher) Name() string { return string(types.MethodBranchName) }

// Detect implements Detector.
func (m BranchMatcher) Detect(a, b *types.EvidenceItem) (Signal, bool) {
	activity, ticket, ok := splitTicketPair(a, b)
	if !ok {
		return Signal{}, false
	}
	branch := activity.BranchName()
	if branch == "" {
		return Signal{}, false
	}
	key := TicketKey(ticket)
	if key == "" {
		return Signal{}, false
	}

	quoted := regexp.QuoteMeta(key)
	for _, pattern := range branchPatterns {
		re, err := regexp.Compile(fmt.Sprintf(pattern, quoted))
		if err != nil {
			continue
		}
		if re.MatchString(branch) {
			return Signal{
				Strength:  m.Strength,
				Method:    types.MethodBranchName,
				Kind:      types.KindRelatedTo,
				Rationale: fmt.Sprintf("branch %q names issue key %s", branch, key),
			}, true
		}
	}
	return Signal{}, false
}
