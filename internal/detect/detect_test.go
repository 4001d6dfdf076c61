package detect

import (
	"strings"
	"testing"
	"time"

	"github.com/worklens/worklens/internal/types"
)

func commit(id, title, body string) *types.EvidenceItem {
	return &types.EvidenceItem{
		ID:        id,
		Source:    types.SourceCommit,
		Author:    "dana",
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Title:     title,
		Body:      body,
	}
}

func branchCommit(id, title, branch string) *types.EvidenceItem {
	c := commit(id, title, "")
	c.Metadata = map[string]string{types.MetaBranch: branch}
	return c
}

func ticket(id, key, title, body string) *types.EvidenceItem {
	return &types.EvidenceItem{
		ID:        id,
		Source:    types.SourceTicket,
		Author:    "sam",
		CreatedAt: time.Date(2024, 2, 28, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		Title:     title,
		Body:      body,
		Metadata:  map[string]string{types.MetaTicketKey: key},
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single key", "ABC-123: fix redirect", []string{"ABC-123"}},
		{"multiple keys deduped", "ABC-123 and DEF-9, see ABC-123", []string{"ABC-123", "DEF-9"}},
		{"lowercase not a key", "abc-123 fix", nil},
		{"single letter prefix too short", "A-1 note", nil},
		{"no keys", "fix login redirect loop", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keys(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Keys(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Keys(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTicketKeyExtractionOrder(t *testing.T) {
	tk := ticket("jira-1", "ABC-123", "DEF-456: misleading title", "")
	if got := TicketKey(tk); got != "ABC-123" {
		t.Errorf("metadata key should win over title, got %q", got)
	}

	tk.Metadata = nil
	if got := TicketKey(tk); got != "DEF-456" {
		t.Errorf("title key should win over body, got %q", got)
	}

	tk.Title = "misleading title"
	tk.Body = "tracked as GHI-789"
	if got := TicketKey(tk); got != "GHI-789" {
		t.Errorf("body key should be the last resort, got %q", got)
	}

	tk.Body = "no key anywhere"
	if got := TicketKey(tk); got != "" {
		t.Errorf("TicketKey = %q, want empty", got)
	}
}

func TestIssueKeyMatcher(t *testing.T) {
	m := IssueKeyMatcher{Strength: 0.9}

	tests := []struct {
		name     string
		activity *types.EvidenceItem
		ticket   *types.EvidenceItem
		wantFire bool
		wantKind types.RelationshipKind
		wantLoc  string
	}{
		{
			name:     "solve keyword in title",
			activity: commit("c1", "ABC-123: fix login redirect loop", ""),
			ticket:   ticket("t1", "ABC-123", "Login redirect loop", ""),
			wantFire: true,
			wantKind: types.KindSolves,
			wantLoc:  "title",
		},
		{
			name:     "reference keyword in body",
			activity: commit("c2", "refactor session handling", "related to ABC-123"),
			ticket:   ticket("t1", "ABC-123", "Login redirect loop", ""),
			wantFire: true,
			wantKind: types.KindReferences,
			wantLoc:  "body",
		},
		{
			name:     "no keyword defaults to related_to",
			activity: commit("c3", "ABC-123 session handling", ""),
			ticket:   ticket("t1", "ABC-123", "Login redirect loop", ""),
			wantFire: true,
			wantKind: types.KindRelatedTo,
			wantLoc:  "title",
		},
		{
			name:     "fix inside another word is not a solve keyword",
			activity: commit("c4", "ABC-123 add url prefix handling", ""),
			ticket:   ticket("t1", "ABC-123", "Login redirect loop", ""),
			wantFire: true,
			wantKind: types.KindRelatedTo,
		},
		{
			name:     "different key does not fire",
			activity: commit("c5", "DEF-9: fix typo", ""),
			ticket:   ticket("t1", "ABC-123", "Login redirect loop", ""),
			wantFire: false,
		},
		{
			name:     "key prefix does not match longer key",
			activity: commit("c6", "ABC-12: fix typo", ""),
			ticket:   ticket("t1", "ABC-123", "Login redirect loop", ""),
			wantFire: false,
		},
		{
			name:     "key only in branch name is left to the branch matcher",
			activity: branchCommit("c7", "refactor session handling", "feature/ABC-123-session"),
			ticket:   ticket("t1", "ABC-123", "Login redirect loop", ""),
			wantFire: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := m.Detect(tt.activity, tt.ticket)
			if ok != tt.wantFire {
				t.Fatalf("Detect() fired = %v, want %v", ok, tt.wantFire)
			}
			if !ok {
				return
			}
			if sig.Strength != 0.9 {
				t.Errorf("Strength = %v, want 0.9", sig.Strength)
			}
			if sig.Method != types.MethodIssueKey {
				t.Errorf("Method = %v", sig.Method)
			}
			if sig.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", sig.Kind, tt.wantKind)
			}
			if tt.wantLoc != "" && !strings.Contains(sig.Rationale, tt.wantLoc) {
				t.Errorf("Rationale = %q, want mention of %q", sig.Rationale, tt.wantLoc)
			}
		})
	}
}

func TestIssueKeyMatcherPairOrientation(t *testing.T) {
	m := IssueKeyMatcher{Strength: 0.9}
	c := commit("c1", "ABC-123: fix login redirect loop", "")
	tk := ticket("t1", "ABC-123", "Login redirect loop", "")

	s1, ok1 := m.Detect(c, tk)
	s2, ok2 := m.Detect(tk, c)
	if !ok1 || !ok2 {
		t.Fatal("matcher should fire regardless of argument order")
	}
	if s1 != s2 {
		t.Errorf("signal depends on argument order: %+v != %+v", s1, s2)
	}

	if _, ok := m.Detect(c, commit("c2", "ABC-123: follow-up", "")); ok {
		t.Error("matcher must not fire on a pair without a ticket")
	}
	if _, ok := m.Detect(tk, ticket("t2", "ABC-123", "dup", "")); ok {
		t.Error("matcher must not fire on a pair of two tickets")
	}
}

func TestBranchMatcher(t *testing.T) {
	m := BranchMatcher{Strength: 0.7}
	tk := ticket("t1", "ABC-123", "Login redirect loop", "")

	tests := []struct {
		name     string
		branch   string
		wantFire bool
	}{
		{"feature prefix", "feature/ABC-123-auth-fix", true},
		{"bugfix prefix", "bugfix/ABC-123", true},
		{"hotfix prefix", "hotfix/ABC-123_rollback", true},
		{"key then separator", "dana/ABC-123-spike", true},
		{"key at end", "spike-ABC-123", true},
		{"other key", "feature/DEF-9-auth", false},
		{"longer key not matched by prefix", "feature/ABC-1234-auth", false},
		{"no branch", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := commit("c1", "refactor session handling", "")
			if tt.branch != "" {
				c.Metadata = map[string]string{types.MetaBranch: tt.branch}
			}
			sig, ok := m.Detect(c, tk)
			if ok != tt.wantFire {
				t.Fatalf("Detect(branch %q) fired = %v, want %v", tt.branch, ok, tt.wantFire)
			}
			if !ok {
				return
			}
			if sig.Strength != 0.7 || sig.Method != types.MethodBranchName || sig.Kind != types.KindRelatedTo {
				t.Errorf("unexpected signal %+v", sig)
			}
		})
	}
}

func TestContentMatcher(t *testing.T) {
	m := ContentMatcher{Ceiling: 0.4, Floor: 0.3}

	c := commit("c1", "handle session expiry during login redirect",
		"session expiry during login redirect caused an infinite loop")
	tk := ticket("t1", "", "login redirect loop on session expiry",
		"users hit an infinite redirect loop when their session expires during login")

	sig, ok := m.Detect(c, tk)
	if !ok {
		t.Fatal("matcher should fire on heavily overlapping text")
	}
	if sig.Strength <= 0 || sig.Strength > 0.4 {
		t.Errorf("Strength = %v, want in (0, 0.4]", sig.Strength)
	}
	if sig.Method != types.MethodContentSimilarity || sig.Kind != types.KindRelatedTo {
		t.Errorf("unexpected signal %+v", sig)
	}

	unrelated := ticket("t2", "", "upgrade postgres cluster to new major version",
		"coordinate the database migration window with the platform team")
	if _, ok := m.Detect(c, unrelated); ok {
		t.Error("matcher must not fire on unrelated text")
	}

	thin := ticket("t3", "", "login", "")
	if _, ok := m.Detect(c, thin); ok {
		t.Error("matcher must not fire when one side has too few tokens")
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("The login redirect loop: fix the redirect")
	if tokens["the"] != 0 {
		t.Error("stopwords should be dropped")
	}
	if tokens["fix"] != 0 {
		t.Error("short tokens should be dropped")
	}
	if tokens["redirect"] != 2 {
		t.Errorf("tokens[redirect] = %d, want 2", tokens["redirect"])
	}
}

func TestSimilarityBounds(t *testing.T) {
	a := Tokenize("login redirect loop on session expiry")
	if got := JaccardSimilarity(a, a); got != 1 {
		t.Errorf("JaccardSimilarity(a, a) = %v, want 1", got)
	}
	if got := CosineSimilarity(a, a); got < 0.999 {
		t.Errorf("CosineSimilarity(a, a) = %v, want ~1", got)
	}
	if got := JaccardSimilarity(a, map[string]int{}); got != 0 {
		t.Errorf("JaccardSimilarity(a, empty) = %v, want 0", got)
	}
	if got := CosineSimilarity(a, map[string]int{}); got != 0 {
		t.Errorf("CosineSimilarity(a, empty) = %v, want 0", got)
	}
}

type panickyDetector struct{}

func (panickyDetector) Name() string { return "panicky" }
func (panickyDetector) Detect(a, b *types.EvidenceItem) (Signal, bool) {
	panic("boom")
}

func TestRunIsolatesPanics(t *testing.T) {
	c := commit("c1", "ABC-123: fix login redirect loop", "")
	tk := ticket("t1", "ABC-123", "Login redirect loop", "")

	detectors := []Detector{panickyDetector{}, IssueKeyMatcher{Strength: 0.9}}
	signals, errs := Run(detectors, c, tk)
	if len(signals) != 1 {
		t.Fatalf("got %d signals, want 1", len(signals))
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !strings.Contains(errs[0].Error(), "panicky") {
		t.Errorf("error = %q, want detector name", errs[0])
	}
}
