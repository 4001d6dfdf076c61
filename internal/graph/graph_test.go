package graph

import (
	"reflect"
	"testing"
	"time"

	"github.com/worklens/worklens/internal/types"
)

func item(id string) types.EvidenceItem {
	return types.EvidenceItem{
		ID:        id,
		Source:    types.SourceCommit,
		Author:    "dana",
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Title:     "work item " + id,
	}
}

func rel(a, b string, confidence float64) types.EvidenceRelationship {
	return types.EvidenceRelationship{
		PrimaryID:  a,
		RelatedID:  b,
		Kind:       types.KindRelatedTo,
		Confidence: confidence,
		Method:     types.MethodIssueKey,
		Rationale:  "test edge",
	}
}

func TestBuildDropsBelowThreshold(t *testing.T) {
	items := []types.EvidenceItem{item("a"), item("b"), item("c")}
	rels := []types.EvidenceRelationship{
		rel("a", "b", 0.9),
		rel("b", "c", 0.49),
		rel("a", "c", 0.5), // at the threshold: kept
	}

	g := Build(items, rels, 0.5)
	accepted := g.Accepted()
	if len(accepted) != 2 {
		t.Fatalf("got %d accepted relationships, want 2", len(accepted))
	}
	for _, r := range accepted {
		if r.Confidence < 0.5 {
			t.Errorf("relationship %s-%s below threshold survived", r.PrimaryID, r.RelatedID)
		}
	}
}

func TestBuildSkipsUnknownAndSelfEdges(t *testing.T) {
	items := []types.EvidenceItem{item("a"), item("b")}
	rels := []types.EvidenceRelationship{
		rel("a", "ghost", 0.9),
		rel("a", "a", 0.9),
		rel("a", "b", 0.9),
	}
	g := Build(items, rels, 0.5)
	if got := len(g.Accepted()); got != 1 {
		t.Errorf("got %d accepted relationships, want 1", got)
	}
}

func TestComponentsPartition(t *testing.T) {
	items := []types.EvidenceItem{
		item("a"), item("b"), item("c"), item("d"), item("e"),
	}
	rels := []types.EvidenceRelationship{
		rel("a", "b", 0.9),
		rel("b", "c", 0.8),
		// d-e below threshold, so d and e stay singletons.
		rel("d", "e", 0.3),
	}

	g := Build(items, rels, 0.5)
	components := g.Components()
	if len(components) != 3 {
		t.Fatalf("got %d components, want 3", len(components))
	}

	seen := make(map[string]int)
	total := 0
	for _, c := range components {
		for _, idx := range c.Members {
			seen[g.ID(idx)]++
			total++
		}
	}
	if total != len(items) {
		t.Errorf("components cover %d items, want %d", total, len(items))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("item %s appears in %d components, want exactly 1", id, n)
		}
	}

	var sizes []int
	for _, c := range components {
		sizes = append(sizes, len(c.Members))
	}
	if want := []int{3, 1, 1}; !reflect.DeepEqual(sizes, want) {
		t.Errorf("component sizes = %v, want %v", sizes, want)
	}
}

func TestComponentsDeterministicOrder(t *testing.T) {
	items := []types.EvidenceItem{item("c"), item("a"), item("b"), item("z")}
	rels := []types.EvidenceRelationship{rel("z", "b", 0.9)}

	g1 := Build(items, rels, 0.5)
	g2 := Build([]types.EvidenceItem{item("z"), item("b"), item("a"), item("c")}, rels, 0.5)

	ids := func(g *Graph) [][]string {
		var out [][]string
		for _, c := range g.Components() {
			var members []string
			for _, idx := range c.Members {
				members = append(members, g.ID(idx))
			}
			out = append(out, members)
		}
		return out
	}

	if got1, got2 := ids(g1), ids(g2); !reflect.DeepEqual(got1, got2) {
		t.Errorf("component order depends on input order: %v != %v", got1, got2)
	}
}

func TestDegree(t *testing.T) {
	items := []types.EvidenceItem{item("a"), item("b"), item("c")}
	rels := []types.EvidenceRelationship{
		rel("a", "b", 0.9),
		rel("a", "c", 0.9),
	}
	g := Build(items, rels, 0.5)
	if got := g.Degree("a"); got != 2 {
		t.Errorf("Degree(a) = %d, want 2", got)
	}
	if got := g.Degree("b"); got != 1 {
		t.Errorf("Degree(b) = %d, want 1", got)
	}
	if got := g.Degree("ghost"); got != 0 {
		t.Errorf("Degree(ghost) = %d, want 0", got)
	}
}

func TestUnionFindChain(t *testing.T) {
	uf := newUnionFind(6)
	uf.union(0, 1)
	uf.union(1, 2)
	uf.union(3, 4)
	if uf.find(0) != uf.find(2) {
		t.Error("0 and 2 should share a root after chained unions")
	}
	if uf.find(0) == uf.find(3) {
		t.Error("0 and 3 should be in different sets")
	}
	if uf.find(5) != 5 {
		t.Error("untouched element should be its own root")
	}
}
