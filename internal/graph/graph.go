// Package graph builds the weighted evidence graph and extracts its
// connected components. Items are indexed into a sorted arena so the rest
// of the pipeline works with small ints instead of string ids.
package graph

import (
	"sort"

	"github.com/worklens/worklens/internal/types"
)

// Edge is one accepted relationship between two arena indices.
type Edge struct {
	A, B int
	Rel  types.EvidenceRelationship
}

// Graph holds the accepted relationships over an id-indexed arena. Ids are
// sorted at construction so component extraction is deterministic.
type Graph struct {
	ids   []string
	index map[string]int
	edges []Edge
	adj   [][]int
}

// Build indexes the items and keeps only relationships at or above the
// threshold. Relationships naming ids outside the item set are skipped.
func Build(items []types.EvidenceItem, rels []types.EvidenceRelationship, threshold float64) *Graph {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	sort.Strings(ids)

	g := &Graph{
		ids:   ids,
		index: make(map[string]int, len(ids)),
		adj:   make([][]int, len(ids)),
	}
	for i, id := range ids {
		g.index[id] = i
	}

	for _, rel := range rels {
		if rel.Confidence < threshold {
			continue
		}
		a, okA := g.index[rel.PrimaryID]
		b, okB := g.index[rel.RelatedID]
		if !okA || !okB || a == b {
			continue
		}
		g.adj[a] = append(g.adj[a], len(g.edges))
		g.adj[b] = append(g.adj[b], len(g.edges))
		g.edges = append(g.edges, Edge{A: a, B: b, Rel: rel})
	}
	return g
}

// Size returns the number of nodes.
func (g *Graph) Size() int { return len(g.ids) }

// ID returns the evidence id at an arena index.
func (g *Graph) ID(i int) string { return g.ids[i] }

// Degree returns the number of accepted edges incident to the id. Unknown
// ids have degree zero.
func (g *Graph) Degree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.adj[i])
}

// Edges returns the accepted edges incident to the arena index.
func (g *Graph) Edges(i int) []Edge {
	out := make([]Edge, len(g.adj[i]))
	for k, e := range g.adj[i] {
		out[k] = g.edges[e]
	}
	return out
}

// Accepted returns every kept relationship, ordered by (PrimaryID,
// RelatedID).
func (g *Graph) Accepted() []types.EvidenceRelationship {
	out := make([]types.EvidenceRelationship, len(g.edges))
	for i, e := range g.edges {
		out[i] = e.Rel
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PrimaryID != out[j].PrimaryID {
			return out[i].PrimaryID < out[j].PrimaryID
		}
		return out[i].RelatedID < out[j].RelatedID
	})
	return out
}

// Component is one connected component: arena indices in sorted id order
// plus the edges among them.
type Component struct {
	Members []int
	Edges   []Edge
}

// Components extracts connected components via union-find. Singletons are
// included, so components partition the arena. Component order follows each
// component's smallest member index, which follows sorted ids.
func (g *Graph) Components() []Component {
	uf := newUnionFind(len(g.ids))
	for _, e := range g.edges {
		uf.union(e.A, e.B)
	}

	groups := make(map[int][]int)
	var roots []int
	for i := range g.ids {
		root := uf.find(i)
		if _, seen := groups[root]; !seen {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], i)
	}
	sort.Slice(roots, func(i, j int) bool {
		return groups[roots[i]][0] < groups[roots[j]][0]
	})

	edgesByRoot := make(map[int][]Edge)
	for _, e := range g.edges {
		root := uf.find(e.A)
		edgesByRoot[root] = append(edgesByRoot[root], e)
	}

	components := make([]Component, 0, len(roots))
	for _, root := range roots {
		components = append(components, Component{
			Members: groups[root],
			Edges:   edgesByRoot[root],
		})
	}
	return components
}

// unionFind is a disjoint-set forest with path compression and union by
// rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}
