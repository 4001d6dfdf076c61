// Package story turns graph components into work stories. A story is the
// unit of narrative: every evidence item lands in exactly one story, linked
// items together and everything else as singletons.
package story

import (
	"fmt"
	"sort"
	"strings"

	"github.com/worklens/worklens/internal/graph"
	"github.com/worklens/worklens/internal/types"
)

// Group builds one WorkStory per component. Components already partition
// the item set, so the returned stories do too. Stories come back sorted by
// id for stable output.
func Group(items []types.EvidenceItem, g *graph.Graph) []types.WorkStory {
	byID := make(map[string]*types.EvidenceItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	components := g.Components()
	stories := make([]types.WorkStory, 0, len(components))
	for _, c := range components {
		stories = append(stories, build(c, g, byID))
	}
	sort.Slice(stories, func(i, j int) bool { return stories[i].ID < stories[j].ID })
	return stories
}

func build(c graph.Component, g *graph.Graph, byID map[string]*types.EvidenceItem) types.WorkStory {
	memberIDs := make([]string, len(c.Members))
	for i, idx := range c.Members {
		memberIDs[i] = g.ID(idx)
	}
	sort.Strings(memberIDs)

	members := make([]*types.EvidenceItem, 0, len(memberIDs))
	for _, id := range memberIDs {
		if item, ok := byID[id]; ok {
			members = append(members, item)
		}
	}

	rels := make([]types.EvidenceRelationship, len(c.Edges))
	for i, e := range c.Edges {
		rels[i] = e.Rel
	}
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].PrimaryID != rels[j].PrimaryID {
			return rels[i].PrimaryID < rels[j].PrimaryID
		}
		return rels[i].RelatedID < rels[j].RelatedID
	})

	primary := electPrimaryTicket(members, g)
	story := types.WorkStory{
		ID:            types.StoryID(memberIDs),
		Title:         deriveTitle(members, primary),
		EvidenceIDs:   memberIDs,
		Relationships: rels,
		Authors:       collectAuthors(members),
	}
	if primary != nil {
		story.PrimaryTicketID = primary.ID
	}
	return story
}

// electPrimaryTicket picks the ticket anchoring the story: highest accepted
// degree, then earliest CreatedAt, then lexically smallest id.
func electPrimaryTicket(members []*types.EvidenceItem, g *graph.Graph) *types.EvidenceItem {
	var best *types.EvidenceItem
	for _, item := range members {
		if !item.IsTicket() {
			continue
		}
		if best == nil || betterPrimary(item, best, g) {
			best = item
		}
	}
	return best
}

func betterPrimary(candidate, current *types.EvidenceItem, g *graph.Graph) bool {
	cd, bd := g.Degree(candidate.ID), g.Degree(current.ID)
	if cd != bd {
		return cd > bd
	}
	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.Before(current.CreatedAt)
	}
	return candidate.ID < current.ID
}

// deriveTitle prefers the primary ticket's key and title; stories without a
// ticket fall back to the earliest member's title.
func deriveTitle(members []*types.EvidenceItem, primary *types.EvidenceItem) string {
	if primary != nil {
		key := primary.TicketKey()
		if key != "" && !strings.HasPrefix(primary.Title, key) {
			return fmt.Sprintf("%s: %s", key, primary.Title)
		}
		return primary.Title
	}

	var earliest *types.EvidenceItem
	for _, item := range members {
		if earliest == nil || item.CreatedAt.Before(earliest.CreatedAt) ||
			(item.CreatedAt.Equal(earliest.CreatedAt) && item.ID < earliest.ID) {
			earliest = item
		}
	}
	if earliest == nil {
		return ""
	}
	return earliest.Title
}

func collectAuthors(members []*types.EvidenceItem) []string {
	seen := make(map[string]bool)
	var authors []string
	for _, item := range members {
		if item.Author == "" || seen[item.Author] {
			continue
		}
		seen[item.Author] = true
		authors = append(authors, item.Author)
	}
	sort.Strings(authors)
	return authors
}
