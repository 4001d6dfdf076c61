package correlate

import (
	"strings"

	"github.com/worklens/worklens/internal/detect"
	"github.com/worklens/worklens/internal/types"
)

// minContentTokens is the distinct-token floor both sides of a content-only
// candidate must clear. Pairs below it cannot produce a meaningful
// similarity signal, so they are never scheduled.
const minContentTokens = 3

// candidatePairs enumerates the index pairs worth running detectors on.
// Items must already be sorted by id. Only activity×ticket pairs qualify:
//
//  1. key-sharing pairs, from a cheap index of referenced ticket keys;
//  2. content-only pairs, gated by a token floor on both sides.
//
// Pair order is deterministic: activities ascending, tickets ascending.
func candidatePairs(items []types.EvidenceItem) [][2]int {
	var tickets, activities []int
	for i := range items {
		if items[i].IsTicket() {
			tickets = append(tickets, i)
		} else {
			activities = append(activities, i)
		}
	}
	if len(tickets) == 0 || len(activities) == 0 {
		return nil
	}

	// Index tickets by their own key.
	ticketsByKey := make(map[string][]int)
	for _, ti := range tickets {
		if key := detect.TicketKey(&items[ti]); key != "" {
			ticketsByKey[key] = append(ticketsByKey[key], ti)
		}
	}

	// Cheap per-item token counts, computed once.
	tokenCount := make([]int, len(items))
	for i := range items {
		tokenCount[i] = len(detect.Tokenize(items[i].Title + " " + items[i].Body))
	}

	var pairs [][2]int
	scheduled := make(map[[2]int]bool)
	add := func(ai, ti int) {
		p := [2]int{ai, ti}
		if scheduled[p] {
			return
		}
		scheduled[p] = true
		pairs = append(pairs, p)
	}

	for _, ai := range activities {
		item := &items[ai]
		referenced := detect.Keys(strings.Join([]string{item.Title, item.Body, item.BranchName()}, " "))
		for _, key := range referenced {
			for _, ti := range ticketsByKey[key] {
				add(ai, ti)
			}
		}
	}

	for _, ai := range activities {
		if tokenCount[ai] < minContentTokens {
			continue
		}
		for _, ti := range tickets {
			if tokenCount[ti] < minContentTokens {
				continue
			}
			add(ai, ti)
		}
	}

	return pairs
}
