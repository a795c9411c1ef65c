// Package rank turns an accumulated spectrum into a suspiciousness rank.
package rank

import (
	"sort"

	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/heuristic"
)

// Generate scores every requirement with h and returns the entries sorted by
// score descending. Ties are broken by requirement identity (see
// domain.Element.Less), so equal inputs always produce the same sequence.
//
// When the session has no failing test every score is 0 and the order is the
// tie-break order alone.
func Generate(
	requirements []domain.Requirement,
	totalPassed int,
	totalFailed int,
	h heuristic.Heuristic,
) []domain.RankEntry {

	entries := make([]domain.RankEntry, len(requirements))
	noFailures := totalFailed == 0

	for i, req := range requirements {
		score := 0.0
		if !noFailures {
			score = h.Eval(req.CoveredByFailed, req.CoveredByPassed, totalFailed, totalPassed)
		}
		entries[i] = domain.RankEntry{
			Requirement: req,
			Score:       score,
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Requirement.Element.Less(entries[j].Requirement.Element)
	})

	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// Top returns at most n entries from the head of a rank. n <= 0 returns all.
func Top(entries []domain.RankEntry, n int) []domain.RankEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// PositionOf returns the 1-based position of the requirement with the given
// key, or 0 if it is not ranked. Tied entries share the best position of
// their tie group, which is how fault-localization effort is usually reported.
func PositionOf(entries []domain.RankEntry, key string) int {
	for i, e := range entries {
		if e.Requirement.Key() != key {
			continue
		}
		first := i
		for first > 0 && entries[first-1].Score == e.Score {
			first--
		}
		return first + 1
	}
	return 0
}
