package services

import (
	"sort"

	"github.com/abrezinsky/crowntally/internal/models"
)

// RankEntry pairs a contestant with the value being ranked
type RankEntry struct {
	ID    int
	Value float64
}

// RankDirection states which end of the value scale is best.
type RankDirection int

const (
	// DescendingBetter ranks the highest value first (raw scores).
	DescendingBetter RankDirection = iota
	// AscendingBetter ranks the lowest value first (rank sums, ordinals).
	AscendingBetter
)

// RankValues assigns a rank to every entry. Rank 1 is best. Tied values
// are resolved per the tie policy:
//
//   - average: tied entries receive the mean of the ordinal positions
//     they jointly occupy (spreadsheet RANK.AVG).
//   - minimum: tied entries all receive the best position they occupy,
//     and the next distinct value skips ahead (RANK.MIN, sports style).
//   - sequential: ties are broken by the order entries were supplied,
//     producing strictly increasing ranks with no gaps.
//
// Values are compared exactly; callers that need tolerance-based tie
// detection (minor awards) handle that before ranking.
func RankValues(entries []RankEntry, dir RankDirection, tie models.TieHandling) map[int]float64 {
	ranks := make(map[int]float64, len(entries))
	if len(entries) == 0 {
		return ranks
	}

	// Stable sort keeps insertion order within a tie group, which is
	// what makes the sequential policy deterministic.
	sorted := make([]RankEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if dir == AscendingBetter {
			return sorted[i].Value < sorted[j].Value
		}
		return sorted[i].Value > sorted[j].Value
	})

	if tie == models.TieSequential {
		for i, e := range sorted {
			ranks[e.ID] = float64(i + 1)
		}
		return ranks
	}

	i := 0
	for i < len(sorted) {
		j := i + 1
		for j < len(sorted) && sorted[j].Value == sorted[i].Value {
			j++
		}
		// Group occupies positions i+1 .. j.
		var rank float64
		switch tie {
		case models.TieAverage:
			rank = float64(i+1+j) / 2
		default: // models.TieMinimum
			rank = float64(i + 1)
		}
		for k := i; k < j; k++ {
			ranks[sorted[k].ID] = rank
		}
		i = j
	}
	return ranks
}
