package selection

import (
	"sort"

	"github.com/wonny/sift/internal/contracts"
)

// Rank orders candidates by score descending, truncates to max, and
// assigns 1-based ranks. The sort is stable so equal scores keep their
// input order; callers pass candidates in canonical universe order,
// which makes tie-breaking deterministic regardless of how evaluation
// was parallelized.
func Rank(candidates []contracts.RankedCandidate, max int) []contracts.RankedCandidate {
	ranked := make([]contracts.RankedCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
