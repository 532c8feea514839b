package allocator

import "math/rand"

// repairStats summarizes a local-search run.
type repairStats struct {
	Trials   int
	Accepted int
}

// localSearchRepair runs up to min(maxTrials, 2×placed) randomized pairwise
// swap trials over the occupied slots. A trial swaps two occupants, compares
// their combined local penalties before and after (each side excluding the
// other selected slot), and keeps the swap only when it does not worsen the
// total. Pure hill-climbing with a fixed budget: no temperature schedule and
// no iteration to convergence.
func localSearchRepair(occupants []*Registration, sc *scorer, maxTrials int, rng *rand.Rand) repairStats {
	occupied := make([]int, 0, len(occupants))
	for idx, occ := range occupants {
		if occ != nil {
			occupied = append(occupied, idx)
		}
	}
	if len(occupied) < 2 {
		return repairStats{}
	}

	trials := maxTrials
	if budget := 2 * len(occupied); budget < trials {
		trials = budget
	}

	stats := repairStats{Trials: trials}
	for t := 0; t < trials; t++ {
		i := occupied[rng.Intn(len(occupied))]
		j := occupied[rng.Intn(len(occupied))]
		for j == i {
			j = occupied[rng.Intn(len(occupied))]
		}

		before := sc.localPenalty(i, occupants, j) + sc.localPenalty(j, occupants, i)

		occupants[i], occupants[j] = occupants[j], occupants[i]
		after := sc.localPenalty(i, occupants, j) + sc.localPenalty(j, occupants, i)

		if after > before {
			occupants[i], occupants[j] = occupants[j], occupants[i]
			continue
		}
		stats.Accepted++
	}
	return stats
}
