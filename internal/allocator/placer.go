package allocator

import "math/rand"

// greedyPlace fills slots strictly in built order until min(#slots,
// #students) placements are made. Each slot draws a bounded candidate pool:
// up to primaryPool students from the currently largest bucket plus up to
// perBucket students from each of up to sampleBuckets other randomly chosen
// non-empty buckets. The pool trades optimality for bounded cost; the full
// remaining population is never scanned.
func greedyPlace(
	slots []Slot,
	buckets *subjectBuckets,
	sc *scorer,
	opts Options,
	rng *rand.Rand,
) []*Registration {
	occupants := make([]*Registration, len(slots))

	target := len(slots)
	if buckets.remaining < target {
		target = buckets.remaining
	}

	placed := 0
	for idx := 0; idx < len(slots) && placed < target; idx++ {
		var best Registration
		bestScore := -1

		primary, ok := buckets.largest()
		if ok {
			for _, cand := range buckets.peek(primary, opts.PrimaryPoolSize) {
				score := sc.score(idx, cand, occupants)
				if bestScore < 0 || score < bestScore {
					best, bestScore = cand, score
				}
				if bestScore == 0 {
					break
				}
			}
			if bestScore != 0 {
				for _, subject := range buckets.sampleOthers(primary, opts.SampleBuckets, rng) {
					for _, cand := range buckets.peek(subject, opts.PerBucketSample) {
						score := sc.score(idx, cand, occupants)
						if bestScore < 0 || score < bestScore {
							best, bestScore = cand, score
						}
						if bestScore == 0 {
							break
						}
					}
					if bestScore == 0 {
						break
					}
				}
			}
		}

		if bestScore < 0 {
			fallback, ok := buckets.any()
			if !ok {
				break
			}
			best = fallback
		}

		reg := best
		occupants[idx] = &reg
		buckets.consume(reg)
		placed++
	}
	return occupants
}
