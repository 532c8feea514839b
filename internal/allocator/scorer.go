package allocator

// Weights holds the additive penalty weights applied when a candidate is
// compared against already-placed students. The defaults are hand-tuned
// values carried over from the previous system; they are exposed through
// configuration because their optimality is unverified.
type Weights struct {
	SubjectBench int `json:"subjectBench"`
	DeptBench    int `json:"deptBench"`
	SubjectAdj   int `json:"subjectAdj"`
	DeptAdj      int `json:"deptAdj"`
	SectionAdj   int `json:"sectionAdj"`
	YearAdj      int `json:"yearAdj"`
}

// DefaultWeights returns the canonical penalty weights.
func DefaultWeights() Weights {
	return Weights{
		SubjectBench: 1000,
		DeptBench:    600,
		SubjectAdj:   120,
		DeptAdj:      50,
		SectionAdj:   20,
		YearAdj:      10,
	}
}

// scorer computes placement penalties against a partial assignment. Pure
// reads only; it never mutates the occupant slice.
type scorer struct {
	weights Weights
	adj     Adjacency
	mates   [][]int
}

// score returns the penalty for seating cand at slot idx. Conditions are
// additive and not mutually exclusive: a same-subject bench-mate contributes
// both the bench and the adjacency weight. Unoccupied neighbors contribute
// nothing; lower is better.
func (s *scorer) score(idx int, cand Registration, occupants []*Registration) int {
	penalty := 0
	for _, mate := range s.mates[idx] {
		other := occupants[mate]
		if other == nil {
			continue
		}
		if other.Subject == cand.Subject {
			penalty += s.weights.SubjectBench
		}
		if other.Dept == cand.Dept {
			penalty += s.weights.DeptBench
		}
	}
	for _, neighbor := range s.adj[idx] {
		other := occupants[neighbor]
		if other == nil {
			continue
		}
		if other.Subject == cand.Subject {
			penalty += s.weights.SubjectAdj
		}
		if other.Dept == cand.Dept {
			penalty += s.weights.DeptAdj
		}
		if other.Section == cand.Section {
			penalty += s.weights.SectionAdj
		}
		if other.Year == cand.Year {
			penalty += s.weights.YearAdj
		}
	}
	return penalty
}

// localPenalty is the penalty the occupant of slot idx incurs against its
// current bench-mates and neighbors. excludeSlot is skipped so that swap
// trials do not count the pair under exchange against each other; pass -1 to
// exclude nothing. Occupants are excluded from self-comparison by slot
// index, never by reference identity.
func (s *scorer) localPenalty(idx int, occupants []*Registration, excludeSlot int) int {
	self := occupants[idx]
	if self == nil {
		return 0
	}
	penalty := 0
	for _, mate := range s.mates[idx] {
		if mate == excludeSlot {
			continue
		}
		other := occupants[mate]
		if other == nil {
			continue
		}
		if other.Subject == self.Subject {
			penalty += s.weights.SubjectBench
		}
		if other.Dept == self.Dept {
			penalty += s.weights.DeptBench
		}
	}
	for _, neighbor := range s.adj[idx] {
		if neighbor == excludeSlot {
			continue
		}
		other := occupants[neighbor]
		if other == nil {
			continue
		}
		if other.Subject == self.Subject {
			penalty += s.weights.SubjectAdj
		}
		if other.Dept == self.Dept {
			penalty += s.weights.DeptAdj
		}
		if other.Section == self.Section {
			penalty += s.weights.SectionAdj
		}
		if other.Year == self.Year {
			penalty += s.weights.YearAdj
		}
	}
	return penalty
}
