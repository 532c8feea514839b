package allocator

// ViolationReport counts the soft-constraint violations present in a final
// assignment. Every counter refers to unordered occupant pairs, counted once.
type ViolationReport struct {
	SameSubjectSameBench int `json:"same_subject_same_bench"`
	SameDeptSameBench    int `json:"same_dept_same_bench"`
	SameSubjectAdjacent  int `json:"same_subject_adjacent"`
	SameDeptAdjacent     int `json:"same_dept_adjacent"`
	SameSectionAdjacent  int `json:"same_section_adjacent"`
	SameYearAdjacent     int `json:"same_year_adjacent"`
}

// Total returns the sum of all counters.
func (r ViolationReport) Total() int {
	return r.SameSubjectSameBench + r.SameDeptSameBench + r.SameSubjectAdjacent +
		r.SameDeptAdjacent + r.SameSectionAdjacent + r.SameYearAdjacent
}

// buildReport recomputes exact violation counts from the final assignment.
// Each unordered pair is encountered from both endpoints during the scan, so
// every raw count is halved before being returned.
func buildReport(occupants []*Registration, adj Adjacency, mates [][]int) ViolationReport {
	var raw ViolationReport
	for idx, occ := range occupants {
		if occ == nil {
			continue
		}
		for _, mate := range mates[idx] {
			other := occupants[mate]
			if other == nil {
				continue
			}
			if other.Subject == occ.Subject {
				raw.SameSubjectSameBench++
			}
			if other.Dept == occ.Dept {
				raw.SameDeptSameBench++
			}
		}
		for _, neighbor := range adj[idx] {
			other := occupants[neighbor]
			if other == nil {
				continue
			}
			if other.Subject == occ.Subject {
				raw.SameSubjectAdjacent++
			}
			if other.Dept == occ.Dept {
				raw.SameDeptAdjacent++
			}
			if other.Section == occ.Section {
				raw.SameSectionAdjacent++
			}
			if other.Year == occ.Year {
				raw.SameYearAdjacent++
			}
		}
	}

	return ViolationReport{
		SameSubjectSameBench: raw.SameSubjectSameBench / 2,
		SameDeptSameBench:    raw.SameDeptSameBench / 2,
		SameSubjectAdjacent:  raw.SameSubjectAdjacent / 2,
		SameDeptAdjacent:     raw.SameDeptAdjacent / 2,
		SameSectionAdjacent:  raw.SameSectionAdjacent / 2,
		SameYearAdjacent:     raw.SameYearAdjacent / 2,
	}
}
