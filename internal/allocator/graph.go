package allocator

// Adjacency maps a slot index to the indices of its neighboring slots.
// The relation is symmetric, has no self-loops, and is never mutated after
// construction.
type Adjacency [][]int

// BuildAdjacency links every slot to its bench-mates and to every slot on a
// geometrically neighboring bench (column±1 same row, row±1 same column,
// same room). Benches absent from the layout contribute no edges, so the
// graph may be disconnected and isolated slots are valid.
func BuildAdjacency(slots []Slot) Adjacency {
	adj := make(Adjacency, len(slots))

	byBench := make(map[BenchKey][]int, len(slots))
	keys := make([]BenchKey, 0, len(slots))
	for i, slot := range slots {
		if _, seen := byBench[slot.Bench]; !seen {
			keys = append(keys, slot.Bench)
		}
		byBench[slot.Bench] = append(byBench[slot.Bench], i)
	}

	link := func(a, b int) {
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}

	// Benches are visited in slot order so identical input always yields an
	// identical graph.
	for _, key := range keys {
		members := byBench[key]
		// Bench-mates are mutually adjacent.
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				link(members[i], members[j])
			}
		}

		// Each neighboring bench pair is visited once by only probing the
		// +1 directions; the mirrored insert in link keeps the relation
		// symmetric by construction.
		for _, neighbor := range []BenchKey{
			{RoomID: key.RoomID, Column: key.Column + 1, Row: key.Row},
			{RoomID: key.RoomID, Column: key.Column, Row: key.Row + 1},
		} {
			others, ok := byBench[neighbor]
			if !ok {
				continue
			}
			for _, a := range members {
				for _, b := range others {
					link(a, b)
				}
			}
		}
	}
	return adj
}

// benchGroups returns, for every slot, the indices of the other slots on the
// same bench. Used by the scorer and the violation report, which weight
// bench-mates separately from plain adjacency.
func benchGroups(slots []Slot) [][]int {
	byBench := make(map[BenchKey][]int, len(slots))
	for i, slot := range slots {
		byBench[slot.Bench] = append(byBench[slot.Bench], i)
	}

	mates := make([][]int, len(slots))
	for _, members := range byBench {
		for _, i := range members {
			for _, j := range members {
				if i != j {
					mates[i] = append(mates[i], j)
				}
			}
		}
	}
	return mates
}
