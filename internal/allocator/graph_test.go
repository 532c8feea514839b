package allocator

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalized(adj Adjacency) [][]int {
	out := make([][]int, len(adj))
	for i, neighbors := range adj {
		out[i] = append([]int(nil), neighbors...)
		sort.Ints(out[i])
	}
	return out
}

func TestBuildAdjacencySymmetricWithoutSelfLoops(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 2,
		BenchPosition{Column: 1, Row: 1},
		BenchPosition{Column: 1, Row: 2},
		BenchPosition{Column: 2, Row: 1},
		BenchPosition{Column: 2, Row: 2},
	)}
	slots := BuildSlots(rooms)
	adj := BuildAdjacency(slots)
	require.Len(t, adj, len(slots))

	for i, neighbors := range adj {
		seen := map[int]bool{}
		for _, j := range neighbors {
			assert.NotEqual(t, i, j, "no self-loops")
			assert.False(t, seen[j], "no duplicate edge %d-%d", i, j)
			seen[j] = true
			assert.Contains(t, adj[j], i, "edge %d-%d must be mirrored", i, j)
		}
	}
}

func TestBuildAdjacencyBenchMatesAndNeighbors(t *testing.T) {
	// Two benches side by side plus one isolated bench two columns away.
	rooms := []RoomLayout{roomFixture("R1", 2,
		BenchPosition{Column: 1, Row: 1},
		BenchPosition{Column: 2, Row: 1},
		BenchPosition{Column: 5, Row: 1},
	)}
	slots := BuildSlots(rooms)
	adj := normalized(BuildAdjacency(slots))

	// Slots 0,1 share bench (1,1); slots 2,3 share bench (2,1); the benches
	// neighbor each other so all four seats interconnect.
	assert.Equal(t, []int{1, 2, 3}, adj[0])
	assert.Equal(t, []int{0, 2, 3}, adj[1])
	assert.Equal(t, []int{0, 1, 3}, adj[2])
	assert.Equal(t, []int{0, 1, 2}, adj[3])

	// The far bench only links its own seats: disconnected components and
	// missing benches contribute no edges.
	assert.Equal(t, []int{5}, adj[4])
	assert.Equal(t, []int{4}, adj[5])
}

func TestBuildAdjacencyDoesNotCrossRooms(t *testing.T) {
	rooms := []RoomLayout{
		roomFixture("R1", 1, BenchPosition{Column: 1, Row: 1}),
		roomFixture("R2", 1, BenchPosition{Column: 2, Row: 1}),
	}
	adj := BuildAdjacency(BuildSlots(rooms))
	assert.Empty(t, adj[0])
	assert.Empty(t, adj[1])
}

func TestBuildAdjacencyRowNeighbors(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 1,
		BenchPosition{Column: 1, Row: 1},
		BenchPosition{Column: 1, Row: 2},
		BenchPosition{Column: 1, Row: 4},
	)}
	adj := normalized(BuildAdjacency(BuildSlots(rooms)))

	assert.Equal(t, []int{1}, adj[0])
	assert.Equal(t, []int{0}, adj[1])
	assert.Empty(t, adj[2], "row gap means no edge")
}

func TestBuildAdjacencyDeterministic(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 2,
		BenchPosition{Column: 1, Row: 1},
		BenchPosition{Column: 2, Row: 1},
		BenchPosition{Column: 1, Row: 2},
		BenchPosition{Column: 2, Row: 2},
	)}
	slots := BuildSlots(rooms)

	first := BuildAdjacency(slots)
	second := BuildAdjacency(slots)
	assert.Equal(t, first, second)
}

func TestBenchGroupsExcludeSelf(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 3, BenchPosition{Column: 1, Row: 1})}
	mates := benchGroups(BuildSlots(rooms))
	require.Len(t, mates, 3)
	assert.ElementsMatch(t, []int{1, 2}, mates[0])
	assert.ElementsMatch(t, []int{0, 2}, mates[1])
	assert.ElementsMatch(t, []int{0, 1}, mates[2])
}
