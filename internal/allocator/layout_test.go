package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomFixture(roomID string, seatsPerBench int, benches ...BenchPosition) RoomLayout {
	return RoomLayout{
		ClassroomID:   "cls-" + roomID,
		RoomID:        roomID,
		SeatsPerBench: seatsPerBench,
		Benches:       benches,
	}
}

func TestBuildSlotsOrdering(t *testing.T) {
	room := roomFixture("B201", 2,
		BenchPosition{Label: "C2-R1", Column: 2, Row: 1},
		BenchPosition{Label: "C1-R2", Column: 1, Row: 2},
		BenchPosition{Label: "C1-R1", Column: 1, Row: 1},
	)

	slots := BuildSlots([]RoomLayout{room})
	require.Len(t, slots, 6)

	// Benches by (column, row), seats 1..capacity within each bench.
	assert.Equal(t, "C1-R1", slots[0].BenchLabel)
	assert.Equal(t, 1, slots[0].SeatNo)
	assert.Equal(t, "C1-R1", slots[1].BenchLabel)
	assert.Equal(t, 2, slots[1].SeatNo)
	assert.Equal(t, "C1-R2", slots[2].BenchLabel)
	assert.Equal(t, "C2-R1", slots[4].BenchLabel)

	for _, slot := range slots {
		assert.Equal(t, "B201", slot.RoomID)
		assert.Equal(t, slot.Column, slot.Bench.Column)
		assert.Equal(t, slot.Row, slot.Bench.Row)
	}
}

func TestBuildSlotsRoomOrderIsCallerSignificant(t *testing.T) {
	a := roomFixture("A", 1, BenchPosition{Column: 1, Row: 1})
	b := roomFixture("B", 1, BenchPosition{Column: 1, Row: 1})

	slots := BuildSlots([]RoomLayout{b, a})
	require.Len(t, slots, 2)
	assert.Equal(t, "B", slots[0].RoomID)
	assert.Equal(t, "A", slots[1].RoomID)
}

func TestBuildSlotsDeterministic(t *testing.T) {
	rooms := []RoomLayout{
		roomFixture("R1", 3,
			BenchPosition{Column: 2, Row: 2},
			BenchPosition{Column: 1, Row: 1},
			BenchPosition{Column: 2, Row: 1},
		),
		roomFixture("R2", 2, BenchPosition{Column: 1, Row: 1}),
	}

	first := BuildSlots(rooms)
	second := BuildSlots(rooms)
	assert.Equal(t, first, second)
}

func TestBuildSlotsEmpty(t *testing.T) {
	assert.Empty(t, BuildSlots(nil))
	assert.Empty(t, BuildSlots([]RoomLayout{roomFixture("R1", 2)}))
}
