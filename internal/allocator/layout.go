package allocator

import "sort"

// RoomLayout describes one examination room as supplied by the classroom store.
// Room order in the input slice is significant: slots are numbered room by room.
type RoomLayout struct {
	ClassroomID   string
	RoomID        string
	SeatsPerBench int
	Benches       []BenchPosition
}

// BenchPosition locates a single bench inside a room grid.
type BenchPosition struct {
	BenchID string
	Label   string
	Column  int
	Row     int
}

// BenchKey identifies the physical bench a slot belongs to.
type BenchKey struct {
	RoomID string
	Column int
	Row    int
}

// Slot is one placeable seat. Slots are identified by their index in the
// sequence produced by BuildSlots and are immutable afterwards.
type Slot struct {
	ClassroomID string
	RoomID      string
	BenchID     string
	BenchLabel  string
	Bench       BenchKey
	SeatNo      int
	Column      int
	Row         int
}

// BuildSlots expands rooms into the flat, globally ordered seat sequence:
// rooms in input order, benches by (column, row), seats 1..SeatsPerBench.
// The expansion is fully deterministic for identical input.
func BuildSlots(rooms []RoomLayout) []Slot {
	total := 0
	for _, room := range rooms {
		total += len(room.Benches) * room.SeatsPerBench
	}

	slots := make([]Slot, 0, total)
	for _, room := range rooms {
		benches := make([]BenchPosition, len(room.Benches))
		copy(benches, room.Benches)
		sort.Slice(benches, func(i, j int) bool {
			if benches[i].Column == benches[j].Column {
				return benches[i].Row < benches[j].Row
			}
			return benches[i].Column < benches[j].Column
		})

		for _, bench := range benches {
			for seat := 1; seat <= room.SeatsPerBench; seat++ {
				slots = append(slots, Slot{
					ClassroomID: room.ClassroomID,
					RoomID:      room.RoomID,
					BenchID:     bench.BenchID,
					BenchLabel:  bench.Label,
					Bench:       BenchKey{RoomID: room.RoomID, Column: bench.Column, Row: bench.Row},
					SeatNo:      seat,
					Column:      bench.Column,
					Row:         bench.Row,
				})
			}
		}
	}
	return slots
}
