package allocator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engineWithSeed(seed int64) *Engine {
	return New(Options{Rand: seededRand(seed)})
}

func registrations(subjectCounts map[string]int) []Registration {
	regs := make([]Registration, 0)
	i := 0
	for subject, count := range subjectCounts {
		for n := 0; n < count; n++ {
			i++
			regs = append(regs, Registration{
				StudentID: fmt.Sprintf("stu-%s-%d", subject, n),
				StuNo:     i,
				Subject:   subject,
				Dept:      subject + "-dept",
				Section:   "A",
				Year:      3,
			})
		}
	}
	return regs
}

func TestRunBijectionInvariant(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 2,
		BenchPosition{Column: 1, Row: 1},
		BenchPosition{Column: 2, Row: 1},
		BenchPosition{Column: 1, Row: 2},
	)}
	regs := registrations(map[string]int{"MATH": 3, "PHY": 2, "CHEM": 4})

	result := engineWithSeed(11).Run(rooms, regs)

	require.Equal(t, 6, result.TotalSlots)
	assert.Equal(t, 6, result.Placed, "placements = min(#slots, #students)")
	assert.Len(t, result.Waiting, 3)

	seenSlots := map[int]bool{}
	seenStudents := map[string]bool{}
	for _, a := range result.Assignments {
		assert.False(t, seenSlots[a.SlotIndex], "slot %d assigned twice", a.SlotIndex)
		assert.False(t, seenStudents[a.Student.StudentID], "student %s seated twice", a.Student.StudentID)
		seenSlots[a.SlotIndex] = true
		seenStudents[a.Student.StudentID] = true
	}
	for _, w := range result.Waiting {
		assert.False(t, seenStudents[w.StudentID], "waiting student %s is also seated", w.StudentID)
	}
}

func TestRunDeterministicUnderFixedSeed(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 2,
		BenchPosition{Column: 1, Row: 1},
		BenchPosition{Column: 2, Row: 1},
		BenchPosition{Column: 1, Row: 2},
		BenchPosition{Column: 2, Row: 2},
	)}
	regs := registrations(map[string]int{"MATH": 4, "PHY": 3, "CHEM": 2})

	first := engineWithSeed(99).Run(rooms, regs)
	second := engineWithSeed(99).Run(rooms, regs)

	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Report, second.Report)
}

// One room, two benches of two seats, four students of one subject: some
// same-subject bench pairing is unavoidable and the report must say so.
func TestRunUnavoidableSubjectClustering(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 2,
		BenchPosition{Column: 1, Row: 1},
		BenchPosition{Column: 2, Row: 1},
	)}
	regs := registrations(map[string]int{"MATH": 4})

	result := engineWithSeed(5).Run(rooms, regs)

	require.Equal(t, 4, result.Placed)
	assert.Empty(t, result.Waiting)
	assert.Positive(t, result.Report.SameSubjectSameBench)
}

func TestRunNoRegistrations(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 2,
		BenchPosition{Column: 1, Row: 1},
		BenchPosition{Column: 2, Row: 1},
		BenchPosition{Column: 3, Row: 1},
		BenchPosition{Column: 4, Row: 1},
		BenchPosition{Column: 5, Row: 1},
	)}

	result := engineWithSeed(1).Run(rooms, nil)

	assert.Equal(t, 10, result.TotalSlots)
	assert.Zero(t, result.Placed)
	assert.Empty(t, result.Assignments)
	assert.Empty(t, result.Waiting)
	assert.Equal(t, ViolationReport{}, result.Report)
}

func TestRunNoSlots(t *testing.T) {
	regs := registrations(map[string]int{"MATH": 10})

	result := engineWithSeed(1).Run(nil, regs)

	assert.Zero(t, result.TotalSlots)
	assert.Zero(t, result.Placed)
	assert.Len(t, result.Waiting, 10)
	assert.Equal(t, ViolationReport{}, result.Report)
}

// Two subjects of five students on five isolated benches of two seats: one
// student of each subject per bench is reachable, so subject/bench
// violations must be zero.
func TestRunAlternatesSubjectsAcrossIsolatedBenches(t *testing.T) {
	// Columns two apart so no bench neighbors another: adjacency stays
	// within each bench.
	rooms := []RoomLayout{roomFixture("R1", 2,
		BenchPosition{Column: 1, Row: 1},
		BenchPosition{Column: 3, Row: 1},
		BenchPosition{Column: 5, Row: 1},
		BenchPosition{Column: 7, Row: 1},
		BenchPosition{Column: 9, Row: 1},
	)}
	regs := registrations(map[string]int{"MATH": 5, "PHY": 5})

	for seed := int64(0); seed < 10; seed++ {
		result := engineWithSeed(seed).Run(rooms, regs)
		require.Equal(t, 10, result.Placed)
		assert.Zero(t, result.Report.SameSubjectSameBench, "seed %d", seed)
	}
}

// A single adjacent same-subject pair yields exactly one counted violation:
// the both-endpoint scan must halve, never double-count.
func TestRunReportCountsPairsOnce(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 1,
		BenchPosition{Column: 1, Row: 1},
		BenchPosition{Column: 2, Row: 1},
	)}
	regs := []Registration{
		{StudentID: "s1", Subject: "MATH", Dept: "CSE", Section: "A", Year: 1},
		{StudentID: "s2", Subject: "MATH", Dept: "EEE", Section: "B", Year: 2},
	}

	result := engineWithSeed(3).Run(rooms, regs)

	require.Equal(t, 2, result.Placed)
	assert.Equal(t, 1, result.Report.SameSubjectAdjacent)
	assert.Zero(t, result.Report.SameSubjectSameBench, "separate single-seat benches share no bench key")
	assert.Zero(t, result.Report.SameDeptAdjacent)
}

func TestRunMoreStudentsThanSeats(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 2, BenchPosition{Column: 1, Row: 1})}
	regs := registrations(map[string]int{"MATH": 4, "PHY": 3})

	result := engineWithSeed(21).Run(rooms, regs)

	assert.Equal(t, 2, result.Placed)
	assert.Len(t, result.Waiting, 5)
}

func TestNewAppliesDefaults(t *testing.T) {
	engine := New(Options{})
	assert.Equal(t, DefaultWeights(), engine.opts.Weights)
	assert.Equal(t, defaultPrimaryPoolSize, engine.opts.PrimaryPoolSize)
	assert.Equal(t, defaultSampleBuckets, engine.opts.SampleBuckets)
	assert.Equal(t, defaultPerBucketSample, engine.opts.PerBucketSample)
	assert.Equal(t, defaultMaxSwapTrials, engine.opts.MaxSwapTrials)
}

func TestRunCustomWeightsRespected(t *testing.T) {
	rooms := []RoomLayout{roomFixture("R1", 2, BenchPosition{Column: 1, Row: 1})}
	regs := []Registration{
		{StudentID: "s1", Subject: "MATH", Dept: "CSE", Section: "A", Year: 1},
		{StudentID: "s2", Subject: "MATH", Dept: "CSE", Section: "A", Year: 1},
	}

	engine := New(Options{
		Weights: Weights{SubjectBench: 1, DeptBench: 1, SubjectAdj: 1, DeptAdj: 1, SectionAdj: 1, YearAdj: 1},
		Rand:    seededRand(4),
	})
	result := engine.Run(rooms, regs)

	// Weights change scoring, never the report: clustering is still counted.
	assert.Equal(t, 1, result.Report.SameSubjectSameBench)
	assert.Equal(t, 1, result.Report.SameSubjectAdjacent)
}
