// Package allocator assigns exam candidates to physical seats across one or
// more rooms while spreading out students that share a subject, department,
// section, or year. The pipeline is a deterministic slot/graph construction
// followed by priority-driven greedy placement and a bounded local-search
// repair; it is a heuristic with fixed sampling bounds, not an exact solver.
//
// Every run builds fresh state from its inputs and performs no I/O, so a run
// always terminates without an external timeout. All randomness is drawn from
// the injected source, which makes runs reproducible under a fixed seed.
package allocator

import (
	"math/rand"
	"time"
)

const (
	defaultPrimaryPoolSize = 10
	defaultSampleBuckets   = 6
	defaultPerBucketSample = 3
	defaultMaxSwapTrials   = 350
)

// Options tunes the engine. Zero values fall back to the defaults carried
// over from the previous system. The sampling and trial bounds are constants
// independent of problem size; very large exams may see proportionally
// weaker solutions.
type Options struct {
	Weights         Weights
	PrimaryPoolSize int
	SampleBuckets   int
	PerBucketSample int
	MaxSwapTrials   int

	// Rand supplies all randomness (bucket shuffling, bucket sampling, swap
	// trials). Nil selects a time-seeded source.
	Rand *rand.Rand
}

// SeatAssignment pairs a slot with the student occupying it.
type SeatAssignment struct {
	SlotIndex int
	Slot      Slot
	Student   Registration
}

// Result is the outcome of one allocation run.
type Result struct {
	Assignments   []SeatAssignment
	Waiting       []Registration
	Report        ViolationReport
	TotalSlots    int
	Placed        int
	SwapTrials    int
	SwapsAccepted int
}

// Engine runs the seat-allocation pipeline. An Engine is stateless across
// runs and safe to reuse; each Run operates on independently built state.
type Engine struct {
	opts Options
}

// New returns an Engine with defaults applied for unset options.
func New(opts Options) *Engine {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if opts.PrimaryPoolSize <= 0 {
		opts.PrimaryPoolSize = defaultPrimaryPoolSize
	}
	if opts.SampleBuckets <= 0 {
		opts.SampleBuckets = defaultSampleBuckets
	}
	if opts.PerBucketSample <= 0 {
		opts.PerBucketSample = defaultPerBucketSample
	}
	if opts.MaxSwapTrials <= 0 {
		opts.MaxSwapTrials = defaultMaxSwapTrials
	}
	return &Engine{opts: opts}
}

// Run seats the given registrations across the given rooms. Empty inputs are
// valid: no rooms leaves every student waiting, no registrations yields an
// empty plan with an all-zero report. Students beyond seat capacity are
// returned in Waiting.
func (e *Engine) Run(rooms []RoomLayout, regs []Registration) Result {
	rng := e.opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	slots := BuildSlots(rooms)
	adj := BuildAdjacency(slots)
	mates := benchGroups(slots)
	sc := &scorer{weights: e.opts.Weights, adj: adj, mates: mates}

	buckets := newSubjectBuckets(regs, rng)
	occupants := greedyPlace(slots, buckets, sc, e.opts, rng)
	repair := localSearchRepair(occupants, sc, e.opts.MaxSwapTrials, rng)

	assignments := make([]SeatAssignment, 0, len(slots))
	for idx, occ := range occupants {
		if occ == nil {
			continue
		}
		assignments = append(assignments, SeatAssignment{
			SlotIndex: idx,
			Slot:      slots[idx],
			Student:   *occ,
		})
	}

	return Result{
		Assignments:   assignments,
		Waiting:       buckets.unplaced(),
		Report:        buildReport(occupants, adj, mates),
		TotalSlots:    len(slots),
		Placed:        len(assignments),
		SwapTrials:    repair.Trials,
		SwapsAccepted: repair.Accepted,
	}
}
