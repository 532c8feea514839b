package allocator

import (
	"container/heap"
	"math/rand"
)

// Registration is one student's entry for the exam being seated. Fields are
// compared for equality as-is; validation belongs to the calling layer.
type Registration struct {
	StudentID string
	StuNo     int
	FullName  string
	Subject   string
	Dept      string
	Section   string
	Year      int
}

type bucketEntry struct {
	subject string
	size    int
}

type bucketHeap []bucketEntry

func (h bucketHeap) Len() int            { return len(h) }
func (h bucketHeap) Less(i, j int) bool  { return h[i].size > h[j].size }
func (h bucketHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *bucketHeap) Push(x interface{}) { *h = append(*h, x.(bucketEntry)) }
func (h *bucketHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// subjectBuckets partitions registrations by subject code and keeps a
// priority view ordered by current bucket size. The heap uses lazy deletion:
// entries for buckets that have shrunk are tolerated and re-validated on pop
// instead of being removed eagerly on every mutation.
type subjectBuckets struct {
	buckets   map[string][]Registration
	subjects  []string // first-appearance order, keeps runs seed-reproducible
	heap      bucketHeap
	remaining int
}

func newSubjectBuckets(regs []Registration, rng *rand.Rand) *subjectBuckets {
	b := &subjectBuckets{buckets: make(map[string][]Registration)}
	for _, reg := range regs {
		if _, seen := b.buckets[reg.Subject]; !seen {
			b.subjects = append(b.subjects, reg.Subject)
		}
		b.buckets[reg.Subject] = append(b.buckets[reg.Subject], reg)
	}
	for _, subject := range b.subjects {
		members := b.buckets[subject]
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
		heap.Push(&b.heap, bucketEntry{subject: subject, size: len(members)})
	}
	b.remaining = len(regs)
	return b
}

// largest returns the subject of a non-empty bucket with the largest
// remaining size. Ties between equal-size buckets break arbitrarily.
func (b *subjectBuckets) largest() (string, bool) {
	for b.heap.Len() > 0 {
		top := b.heap[0]
		current := len(b.buckets[top.subject])
		if current == 0 || current != top.size {
			// Stale entry left behind by a consume; drop and retry.
			heap.Pop(&b.heap)
			if current > 0 {
				heap.Push(&b.heap, bucketEntry{subject: top.subject, size: current})
			}
			continue
		}
		return top.subject, true
	}
	return "", false
}

// peek returns up to k members of a bucket without consuming them.
func (b *subjectBuckets) peek(subject string, k int) []Registration {
	members := b.buckets[subject]
	if len(members) < k {
		k = len(members)
	}
	return members[:k]
}

// sampleOthers picks up to k distinct non-empty buckets other than exclude,
// in random order.
func (b *subjectBuckets) sampleOthers(exclude string, k int, rng *rand.Rand) []string {
	candidates := make([]string, 0, len(b.subjects))
	for _, subject := range b.subjects {
		if subject != exclude && len(b.buckets[subject]) > 0 {
			candidates = append(candidates, subject)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// consume removes the given student from their bucket and records the
// updated size for the priority view.
func (b *subjectBuckets) consume(reg Registration) {
	members := b.buckets[reg.Subject]
	for i, member := range members {
		if member.StudentID == reg.StudentID {
			b.buckets[reg.Subject] = append(members[:i], members[i+1:]...)
			b.remaining--
			break
		}
	}
	if size := len(b.buckets[reg.Subject]); size > 0 {
		heap.Push(&b.heap, bucketEntry{subject: reg.Subject, size: size})
	}
}

// any returns an arbitrary remaining registration. Degenerate fallback for
// when the priority view yields no candidates.
func (b *subjectBuckets) any() (Registration, bool) {
	for _, subject := range b.subjects {
		if members := b.buckets[subject]; len(members) > 0 {
			return members[0], true
		}
	}
	return Registration{}, false
}

// unplaced drains the remaining registrations; these students wait for the
// next room set.
func (b *subjectBuckets) unplaced() []Registration {
	waiting := make([]Registration, 0, b.remaining)
	for _, subject := range b.subjects {
		waiting = append(waiting, b.buckets[subject]...)
	}
	return waiting
}
