package allocator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regFixture(id, subject string) Registration {
	return Registration{StudentID: id, Subject: subject, Dept: "CSE", Section: "A", Year: 2}
}

func seededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestSubjectBucketsLargest(t *testing.T) {
	regs := []Registration{
		regFixture("s1", "MATH"), regFixture("s2", "MATH"), regFixture("s3", "MATH"),
		regFixture("s4", "PHY"), regFixture("s5", "PHY"),
		regFixture("s6", "CHEM"),
	}
	buckets := newSubjectBuckets(regs, seededRand(1))

	subject, ok := buckets.largest()
	require.True(t, ok)
	assert.Equal(t, "MATH", subject)
}

func TestSubjectBucketsLazyRevalidationOnPop(t *testing.T) {
	regs := []Registration{
		regFixture("s1", "MATH"), regFixture("s2", "MATH"), regFixture("s3", "MATH"),
		regFixture("s4", "PHY"), regFixture("s5", "PHY"),
	}
	buckets := newSubjectBuckets(regs, seededRand(1))

	// Drain MATH below PHY without touching PHY; stale MATH entries must be
	// re-validated rather than trusted.
	for _, member := range append([]Registration(nil), buckets.buckets["MATH"]...) {
		buckets.consume(member)
	}

	subject, ok := buckets.largest()
	require.True(t, ok)
	assert.Equal(t, "PHY", subject)
}

func TestSubjectBucketsConsumeUpdatesSize(t *testing.T) {
	regs := []Registration{
		regFixture("s1", "MATH"), regFixture("s2", "MATH"),
		regFixture("s3", "PHY"), regFixture("s4", "PHY"), regFixture("s5", "PHY"),
	}
	buckets := newSubjectBuckets(regs, seededRand(7))
	require.Equal(t, 5, buckets.remaining)

	buckets.consume(buckets.buckets["PHY"][0])
	buckets.consume(buckets.buckets["PHY"][0])
	assert.Equal(t, 3, buckets.remaining)
	assert.Len(t, buckets.buckets["PHY"], 1)

	subject, ok := buckets.largest()
	require.True(t, ok)
	assert.Equal(t, "MATH", subject)
}

func TestSubjectBucketsExhaustion(t *testing.T) {
	buckets := newSubjectBuckets([]Registration{regFixture("s1", "MATH")}, seededRand(3))
	buckets.consume(buckets.buckets["MATH"][0])

	_, ok := buckets.largest()
	assert.False(t, ok)
	_, ok = buckets.any()
	assert.False(t, ok)
	assert.Empty(t, buckets.unplaced())
}

func TestSubjectBucketsShuffleIsSeeded(t *testing.T) {
	regs := make([]Registration, 0, 12)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		regs = append(regs, regFixture(id, "MATH"))
	}

	first := newSubjectBuckets(regs, seededRand(42))
	second := newSubjectBuckets(regs, seededRand(42))
	assert.Equal(t, first.buckets["MATH"], second.buckets["MATH"])
}

func TestSubjectBucketsSampleOthers(t *testing.T) {
	regs := []Registration{
		regFixture("s1", "MATH"),
		regFixture("s2", "PHY"),
		regFixture("s3", "CHEM"),
		regFixture("s4", "BIO"),
	}
	buckets := newSubjectBuckets(regs, seededRand(5))

	sampled := buckets.sampleOthers("MATH", 2, seededRand(5))
	assert.Len(t, sampled, 2)
	assert.NotContains(t, sampled, "MATH")

	all := buckets.sampleOthers("MATH", 10, seededRand(5))
	assert.ElementsMatch(t, []string{"PHY", "CHEM", "BIO"}, all)
}
