package physics

import "sync/atomic"

// Pair is a canonicalized (i < j) penetrating-pair candidate.
type Pair struct {
	I, J int32
}

// PairBuffer is the collision-pair append buffer: workers detecting
// penetrating pairs across job-range boundaries append to it via an
// atomic fetch-add on the tail, so concurrent detection across disjoint
// ranges never races even though a pair's partner can live outside the
// detecting worker's own range.
type PairBuffer struct {
	pairs []Pair
	tail  atomic.Int64
}

// NewPairBuffer allocates a buffer capped at capacity entries
// (physics.maxCollisionPairs).
func NewPairBuffer(capacity int) *PairBuffer {
	return &PairBuffer{pairs: make([]Pair, capacity)}
}

// Reset rewinds the buffer for a new sub-step.
func (b *PairBuffer) Reset() { b.tail.Store(0) }

// Append records a candidate pair. Returns false if the buffer is already
// at physics.maxCollisionPairs capacity, in which case the pair is
// dropped, bounding the work done per sub-step.
func (b *PairBuffer) Append(i, j int32) bool {
	idx := b.tail.Add(1) - 1
	if idx >= int64(len(b.pairs)) {
		return false
	}
	b.pairs[idx] = Pair{I: i, J: j}
	return true
}

// Len returns the number of pairs recorded this sub-step, capped at
// capacity.
func (b *PairBuffer) Len() int {
	n := b.tail.Load()
	if n > int64(len(b.pairs)) {
		n = int64(len(b.pairs))
	}
	return int(n)
}

// Get returns the pair at idx (idx < Len()).
func (b *PairBuffer) Get(idx int) Pair { return b.pairs[idx] }
