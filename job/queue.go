// Package job implements a single shared job queue over a 1D index
// range, claimed via atomic fetch-add, gated by a per-phase barrier. Go's
// runtime multiplexes the worker goroutines spawned by Scheduler.RunPhase
// onto OS threads via GOMAXPROCS, and no phase blocks on I/O, so no
// goroutine is ever parked off a real thread for long. Workers pull
// fixed-size ranges from a shared cursor until the queue is exhausted.
package job

import "sync/atomic"

// Range is a contiguous [Start, End) row range, the unit of work-stealing.
type Range struct {
	Start, End int
}

// Len returns the number of rows in the range.
func (r Range) Len() int { return r.End - r.Start }

// Queue holds total_jobs fixed ranges over [0, N) and a shared
// next_job_index claimed via atomic fetch-add.
type Queue struct {
	ranges []Range
	next   atomic.Int64
}

// NewQueue partitions [0, n) into ranges of entitiesPerJob rows each (the
// last range may be shorter). entitiesPerJob <= 0 is treated as 1.
func NewQueue(n, entitiesPerJob int) *Queue {
	if entitiesPerJob <= 0 {
		entitiesPerJob = 1
	}
	total := (n + entitiesPerJob - 1) / entitiesPerJob
	ranges := make([]Range, total)
	for i := range ranges {
		start := i * entitiesPerJob
		end := start + entitiesPerJob
		if end > n {
			end = n
		}
		ranges[i] = Range{Start: start, End: end}
	}
	return &Queue{ranges: ranges}
}

// Total returns the number of job ranges.
func (q *Queue) Total() int { return len(q.ranges) }

// Reset rewinds the claim cursor to 0. Called once per phase, before any
// worker claims.
func (q *Queue) Reset() { q.next.Store(0) }

// Claim atomically claims the next unclaimed range. ok is false once every
// range has been claimed for this phase (Invariant J-1: each range is
// claimed exactly once per frame).
func (q *Queue) Claim() (r Range, ok bool) {
	idx := q.next.Add(1) - 1
	if idx < 0 || idx >= int64(len(q.ranges)) {
		return Range{}, false
	}
	return q.ranges[idx], true
}
