package job

import (
	"sync"
	"sync/atomic"

	"github.com/pthm-cable/swarmcore/diagnostics"
)

// Scheduler runs phases: each phase claims every range of a Queue across
// a fixed number of worker goroutines, started fresh for that phase, then
// blocks (the barrier) until all ranges are done before returning control
// to the caller. One Scheduler is reused across every phase of every
// frame, so the worker count is fixed once at construction.
type Scheduler struct {
	numWorkers int
	diag       *diagnostics.Counters

	// MainThreadStealingEnabled and MaxJobsPerFrame implement
	// logic.mainThreadJobStealing: when enabled and the main thread is
	// active, RunPhase's caller goroutine also claims up to
	// MaxJobsPerFrame ranges itself before waiting on the workers.
	MainThreadStealingEnabled bool
	MaxJobsPerFrame           int

	mainThreadActive atomic.Bool
	frameNumber      atomic.Int64
}

// NewScheduler creates a scheduler that starts numWorkers worker
// goroutines per phase. numWorkers <= 0 means main-thread-only
// (logic.numberOfLogicWorkers == 0): no background workers are spawned,
// and the calling goroutine must do all the work, so
// MainThreadStealingEnabled is forced on with an unbounded
// MaxJobsPerFrame in that case.
func NewScheduler(numWorkers int, diag *diagnostics.Counters) *Scheduler {
	s := &Scheduler{numWorkers: numWorkers, diag: diag}
	s.mainThreadActive.Store(true)
	if numWorkers <= 0 {
		s.MainThreadStealingEnabled = true
		s.MaxJobsPerFrame = 1 << 30
	}
	return s
}

// SetMainThreadActive flips the main_thread_active flag: when the host
// window becomes inactive, the flag is cleared so workers do not wait on
// the main thread. While inactive, RunPhase stops stealing jobs on the
// caller's goroutine and excludes it from the total worker count; the
// background worker pool is unaffected.
func (s *Scheduler) SetMainThreadActive(active bool) {
	s.mainThreadActive.Store(active)
}

// FrameNumber returns the number of phases run so far.
func (s *Scheduler) FrameNumber() int64 { return s.frameNumber.Load() }

// RunPhase resets q, starts numWorkers worker goroutines plus
// (optionally) main-thread job stealing, and blocks until every range in
// q has been processed by fn. A panic inside fn for a given range is
// isolated to that range: it is recorded as a TransientWorkerFault and
// the worker moves on to its next claim, never propagating past RunPhase.
func (s *Scheduler) RunPhase(q *Queue, fn func(Range)) {
	s.frameNumber.Add(1)
	q.Reset()

	var wg sync.WaitGroup
	wg.Add(s.numWorkers)
	for w := 0; w < s.numWorkers; w++ {
		go func() {
			defer wg.Done()
			for {
				r, ok := q.Claim()
				if !ok {
					return
				}
				s.runJob(r, fn)
			}
		}()
	}

	if s.MainThreadStealingEnabled && s.mainThreadActive.Load() {
		for claimed := 0; claimed < s.MaxJobsPerFrame; claimed++ {
			r, ok := q.Claim()
			if !ok {
				break
			}
			s.runJob(r, fn)
		}
	}

	wg.Wait()
}

// runJob isolates a panic from fn to this single range.
func (s *Scheduler) runJob(r Range, fn func(Range)) {
	defer func() {
		if rec := recover(); rec != nil && s.diag != nil {
			s.diag.Record(diagnostics.TransientWorkerFault, "job [%d,%d) panicked: %v", r.Start, r.End, rec)
		}
	}()
	fn(r)
}
