package job

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQueueClaimExactlyOnce exercises Invariant J-1 ("each range is
// claimed exactly once per frame") under concurrent claimers: many
// goroutines hammer Claim() on a shared Queue and every range must end up
// claimed by exactly one of them.
func TestQueueClaimExactlyOnce(t *testing.T) {
	const n, perJob, workers = 10_000, 37, 64

	q := NewQueue(n, perJob)
	want := q.Total()
	require.Greater(t, want, 0)

	seen := make([]int32, want)
	var seenMu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				r, ok := q.Claim()
				if !ok {
					return
				}
				idx := r.Start / perJob
				seenMu.Lock()
				seen[idx]++
				seenMu.Unlock()
			}
		}()
	}
	wg.Wait()

	for i, count := range seen {
		assert.Equalf(t, int32(1), count, "range %d claimed %d times, want exactly 1", i, count)
	}

	r, ok := q.Claim()
	assert.False(t, ok, "Claim should report exhausted once every range is taken")
	assert.Equal(t, Range{}, r)
}

// TestQueueResetRewindsCursor checks that Reset lets a fresh phase
// re-claim every range. Run once per phase.
func TestQueueResetRewindsCursor(t *testing.T) {
	q := NewQueue(100, 10)
	for {
		if _, ok := q.Claim(); !ok {
			break
		}
	}
	q.Reset()

	count := 0
	for {
		if _, ok := q.Claim(); !ok {
			break
		}
		count++
	}
	assert.Equal(t, q.Total(), count)
}
