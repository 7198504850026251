package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarmcore/store"
)

func newBoundRegistry(t *testing.T, count int) (*Registry, *store.ComponentStore) {
	t.Helper()
	r := NewRegistry()
	_, err := r.RegisterClass("Particle", ClassDecl{Count: count})
	require.NoError(t, err)

	s := store.NewComponentStore(r.Total())
	r.Bind(s)
	return r, s
}

// TestSpawnConcurrentRaceClaimsEachRowOnce exercises Invariant P-2 ("the
// CAS winner gets the slot even under concurrent spawns"): many goroutines
// race Spawn on a class with exactly `count` free rows, and exactly
// `count` of them must succeed with distinct rows, the rest must see
// ErrPoolExhausted.
func TestSpawnConcurrentRaceClaimsEachRowOnce(t *testing.T) {
	const count, racers = 64, 200

	r, _ := newBoundRegistry(t, count)

	rows := make(chan int, racers)
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			row, err := r.Spawn("Particle", nil)
			rows <- row
			errs <- err
		}()
	}
	wg.Wait()
	close(rows)
	close(errs)

	seen := make(map[int]int)
	successes := 0
	for row := range rows {
		if row >= 0 {
			seen[row]++
			successes++
		}
	}
	assert.Equal(t, count, successes, "exactly `count` racers should have claimed a row")
	for row, n := range seen {
		assert.Equalf(t, 1, n, "row %d claimed by more than one racer", row)
	}

	failures := 0
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrPoolExhausted)
			failures++
		}
	}
	assert.Equal(t, racers-count, failures)

	active, err := r.ActiveCount("Particle")
	require.NoError(t, err)
	assert.Equal(t, count, active, "Invariant P-1: active count never exceeds declared count")
}

// TestSpawnDespawnReuse checks Invariant E-3: a despawned row's index may
// be reused by a later Spawn.
func TestSpawnDespawnReuse(t *testing.T) {
	r, _ := newBoundRegistry(t, 4)

	var rows []int
	for i := 0; i < 4; i++ {
		row, err := r.Spawn("Particle", nil)
		require.NoError(t, err)
		rows = append(rows, row)
	}

	_, err := r.Spawn("Particle", nil)
	assert.ErrorIs(t, err, ErrPoolExhausted)

	r.Despawn(rows[2])
	reused, err := r.Spawn("Particle", nil)
	require.NoError(t, err)
	assert.Equal(t, rows[2], reused)
}

// TestRegisterClassAutoRegistersEmptyParent checks the inheritance-chain
// behavior: naming an unregistered Parent auto-registers it as an empty
// (count 0) class first.
func TestRegisterClassAutoRegistersEmptyParent(t *testing.T) {
	r := NewRegistry()
	child, err := r.RegisterClass("Child", ClassDecl{Count: 2, Parent: "Base", Components: []string{"Sprite"}})
	require.NoError(t, err)

	base, err := r.Class("Base")
	require.NoError(t, err)
	assert.Equal(t, 0, base.End-base.Start)
	assert.Equal(t, []string{"Sprite"}, child.Components)
}
