package orchestrator

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarmcore/behavior"
	"github.com/pthm-cable/swarmcore/config"
	"github.com/pthm-cable/swarmcore/registry"
	"github.com/pthm-cable/swarmcore/store"
)

func newTestOrchestrator(t *testing.T, numWorkers int, count int) (*Orchestrator, *registry.Registry) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Logic.NumberOfLogicWorkers = numWorkers
	cfg.WorldWidth, cfg.WorldHeight = 800, 600
	cfg.Physics.Gravity.X, cfg.Physics.Gravity.Y = 0, 0
	cfg.Physics.VerletDamping = 1
	cfg.Physics.SubStepCount = 1

	reg := registry.NewRegistry()
	_, err = reg.RegisterClass("Particle", registry.ClassDecl{Count: count})
	require.NoError(t, err)

	st := store.NewComponentStore(reg.Total())
	reg.Bind(st)
	st.Freeze()

	host := behavior.NewHost()
	return New(cfg, reg, st, host, nil), reg
}

// TestSpawnDespawnChurn checks a churn cycle: registering class A with
// count 1000, spawning 1000, despawning all, spawning 1000 again, then
// running 100 frames must never report PoolExhausted, must leave exactly
// 1000 active at frame end, and must never produce NaN positions. Spawns
// go through the registry directly here since the scenario only cares
// about the pool's churn behavior, not the command-queue's latching.
func TestSpawnDespawnChurn(t *testing.T) {
	const count = 1000
	orch, reg := newTestOrchestrator(t, 2, count)

	spawnAll := func() {
		for i := 0; i < count; i++ {
			_, err := reg.Spawn("Particle", nil)
			require.NoError(t, err)
		}
	}

	spawnAll()
	require.NoError(t, reg.DespawnAll("Particle"))
	spawnAll()

	for frame := 0; frame < 100; frame++ {
		orch.RunFrame(1)
	}

	snap := orch.Diagnostics().Snapshot()
	assert.Equal(t, int64(0), snap.PoolExhausted)

	active, err := reg.ActiveCount("Particle")
	require.NoError(t, err)
	assert.Equal(t, count, active)

	st := orch.Store()
	for i := 0; i < st.N(); i++ {
		if !st.Transform.IsActive(i) {
			continue
		}
		assert.False(t, isNaN(st.Transform.X[i]))
		assert.False(t, isNaN(st.Transform.Y[i]))
	}
}

func isNaN(f float32) bool { return f != f }

// TestSpawnCommandAppliesAtNextFrameBoundary checks that a command sent
// via Orchestrator.Spawn is only applied once RunFrame's drainCommands
// step runs, so the caller must see it complete exactly when the next
// frame boundary is crossed.
func TestSpawnCommandAppliesAtNextFrameBoundary(t *testing.T) {
	orch, reg := newTestOrchestrator(t, 1, 4)

	rowCh := make(chan int, 1)
	errCh := make(chan error, 1)
	go func() {
		row, err := orch.Spawn(context.Background(), "Particle", nil)
		rowCh <- row
		errCh <- err
	}()

	// Wait until the command is queued, so this RunFrame is the next
	// frame boundary it crosses.
	for len(orch.commands) == 0 {
		runtime.Gosched()
	}
	orch.RunFrame(1)

	row := <-rowCh
	require.NoError(t, <-errCh)
	assert.GreaterOrEqual(t, row, 0)

	active, err := reg.ActiveCount("Particle")
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

// TestWorkerScalingDeterminism checks that with gravity=0, damping=1,
// sub_step_count=1, and behavior writes confined to ax/ay, the same
// workload run with a different worker count produces bit-identical
// final positions (determinism under commutative aggregation).
func TestWorkerScalingDeterminism(t *testing.T) {
	const count = 200
	workerCounts := []int{0, 1, 2, 4, 8}

	var finalX, finalY [][]float32
	for _, workers := range workerCounts {
		orch, reg := newTestOrchestrator(t, workers, count)
		for i := 0; i < count; i++ {
			_, err := reg.Spawn("Particle", nil)
			require.NoError(t, err)
		}

		st := orch.Store()
		applyAccel := func() {
			for i := 0; i < st.N(); i++ {
				if st.Transform.IsActive(i) {
					st.RigidBody.AX[i] = float32(i%7) * 0.01
					st.RigidBody.AY[i] = float32(i%5) * 0.02
				}
			}
		}

		applyAccel()
		for frame := 0; frame < 20; frame++ {
			orch.RunFrame(1)
			applyAccel()
		}

		x := make([]float32, st.N())
		y := make([]float32, st.N())
		copy(x, st.Transform.X)
		copy(y, st.Transform.Y)
		finalX = append(finalX, x)
		finalY = append(finalY, y)
	}

	for i := 1; i < len(finalX); i++ {
		assert.Equal(t, finalX[0], finalX[i], "worker count %d should match worker count %d bit-for-bit", workerCounts[i], workerCounts[0])
		assert.Equal(t, finalY[0], finalY[i])
	}
}
