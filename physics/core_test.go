package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarmcore/job"
	"github.com/pthm-cable/swarmcore/spatial"
	"github.com/pthm-cable/swarmcore/store"
)

func newTwoBodyStore(x0, y0, x1, y1, radius float32) *store.ComponentStore {
	s := store.NewComponentStore(2)
	s.Transform.TryActivate(0)
	s.Transform.TryActivate(1)
	s.Transform.X[0], s.Transform.Y[0] = x0, y0
	s.Transform.PreviousX[0], s.Transform.PreviousY[0] = x0, y0
	s.Transform.X[1], s.Transform.Y[1] = x1, y1
	s.Transform.PreviousX[1], s.Transform.PreviousY[1] = x1, y1
	s.Collider.Radius[0] = radius
	s.Collider.Radius[1] = radius
	return s
}

func dist(s *store.ComponentStore, i, j int) float32 {
	dx := s.Transform.X[j] - s.Transform.X[i]
	dy := s.Transform.Y[j] - s.Transform.Y[i]
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

// runFrame performs one full frame's worth of PhysicsCore phases,
// single-threaded, following the Orchestrator's per-frame physics
// sequence: integrate once, then sub_step_count rounds of
// boundary+detect+apply, then derive. Unlike the Orchestrator, which
// publishes neighbor lists once per frame before the behavior phase, it
// rebuilds the grid and republishes neighbors at the start of every
// sub-step.
func runFrame(core *Core, s *store.ComponentStore, view *spatial.View, grid *spatial.Grid, buf *PairBuffer, k, cellSize int, worldW, worldH float32, dtRatio float32) {
	r := job.Range{Start: 0, End: s.N()}
	core.Integrate(r, s, dtRatio)

	cfg := core.Config()
	for step := 0; step < cfg.SubStepCount; step++ {
		grid.Clear()
		for i := 0; i < s.N(); i++ {
			if s.Transform.IsActive(i) {
				grid.Insert(int32(i), s.Transform.X[i], s.Transform.Y[i])
			}
		}
		for i := 0; i < s.N(); i++ {
			if !s.Transform.IsActive(i) {
				continue
			}
			neighbors := grid.FindNeighbors(int32(i), s.Transform.X[i], s.Transform.Y[i], s.Collider.VisualRange[i], s.Transform.X, s.Transform.Y, k, nil)
			view.Publish(i, neighbors)
		}

		core.ResolveBoundary(r, s)
		buf.Reset()
		core.DetectPairs(r, s, view, buf)
		core.ApplyPairs(s, buf)
	}
	core.Derive(r, s)
}

// TestTwoBodyHeadOn checks that two circles starting 10 apart with
// radius 6 each settle to a resting distance of 12.
func TestTwoBodyHeadOn(t *testing.T) {
	s := newTwoBodyStore(100, 100, 110, 100, 6)
	s.Collider.VisualRange[0] = 50
	s.Collider.VisualRange[1] = 50

	cfg := DefaultConfig(800, 600)
	cfg.SubStepCount = 4
	cfg.CollisionResponseStrength = 0.5
	core := NewCore(2, cfg)
	view := spatial.NewView(2, 8)
	grid := spatial.NewGrid(800, 600, 32, 2, nil)
	buf := NewPairBuffer(16)

	runFrame(core, s, view, grid, buf, 8, 32, 800, 600, 1)
	assert.InDelta(t, 12.0, dist(s, 0, 1), 0.5, "distance after one frame should approach 12")

	for i := 0; i < 3; i++ {
		runFrame(core, s, view, grid, buf, 8, 32, 800, 600, 1)
	}
	assert.InDelta(t, 12.0, dist(s, 0, 1), 0.01, "distance after 4 frames should converge to 12")
}

// TestFreeFallToFloor checks that an inelastic body under gravity settles
// at rest on the floor with zero residual velocity.
func TestFreeFallToFloor(t *testing.T) {
	s := store.NewComponentStore(1)
	s.Transform.TryActivate(0)
	s.Transform.X[0], s.Transform.Y[0] = 400, 10
	s.Transform.PreviousX[0], s.Transform.PreviousY[0] = 400, 10
	s.Collider.Radius[0] = 5
	s.Collider.VisualRange[0] = 0

	cfg := DefaultConfig(800, 600)
	cfg.GravityY = 0.5
	cfg.VerletDamping = 1
	cfg.BoundaryElasticity = 0
	cfg.SubStepCount = 1
	core := NewCore(1, cfg)
	view := spatial.NewView(1, 1)
	grid := spatial.NewGrid(800, 600, 32, 1, nil)
	buf := NewPairBuffer(4)

	for frame := 0; frame < 60; frame++ {
		runFrame(core, s, view, grid, buf, 1, 32, 800, 600, 1)
	}

	require.InDelta(t, 595, s.Transform.Y[0], 0.01)
	assert.InDelta(t, 0, s.RigidBody.VY[0], 0.01, "resting body should have zero vertical velocity")
}

// TestBouncingBall checks that a body dropped under gravity with partial
// elasticity bounces back up to a reduced apex height.
func TestBouncingBall(t *testing.T) {
	s := store.NewComponentStore(1)
	s.Transform.TryActivate(0)
	s.Transform.X[0], s.Transform.Y[0] = 400, 10
	s.Transform.PreviousX[0], s.Transform.PreviousY[0] = 400, 10
	s.Collider.Radius[0] = 5
	s.Collider.VisualRange[0] = 0

	cfg := DefaultConfig(800, 600)
	cfg.GravityY = 0.5
	cfg.VerletDamping = 1
	cfg.BoundaryElasticity = 0.8
	cfg.SubStepCount = 1
	core := NewCore(1, cfg)
	view := spatial.NewView(1, 1)
	grid := spatial.NewGrid(800, 600, 32, 1, nil)
	buf := NewPairBuffer(4)

	hitFloor := false
	apex := float32(-1)
	for frame := 0; frame < 400; frame++ {
		runFrame(core, s, view, grid, buf, 1, 32, 800, 600, 1)
		if !hitFloor && s.Transform.Y[0] >= 595 {
			hitFloor = true
			continue
		}
		if hitFloor {
			if apex < 0 || s.Transform.Y[0] < apex {
				apex = s.Transform.Y[0]
			}
			if s.RigidBody.VY[0] >= 0 && apex > 0 {
				break
			}
		}
	}

	require.True(t, hitFloor, "ball should have hit the floor within the simulated window")
	assert.GreaterOrEqual(t, apex, float32(60))
	assert.LessOrEqual(t, apex, float32(120))
}

// TestIntegrateRoundTripPreservesPosition checks the round-trip property:
// with gravity zero, damping 1, no neighbors, and zero acceleration,
// integrate-then-constraint preserves position to bit equality (a
// stationary body stays put).
func TestIntegrateRoundTripPreservesPosition(t *testing.T) {
	s := store.NewComponentStore(1)
	s.Transform.TryActivate(0)
	s.Transform.X[0], s.Transform.Y[0] = 321.5, 77.25
	s.Transform.PreviousX[0], s.Transform.PreviousY[0] = 321.5, 77.25
	s.Collider.Radius[0] = 5
	s.Collider.VisualRange[0] = 0

	cfg := DefaultConfig(800, 600)
	cfg.GravityX, cfg.GravityY = 0, 0
	cfg.VerletDamping = 1
	cfg.SubStepCount = 1
	core := NewCore(1, cfg)
	view := spatial.NewView(1, 1)
	grid := spatial.NewGrid(800, 600, 32, 1, nil)
	buf := NewPairBuffer(4)

	wantX, wantY := s.Transform.X[0], s.Transform.Y[0]
	for frame := 0; frame < 10; frame++ {
		runFrame(core, s, view, grid, buf, 1, 32, 800, 600, 1)
	}
	assert.Equal(t, wantX, s.Transform.X[0])
	assert.Equal(t, wantY, s.Transform.Y[0])
}

// TestApplyPairsCoincidentPairDisplacesByEpsilon checks the exactly-
// coincident branch: when two penetrating bodies sit at the same point,
// ApplyPairs must not feed d=0 through the normal (minDist-d)*strength
// correction, which would blow up as d approaches zero. Instead each
// body is nudged by the small fixed epsilon itself, so the total
// separation introduced is tiny and bounded regardless of the bodies'
// radii or CollisionResponseStrength.
func TestApplyPairsCoincidentPairDisplacesByEpsilon(t *testing.T) {
	s := newTwoBodyStore(400, 300, 400, 300, 20)

	cfg := DefaultConfig(800, 600)
	cfg.CollisionResponseStrength = 1
	core := NewCore(2, cfg)

	buf := NewPairBuffer(4)
	buf.Append(0, 1)
	core.ApplyPairs(s, buf)

	d := dist(s, 0, 1)
	assert.Greater(t, d, float32(0), "coincident pair must be pushed apart")
	assert.Less(t, d, float32(0.01), "epsilon displacement should be tiny, not scaled by minDist")
}
