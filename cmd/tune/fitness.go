package main

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/swarmcore/behavior"
	"github.com/pthm-cable/swarmcore/config"
	"github.com/pthm-cable/swarmcore/orchestrator"
	"github.com/pthm-cable/swarmcore/registry"
	"github.com/pthm-cable/swarmcore/store"
)

// Evaluator runs a short headless simulation under a candidate config and
// scores it by how close the resulting mean neighbor count lands to the
// target. The count is a brute-force scan with a fixed visual range, so
// cellSize and maxNeighbors do not cap it; the candidate config reaches
// it only through how the simulated frames move the particles.
type Evaluator struct {
	params          *ParamVector
	entities        int
	frames          int
	targetNeighbors float64
}

const particleVisualRange = 40

// Evaluate builds a fresh store+registry+orchestrator under cfg, spawns
// Evaluator.entities particles at random positions, runs Evaluator.frames
// frames, and returns |mean_neighbor_count - target|.
func (e *Evaluator) Evaluate(cfg *config.Config) float64 {
	reg := registry.NewRegistry()
	_, err := reg.RegisterClass("Particle", registry.ClassDecl{Count: e.entities})
	if err != nil {
		return math.Inf(1)
	}

	st := store.NewComponentStore(reg.Total())
	reg.Bind(st)
	st.Freeze()

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < reg.Total(); i++ {
		if !st.Transform.TryActivate(i) {
			continue
		}
		st.Transform.X[i] = rng.Float32() * float32(cfg.WorldWidth)
		st.Transform.Y[i] = rng.Float32() * float32(cfg.WorldHeight)
		st.Transform.PreviousX[i] = st.Transform.X[i]
		st.Transform.PreviousY[i] = st.Transform.Y[i]
		st.Collider.Radius[i] = 3
		st.Collider.VisualRange[i] = particleVisualRange
		st.RigidBody.MaxVel[i] = 2
	}

	host := behavior.NewHost()
	orch := orchestrator.New(cfg, reg, st, host, nil)

	for f := 0; f < e.frames; f++ {
		orch.RunFrame(1)
	}

	total := 0
	count := 0
	for i := 0; i < st.N(); i++ {
		if !st.Transform.IsActive(i) {
			continue
		}
		count++
		total += e.neighborCountAfterFrame(orch, i)
	}
	if count == 0 {
		return math.Inf(1)
	}
	mean := float64(total) / float64(count)
	return math.Abs(mean - e.targetNeighbors)
}

// neighborCountAfterFrame counts the active rows within
// particleVisualRange of row i at their current positions via a
// brute-force scan, since the orchestrator doesn't expose its internal
// spatial.View to callers outside the phase pipeline. The count is not
// capped at maxNeighbors.
func (e *Evaluator) neighborCountAfterFrame(orch *orchestrator.Orchestrator, i int) int {
	st := orch.Store()
	n := 0
	visSq := float32(particleVisualRange * particleVisualRange)
	for j := 0; j < st.N(); j++ {
		if j == i || !st.Transform.IsActive(j) {
			continue
		}
		dx := st.Transform.X[j] - st.Transform.X[i]
		dy := st.Transform.Y[j] - st.Transform.Y[i]
		if dx*dx+dy*dy < visSq {
			n++
		}
	}
	return n
}
