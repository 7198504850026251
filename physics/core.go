// Package physics implements a Verlet integrator with a sub-stepped
// constraint solver for world boundaries and pairwise penetration,
// driven from the neighbor lists the spatial phase publishes. Velocity
// is never stored as primary state; it's derived each step from the
// current and previous position.
package physics

import (
	"math"

	"github.com/pthm-cable/swarmcore/components"
	"github.com/pthm-cable/swarmcore/job"
	"github.com/pthm-cable/swarmcore/spatial"
	"github.com/pthm-cable/swarmcore/store"
)

// Core runs the per-frame Verlet integrate/resolve/derive sequence over a
// store.ComponentStore. One Core is shared read/write across every worker
// goroutine for the duration of a phase; callers are responsible for the
// job-range/barrier discipline that makes that safe.
type Core struct {
	cfg *configBox

	// collisionCount is physics-internal bookkeeping, incremented for both
	// members of a resolved penetrating pair; it isn't part of the public
	// component schema, so it lives here rather than in the store.
	collisionCount []int32
}

// NewCore allocates a Core for n rows with the given initial config.
func NewCore(n int, cfg Config) *Core {
	return &Core{
		cfg:            newConfigBox(cfg),
		collisionCount: make([]int32, n),
	}
}

// UpdateConfig atomically replaces the config. A partial update is
// honored starting at the next Integrate call.
func (c *Core) UpdateConfig(cfg Config) { c.cfg.store(cfg) }

// Config returns the config in effect right now.
func (c *Core) Config() Config { return *c.cfg.load() }

// CollisionCount returns row i's running penetration-resolution count.
func (c *Core) CollisionCount(i int) int32 { return c.collisionCount[i] }

// Integrate runs the Verlet position update over every active, non-static
// row in r. Safe to run across disjoint job ranges: every write is
// confined to row i.
func (c *Core) Integrate(r job.Range, s *store.ComponentStore, dtRatio float32) {
	cfg := c.cfg.load()
	t := s.Transform
	rb := s.RigidBody

	for i := r.Start; i < r.End; i++ {
		if !t.IsActive(i) || rb.Static[i] != 0 {
			continue
		}

		oldX, oldY := t.X[i], t.Y[i]
		dx := (oldX-t.PreviousX[i])*cfg.VerletDamping + cfg.GravityX*dtRatio*dtRatio + rb.AX[i]*dtRatio
		dy := (oldY-t.PreviousY[i])*cfg.VerletDamping + cfg.GravityY*dtRatio*dtRatio + rb.AY[i]*dtRatio

		maxVel := rb.MaxVel[i]
		if maxVel <= 0 {
			maxVel = cfg.MaxVelDefault
		}
		dx = clamp(dx, -maxVel, maxVel)
		dy = clamp(dy, -maxVel, maxVel)

		newX := oldX + dx
		newY := oldY + dy
		if math.IsNaN(float64(newX)) || math.IsNaN(float64(newY)) {
			// Degenerate config produced NaN; skip this entity for the
			// frame rather than propagate it.
			continue
		}

		t.X[i], t.Y[i] = newX, newY
		t.PreviousX[i], t.PreviousY[i] = oldX, oldY
		if dtRatio != 0 {
			rb.VX[i] = dx / dtRatio
			rb.VY[i] = dy / dtRatio
		}
		rb.AX[i] = 0
		rb.AY[i] = 0
	}
}

// effectiveRadius returns the boundary/penetration radius for row i:
// Collider.Radius for circles, half the larger box extent for boxes, so
// both shapes get a single scalar without disambiguating OBB math (open
// question resolved in DESIGN.md).
func effectiveRadius(coll *components.Collider, i int) float32 {
	if components.Shape(coll.Shape[i]) == components.ShapeBox {
		hw, hh := coll.Width[i]/2, coll.Height[i]/2
		if hw > hh {
			return hw
		}
		return hh
	}
	return coll.Radius[i]
}

// ResolveBoundary clamps position into [radius, world-radius] per axis
// over r, and rewrites the previous-position column so the next
// Integrate call derives a reflected velocity — bounce by rewriting
// history rather than negating a stored velocity. Safe across disjoint
// job ranges.
func (c *Core) ResolveBoundary(r job.Range, s *store.ComponentStore) {
	cfg := c.cfg.load()
	t := s.Transform
	rb := s.RigidBody
	coll := s.Collider

	for i := r.Start; i < r.End; i++ {
		if !t.IsActive(i) || rb.Static[i] != 0 {
			continue
		}
		radius := effectiveRadius(coll, i)

		if t.X[i] < radius {
			t.X[i] = radius
			t.PreviousX[i] = t.X[i] + (t.X[i]-t.PreviousX[i])*cfg.BoundaryElasticity
		} else if t.X[i] > cfg.WorldWidth-radius {
			t.X[i] = cfg.WorldWidth - radius
			t.PreviousX[i] = t.X[i] + (t.X[i]-t.PreviousX[i])*cfg.BoundaryElasticity
		}

		if t.Y[i] < radius {
			t.Y[i] = radius
			t.PreviousY[i] = t.Y[i] + (t.Y[i]-t.PreviousY[i])*cfg.BoundaryElasticity
		} else if t.Y[i] > cfg.WorldHeight-radius {
			t.Y[i] = cfg.WorldHeight - radius
			t.PreviousY[i] = t.Y[i] + (t.Y[i]-t.PreviousY[i])*cfg.BoundaryElasticity
		}
	}
}

// DetectPairs scans r's neighbor lists for penetrating candidate pairs
// and appends canonicalized (i<j) pairs to buf. Reads only; the only
// write is buf's atomic-indexed append, which is safe to call
// concurrently from disjoint job ranges even though a penetrating
// partner may live outside r.
func (c *Core) DetectPairs(r job.Range, s *store.ComponentStore, view *spatial.View, buf *PairBuffer) {
	t := s.Transform
	coll := s.Collider

	for i := r.Start; i < r.End; i++ {
		if !t.IsActive(i) {
			continue
		}
		radiusI := effectiveRadius(coll, i)
		count := view.Count(i)
		for k := 0; k < count; k++ {
			jID, _ := view.At(i, k)
			j := int(jID)
			if j <= i || !t.IsActive(j) {
				continue
			}
			minDist := radiusI + effectiveRadius(coll, j)
			dx := t.X[j] - t.X[i]
			dy := t.Y[j] - t.Y[i]
			d2 := dx*dx + dy*dy
			if d2 < minDist*minDist {
				buf.Append(int32(i), int32(j))
			}
		}
	}
}

// ApplyPairs processes every pair in buf serially, pushing each
// penetrating pair apart along their separating axis (or a deterministic
// pseudo-random direction when they're exactly coincident). Must run
// single-threaded: unlike DetectPairs, this writes positions for
// arbitrary rows, not just a disjoint job range.
func (c *Core) ApplyPairs(s *store.ComponentStore, buf *PairBuffer) {
	cfg := c.cfg.load()
	t := s.Transform
	coll := s.Collider

	n := buf.Len()
	for idx := 0; idx < n; idx++ {
		p := buf.Get(idx)
		i, j := int(p.I), int(p.J)
		if !t.IsActive(i) || !t.IsActive(j) {
			continue
		}

		minDist := effectiveRadius(coll, i) + effectiveRadius(coll, j)
		dx := t.X[j] - t.X[i]
		dy := t.Y[j] - t.Y[i]
		d2 := dx*dx + dy*dy
		if d2 >= minDist*minDist {
			continue // already resolved by an earlier pair this sub-step
		}

		trigger := coll.IsTrigger[i] != 0 || coll.IsTrigger[j] != 0
		if trigger {
			// Triggers participate in detection and fire collision
			// callbacks elsewhere, but skip positional correction.
			continue
		}

		d := float32(math.Sqrt(float64(d2)))
		if d == 0 {
			// Exactly coincident pair: there's no separating axis to push
			// along, so nudge each body by a small fixed epsilon along a
			// deterministic direction instead of feeding d into the normal
			// penetration-depth formula, which would blow up as d -> 0.
			const epsilon = 0.001
			nx, ny := pseudoRandomDirection(i, j)
			t.X[i] -= nx * epsilon
			t.Y[i] -= ny * epsilon
			t.X[j] += nx * epsilon
			t.Y[j] += ny * epsilon
			t.PreviousX[i] -= nx * epsilon
			t.PreviousY[i] -= ny * epsilon
			t.PreviousX[j] += nx * epsilon
			t.PreviousY[j] += ny * epsilon
			c.collisionCount[i]++
			c.collisionCount[j]++
			continue
		}

		nx, ny := dx/d, dy/d
		correction := (minDist - d) * cfg.CollisionResponseStrength * 0.5
		t.X[i] -= nx * correction
		t.Y[i] -= ny * correction
		t.X[j] += nx * correction
		t.Y[j] += ny * correction
		// Shift the previous positions by the same amount so the
		// correction separates the pair without adding Verlet velocity.
		t.PreviousX[i] -= nx * correction
		t.PreviousY[i] -= ny * correction
		t.PreviousX[j] += nx * correction
		t.PreviousY[j] += ny * correction

		c.collisionCount[i]++
		c.collisionCount[j]++
	}
}

// pseudoRandomDirection returns a deterministic unit vector for a
// coincident pair (d == 0), derived from the pair's row indices so the
// push-apart direction is reproducible across runs and worker counts.
func pseudoRandomDirection(i, j int) (float32, float32) {
	h := uint32(i)*2654435761 ^ uint32(j)*40503
	angle := float64(h%3600) / 3600.0 * 2 * math.Pi
	return float32(math.Cos(angle)), float32(math.Sin(angle))
}

// Derive recomputes speed over r, and updates rotation only when speed
// exceeds min_speed_for_rotation (an anti-jitter hold below the
// threshold). Safe across disjoint job ranges.
func (c *Core) Derive(r job.Range, s *store.ComponentStore) {
	cfg := c.cfg.load()
	t := s.Transform
	rb := s.RigidBody

	for i := r.Start; i < r.End; i++ {
		if !t.IsActive(i) {
			continue
		}
		speed := float32(math.Sqrt(float64(rb.VX[i]*rb.VX[i] + rb.VY[i]*rb.VY[i])))
		if speed > cfg.MinSpeedForRotation {
			t.Rotation[i] = float32(math.Atan2(float64(rb.VY[i]), float64(rb.VX[i]))) + math.Pi/2
		}
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
