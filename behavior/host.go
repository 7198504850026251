// Package behavior implements the per-frame dispatch of user
// tick(entity_index, dt_ratio) functions over job ranges, plus the
// collision enter/stay/exit diff that runs between the behavior and
// physics phases. Entity behavior is a flat registry of
// (entity_type -> fn(row, dt_ratio)) function pointers, with no dynamic
// inheritance — entity "class" is just a tag plus a behavior table,
// mirroring registry.Registry's name-keyed hook table but for
// per-entity-type behavior instead of per-class spawn/despawn hooks.
package behavior

import (
	"github.com/pthm-cable/swarmcore/components"
	"github.com/pthm-cable/swarmcore/job"
	"github.com/pthm-cable/swarmcore/spatial"
	"github.com/pthm-cable/swarmcore/store"
)

// NeighborView is the read-only neighbor/distance_sq column pair the
// spatial phase publishes each frame: exactly spatial.View's query
// surface, named as an interface here so this package doesn't import
// spatial just to accept it.
type NeighborView interface {
	Count(i int) int
	At(i, j int) (id int32, distSq float32)
}

// TickFunc is the user-supplied per-entity behavior function. It may read
// neighbors[i]/distance_sq[i] via the NeighborView and any component
// field of any entity, but must confine writes to row i's own fields.
type TickFunc func(row int, dtRatio float32, neighbors NeighborView)

// CollisionFunc is invoked with self and the other member of a collision
// pair, on enter, stay, or exit.
type CollisionFunc func(self, other int)

// CollisionHooks groups the three collision callbacks an entity type may
// register. Any of the three may be nil.
type CollisionHooks struct {
	OnEnter CollisionFunc
	OnStay  CollisionFunc
	OnExit  CollisionFunc
}

// pairKey canonicalizes a collision pair with the lower row first, so
// the same pair hashes identically regardless of discovery order.
type pairKey struct{ lo, hi int32 }

// Host dispatches tick() per job range and tracks the collision pair set
// across frames to derive enter/stay/exit events.
type Host struct {
	tickByType      map[uint16]TickFunc
	collisionByType map[uint16]CollisionHooks

	prevPairs map[pairKey]struct{}
	curPairs  map[pairKey]struct{}
}

// NewHost creates an empty behavior host. Registration (RegisterTick,
// RegisterCollisionHooks) happens at startup, before the first frame.
func NewHost() *Host {
	return &Host{
		tickByType:      make(map[uint16]TickFunc),
		collisionByType: make(map[uint16]CollisionHooks),
		prevPairs:       make(map[pairKey]struct{}),
		curPairs:        make(map[pairKey]struct{}),
	}
}

// RegisterTick binds a tick function to every entity of the given type.
func (h *Host) RegisterTick(entityType uint16, fn TickFunc) {
	h.tickByType[entityType] = fn
}

// RegisterCollisionHooks binds collision callbacks to every entity of the
// given type.
func (h *Host) RegisterCollisionHooks(entityType uint16, hooks CollisionHooks) {
	h.collisionByType[entityType] = hooks
}

// Dispatch runs tick(i, dtRatio) for every active row in r whose entity
// type has a registered tick function. Safe across disjoint job ranges:
// every call only touches row i and whatever read-only neighbor/store
// state the tick function itself consults.
func (h *Host) Dispatch(r job.Range, s *store.ComponentStore, neighbors NeighborView, dtRatio float32) {
	for i := r.Start; i < r.End; i++ {
		if !s.Transform.IsActive(i) {
			continue
		}
		fn, ok := h.tickByType[s.EntityType[i]]
		if !ok {
			continue
		}
		fn(i, dtRatio, neighbors)
	}
}

// effectiveRadius mirrors physics.effectiveRadius: Collider.Radius for
// circles, half the larger box extent for boxes.
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

// DiffCollisions scans every active row's published neighbor list for
// overlapping pairs — including trigger colliders, which skip physics'
// positional correction but still participate in collision callbacks —
// and fires enter/stay/exit on the owning entity types. Must run
// single-threaded, between the behavior and physics phases.
func (h *Host) DiffCollisions(s *store.ComponentStore, view *spatial.View) {
	for k := range h.curPairs {
		delete(h.curPairs, k)
	}

	t := s.Transform
	coll := s.Collider
	for i := 0; i < s.N(); i++ {
		if !t.IsActive(i) {
			continue
		}
		ri := effectiveRadius(coll, i)
		count := view.Count(i)
		for k := 0; k < count; k++ {
			jID, d2 := view.At(i, k)
			j := int(jID)
			if j <= i || !t.IsActive(j) {
				continue
			}
			minDist := ri + effectiveRadius(coll, j)
			if d2 < minDist*minDist {
				h.curPairs[pairKey{int32(i), int32(j)}] = struct{}{}
			}
		}
	}

	for pk := range h.curPairs {
		if _, existed := h.prevPairs[pk]; existed {
			h.fire(s, pk, CollisionHooks.stay)
		} else {
			h.fire(s, pk, CollisionHooks.enter)
		}
	}
	for pk := range h.prevPairs {
		if _, still := h.curPairs[pk]; !still {
			h.fire(s, pk, CollisionHooks.exit)
		}
	}

	h.prevPairs, h.curPairs = h.curPairs, h.prevPairs
}

// fire invokes pick(hooks) for both members of the pair, delivered with
// self/other swapped appropriately, each dispatched under the entity's
// own registered hooks. Delivery is synchronous, under the
// single-threaded diff, since Host owns collision-effect dispatch.
func (h *Host) fire(s *store.ComponentStore, pk pairKey, pick func(CollisionHooks) CollisionFunc) {
	i, j := int(pk.lo), int(pk.hi)
	if hooks, ok := h.collisionByType[s.EntityType[i]]; ok {
		if fn := pick(hooks); fn != nil {
			fn(i, j)
		}
	}
	if hooks, ok := h.collisionByType[s.EntityType[j]]; ok {
		if fn := pick(hooks); fn != nil {
			fn(j, i)
		}
	}
}

// stay/enter/exit are method-value selectors passed to fire so a single
// helper can drive all three callback kinds.
func (h CollisionHooks) stay() CollisionFunc  { return h.OnStay }
func (h CollisionHooks) enter() CollisionFunc { return h.OnEnter }
func (h CollisionHooks) exit() CollisionFunc  { return h.OnExit }
