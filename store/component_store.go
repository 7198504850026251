package store

import "github.com/pthm-cable/swarmcore/components"

// ComponentStore is the full columnar arena for one simulation: the four
// built-in component column groups plus whatever user components were
// registered, all sized to the same N. Store (this package's other type)
// backs its user-component registry.
type ComponentStore struct {
	*Store

	Transform *components.Transform
	RigidBody *components.RigidBody
	Collider  *components.Collider
	Sprite    *components.SpriteRenderer
}

// NewComponentStore allocates every built-in column group plus an empty
// user-component registry, all sized to n rows.
func NewComponentStore(n int) *ComponentStore {
	return &ComponentStore{
		Store:     NewStore(n),
		Transform: components.NewTransform(n),
		RigidBody: components.NewRigidBody(n),
		Collider:  components.NewCollider(n),
		Sprite:    components.NewSpriteRenderer(n),
	}
}

// ResetRow zeroes every column (built-in and user-declared) at row i.
// Used by despawn, and relied on by tests asserting that spawn then
// despawn restores the pre-spawn byte image.
func (cs *ComponentStore) ResetRow(i int) {
	cs.Transform.Reset(i)
	cs.RigidBody.Reset(i)
	cs.Collider.Reset(i)
	cs.Sprite.Reset(i)
	cs.Store.ResetRow(i)
}
