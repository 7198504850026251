// Package components defines the columnar layouts of the built-in
// component types. Every entity declares Transform; store.ComponentStore
// also allocates RigidBody, Collider and SpriteRenderer columns for every
// row, with no per-class opt-out.
package components

import "sync/atomic"

// Transform is carried by every entity. Active gates whether row i is
// occupied; it is read and written with atomic compare-and-swap so
// EntityRegistry.Spawn can race other spawners for a pooled row.
type Transform struct {
	Active    []atomic.Uint32
	X, Y      []float32
	Rotation  []float32
	PreviousX []float32
	PreviousY []float32
}

// NewTransform allocates a Transform column group sized to n rows.
func NewTransform(n int) *Transform {
	return &Transform{
		Active:    make([]atomic.Uint32, n),
		X:         make([]float32, n),
		Y:         make([]float32, n),
		Rotation:  make([]float32, n),
		PreviousX: make([]float32, n),
		PreviousY: make([]float32, n),
	}
}

// IsActive reports whether row i is occupied (Invariant E-1).
func (t *Transform) IsActive(i int) bool {
	return t.Active[i].Load() == 1
}

// TryActivate attempts to claim row i via CAS 0->1, returning whether this
// caller won the race (Invariant P-2).
func (t *Transform) TryActivate(i int) bool {
	return t.Active[i].CompareAndSwap(0, 1)
}

// Deactivate releases row i back to the pool.
func (t *Transform) Deactivate(i int) {
	t.Active[i].Store(0)
}

// Reset zeroes every field of row i, including Active. Used by despawn and
// by tests asserting a despawned row's byte-image is indistinguishable
// from a never-spawned one.
func (t *Transform) Reset(i int) {
	t.Active[i].Store(0)
	t.X[i] = 0
	t.Y[i] = 0
	t.Rotation[i] = 0
	t.PreviousX[i] = 0
	t.PreviousY[i] = 0
}
