package physics

import "sync/atomic"

// Config holds the tunable physics.* parameters. Partial updates during
// runtime are applied at the next integrate step: callers
// build a full replacement Config (copy-then-mutate) and call
// Core.UpdateConfig, which swaps an atomic pointer — no integrate step
// ever observes a half-written Config.
type Config struct {
	SubStepCount              int
	BoundaryElasticity        float32
	CollisionResponseStrength float32
	VerletDamping             float32
	MinSpeedForRotation       float32
	GravityX, GravityY        float32
	MaxCollisionPairs         int
	WorldWidth, WorldHeight   float32

	// MaxVelDefault is the velocity clamp applied when an entity's own
	// RigidBody.MaxVel is <= 0.
	MaxVelDefault float32
}

// DefaultConfig returns the default tunable values.
func DefaultConfig(worldWidth, worldHeight float32) Config {
	return Config{
		SubStepCount:              4,
		BoundaryElasticity:        0.8,
		CollisionResponseStrength: 0.5,
		VerletDamping:             0.995,
		MinSpeedForRotation:       0.1,
		MaxCollisionPairs:         10000,
		WorldWidth:                worldWidth,
		WorldHeight:               worldHeight,
		MaxVelDefault:             100,
	}
}

// configBox lets Core hold a Config behind an atomic pointer for
// lock-free, allocation-free runtime updates.
type configBox struct {
	ptr atomic.Pointer[Config]
}

func newConfigBox(cfg Config) *configBox {
	b := &configBox{}
	c := cfg
	b.ptr.Store(&c)
	return b
}

func (b *configBox) load() *Config { return b.ptr.Load() }

func (b *configBox) store(cfg Config) {
	c := cfg
	b.ptr.Store(&c)
}
