package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSpawnDespawnIdempotence checks the idempotence property: spawning
// with no config beyond defaults, writing a few fields, then despawning
// (which resets the row via ResetRow, as EntityRegistry.Despawn does)
// returns the store to its pre-spawn byte image.
func TestSpawnDespawnIdempotence(t *testing.T) {
	cs := NewComponentStore(4)
	require.NoError(t, cs.RegisterComponent("Tag", FieldSpec{Name: "value", Kind: FieldU32}))
	cs.Freeze()

	row := 2
	before := snapshotRow(t, cs, row)

	require.True(t, cs.Transform.TryActivate(row))
	cs.Transform.X[row] = 12.5
	cs.Transform.Y[row] = -3.25
	cs.RigidBody.VX[row] = 1
	cs.Collider.Radius[row] = 6
	cs.Sprite.Tint[row] = 0xFF00FFFF
	tag, err := cs.U32Column("Tag", "value")
	require.NoError(t, err)
	tag[row] = 7

	cs.ResetRow(row)
	cs.Transform.Deactivate(row)

	after := snapshotRow(t, cs, row)
	assert.Equal(t, before, after, "row should return to its pre-spawn byte image after despawn")
}

type rowSnapshot struct {
	active       uint32
	x, y, rot    float32
	prevX, prevY float32
	vx, vy       float32
	ax, ay       float32
	radius       float32
	tint         uint32
	tag          uint32
}

func snapshotRow(t *testing.T, cs *ComponentStore, i int) rowSnapshot {
	t.Helper()
	tag, err := cs.U32Column("Tag", "value")
	require.NoError(t, err)
	return rowSnapshot{
		active: cs.Transform.Active[i].Load(),
		x:      cs.Transform.X[i], y: cs.Transform.Y[i], rot: cs.Transform.Rotation[i],
		prevX: cs.Transform.PreviousX[i], prevY: cs.Transform.PreviousY[i],
		vx: cs.RigidBody.VX[i], vy: cs.RigidBody.VY[i], ax: cs.RigidBody.AX[i], ay: cs.RigidBody.AY[i],
		radius: cs.Collider.Radius[i],
		tint:   cs.Sprite.Tint[i],
		tag:    tag[i],
	}
}

// TestResetRowLeavesEntityTypeUntouched covers Invariant E-2:
// entity_type[i] is constant for the process lifetime, so ResetRow must
// never touch it even though it zeroes every user-declared column.
func TestResetRowLeavesEntityTypeUntouched(t *testing.T) {
	cs := NewComponentStore(2)
	require.NoError(t, cs.RegisterComponent("Tag", FieldSpec{Name: "value", Kind: FieldU32}))
	cs.Freeze()

	cs.EntityType[0] = 5
	cs.ResetRow(0)
	assert.Equal(t, uint16(5), cs.EntityType[0])
}
