package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarmcore/job"
	"github.com/pthm-cable/swarmcore/spatial"
	"github.com/pthm-cable/swarmcore/store"
)

func twoTouchingEntities() (*store.ComponentStore, *spatial.View) {
	s := store.NewComponentStore(2)
	s.Transform.TryActivate(0)
	s.Transform.TryActivate(1)
	s.Transform.X[0], s.Transform.Y[0] = 0, 0
	s.Transform.X[1], s.Transform.Y[1] = 5, 0
	s.Collider.Radius[0] = 4
	s.Collider.Radius[1] = 4
	s.Collider.VisualRange[0] = 50
	s.Collider.VisualRange[1] = 50

	view := spatial.NewView(2, 4)
	view.Publish(0, []spatial.Neighbor{{ID: 1, DistSq: 25}})
	view.Publish(1, []spatial.Neighbor{{ID: 0, DistSq: 25}})
	return s, view
}

// TestDispatchCallsTickOnlyForRegisteredTypes checks that Dispatch skips
// inactive rows and entity types with no registered tick function.
func TestDispatchCallsTickOnlyForRegisteredTypes(t *testing.T) {
	s := store.NewComponentStore(3)
	s.Transform.TryActivate(0)
	s.Transform.TryActivate(2)
	s.EntityType[0] = 1
	s.EntityType[2] = 2

	h := NewHost()
	var calledRows []int
	h.RegisterTick(1, func(row int, dtRatio float32, neighbors NeighborView) {
		calledRows = append(calledRows, row)
	})

	view := spatial.NewView(3, 1)
	h.Dispatch(job.Range{Start: 0, End: 3}, s, view, 1)

	assert.Equal(t, []int{0}, calledRows, "only the active row with a registered tick for its type should fire")
}

// TestDiffCollisionsFiresEnterThenStayThenExit checks that a pair which
// starts overlapping fires OnEnter once, OnStay on subsequent frames
// while still overlapping, and OnExit the frame it separates.
func TestDiffCollisionsFiresEnterThenStayThenExit(t *testing.T) {
	s, view := twoTouchingEntities()
	s.EntityType[0] = 1
	s.EntityType[1] = 1

	var events []string
	h := NewHost()
	h.RegisterCollisionHooks(1, CollisionHooks{
		OnEnter: func(self, other int) { events = append(events, "enter") },
		OnStay:  func(self, other int) { events = append(events, "stay") },
		OnExit:  func(self, other int) { events = append(events, "exit") },
	})

	h.DiffCollisions(s, view)
	require.Equal(t, []string{"enter", "enter"}, events, "both members of the pair should see OnEnter on the first overlapping frame")

	events = nil
	h.DiffCollisions(s, view)
	assert.Equal(t, []string{"stay", "stay"}, events, "an unchanged overlapping pair should see OnStay")

	events = nil
	emptyView := spatial.NewView(2, 4)
	h.DiffCollisions(s, emptyView)
	assert.Equal(t, []string{"exit", "exit"}, events, "a pair that stops overlapping should see OnExit")
}

// TestDiffCollisionsIgnoresInactiveRows ensures a despawned row never
// participates in a collision pair even if it's still present in a stale
// neighbor list.
func TestDiffCollisionsIgnoresInactiveRows(t *testing.T) {
	s, view := twoTouchingEntities()
	s.EntityType[0] = 1
	s.EntityType[1] = 1
	s.Transform.Deactivate(1)

	var events []string
	h := NewHost()
	h.RegisterCollisionHooks(1, CollisionHooks{
		OnEnter: func(self, other int) { events = append(events, "enter") },
	})
	h.DiffCollisions(s, view)
	assert.Empty(t, events, "a pair with a despawned member must not fire collision callbacks")
}
