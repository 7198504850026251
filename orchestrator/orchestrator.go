// Package orchestrator implements the per-tick phase sequence (input
// snapshot -> spatial -> behavior -> collision diff -> physics ->
// publish) driven across the job.Scheduler's worker pool, plus the
// control-command and input/render view contracts external callers use
// to drive a simulation. The phases run in the same fixed order every
// frame over an arbitrary BehaviorHost. The neighbor query, behavior
// dispatch and physics steps are fanned out across the worker pool and
// rejoined at a barrier before the next step starts; the grid rebuild,
// the collision diff and the pair-correction step run on the calling
// goroutine.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/swarmcore/behavior"
	"github.com/pthm-cable/swarmcore/config"
	"github.com/pthm-cable/swarmcore/diagnostics"
	"github.com/pthm-cable/swarmcore/job"
	"github.com/pthm-cable/swarmcore/physics"
	"github.com/pthm-cable/swarmcore/registry"
	"github.com/pthm-cable/swarmcore/spatial"
	"github.com/pthm-cable/swarmcore/store"
)

// InputSnapshot is the write-only, per-frame input record: mouse in
// world coordinates plus a flat set of mapped keys. FrameOrchestrator
// rewrites it before each frame; readers (tick
// functions) observe a stable value for the frame's duration since it is
// published behind an atomic pointer swap, never mutated in place.
type InputSnapshot struct {
	MouseX, MouseY float32
	MousePresent   bool
	Button0        bool
	Button1        bool
	Button2        bool
	Keys           map[string]bool
}

// PhaseFPS reports the most recent per-phase frame rate.
type PhaseFPS struct {
	Spatial   float64
	Behavior  float64
	Collision float64
	Physics   float64
	Total     float64
}

// command is a control message observed at the next phase boundary,
// carried over a buffered channel suited to low-rate control traffic.
type command struct {
	kind     commandKind
	class    string
	spawnCfg any
	result   chan spawnResult
}

type commandKind int

const (
	cmdSpawn commandKind = iota
	cmdDespawnAll
)

// spawnResult carries a spawn or despawn-all command's outcome back to
// the caller: Row is only meaningful for cmdSpawn.
type spawnResult struct {
	Row int
	Err error
}

// Orchestrator owns the arena (store, registry, spatial grid/view,
// physics core, job scheduler) for one simulation's lifetime: created
// before worker goroutines are used, torn down only after RunFrame stops
// being called.
type Orchestrator struct {
	log  *slog.Logger
	diag *diagnostics.Counters

	store    *store.ComponentStore
	registry *registry.Registry
	grid     *spatial.Grid
	view     *spatial.View
	core     *physics.Core
	host     *behavior.Host
	sched    *job.Scheduler
	queue    *job.Queue
	pairBuf  *physics.PairBuffer

	maxNeighbors int

	input atomic.Pointer[InputSnapshot]

	paused atomic.Bool
	frame  atomic.Int64

	fps atomic.Pointer[PhaseFPS]

	commands chan command
}

// New builds an Orchestrator from a bound registry and configuration.
// The registry must already have every class registered and Bind called
// against its backing store.
func New(cfg *config.Config, reg *registry.Registry, st *store.ComponentStore, host *behavior.Host, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	diag := diagnostics.NewCounters(log)

	o := &Orchestrator{
		log:          log,
		diag:         diag,
		store:        st,
		registry:     reg,
		grid:         spatial.NewGrid(float32(cfg.WorldWidth), float32(cfg.WorldHeight), float32(cfg.Spatial.CellSize), st.N(), diag),
		view:         spatial.NewView(st.N(), cfg.Spatial.MaxNeighbors),
		core:         physics.NewCore(st.N(), physicsConfigFrom(cfg)),
		host:         host,
		sched:        job.NewScheduler(cfg.Logic.NumberOfLogicWorkers, diag),
		queue:        job.NewQueue(st.N(), cfg.Logic.NumberOfEntitiesPerJob),
		pairBuf:      physics.NewPairBuffer(cfg.Physics.MaxCollisionPairs),
		maxNeighbors: cfg.Spatial.MaxNeighbors,
		commands:     make(chan command, 64),
	}
	// With zero logic workers the scheduler has already forced unbounded
	// main-thread stealing; the config only applies when workers exist.
	if cfg.Logic.NumberOfLogicWorkers > 0 {
		o.sched.MainThreadStealingEnabled = cfg.Logic.MainThreadJobStealing.Enabled
		o.sched.MaxJobsPerFrame = cfg.Logic.MainThreadJobStealing.MaxJobsPerFrame
	}
	o.input.Store(&InputSnapshot{Keys: map[string]bool{}})
	o.fps.Store(&PhaseFPS{})
	return o
}

func physicsConfigFrom(cfg *config.Config) physics.Config {
	return physics.Config{
		SubStepCount:              cfg.Physics.SubStepCount,
		BoundaryElasticity:        float32(cfg.Physics.BoundaryElasticity),
		CollisionResponseStrength: float32(cfg.Physics.CollisionResponseStrength),
		VerletDamping:             float32(cfg.Physics.VerletDamping),
		MinSpeedForRotation:       float32(cfg.Physics.MinSpeedForRotation),
		GravityX:                  float32(cfg.Physics.Gravity.X),
		GravityY:                  float32(cfg.Physics.Gravity.Y),
		MaxCollisionPairs:         cfg.Physics.MaxCollisionPairs,
		WorldWidth:                float32(cfg.WorldWidth),
		WorldHeight:               float32(cfg.WorldHeight),
		MaxVelDefault:             100,
	}
}

// Diagnostics exposes the fault counters for external reporting.
func (o *Orchestrator) Diagnostics() *diagnostics.Counters { return o.diag }

// Store exposes the backing ComponentStore, e.g. for a renderer view
// consumer to read Transform/SpriteRenderer columns directly.
func (o *Orchestrator) Store() *store.ComponentStore { return o.store }

// UpdatePhysicsConfig applies a partial physics.* config change, honored
// at the next Integrate call.
func (o *Orchestrator) UpdatePhysicsConfig(cfg physics.Config) { o.core.UpdateConfig(cfg) }

// SetInput publishes a new input snapshot. Safe to call from any
// goroutine; RunFrame reads whatever was last published.
func (o *Orchestrator) SetInput(in InputSnapshot) { o.input.Store(&in) }

// Input returns the snapshot currently in effect for the running frame.
func (o *Orchestrator) Input() InputSnapshot { return *o.input.Load() }

// PhaseFPS returns the most recently measured per-phase frame rate.
func (o *Orchestrator) PhaseFPS() PhaseFPS { return *o.fps.Load() }

// FrameNumber returns the number of frames run so far.
func (o *Orchestrator) FrameNumber() int64 { return o.frame.Load() }

// SetMainThreadActive mirrors Scheduler.SetMainThreadActive: when the
// host window goes inactive, the main thread stops counting toward job
// stealing.
func (o *Orchestrator) SetMainThreadActive(active bool) { o.sched.SetMainThreadActive(active) }

// Pause/Resume/Quit are control commands, latched and observed at the
// next phase boundary: Pause simply stops RunFrame from advancing the
// simulation (RunFrame becomes a no-op until Resume). Quit is the
// caller's responsibility: stop calling RunFrame and tear down the
// Orchestrator.
func (o *Orchestrator) Pause()       { o.paused.Store(true) }
func (o *Orchestrator) Resume()      { o.paused.Store(false) }
func (o *Orchestrator) Paused() bool { return o.paused.Load() }

// Spawn enqueues a spawn command, applied at the start of the next
// RunFrame call. It blocks until that frame's command-drain step has run
// it, returning registry.ErrPoolExhausted if the class had no free row.
func (o *Orchestrator) Spawn(ctx context.Context, class string, cfg any) (int, error) {
	result := make(chan spawnResult, 1)
	cmd := command{kind: cmdSpawn, class: class, spawnCfg: cfg, result: result}
	select {
	case o.commands <- cmd:
	case <-ctx.Done():
		return -1, ctx.Err()
	}
	select {
	case r := <-result:
		return r.Row, r.Err
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// DespawnAll enqueues a despawn-all command for class, applied at the
// next phase boundary.
func (o *Orchestrator) DespawnAll(ctx context.Context, class string) error {
	result := make(chan spawnResult, 1)
	cmd := command{kind: cmdDespawnAll, class: class, result: result}
	select {
	case o.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case r := <-result:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drainCommands applies every queued control command before the frame's
// phases run.
func (o *Orchestrator) drainCommands() {
	for {
		select {
		case cmd := <-o.commands:
			switch cmd.kind {
			case cmdSpawn:
				row, err := o.registry.Spawn(cmd.class, cmd.spawnCfg)
				if errors.Is(err, registry.ErrPoolExhausted) {
					o.diag.Record(diagnostics.PoolExhausted, "spawn %q: %v", cmd.class, err)
				}
				cmd.result <- spawnResult{Row: row, Err: err}
			case cmdDespawnAll:
				cmd.result <- spawnResult{Err: o.registry.DespawnAll(cmd.class)}
			}
		default:
			return
		}
	}
}

// RunFrame advances the simulation by one frame. dtRatio is the caller's
// deltaTime normalized so 60 Hz == 1.0. Safe to call
// from a single driver goroutine only; the phases it dispatches fan out
// internally across the job scheduler's worker pool and rejoin at each
// barrier before RunFrame returns.
func (o *Orchestrator) RunFrame(dtRatio float32) {
	o.drainCommands()
	if o.paused.Load() {
		return
	}
	o.frame.Add(1)

	total := time.Now()

	spatialStart := time.Now()
	o.runSpatialPhase()
	spatialDur := time.Since(spatialStart)

	behaviorStart := time.Now()
	o.sched.RunPhase(o.queue, func(r job.Range) {
		o.host.Dispatch(r, o.store, o.view, dtRatio)
	})
	behaviorDur := time.Since(behaviorStart)

	collisionStart := time.Now()
	o.host.DiffCollisions(o.store, o.view)
	collisionDur := time.Since(collisionStart)

	physicsStart := time.Now()
	o.runPhysicsPhase(dtRatio)
	physicsDur := time.Since(physicsStart)

	o.fps.Store(&PhaseFPS{
		Spatial:   fpsFor(spatialDur),
		Behavior:  fpsFor(behaviorDur),
		Collision: fpsFor(collisionDur),
		Physics:   fpsFor(physicsDur),
		Total:     fpsFor(time.Since(total)),
	})
}

func fpsFor(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(time.Second) / float64(d)
}

// runSpatialPhase rebuilds the grid from the active set (single-threaded,
// since Grid.Insert mutates shared cell slices), then fans the neighbor
// query out across the job scheduler (each job range only ever writes
// its own rows' slots of the shared neighbor view).
func (o *Orchestrator) runSpatialPhase() {
	t := o.store.Transform
	o.grid.Clear()
	for i := 0; i < o.store.N(); i++ {
		if t.IsActive(i) {
			o.grid.Insert(int32(i), t.X[i], t.Y[i])
		}
	}

	k := o.maxNeighbors
	o.sched.RunPhase(o.queue, func(r job.Range) {
		scratch := make([]spatial.Neighbor, 0, k)
		coll := o.store.Collider
		for i := r.Start; i < r.End; i++ {
			if !t.IsActive(i) {
				continue
			}
			found := o.grid.FindNeighbors(int32(i), t.X[i], t.Y[i], coll.VisualRange[i], t.X, t.Y, k, scratch)
			o.view.Publish(i, found)
		}
	})
}

// runPhysicsPhase runs the Verlet integrate step once, then the
// sub-stepped boundary/pair-penetration constraint loop
// physics.subStepCount times, then the rotation-derive step.
func (o *Orchestrator) runPhysicsPhase(dtRatio float32) {
	o.sched.RunPhase(o.queue, func(r job.Range) {
		o.core.Integrate(r, o.store, dtRatio)
	})

	subSteps := o.core.Config().SubStepCount
	for s := 0; s < subSteps; s++ {
		o.sched.RunPhase(o.queue, func(r job.Range) {
			o.core.ResolveBoundary(r, o.store)
		})

		o.pairBuf.Reset()
		o.sched.RunPhase(o.queue, func(r job.Range) {
			o.core.DetectPairs(r, o.store, o.view, o.pairBuf)
		})
		// ApplyPairs writes arbitrary rows (not confined to a disjoint job
		// range), so it must run single-threaded.
		o.core.ApplyPairs(o.store, o.pairBuf)
	}

	o.sched.RunPhase(o.queue, func(r job.Range) {
		o.core.Derive(r, o.store)
	})
}

// Run drives RunFrame at the given tick interval until ctx is canceled.
// Canceling ctx simply stops scheduling new frames; any frame already in
// flight finishes its phases normally, since job.Scheduler.RunPhase
// always runs every claimed range to completion.
func (o *Orchestrator) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			dtRatio := float32(dt.Seconds() * 60)
			o.RunFrame(dtRatio)
		}
	}
}
