// Command swarmdemo wires the simulation core into a runnable flock:
// entity classes, tick/collision hooks, and the frame-orchestrator run
// loop, optionally viewed through rendercli.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/swarmcore/behavior"
	"github.com/pthm-cable/swarmcore/config"
	"github.com/pthm-cable/swarmcore/diagnostics"
	"github.com/pthm-cable/swarmcore/orchestrator"
	"github.com/pthm-cable/swarmcore/registry"
	"github.com/pthm-cable/swarmcore/rendercli"
	"github.com/pthm-cable/swarmcore/store"
)

func main() {
	configPath := flag.String("config", "", "config YAML file (empty = embedded defaults)")
	count := flag.Int("count", 2000, "number of boids to spawn")
	headless := flag.Bool("headless", true, "run without a window")
	csvPath := flag.String("csv", "", "append per-frame diagnostics/FPS rows to this CSV file (empty = disabled)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	reg := registry.NewRegistry()
	if _, err := reg.RegisterClass("Boid", registry.ClassDecl{Count: *count}); err != nil {
		log.Error("register class failed", "error", err)
		os.Exit(1)
	}

	st := store.NewComponentStore(reg.Total())
	reg.Bind(st)
	st.Freeze()

	host := behavior.NewHost()
	boidType := mustClass(reg, "Boid").EntityType
	host.RegisterTick(boidType, flockTick(st, cfg))

	orch := orchestrator.New(cfg, reg, st, host, log)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < *count; i++ {
		if _, err := reg.Spawn("Boid", nil); err != nil {
			log.Warn("spawn failed", "error", err)
			break
		}
	}
	seedPositions(st, cfg, rng)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var rec *diagnostics.Recorder
	if *csvPath != "" {
		r, err := diagnostics.NewRecorder(*csvPath)
		if err != nil {
			log.Error("csv recorder failed", "error", err)
			os.Exit(1)
		}
		defer r.Close()
		rec = r
	}

	if *headless {
		runHeadless(ctx, orch, log, rec)
		return
	}
	runWindowed(ctx, orch, cfg, log, rec)
}

func mustClass(reg *registry.Registry, name string) *registry.Class {
	c, err := reg.Class(name)
	if err != nil {
		panic(err)
	}
	return c
}

// seedPositions scatters every active row uniformly over the world and
// gives it a random initial heading, since Spawn itself only claims a
// row — positions are this demo's concern, not the registry's.
func seedPositions(st *store.ComponentStore, cfg *config.Config, rng *rand.Rand) {
	t := st.Transform
	rb := st.RigidBody
	coll := st.Collider
	sp := st.Sprite
	for i := 0; i < st.N(); i++ {
		if !t.IsActive(i) {
			continue
		}
		t.X[i] = rng.Float32() * float32(cfg.WorldWidth)
		t.Y[i] = rng.Float32() * float32(cfg.WorldHeight)
		angle := rng.Float64() * 2 * math.Pi
		t.PreviousX[i] = t.X[i] - float32(math.Cos(angle))
		t.PreviousY[i] = t.Y[i] - float32(math.Sin(angle))

		coll.Shape[i] = 0
		coll.Radius[i] = 4
		coll.VisualRange[i] = float32(cfg.Spatial.CellSize) / 2
		coll.Restitution[i] = 0.5

		rb.MaxVel[i] = 3
		rb.MaxAcc[i] = 0.2

		sp.RenderVisible[i] = 1
		sp.Alpha[i] = 1
		sp.ScaleX[i], sp.ScaleY[i] = 1, 1
		sp.Tint[i] = 0x66CCFFFF
	}
}

// flockTick returns a TickFunc implementing boids separation/alignment/
// cohesion over the published neighbor list. It reads neighbors[i],
// distSq[i] and the listed neighbors' positions and velocities, and only
// writes row i's own RigidBody.AX/AY — no other row is written, so
// concurrent dispatch across rows stays safe.
func flockTick(st *store.ComponentStore, cfg *config.Config) behavior.TickFunc {
	const (
		sepWeight = 0.05
		aliWeight = 0.03
		cohWeight = 0.01
		sepDistSq = 64
	)
	_ = cfg

	return func(i int, dtRatio float32, neighbors behavior.NeighborView) {
		t := st.Transform
		rb := st.RigidBody

		var sepX, sepY, aliX, aliY, cohX, cohY float32
		count := neighbors.Count(i)
		n := float32(count)
		for k := 0; k < count; k++ {
			jID, d2 := neighbors.At(i, k)
			j := int(jID)
			dx := t.X[j] - t.X[i]
			dy := t.Y[j] - t.Y[i]
			if d2 < sepDistSq {
				sepX -= dx
				sepY -= dy
			}
			aliX += rb.VX[j]
			aliY += rb.VY[j]
			cohX += t.X[j]
			cohY += t.Y[j]
		}
		if n == 0 {
			return
		}
		aliX /= n
		aliY /= n
		cohX = cohX/n - t.X[i]
		cohY = cohY/n - t.Y[i]

		rb.AX[i] += sepX*sepWeight + aliX*aliWeight + cohX*cohWeight
		rb.AY[i] += sepY*sepWeight + aliY*aliWeight + cohY*cohWeight
	}
}

func runHeadless(ctx context.Context, orch *orchestrator.Orchestrator, log *slog.Logger, rec *diagnostics.Recorder) {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logDiagnostics(orch, log)
			return
		case <-ticker.C:
			orch.RunFrame(1)
			recordFrame(orch, rec)
			if orch.FrameNumber()%300 == 0 {
				logDiagnostics(orch, log)
			}
		}
	}
}

func runWindowed(ctx context.Context, orch *orchestrator.Orchestrator, cfg *config.Config, log *slog.Logger, rec *diagnostics.Recorder) {
	viewer := rendercli.NewViewer(orch, cfg.WorldWidth, cfg.WorldHeight, cfg.CanvasWidth, cfg.CanvasHeight)
	defer viewer.Close()

	for !viewer.ShouldClose() {
		select {
		case <-ctx.Done():
			logDiagnostics(orch, log)
			return
		default:
		}
		viewer.PublishInput()
		orch.RunFrame(1)
		recordFrame(orch, rec)
		viewer.Draw()
		if orch.FrameNumber()%300 == 0 {
			logDiagnostics(orch, log)
		}
	}
	logDiagnostics(orch, log)
}

// recordFrame appends one CSV row per frame when a recorder is active
// (the -csv flag), capturing the current fault counters and phase FPS.
func recordFrame(orch *orchestrator.Orchestrator, rec *diagnostics.Recorder) {
	if rec == nil {
		return
	}
	snap := orch.Diagnostics().Snapshot()
	fps := orch.PhaseFPS()
	rec.Append(diagnostics.FrameRecord{
		Frame:                orch.FrameNumber(),
		PoolExhausted:        snap.PoolExhausted,
		GridOverflow:         snap.GridOverflow,
		TransientWorkerFault: snap.TransientWorkerFault,
		FPSTotal:             fps.Total,
	})
}

func logDiagnostics(orch *orchestrator.Orchestrator, log *slog.Logger) {
	snap := orch.Diagnostics().Snapshot()
	fps := orch.PhaseFPS()
	log.Info("frame",
		"n", orch.FrameNumber(),
		"pool_exhausted", snap.PoolExhausted,
		"grid_overflow", snap.GridOverflow,
		"worker_faults", snap.TransientWorkerFault,
		"fps_total", fps.Total,
	)
}
