// Package diagnostics implements an out-of-band counter channel for
// recoverable faults, including the tick panics that job.Scheduler
// isolates and records here. Nothing
// here ever unwinds across the phase barrier; fatal kinds are returned
// as plain errors for the orchestrator to act on.
package diagnostics

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Kind is a fault category.
type Kind int

const (
	// InvariantViolation is an impossible state (NaN in a position
	// column, capacity mismatch). Fatal.
	InvariantViolation Kind = iota
	// PoolExhausted is a spawn with no free row. Recoverable.
	PoolExhausted
	// ConfigInvalid is a config value out of range. Fatal during init.
	ConfigInvalid
	// GridOverflow is a cell that exceeded max_entities_per_cell during
	// rebuild. Recoverable.
	GridOverflow
	// TransientWorkerFault is a worker panic, isolated per job range: the
	// rest of that range is skipped for the phase and no row is
	// deactivated. Recoverable.
	TransientWorkerFault

	numKinds
)

func (k Kind) String() string {
	switch k {
	case InvariantViolation:
		return "invariant_violation"
	case PoolExhausted:
		return "pool_exhausted"
	case ConfigInvalid:
		return "config_invalid"
	case GridOverflow:
		return "grid_overflow"
	case TransientWorkerFault:
		return "transient_worker_fault"
	default:
		return "unknown"
	}
}

// Fatal reports whether a fault of this kind must abort the process
// rather than be counted and continued past.
func (k Kind) Fatal() bool {
	return k == InvariantViolation || k == ConfigInvalid
}

// Counters accumulates recoverable-fault counts across the lifetime of a
// run, one atomic counter per kind.
type Counters struct {
	counts [numKinds]atomic.Int64
	log    *slog.Logger
}

// NewCounters creates a zeroed counter set. log may be nil, in which case
// slog.Default() is used.
func NewCounters(log *slog.Logger) *Counters {
	if log == nil {
		log = slog.Default()
	}
	return &Counters{log: log}
}

// Record increments the counter for kind and logs it at warn level. Fatal
// kinds should be returned as errors instead of recorded here; Record
// panics if asked to record a fatal kind, since that would silently
// swallow a condition that must abort the process.
func (c *Counters) Record(kind Kind, format string, args ...any) {
	if kind.Fatal() {
		panic(fmt.Sprintf("diagnostics: Record called with fatal kind %s", kind))
	}
	c.counts[kind].Add(1)
	c.log.Warn("fault", "kind", kind.String(), "detail", fmt.Sprintf(format, args...))
}

// Snapshot is a point-in-time read of every counter.
type Snapshot struct {
	PoolExhausted        int64
	GridOverflow         int64
	TransientWorkerFault int64
}

// Snapshot returns the current counts.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		PoolExhausted:        c.counts[PoolExhausted].Load(),
		GridOverflow:         c.counts[GridOverflow].Load(),
		TransientWorkerFault: c.counts[TransientWorkerFault].Load(),
	}
}

// Fatal wraps an error as a fatal fault of the given kind, for the
// orchestrator to surface and abort on.
func Fatal(kind Kind, err error) error {
	return fmt.Errorf("%s: %w", kind, err)
}
