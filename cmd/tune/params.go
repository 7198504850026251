package main

import "github.com/pthm-cable/swarmcore/config"

// ParamSpec defines one optimizable config.* value.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// ParamVector is the spatial/physics search space: the grid cell size
// and neighbor cap that determine how many candidates FindNeighbors
// considers, plus the physics tunables that affect how tightly packed
// resting entities end up (which in turn affects how many fall within
// each other's visualRange).
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard spatial/physics search space.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "spatial.cellSize", Min: 16, Max: 256, Default: 64},
			{Name: "spatial.maxNeighbors", Min: 8, Max: 128, Default: 32},
			{Name: "physics.collisionResponseStrength", Min: 0, Max: 1, Default: 0.5},
			{Name: "physics.subStepCount", Min: 1, Max: 8, Default: 4},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int { return len(pv.Specs) }

// DefaultVector returns cfg's current values in the same order as Specs,
// falling back to each spec's Default when cfg carries a zero value.
func (pv *ParamVector) DefaultVector(cfg *config.Config) []float64 {
	return []float64{
		orDefault(float64(cfg.Spatial.CellSize), pv.Specs[0].Default),
		orDefault(float64(cfg.Spatial.MaxNeighbors), pv.Specs[1].Default),
		orDefault(cfg.Physics.CollisionResponseStrength, pv.Specs[2].Default),
		orDefault(float64(cfg.Physics.SubStepCount), pv.Specs[3].Default),
	}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Normalize converts raw parameter values to [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return out
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp restricts every value to its spec's [Min,Max].
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		out[i] = val
	}
	return out
}

// ApplyToConfig writes clamped values into cfg's spatial/physics fields.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Spatial.CellSize = int(clamped[0])
	cfg.Spatial.MaxNeighbors = int(clamped[1])
	cfg.Physics.CollisionResponseStrength = clamped[2]
	cfg.Physics.SubStepCount = int(clamped[3])
}
