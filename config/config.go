// Package config loads and validates the simulation configuration:
// world/canvas dimensions, spatial-grid parameters, physics tunables, and
// job-scheduler sizing. Embedded YAML defaults are merged with an
// optional override file. The core packages (store, spatial, physics,
// job) never read the package-level global directly — they take an
// explicit *Config or its derived values as constructor arguments, so
// nothing in the hot path depends on global init order.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every recognized runtime option.
type Config struct {
	WorldWidth   int `yaml:"worldWidth"`
	WorldHeight  int `yaml:"worldHeight"`
	CanvasWidth  int `yaml:"canvasWidth"`
	CanvasHeight int `yaml:"canvasHeight"`

	Spatial SpatialConfig `yaml:"spatial"`
	Physics PhysicsConfig `yaml:"physics"`
	Logic   LogicConfig   `yaml:"logic"`
}

// SpatialConfig holds the uniform-grid parameters.
type SpatialConfig struct {
	CellSize     int `yaml:"cellSize"`
	MaxNeighbors int `yaml:"maxNeighbors"`
}

// Gravity is the constant force applied every integrate step.
type Gravity struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PhysicsConfig holds the Verlet/constraint tunables. Every field here
// except MaxCollisionPairs may be updated at runtime and is honored
// starting at the next integrate step; MaxCollisionPairs sizes the pair
// buffer once, when the orchestrator is built.
type PhysicsConfig struct {
	SubStepCount              int     `yaml:"subStepCount"`
	BoundaryElasticity        float64 `yaml:"boundaryElasticity"`
	CollisionResponseStrength float64 `yaml:"collisionResponseStrength"`
	VerletDamping             float64 `yaml:"verletDamping"`
	MinSpeedForRotation       float64 `yaml:"minSpeedForRotation"`
	Gravity                   Gravity `yaml:"gravity"`
	MaxCollisionPairs         int     `yaml:"maxCollisionPairs"`
}

// MainThreadJobStealing controls whether RunFrame's own calling goroutine
// also claims job ranges before waiting on the worker pool.
type MainThreadJobStealing struct {
	Enabled         bool `yaml:"enabled"`
	MaxJobsPerFrame int  `yaml:"maxJobsPerFrame"`
}

// LogicConfig holds the job-scheduler sizing.
// NumberOfLogicWorkers == 0 means main-thread-only.
type LogicConfig struct {
	NumberOfLogicWorkers   int                   `yaml:"numberOfLogicWorkers"`
	NumberOfEntitiesPerJob int                   `yaml:"numberOfEntitiesPerJob"`
	MainThreadJobStealing  MainThreadJobStealing `yaml:"mainThreadJobStealing"`
}

// global holds the process-wide configuration for callers that want a
// singleton (e.g. cmd/ binaries). The core runtime itself is always
// constructed with an explicit *Config, never by reading this global.
var global *Config

// Init loads configuration from path (embedded defaults only if path is
// empty) and stores it as the package-level singleton. Must be called
// before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load reads configuration from a YAML file, merging it over the
// embedded defaults (fields absent from path are left at their default
// value), then validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its recognized range, returning an
// error (fatal during init) naming the first violation found.
func (c *Config) Validate() error {
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("config: worldWidth/worldHeight must be positive")
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("config: canvasWidth/canvasHeight must be positive")
	}
	if c.Spatial.CellSize <= 0 {
		return fmt.Errorf("config: spatial.cellSize must be positive")
	}
	if c.Spatial.MaxNeighbors <= 0 {
		return fmt.Errorf("config: spatial.maxNeighbors must be positive")
	}
	if c.Physics.SubStepCount < 1 {
		return fmt.Errorf("config: physics.subStepCount must be >= 1")
	}
	if c.Physics.BoundaryElasticity < 0 || c.Physics.BoundaryElasticity > 1 {
		return fmt.Errorf("config: physics.boundaryElasticity must be in [0,1]")
	}
	if c.Physics.CollisionResponseStrength < 0 || c.Physics.CollisionResponseStrength > 1 {
		return fmt.Errorf("config: physics.collisionResponseStrength must be in [0,1]")
	}
	if c.Physics.VerletDamping < 0 || c.Physics.VerletDamping > 1 {
		return fmt.Errorf("config: physics.verletDamping must be in [0,1]")
	}
	if c.Physics.MinSpeedForRotation < 0 {
		return fmt.Errorf("config: physics.minSpeedForRotation must be >= 0")
	}
	if c.Physics.MaxCollisionPairs <= 0 {
		return fmt.Errorf("config: physics.maxCollisionPairs must be positive")
	}
	if c.Logic.NumberOfLogicWorkers < 0 {
		return fmt.Errorf("config: logic.numberOfLogicWorkers must be >= 0")
	}
	if c.Logic.NumberOfEntitiesPerJob <= 0 {
		return fmt.Errorf("config: logic.numberOfEntitiesPerJob must be positive")
	}
	return nil
}
