// Package registry implements the entity-class table and the
// spawn/despawn pool. Entities are row indices into a
// store.ComponentStore; the registry only tracks which [start,end) range
// belongs to which class and drives reuse of freed rows.
package registry

import (
	"fmt"

	"github.com/pthm-cable/swarmcore/store"
)

// ErrPoolExhausted is returned by Spawn when no free row remains in the
// requested class's range.
var ErrPoolExhausted = fmt.Errorf("registry: pool exhausted")

// ErrUnknownClass is returned when a caller names a class that was never
// registered.
var ErrUnknownClass = fmt.Errorf("registry: unknown class")

// SpawnHook runs after a row is claimed, with the caller-supplied config.
type SpawnHook func(row int, config any)

// DespawnHook runs before a row is released back to the pool.
type DespawnHook func(row int)

// MouseProbeClass is the name of the reserved entity-type-0 class that
// tracks the pointer as a spatial element. Entity-type ids are assigned
// sequentially at registration, with 0 reserved for this probe entity.
const MouseProbeClass = "Mouse"

// Class describes one registered entity class: its row range, the set of
// component names it declares (for the external asset/script loader), and
// its spawn/despawn hooks.
type Class struct {
	Name       string
	Parent     string
	EntityType uint16
	Start, End int // [Start, End) row range

	// Components is the union of this class's own declared component names
	// and every ancestor's, collected by walking the Parent chain.
	Components []string

	OnSpawn   SpawnHook
	OnDespawn DespawnHook

	// ScriptRef/AssetRef are opaque references for the external asset
	// loader. The core never interprets them.
	ScriptRef string
	AssetRef  string
}

func (c *Class) count() int { return c.End - c.Start }

// Registry tracks entity classes and drives the spawn/despawn pool over a
// store.ComponentStore allocated to the registry's final total N.
type Registry struct {
	store    *store.ComponentStore
	classes  []*Class
	byName   map[string]*Class
	nextType uint16
	total    int
}

// NewRegistry creates an empty registry. The caller must still call
// RegisterClass for every entity class before allocating the
// store.ComponentStore sized to Registry.Total(), then attach it via
// Bind. Entity-type 0 is reserved up front for the Mouse probe class
// (count 1, so it occupies row 0).
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]*Class),
	}
	mouse := &Class{
		Name:       MouseProbeClass,
		EntityType: 0,
		Start:      0,
		End:        1,
	}
	r.classes = append(r.classes, mouse)
	r.byName[mouse.Name] = mouse
	r.nextType = 1
	r.total = 1
	return r
}

// Total returns the total row count across every registered class so far.
func (r *Registry) Total() int { return r.total }

// ClassDecl is the input to RegisterClass.
type ClassDecl struct {
	Count      int
	Parent     string // empty for a root class
	Components []string
	OnSpawn    SpawnHook
	OnDespawn  DespawnHook
	ScriptRef  string
	AssetRef   string
}

// RegisterClass appends a new entity class, extending the registry's
// total row count. If decl.Parent names a class that hasn't been
// registered yet, an empty (count 0) parent class is auto-registered
// first. Must be called before the backing store.ComponentStore is
// allocated and before the first frame starts.
func (r *Registry) RegisterClass(name string, decl ClassDecl) (*Class, error) {
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("registry: class %q already registered", name)
	}
	if decl.Parent != "" {
		if _, ok := r.byName[decl.Parent]; !ok {
			if _, err := r.RegisterClass(decl.Parent, ClassDecl{Count: 0}); err != nil {
				return nil, err
			}
		}
	}

	start := r.total
	end := start + decl.Count

	c := &Class{
		Name:       name,
		Parent:     decl.Parent,
		EntityType: r.nextType,
		Start:      start,
		End:        end,
		Components: r.collectComponents(decl.Parent, decl.Components),
		OnSpawn:    decl.OnSpawn,
		OnDespawn:  decl.OnDespawn,
		ScriptRef:  decl.ScriptRef,
		AssetRef:   decl.AssetRef,
	}
	r.nextType++
	r.total = end
	r.classes = append(r.classes, c)
	r.byName[name] = c
	return c, nil
}

// collectComponents walks the parent chain, unioning component names with
// the child's own declared set (parent's first, de-duplicated).
func (r *Registry) collectComponents(parent string, own []string) []string {
	var chain []string
	seen := make(map[string]bool)
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				chain = append(chain, n)
			}
		}
	}
	if parent != "" {
		if p, ok := r.byName[parent]; ok {
			add(p.Components)
		}
	}
	add(own)
	return chain
}

// Bind attaches the backing store, sized to at least Registry.Total()
// rows. Call this once, after every RegisterClass call and before the
// first frame starts.
func (r *Registry) Bind(s *store.ComponentStore) {
	r.store = s
	for _, c := range r.classes {
		for i := c.Start; i < c.End; i++ {
			s.EntityType[i] = c.EntityType
		}
	}
}

// Class returns the named class, or ErrUnknownClass.
func (r *Registry) Class(name string) (*Class, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	return c, nil
}

// Classes returns every registered class in registration order.
func (r *Registry) Classes() []*Class {
	return r.classes
}

// Spawn finds the lowest free row in class's range, claims it via atomic
// CAS (Invariant P-2: the CAS winner gets the slot even under concurrent
// spawns), invokes OnSpawn, and returns the row. Returns ErrPoolExhausted
// if the class's range is fully occupied.
func (r *Registry) Spawn(className string, config any) (int, error) {
	c, err := r.Class(className)
	if err != nil {
		return -1, err
	}
	for i := c.Start; i < c.End; i++ {
		if !r.store.Transform.TryActivate(i) {
			continue
		}
		if c.OnSpawn != nil {
			c.OnSpawn(i, config)
		}
		return i, nil
	}
	return -1, fmt.Errorf("%w: class %q", ErrPoolExhausted, className)
}

// Despawn invokes the owning class's OnDespawn hook, then zeroes row i
// via ComponentStore.ResetRow (which also clears Active) and so releases
// it back to the pool (Invariant E-3: the row, its columns, and its
// component membership remain valid; a later Spawn may reuse the same i).
func (r *Registry) Despawn(i int) {
	c := r.classAt(i)
	if c != nil && c.OnDespawn != nil {
		c.OnDespawn(i)
	}
	r.store.ResetRow(i)
}

// DespawnAll despawns every active row in the named class's range.
func (r *Registry) DespawnAll(className string) error {
	c, err := r.Class(className)
	if err != nil {
		return err
	}
	for i := c.Start; i < c.End; i++ {
		if r.store.Transform.IsActive(i) {
			r.Despawn(i)
		}
	}
	return nil
}

// ActiveCount returns the number of active rows in the named class's
// range (Invariant P-1: never exceeds the class's declared count).
func (r *Registry) ActiveCount(className string) (int, error) {
	c, err := r.Class(className)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := c.Start; i < c.End; i++ {
		if r.store.Transform.IsActive(i) {
			n++
		}
	}
	return n, nil
}

func (r *Registry) classAt(row int) *Class {
	for _, c := range r.classes {
		if row >= c.Start && row < c.End {
			return c
		}
	}
	return nil
}
