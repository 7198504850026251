// Package store implements the ComponentStore: a Structure-of-Arrays
// column arena shared across worker goroutines. Every registered
// component's columns are sized to exactly N = total entity count, and row
// index equals entity index for every component an entity declares
// (dense allocation).
//
// Registration happens once at startup (NewStore + RegisterComponent
// calls). Calling Freeze locks the component set; after that, the store
// only hands out read/write views into already-allocated columns, which is
// what makes the per-frame hot path allocation-free.
package store

import "sync"

// FieldKind is the primitive width of a user-component field.
type FieldKind int

const (
	FieldF32 FieldKind = iota
	FieldU8
	FieldU16
	FieldU32
)

// byteWidth returns the size in bytes of one element of the given kind.
func (k FieldKind) byteWidth() int {
	switch k {
	case FieldF32, FieldU32:
		return 4
	case FieldU16:
		return 2
	case FieldU8:
		return 1
	default:
		return 0
	}
}

// FieldSpec names one column of a user-declared component.
type FieldSpec struct {
	Name string
	Kind FieldKind
}

// column is the typed backing storage for one user-declared field.
type column struct {
	kind FieldKind
	f32  []float32
	u8   []uint8
	u16  []uint16
	u32  []uint32
}

func newColumn(kind FieldKind, n int) *column {
	c := &column{kind: kind}
	switch kind {
	case FieldF32:
		c.f32 = make([]float32, n)
	case FieldU8:
		c.u8 = make([]uint8, n)
	case FieldU16:
		c.u16 = make([]uint16, n)
	case FieldU32:
		c.u32 = make([]uint32, n)
	}
	return c
}

func (c *column) reset(i int) {
	switch c.kind {
	case FieldF32:
		c.f32[i] = 0
	case FieldU8:
		c.u8[i] = 0
	case FieldU16:
		c.u16[i] = 0
	case FieldU32:
		c.u32[i] = 0
	}
}

// customComponent is a user-declared component: a named set of columns,
// all sized to N.
type customComponent struct {
	fields []FieldSpec
	byName map[string]*column
}

// Store owns EntityType and every user-declared column for the lifetime
// of the process; the built-in columns live beside it in ComponentStore.
// It is created once, before the orchestrator is built and before any
// worker goroutine runs.
type Store struct {
	n      int
	frozen bool

	mu     sync.Mutex // registration-time only; never touched post-Freeze
	custom map[string]*customComponent
	order  []string // registration order, for GetBufferSize and iteration

	EntityType []uint16
}

// NewStore creates an empty store with capacity for n rows. Built-in
// component columns (Transform, RigidBody, Collider, SpriteRenderer) are
// allocated by NewComponentStore for all n rows; Store itself only owns
// EntityType (every entity has one) and whatever user components get
// registered.
func NewStore(n int) *Store {
	return &Store{
		n:          n,
		custom:     make(map[string]*customComponent),
		EntityType: make([]uint16, n),
	}
}

// N returns the total row count.
func (s *Store) N() int { return s.n }

// Freeze locks the registered component set. The caller wiring the
// simulation calls it once registration is done, before the first frame
// starts; the set stays frozen for the lifetime of the run.
func (s *Store) Freeze() { s.frozen = true }

// Frozen reports whether the component set is locked.
func (s *Store) Frozen() bool { return s.frozen }

// RegisterComponent declares a new user component with the given named
// fields. Must be called before Freeze; returns ErrAlreadyFrozen otherwise.
func (s *Store) RegisterComponent(name string, fields ...FieldSpec) error {
	if s.frozen {
		return ErrAlreadyFrozen
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cc := &customComponent{
		fields: fields,
		byName: make(map[string]*column, len(fields)),
	}
	for _, f := range fields {
		cc.byName[f.Name] = newColumn(f.Kind, s.n)
	}
	if _, exists := s.custom[name]; !exists {
		s.order = append(s.order, name)
	}
	s.custom[name] = cc
	return nil
}

// HasComponent reports whether name was registered.
func (s *Store) HasComponent(name string) bool {
	_, ok := s.custom[name]
	return ok
}

// F32Column returns the float32 column for component/field, or an error if
// the component is unknown, the field is unknown, or the field is not f32.
func (s *Store) F32Column(component, field string) ([]float32, error) {
	col, err := s.lookup(component, field)
	if err != nil {
		return nil, err
	}
	if col.kind != FieldF32 {
		return nil, fieldKindMismatch(component, field)
	}
	return col.f32, nil
}

// U8Column returns the uint8 column for component/field.
func (s *Store) U8Column(component, field string) ([]uint8, error) {
	col, err := s.lookup(component, field)
	if err != nil {
		return nil, err
	}
	if col.kind != FieldU8 {
		return nil, fieldKindMismatch(component, field)
	}
	return col.u8, nil
}

// U16Column returns the uint16 column for component/field.
func (s *Store) U16Column(component, field string) ([]uint16, error) {
	col, err := s.lookup(component, field)
	if err != nil {
		return nil, err
	}
	if col.kind != FieldU16 {
		return nil, fieldKindMismatch(component, field)
	}
	return col.u16, nil
}

// U32Column returns the uint32 column for component/field.
func (s *Store) U32Column(component, field string) ([]uint32, error) {
	col, err := s.lookup(component, field)
	if err != nil {
		return nil, err
	}
	if col.kind != FieldU32 {
		return nil, fieldKindMismatch(component, field)
	}
	return col.u32, nil
}

func (s *Store) lookup(component, field string) (*column, error) {
	cc, ok := s.custom[component]
	if !ok {
		return nil, unknownComponent(component)
	}
	col, ok := cc.byName[field]
	if !ok {
		return nil, unknownField(component, field)
	}
	return col, nil
}

// CheckRow returns ErrIndexOutOfRange if i is not a valid row for this
// store's capacity.
func (s *Store) CheckRow(i int) error {
	if i < 0 || i >= s.n {
		return indexOutOfRange(i, s.n)
	}
	return nil
}

// ResetRow zeroes every user-declared column at row i. Built-in components
// are reset by their own Reset(i) methods (called alongside this by
// ComponentStore.ResetRow, which EntityRegistry.Despawn uses).
func (s *Store) ResetRow(i int) {
	// EntityType is constant for the process lifetime (Invariant E-2) and is
	// deliberately left untouched here.
	for _, name := range s.order {
		cc := s.custom[name]
		for _, f := range cc.fields {
			cc.byName[f.Name].reset(i)
		}
	}
}

// GetBufferSize returns the exact byte requirement for every registered
// user component at capacity n.
func (s *Store) GetBufferSize(n int) int {
	total := 0
	for _, name := range s.order {
		cc := s.custom[name]
		for _, f := range cc.fields {
			total += f.Kind.byteWidth() * n
		}
	}
	return total
}
