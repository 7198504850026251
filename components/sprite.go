package components

// SpriteRenderer holds the fields published read-only to the external
// renderer each frame. The core never draws anything; it only maintains
// these columns.
type SpriteRenderer struct {
	Tint          []uint32
	Alpha         []float32
	ScaleX        []float32
	ScaleY        []float32
	RenderVisible []uint8
	IsItOnScreen  []uint8
	ZOffset       []float32
	RenderDirty   []uint8
}

// NewSpriteRenderer allocates a SpriteRenderer column group sized to n rows.
func NewSpriteRenderer(n int) *SpriteRenderer {
	return &SpriteRenderer{
		Tint:          make([]uint32, n),
		Alpha:         make([]float32, n),
		ScaleX:        make([]float32, n),
		ScaleY:        make([]float32, n),
		RenderVisible: make([]uint8, n),
		IsItOnScreen:  make([]uint8, n),
		ZOffset:       make([]float32, n),
		RenderDirty:   make([]uint8, n),
	}
}

// Reset zeroes row i.
func (s *SpriteRenderer) Reset(i int) {
	s.Tint[i] = 0
	s.Alpha[i] = 0
	s.ScaleX[i], s.ScaleY[i] = 0, 0
	s.RenderVisible[i] = 0
	s.IsItOnScreen[i] = 0
	s.ZOffset[i] = 0
	s.RenderDirty[i] = 0
}
