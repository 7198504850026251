package components

// RigidBody holds the Verlet-integrated dynamical state of an entity.
// Written only by PhysicsCore; behavior writes Ax/Ay to request a force.
type RigidBody struct {
	VX, VY   []float32
	AX, AY   []float32
	MaxVel   []float32
	MaxAcc   []float32
	Friction []float32
	Static   []uint8
}

// NewRigidBody allocates a RigidBody column group sized to n rows.
func NewRigidBody(n int) *RigidBody {
	return &RigidBody{
		VX:       make([]float32, n),
		VY:       make([]float32, n),
		AX:       make([]float32, n),
		AY:       make([]float32, n),
		MaxVel:   make([]float32, n),
		MaxAcc:   make([]float32, n),
		Friction: make([]float32, n),
		Static:   make([]uint8, n),
	}
}

// Reset zeroes row i.
func (r *RigidBody) Reset(i int) {
	r.VX[i], r.VY[i] = 0, 0
	r.AX[i], r.AY[i] = 0, 0
	r.MaxVel[i] = 0
	r.MaxAcc[i] = 0
	r.Friction[i] = 0
	r.Static[i] = 0
}
