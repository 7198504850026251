package physics

import (
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/swarmcore/components"
)

// ZeroForces clears every row's accumulated Ax/Ay in one vectorized pass
// using gonum's blas32.Scal, rather than a per-row loop. Integrate
// already zeroes Ax/Ay for rows it actually advances, but inactive rows
// accumulate nothing to clear there; this full-width zero keeps pooled
// rows' force columns byte-identical to a freshly allocated store, and is
// cheap to vectorize since it touches every row unconditionally.
func ZeroForces(rb *components.RigidBody) {
	if len(rb.AX) == 0 {
		return
	}
	blas32.Scal(0, blas32.Vector{N: len(rb.AX), Inc: 1, Data: rb.AX})
	blas32.Scal(0, blas32.Vector{N: len(rb.AY), Inc: 1, Data: rb.AY})
}
