package spatial

// View holds the shared neighbor/distance columns published by the
// spatial phase each frame: two parallel flat buffers of stride 1+K,
// slot 0 the count, slots 1..=count the neighbor IDs / squared distances.
// It is a non-owning view of the store:
// invalidated and republished at the start of every spatial phase.
// BehaviorHost and PhysicsCore only ever read it.
type View struct {
	k          int
	neighbor   []int32
	distanceSq []float32
}

// NewView allocates a neighbor view for n rows with up to k neighbors
// each.
func NewView(n, k int) *View {
	stride := 1 + k
	return &View{
		k:          k,
		neighbor:   make([]int32, n*stride),
		distanceSq: make([]float32, n*stride),
	}
}

// K returns the configured max-neighbors cap.
func (v *View) K() int { return v.k }

func (v *View) stride() int { return 1 + v.k }

// Publish writes row i's neighbor list (already sorted and capped by the
// caller, typically Grid.FindNeighbors) into the shared columns.
func (v *View) Publish(i int, neighbors []Neighbor) {
	base := i * v.stride()
	count := len(neighbors)
	if count > v.k {
		count = v.k
	}
	v.neighbor[base] = int32(count)
	for j := 0; j < count; j++ {
		v.neighbor[base+1+j] = neighbors[j].ID
		v.distanceSq[base+1+j] = neighbors[j].DistSq
	}
}

// Count returns the number of neighbors published for row i.
func (v *View) Count(i int) int {
	return int(v.neighbor[i*v.stride()])
}

// At returns the ID and squared distance of row i's j'th neighbor (j is
// 0-indexed, j < Count(i)).
func (v *View) At(i, j int) (id int32, distSq float32) {
	base := i*v.stride() + 1 + j
	return v.neighbor[base], v.distanceSq[base]
}
