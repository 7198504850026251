// Package spatial implements a uniform 2D hash grid that is cleared and
// rebuilt every frame from the active entity set, then queried
// per-entity to produce bounded, by-index-sorted neighbor lists. The
// world is clamped to bounds rather than wrapped, and queries return at
// most K neighbors, collected in cell-scan order then sorted by ascending
// id.
package spatial

import (
	"math"

	"github.com/pthm-cable/swarmcore/diagnostics"
)

// Grid is a flat cols*rows array of per-cell entity-row lists. Clear cost
// is proportional to occupancy, not total cell count, via the
// occupied-cell index list.
type Grid struct {
	cellSize                float32
	cols, rows              int
	worldWidth, worldHeight float32
	maxPerCell              int

	cells      [][]int32
	inOccupied []bool
	occupied   []int

	diag *diagnostics.Counters
}

// NewGrid builds a grid covering [0,worldWidth) x [0,worldHeight), sizing
// max_entities_per_cell to max(32, min(256, 3*ceil(n/(cols*rows)))).
func NewGrid(worldWidth, worldHeight, cellSize float32, n int, diag *diagnostics.Counters) *Grid {
	cols := int(math.Ceil(float64(worldWidth / cellSize)))
	rows := int(math.Ceil(float64(worldHeight / cellSize)))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	perCell := 3 * int(math.Ceil(float64(n)/float64(cols*rows)))
	if perCell < 32 {
		perCell = 32
	}
	if perCell > 256 {
		perCell = 256
	}

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 8)
	}

	return &Grid{
		cellSize:    cellSize,
		cols:        cols,
		rows:        rows,
		worldWidth:  worldWidth,
		worldHeight: worldHeight,
		maxPerCell:  perCell,
		cells:       cells,
		inOccupied:  make([]bool, cols*rows),
		diag:        diag,
	}
}

// MaxEntitiesPerCell returns the configured per-cell capacity.
func (g *Grid) MaxEntitiesPerCell() int { return g.maxPerCell }

// Clear empties every occupied cell. Cost is O(occupied cells), not
// O(cols*rows).
func (g *Grid) Clear() {
	for _, idx := range g.occupied {
		g.cells[idx] = g.cells[idx][:0]
		g.inOccupied[idx] = false
	}
	g.occupied = g.occupied[:0]
}

// cellIndex clamps (x,y) to a valid flat cell index. Callers must have
// already rejected NaN and negative coordinates.
func (g *Grid) cellIndex(x, y float32) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)
	if col >= g.cols {
		col = g.cols - 1
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return row*g.cols + col
}

// Insert adds row to the grid at (x,y). NaN or negative coordinates are
// silently skipped. A cell at capacity drops the entity from this
// frame's grid and counts a GridOverflow fault — documented lossy
// behavior rather than a panic or unbounded growth.
func (g *Grid) Insert(row int32, x, y float32) {
	if math.IsNaN(float64(x)) || math.IsNaN(float64(y)) || x < 0 || y < 0 {
		return
	}
	idx := g.cellIndex(x, y)
	if len(g.cells[idx]) >= g.maxPerCell {
		if g.diag != nil {
			g.diag.Record(diagnostics.GridOverflow, "cell %d at capacity %d", idx, g.maxPerCell)
		}
		return
	}
	if !g.inOccupied[idx] {
		g.inOccupied[idx] = true
		g.occupied = append(g.occupied, idx)
	}
	g.cells[idx] = append(g.cells[idx], row)
}

// Neighbor is one entry of a per-entity neighbor list.
type Neighbor struct {
	ID     int32
	DistSq float32
}

// FindNeighbors appends up to k entries to dst: every grid-resident row
// other than self with 0 < distance² < visualRange², in cell-scan order,
// then sorted by ascending ID. A visualRange of 0 yields an empty list.
func (g *Grid) FindNeighbors(self int32, x, y, visualRange float32, posX, posY []float32, k int, dst []Neighbor) []Neighbor {
	dst = dst[:0]
	if visualRange <= 0 || math.IsNaN(float64(x)) || math.IsNaN(float64(y)) {
		return dst
	}

	cellRadius := int(math.Ceil(float64(visualRange / g.cellSize)))
	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)
	visSq := visualRange * visualRange

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}
			idx := row*g.cols + col
			for _, id := range g.cells[idx] {
				if id == self {
					continue
				}
				dx := posX[id] - x
				dy := posY[id] - y
				d2 := dx*dx + dy*dy
				if d2 > 0 && d2 < visSq {
					dst = append(dst, Neighbor{ID: id, DistSq: d2})
					if len(dst) >= k {
						insertionSortByID(dst)
						return dst
					}
				}
			}
		}
	}

	insertionSortByID(dst)
	return dst
}

// insertionSortByID sorts dst ascending by ID. Insertion sort beats a
// general sort's overhead for the short slices neighbor queries produce.
func insertionSortByID(dst []Neighbor) {
	for i := 1; i < len(dst); i++ {
		v := dst[i]
		j := i - 1
		for j >= 0 && dst[j].ID > v.ID {
			dst[j+1] = dst[j]
			j--
		}
		dst[j+1] = v
	}
}
