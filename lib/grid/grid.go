/*package grid describes the geometric partition that particle generation
runs over. The generation algorithms only consume the Partition interface,
so domain decomposition, ghost regions, and mesh geometry stay outside the
core: any collaborator that can enumerate its owned cells and report their
corners and measures can drive generation.*/
package grid

import (
	"fmt"

	"github.com/phil-mansfield/gotetra/render/geom"
)

// Partition is the contract between the generation algorithms and the
// geometry layer. A Partition owns a contiguous range of integer grid
// cells, enumerated by a dense cell-local id in [0, NumCells()).
type Partition interface {
	// NumCells returns the number of cells owned by the partition.
	NumCells() int
	// CellCoords returns the global integer coordinates of the cell with
	// a given cell-local id.
	CellCoords(cellID int) [3]int
	// Corners returns the physical coordinates of the low and high
	// corners of a cell.
	Corners(cell [3]int) (low, high [3]float64)
	// Measure returns the volume of a cell.
	Measure(cell [3]int) float64
	// ID returns a stable identifier of the partition, distinct across
	// the partitions of a decomposition. It is used to seed random
	// particle generation.
	ID() int
}

// Uniform is a Partition over a rectilinear block of cells with uniform
// spacing. The cell bounds are global integer coordinates; origin is the
// physical position of the low corner of the global cell (0, 0, 0).
type Uniform struct {
	g       *geom.Grid
	origin  [3]float64
	spacing [3]float64
	id      int
}

// NewUniform creates a Uniform partition over the given cell bounds.
func NewUniform(
	cells geom.CellBounds, origin, spacing [3]float64, id int,
) (*Uniform, error) {
	for d := 0; d < 3; d++ {
		if cells.Width[d] < 1 {
			return nil, fmt.Errorf(
				"A partition must own at least one cell per dimension, "+
					"but dimension %d has width %d.", d, cells.Width[d],
			)
		}
		if spacing[d] <= 0 {
			return nil, fmt.Errorf(
				"Cell spacing must be positive, but dimension %d has "+
					"spacing %g.", d, spacing[d],
			)
		}
	}
	if id < 0 {
		return nil, fmt.Errorf("Partition identifiers cannot be negative.")
	}

	return &Uniform{
		g:       geom.NewGrid(cells.Origin, cells.Width),
		origin:  origin,
		spacing: spacing,
		id:      id,
	}, nil
}

// NumCells returns the number of cells owned by the partition.
func (u *Uniform) NumCells() int { return u.g.Volume }

// Bounds returns the partition's cell bounds in global coordinates.
func (u *Uniform) Bounds() geom.CellBounds { return u.g.CellBounds }

// CellCoords returns the global coordinates of the cell with a given
// cell-local id.
func (u *Uniform) CellCoords(cellID int) [3]int {
	x, y, z := u.g.Coords(cellID)
	return [3]int{
		x + u.g.Origin[0], y + u.g.Origin[1], z + u.g.Origin[2],
	}
}

// CellID returns the cell-local id of a cell given its global coordinates
// and true, or false if the partition does not own the cell.
func (u *Uniform) CellID(cell [3]int) (int, bool) {
	return u.g.IdxCheck(cell[0], cell[1], cell[2])
}

// Corners returns the physical low and high corners of a cell.
func (u *Uniform) Corners(cell [3]int) (low, high [3]float64) {
	for d := 0; d < 3; d++ {
		low[d] = u.origin[d] + float64(cell[d])*u.spacing[d]
		high[d] = low[d] + u.spacing[d]
	}
	return low, high
}

// Measure returns the volume of a cell.
func (u *Uniform) Measure(cell [3]int) float64 {
	return u.spacing[0] * u.spacing[1] * u.spacing[2]
}

// ID returns the partition identifier.
func (u *Uniform) ID() int { return u.id }
