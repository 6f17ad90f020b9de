/*package populate fills particle containers from the cells of a grid
partition. Both placement policies fan out over the owned cells in
parallel: the uniform policy places one particle at the center of each
sub-cell of a per-cell sub-grid, and the random policy draws positions
from a deterministic per-cell random stream. Record-producing variants
pass every candidate to a caller-supplied Create function and compact the
accepted particles with an atomic counter; positions-only variants write
every candidate to its deterministic slot in a pre-sized position field.*/
package populate

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/parcel-sim/parcel/lib/grid"
	"github.com/parcel-sim/parcel/lib/soa"
)

// Create populates rec with every field of a candidate particle and
// reports whether the particle should be kept. pid is a candidate id that
// is unique within one generation run, x the candidate's position, and
// volume the measure associated with the particle (the cell measure
// divided by the number of candidates per cell). Create is called
// concurrently from many goroutines, one candidate at a time per
// goroutine, and must not retain rec.
type Create func(pid int, x [3]float64, volume float64, rec soa.Record) bool

// Uniform fills c with particles placed at the centers of a
// perDim×perDim×perDim sub-grid of every cell of part. Each candidate is
// offered to create; the accepted particles are compacted to the front of
// c in an unspecified order, and c is resized down to the accepted count,
// which is returned. If shrink is true the unused capacity left over from
// rejected candidates is reclaimed.
//
// The contents and size of c on entry are overwritten.
func Uniform(
	create Create, c soa.Container, perDim int, part grid.Partition,
	shrink bool,
) (int, error) {
	if create == nil {
		return 0, fmt.Errorf("A Create function is required.")
	}
	if perDim < 1 {
		return 0, fmt.Errorf(
			"The number of particles per cell dimension must be positive, "+
				"but %d was given.", perDim,
		)
	}

	nc := part.NumCells()
	ppc := perDim * perDim * perDim
	if err := c.Resize(nc * ppc); err != nil {
		return 0, err
	}

	var count atomic.Int64
	schema := c.Schema()
	forEachCell(nc, func(lo, hi int) {
		rec := schema.NewRecord()
		for cell := lo; cell < hi; cell++ {
			coords := part.CellCoords(cell)
			low, high := part.Corners(coords)
			pv := part.Measure(coords) / float64(ppc)

			var spacing [3]float64
			for d := 0; d < 3; d++ {
				spacing[d] = (high[d] - low[d]) / float64(perDim)
			}

			for kp := 0; kp < perDim; kp++ {
				for jp := 0; jp < perDim; jp++ {
					for ip := 0; ip < perDim; ip++ {
						pid := cell*ppc +
							ip + perDim*(jp+perDim*kp)
						x := [3]float64{
							low[0] + (0.5+float64(ip))*spacing[0],
							low[1] + (0.5+float64(jp))*spacing[1],
							low[2] + (0.5+float64(kp))*spacing[2],
						}
						if create(pid, x, pv, rec) {
							// The counter both allocates the particle's
							// slot and accumulates the total.
							slot := count.Add(1) - 1
							c.SetRecord(int(slot), rec)
						}
					}
				}
			}
		}
	})

	accepted := int(count.Load())
	if err := c.Resize(accepted); err != nil {
		return 0, err
	}
	if shrink {
		c.ShrinkToFit()
	}
	return accepted, nil
}

// Random fills c with perCell particles per cell of part, drawn uniformly
// inside each cell from a per-cell random stream derived from seed and the
// partition identifier. Candidates flow through create and are compacted
// exactly as in Uniform. Two runs with the same seed, partition, and cell
// set offer identical candidates.
func Random(
	create Create, c soa.Container, perCell int, part grid.Partition,
	seed uint64, shrink bool,
) (int, error) {
	if create == nil {
		return 0, fmt.Errorf("A Create function is required.")
	}
	if perCell < 1 {
		return 0, fmt.Errorf(
			"The number of particles per cell must be positive, but %d "+
				"was given.", perCell,
		)
	}

	nc := part.NumCells()
	if err := c.Resize(nc * perCell); err != nil {
		return 0, err
	}

	var count atomic.Int64
	schema := c.Schema()
	forEachCell(nc, func(lo, hi int) {
		rec := schema.NewRecord()
		for cell := lo; cell < hi; cell++ {
			gen := newRNG(cellSeed(seed, part.ID(), cell))
			coords := part.CellCoords(cell)
			low, high := part.Corners(coords)
			pv := part.Measure(coords) / float64(perCell)

			for p := 0; p < perCell; p++ {
				pid := cell*perCell + p
				var x [3]float64
				for d := 0; d < 3; d++ {
					x[d] = gen.uniformRange(low[d], high[d])
				}
				if create(pid, x, pv, rec) {
					slot := count.Add(1) - 1
					c.SetRecord(int(slot), rec)
				}
			}
		}
	})

	accepted := int(count.Load())
	if err := c.Resize(accepted); err != nil {
		return 0, err
	}
	if shrink {
		c.ShrinkToFit()
	}
	return accepted, nil
}

// UniformPositions writes the positions of the uniform policy directly
// into x, which must view a rank-1 float64 field with at least three
// components and must already have exactly
// part.NumCells() * perDim³ entries. Nothing is filtered: the particle
// with candidate id pid lands at entry pid.
func UniformPositions(
	x soa.Slice[float64], perDim int, part grid.Partition,
) error {
	if perDim < 1 {
		return fmt.Errorf(
			"The number of particles per cell dimension must be positive, "+
				"but %d was given.", perDim,
		)
	}
	nc := part.NumCells()
	ppc := perDim * perDim * perDim
	if err := checkPositions(x, nc*ppc); err != nil {
		return err
	}

	forEachCell(nc, func(lo, hi int) {
		for cell := lo; cell < hi; cell++ {
			coords := part.CellCoords(cell)
			low, high := part.Corners(coords)

			var spacing [3]float64
			for d := 0; d < 3; d++ {
				spacing[d] = (high[d] - low[d]) / float64(perDim)
			}

			for kp := 0; kp < perDim; kp++ {
				for jp := 0; jp < perDim; jp++ {
					for ip := 0; ip < perDim; ip++ {
						pid := cell*ppc + ip + perDim*(jp+perDim*kp)
						x.Set(pid, low[0]+(0.5+float64(ip))*spacing[0], 0)
						x.Set(pid, low[1]+(0.5+float64(jp))*spacing[1], 1)
						x.Set(pid, low[2]+(0.5+float64(kp))*spacing[2], 2)
					}
				}
			}
		}
	})
	return nil
}

// RandomPositions writes the positions of the random policy directly into
// x under the same contract as UniformPositions, with
// part.NumCells() * perCell entries. The draws are identical to the ones
// Random offers its Create function for the same seed and partition.
func RandomPositions(
	x soa.Slice[float64], perCell int, part grid.Partition, seed uint64,
) error {
	if perCell < 1 {
		return fmt.Errorf(
			"The number of particles per cell must be positive, but %d "+
				"was given.", perCell,
		)
	}
	nc := part.NumCells()
	if err := checkPositions(x, nc*perCell); err != nil {
		return err
	}

	forEachCell(nc, func(lo, hi int) {
		for cell := lo; cell < hi; cell++ {
			gen := newRNG(cellSeed(seed, part.ID(), cell))
			coords := part.CellCoords(cell)
			low, high := part.Corners(coords)

			for p := 0; p < perCell; p++ {
				pid := cell*perCell + p
				for d := 0; d < 3; d++ {
					x.Set(pid, gen.uniformRange(low[d], high[d]), d)
				}
			}
		}
	})
	return nil
}

func checkPositions(x soa.Slice[float64], want int) error {
	f := x.Field()
	if f.Rank() != 1 || f.Extents[0] < 3 {
		return fmt.Errorf(
			"Positions must be written to a rank-1 field with at least 3 "+
				"components, but the field '%s' has rank %d with %d "+
				"elements.", f.Name, f.Rank(), f.ElemCount(),
		)
	}
	if x.Len() != want {
		return fmt.Errorf(
			"The position storage must hold exactly one entry per "+
				"candidate, %d, but it holds %d.", want, x.Len(),
		)
	}
	return nil
}

// forEachCell fans fn out over contiguous ranges of cell ids, one
// goroutine per available thread, and waits for all of them. The wait is
// the barrier that makes the acceptance counter final before the caller
// reads it.
func forEachCell(nc int, fn func(lo, hi int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > nc {
		workers = nc
	}
	if workers <= 1 {
		fn(0, nc)
		return
	}

	chunk := (nc + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > nc {
			hi = nc
		}
		if lo >= hi {
			continue
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
