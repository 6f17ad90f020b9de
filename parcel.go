/*parcel generates particle distributions over a gridded box and stores
them in a blocked, field-major container. It is run as

    parcel <mode> [config]

where mode is one of
    help            Print this message.
    example-config  Print an example configuration file to stdout.
    uniform         Generate particles on a per-cell sub-grid.
    random          Generate particles at random positions in each cell.

The uniform and random modes require a configuration file.*/
package main

import (
	"fmt"
	"os"

	"github.com/ojrac/opensimplex-go"
	"github.com/phil-mansfield/gotetra/render/geom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/parcel-sim/parcel/lib"
	"github.com/parcel-sim/parcel/lib/error"
	"github.com/parcel-sim/parcel/lib/grid"
	"github.com/parcel-sim/parcel/lib/populate"
	"github.com/parcel-sim/parcel/lib/soa"
)

const helpText = `parcel generates particle distributions over a gridded box.

Usage:
    parcel help
    parcel example-config
    parcel uniform <config>
    parcel random <config>

'uniform' places particles at the centers of a sub-grid of every cell and
'random' draws them from per-cell deterministic random streams. Run
'parcel example-config' for a description of the configuration file.`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(helpText)
		return
	}

	mode := os.Args[1]
	switch mode {
	case "help":
		fmt.Println(helpText)
	case "example-config":
		fmt.Println(lib.ExampleGenerateFile)
	case "uniform", "random":
		if len(os.Args) != 3 {
			error.External(
				"The '%s' mode requires exactly one configuration file, "+
					"but %d arguments were given.", mode, len(os.Args)-2,
			)
		}
		con, err := lib.ReadConfig(os.Args[2])
		if err != nil {
			error.External("%s", err.Error())
		}
		Generate(mode, con)
	default:
		error.External(
			"You attempted to run parcel in the mode '%s', but the only "+
				"valid modes are 'help', 'example-config', 'uniform', and "+
				"'random'.", mode,
		)
	}
}

// ParticleSchema returns the fields parcel generates: a position vector, a
// velocity vector, a scalar weight, and a particle id.
func ParticleSchema() *soa.Schema {
	s, err := soa.NewSchema([]soa.Field{
		{Name: "position", Kind: soa.Float64, Extents: []int{3}},
		{Name: "velocity", Kind: soa.Float64, Extents: []int{3}},
		{Name: "weight", Kind: soa.Float64},
		{Name: "id", Kind: soa.Uint64},
	})
	if err != nil {
		error.Internal("%s", err.Error())
	}
	return s
}

// Generate runs one generation mode over the box described by con.
func Generate(mode string, con *lib.GenerateConfig) {
	lib.SetThreads(con.Threads)

	h := con.BoxWidth / float64(con.Cells)
	part, err := grid.NewUniform(
		geom.CellBounds{Width: [3]int{con.Cells, con.Cells, con.Cells}},
		[3]float64{}, [3]float64{h, h, h}, 0,
	)
	if err != nil {
		error.External("%s", err.Error())
	}

	c, err := soa.NewContainer(ParticleSchema(), con.BlockWidth, 0)
	if err != nil {
		error.External("%s", err.Error())
	}

	create := createFunc(con)
	var n int
	switch mode {
	case "uniform":
		n, err = populate.Uniform(create, c, con.Particles, part, true)
	case "random":
		n, err = populate.Random(
			create, c, con.Particles, part, uint64(con.Seed), true,
		)
	default:
		error.Internal("'Impossible' generation mode '%s'.", mode)
	}
	if err != nil {
		error.External("%s", err.Error())
	}

	printSummary(c, n)

	if con.Output != "" {
		if err := lib.WritePositions(con.Output, positions(c)); err != nil {
			error.External(
				"Could not write the position dump '%s': %s",
				con.Output, err.Error(),
			)
		}
		fmt.Printf("Wrote %d positions to %s\n", n, con.Output)
	}
}

// createFunc builds the Create function for con: every accepted candidate
// stores its position, weight, and id, with the velocity zeroed. When a
// noise threshold is configured, candidates where the noise field is at or
// below the threshold are rejected.
func createFunc(con *lib.GenerateConfig) populate.Create {
	fill := func(pid int, x [3]float64, pv float64, rec soa.Record) bool {
		for d := 0; d < 3; d++ {
			rec.SetFloat64(0, x[d], d)
			rec.SetFloat64(1, 0, d)
		}
		rec.SetFloat64(2, pv)
		rec.SetUint64(3, uint64(pid))
		return true
	}
	if con.NoiseThreshold == 0 {
		return fill
	}

	// opensimplex noise is safe for concurrent reads.
	noise := opensimplex.New(con.Seed)
	k := con.NoiseScale / con.BoxWidth
	return func(pid int, x [3]float64, pv float64, rec soa.Record) bool {
		if noise.Eval3(x[0]*k, x[1]*k, x[2]*k) <= con.NoiseThreshold {
			return false
		}
		return fill(pid, x, pv, rec)
	}
}

// positions gathers the position field into a flat array.
func positions(c soa.Container) [][3]float64 {
	xs, err := soa.SliceByName[float64](c, "position")
	if err != nil {
		error.Internal("%s", err.Error())
	}

	out := make([][3]float64, xs.Len())
	for i := range out {
		for d := 0; d < 3; d++ {
			out[i][d] = xs.Get(i, d)
		}
	}
	return out
}

func printSummary(c soa.Container, n int) {
	fmt.Printf("Generated %d particles in %d blocks of width %d.\n",
		n, c.NumBlocks(), c.BlockWidth())
	if n == 0 {
		return
	}

	ws, err := soa.SliceByName[float64](c, "weight")
	if err != nil {
		error.Internal("%s", err.Error())
	}
	w := make([]float64, ws.Len())
	for i := range w {
		w[i] = ws.Get(i)
	}
	fmt.Printf("Total weight %.6g (mean %.6g, std %.6g).\n",
		floats.Sum(w), stat.Mean(w, nil), stat.StdDev(w, nil))

	x := positions(c)
	for d, name := range []string{"x", "y", "z"} {
		col := make([]float64, len(x))
		for i := range x {
			col[i] = x[i][d]
		}
		fmt.Printf("%s range [%.6g, %.6g], mean %.6g\n",
			name, floats.Min(col), floats.Max(col), stat.Mean(col, nil))
	}
}
