/*package lib contains supporting code for the parcel command line tool:
configuration parsing, thread setup, and position dumps. The particle
storage and generation code lives in the subpackages.*/
package lib

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

// GenerateConfig is the contents of the [Generate] section of a parcel
// configuration file.
type GenerateConfig struct {
	// Required
	Cells     int
	BoxWidth  float64
	Particles int

	// Optional
	Seed           int64
	BlockWidth     int
	Threads        int
	NoiseThreshold float64
	NoiseScale     float64
	Output         string
}

// GenerateWrapper wraps GenerateConfig so it can be read with gcfg.
type GenerateWrapper struct {
	Generate GenerateConfig
}

// DefaultGenerateWrapper returns a GenerateWrapper with all the optional
// fields set to their default values.
func DefaultGenerateWrapper() *GenerateWrapper {
	return &GenerateWrapper{GenerateConfig{
		Seed:       0,
		BlockWidth: 64,
		Threads:    -1,
		NoiseScale: 1,
	}}
}

// ReadConfig reads the [Generate] section of the configuration file at
// fname on top of the default values.
func ReadConfig(fname string) (*GenerateConfig, error) {
	wrap := DefaultGenerateWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	con := &wrap.Generate
	if err := con.CheckInit(); err != nil {
		return nil, err
	}
	return con, nil
}

// CheckInit checks that the required fields were set and that every field
// is in its valid range.
func (con *GenerateConfig) CheckInit() error {
	if con.Cells <= 0 {
		return fmt.Errorf(
			"Need to specify a positive 'Cells' value, but got %d.",
			con.Cells,
		)
	}
	if con.BoxWidth <= 0 {
		return fmt.Errorf(
			"Need to specify a positive 'BoxWidth' value, but got %g.",
			con.BoxWidth,
		)
	}
	if con.Particles <= 0 {
		return fmt.Errorf(
			"Need to specify a positive 'Particles' value, but got %d.",
			con.Particles,
		)
	}
	if con.BlockWidth <= 0 || con.BlockWidth&(con.BlockWidth-1) != 0 {
		return fmt.Errorf(
			"'BlockWidth' must be a positive power of two, but is %d.",
			con.BlockWidth,
		)
	}
	if con.NoiseScale <= 0 {
		return fmt.Errorf(
			"'NoiseScale' must be positive, but is %g.", con.NoiseScale,
		)
	}
	return nil
}

const ExampleGenerateFile = `[Generate]

#######################
# Required Parameters #
#######################

# The box is split into Cells^3 cubic cells.
Cells = 8

# The side length of the box.
BoxWidth = 1.0

# The number of particles per cell. In Uniform mode this is the number of
# particles per cell dimension, so each cell gets Particles^3 of them. In
# Random mode each cell gets Particles random draws.
Particles = 2

#######################
# Optional Parameters #
#######################

# The seed of the random streams used in Random mode. Runs with the same
# seed place particles at exactly the same positions. Default is 0.
# Seed = 0

# The number of particles stored per block of the underlying container.
# Must be a power of two. There's rarely a reason to change this.
# BlockWidth = 64

# The maximum number of threads used while generating. Set to -1 to use
# every core on the node. Default is -1.
# Threads = -1

# If set to a non-zero value, only particles where a smooth noise field
# exceeds the threshold are kept. Values in (-1, 1) are meaningful.
# NoiseScale controls the size of the noise features relative to the box.
# NoiseThreshold = 0.0
# NoiseScale = 1.0

# If set, the positions of the generated particles are compressed and
# written to this file.
# Output = path/to/output.pdump`
