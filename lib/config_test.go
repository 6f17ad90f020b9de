package lib

import (
	"testing"

	"gopkg.in/gcfg.v1"
)

func TestExampleConfigParses(t *testing.T) {
	wrap := DefaultGenerateWrapper()
	err := gcfg.ReadStringInto(wrap, ExampleGenerateFile)
	if err != nil {
		t.Fatalf("Expected the example config to parse, got: %s", err.Error())
	}

	con := &wrap.Generate
	if err := con.CheckInit(); err != nil {
		t.Fatalf("Expected the example config to validate, got: %s",
			err.Error())
	}
	if con.Cells != 8 || con.BoxWidth != 1.0 || con.Particles != 2 {
		t.Errorf("Example config parsed to unexpected values: %+v", con)
	}
}

func TestConfigDefaults(t *testing.T) {
	wrap := DefaultGenerateWrapper()
	text := "[Generate]\nCells = 4\nBoxWidth = 2.5\nParticles = 3\n"
	if err := gcfg.ReadStringInto(wrap, text); err != nil {
		t.Fatalf("Expected minimal config to parse, got: %s", err.Error())
	}

	con := &wrap.Generate
	if err := con.CheckInit(); err != nil {
		t.Fatalf("Expected minimal config to validate, got: %s", err.Error())
	}
	if con.BlockWidth != 64 {
		t.Errorf("Expected default BlockWidth = 64, got %d.", con.BlockWidth)
	}
	if con.Threads != -1 {
		t.Errorf("Expected default Threads = -1, got %d.", con.Threads)
	}
	if con.NoiseScale != 1 {
		t.Errorf("Expected default NoiseScale = 1, got %g.", con.NoiseScale)
	}
}

func TestConfigValidation(t *testing.T) {
	bad := []GenerateConfig{
		{Cells: 0, BoxWidth: 1, Particles: 1, BlockWidth: 64, NoiseScale: 1},
		{Cells: 4, BoxWidth: -1, Particles: 1, BlockWidth: 64, NoiseScale: 1},
		{Cells: 4, BoxWidth: 1, Particles: 0, BlockWidth: 64, NoiseScale: 1},
		{Cells: 4, BoxWidth: 1, Particles: 1, BlockWidth: 48, NoiseScale: 1},
		{Cells: 4, BoxWidth: 1, Particles: 1, BlockWidth: 64, NoiseScale: 0},
	}

	for i := range bad {
		if err := bad[i].CheckInit(); err == nil {
			t.Errorf("Expected config %d to fail validation.", i)
		}
	}
}
