package soa

import (
	"testing"

	"github.com/parcel-sim/parcel/lib/eq"
)

func TestNewSliceErrors(t *testing.T) {
	c, err := NewContainer(testSchema(t), 4, 8)
	if err != nil {
		t.Fatalf("Expected NewContainer to succeed, got '%s'.", err.Error())
	}

	if _, err := NewSlice[float32](c, 1); err == nil {
		t.Errorf("Expected a float32 Slice of a float64 field to fail, " +
			"but it didn't.")
	}
	if _, err := NewSlice[float64](c, -1); err == nil {
		t.Errorf("Expected a negative field index to fail, but it didn't.")
	}
	if _, err := NewSlice[float64](c, 4); err == nil {
		t.Errorf("Expected a field index past the end to fail, but it " +
			"didn't.")
	}
	if _, err := SliceByName[float64](c, "phi"); err == nil {
		t.Errorf("Expected an unknown field name to fail, but it didn't.")
	}
	if _, err := SliceByName[float64](c, "x"); err != nil {
		t.Errorf("Expected SliceByName('x') to succeed, got '%s'.",
			err.Error())
	}
}

func TestSliceGetSet(t *testing.T) {
	s := testSchema(t)
	c, err := NewContainer(s, 4, 11)
	if err != nil {
		t.Fatalf("Expected NewContainer to succeed, got '%s'.", err.Error())
	}

	rec := s.NewRecord()
	for idx := 0; idx < c.Size(); idx++ {
		fillRecord(rec, idx)
		c.SetRecord(idx, rec)
	}

	ids, _ := NewSlice[uint64](c, 0)
	xs, _ := NewSlice[float64](c, 1)
	ws, _ := NewSlice[float64](c, 2)
	flags, _ := NewSlice[uint32](c, 3)

	if ids.Len() != 11 || ids.NumBlocks() != 3 {
		t.Errorf("Expected a Slice over 11 entries in 3 blocks, got %d "+
			"entries in %d blocks.", ids.Len(), ids.NumBlocks())
	}
	if xs.ElemsPerEntry() != 3 {
		t.Errorf("Expected 3 elements per entry for 'x', got %d.",
			xs.ElemsPerEntry())
	}

	// Slice reads must agree with Record reads for every field, across
	// block boundaries.
	for idx := 0; idx < c.Size(); idx++ {
		c.GetRecord(idx, rec)
		if ids.Get(idx) != rec.Uint64(0) {
			t.Errorf("Expected ids.Get(%d) = %d, got %d.",
				idx, rec.Uint64(0), ids.Get(idx))
		}
		for d := 0; d < 3; d++ {
			if xs.Get(idx, d) != rec.Float64(1, d) {
				t.Errorf("Expected xs.Get(%d, %d) = %g, got %g.",
					idx, d, rec.Float64(1, d), xs.Get(idx, d))
			}
		}
		if ws.Get(idx) != rec.Float64(2) {
			t.Errorf("Expected ws.Get(%d) = %g, got %g.",
				idx, rec.Float64(2), ws.Get(idx))
		}
		for e := 0; e < 2; e++ {
			if flags.Get(idx, e) != rec.Uint32(3, e) {
				t.Errorf("Expected flags.Get(%d, %d) = %d, got %d.",
					idx, e, rec.Uint32(3, e), flags.Get(idx, e))
			}
		}
	}

	// And Slice writes must be visible through Records.
	xs.Set(6, -1.5, 2)
	c.GetRecord(6, rec)
	if rec.Float64(1, 2) != -1.5 {
		t.Errorf("Expected a Slice write to be visible through GetRecord, "+
			"got %g.", rec.Float64(1, 2))
	}
}

func TestSliceStride(t *testing.T) {
	c, err := NewContainer(testSchema(t), 4, 8)
	if err != nil {
		t.Fatalf("Expected NewContainer to succeed, got '%s'.", err.Error())
	}

	// blockBytes = 4*(8 + 3*8 + 8 + 2*4) = 192.
	strides := []int{}
	ids, _ := NewSlice[uint64](c, 0)
	xs, _ := NewSlice[float64](c, 1)
	flags, _ := NewSlice[uint32](c, 3)
	strides = append(strides, ids.Stride(), xs.Stride(), flags.Stride())
	if !eq.Slices(strides, []int{24, 24, 48}) {
		t.Errorf("Expected strides [24 24 48], got %v.", strides)
	}
}

func TestRowMajorLayout(t *testing.T) {
	s, err := NewSchema([]Field{
		{Name: "m", Kind: Float64, Extents: []int{2, 3}},
	})
	if err != nil {
		t.Fatalf("Expected NewSchema to succeed, got '%s'.", err.Error())
	}
	c, err := NewContainer(s, 2, 3)
	if err != nil {
		t.Fatalf("Expected NewContainer to succeed, got '%s'.", err.Error())
	}

	m, _ := NewSlice[float64](c, 0)
	for idx := 0; idx < 3; idx++ {
		for i := 0; i < 2; i++ {
			for j := 0; j < 3; j++ {
				m.Set(idx, float64(100*idx+10*i+j), i, j)
			}
		}
	}

	// The flattened offsets of (i, j) must walk the last dimension
	// fastest.
	rec := s.NewRecord()
	c.GetRecord(1, rec)
	flat := []float64{}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			flat = append(flat, rec.Float64(0, i, j))
		}
	}
	if !eq.Slices(flat, []float64{100, 101, 102, 110, 111, 112}) {
		t.Errorf("Expected row-major order [100 101 102 110 111 112], "+
			"got %v.", flat)
	}
}

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("Expected %s to panic, but it didn't.", name)
		}
	}()
	f()
}

func TestCheckedBounds(t *testing.T) {
	c, err := NewContainer(testSchema(t), 4, 8)
	if err != nil {
		t.Fatalf("Expected NewContainer to succeed, got '%s'.", err.Error())
	}

	xs, _ := NewSlice[float64](c, 1)
	chk := xs.Checked()

	chk.Set(7, 1.0, 2)
	if chk.Get(7, 2) != 1.0 {
		t.Errorf("Expected the checked Slice to read back 1, got %g.",
			chk.Get(7, 2))
	}

	expectPanic(t, "an out-of-range index", func() { chk.Get(8, 0) })
	expectPanic(t, "a negative index", func() { chk.Get(-1, 0) })
	expectPanic(t, "an out-of-range sub-index", func() { chk.Get(0, 3) })
	expectPanic(t, "a missing sub-index", func() { chk.Get(0) })
}

func TestRecordKindMismatch(t *testing.T) {
	s := testSchema(t)
	rec := s.NewRecord()
	expectPanic(t, "a float64 read of a uint64 field",
		func() { rec.Float64(0) })
	expectPanic(t, "a uint32 write of a float64 field",
		func() { rec.SetUint32(2, 1) })
}

func TestStaleSliceAfterGrow(t *testing.T) {
	s := testSchema(t)
	c, err := NewContainer(s, 4, 4)
	if err != nil {
		t.Fatalf("Expected NewContainer to succeed, got '%s'.", err.Error())
	}

	stale, _ := NewSlice[float64](c, 2)
	stale.Set(0, 2.5)

	// Growing past the capacity moves the backing store; the old Slice
	// keeps addressing the old store and must be re-derived.
	if err := c.Resize(100); err != nil {
		t.Fatalf("Expected Resize to succeed, got '%s'.", err.Error())
	}

	fresh, _ := NewSlice[float64](c, 2)
	if fresh.Get(0) != 2.5 {
		t.Errorf("Expected the value written before the grow to survive, "+
			"got %g.", fresh.Get(0))
	}

	fresh.Set(0, -8.0)
	if stale.Get(0) != 2.5 {
		t.Errorf("Expected the stale Slice to still see the old store, "+
			"got %g.", stale.Get(0))
	}
}
