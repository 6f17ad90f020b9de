package soa

/* record.go implements the value-typed snapshot of a single entry. */

import (
	"fmt"
	"unsafe"
)

// Record holds a copy of every field of one logical entry. It owns its own
// storage and stays valid regardless of what happens to the container it
// was read from. The zero Record is not usable; create one with
// Schema.NewRecord.
type Record struct {
	schema *Schema
	data   []byte
}

// NewRecord creates a zeroed Record laid out for the Schema.
func (s *Schema) NewRecord() Record {
	return Record{s, make([]byte, s.recBytes)}
}

// Schema returns the Schema the Record was created from.
func (r Record) Schema() *Schema { return r.schema }

// Data returns the packed bytes backing the Record. Two Records created
// from the same Schema hold equal entries exactly when their Data is equal.
func (r Record) Data() []byte { return r.data }

// CopyFrom copies the contents of src into r. The two Records must share a
// Schema.
func (r Record) CopyFrom(src Record) error {
	if r.schema != src.schema {
		return fmt.Errorf(
			"Cannot copy between Records with different Schemas.",
		)
	}
	copy(r.data, src.data)
	return nil
}

// Uint32 returns the value of a scalar or multi-dimensional uint32 field.
// field is the index of the field in the Schema and sub its row-major
// multi-index, which is empty for scalar fields. See the Slice type for
// the indexing convention.
func (r Record) Uint32(field int, sub ...int) uint32 {
	return *(*uint32)(r.elem(field, Uint32, sub))
}

// Uint64 returns the value of a uint64 field. See Uint32.
func (r Record) Uint64(field int, sub ...int) uint64 {
	return *(*uint64)(r.elem(field, Uint64, sub))
}

// Float32 returns the value of a float32 field. See Uint32.
func (r Record) Float32(field int, sub ...int) float32 {
	return *(*float32)(r.elem(field, Float32, sub))
}

// Float64 returns the value of a float64 field. See Uint32.
func (r Record) Float64(field int, sub ...int) float64 {
	return *(*float64)(r.elem(field, Float64, sub))
}

// SetUint32 sets the value of a uint32 field. See Uint32 for the indexing
// convention.
func (r Record) SetUint32(field int, x uint32, sub ...int) {
	*(*uint32)(r.elem(field, Uint32, sub)) = x
}

// SetUint64 sets the value of a uint64 field. See Uint32.
func (r Record) SetUint64(field int, x uint64, sub ...int) {
	*(*uint64)(r.elem(field, Uint64, sub)) = x
}

// SetFloat32 sets the value of a float32 field. See Uint32.
func (r Record) SetFloat32(field int, x float32, sub ...int) {
	*(*float32)(r.elem(field, Float32, sub)) = x
}

// SetFloat64 sets the value of a float64 field. See Uint32.
func (r Record) SetFloat64(field int, x float64, sub ...int) {
	*(*float64)(r.elem(field, Float64, sub)) = x
}

func (r Record) elem(field int, k Kind, sub []int) unsafe.Pointer {
	f := r.schema.fields[field]
	if f.Kind != k {
		panic(fmt.Sprintf(
			"The field '%s' stores %s elements, not %s elements.",
			f.Name, f.Kind, k,
		))
	}
	flat := flatIndex(f, sub)
	return unsafe.Pointer(&r.data[r.schema.recOff[field]+flat*k.Size()])
}

// flatIndex flattens a row-major multi-index over the field's Extents. The
// multi-index must be complete: one sub-index per dimension.
func flatIndex(f Field, sub []int) int {
	if len(sub) != f.Rank() {
		panic(fmt.Sprintf(
			"The field '%s' has rank %d, but %d indices were given.",
			f.Name, f.Rank(), len(sub),
		))
	}
	flat := 0
	for d, i := range sub {
		if i < 0 || i >= f.Extents[d] {
			panic(fmt.Sprintf(
				"Index %d is out of range for dimension %d of the field "+
					"'%s', which has extent %d.", i, d, f.Name, f.Extents[d],
			))
		}
		flat = flat*f.Extents[d] + i
	}
	return flat
}
