/*package soa implements the block-structured particle container used by
parcel: an array of fixed-width blocks, each block storing one contiguous
array per field. The layout interpolates between array-of-structs (block
width 1) and struct-of-arrays (a single giant block) and is tuned through
the block width alone. Fields are accessed either one entry at a time
through Records or one field at a time through Slices.*/
package soa

import (
	"fmt"
)

// Kind identifies the element type of a field. Only the four primitive
// types used by particle data are supported.
type Kind int

const (
	Uint32 Kind = iota
	Uint64
	Float32
	Float64
)

// MaxRank is the largest number of array dimensions a field may have.
const MaxRank = 4

// Size returns the size of a single element of the Kind in bytes.
func (k Kind) Size() int {
	switch k {
	case Uint32, Float32:
		return 4
	case Uint64, Float64:
		return 8
	}
	panic(fmt.Sprintf("Unrecognized Kind, %d.", k))
}

// String returns the name of the Go type the Kind corresponds to.
func (k Kind) String() string {
	switch k {
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Field describes one named field of a particle entry. A Field with no
// Extents holds a single scalar per entry. A Field with Extents holds a
// multi-dimensional array per entry with up to MaxRank dimensions, indexed
// in row-major order over the Extents.
type Field struct {
	Name    string
	Kind    Kind
	Extents []int
}

// Rank returns the number of array dimensions of the field. Scalars have
// rank 0.
func (f Field) Rank() int { return len(f.Extents) }

// ElemCount returns the number of elements the field stores per entry, the
// product of its Extents.
func (f Field) ElemCount() int {
	n := 1
	for _, e := range f.Extents {
		n *= e
	}
	return n
}

// Schema is a fixed, ordered list of Fields shared by every entry of a
// container. It is immutable once created: the layout of a container is
// derived from its Schema at construction time and never changes.
type Schema struct {
	fields []Field
	elems  []int
	recOff []int
	// recBytes is the length of the packed Record representation,
	// including alignment padding between fields.
	recBytes int
	index    map[string]int
}

// NewSchema creates a Schema from an ordered list of fields. It returns an
// error if the list is empty, if any field has an empty or duplicated name,
// or if any field has more than MaxRank dimensions or a non-positive
// extent.
func NewSchema(fields []Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("A Schema must contain at least one field.")
	}

	s := &Schema{
		fields: make([]Field, len(fields)),
		elems:  make([]int, len(fields)),
		recOff: make([]int, len(fields)),
		index:  map[string]int{},
	}

	off := 0
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("Field %d has an empty name.", i)
		}
		if _, ok := s.index[f.Name]; ok {
			return nil, fmt.Errorf(
				"The field name '%s' is used more than once.", f.Name,
			)
		}
		if f.Rank() > MaxRank {
			return nil, fmt.Errorf(
				"The field '%s' has rank %d, but the largest supported "+
					"rank is %d.", f.Name, f.Rank(), MaxRank,
			)
		}
		for d, e := range f.Extents {
			if e < 1 {
				return nil, fmt.Errorf(
					"Dimension %d of the field '%s' has extent %d.",
					d, f.Name, e,
				)
			}
		}

		// Fields are copied so later changes to the caller's slice can't
		// mutate the Schema.
		cp := Field{f.Name, f.Kind, append([]int{}, f.Extents...)}
		s.fields[i] = cp
		s.elems[i] = cp.ElemCount()
		s.index[cp.Name] = i

		// Pad each field up to its natural alignment within the packed
		// Record representation.
		size := cp.Kind.Size()
		off = alignUp(off, size)
		s.recOff[i] = off
		off += s.elems[i] * size
	}
	s.recBytes = off

	return s, nil
}

// NumFields returns the number of fields in the Schema.
func (s *Schema) NumFields() int { return len(s.fields) }

// Field returns the field at a given index.
func (s *Schema) Field(i int) Field { return s.fields[i] }

// FieldIndex returns the index of the field with a given name, and false if
// no field has that name.
func (s *Schema) FieldIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

func alignUp(x, align int) int {
	if r := x % align; r != 0 {
		return x + align - r
	}
	return x
}
