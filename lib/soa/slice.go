package soa

/* slice.go implements strided single-field access across all blocks of a
container. */

import (
	"fmt"
	"unsafe"
)

// Element is the set of element types a field may store.
type Element interface {
	uint32 | uint64 | float32 | float64
}

// Slice is a non-owning view of one field across every block of a
// container. It holds only a base pointer, the element stride between
// blocks, and the field's shape, so it can be passed around and accessed
// without touching the container's other fields.
//
// A Slice goes stale when its container's capacity changes: Resize past
// the capacity, Reserve, and ShrinkToFit all move the backing store, and a
// stale Slice keeps addressing the old one. Re-derive Slices after any of
// those operations.
//
// Get and Set do no bounds checking. The view returned by Checked checks
// every access and is meant for tests and debugging.
type Slice[T Element] struct {
	base    unsafe.Pointer
	stride  int
	width   int
	size    int
	blocks  int
	field   Field
	elems   int
	checked bool
}

// NewSlice creates a Slice of the field at a given schema index. The type
// parameter must match the field's Kind.
func NewSlice[T Element](c Container, field int) (Slice[T], error) {
	s := c.s
	if field < 0 || field >= s.schema.NumFields() {
		return Slice[T]{}, fmt.Errorf(
			"The schema has %d fields, so there is no field %d.",
			s.schema.NumFields(), field,
		)
	}

	fd := s.schema.Field(field)
	k := kindOf[T]()
	if fd.Kind != k {
		return Slice[T]{}, fmt.Errorf(
			"The field '%s' stores %s elements, but a %s Slice was "+
				"requested.", fd.Name, fd.Kind, k,
		)
	}

	sl := Slice[T]{
		stride: s.blockBytes / k.Size(),
		width:  s.width,
		size:   s.size,
		blocks: ceilDiv(s.size, s.width),
		field:  fd,
		elems:  s.schema.elems[field],
	}
	if len(s.data) > 0 {
		sl.base = unsafe.Pointer(&s.data[s.fieldOff[field]])
	}
	return sl, nil
}

// SliceByName is NewSlice with the field resolved by name.
func SliceByName[T Element](c Container, name string) (Slice[T], error) {
	field, ok := c.s.schema.FieldIndex(name)
	if !ok {
		return Slice[T]{}, fmt.Errorf(
			"The schema has no field named '%s'.", name,
		)
	}
	return NewSlice[T](c, field)
}

// Len returns the number of entries visible through the Slice, the
// container's logical size when the Slice was created.
func (sl Slice[T]) Len() int { return sl.size }

// NumBlocks returns the number of in-use blocks spanned by the Slice.
func (sl Slice[T]) NumBlocks() int { return sl.blocks }

// Stride returns the element stride between consecutive blocks.
func (sl Slice[T]) Stride() int { return sl.stride }

// ElemsPerEntry returns the number of elements the field stores per entry.
func (sl Slice[T]) ElemsPerEntry() int { return sl.elems }

// Field returns the description of the field the Slice views.
func (sl Slice[T]) Field() Field { return sl.field }

// Get returns one element of the entry at a logical index. sub is the
// row-major multi-index into the field's Extents and is empty for scalar
// fields.
func (sl Slice[T]) Get(idx int, sub ...int) T {
	return *sl.elem(idx, sub)
}

// Set sets one element of the entry at a logical index. See Get.
func (sl Slice[T]) Set(idx int, x T, sub ...int) {
	*sl.elem(idx, sub) = x
}

// Checked returns a view of the same field that validates the logical
// index and multi-index of every access, panicking with a description of
// the violation. The unchecked view stays usable.
func (sl Slice[T]) Checked() Slice[T] {
	sl.checked = true
	return sl
}

func (sl Slice[T]) elem(idx int, sub []int) *T {
	var flat int
	if sl.checked {
		if idx < 0 || idx >= sl.size {
			panic(fmt.Sprintf(
				"Index %d is out of range for a Slice over %d entries.",
				idx, sl.size,
			))
		}
		flat = flatIndex(sl.field, sub)
	} else {
		for d, i := range sub {
			flat = flat*sl.field.Extents[d] + i
		}
	}

	s, i := idx/sl.width, idx%sl.width
	off := s*sl.stride + (flat*sl.width + i)
	var z T
	return (*T)(unsafe.Add(sl.base, uintptr(off)*unsafe.Sizeof(z)))
}

func kindOf[T Element]() Kind {
	var z T
	switch any(z).(type) {
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	}
	panic("'Impossible' type configuration.")
}
