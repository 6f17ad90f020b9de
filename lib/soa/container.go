package soa

/* container.go implements the block-structured particle container. */

import (
	"fmt"
	"unsafe"
)

// store owns the backing allocation of a container. Every Container handle
// created by copying another points at the same store, so copies are
// shallow: the store lives until the last handle is collected.
type store struct {
	schema *Schema
	width  int

	// fieldOff[f] is the byte offset of field f's array within a block,
	// and blockBytes the total byte size of one block.
	fieldOff   []int
	blockBytes int

	data     []byte
	size     int
	capacity int
	blocks   int
}

// Container is a sequence of fixed-width blocks, each holding one
// contiguous array per field of the Schema. The logical size and capacity
// are measured in entries and are independent of block boundaries, except
// that the capacity is always a whole number of blocks.
//
// Copying a Container copies a small handle: both copies share the same
// backing store, and a Resize through one is visible through the other.
// Use DeepCopyFrom to copy contents between independent containers.
type Container struct {
	s *store
}

// NewContainer creates a container with the given block width and initial
// logical size. The width must be a power of two. NewContainer returns an
// error if the block layout implied by the schema and width cannot be
// addressed with an integral per-field stride, so a successfully
// constructed container always supports Slice access to every field.
func NewContainer(schema *Schema, width, n int) (Container, error) {
	if schema == nil {
		return Container{}, fmt.Errorf("A Container requires a Schema.")
	}
	if width < 1 || width&(width-1) != 0 {
		return Container{}, fmt.Errorf(
			"The block width must be a positive power of two, but %d "+
				"was given.", width,
		)
	}
	if n < 0 {
		return Container{}, fmt.Errorf(
			"Cannot create a container with %d entries.", n,
		)
	}

	s := &store{
		schema:   schema,
		width:    width,
		fieldOff: make([]int, schema.NumFields()),
	}

	off := 0
	for f := range s.fieldOff {
		size := schema.Field(f).Kind.Size()
		if off%size != 0 {
			return Container{}, layoutError(schema, width, f)
		}
		s.fieldOff[f] = off
		off += width * schema.elems[f] * size
	}
	s.blockBytes = off
	for f := range s.fieldOff {
		// The stride between consecutive blocks of a field is
		// blockBytes/size elements. A fractional stride cannot be
		// addressed, so it is rejected here rather than at Slice
		// construction.
		if s.blockBytes%schema.Field(f).Kind.Size() != 0 {
			return Container{}, layoutError(schema, width, f)
		}
	}

	c := Container{s}
	if err := c.Resize(n); err != nil {
		return Container{}, err
	}
	return c, nil
}

func layoutError(schema *Schema, width, f int) error {
	fd := schema.Field(f)
	return fmt.Errorf(
		"With block width %d, the field '%s' cannot be addressed with an "+
			"integral stride: its %d-byte elements do not evenly divide "+
			"the block layout. Reorder the schema so larger element types "+
			"come first, or change the block width.",
		width, fd.Name, fd.Kind.Size(),
	)
}

// Schema returns the container's Schema.
func (c Container) Schema() *Schema { return c.s.schema }

// BlockWidth returns the number of entries each block holds.
func (c Container) BlockWidth() int { return c.s.width }

// Size returns the number of entries in use.
func (c Container) Size() int { return c.s.size }

// Capacity returns the number of entries the backing store can hold
// without reallocating. It is always a multiple of the block width.
func (c Container) Capacity() int { return c.s.capacity }

// NumBlocks returns the number of allocated blocks,
// Capacity() / BlockWidth().
func (c Container) NumBlocks() int { return c.s.blocks }

// ArraySize returns the number of entries in use within block s: the block
// width for every fully-used block, the remainder for the last partially
// used block, and 0 for blocks past the logical size.
func (c Container) ArraySize(s int) int {
	used := ceilDiv(c.s.size, c.s.width)
	switch {
	case s < 0 || s >= used:
		return 0
	case s == used-1:
		return c.s.size - (used-1)*c.s.width
	default:
		return c.s.width
	}
}

// Resize sets the logical size to n, growing the backing store first if n
// exceeds the current capacity. Shrinking never frees memory; call
// ShrinkToFit to drop unused blocks. Growing past the capacity invalidates
// every Slice taken from the container, which must be re-derived.
func (c Container) Resize(n int) error {
	if n < 0 {
		return fmt.Errorf("Cannot resize a container to %d entries.", n)
	}
	if err := c.Reserve(n); err != nil {
		return err
	}
	c.s.size = n
	return nil
}

// Reserve grows the capacity to the smallest whole number of blocks that
// holds at least n entries. It does nothing if the capacity is already
// sufficient. Growing reallocates the backing store, copies every existing
// block into it, and invalidates every Slice previously taken from the
// container. The logical size is unchanged either way, and no partial
// state is left behind: Reserve either completes or the container is
// exactly as it was.
func (c Container) Reserve(n int) error {
	if n < 0 {
		return fmt.Errorf("Cannot reserve space for %d entries.", n)
	}
	s := c.s
	if n <= s.capacity {
		return nil
	}

	blocks := ceilDiv(n, s.width)
	data := allocBlocks(blocks * s.blockBytes)
	copy(data, s.data)

	s.data = data
	s.blocks = blocks
	s.capacity = blocks * s.width
	return nil
}

// ShrinkToFit reallocates the backing store down to exactly the blocks
// needed for the current logical size, dropping unused capacity. Like
// Reserve, it invalidates every Slice taken from the container.
func (c Container) ShrinkToFit() {
	s := c.s
	blocks := ceilDiv(s.size, s.width)
	if blocks == s.blocks {
		return
	}

	data := allocBlocks(blocks * s.blockBytes)
	copy(data, s.data[:len(data)])

	s.data = data
	s.blocks = blocks
	s.capacity = blocks * s.width
}

// GetRecord copies the entry at a logical index into rec, which must have
// been created from the container's Schema.
func (c Container) GetRecord(idx int, rec Record) error {
	if err := c.checkRecordAccess(idx, rec); err != nil {
		return err
	}
	c.getRecord(idx, rec)
	return nil
}

// SetRecord copies rec into the entry at a logical index. Concurrent
// SetRecord calls at distinct indices are safe: each call writes only the
// bytes of its own entry.
func (c Container) SetRecord(idx int, rec Record) error {
	if err := c.checkRecordAccess(idx, rec); err != nil {
		return err
	}
	c.setRecord(idx, rec)
	return nil
}

func (c Container) checkRecordAccess(idx int, rec Record) error {
	if idx < 0 || idx >= c.s.size {
		return fmt.Errorf(
			"Index %d is out of range for a container with %d entries.",
			idx, c.s.size,
		)
	}
	if rec.schema != c.s.schema && !schemasEqual(rec.schema, c.s.schema) {
		return fmt.Errorf(
			"The Record's Schema does not match the container's Schema.",
		)
	}
	return nil
}

func (c Container) getRecord(idx int, rec Record) {
	s := c.s
	base := (idx / s.width) * s.blockBytes
	i := idx % s.width
	for f := range s.fieldOff {
		esz := s.schema.fields[f].Kind.Size()
		fo := base + s.fieldOff[f] + i*esz
		ro := s.schema.recOff[f]
		for e := 0; e < s.schema.elems[f]; e++ {
			src := fo + e*s.width*esz
			copy(rec.data[ro:ro+esz], s.data[src:src+esz])
			ro += esz
		}
	}
}

func (c Container) setRecord(idx int, rec Record) {
	s := c.s
	base := (idx / s.width) * s.blockBytes
	i := idx % s.width
	for f := range s.fieldOff {
		esz := s.schema.fields[f].Kind.Size()
		fo := base + s.fieldOff[f] + i*esz
		ro := s.schema.recOff[f]
		for e := 0; e < s.schema.elems[f]; e++ {
			dst := fo + e*s.width*esz
			copy(s.data[dst:dst+esz], rec.data[ro:ro+esz])
			ro += esz
		}
	}
}

// DeepCopyFrom resizes the container to src's size and copies every entry
// of src into it, element by element. The two containers must have equal
// Schemas but may have different block widths. The containers remain
// independent afterwards.
func (c Container) DeepCopyFrom(src Container) error {
	if c.s == src.s {
		return nil
	}
	if c.s.schema != src.s.schema &&
		!schemasEqual(c.s.schema, src.s.schema) {
		return fmt.Errorf(
			"Cannot deep-copy between containers with different Schemas.",
		)
	}
	if err := c.Resize(src.Size()); err != nil {
		return err
	}

	if c.s.width == src.s.width {
		// Identical layouts, so whole blocks can be copied at once.
		used := ceilDiv(src.s.size, src.s.width)
		copy(c.s.data, src.s.data[:used*src.s.blockBytes])
		return nil
	}

	rec := c.s.schema.NewRecord()
	for idx := 0; idx < src.s.size; idx++ {
		src.getRecord(idx, rec)
		c.setRecord(idx, rec)
	}
	return nil
}

func schemasEqual(a, b *Schema) bool {
	if a.NumFields() != b.NumFields() {
		return false
	}
	for i := 0; i < a.NumFields(); i++ {
		fa, fb := a.Field(i), b.Field(i)
		if fa.Name != fb.Name || fa.Kind != fb.Kind ||
			fa.Rank() != fb.Rank() {
			return false
		}
		for d := range fa.Extents {
			if fa.Extents[d] != fb.Extents[d] {
				return false
			}
		}
	}
	return true
}

func ceilDiv(n, d int) int { return (n + d - 1) / d }

// allocBlocks allocates n bytes backed by a []uint64 so the base address
// is always aligned for 8-byte element access.
func allocBlocks(n int) []byte {
	if n == 0 {
		return nil
	}
	words := make([]uint64, ceilDiv(n, 8))
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n)
}
