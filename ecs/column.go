package ecs

// defaultSegmentSizeLog2 matches spec.md's configuration default: segments
// of 2^10 = 1024 elements, letting a column grow by appending whole
// segments instead of reallocating and invalidating live pointers into
// earlier rows. Mirrors original_source/include/VECSTable.h's N0=1<<10,
// L = index of the highest set bit in N.
const defaultSegmentSizeLog2 = 10

// columnOps is the type-erased vtable an archetype uses to manipulate a
// column without a type parameter. Every concrete column[T] implements it.
// This is the "TypeId -> ColumnOps vtable" design note from spec.md §9.
type columnOps interface {
	// pushAny appends v (a T or *T) and returns the new row index.
	pushAny(v any) int
	// getAny returns a *T (boxed in an interface) for row i.
	getAny(i int) any
	// setAny overwrites row i with v (a T or *T).
	setAny(i int, v any)
	// swapErase removes row i, moving the last row into its place unless
	// i is already last. Reports whether a row was moved, and if so which
	// old index it came from (always len()-1 before the call).
	swapErase(i int) (movedFrom int, moved bool)
	// moveFrom appends the value at other[j] to self and returns the new
	// index. other must be a *column[T] of the same T. The caller is
	// responsible for swap-erasing j out of other immediately after.
	moveFrom(other columnOps, j int) int
	// clear empties the column and drops its segments.
	clear()
	// len returns the number of live rows.
	len() int
	// newEmpty returns a fresh, empty column of the same concrete type
	// and segment size. Archetypes build their columns from the
	// registry's factories instead, so nothing in this package calls it.
	newEmpty() columnOps
}

// column is a segmented, growable sequence of values of one component
// type. Segment size is a power of two so row->(segment,offset) addressing
// is a shift and a mask, per spec.md §4.1.
type column[T any] struct {
	segments  [][]T
	size      int
	segLog2   uint
	segSize   int
	segMask   int
}

func newColumn[T any](segLog2 uint) *column[T] {
	if segLog2 == 0 {
		segLog2 = defaultSegmentSizeLog2
	}
	segSize := 1 << segLog2
	return &column[T]{
		segLog2: segLog2,
		segSize: segSize,
		segMask: segSize - 1,
	}
}

func (c *column[T]) newEmpty() columnOps {
	return newColumn[T](c.segLog2)
}

func (c *column[T]) len() int { return c.size }

func (c *column[T]) locate(i int) (segIdx, off int) {
	return i >> c.segLog2, i & c.segMask
}

func (c *column[T]) ensureSegment(segIdx int) {
	for segIdx >= len(c.segments) {
		c.segments = append(c.segments, make([]T, c.segSize))
	}
}

// push appends v and returns its row index. Amortized O(1): a new segment
// is allocated only every segSize elements, and existing segments are
// never moved, so pointers returned by get() into prior rows stay valid.
func (c *column[T]) push(v T) int {
	idx := c.size
	segIdx, off := c.locate(idx)
	c.ensureSegment(segIdx)
	c.segments[segIdx][off] = v
	c.size++
	return idx
}

// get returns a pointer to row i. i must be < len(); out-of-range access
// is a precondition violation (checked in debug builds, see errors.go).
func (c *column[T]) get(i int) *T {
	if Debug && (i < 0 || i >= c.size) {
		panic("ecs: column index out of range")
	}
	segIdx, off := c.locate(i)
	return &c.segments[segIdx][off]
}

func (c *column[T]) set(i int, v T) {
	*c.get(i) = v
}

// swapErase moves the last row into slot i (unless i is already last),
// then shrinks by one. Returns the old index of the row that moved, so
// the caller can reindex whichever handle now lives at i.
func (c *column[T]) swapErase(i int) (movedFrom int, moved bool) {
	if Debug && (i < 0 || i >= c.size) {
		panic("ecs: column index out of range")
	}
	last := c.size - 1
	if i != last {
		*c.get(i) = *c.get(last)
		moved = true
		movedFrom = last
	}
	var zero T
	*c.get(last) = zero
	c.size--
	return movedFrom, moved
}

func (c *column[T]) clear() {
	c.segments = nil
	c.size = 0
}

// --- columnOps adapter methods, boxing/unboxing through `any` ---

func (c *column[T]) pushAny(v any) int {
	switch val := v.(type) {
	case T:
		return c.push(val)
	case *T:
		return c.push(*val)
	default:
		panic("ecs: component value has wrong type for column")
	}
}

func (c *column[T]) getAny(i int) any {
	return c.get(i)
}

func (c *column[T]) setAny(i int, v any) {
	switch val := v.(type) {
	case T:
		c.set(i, val)
	case *T:
		c.set(i, *val)
	default:
		panic("ecs: component value has wrong type for column")
	}
}

// moveFrom appends the value at other[j] to c and returns the new index.
// The value at other[j] is left in place; the caller must swap-erase it
// out of other immediately (spec.md §4.1's move_from precondition).
func (c *column[T]) moveFrom(otherOps columnOps, j int) int {
	other, ok := otherOps.(*column[T])
	if !ok {
		panic("ecs: moveFrom between mismatched column types")
	}
	return c.push(*other.get(j))
}
