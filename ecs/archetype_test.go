package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type archPosition struct{ X, Y float32 }
type archVelocity struct{ DX, DY float32 }

func newTestFactories() map[TypeId]func(uint) columnOps {
	return map[TypeId]func(uint) columnOps{
		TypeIdOf[archPosition](): func(segLog2 uint) columnOps { return newColumn[archPosition](segLog2) },
		TypeIdOf[archVelocity](): func(segLog2 uint) columnOps { return newColumn[archVelocity](segLog2) },
	}
}

func newTestArchetype(mode Mode) *Archetype {
	ts := newTypeSet([]TypeId{TypeIdOf[archPosition](), TypeIdOf[archVelocity]()})
	return newArchetype(ts.key(), ts, mode, newTestFactories(), 4)
}

func TestArchetypeInsertAndGetComponent(t *testing.T) {
	a := newTestArchetype(Sequential)

	h := handleFromParts(0, 1, 1)
	row := a.insert(h, map[TypeId]any{
		TypeIdOf[archPosition](): &archPosition{X: 1, Y: 2},
		TypeIdOf[archVelocity](): &archVelocity{DX: 3, DY: 4},
	})

	assert.Equal(t, 0, row)
	assert.Equal(t, 1, a.Size())
	assert.Equal(t, h, a.handleAt(row))

	pos := a.getComponent(row, TypeIdOf[archPosition]()).(*archPosition)
	assert.Equal(t, float32(1), pos.X)
}

func TestArchetypeEraseBackfillsAndReindexes(t *testing.T) {
	a := newTestArchetype(Sequential)

	h0 := handleFromParts(0, 0, 1)
	h1 := handleFromParts(0, 1, 1)
	h2 := handleFromParts(0, 2, 1)

	for i, h := range []Handle{h0, h1, h2} {
		a.insert(h, map[TypeId]any{
			TypeIdOf[archPosition](): &archPosition{X: float32(i)},
			TypeIdOf[archVelocity](): &archVelocity{DX: float32(i)},
		})
	}

	var reindexed Handle
	var newRow int
	a.erase(0, func(movedHandle Handle, row int) {
		reindexed, newRow = movedHandle, row
	})

	require.Equal(t, h2, reindexed, "erasing row 0 must backfill it with the last row (h2)")
	assert.Equal(t, 0, newRow)
	assert.Equal(t, 2, a.Size())
	assert.Equal(t, h2, a.handleAt(0))
	assert.Equal(t, h1, a.handleAt(1))
}

func TestArchetypeEraseLastRowNoBackfill(t *testing.T) {
	a := newTestArchetype(Sequential)
	h := handleFromParts(0, 0, 1)
	a.insert(h, map[TypeId]any{
		TypeIdOf[archPosition](): &archPosition{},
		TypeIdOf[archVelocity](): &archVelocity{},
	})

	called := false
	a.erase(0, func(Handle, int) { called = true })

	assert.False(t, called)
	assert.Equal(t, 0, a.Size())
}

func TestArchetypeChangeCounterBumpsOnMutation(t *testing.T) {
	a := newTestArchetype(Sequential)
	before := a.ChangeCounter()

	a.insert(handleFromParts(0, 0, 1), map[TypeId]any{
		TypeIdOf[archPosition](): &archPosition{},
		TypeIdOf[archVelocity](): &archVelocity{},
	})

	assert.Greater(t, a.ChangeCounter(), before)
}

func TestArchetypeValidateDetectsNoMismatchOnHealthyState(t *testing.T) {
	a := newTestArchetype(Sequential)
	a.insert(handleFromParts(0, 0, 1), map[TypeId]any{
		TypeIdOf[archPosition](): &archPosition{},
		TypeIdOf[archVelocity](): &archVelocity{},
	})
	assert.NotPanics(t, a.validate)
}

func TestMoveRowToCopiesSharedColumnsAndAppendsExtra(t *testing.T) {
	src := newTestArchetype(Sequential)
	h := handleFromParts(0, 0, 1)
	src.insert(h, map[TypeId]any{
		TypeIdOf[archPosition](): &archPosition{X: 7},
		TypeIdOf[archVelocity](): &archVelocity{DX: 8},
	})

	dstTypes := newTypeSet([]TypeId{TypeIdOf[archPosition](), TypeIdOf[archVelocity](), TypeIdOf[int]()})
	factories := newTestFactories()
	factories[TypeIdOf[int]()] = func(segLog2 uint) columnOps { return newColumn[int](segLog2) }
	dst := newArchetype(dstTypes.key(), dstTypes, Sequential, factories, 4)

	newRow := moveRowTo(src, 0, dst, h, map[TypeId]any{TypeIdOf[int](): 42})

	assert.Equal(t, 0, newRow)
	pos := dst.getComponent(newRow, TypeIdOf[archPosition]()).(*archPosition)
	assert.Equal(t, float32(7), pos.X)
	extra := dst.getComponent(newRow, TypeIdOf[int]()).(*int)
	assert.Equal(t, 42, *extra)
	assert.Equal(t, h, dst.handleAt(newRow))
}
