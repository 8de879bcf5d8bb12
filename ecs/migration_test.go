package ecs_test

import (
	"testing"

	"github.com/silverware-games/ecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationChainAddThenRemoveReturnsToOriginalArchetype(t *testing.T) {
	r := newTestRegistry()

	h := r.Create(&Position{X: 1, Y: 1})
	firstTypes, err := r.Types(h)
	require.NoError(t, err)

	require.NoError(t, r.Put(h, &Velocity{DX: 1, DY: 1}))
	require.NoError(t, ecs.Erase[Velocity](r, h))

	finalTypes, err := r.Types(h)
	require.NoError(t, err)
	assert.ElementsMatch(t, firstTypes, finalTypes)

	pos, err := ecs.Get[Position](r, h)
	require.NoError(t, err)
	assert.Equal(t, float32(1), pos.X)
}

func TestMigrationToZeroComponentsLeavesHandleValid(t *testing.T) {
	r := newTestRegistry()

	h := r.Create(&Position{X: 1, Y: 1})
	require.NoError(t, ecs.Erase[Position](r, h))

	assert.True(t, r.Exists(h))
	types, err := r.Types(h)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestRepeatedMigrationsPreserveOtherEntities(t *testing.T) {
	r := newTestRegistry()

	const n = 50
	handles := make([]ecs.Handle, n)
	for i := 0; i < n; i++ {
		handles[i] = r.Create(&Position{X: float32(i)}, &Velocity{DX: float32(i)})
	}

	for i := 0; i < n; i += 3 {
		require.NoError(t, r.Put(handles[i], Score(int32(i))))
	}
	for i := 1; i < n; i += 3 {
		require.NoError(t, ecs.Erase[Velocity](r, handles[i]))
	}

	for i := 0; i < n; i++ {
		pos, err := ecs.Get[Position](r, handles[i])
		require.NoError(t, err)
		assert.Equal(t, float32(i), pos.X)
	}
}

func TestPutSameTypeTwiceKeepsLastValueInPlace(t *testing.T) {
	r := newTestRegistry()
	h := r.Create(&Position{X: 1, Y: 1})

	require.NoError(t, r.Put(h, &Position{X: 2, Y: 2}))
	require.NoError(t, r.Put(h, &Position{X: 3, Y: 3}))

	pos, err := ecs.Get[Position](r, h)
	require.NoError(t, err)
	assert.Equal(t, float32(3), pos.X)
}
