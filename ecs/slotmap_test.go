package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotMapInsertGetErase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlotMapPartitions = 1
	m := newSlotMap(cfg)

	arch := &Archetype{id: 1}
	h := m.insert(arch, 3)
	require.False(t, h.IsZero())

	gotArch, row, ok := m.get(h)
	require.True(t, ok)
	assert.Same(t, arch, gotArch)
	assert.Equal(t, uint32(3), row)

	_, _, ok = m.erase(h)
	require.True(t, ok)
	assert.False(t, m.contains(h))
}

func TestSlotMapGenerationNeverZeroAndBumpsOnReuse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlotMapPartitions = 1
	m := newSlotMap(cfg)
	arch := &Archetype{id: 1}

	h1 := m.insert(arch, 0)
	assert.NotEqual(t, uint32(0), h1.generation)

	_, _, _ = m.erase(h1)
	h2 := m.insert(arch, 0)

	assert.Equal(t, h1.index, h2.index, "freed slot should be reused")
	assert.NotEqual(t, h1.generation, h2.generation, "generation must bump on reuse")
	assert.False(t, m.contains(h1), "stale handle must not resolve after reuse")
	assert.True(t, m.contains(h2))
}

func TestSlotMapSetRowPatchesOccupiedSlot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlotMapPartitions = 1
	m := newSlotMap(cfg)
	arch1 := &Archetype{id: 1}
	arch2 := &Archetype{id: 2}

	h := m.insert(arch1, 0)
	ok := m.setRow(h, arch2, 9)
	require.True(t, ok)

	gotArch, row, ok := m.get(h)
	require.True(t, ok)
	assert.Same(t, arch2, gotArch)
	assert.Equal(t, uint32(9), row)
}

func TestSlotMapEraseOnUnknownHandleFails(t *testing.T) {
	cfg := DefaultConfig()
	m := newSlotMap(cfg)

	_, _, ok := m.erase(Handle{})
	assert.False(t, ok)
}

func TestSlotMapPartitionsDistributeRoundRobin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlotMapPartitions = 4
	m := newSlotMap(cfg)
	arch := &Archetype{id: 1}

	seen := map[uint32]bool{}
	for i := 0; i < 8; i++ {
		h := m.insert(arch, uint32(i))
		seen[h.partition] = true
	}

	assert.Len(t, seen, 4, "round-robin insertion should touch every partition")
}

func TestSlotMapLenTracksAliveCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlotMapPartitions = 2
	m := newSlotMap(cfg)
	arch := &Archetype{id: 1}

	h1 := m.insert(arch, 0)
	m.insert(arch, 1)
	assert.Equal(t, 2, m.len())

	m.erase(h1)
	assert.Equal(t, 1, m.len())
}
