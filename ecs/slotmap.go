package ecs

import "sync/atomic"

// slotEntry is one element of a slot map partition: either free (its
// generation is the generation the next occupant will receive minus the
// increment applied on reuse) or occupied, holding the value described in
// spec.md §4.3: {archetype, row}.
type slotEntry struct {
	generation uint32
	occupied   bool
	archetype  *Archetype
	row        uint32
}

// slotPartition is one independently locked shard of the slot map.
// Sharding into slot_map_partitions shards (spec.md §4.3/§6) lets
// unrelated entities avoid contending on the same lock in Parallel mode,
// generalizing DangerosoDavo-ecs/entity.go's single EntityRegistry to N
// shards the way its sibling storageProvider shards stores by key.
type slotPartition struct {
	mu    rwLocker
	slots []slotEntry
	free  []uint32
	alive int
}

func newSlotPartition(mode Mode) *slotPartition {
	return &slotPartition{mu: newLock(mode)}
}

// insert allocates a slot for value, reusing a free slot when available.
// The returned generation is never zero (spec.md §4.3: "wrap-to-nonzero
// on overflow to preserve the reserved-zero invariant").
func (p *slotPartition) insert(archetype *Archetype, row uint32) (index, generation uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		idx = uint32(len(p.slots))
		p.slots = append(p.slots, slotEntry{})
	}

	slot := &p.slots[idx]
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}
	slot.occupied = true
	slot.archetype = archetype
	slot.row = row
	p.alive++
	return idx, slot.generation
}

func (p *slotPartition) get(index, generation uint32) (archetype *Archetype, row uint32, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if int(index) >= len(p.slots) {
		return nil, 0, false
	}
	slot := &p.slots[index]
	if !slot.occupied || slot.generation != generation {
		return nil, 0, false
	}
	return slot.archetype, slot.row, true
}

// setRow patches the (archetype, row) of an already-occupied slot; used
// after migration and after a swap-erase backfill reindexes a handle.
func (p *slotPartition) setRow(index, generation uint32, archetype *Archetype, row uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(index) >= len(p.slots) {
		return false
	}
	slot := &p.slots[index]
	if !slot.occupied || slot.generation != generation {
		return false
	}
	slot.archetype = archetype
	slot.row = row
	return true
}

func (p *slotPartition) erase(index, generation uint32) (archetype *Archetype, row uint32, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(index) >= len(p.slots) {
		return nil, 0, false
	}
	slot := &p.slots[index]
	if !slot.occupied || slot.generation != generation {
		return nil, 0, false
	}
	archetype, row = slot.archetype, slot.row
	slot.occupied = false
	slot.archetype = nil
	slot.row = 0
	p.free = append(p.free, index)
	p.alive--
	return archetype, row, true
}

func (p *slotPartition) len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.alive
}

// slotMap is the full generational handle table: a fixed number of
// independently locked partitions selected round-robin at insert time.
type slotMap struct {
	mode       Mode
	partitions []*slotPartition
	roundRobin uint64
}

func newSlotMap(cfg Config) *slotMap {
	n := cfg.SlotMapPartitions
	if n <= 0 {
		n = 1
	}
	parts := make([]*slotPartition, n)
	for i := range parts {
		parts[i] = newSlotPartition(cfg.Mode)
	}
	return &slotMap{mode: cfg.Mode, partitions: parts}
}

func (m *slotMap) insert(archetype *Archetype, row uint32) Handle {
	pIdx := uint32(atomic.AddUint64(&m.roundRobin, 1) % uint64(len(m.partitions)))
	index, gen := m.partitions[pIdx].insert(archetype, row)
	return handleFromParts(pIdx, index, gen)
}

func (m *slotMap) partitionFor(h Handle) (*slotPartition, bool) {
	if h.IsZero() || int(h.partition) >= len(m.partitions) {
		return nil, false
	}
	return m.partitions[h.partition], true
}

func (m *slotMap) get(h Handle) (archetype *Archetype, row uint32, ok bool) {
	part, valid := m.partitionFor(h)
	if !valid {
		return nil, 0, false
	}
	return part.get(h.index, h.generation)
}

func (m *slotMap) setRow(h Handle, archetype *Archetype, row uint32) bool {
	part, valid := m.partitionFor(h)
	if !valid {
		return false
	}
	return part.setRow(h.index, h.generation, archetype, row)
}

func (m *slotMap) erase(h Handle) (archetype *Archetype, row uint32, ok bool) {
	part, valid := m.partitionFor(h)
	if !valid {
		return nil, 0, false
	}
	return part.erase(h.index, h.generation)
}

func (m *slotMap) contains(h Handle) bool {
	_, _, ok := m.get(h)
	return ok
}

func (m *slotMap) len() int {
	total := 0
	for _, p := range m.partitions {
		total += p.len()
	}
	return total
}
