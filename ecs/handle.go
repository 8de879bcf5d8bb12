package ecs

import "fmt"

// Handle is an opaque, generation-validated identifier for a live entity.
// The reserved zero Handle is never issued and is always invalid, per
// spec.md §3. Grounded on DangerosoDavo-ecs/entity.go's EntityID, extended
// with a partition field for sharded slot maps (spec.md §4.3,
// slot_map_partitions).
type Handle struct {
	partition  uint32
	index      uint32
	generation uint32
}

// IsZero reports whether h is the reserved invalid handle.
func (h Handle) IsZero() bool {
	return h == Handle{}
}

// String renders the handle for debugging/logging.
func (h Handle) String() string {
	if h.IsZero() {
		return "Handle(nil)"
	}
	return fmt.Sprintf("Handle(p%d:%d:g%d)", h.partition, h.index, h.generation)
}

func handleFromParts(partition, index, generation uint32) Handle {
	return Handle{partition: partition, index: index, generation: generation}
}
