package ecs

import (
	"reflect"
	"sync/atomic"

	"github.com/kamstrup/intmap"
	"github.com/rs/zerolog"
)

// Registry owns the slot map and the full set of archetypes, and
// orchestrates every CRUD and migration operation in spec.md §4.4. It
// replaces the mono-state/ambient-registry pattern spec.md §9 calls out
// in parts of the original source: every operation takes an explicit
// *Registry receiver, so tests and multiple independent worlds are
// trivial to construct side by side.
type Registry struct {
	cfg    Config
	slots  *slotMap
	logger zerolog.Logger

	archetypesMu rwLocker
	archetypes   *intmap.Map[uint64, *Archetype]
	factories    map[TypeId]func(uint) columnOps

	archetypeVersion uint64 // atomic; bumped whenever a new archetype is created
}

// NewRegistry constructs a Registry with DefaultConfig, adjusted by opts.
func NewRegistry(opts ...Option) *Registry {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewRegistryFromConfig(cfg)
}

// NewRegistryFromConfig constructs a Registry from an explicit Config,
// e.g. one produced by LoadConfig.
func NewRegistryFromConfig(cfg Config) *Registry {
	cfg.normalize()
	return &Registry{
		cfg:          cfg,
		slots:        newSlotMap(cfg),
		logger:       zerolog.Nop(),
		archetypesMu: newLock(cfg.Mode),
		archetypes:   intmap.New[uint64, *Archetype](cfg.InitialArchetypeCapacity),
		factories:    make(map[TypeId]func(uint) columnOps),
	}
}

// SetLogger attaches a structured logger (spec.md's ambient logging is
// out of the core's required scope, but this module carries it the way
// Argus-Labs-world-engine/cardinal/log does for its own registry events).
func (r *Registry) SetLogger(l zerolog.Logger) {
	r.logger = l
}

// RegisterComponent registers component type T's column factory. Must be
// called once per component type before any entity carrying T is
// created. Grounded on the teacher's ComponentRegistry.RegisterComponent.
func RegisterComponent[T any](r *Registry) {
	id := TypeIdOf[T]()
	r.factories[id] = func(segLog2 uint) columnOps {
		return newColumn[T](segLog2)
	}
}

func (r *Registry) archetypeFor(ts TypeSet) (*Archetype, bool) {
	r.archetypesMu.RLock()
	a, ok := r.archetypes.Get(ts.key())
	r.archetypesMu.RUnlock()
	return a, ok
}

// getOrCreateArchetype returns the archetype for ts, creating it (under
// exclusive lock) on first use.
func (r *Registry) getOrCreateArchetype(ts TypeSet) *Archetype {
	if a, ok := r.archetypeFor(ts); ok {
		return a
	}
	r.archetypesMu.Lock()
	defer r.archetypesMu.Unlock()
	key := ts.key()
	if a, ok := r.archetypes.Get(key); ok {
		return a
	}
	a := newArchetype(key, ts, r.cfg.Mode, r.factories, r.cfg.SegmentSizeLog2)
	r.archetypes.Put(key, a)
	atomic.AddUint64(&r.archetypeVersion, 1)
	r.logger.Debug().Uint64("archetype", key).Int("types", ts.Len()).Msg("archetype created")
	return a
}

// forEachArchetype safely iterates every archetype currently in the
// registry, used by View to build its matching set.
func (r *Registry) forEachArchetype(fn func(*Archetype)) {
	r.archetypesMu.RLock()
	archs := make([]*Archetype, 0, r.archetypes.Len())
	for k := range r.archetypes.Keys() {
		if a, ok := r.archetypes.Get(k); ok {
			archs = append(archs, a)
		}
	}
	r.archetypesMu.RUnlock()

	for _, a := range archs {
		fn(a)
	}
}

// ForEachArchetype exposes forEachArchetype to callers outside the
// package (e.g. debugui), which only need read access to archetype shape
// for diagnostics, never a reason to mutate one directly.
func (r *Registry) ForEachArchetype(fn func(*Archetype)) {
	r.forEachArchetype(fn)
}

func (r *Registry) archetypeVersionNow() uint64 {
	return atomic.LoadUint64(&r.archetypeVersion)
}

// componentValues builds a TypeId->value map from a variadic component
// list, rejecting duplicate types (spec.md §6: "precondition violation if
// duplicate types").
func componentValues(components []any) (TypeSet, map[TypeId]any) {
	values := make(map[TypeId]any, len(components))
	ids := make([]TypeId, 0, len(components))
	for _, c := range components {
		t := componentType(c)
		id := idForType(t)
		if _, dup := values[id]; dup {
			precondition(true, ErrDuplicateComponent)
			continue
		}
		values[id] = c
		ids = append(ids, id)
	}
	return newTypeSet(ids), values
}

// Create builds a new entity with the given components (spec.md §4.4).
// All component types must be distinct and previously registered via
// RegisterComponent.
func (r *Registry) Create(components ...any) Handle {
	precondition(len(components) == 0, ErrUnknownComponent)
	ts, values := componentValues(components)
	arch := r.getOrCreateArchetype(ts)

	arch.mu.Lock()
	h := r.slots.insert(arch, 0)
	row := arch.insert(h, values)
	r.slots.setRow(h, arch, uint32(row))
	arch.mu.Unlock()

	return h
}

// Exists reports whether h currently addresses a live entity.
func (r *Registry) Exists(h Handle) bool {
	return r.slots.contains(h)
}

// resolve looks up the (archetype, row) for a handle, returning
// ErrStaleHandle if the handle is invalid or has been erased. The result
// is only a snapshot: in Parallel mode, a concurrent erase of a disjoint
// handle sharing the same archetype can backfill h into a different row
// (archetype.go's reindexFunc) at any point after this call returns.
// Anything that goes on to mutate a row reached via resolve must
// re-validate under the archetype lock with lockRow/lockRowRead before
// touching it (spec.md §5).
func (r *Registry) resolve(h Handle) (*Archetype, uint32, error) {
	arch, row, ok := r.slots.get(h)
	if !ok {
		return nil, 0, ErrStaleHandle
	}
	return arch, row, nil
}

// lockRow acquires guess's write lock and re-reads h's current
// (archetype, row) from the slot map before returning, following h to a
// different archetype if a concurrent migration or backfill moved it there
// between the caller's resolve and this call. The returned unlock must be
// called exactly once to release whichever archetype's lock ended up held.
// This closes the TOCTOU window described on resolve: once lockRow
// returns, row is current as of the moment the lock was taken, and stays
// current for as long as the caller holds the lock (any operation that
// could change it needs the same lock).
func (r *Registry) lockRow(h Handle, guess *Archetype) (arch *Archetype, row uint32, unlock func(), err error) {
	arch = guess
	for {
		arch.mu.Lock()
		freshArch, freshRow, ok := r.slots.get(h)
		if !ok {
			arch.mu.Unlock()
			return nil, 0, nil, ErrStaleHandle
		}
		if freshArch == arch {
			locked := arch
			return arch, freshRow, func() { locked.mu.Unlock() }, nil
		}
		arch.mu.Unlock()
		arch = freshArch
	}
}

// lockRowRead is lockRow's read-only counterpart, used by callers that
// only need to read a component, never mutate one.
func (r *Registry) lockRowRead(h Handle, guess *Archetype) (arch *Archetype, row uint32, unlock func(), err error) {
	arch = guess
	for {
		arch.mu.RLock()
		freshArch, freshRow, ok := r.slots.get(h)
		if !ok {
			arch.mu.RUnlock()
			return nil, 0, nil, ErrStaleHandle
		}
		if freshArch == arch {
			locked := arch
			return arch, freshRow, func() { locked.mu.RUnlock() }, nil
		}
		arch.mu.RUnlock()
		arch = freshArch
	}
}

// Has reports whether h carries a component of type T.
func Has[T any](r *Registry, h Handle) bool {
	arch, _, err := r.resolve(h)
	if err != nil {
		return false
	}
	return arch.HasComponent(TypeIdOf[T]())
}

// Get returns a pointer to h's component of type T.
func Get[T any](r *Registry, h Handle) (*T, error) {
	arch, row, err := r.resolve(h)
	if err != nil {
		return nil, err
	}
	arch, row, unlock, err := r.lockRowRead(h, arch)
	if err != nil {
		return nil, err
	}
	defer unlock()
	raw := arch.getComponent(int(row), TypeIdOf[T]())
	if raw == nil {
		return nil, ErrMissingComponent
	}
	return raw.(*T), nil
}

// Types returns the sorted TypeIds carried by h.
func (r *Registry) Types(h Handle) ([]TypeId, error) {
	arch, _, err := r.resolve(h)
	if err != nil {
		return nil, err
	}
	return arch.Types().Ids(), nil
}

// Size returns the total number of live entities across all archetypes.
func (r *Registry) Size() int {
	return r.slots.len()
}

// Clear removes every entity from every archetype and drops all
// archetypes, resetting the registry to empty. Every slot is freed with
// its generation kept, so all handles issued so far become stale and stay
// stale when their slots are reused.
func (r *Registry) Clear() {
	r.archetypesMu.Lock()
	defer r.archetypesMu.Unlock()
	r.archetypes.Clear()
	for _, p := range r.slots.partitions {
		p.mu.Lock()
		p.free = p.free[:0]
		for i := range p.slots {
			p.slots[i].occupied = false
			p.slots[i].archetype = nil
			p.slots[i].row = 0
			p.free = append(p.free, uint32(i))
		}
		p.alive = 0
		p.mu.Unlock()
	}
	atomic.AddUint64(&r.archetypeVersion, 1)
}

// Put overwrites h's component of the same type as v if h already
// carries that type (O(1)); otherwise it migrates h into the archetype
// for its type set plus TypeId(v), following spec.md §4.4's migrate-in
// algorithm.
func (r *Registry) Put(h Handle, v any) error {
	arch, row, err := r.resolve(h)
	if err != nil {
		return err
	}
	tid := idForType(componentType(v))

	if arch.HasComponent(tid) {
		lockedArch, lockedRow, unlock, err := r.lockRow(h, arch)
		if err != nil {
			return err
		}
		if lockedArch.HasComponent(tid) {
			lockedArch.column(tid).setAny(int(lockedRow), v)
			unlock()
			return nil
		}
		// h migrated away from arch between resolve and the lock above
		// (a concurrent operation on this exact handle); fall through to
		// migrate against its now-current archetype instead.
		unlock()
		arch, row = lockedArch, lockedRow
	}

	return r.migrate(h, arch, row, arch.Types().withAdded(tid), map[TypeId]any{tid: v})
}

// PutMany overwrites or adds several components in one migration step, at
// most one migration even if several of the components are new.
func (r *Registry) PutMany(h Handle, components ...any) error {
	arch, row, err := r.resolve(h)
	if err != nil {
		return err
	}
	_, values := componentValues(components)

	arch, row, unlock, err := r.lockRow(h, arch)
	if err != nil {
		return err
	}

	extra := make(map[TypeId]any)
	inPlace := make(map[TypeId]any)
	for tid, v := range values {
		if arch.HasComponent(tid) {
			inPlace[tid] = v
		} else {
			extra[tid] = v
		}
	}

	for tid, v := range inPlace {
		arch.column(tid).setAny(int(row), v)
	}

	if len(extra) == 0 {
		unlock()
		return nil
	}

	targetTs := arch.Types()
	for tid := range extra {
		targetTs = targetTs.withAdded(tid)
	}
	unlock()
	return r.migrate(h, arch, row, targetTs, extra)
}

// Erase removes the components of the given types from h, migrating it to
// the archetype for its remaining type set (spec.md §4.4's migrate-out
// algorithm). If h does not carry T, Erase returns ErrMissingComponent
// and h is left unchanged.
func Erase[T any](r *Registry, h Handle) error {
	arch, row, err := r.resolve(h)
	if err != nil {
		return err
	}
	tid := TypeIdOf[T]()
	if !arch.HasComponent(tid) {
		return ErrMissingComponent
	}
	return r.migrate(h, arch, row, arch.Types().withRemoved(tid), nil)
}

// migrate implements spec.md §4.4's four-step migration contract exactly:
// append to target before erasing from source, then patch the slot map as
// the single transactional commit point.
func (r *Registry) migrate(h Handle, src *Archetype, row uint32, targetTs TypeSet, extra map[TypeId]any) error {
	dst := r.getOrCreateArchetype(targetTs)

	first, second := lockOrder(src, dst)
	first.mu.Lock()
	if second != first {
		second.mu.Lock()
	}

	// The caller's row is only a snapshot taken before these locks were
	// acquired. A concurrent erase of a disjoint handle sharing src can
	// have backfilled h into a different row in the meantime, or (rarer, a
	// second concurrent operation racing this exact handle) moved it to a
	// different archetype entirely. Re-read the slot map now, inside the
	// critical section, so the row moved below is the one h currently
	// addresses.
	freshArch, freshRow, ok := r.slots.get(h)
	if !ok || freshArch != src {
		if second != first {
			second.mu.Unlock()
		}
		first.mu.Unlock()
		return ErrStaleHandle
	}
	row = freshRow

	newRow := moveRowTo(src, int(row), dst, h, extra)

	var backfilled Handle
	var backfillRow int
	hasBackfill := false
	src.erase(int(row), func(movedHandle Handle, newRow int) {
		backfilled, backfillRow, hasBackfill = movedHandle, newRow, true
	})

	// The slot map is patched here, still inside the archetype locks, per
	// spec.md §5: "the slot map lock is acquired last" — nested inside the
	// archetype critical section rather than after it, so no other
	// operation can observe or reshape src/dst between the row move and
	// the handle(s) that address it being made authoritative again.
	r.slots.setRow(h, dst, uint32(newRow))
	if hasBackfill {
		r.slots.setRow(backfilled, src, uint32(backfillRow))
	}

	if second != first {
		second.mu.Unlock()
	}
	first.mu.Unlock()

	r.logger.Debug().Uint64("from", src.id).Uint64("to", dst.id).Msg("entity migrated")
	return nil
}

// lockOrder returns a and b's archetype locks in a stable order (by
// archetype id, ascending) so migration never deadlocks against a
// concurrent migration in the opposite direction (spec.md §5).
func lockOrder(a, b *Archetype) (first, second *Archetype) {
	if a.id <= b.id {
		return a, b
	}
	return b, a
}

// Destroy erases h entirely: its row is removed from its archetype and
// its slot is freed. A second Destroy on the same handle returns
// ErrStaleHandle rather than corrupting state (spec.md §8, property 8).
func (r *Registry) Destroy(h Handle) error {
	arch, row, err := r.resolve(h)
	if err != nil {
		return err
	}

	arch, row, unlock, err := r.lockRow(h, arch)
	if err != nil {
		return err
	}
	defer unlock()

	var backfilled Handle
	var backfillRow int
	hasBackfill := false
	arch.erase(int(row), func(movedHandle Handle, newRow int) {
		backfilled, backfillRow, hasBackfill = movedHandle, newRow, true
	})
	if hasBackfill {
		r.slots.setRow(backfilled, arch, uint32(backfillRow))
	}
	_, _, ok := r.slots.erase(h)
	if !ok {
		return ErrStaleHandle
	}
	return nil
}

// reflectHas reports whether an archetype's TypeSet contains type t, for
// callers inside this package that only have a reflect.Type, not a
// compile-time T.
func reflectHas(arch *Archetype, t reflect.Type) bool {
	return arch.HasComponent(idForType(t))
}
