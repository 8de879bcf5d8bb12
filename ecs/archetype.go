package ecs

import "sync/atomic"

// Archetype groups every entity that carries exactly the same set of
// component types, storing their data column-major (spec.md §3/§4.2).
type Archetype struct {
	id      uint64
	types   TypeSet
	typeIds []TypeId // same order as columns, stable for the archetype's lifetime
	columns map[TypeId]columnOps
	handles *column[Handle]

	mu            rwLocker
	changeCounter uint64 // atomic; bumped on any mutation that can invalidate references
}

func newArchetype(id uint64, types TypeSet, mode Mode, factories map[TypeId]func(uint) columnOps, segLog2 uint) *Archetype {
	ids := types.Ids()
	a := &Archetype{
		id:      id,
		types:   types,
		typeIds: append([]TypeId(nil), ids...),
		columns: make(map[TypeId]columnOps, len(ids)),
		handles: newColumn[Handle](segLog2),
		mu:      newLock(mode),
	}
	for _, tid := range ids {
		factory, ok := factories[tid]
		if !ok {
			panic(ErrUnknownComponent)
		}
		a.columns[tid] = factory(segLog2)
	}
	return a
}

// ID returns the archetype's stable identity, the hash of its sorted
// TypeSet. Used both as the registry's map key and as the lock-ordering
// key during migration (spec.md §5).
func (a *Archetype) ID() uint64 { return a.id }

// Types returns the archetype's component TypeSet.
func (a *Archetype) Types() TypeSet { return a.types }

// Size returns the number of live rows, derived from the handle column
// (spec.md §4.2: "all columns have identical length").
func (a *Archetype) Size() int {
	return a.handles.len()
}

// ChangeCounter returns the current value of the archetype's monotone
// mutation counter (spec.md §4.2). Views do not read it (they hold the
// archetype's read lock while scanning); it is reported by LogSnapshot
// and the debugui inspector.
func (a *Archetype) ChangeCounter() uint64 {
	return atomic.LoadUint64(&a.changeCounter)
}

func (a *Archetype) bumpChangeCounter() {
	atomic.AddUint64(&a.changeCounter, 1)
}

// HasComponent reports whether id is one of this archetype's column types.
func (a *Archetype) HasComponent(id TypeId) bool {
	_, ok := a.columns[id]
	return ok
}

// column returns the type-erased column for id, or nil.
func (a *Archetype) column(id TypeId) columnOps {
	return a.columns[id]
}

// insert appends one row built from values (a map of TypeId -> component
// value covering exactly this archetype's TypeSet) plus the owning
// handle, and returns the new row index. Every column, including the
// handle column, grows by exactly one element (spec.md §4.2's insert
// contract).
func (a *Archetype) insert(h Handle, values map[TypeId]any) int {
	precondition(len(values) != len(a.typeIds), ErrUnknownComponent)
	row := -1
	for _, tid := range a.typeIds {
		v, ok := values[tid]
		precondition(!ok, ErrUnknownComponent)
		idx := a.columns[tid].pushAny(v)
		if row == -1 {
			row = idx
		}
	}
	handleRow := a.handles.push(h)
	if row == -1 {
		row = handleRow
	}
	a.bumpChangeCounter()
	return row
}

// reindexFunc is invoked when a swap-erase backfills row with the handle
// that used to live at the archetype's last row, so the caller (the
// registry's slot map) can patch that handle's location.
type reindexFunc func(movedHandle Handle, newRow int)

// erase swap-erases row out of every column, including the handle column,
// and reports (via reindex) any handle that got backfilled into row.
func (a *Archetype) erase(row int, reindex reindexFunc) {
	precondition(row < 0 || row >= a.Size(), ErrStaleHandle)

	for _, tid := range a.typeIds {
		a.columns[tid].swapErase(row)
	}
	movedFrom, moved := a.handles.swapErase(row)
	if moved {
		movedHandle := *a.handles.get(row)
		_ = movedFrom
		reindex(movedHandle, row)
	}
	a.bumpChangeCounter()
}

// handleAt returns the handle stored at row.
func (a *Archetype) handleAt(row int) Handle {
	return *a.handles.get(row)
}

// getComponent returns a pointer (boxed in `any`) to the component of
// type id at row, or nil if this archetype has no such column.
func (a *Archetype) getComponent(row int, id TypeId) any {
	col, ok := a.columns[id]
	if !ok {
		return nil
	}
	return col.getAny(row)
}

// clear empties every column and the handle column, dropping their
// segments, and bumps the change counter once.
func (a *Archetype) clear() {
	for _, tid := range a.typeIds {
		a.columns[tid].clear()
	}
	a.handles.clear()
	a.bumpChangeCounter()
}

// moveRowTo performs step 1 of the migration algorithm in spec.md §4.4:
// append a new row to dst, taking shared component values from src[row]
// via move_from and the caller-supplied values (`extra`) for newly added
// types. The handle is appended to dst's handle column. src[row] is left
// logically moved-from; the caller must erase it from src immediately
// (spec.md §4.4 step 2).
func moveRowTo(src *Archetype, row int, dst *Archetype, handle Handle, extra map[TypeId]any) int {
	newRow := -1
	for _, tid := range dst.typeIds {
		var idx int
		if srcCol, ok := src.columns[tid]; ok {
			idx = dst.columns[tid].moveFrom(srcCol, row)
		} else {
			v, ok := extra[tid]
			precondition(!ok, ErrUnknownComponent)
			idx = dst.columns[tid].pushAny(v)
		}
		if newRow == -1 {
			newRow = idx
		}
	}
	handleRow := dst.handles.push(handle)
	if newRow == -1 {
		newRow = handleRow
	}
	dst.bumpChangeCounter()
	return newRow
}

// validate checks the archetype invariant that every column, including
// the handle column, has identical length. Intended for debug builds and
// tests; panics on violation.
func (a *Archetype) validate() {
	n := a.handles.len()
	for _, tid := range a.typeIds {
		if a.columns[tid].len() != n {
			panic("ecs: archetype column length mismatch")
		}
	}
}
