package ecs

import "reflect"

// Get2 fetches two components in one call, failing with the first
// missing component's error if either is absent (spec.md §6:
// "get<T1,…>(h) -> tuple; fail if !exists or any missing").
func Get2[A, B any](r *Registry, h Handle) (*A, *B, error) {
	a, err := Get[A](r, h)
	if err != nil {
		return nil, nil, err
	}
	b, err := Get[B](r, h)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Get3 fetches three components in one call.
func Get3[A, B, C any](r *Registry, h Handle) (*A, *B, *C, error) {
	a, err := Get[A](r, h)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := Get[B](r, h)
	if err != nil {
		return nil, nil, nil, err
	}
	c, err := Get[C](r, h)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, b, c, nil
}

// EraseTypes removes an arbitrary set of component types from h in a
// single migration, the general n-ary form of Erase[T] (spec.md §6:
// "erase<T…>(h)"). Naming a type twice is a precondition violation;
// naming a type h does not carry returns ErrMissingComponent.
func (r *Registry) EraseTypes(h Handle, types ...reflect.Type) error {
	arch, row, err := r.resolve(h)
	if err != nil {
		return err
	}

	ids := make([]TypeId, 0, len(types))
	seen := make(map[TypeId]bool, len(types))
	for _, t := range types {
		id := idForType(t)
		precondition(seen[id], ErrDuplicateComponent)
		seen[id] = true
		if !arch.HasComponent(id) {
			return ErrMissingComponent
		}
		ids = append(ids, id)
	}

	return r.migrate(h, arch, row, arch.Types().withRemoved(ids...), nil)
}

// Erase2 removes two component types from h in one migration.
func Erase2[A, B any](r *Registry, h Handle) error {
	arch, row, err := r.resolve(h)
	if err != nil {
		return err
	}
	idA, idB := TypeIdOf[A](), TypeIdOf[B]()
	precondition(idA == idB, ErrDuplicateComponent)
	if !arch.HasComponent(idA) || !arch.HasComponent(idB) {
		return ErrMissingComponent
	}
	return r.migrate(h, arch, row, arch.Types().withRemoved(idA, idB), nil)
}
