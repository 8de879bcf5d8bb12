package ecs

import "errors"

// Debug controls whether precondition violations panic (development) or
// are left as undefined behavior (spec.md §7: "release behavior
// documented as undefined"). Sentinel-error style grounded on
// DangerosoDavo-ecs/errors.go; the panic-on-debug gate is this module's
// own choice for the PreconditionViolation category spec.md §7 says
// "may be a debug-only assertion".
var Debug = true

var (
	// ErrStaleHandle is returned when a handle's generation no longer
	// matches the slot it addresses: the entity was erased.
	ErrStaleHandle = errors.New("ecs: stale handle")
	// ErrMissingComponent is returned when the entity exists but does not
	// carry the requested component type.
	ErrMissingComponent = errors.New("ecs: missing component")
	// ErrDuplicateComponent is a PreconditionViolation: the same
	// component type was supplied twice in a single call.
	ErrDuplicateComponent = errors.New("ecs: duplicate component type")
	// ErrUnknownComponent is a PreconditionViolation: a component value
	// of a type never seen by this registry was supplied.
	ErrUnknownComponent = errors.New("ecs: unknown component type")
	// ErrCapacityExhausted names the overflow of a slot index or
	// generation counter. No operation returns it: generation counters
	// wrap past zero to 1, and slot indexes are not checked for overflow.
	ErrCapacityExhausted = errors.New("ecs: capacity exhausted")
	// ErrInvalidArgument is a PreconditionViolation for a caller-supplied
	// argument outside its documented domain, e.g. View.Split(n) with n<=0.
	ErrInvalidArgument = errors.New("ecs: invalid argument")
)

// precondition panics with err when Debug is enabled; otherwise it is a
// silent no-op, matching spec.md §7's PreconditionViolation semantics.
func precondition(cond bool, err error) {
	if cond && Debug {
		panic(err)
	}
}
