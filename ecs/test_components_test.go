package ecs_test

import "github.com/silverware-games/ecs/ecs"

// Common test component types.
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

type AI struct {
	State int
}

// Custom primitive types for testing non-struct components.
type Score int32
type Tag string
type Temperature float64

func newTestRegistry() *ecs.Registry {
	r := ecs.NewRegistry()
	ecs.RegisterComponent[Position](r)
	ecs.RegisterComponent[Velocity](r)
	ecs.RegisterComponent[Name](r)
	ecs.RegisterComponent[Health](r)
	ecs.RegisterComponent[PlayerController](r)
	ecs.RegisterComponent[AI](r)
	ecs.RegisterComponent[Score](r)
	ecs.RegisterComponent[Tag](r)
	ecs.RegisterComponent[Temperature](r)
	ecs.RegisterComponent[int32](r)
	ecs.RegisterComponent[float64](r)
	ecs.RegisterComponent[string](r)
	return r
}

func newParallelTestRegistry() *ecs.Registry {
	r := ecs.NewRegistry(ecs.WithMode(ecs.Parallel), ecs.WithSlotMapPartitions(4))
	ecs.RegisterComponent[Position](r)
	ecs.RegisterComponent[Velocity](r)
	ecs.RegisterComponent[Name](r)
	ecs.RegisterComponent[Health](r)
	ecs.RegisterComponent[Score](r)
	return r
}
