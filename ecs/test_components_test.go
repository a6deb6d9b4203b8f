package ecs_test

import "github.com/plus3/cobweb/ecs"

// Common test component types
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

// Custom primitive types for testing non-pointer components
type Score int32
type Tag string

// Lease records when it is dropped by the world
type Lease struct {
	ID      int
	Dropped *[]int
}

func (l Lease) Drop() {
	*l.Dropped = append(*l.Dropped, l.ID)
}

type Config struct {
	Gravity float32
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[PlayerController](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterComponent[Tag](registry)
	ecs.RegisterComponent[Lease](registry)
	return registry
}
