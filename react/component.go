package react

import (
	"iter"
	"reflect"

	"github.com/plus3/cobweb/ecs"
)

// React is a component whose insertion, mutation and removal schedule
// reactions. It must be changed through Insert, Mutate, SetIfNeq and Remove;
// changing it through the world directly bypasses reactors.
type React[T any] struct {
	entity ecs.Entity
	value  T
}

// Entity returns the entity the component is stored on
func (r *React[T]) Entity() ecs.Entity {
	return r.entity
}

// Get returns the wrapped value. Changes made through it do not schedule
// reactions.
func (r *React[T]) Get() *T {
	return &r.value
}

// Insert stores value on the entity and schedules insertion reactions.
// Returns false if the entity does not exist.
func Insert[T any](w *ecs.World, e ecs.Entity, value T) bool {
	k := KernelOf(w)
	ecs.RegisterComponent[React[T]](w.Registry())
	if !w.AddComponent(e, React[T]{entity: e, value: value}) {
		return false
	}
	k.cache.scheduleInsertion(k, w, e, reflect.TypeFor[T]())
	k.reactionTree(w)
	return true
}

// Read returns a copy of the entity's reactive T
func Read[T any](w *ecs.World, e ecs.Entity) (T, bool) {
	if component := ecs.ReadComponent[React[T]](w, e); component != nil {
		return component.value, true
	}
	var zero T
	return zero, false
}

// Mutate applies fn to the entity's reactive T and schedules mutation
// reactions. Returns false if the entity has no React[T].
// fn gets a pointer into component storage and must not change the world's
// structure, for example by inserting a component on the entity.
func Mutate[T any](w *ecs.World, e ecs.Entity, fn func(value *T)) bool {
	k := KernelOf(w)
	component := ecs.ReadComponent[React[T]](w, e)
	if component == nil {
		return false
	}
	fn(&component.value)
	k.cache.scheduleMutation(k, w, e, reflect.TypeFor[T]())
	k.reactionTree(w)
	return true
}

// SetIfNeq replaces the entity's reactive T only if it differs from value.
// Returns true if the value changed.
func SetIfNeq[T comparable](w *ecs.World, e ecs.Entity, value T) bool {
	component := ecs.ReadComponent[React[T]](w, e)
	if component == nil || component.value == value {
		return false
	}
	return Mutate(w, e, func(current *T) { *current = value })
}

// Remove removes the entity's reactive T. Removal reactions run at the
// next safe point.
func Remove[T any](w *ecs.World, e ecs.Entity) bool {
	k := KernelOf(w)
	if !w.RemoveComponent(e, reactType[T]()) {
		return false
	}
	k.reactionTree(w)
	return true
}

// EachReact iterates every entity with a reactive T
func EachReact[T any](w *ecs.World) iter.Seq2[ecs.Entity, *T] {
	return func(yield func(ecs.Entity, *T) bool) {
		for e, component := range ecs.Each[React[T]](w) {
			if !yield(e, &component.value) {
				return
			}
		}
	}
}
