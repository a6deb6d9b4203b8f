package react

import (
	"reflect"

	"github.com/plus3/cobweb/ecs"
)

// ReactRes is a resource whose mutation schedules ResourceMutation[R]
// reactors
type ReactRes[R any] struct {
	value R
}

// Get returns the wrapped value. Changes made through it do not schedule
// reactions.
func (r *ReactRes[R]) Get() *R {
	return &r.value
}

// InsertReactRes stores value as a reactive resource, replacing any existing
// one. Insertion does not schedule reactions.
func InsertReactRes[R any](w *ecs.World, value R) {
	w.AddResource(&ReactRes[R]{value: value})
}

// ReadRes returns a copy of the reactive resource
func ReadRes[R any](w *ecs.World) (R, bool) {
	if res := ecs.Resource[ReactRes[R]](w); res != nil {
		return res.value, true
	}
	var zero R
	return zero, false
}

// MutateRes applies fn to the reactive resource and schedules its mutation
// reactors. Returns false if the resource does not exist.
func MutateRes[R any](w *ecs.World, fn func(value *R)) bool {
	k := KernelOf(w)
	res := ecs.Resource[ReactRes[R]](w)
	if res == nil {
		return false
	}
	fn(&res.value)
	k.cache.scheduleResourceMutation(k, reflect.TypeFor[R]())
	k.reactionTree(w)
	return true
}

// SetResIfNeq replaces the reactive resource only if it differs from value.
// Returns true if the value changed.
func SetResIfNeq[R comparable](w *ecs.World, value R) bool {
	res := ecs.Resource[ReactRes[R]](w)
	if res == nil || res.value == value {
		return false
	}
	return MutateRes(w, func(current *R) { *current = value })
}
