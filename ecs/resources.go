package ecs

import (
	"reflect"
)

// AddResource stores a world-global value keyed by its type. Passing a
// pointer stores that pointer; passing a value stores a copy. An existing
// resource of the same type is replaced and dropped.
func (w *World) AddResource(value any) {
	resourceType := reflect.TypeOf(value)
	if resourceType == nil {
		panic("resource cannot be nil")
	}

	var ptr any
	if resourceType.Kind() == reflect.Ptr {
		resourceType = resourceType.Elem()
		ptr = value
	} else {
		rv := reflect.New(resourceType)
		rv.Elem().Set(reflect.ValueOf(value))
		ptr = rv.Interface()
	}

	old, exists := w.resources[resourceType]
	w.resources[resourceType] = ptr
	if exists {
		drop(old)
	}
}

// GetResource returns a pointer to the resource of the given type, or nil
func (w *World) GetResource(resourceType reflect.Type) any {
	return w.resources[resourceType]
}

// HasResource reports whether a resource of the given type exists
func (w *World) HasResource(resourceType reflect.Type) bool {
	_, ok := w.resources[resourceType]
	return ok
}

// RemoveResourceByType removes and drops the resource of the given type
func (w *World) RemoveResourceByType(resourceType reflect.Type) bool {
	old, ok := w.resources[resourceType]
	if !ok {
		return false
	}
	delete(w.resources, resourceType)
	drop(old)
	return true
}

// Resource returns the resource of type T, or nil if it does not exist
func Resource[T any](w *World) *T {
	value, _ := w.resources[reflect.TypeFor[T]()].(*T)
	return value
}

// InsertResource stores value as the resource of type T and returns a pointer to it
func InsertResource[T any](w *World, value T) *T {
	ptr := new(T)
	*ptr = value
	w.AddResource(ptr)
	return ptr
}

// InitResource returns the resource of type T, inserting the zero value if missing
func InitResource[T any](w *World) *T {
	if existing := Resource[T](w); existing != nil {
		return existing
	}
	var zero T
	return InsertResource(w, zero)
}

// RemoveResource removes the resource of type T
func RemoveResource[T any](w *World) bool {
	return w.RemoveResourceByType(reflect.TypeFor[T]())
}

// TrackRemovals starts recording removals of the component type, from both
// RemoveComponent and Despawn. Calling it again is a no-op.
func (w *World) TrackRemovals(compType reflect.Type) {
	if _, ok := w.removals[compType]; ok {
		return
	}
	w.removals[compType] = make([]Entity, 0, 16)
}

// DrainRemoved appends every entity that lost a component of the given type
// since the last drain to buf[:0] and returns it. Entities are reported in
// removal order. Untracked types always drain empty.
func (w *World) DrainRemoved(compType reflect.Type, buf []Entity) []Entity {
	buf = buf[:0]
	removed, ok := w.removals[compType]
	if !ok {
		return buf
	}
	buf = append(buf, removed...)
	w.removals[compType] = removed[:0]
	return buf
}

func (w *World) recordRemoval(compType reflect.Type, e Entity) {
	removed, ok := w.removals[compType]
	if !ok {
		return
	}
	w.removals[compType] = append(removed, e)
}
