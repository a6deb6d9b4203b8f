package ecs

import (
	"reflect"
)

// ComponentRegistry manages component type registration for an ECS instance.
// Each World has its own ComponentRegistry, allowing multiple
// independent ECS worlds to coexist without interference.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be used.
// Registering the same type twice is a no-op.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	if _, ok := r.factories[t]; ok {
		return
	}
	r.factories[t] = func() iComponentStorage {
		return &genericComponentStorage[T]{}
	}
}

// IsRegistered reports whether the component type has been registered.
func (r *ComponentRegistry) IsRegistered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

// getFactory returns the factory function for a given component type.
// Returns nil if the type is not registered.
func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const (
	genericBlockSize = 64
)

// genericComponentStorage is a generic implementation of iComponentStorage.
// It stores components of a specific type `T` in fixed blocks, so a component
// pointer stays valid until its slot is taken.
type genericComponentStorage[T any] struct {
	blocks []*[genericBlockSize]T
	filled []*[genericBlockSize]bool
}

func (cs *genericComponentStorage[T]) grow(blockIdx int) {
	for blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, new([genericBlockSize]T))
		cs.filled = append(cs.filled, new([genericBlockSize]bool))
	}
}

// Put stores a component at the given index, overwriting any previous value.
func (cs *genericComponentStorage[T]) Put(index int, item any) bool {
	var concreteItem T
	if ptr, ok := item.(*T); ok {
		concreteItem = *ptr
	} else if val, ok := item.(T); ok {
		concreteItem = val
	} else {
		return false
	}

	if index < 0 {
		return false
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize
	cs.grow(blockIdx)

	cs.blocks[blockIdx][slotIdx] = concreteItem
	cs.filled[blockIdx][slotIdx] = true
	return true
}

// Take empties the slot and returns a pointer to a copy of its old value.
func (cs *genericComponentStorage[T]) Take(index int) any {
	if !cs.Has(index) {
		return nil
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	value := new(T)
	*value = cs.blocks[blockIdx][slotIdx]

	var zero T
	cs.blocks[blockIdx][slotIdx] = zero
	cs.filled[blockIdx][slotIdx] = false
	return value
}

// Get returns a pointer to the component at the given index.
func (cs *genericComponentStorage[T]) Get(index int) any {
	if !cs.Has(index) {
		return nil
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize
	return &cs.blocks[blockIdx][slotIdx]
}

// Has checks if a component exists at the given index.
func (cs *genericComponentStorage[T]) Has(index int) bool {
	if index < 0 {
		return false
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	if blockIdx >= len(cs.blocks) {
		return false
	}

	return cs.filled[blockIdx][slotIdx]
}
