package ecs

import (
	"iter"
	"reflect"
	"slices"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype represents a unique combination of component types.
// Rows are recycled through a free list; a row's entity is Placeholder while free.
type Archetype struct {
	id       uint32
	types    []reflect.Type
	storages []iComponentStorage
	entities []Entity
	free     []uint32
	count    int
}

// NewArchetype creates a new archetype with the given ID and sorted component types
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:       id,
		types:    types,
		storages: make([]iComponentStorage, len(types)),
	}

	// Initialize storage for each component type
	for idx, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.storages[idx] = factory()
	}

	return a
}

// allocate reserves a row for the entity
func (a *Archetype) allocate(entity Entity) uint32 {
	a.count++
	if len(a.free) > 0 {
		row := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		a.entities[row] = entity
		return row
	}
	a.entities = append(a.entities, entity)
	return uint32(len(a.entities) - 1)
}

// release frees a row. Component slots must already be taken.
func (a *Archetype) release(row uint32) {
	if int(row) >= len(a.entities) || a.entities[row] == Placeholder {
		return
	}
	a.entities[row] = Placeholder
	a.free = append(a.free, row)
	a.count--
}

func (a *Archetype) storageIndex(compType reflect.Type) int {
	for i, typ := range a.types {
		if typ == compType {
			return i
		}
	}
	return -1
}

// GetComponent returns the component of the given type for the entity at row
func (a *Archetype) GetComponent(row uint32, compType reflect.Type) any {
	idx := a.storageIndex(compType)
	if idx == -1 {
		return nil
	}

	return a.storages[idx].Get(int(row))
}

// HasComponent checks if this archetype has the given component type
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype's unique identifier
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types for this archetype
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities in this archetype
func (a *Archetype) Len() int {
	return a.count
}

// rows iterates occupied rows in row order
func (a *Archetype) rows() iter.Seq2[uint32, Entity] {
	return func(yield func(uint32, Entity) bool) {
		for row, entity := range a.entities {
			if entity == Placeholder {
				continue
			}
			if !yield(uint32(row), entity) {
				return
			}
		}
	}
}

// Iter returns an iterator over all live entities in this archetype
func (a *Archetype) Iter() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, entity := range a.rows() {
			if !yield(entity) {
				return
			}
		}
	}
}
