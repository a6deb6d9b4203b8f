package ecs

import (
	"iter"
	"reflect"
	"slices"
	"sort"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// Dropper is implemented by components and resources that own something
// outside the world (signals, handles, callbacks). Drop is called once the
// value has left the world: on removal, replacement, or despawn.
// Drop must not mutate the world.
type Dropper interface {
	Drop()
}

// World is the ECS storage: entities, archetypes and resources
type World struct {
	archetypes map[uint32]*Archetype
	order      []*Archetype
	registry   *ComponentRegistry
	entities   *entityPool
	locations  *intmap.Map[Entity, entityLocation]
	resources  map[reflect.Type]any
	removals   map[reflect.Type][]Entity
}

// NewWorld creates a new ECS world with the given component registry
func NewWorld(registry *ComponentRegistry) *World {
	return &World{
		archetypes: make(map[uint32]*Archetype),
		registry:   registry,
		entities:   newEntityPool(),
		locations:  intmap.New[Entity, entityLocation](1024),
		resources:  make(map[reflect.Type]any),
		removals:   make(map[reflect.Type][]Entity),
	}
}

// Registry returns the component registry backing this world
func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// Len returns the number of live entities
func (w *World) Len() int {
	return w.locations.Len()
}

// Alive reports whether the entity exists
func (w *World) Alive(e Entity) bool {
	return w.locations.Has(e)
}

// GetArchetype returns an archetype storage (if one exists)
func (w *World) GetArchetype(components ...any) *Archetype {
	types := extractComponentTypes(components)
	return w.archetypes[hashTypesToUint32(types)]
}

// GetArchetypeByTypes returns an archetype storage (if one exists) based on reflect.Type
func (w *World) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sorted := slices.Clone(types)
	sort.Sort(byTypeName(sorted))
	return w.archetypes[hashTypesToUint32(sorted)]
}

// Archetypes iterates archetypes in creation order
func (w *World) Archetypes() iter.Seq[*Archetype] {
	return func(yield func(*Archetype) bool) {
		for _, archetype := range w.order {
			if !yield(archetype) {
				return
			}
		}
	}
}

func (w *World) archetypeFor(types []reflect.Type) *Archetype {
	archetypeId := hashTypesToUint32(types)
	archetype, exists := w.archetypes[archetypeId]
	if exists {
		if len(archetype.types) != len(types) {
			panic("archetype hash collision")
		}
		return archetype
	}

	archetype = NewArchetype(archetypeId, types, w.registry)
	w.archetypes[archetypeId] = archetype
	w.order = append(w.order, archetype)
	return archetype
}

// Spawn creates a new entity with the provided components.
// Spawning without components creates an empty entity.
func (w *World) Spawn(components ...any) Entity {
	types := extractComponentTypes(components)
	for i := 1; i < len(types); i++ {
		if types[i] == types[i-1] {
			panic("cannot spawn entity with duplicate component " + types[i].String())
		}
	}

	archetype := w.archetypeFor(types)
	entity := w.entities.create()
	row := archetype.allocate(entity)

	for _, comp := range components {
		idx := archetype.storageIndex(componentType(comp))
		archetype.storages[idx].Put(int(row), comp)
	}

	w.locations.Put(entity, entityLocation{archetype: archetype, row: row})
	return entity
}

// Despawn removes the entity and all of its components.
// Returns false if the entity does not exist.
func (w *World) Despawn(e Entity) bool {
	loc, ok := w.locations.Get(e)
	if !ok {
		return false
	}

	archetype := loc.archetype
	removed := make([]any, 0, len(archetype.storages))
	for _, storage := range archetype.storages {
		removed = append(removed, storage.Take(int(loc.row)))
	}
	archetype.release(loc.row)
	w.locations.Del(e)
	w.entities.destroy(e)

	for i, value := range removed {
		w.recordRemoval(archetype.types[i], e)
		drop(value)
	}
	return true
}

// AddComponent inserts the component on the entity, replacing any existing
// component of the same type. The entity keeps its id.
// Returns false if the entity does not exist.
func (w *World) AddComponent(e Entity, component any) bool {
	loc, ok := w.locations.Get(e)
	if !ok {
		return false
	}

	compType := componentType(component)
	oldArchetype := loc.archetype

	if idx := oldArchetype.storageIndex(compType); idx != -1 {
		old := oldArchetype.storages[idx].Take(int(loc.row))
		oldArchetype.storages[idx].Put(int(loc.row), component)
		drop(old)
		return true
	}

	newTypes := make([]reflect.Type, 0, len(oldArchetype.types)+1)
	newTypes = append(newTypes, oldArchetype.types...)
	newTypes = append(newTypes, compType)
	sort.Sort(byTypeName(newTypes))

	newArchetype := w.archetypeFor(newTypes)
	newRow := w.move(e, loc, newArchetype, nil)
	newArchetype.storages[newArchetype.storageIndex(compType)].Put(int(newRow), component)
	return true
}

// RemoveComponent removes a component from the entity. The entity stays
// alive even when it has no components left.
// Returns false if the entity or component does not exist.
func (w *World) RemoveComponent(e Entity, compType reflect.Type) bool {
	loc, ok := w.locations.Get(e)
	if !ok {
		return false
	}

	oldArchetype := loc.archetype
	if !oldArchetype.HasComponent(compType) {
		return false
	}

	newTypes := make([]reflect.Type, 0, len(oldArchetype.types)-1)
	for _, typ := range oldArchetype.types {
		if typ != compType {
			newTypes = append(newTypes, typ)
		}
	}

	var removed any
	newArchetype := w.archetypeFor(newTypes)
	w.move(e, loc, newArchetype, func(typ reflect.Type, value any) {
		if typ == compType {
			removed = value
		}
	})

	w.recordRemoval(compType, e)
	drop(removed)
	return true
}

// move transfers the entity's components into another archetype.
// Components the target lacks are handed to leftover.
func (w *World) move(e Entity, loc entityLocation, to *Archetype, leftover func(reflect.Type, any)) uint32 {
	from := loc.archetype
	newRow := to.allocate(e)

	for i, typ := range from.types {
		value := from.storages[i].Take(int(loc.row))
		idx := to.storageIndex(typ)
		if idx == -1 {
			if leftover != nil {
				leftover(typ, value)
			}
			continue
		}
		to.storages[idx].Put(int(newRow), value)
	}

	from.release(loc.row)
	w.locations.Put(e, entityLocation{archetype: to, row: newRow})
	return newRow
}

// GetComponent returns the component for the given entity and component type
func (w *World) GetComponent(e Entity, compType reflect.Type) any {
	loc, ok := w.locations.Get(e)
	if !ok {
		return nil
	}

	return loc.archetype.GetComponent(loc.row, compType)
}

// HasComponent checks if an entity has a specific component type
func (w *World) HasComponent(e Entity, compType reflect.Type) bool {
	loc, ok := w.locations.Get(e)
	if !ok {
		return false
	}
	return loc.archetype.HasComponent(compType)
}

// componentType returns the component type of a value, stripping one pointer level
func componentType(comp any) reflect.Type {
	compType := reflect.TypeOf(comp)
	if compType == nil {
		panic("component cannot be nil")
	}

	// If it's a pointer, get the underlying type
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	// Components can be structs or primitives (int, string, etc.)
	// But not pointers, maps, channels, or functions (those aren't value types)
	if compType.Kind() == reflect.Ptr || compType.Kind() == reflect.Map ||
		compType.Kind() == reflect.Chan || compType.Kind() == reflect.Func {
		panic("components cannot be pointers, maps, channels, or functions")
	}
	return compType
}

// extractComponentTypes extracts and sorts component types from a slice of components
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		types = append(types, componentType(comp))
	}
	sort.Sort(byTypeName(types))
	return types
}

func drop(value any) {
	if dropper, ok := value.(Dropper); ok {
		dropper.Drop()
	}
}

// hashTypesToUint32 generates a uint32 hash for a sorted slice of types
func hashTypesToUint32(types []reflect.Type) uint32 {
	var h uint32 = 2166136261     // FNV-1a 32-bit offset basis
	const prime uint32 = 16777619 // FNV-1a 32-bit prime

	for _, t := range types {
		// Use the type's pointer as a unique identifier
		ptr := (*iface)(unsafe.Pointer(&t)).data
		val := uint32(uintptr(ptr))

		// Mix in all 4 bytes if on 64-bit system
		if unsafe.Sizeof(uintptr(0)) == 8 {
			val ^= uint32(uintptr(ptr) >> 32)
		}

		h ^= val
		h *= prime
	}

	return h
}

type ComponentReader interface {
	GetComponent(Entity, reflect.Type) any
}

// ReadComponent returns the entity's component of type T, or nil
func ReadComponent[T any](reader ComponentReader, e Entity) *T {
	value, _ := reader.GetComponent(e, reflect.TypeFor[T]()).(*T)
	return value
}

// Insert adds or replaces a component of type T on the entity
func Insert[T any](w *World, e Entity, component T) bool {
	return w.AddComponent(e, component)
}

// Has reports whether the entity has a component of type T
func Has[T any](w *World, e Entity) bool {
	return w.HasComponent(e, reflect.TypeFor[T]())
}

// Remove removes the entity's component of type T
func Remove[T any](w *World, e Entity) bool {
	return w.RemoveComponent(e, reflect.TypeFor[T]())
}

// Each iterates every entity that has a component of type T
func Each[T any](w *World) iter.Seq2[Entity, *T] {
	compType := reflect.TypeFor[T]()
	return func(yield func(Entity, *T) bool) {
		for _, archetype := range w.order {
			idx := archetype.storageIndex(compType)
			if idx == -1 {
				continue
			}
			for row, entity := range archetype.rows() {
				value, ok := archetype.storages[idx].Get(int(row)).(*T)
				if !ok {
					continue
				}
				if !yield(entity, value) {
					return
				}
			}
		}
	}
}
