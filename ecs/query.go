package ecs

import (
	"iter"
	"unsafe"
)

// Query wraps a View with caching optimizations for repeated iteration.
// Queries cache matching archetypes and pre-build entity/component arrays per frame.
type Query[T any] struct {
	view               *View[T]
	world              *World
	cachedArchetypes   []*Archetype
	lastArchetypeCount int

	cachedEntities   []Entity
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a new Query with archetype-level caching.
func NewQuery[T any](w *World) *Query[T] {
	return &Query[T]{
		view:               NewView[T](w),
		world:              w,
		lastArchetypeCount: -1,
	}
}

// Init initializes or re-initializes the Query with a world.
// Called during system registration.
func (q *Query[T]) Init(w *World) {
	q.view = NewView[T](w)
	q.world = w
	q.lastArchetypeCount = -1
	q.cacheValid = false
}

func (q *Query[T]) iterArchetype(archetype *Archetype) iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		storageIndices := q.view.buildStorageIndices(archetype)

		var result T
		resultPtr := unsafe.Pointer(&result)

		for row, entity := range archetype.rows() {
			if !q.view.populateResult(resultPtr, archetype, int(row), storageIndices) {
				continue
			}

			if !yield(entity, result) {
				return
			}
		}
	}
}

// Execute builds the entity and component caches for this frame.
// Call it at the start of a system before iterating.
func (q *Query[T]) Execute() {
	q.invalidateIfNeeded()
	q.ensureArchetypeCache()

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]

	for _, archetype := range q.cachedArchetypes {
		for id, item := range q.iterArchetype(archetype) {
			q.cachedEntities = append(q.cachedEntities, id)
			q.cachedComponents = append(q.cachedComponents, item)
		}
	}

	q.cacheValid = true
}

func (q *Query[T]) invalidateIfNeeded() {
	currentCount := len(q.world.order)
	if currentCount != q.lastArchetypeCount {
		q.cachedArchetypes = nil
		q.lastArchetypeCount = currentCount
	}
}

func (q *Query[T]) ensureArchetypeCache() {
	if q.cachedArchetypes != nil {
		return
	}

	q.cachedArchetypes = make([]*Archetype, 0)
	for _, archetype := range q.world.order {
		if q.view.matchesArchetype(archetype) {
			q.cachedArchetypes = append(q.cachedArchetypes, archetype)
		}
	}
}

// Get returns the view struct for a single entity, or nil
func (q *Query[T]) Get(e Entity) *T {
	return q.view.Get(e)
}

// Iter returns an iterator over entity IDs and component data.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Iter() iter.Seq2[Entity, T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(Entity, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}
