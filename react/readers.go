package react

import (
	"reflect"

	"github.com/plus3/cobweb/ecs"
)

// Readers are system fields (initialized through ecs.Initializer) or built
// with their New function. They only return data while the reactor that
// owns the current reaction is running; everywhere else they are empty.

type reader struct {
	w *ecs.World
	k *Kernel
}

func (r *reader) init(w *ecs.World) {
	r.w = w
	r.k = KernelOf(w)
}

func (r *reader) reactor() (SystemCommand, bool) {
	if r.k == nil {
		return 0, false
	}
	return r.k.currentReactor()
}

func (r *reader) entityReaction(kind EntityReactionKind, typ reflect.Type) (ecs.Entity, bool) {
	reactor, ok := r.reactor()
	if !ok {
		return ecs.Placeholder, false
	}
	payload, ok := r.k.trackers.entityReaction.current(reactor)
	if !ok || payload.kind != kind || payload.typ != typ {
		return ecs.Placeholder, false
	}
	return payload.source, true
}

func (r *reader) eventData() (ecs.Entity, bool) {
	reactor, ok := r.reactor()
	if !ok {
		return ecs.Placeholder, false
	}
	payload, ok := r.k.trackers.event.current(reactor)
	return payload.dataEntity, ok
}

// InsertionEvent reads the entity whose React[T] insertion is being reacted to
type InsertionEvent[T any] struct{ reader }

// NewInsertionEvent returns a reader for use outside a system struct
func NewInsertionEvent[T any](w *ecs.World) *InsertionEvent[T] {
	r := &InsertionEvent[T]{}
	r.Init(w)
	return r
}

// Init binds the reader to the world's kernel
func (r *InsertionEvent[T]) Init(w *ecs.World) { r.init(w) }

// Read returns the entity T was inserted on
func (r *InsertionEvent[T]) Read() (ecs.Entity, bool) {
	return r.entityReaction(ReactionInsertion, reflect.TypeFor[T]())
}

// MutationEvent reads the entity whose React[T] mutation is being reacted to
type MutationEvent[T any] struct{ reader }

// NewMutationEvent returns a reader for use outside a system struct
func NewMutationEvent[T any](w *ecs.World) *MutationEvent[T] {
	r := &MutationEvent[T]{}
	r.Init(w)
	return r
}

// Init binds the reader to the world's kernel
func (r *MutationEvent[T]) Init(w *ecs.World) { r.init(w) }

// Read returns the entity whose T was mutated
func (r *MutationEvent[T]) Read() (ecs.Entity, bool) {
	return r.entityReaction(ReactionMutation, reflect.TypeFor[T]())
}

// RemovalEvent reads the entity whose React[T] removal is being reacted to
type RemovalEvent[T any] struct{ reader }

// NewRemovalEvent returns a reader for use outside a system struct
func NewRemovalEvent[T any](w *ecs.World) *RemovalEvent[T] {
	r := &RemovalEvent[T]{}
	r.Init(w)
	return r
}

// Init binds the reader to the world's kernel
func (r *RemovalEvent[T]) Init(w *ecs.World) { r.init(w) }

// Read returns the entity T was removed from
func (r *RemovalEvent[T]) Read() (ecs.Entity, bool) {
	return r.entityReaction(ReactionRemoval, reflect.TypeFor[T]())
}

// DespawnEvent reads the despawned entity of a despawn reaction
type DespawnEvent struct{ reader }

// NewDespawnEvent returns a reader for use outside a system struct
func NewDespawnEvent(w *ecs.World) *DespawnEvent {
	r := &DespawnEvent{}
	r.Init(w)
	return r
}

// Init binds the reader to the world's kernel
func (r *DespawnEvent) Init(w *ecs.World) { r.init(w) }

// Read returns the despawned entity
func (r *DespawnEvent) Read() (ecs.Entity, bool) {
	reactor, ok := r.reactor()
	if !ok {
		return ecs.Placeholder, false
	}
	payload, ok := r.k.trackers.despawn.current(reactor)
	if !ok {
		return ecs.Placeholder, false
	}
	return payload.source, true
}

// BroadcastEvent reads the payload of a broadcast T
type BroadcastEvent[T any] struct{ reader }

// NewBroadcastEvent returns a reader for use outside a system struct
func NewBroadcastEvent[T any](w *ecs.World) *BroadcastEvent[T] {
	r := &BroadcastEvent[T]{}
	r.Init(w)
	return r
}

// Init binds the reader to the world's kernel
func (r *BroadcastEvent[T]) Init(w *ecs.World) { r.init(w) }

// Read returns the payload. It is valid until the reactor returns.
func (r *BroadcastEvent[T]) Read() (*T, bool) {
	data, ok := r.eventData()
	if !ok {
		return nil, false
	}
	event := ecs.ReadComponent[BroadcastEventData[T]](r.w, data)
	if event == nil {
		return nil, false
	}
	return &event.Value, true
}

// EntityEvent reads the target and payload of an entity event T
type EntityEvent[T any] struct{ reader }

// NewEntityEvent returns a reader for use outside a system struct
func NewEntityEvent[T any](w *ecs.World) *EntityEvent[T] {
	r := &EntityEvent[T]{}
	r.Init(w)
	return r
}

// Init binds the reader to the world's kernel
func (r *EntityEvent[T]) Init(w *ecs.World) { r.init(w) }

// Read returns the target and the payload. The payload is valid until the
// reactor returns.
func (r *EntityEvent[T]) Read() (ecs.Entity, *T, bool) {
	data, ok := r.eventData()
	if !ok {
		return ecs.Placeholder, nil, false
	}
	event := ecs.ReadComponent[EntityEventData[T]](r.w, data)
	if event == nil {
		return ecs.Placeholder, nil, false
	}
	return event.Target, &event.Value, true
}

// SystemEvent takes the payload of a system event T
type SystemEvent[T any] struct{ reader }

// NewSystemEvent returns a reader for use outside a system struct
func NewSystemEvent[T any](w *ecs.World) *SystemEvent[T] {
	r := &SystemEvent[T]{}
	r.Init(w)
	return r
}

// Init binds the reader to the world's kernel
func (r *SystemEvent[T]) Init(w *ecs.World) { r.init(w) }

// Take moves the payload out. Later calls in the same run return false.
func (r *SystemEvent[T]) Take() (T, bool) {
	var zero T
	reactor, ok := r.reactor()
	if !ok {
		return zero, false
	}
	data, ok := r.k.trackers.systemEvent.current(reactor)
	if !ok {
		return zero, false
	}
	event := ecs.ReadComponent[SystemEventData[T]](r.w, data)
	if event == nil {
		return zero, false
	}
	return event.take()
}
