package react

import (
	"iter"
	"reflect"

	"go.uber.org/zap"

	"github.com/plus3/cobweb/ecs"
)

type entityWorldReactor struct {
	command     SystemCommand
	triggersFor func(e ecs.Entity) TriggerBundle
}

// EntityWorldLocal is the data an entity world reactor keeps on each
// entity it reacts to
type EntityWorldLocal[L any] struct {
	Data L
}

// AddEntityWorldReactor spawns a persistent reactor keyed by its local data
// type L. Entities are attached with EntityReactor[L].Add, which registers
// triggersFor(entity).
func AddEntityWorldReactor[L any](w *ecs.World, triggersFor func(e ecs.Entity) TriggerBundle, system ecs.System) SystemCommand {
	k := KernelOf(w)
	ecs.RegisterComponent[EntityWorldLocal[L]](w.Registry())
	command := SpawnSystemCommand(w, system)
	k.entityWorldReactors[reflect.TypeFor[L]()] = entityWorldReactor{command: command, triggersFor: triggersFor}
	return command
}

func lookupEntityReactor[L any](k *Kernel) (entityWorldReactor, bool) {
	reactor, ok := k.entityWorldReactors[reflect.TypeFor[L]()]
	return reactor, ok
}

// EntityReactor attaches entities to the entity world reactor keyed by L
type EntityReactor[L any] struct {
	w *ecs.World
	k *Kernel
}

// NewEntityReactor returns an accessor for use outside a system struct
func NewEntityReactor[L any](w *ecs.World) *EntityReactor[L] {
	r := &EntityReactor[L]{}
	r.Init(w)
	return r
}

// Init binds the accessor to the world's kernel
func (r *EntityReactor[L]) Init(w *ecs.World) {
	r.w = w
	r.k = KernelOf(w)
}

func (r *EntityReactor[L]) lookup() (entityWorldReactor, bool) {
	reactor, ok := lookupEntityReactor[L](r.k)
	if !ok {
		r.k.logger.Warn("entity world reactor is missing", zap.Stringer("local", reflect.TypeFor[L]()))
	}
	return reactor, ok
}

// Add stores data on the entity and registers the reactor's triggers for it
func (r *EntityReactor[L]) Add(e ecs.Entity, data L) bool {
	reactor, ok := r.lookup()
	if !ok || !r.w.Alive(e) {
		return false
	}
	r.w.AddComponent(e, EntityWorldLocal[L]{Data: data})
	With(r.w, reactor.triggersFor(e), reactor.command, Persistent)
	return true
}

// Remove revokes the triggers. Entities left without a trigger for this
// reactor lose their local data.
func (r *EntityReactor[L]) Remove(triggers ...TriggerBundle) bool {
	reactor, ok := r.lookup()
	if !ok {
		return false
	}
	token := NewRevokeToken(reactor.command, Triggers(triggers...))
	Revoke(r.w, token)
	for _, e := range token.Entities() {
		if reactors := ecs.ReadComponent[EntityReactors](r.w, e); reactors != nil && reactors.Contains(reactor.command) {
			continue
		}
		ecs.Remove[EntityWorldLocal[L]](r.w, e)
	}
	return true
}

// ReactorData reads the local data of the entity world reactor keyed by L
type ReactorData[L any] struct{ reader }

// NewReactorData returns a reader for use outside a system struct
func NewReactorData[L any](w *ecs.World) *ReactorData[L] {
	d := &ReactorData[L]{}
	d.Init(w)
	return d
}

// Init binds the reader to the world's kernel
func (d *ReactorData[L]) Init(w *ecs.World) { d.init(w) }

// reaction returns the source entity of the entity reaction running for
// the reactor keyed by L, if there is one
func (d *ReactorData[L]) reaction() (ecs.Entity, bool) {
	reactor, ok := d.reactor()
	if !ok {
		return ecs.Placeholder, false
	}
	owner, ok := lookupEntityReactor[L](d.k)
	if !ok || owner.command != reactor {
		return ecs.Placeholder, false
	}
	payload, ok := d.k.trackers.entityReaction.current(reactor)
	if !ok {
		return ecs.Placeholder, false
	}
	return payload.source, true
}

// Get returns the data of the entity the reactor is reacting to
func (d *ReactorData[L]) Get() (ecs.Entity, *L, bool) {
	source, ok := d.reaction()
	if !ok {
		return ecs.Placeholder, nil, false
	}
	local := ecs.ReadComponent[EntityWorldLocal[L]](d.w, source)
	if local == nil {
		return ecs.Placeholder, nil, false
	}
	return source, &local.Data, true
}

// Iter yields the reacting entity's data during an entity reaction, and
// every entity's data otherwise. An entity reaction on an entity without
// local data yields nothing.
func (d *ReactorData[L]) Iter() iter.Seq2[ecs.Entity, *L] {
	return func(yield func(ecs.Entity, *L) bool) {
		if d.w == nil {
			return
		}
		if source, ok := d.reaction(); ok {
			if local := ecs.ReadComponent[EntityWorldLocal[L]](d.w, source); local != nil {
				yield(source, &local.Data)
			}
			return
		}
		for e, local := range ecs.Each[EntityWorldLocal[L]](d.w) {
			if !yield(e, &local.Data) {
				return
			}
		}
	}
}
