package react

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/plus3/cobweb/ecs"
)

// hook runs before or after a system command. A nil hook does nothing.
type hook func(w *ecs.World)

func (h hook) run(w *ecs.World) {
	if h != nil {
		h(w)
	}
}

func chain(hooks ...hook) hook {
	return func(w *ecs.World) {
		for _, h := range hooks {
			h.run(w)
		}
	}
}

// eventCommand delivers a system event stored on dataEntity
type eventCommand struct {
	system     SystemCommand
	dataEntity ecs.Entity
}

type reactionKind uint8

const (
	reactResource reactionKind = iota
	reactEntity
	reactDespawn
	reactEntityEvent
	reactBroadcast
)

// reactionCommand is one scheduled reactor run
type reactionCommand struct {
	kind       reactionKind
	reactor    SystemCommand
	source     ecs.Entity
	reaction   EntityReactionKind
	typ        reflect.Type
	dataEntity ecs.Entity
	lastReader bool
	handle     ReactorHandle
}

// trackedHooks prepares an entry on the tracker and returns the hooks that
// latch it and pop it around the reactor run. done always sees the
// prepared payload, even if the entry could not be latched.
func trackedHooks[P any](k *Kernel, t *accessTracker[P], reactor SystemCommand, payload P, done func(w *ecs.World, payload P)) (hook, hook) {
	t.prepare(reactor, payload)
	started := false
	setup := func(w *ecs.World) {
		started = t.start(reactor)
		if !started {
			k.trackerMismatch(t.name, reactor)
		}
	}
	cleanup := func(w *ecs.World) {
		if started {
			t.end(reactor)
			started = false
		}
		if done != nil {
			done(w, payload)
		}
	}
	return setup, cleanup
}

func (k *Kernel) trackerMismatch(tracker string, reactor SystemCommand) {
	k.logger.Error("no prepared tracker entry for reactor",
		zap.String("tracker", tracker),
		zap.Stringer("reactor", reactor))
	if k.config.StrictTrackers {
		panic("react: " + tracker + " tracker started without a prepared entry for " + reactor.String())
	}
}

func (k *Kernel) runEvent(w *ecs.World, ev eventCommand) {
	k.stats.Events++
	setup, cleanup := trackedHooks(k, k.trackers.systemEvent, ev.system, ev.dataEntity,
		func(w *ecs.World, data ecs.Entity) {
			w.Despawn(data)
		})
	k.runSystemCommand(w, ev.system, setup, cleanup)
}

func despawnIfLast(last bool) func(*ecs.World, eventReaction) {
	return func(w *ecs.World, payload eventReaction) {
		if last {
			w.Despawn(payload.dataEntity)
		}
	}
}

func (k *Kernel) runReaction(w *ecs.World, r reactionCommand) {
	k.stats.Reactions++
	switch r.kind {
	case reactResource:
		k.runSystemCommand(w, r.reactor, nil, nil)

	case reactEntity:
		setup, cleanup := trackedHooks(k, k.trackers.entityReaction, r.reactor,
			entityReaction{source: r.source, kind: r.reaction, typ: r.typ}, nil)
		k.runSystemCommand(w, r.reactor, setup, cleanup)

	case reactDespawn:
		setup, cleanup := trackedHooks(k, k.trackers.despawn, r.reactor,
			despawnReaction{source: r.source, handle: r.handle},
			func(w *ecs.World, payload despawnReaction) {
				payload.handle.Release()
			})
		k.runSystemCommand(w, r.reactor, setup, cleanup)

	case reactEntityEvent:
		// The entity-reaction entry exposes the target to readers that only
		// know about entities.
		entitySetup, entityCleanup := trackedHooks(k, k.trackers.entityReaction, r.reactor,
			entityReaction{source: r.source, kind: ReactionEvent, typ: r.typ}, nil)
		eventSetup, eventCleanup := trackedHooks(k, k.trackers.event, r.reactor,
			eventReaction{dataEntity: r.dataEntity}, despawnIfLast(r.lastReader))
		k.runSystemCommand(w, r.reactor, chain(entitySetup, eventSetup), chain(eventCleanup, entityCleanup))

	case reactBroadcast:
		setup, cleanup := trackedHooks(k, k.trackers.event, r.reactor,
			eventReaction{dataEntity: r.dataEntity}, despawnIfLast(r.lastReader))
		k.runSystemCommand(w, r.reactor, setup, cleanup)
	}
}
