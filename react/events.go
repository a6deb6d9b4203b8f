package react

import (
	"reflect"

	"github.com/plus3/cobweb/ecs"
)

// BroadcastEventData stores a broadcast payload until its last reader ran
type BroadcastEventData[T any] struct {
	Value T
}

// EntityEventData stores an entity event payload and its target
type EntityEventData[T any] struct {
	Target ecs.Entity
	Value  T
}

// SystemEventData stores a system event payload. It can be taken once.
type SystemEventData[T any] struct {
	value T
	taken bool
}

func (d *SystemEventData[T]) take() (T, bool) {
	var zero T
	if d.taken {
		return zero, false
	}
	value := d.value
	d.value = zero
	d.taken = true
	return value, true
}

// Broadcast sends the value to every reactor registered with
// BroadcastTrigger[T]. Without reactors nothing is stored.
func Broadcast[T any](w *ecs.World, value T) {
	k := KernelOf(w)
	handles := k.cache.broadcastReactors[reflect.TypeFor[T]()]
	if len(handles) > 0 {
		ecs.RegisterComponent[BroadcastEventData[T]](w.Registry())
		data := w.Spawn(BroadcastEventData[T]{Value: value})
		for i, h := range handles {
			k.reactions.push(reactionCommand{
				kind:       reactBroadcast,
				reactor:    h.ID(),
				dataEntity: data,
				lastReader: i == len(handles)-1,
			})
		}
	}
	k.reactionTree(w)
}

// SendEntityEvent sends the value to the target's EntityEventTrigger[T]
// reactors, then to every AnyEntityEvent[T] reactor.
func SendEntityEvent[T any](w *ecs.World, target ecs.Entity, value T) {
	k := KernelOf(w)
	typ := reflect.TypeFor[T]()

	var reactors []SystemCommand
	if entity := ecs.ReadComponent[EntityReactors](w, target); entity != nil {
		for _, entry := range entity.entries {
			if entry.kind == KindEntityEvent && entry.typ == typ {
				reactors = append(reactors, entry.handle.ID())
			}
		}
	}
	for _, h := range k.cache.anyEntityEventReactors[typ] {
		reactors = append(reactors, h.ID())
	}

	if len(reactors) > 0 {
		ecs.RegisterComponent[EntityEventData[T]](w.Registry())
		data := w.Spawn(EntityEventData[T]{Target: target, Value: value})
		for i, reactor := range reactors {
			k.reactions.push(reactionCommand{
				kind:       reactEntityEvent,
				reactor:    reactor,
				source:     target,
				typ:        typ,
				dataEntity: data,
				lastReader: i == len(reactors)-1,
			})
		}
	}
	k.reactionTree(w)
}

// SendSystemEvent runs the command with the value available to its
// SystemEvent[T] reader
func SendSystemEvent[T any](w *ecs.World, command SystemCommand, value T) {
	k := KernelOf(w)
	ecs.RegisterComponent[SystemEventData[T]](w.Registry())
	data := w.Spawn(SystemEventData[T]{value: value})
	k.events.push(eventCommand{system: command, dataEntity: data})
	k.reactionTree(w)
}

// TriggerResourceMutation schedules the ResourceMutation[R] reactors
// without changing the resource
func TriggerResourceMutation[R any](w *ecs.World) {
	k := KernelOf(w)
	k.cache.scheduleResourceMutation(k, reflect.TypeFor[R]())
	k.reactionTree(w)
}

// Queue schedules a system command. Outside a reaction tree it runs now.
func Queue(w *ecs.World, command SystemCommand) {
	k := KernelOf(w)
	k.syscommands.push(command)
	k.reactionTree(w)
}

// RunSystemCommand runs the command immediately when called from inside a
// reaction tree, otherwise it queues it.
func RunSystemCommand(w *ecs.World, command SystemCommand) {
	k := KernelOf(w)
	if !k.cache.inReactionTree {
		Queue(w, command)
		return
	}
	k.runSystemCommand(w, command, nil, nil)
}

// SpawnSystemCommand stores the system on a new entity. The command lives
// until the entity is despawned.
func SpawnSystemCommand(w *ecs.World, system ecs.System) SystemCommand {
	return KernelOf(w).spawnCallback(w, NewSystemCommandCallback(system))
}

// SpawnSystemCommandCleanup spawns a command owned by the returned handle.
// The command is despawned once every clone of the handle is released.
func SpawnSystemCommandCleanup(w *ecs.World, system ecs.System) ReactorHandle {
	k := KernelOf(w)
	command := k.spawnCallback(w, NewSystemCommandCallback(system))
	return AutoDespawnHandle(k.despawner.Prepare(command.Entity()))
}
