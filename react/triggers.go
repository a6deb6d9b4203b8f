package react

import (
	"reflect"

	"github.com/plus3/cobweb/ecs"
)

// Trigger describes one world change a reactor runs on
type Trigger struct {
	rtype    ReactorType
	register func(k *Kernel, w *ecs.World, h ReactorHandle)
}

// ReactorType returns the registry entry the trigger creates
func (t Trigger) ReactorType() ReactorType {
	return t.rtype
}

func (t Trigger) flatten(dst []Trigger) []Trigger {
	return append(dst, t)
}

// TriggerBundle is a Trigger or a nested Bundle of triggers
type TriggerBundle interface {
	flatten(dst []Trigger) []Trigger
}

// Bundle groups triggers. Bundles nest.
type Bundle []TriggerBundle

// Triggers bundles its arguments
func Triggers(triggers ...TriggerBundle) Bundle {
	if len(triggers) == 1 {
		if bundle, ok := triggers[0].(Bundle); ok {
			return bundle
		}
	}
	return Bundle(triggers)
}

func (b Bundle) flatten(dst []Trigger) []Trigger {
	for _, bundle := range b {
		if bundle != nil {
			dst = bundle.flatten(dst)
		}
	}
	return dst
}

// Len returns the number of triggers in the bundle
func (b Bundle) Len() int {
	return len(b.flatten(nil))
}

// ReactorTypes returns the registry entry of every trigger, in order
func (b Bundle) ReactorTypes() []ReactorType {
	triggers := b.flatten(nil)
	types := make([]ReactorType, len(triggers))
	for i, trigger := range triggers {
		types[i] = trigger.rtype
	}
	return types
}

// Entities returns every entity the bundle's triggers target, once
func (b Bundle) Entities() []ecs.Entity {
	return uniqueEntities(b.ReactorTypes())
}

func (k *Kernel) registerTriggers(w *ecs.World, triggers TriggerBundle, h ReactorHandle) []ReactorType {
	flat := triggers.flatten(nil)
	types := make([]ReactorType, 0, len(flat))
	for _, trigger := range flat {
		trigger.register(k, w, h)
		types = append(types, trigger.rtype)
	}
	return types
}

// reactType is the component type that stores reactive T values
func reactType[T any]() reflect.Type {
	return reflect.TypeFor[React[T]]()
}

func componentTrigger[T any](kind ReactorKind) Trigger {
	typ := reflect.TypeFor[T]()
	return Trigger{
		rtype: ReactorType{Kind: kind, Type: typ},
		register: func(k *Kernel, w *ecs.World, h ReactorHandle) {
			ecs.RegisterComponent[React[T]](w.Registry())
			if kind == KindComponentRemoval {
				k.cache.trackRemovals(w, typ, reactType[T]())
			}
			k.cache.registerComponent(kind, typ, h)
		},
	}
}

func entityTrigger[T any](kind ReactorKind, e ecs.Entity) Trigger {
	typ := reflect.TypeFor[T]()
	return Trigger{
		rtype: ReactorType{Kind: kind, Type: typ, Entity: e},
		register: func(k *Kernel, w *ecs.World, h ReactorHandle) {
			ecs.RegisterComponent[React[T]](w.Registry())
			if kind == KindEntityRemoval {
				k.cache.trackRemovals(w, typ, reactType[T]())
			}
			k.cache.registerEntity(k, w, kind, e, typ, h)
		},
	}
}

// Insertion triggers when React[T] is inserted on any entity
func Insertion[T any]() Trigger {
	return componentTrigger[T](KindComponentInsertion)
}

// Mutation triggers when React[T] is mutated on any entity
func Mutation[T any]() Trigger {
	return componentTrigger[T](KindComponentMutation)
}

// Removal triggers when React[T] is removed from an entity that stays alive
func Removal[T any]() Trigger {
	return componentTrigger[T](KindComponentRemoval)
}

// EntityInsertion triggers when React[T] is inserted on e
func EntityInsertion[T any](e ecs.Entity) Trigger {
	return entityTrigger[T](KindEntityInsertion, e)
}

// EntityMutation triggers when React[T] is mutated on e
func EntityMutation[T any](e ecs.Entity) Trigger {
	return entityTrigger[T](KindEntityMutation, e)
}

// EntityRemoval triggers when React[T] is removed from e
func EntityRemoval[T any](e ecs.Entity) Trigger {
	return entityTrigger[T](KindEntityRemoval, e)
}

// EntityEventTrigger triggers on T events sent to e
func EntityEventTrigger[T any](e ecs.Entity) Trigger {
	return entityTrigger[T](KindEntityEvent, e)
}

// AnyEntityEvent triggers on T events sent to any entity
func AnyEntityEvent[T any]() Trigger {
	typ := reflect.TypeFor[T]()
	return Trigger{
		rtype: ReactorType{Kind: KindAnyEntityEvent, Type: typ},
		register: func(k *Kernel, w *ecs.World, h ReactorHandle) {
			registerIn(k.cache.anyEntityEventReactors, typ, h)
		},
	}
}

// ResourceMutation triggers when the ReactRes[R] resource is mutated
func ResourceMutation[R any]() Trigger {
	typ := reflect.TypeFor[R]()
	return Trigger{
		rtype: ReactorType{Kind: KindResourceMutation, Type: typ},
		register: func(k *Kernel, w *ecs.World, h ReactorHandle) {
			registerIn(k.cache.resourceReactors, typ, h)
		},
	}
}

// BroadcastTrigger triggers on broadcast T events
func BroadcastTrigger[T any]() Trigger {
	typ := reflect.TypeFor[T]()
	return Trigger{
		rtype: ReactorType{Kind: KindBroadcast, Type: typ},
		register: func(k *Kernel, w *ecs.World, h ReactorHandle) {
			registerIn(k.cache.broadcastReactors, typ, h)
		},
	}
}

// Despawn triggers once, when e is despawned
func Despawn(e ecs.Entity) Trigger {
	return Trigger{
		rtype: ReactorType{Kind: KindDespawn, Entity: e},
		register: func(k *Kernel, w *ecs.World, h ReactorHandle) {
			k.cache.registerDespawn(w, e, h)
		},
	}
}
