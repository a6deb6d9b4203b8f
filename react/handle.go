package react

import (
	"fmt"
	"reflect"

	"github.com/plus3/cobweb/ecs"
)

// SystemCommand identifies a callback stored on its own entity. Every
// reactor is a system command.
type SystemCommand ecs.Entity

// Entity returns the entity that stores the command's callback
func (c SystemCommand) Entity() ecs.Entity {
	return ecs.Entity(c)
}

func (c SystemCommand) String() string {
	return "syscommand " + ecs.Entity(c).String()
}

// ReactorHandle is an owning reference to a reactor. Persistent handles are
// a bare id; auto-despawn handles hold a signal clone and must be released.
type ReactorHandle struct {
	id     SystemCommand
	signal *AutoDespawnSignal
}

// PersistentHandle returns a handle that never despawns its reactor
func PersistentHandle(id SystemCommand) ReactorHandle {
	return ReactorHandle{id: id}
}

// AutoDespawnHandle wraps a signal whose entity is the reactor
func AutoDespawnHandle(signal *AutoDespawnSignal) ReactorHandle {
	return ReactorHandle{id: SystemCommand(signal.Entity()), signal: signal}
}

// ID returns the reactor's system command
func (h ReactorHandle) ID() SystemCommand {
	return h.id
}

// IsPersistent reports whether the handle holds no despawn signal
func (h ReactorHandle) IsPersistent() bool {
	return h.signal == nil
}

// Clone returns a new reference to the same reactor
func (h ReactorHandle) Clone() ReactorHandle {
	if h.signal == nil {
		return h
	}
	return ReactorHandle{id: h.id, signal: h.signal.Clone()}
}

// Release drops the handle's reference. Persistent handles ignore it.
func (h ReactorHandle) Release() {
	h.signal.Release()
}

// ReactorMode selects how a reactor is cleaned up
type ReactorMode uint8

const (
	// Persistent reactors live until their entity is despawned by hand
	Persistent ReactorMode = iota
	// Cleanup reactors are despawned once all of their triggers are gone
	Cleanup
	// Revokable reactors are Cleanup reactors that also return a RevokeToken
	Revokable
)

func (m ReactorMode) String() string {
	switch m {
	case Persistent:
		return "persistent"
	case Cleanup:
		return "cleanup"
	case Revokable:
		return "revokable"
	}
	return fmt.Sprintf("ReactorMode(%d)", uint8(m))
}

// ReactorKind is the kind of trigger a reactor was registered with
type ReactorKind uint8

const (
	KindComponentInsertion ReactorKind = iota
	KindComponentMutation
	KindComponentRemoval
	KindEntityInsertion
	KindEntityMutation
	KindEntityRemoval
	KindEntityEvent
	KindAnyEntityEvent
	KindResourceMutation
	KindBroadcast
	KindDespawn
)

var reactorKindNames = [...]string{
	KindComponentInsertion: "ComponentInsertion",
	KindComponentMutation:  "ComponentMutation",
	KindComponentRemoval:   "ComponentRemoval",
	KindEntityInsertion:    "EntityInsertion",
	KindEntityMutation:     "EntityMutation",
	KindEntityRemoval:      "EntityRemoval",
	KindEntityEvent:        "EntityEvent",
	KindAnyEntityEvent:     "AnyEntityEvent",
	KindResourceMutation:   "ResourceMutation",
	KindBroadcast:          "Broadcast",
	KindDespawn:            "Despawn",
}

func (k ReactorKind) String() string {
	if int(k) < len(reactorKindNames) {
		return reactorKindNames[k]
	}
	return fmt.Sprintf("ReactorKind(%d)", uint8(k))
}

// ReactorType is one registered trigger: its kind, the type it is keyed by
// (component, resource or event type) and the target entity for
// entity-specific kinds.
type ReactorType struct {
	Kind   ReactorKind
	Type   reflect.Type
	Entity ecs.Entity
}

func (t ReactorType) String() string {
	switch {
	case t.Type != nil && t.Entity != ecs.Placeholder:
		return fmt.Sprintf("%s(%s, %s)", t.Kind, t.Entity, t.Type)
	case t.Type != nil:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Type)
	default:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Entity)
	}
}

// RevokeToken records a reactor and the triggers it was registered with.
// Revoking it removes the reactor from every recorded trigger.
type RevokeToken struct {
	ID    SystemCommand
	Types []ReactorType
}

// NewRevokeToken builds a token for triggers registered on an existing
// reactor.
func NewRevokeToken(id SystemCommand, triggers TriggerBundle) RevokeToken {
	return RevokeToken{ID: id, Types: Triggers(triggers).ReactorTypes()}
}

// Entities returns each entity referenced by the token, once
func (t RevokeToken) Entities() []ecs.Entity {
	return uniqueEntities(t.Types)
}

func uniqueEntities(types []ReactorType) []ecs.Entity {
	var entities []ecs.Entity
	for _, rtype := range types {
		if rtype.Entity == ecs.Placeholder {
			continue
		}
		seen := false
		for _, e := range entities {
			if e == rtype.Entity {
				seen = true
				break
			}
		}
		if !seen {
			entities = append(entities, rtype.Entity)
		}
	}
	return entities
}
