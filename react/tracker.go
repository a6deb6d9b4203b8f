package react

import (
	"reflect"

	"github.com/plus3/cobweb/ecs"
)

// EntityReactionKind says why an entity reaction was scheduled
type EntityReactionKind uint8

const (
	ReactionInsertion EntityReactionKind = iota
	ReactionMutation
	ReactionRemoval
	ReactionEvent
)

func (k EntityReactionKind) String() string {
	switch k {
	case ReactionInsertion:
		return "insertion"
	case ReactionMutation:
		return "mutation"
	case ReactionRemoval:
		return "removal"
	case ReactionEvent:
		return "event"
	}
	return "unknown"
}

type entityReaction struct {
	source ecs.Entity
	kind   EntityReactionKind
	typ    reflect.Type
}

type eventReaction struct {
	dataEntity ecs.Entity
}

type despawnReaction struct {
	source ecs.Entity
	handle ReactorHandle
}

type trackerEntry[P any] struct {
	reactor SystemCommand
	payload P
}

// accessTracker exposes the payload of the reaction that is currently
// running. Entries are prepared when a reaction is dispatched and latched
// when its reactor starts. Started entries form a stack, so a command that
// runs nested inside a reaction never sees its caller's payload.
type accessTracker[P any] struct {
	name     string
	prepared []trackerEntry[P]
	active   []trackerEntry[P]
}

func newAccessTracker[P any](name string) *accessTracker[P] {
	return &accessTracker[P]{name: name}
}

func (t *accessTracker[P]) prepare(reactor SystemCommand, payload P) {
	t.prepared = append(t.prepared, trackerEntry[P]{reactor: reactor, payload: payload})
}

// start latches the oldest entry prepared for the reactor.
// Returns false if nothing was prepared for it.
func (t *accessTracker[P]) start(reactor SystemCommand) bool {
	for i, entry := range t.prepared {
		if entry.reactor != reactor {
			continue
		}
		t.prepared = append(t.prepared[:i], t.prepared[i+1:]...)
		t.active = append(t.active, entry)
		return true
	}
	return false
}

// end pops the reactor's active entry
func (t *accessTracker[P]) end(reactor SystemCommand) (P, bool) {
	var zero P
	n := len(t.active)
	if n == 0 || t.active[n-1].reactor != reactor {
		return zero, false
	}
	entry := t.active[n-1]
	t.active[n-1] = trackerEntry[P]{}
	t.active = t.active[:n-1]
	return entry.payload, true
}

// current returns the active payload if it belongs to the reactor
func (t *accessTracker[P]) current(reactor SystemCommand) (P, bool) {
	var zero P
	n := len(t.active)
	if n == 0 || t.active[n-1].reactor != reactor {
		return zero, false
	}
	return t.active[n-1].payload, true
}

func (t *accessTracker[P]) isActive() bool {
	return len(t.active) > 0
}

// trackers groups the four access trackers
type trackers struct {
	systemEvent    *accessTracker[ecs.Entity]
	entityReaction *accessTracker[entityReaction]
	event          *accessTracker[eventReaction]
	despawn        *accessTracker[despawnReaction]
}

func newTrackers() trackers {
	return trackers{
		systemEvent:    newAccessTracker[ecs.Entity]("system event"),
		entityReaction: newAccessTracker[entityReaction]("entity reaction"),
		event:          newAccessTracker[eventReaction]("event"),
		despawn:        newAccessTracker[despawnReaction]("despawn"),
	}
}
