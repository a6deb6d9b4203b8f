package react

import (
	"reflect"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"

	"github.com/plus3/cobweb/ecs"
)

type entityReactorEntry struct {
	kind   ReactorKind
	typ    reflect.Type
	handle ReactorHandle
}

// EntityReactors is stored on an entity that has entity-specific reactors.
// Despawning the entity releases every handle it holds.
type EntityReactors struct {
	entries []entityReactorEntry
}

// Len returns the number of registered entity reactors
func (r *EntityReactors) Len() int {
	return len(r.entries)
}

// Contains reports whether the reactor is registered on the entity
func (r *EntityReactors) Contains(id SystemCommand) bool {
	for _, entry := range r.entries {
		if entry.handle.ID() == id {
			return true
		}
	}
	return false
}

// Drop releases every handle the entity holds
func (r *EntityReactors) Drop() {
	for _, entry := range r.entries {
		entry.handle.Release()
	}
	r.entries = nil
}

// despawnTracker reports its entity's despawn to the registry
type despawnTracker struct {
	entity ecs.Entity
	inbox  *entityInbox
}

func (t *despawnTracker) Drop() {
	t.inbox.send(t.entity)
}

type componentReactors struct {
	insertion []ReactorHandle
	mutation  []ReactorHandle
	removal   []ReactorHandle
}

func (c *componentReactors) list(kind ReactorKind) *[]ReactorHandle {
	switch kind {
	case KindComponentInsertion:
		return &c.insertion
	case KindComponentMutation:
		return &c.mutation
	default:
		return &c.removal
	}
}

func (c *componentReactors) empty() bool {
	return len(c.insertion) == 0 && len(c.mutation) == 0 && len(c.removal) == 0
}

// removalChecker polls the world's removal stream for React[T]. key is T.
type removalChecker struct {
	key    reflect.Type
	stored reflect.Type
}

// reactCache indexes reactor handles by trigger
type reactCache struct {
	componentReactors      map[reflect.Type]*componentReactors
	trackedRemovals        map[reflect.Type]bool
	removalCheckers        []removalChecker
	removalBuffer          []ecs.Entity
	despawnReactors        *intmap.Map[ecs.Entity, []ReactorHandle]
	despawnInbox           *entityInbox
	resourceReactors       map[reflect.Type][]ReactorHandle
	broadcastReactors      map[reflect.Type][]ReactorHandle
	anyEntityEventReactors map[reflect.Type][]ReactorHandle
	inReactionTree         bool
}

func newReactCache() *reactCache {
	return &reactCache{
		componentReactors:      make(map[reflect.Type]*componentReactors),
		trackedRemovals:        make(map[reflect.Type]bool),
		despawnReactors:        intmap.New[ecs.Entity, []ReactorHandle](64),
		despawnInbox:           &entityInbox{},
		resourceReactors:       make(map[reflect.Type][]ReactorHandle),
		broadcastReactors:      make(map[reflect.Type][]ReactorHandle),
		anyEntityEventReactors: make(map[reflect.Type][]ReactorHandle),
	}
}

func (c *reactCache) startReactionTree() bool {
	if c.inReactionTree {
		return false
	}
	c.inReactionTree = true
	return true
}

func (c *reactCache) endReactionTree() {
	c.inReactionTree = false
}

// trackRemovals installs a removal poller for React[T], keyed by T
func (c *reactCache) trackRemovals(w *ecs.World, key, stored reflect.Type) {
	if c.trackedRemovals[key] {
		return
	}
	c.trackedRemovals[key] = true
	c.removalCheckers = append(c.removalCheckers, removalChecker{key: key, stored: stored})
	w.TrackRemovals(stored)
}

func (c *reactCache) registerComponent(kind ReactorKind, typ reflect.Type, h ReactorHandle) {
	reactors, ok := c.componentReactors[typ]
	if !ok {
		reactors = &componentReactors{}
		c.componentReactors[typ] = reactors
	}
	list := reactors.list(kind)
	*list = append(*list, h.Clone())
}

func registerIn(m map[reflect.Type][]ReactorHandle, typ reflect.Type, h ReactorHandle) {
	m[typ] = append(m[typ], h.Clone())
}

// registerEntity stores the handle on the target entity. A dead target
// registers nothing.
func (c *reactCache) registerEntity(k *Kernel, w *ecs.World, kind ReactorKind, e ecs.Entity, typ reflect.Type, h ReactorHandle) {
	if !w.Alive(e) {
		k.logger.Warn("entity reactor target is missing",
			zap.Stringer("entity", e),
			zap.Stringer("kind", kind),
			zap.Stringer("reactor", h.ID()))
		return
	}
	entry := entityReactorEntry{kind: kind, typ: typ, handle: h.Clone()}
	if reactors := ecs.ReadComponent[EntityReactors](w, e); reactors != nil {
		reactors.entries = append(reactors.entries, entry)
		return
	}
	w.AddComponent(e, EntityReactors{entries: []entityReactorEntry{entry}})
}

// registerDespawn stores the handle until the entity despawns. A target
// that is already gone is reported at the next safe point.
func (c *reactCache) registerDespawn(w *ecs.World, e ecs.Entity, h ReactorHandle) {
	handles, _ := c.despawnReactors.Get(e)
	c.despawnReactors.Put(e, append(handles, h.Clone()))

	if !w.Alive(e) {
		c.despawnInbox.send(e)
		return
	}
	if !ecs.Has[despawnTracker](w, e) {
		w.AddComponent(e, despawnTracker{entity: e, inbox: c.despawnInbox})
	}
}

// removeHandle removes and releases the first handle with the id
func removeHandle(handles []ReactorHandle, id SystemCommand) []ReactorHandle {
	for i, h := range handles {
		if h.ID() != id {
			continue
		}
		h.Release()
		return append(handles[:i], handles[i+1:]...)
	}
	return handles
}

func revokeIn(m map[reflect.Type][]ReactorHandle, typ reflect.Type, id SystemCommand) {
	handles, ok := m[typ]
	if !ok {
		return
	}
	handles = removeHandle(handles, id)
	if len(handles) == 0 {
		delete(m, typ)
		return
	}
	m[typ] = handles
}

// revoke removes the reactor from the index of one trigger
func (c *reactCache) revoke(w *ecs.World, id SystemCommand, rtype ReactorType) {
	switch rtype.Kind {
	case KindComponentInsertion, KindComponentMutation, KindComponentRemoval:
		reactors, ok := c.componentReactors[rtype.Type]
		if !ok {
			return
		}
		list := reactors.list(rtype.Kind)
		*list = removeHandle(*list, id)
		if reactors.empty() {
			delete(c.componentReactors, rtype.Type)
		}
	case KindEntityInsertion, KindEntityMutation, KindEntityRemoval, KindEntityEvent:
		c.revokeEntity(w, id, rtype)
	case KindAnyEntityEvent:
		revokeIn(c.anyEntityEventReactors, rtype.Type, id)
	case KindResourceMutation:
		revokeIn(c.resourceReactors, rtype.Type, id)
	case KindBroadcast:
		revokeIn(c.broadcastReactors, rtype.Type, id)
	case KindDespawn:
		handles, ok := c.despawnReactors.Get(rtype.Entity)
		if !ok {
			return
		}
		handles = removeHandle(handles, id)
		if len(handles) == 0 {
			c.despawnReactors.Del(rtype.Entity)
			return
		}
		c.despawnReactors.Put(rtype.Entity, handles)
	}
}

func (c *reactCache) revokeEntity(w *ecs.World, id SystemCommand, rtype ReactorType) {
	reactors := ecs.ReadComponent[EntityReactors](w, rtype.Entity)
	if reactors == nil {
		return
	}
	for i, entry := range reactors.entries {
		if entry.kind != rtype.Kind || entry.typ != rtype.Type || entry.handle.ID() != id {
			continue
		}
		entry.handle.Release()
		reactors.entries = append(reactors.entries[:i], reactors.entries[i+1:]...)
		break
	}
	if len(reactors.entries) == 0 {
		ecs.Remove[EntityReactors](w, rtype.Entity)
	}
}

// contains reports whether any index still refers to the reactor
func (c *reactCache) contains(w *ecs.World, id SystemCommand) bool {
	has := func(handles []ReactorHandle) bool {
		for _, h := range handles {
			if h.ID() == id {
				return true
			}
		}
		return false
	}
	for _, reactors := range c.componentReactors {
		if has(reactors.insertion) || has(reactors.mutation) || has(reactors.removal) {
			return true
		}
	}
	for _, index := range []map[reflect.Type][]ReactorHandle{c.resourceReactors, c.broadcastReactors, c.anyEntityEventReactors} {
		for _, handles := range index {
			if has(handles) {
				return true
			}
		}
	}
	for _, handles := range c.despawnReactors.All() {
		if has(handles) {
			return true
		}
	}
	for _, reactors := range ecs.Each[EntityReactors](w) {
		if reactors.Contains(id) {
			return true
		}
	}
	return false
}

func entityReactionKind(kind ReactorKind) EntityReactionKind {
	switch kind {
	case KindEntityInsertion, KindComponentInsertion:
		return ReactionInsertion
	case KindEntityMutation, KindComponentMutation:
		return ReactionMutation
	case KindEntityRemoval, KindComponentRemoval:
		return ReactionRemoval
	default:
		return ReactionEvent
	}
}

// scheduleEntityReaction queues the entity's own reactors for the change,
// then every component-wide reactor.
func (c *reactCache) scheduleEntityReaction(k *Kernel, w *ecs.World, kind ReactorKind, e ecs.Entity, typ reflect.Type) int {
	scheduled := 0
	reaction := entityReactionKind(kind)
	if reactors := ecs.ReadComponent[EntityReactors](w, e); reactors != nil {
		for _, entry := range reactors.entries {
			if entry.kind != kind || entry.typ != typ {
				continue
			}
			k.reactions.push(reactionCommand{
				kind:     reactEntity,
				reactor:  entry.handle.ID(),
				source:   e,
				reaction: reaction,
				typ:      typ,
			})
			scheduled++
		}
	}

	reactors, ok := c.componentReactors[typ]
	if !ok {
		return scheduled
	}
	for _, h := range *reactors.list(componentKind(kind)) {
		k.reactions.push(reactionCommand{
			kind:     reactEntity,
			reactor:  h.ID(),
			source:   e,
			reaction: reaction,
			typ:      typ,
		})
		scheduled++
	}
	return scheduled
}

func componentKind(kind ReactorKind) ReactorKind {
	switch kind {
	case KindEntityInsertion:
		return KindComponentInsertion
	case KindEntityMutation:
		return KindComponentMutation
	case KindEntityRemoval:
		return KindComponentRemoval
	}
	return kind
}

func (c *reactCache) scheduleInsertion(k *Kernel, w *ecs.World, e ecs.Entity, typ reflect.Type) int {
	return c.scheduleEntityReaction(k, w, KindEntityInsertion, e, typ)
}

func (c *reactCache) scheduleMutation(k *Kernel, w *ecs.World, e ecs.Entity, typ reflect.Type) int {
	return c.scheduleEntityReaction(k, w, KindEntityMutation, e, typ)
}

func (c *reactCache) scheduleResourceMutation(k *Kernel, typ reflect.Type) int {
	handles := c.resourceReactors[typ]
	for _, h := range handles {
		k.reactions.push(reactionCommand{kind: reactResource, reactor: h.ID(), typ: typ})
	}
	return len(handles)
}

// scheduleRemovals drains every polled removal stream. Entities that were
// despawned are skipped.
func (c *reactCache) scheduleRemovals(k *Kernel, w *ecs.World) int {
	scheduled := 0
	for _, checker := range c.removalCheckers {
		c.removalBuffer = w.DrainRemoved(checker.stored, c.removalBuffer)
		for _, e := range c.removalBuffer {
			if !w.Alive(e) {
				continue
			}
			scheduled += c.scheduleEntityReaction(k, w, KindEntityRemoval, e, checker.key)
		}
	}
	clear(c.removalBuffer)
	c.removalBuffer = c.removalBuffer[:0]
	return scheduled
}

// scheduleDespawns queues one reaction per despawn reactor of every
// despawned entity. The registry's handle moves into the reaction.
func (c *reactCache) scheduleDespawns(k *Kernel) int {
	scheduled := 0
	for {
		e, ok := c.despawnInbox.tryRecv()
		if !ok {
			return scheduled
		}
		handles, ok := c.despawnReactors.Get(e)
		if !ok {
			continue
		}
		c.despawnReactors.Del(e)
		for _, h := range handles {
			k.reactions.push(reactionCommand{
				kind:    reactDespawn,
				reactor: h.ID(),
				source:  e,
				handle:  h,
			})
			scheduled++
		}
	}
}
