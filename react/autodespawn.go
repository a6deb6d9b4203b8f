package react

import (
	"sync"
	"sync/atomic"

	"github.com/plus3/cobweb/ecs"
)

// entityInbox is an unbounded queue of entities. Producers may run on any
// goroutine; the reaction tree drains it at safe points.
type entityInbox struct {
	mu      sync.Mutex
	pending []ecs.Entity
}

func (in *entityInbox) send(e ecs.Entity) {
	in.mu.Lock()
	in.pending = append(in.pending, e)
	in.mu.Unlock()
}

func (in *entityInbox) tryRecv() (ecs.Entity, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.pending) == 0 {
		return ecs.Placeholder, false
	}
	e := in.pending[0]
	in.pending = in.pending[1:]
	if len(in.pending) == 0 {
		in.pending = nil
	}
	return e, true
}

func (in *entityInbox) len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.pending)
}

// AutoDespawner creates AutoDespawnSignals and despawns their entities once
// every clone of a signal has been released.
type AutoDespawner struct {
	inbox entityInbox
}

// NewAutoDespawner creates an empty despawner
func NewAutoDespawner() *AutoDespawner {
	return &AutoDespawner{}
}

// Prepare returns a signal for the entity. When the last clone of the signal
// is released, the entity is despawned at the next safe point.
func (d *AutoDespawner) Prepare(e ecs.Entity) *AutoDespawnSignal {
	inner := &autoDespawnInner{entity: e, despawner: d}
	inner.refs.Store(1)
	return &AutoDespawnSignal{inner: inner}
}

// Pending returns the number of entities waiting to be despawned
func (d *AutoDespawner) Pending() int {
	return d.inbox.len()
}

// GarbageCollect despawns every queued entity that still exists. Despawning
// may release more signals; those are collected in the same pass.
func (d *AutoDespawner) GarbageCollect(w *ecs.World) int {
	despawned := 0
	for {
		e, ok := d.inbox.tryRecv()
		if !ok {
			return despawned
		}
		if w.Despawn(e) {
			despawned++
		}
	}
}

type autoDespawnInner struct {
	entity    ecs.Entity
	refs      atomic.Int64
	despawner *AutoDespawner
}

// AutoDespawnSignal is one reference to a shared despawn refcount. Every
// clone must be released exactly once; releasing twice is a no-op.
type AutoDespawnSignal struct {
	inner    *autoDespawnInner
	released atomic.Bool
}

// Clone adds a reference to the signal.
// Cloning a released signal panics.
func (s *AutoDespawnSignal) Clone() *AutoDespawnSignal {
	if s.released.Load() {
		panic("react: clone of released auto-despawn signal for " + s.inner.entity.String())
	}
	s.inner.refs.Add(1)
	return &AutoDespawnSignal{inner: s.inner}
}

// Release drops this reference. The last release queues the entity for despawn.
func (s *AutoDespawnSignal) Release() {
	if s == nil || !s.released.CompareAndSwap(false, true) {
		return
	}
	if s.inner.refs.Add(-1) == 0 {
		s.inner.despawner.inbox.send(s.inner.entity)
	}
}

// Drop releases the signal, so a signal stored in a component is released
// with it.
func (s *AutoDespawnSignal) Drop() {
	s.Release()
}

// Entity returns the entity the signal will despawn
func (s *AutoDespawnSignal) Entity() ecs.Entity {
	return s.inner.entity
}

// Released reports whether this clone has been released
func (s *AutoDespawnSignal) Released() bool {
	return s.released.Load()
}
