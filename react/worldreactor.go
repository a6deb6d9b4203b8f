package react

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/plus3/cobweb/ecs"
)

// AddWorldReactor spawns a persistent reactor addressed by the key type K
// and registers its starting triggers. Adding a second reactor for the same
// key replaces the first one's address.
func AddWorldReactor[K any](w *ecs.World, system ecs.System, starting ...TriggerBundle) SystemCommand {
	k := KernelOf(w)
	command := SpawnSystemCommand(w, system)
	k.worldReactors[reflect.TypeFor[K]()] = command
	With(w, Triggers(starting...), command, Persistent)
	return command
}

// Reactor adds and removes triggers of the world reactor keyed by K
type Reactor[K any] struct {
	w *ecs.World
	k *Kernel
}

// NewReactor returns an accessor for use outside a system struct
func NewReactor[K any](w *ecs.World) *Reactor[K] {
	r := &Reactor[K]{}
	r.Init(w)
	return r
}

// Init binds the accessor to the world's kernel
func (r *Reactor[K]) Init(w *ecs.World) {
	r.w = w
	r.k = KernelOf(w)
}

// SystemCommand returns the reactor's command
func (r *Reactor[K]) SystemCommand() (SystemCommand, bool) {
	command, ok := r.k.worldReactors[reflect.TypeFor[K]()]
	if !ok {
		r.k.logger.Warn("world reactor is missing", zap.Stringer("reactor", reflect.TypeFor[K]()))
	}
	return command, ok
}

// AddTriggers registers more triggers for the reactor
func (r *Reactor[K]) AddTriggers(triggers ...TriggerBundle) bool {
	command, ok := r.SystemCommand()
	if !ok {
		return false
	}
	With(r.w, Triggers(triggers...), command, Persistent)
	return true
}

// RemoveTriggers revokes triggers previously added to the reactor
func (r *Reactor[K]) RemoveTriggers(triggers ...TriggerBundle) bool {
	command, ok := r.SystemCommand()
	if !ok {
		return false
	}
	Revoke(r.w, NewRevokeToken(command, Triggers(triggers...)))
	return true
}

// Run runs the reactor as a plain system command
func (r *Reactor[K]) Run() bool {
	command, ok := r.SystemCommand()
	if !ok {
		return false
	}
	RunSystemCommand(r.w, command)
	return true
}
