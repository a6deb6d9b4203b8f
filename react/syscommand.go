package react

import (
	"github.com/plus3/cobweb/ecs"
)

// SystemCommandCallback is the callback stored on a system command entity.
// The cleanup function must run after the callback's work and before its
// deferred commands are applied.
type SystemCommandCallback struct {
	run  func(w *ecs.World, cleanup func(w *ecs.World))
	drop func()
}

// NewCallback wraps a raw function. It is responsible for calling cleanup.
func NewCallback(fn func(w *ecs.World, cleanup func(w *ecs.World))) *SystemCommandCallback {
	return &SystemCommandCallback{run: fn}
}

// NewSystemCommandCallback wraps a system. Its fields are initialized on
// the first run and its queries are refreshed on every run. If the system
// implements ecs.Dropper it is dropped with the callback.
func NewSystemCommandCallback(system ecs.System) *SystemCommandCallback {
	initialized := false
	callback := &SystemCommandCallback{
		run: func(w *ecs.World, cleanup func(w *ecs.World)) {
			if !initialized {
				ecs.InitSystem(w, system)
				initialized = true
			}
			ecs.RefreshQueries(system)

			frame := ecs.NewUpdateFrame(0, w)
			system.Execute(frame)
			cleanup(w)
			frame.Commands.Flush(w)
		},
	}
	if dropper, ok := system.(ecs.Dropper); ok {
		callback.drop = dropper.Drop
	}
	return callback
}

// Run invokes the callback
func (c *SystemCommandCallback) Run(w *ecs.World, cleanup func(w *ecs.World)) {
	if cleanup == nil {
		cleanup = func(*ecs.World) {}
	}
	c.run(w, cleanup)
}

// Drop releases whatever the callback owns. Dropping twice is a no-op.
func (c *SystemCommandCallback) Drop() {
	if c.drop == nil {
		return
	}
	drop := c.drop
	c.drop = nil
	drop()
}

// SystemCommandStorage holds a system command's callback. The runner takes
// the callback out while it runs, so the entity never changes archetype.
type SystemCommandStorage struct {
	callback *SystemCommandCallback
}

func (s *SystemCommandStorage) take() *SystemCommandCallback {
	callback := s.callback
	s.callback = nil
	return callback
}

func (s *SystemCommandStorage) insert(callback *SystemCommandCallback) {
	s.callback = callback
}

// Drop drops the stored callback
func (s *SystemCommandStorage) Drop() {
	if s.callback != nil {
		s.callback.Drop()
		s.callback = nil
	}
}

// spawnCallback stores the callback on a new entity
func (k *Kernel) spawnCallback(w *ecs.World, callback *SystemCommandCallback) SystemCommand {
	return SystemCommand(w.Spawn(SystemCommandStorage{callback: callback}))
}
