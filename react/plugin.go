package react

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/plus3/cobweb/ecs"
)

// Stats counts what the kernel has run since it was installed
type Stats struct {
	SystemCommands uint64
	Events         uint64
	Reactions      uint64
	Deferred       uint64
	Aborted        uint64
}

// Kernel is the reaction kernel's state. It is stored as a world resource
// and must only be used by the goroutine that owns the world.
type Kernel struct {
	config    Config
	logger    *zap.Logger
	despawner *AutoDespawner
	cache     *reactCache
	trackers  trackers

	syscommands *commandQueue[SystemCommand]
	events      *commandQueue[eventCommand]
	reactions   *commandQueue[reactionCommand]
	buffered    *commandQueue[bufferedSyscommand]

	running []SystemCommand
	depth   int
	owner   int64

	worldReactors       map[reflect.Type]SystemCommand
	entityWorldReactors map[reflect.Type]entityWorldReactor

	stats Stats
}

// Option configures Install
type Option func(*Kernel)

// WithConfig replaces the default configuration
func WithConfig(cfg Config) Option {
	return func(k *Kernel) {
		k.config = cfg
	}
}

// WithLogger sets the logger soft errors are reported to
func WithLogger(logger *zap.Logger) Option {
	return func(k *Kernel) {
		if logger != nil {
			k.logger = logger
		}
	}
}

// Install adds the reaction kernel to the world. Installing twice returns
// the existing kernel.
func Install(w *ecs.World, opts ...Option) *Kernel {
	if k := ecs.Resource[Kernel](w); k != nil {
		return k
	}

	k := &Kernel{
		config:              DefaultConfig(),
		logger:              zap.NewNop(),
		despawner:           NewAutoDespawner(),
		cache:               newReactCache(),
		trackers:            newTrackers(),
		worldReactors:       make(map[reflect.Type]SystemCommand),
		entityWorldReactors: make(map[reflect.Type]entityWorldReactor),
	}
	for _, opt := range opts {
		opt(k)
	}
	k.logger = k.logger.Named("react")

	k.syscommands = newCommandQueue[SystemCommand](k.config.QueueBuffers)
	k.events = newCommandQueue[eventCommand](k.config.QueueBuffers)
	k.reactions = newCommandQueue[reactionCommand](k.config.QueueBuffers)
	k.buffered = newCommandQueue[bufferedSyscommand](k.config.QueueBuffers)

	registry := w.Registry()
	ecs.RegisterComponent[SystemCommandStorage](registry)
	ecs.RegisterComponent[EntityReactors](registry)
	ecs.RegisterComponent[despawnTracker](registry)

	w.AddResource(k)
	return k
}

// InstallScheduler installs the kernel on the scheduler's world. With the
// "last" tick phase the kernel ticks after every frame's systems.
func InstallScheduler(s *ecs.Scheduler, opts ...Option) *Kernel {
	k := Install(s.World(), opts...)
	if k.config.TickPhase == TickLast {
		s.AddHook("react.tick", k.Tick)
	}
	return k
}

// KernelOf returns the world's kernel. It panics if Install was not called.
func KernelOf(w *ecs.World) *Kernel {
	k := ecs.Resource[Kernel](w)
	if k == nil {
		panic("react: plugin not installed")
	}
	return k
}

// Config returns the kernel's configuration
func (k *Kernel) Config() Config {
	return k.config
}

// Stats returns run counters
func (k *Kernel) Stats() Stats {
	return k.stats
}

// Despawner returns the kernel's auto-despawner
func (k *Kernel) Despawner() *AutoDespawner {
	return k.despawner
}

// Tick collects released entities and runs the reaction tree. It is the
// per-frame entry point.
func (k *Kernel) Tick(w *ecs.World) {
	k.garbageCollect(w)
	k.reactionTree(w)
}

// Tick runs one kernel tick on the world
func Tick(w *ecs.World) {
	KernelOf(w).Tick(w)
}

// Despawner returns the world kernel's auto-despawner
func Despawner(w *ecs.World) *AutoDespawner {
	return KernelOf(w).despawner
}
