package main

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/plus3/cobweb/ecs"
	"github.com/plus3/cobweb/react"
)

// Heat is the reactive component every stress entity carries
type Heat struct {
	Level int
}

// Pulse is broadcast every frame and relayed until its depth runs out
type Pulse struct {
	Depth int
}

// Watched marks the entity a churn frame spawns
type Watched struct {
	Frame int
}

// Peak is the hottest level the monitor has seen. It is a world resource.
type Peak struct {
	Level int
	Frame int
}

type cascadeReactor struct{}

// Counters are the workload's own view of what reacted
type Counters struct {
	Resets      int
	Cascades    int
	Pulses      int
	Listeners   int
	Despawns    int
	EntityHooks int
}

type workload struct {
	cfg      StressConfig
	logger   *zap.Logger
	rng      *rand.Rand
	entities []ecs.Entity
	watched  ecs.Entity
	frame    int
	counters Counters
}

func newWorkload(cfg StressConfig, logger *zap.Logger) *workload {
	return &workload{
		cfg:     cfg,
		logger:  logger,
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		watched: ecs.Placeholder,
	}
}

// populate spawns the entities and registers every reactor
func (wl *workload) populate(w *ecs.World) {
	wl.entities = make([]ecs.Entity, 0, wl.cfg.Entities)
	for range wl.cfg.Entities {
		e := w.Spawn()
		react.Insert(w, e, Heat{})
		wl.entities = append(wl.entities, e)
	}

	ecs.NewSingleton(w, Peak{})
	react.AddWorldReactor[cascadeReactor](w, &cascadeSystem{wl: wl}, react.Mutation[Heat]())
	react.OnPersistent(w, react.BroadcastTrigger[Pulse](), &relaySystem{wl: wl})

	for i := range wl.cfg.Reactors {
		switch i % 3 {
		case 0:
			react.On(w, react.BroadcastTrigger[Pulse](), ecs.SystemFunc(func(*ecs.UpdateFrame) {
				wl.counters.Listeners++
			}))
		case 1:
			target := wl.entities[wl.rng.IntN(len(wl.entities))]
			react.OnCleanup(w, react.EntityMutation[Heat](target), ecs.SystemFunc(func(*ecs.UpdateFrame) {
				wl.counters.EntityHooks++
			}))
		default:
			react.On(w, react.Insertion[Watched](), ecs.SystemFunc(func(*ecs.UpdateFrame) {
				wl.counters.Listeners++
			}))
		}
	}
	wl.logger.Info("workload populated",
		zap.Int("entities", len(wl.entities)),
		zap.Int("reactors", wl.cfg.Reactors))
}

// cascadeSystem raises the heat of a mutated entity until it reaches the
// configured depth. Each raise is a new mutation reaction.
type cascadeSystem struct {
	Mutated react.MutationEvent[Heat]

	wl *workload
}

func (s *cascadeSystem) Execute(frame *ecs.UpdateFrame) {
	e, ok := s.Mutated.Read()
	if !ok {
		return
	}
	heat, ok := react.Read[Heat](frame.World, e)
	if !ok || heat.Level >= s.wl.cfg.Depth {
		return
	}
	s.wl.counters.Cascades++
	react.SetIfNeq(frame.World, e, Heat{Level: heat.Level + 1})
}

// relaySystem re-broadcasts pulses with one less depth
type relaySystem struct {
	Pulse react.BroadcastEvent[Pulse]

	wl *workload
}

func (s *relaySystem) Execute(frame *ecs.UpdateFrame) {
	pulse, ok := s.Pulse.Read()
	if !ok {
		return
	}
	s.wl.counters.Pulses++
	if pulse.Depth > 0 {
		react.Broadcast(frame.World, Pulse{Depth: pulse.Depth - 1})
	}
}

// driverSystem starts the frame's cascades. It runs as a scheduler system.
type driverSystem struct {
	wl *workload
}

func (s *driverSystem) Execute(frame *ecs.UpdateFrame) {
	wl := s.wl
	wl.frame++

	for range wl.cfg.Batch {
		e := wl.entities[wl.rng.IntN(len(wl.entities))]
		if react.Mutate(frame.World, e, func(h *Heat) { h.Level = 0 }) {
			wl.counters.Resets++
		}
	}
	react.Broadcast(frame.World, Pulse{Depth: wl.cfg.Depth})

	if !wl.cfg.Churn {
		return
	}
	// The despawn is picked up by the kernel's end of frame tick.
	if wl.watched != ecs.Placeholder {
		frame.Commands.Despawn(wl.watched)
	}
	frame.Commands.SpawnThen(func(e ecs.Entity) {
		wl.watched = e
		react.Insert(frame.World, e, Watched{Frame: wl.frame})
		react.OnCleanup(frame.World, react.Despawn(e), ecs.SystemFunc(func(*ecs.UpdateFrame) {
			wl.counters.Despawns++
		}))
	})
}

// monitorSystem scans every heated entity once per frame
type monitorSystem struct {
	Entities ecs.Query[struct {
		Heat    *react.React[Heat]
		Watched *react.React[Watched] `ecs:"optional"`
	}]
	Peak ecs.Singleton[Peak]

	wl *workload
}

func (s *monitorSystem) Execute(*ecs.UpdateFrame) {
	peak := s.Peak.Get()
	for entity := range s.Entities.Values() {
		if level := entity.Heat.Get().Level; level > peak.Level {
			peak.Level = level
			peak.Frame = s.wl.frame
		}
	}
}
