package ecs

import (
	"context"
	"reflect"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Scheduler manages and executes systems in order.
// Hooks run after every system has executed and the frame's commands are flushed.
type Scheduler struct {
	world       *World
	systems     []System
	queries     [][]queryRefresher
	systemStats []*systemStatsInternal
	hooks       []schedulerHook
}

type schedulerHook struct {
	fn    func(w *World)
	stats *systemStatsInternal
}

// NewScheduler creates a new scheduler for the given world.
func NewScheduler(w *World) *Scheduler {
	return &Scheduler{
		world:   w,
		systems: make([]System, 0),
	}
}

// World returns the world driven by this scheduler.
func (s *Scheduler) World() *World {
	return s.world
}

// Register adds a system to the scheduler and initializes its Query fields.
func (s *Scheduler) Register(system System) {
	InitSystem(s.world, system)
	s.systems = append(s.systems, system)
	s.queries = append(s.queries, collectQueries(system))

	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	s.systemStats = append(s.systemStats, newSystemStats(systemType.Name()))
}

// AddHook registers a function that runs once per frame, after systems and the command flush.
// Hooks run in registration order.
func (s *Scheduler) AddHook(name string, fn func(w *World)) {
	s.hooks = append(s.hooks, schedulerHook{
		fn:    fn,
		stats: newSystemStats(name),
	})
}

func newSystemStats(name string) *systemStatsInternal {
	return &systemStatsInternal{
		name:        name,
		minDuration: time.Duration(1<<63 - 1),
	}
}

func (st *systemStatsInternal) record(duration time.Duration) {
	st.executionCount++
	st.lastDuration = duration
	st.totalDuration += duration

	if duration < st.minDuration {
		st.minDuration = duration
	}
	if duration > st.maxDuration {
		st.maxDuration = duration
	}
}

// Once executes all registered systems once with the given delta time.
func (s *Scheduler) Once(dt float64) {
	frame := NewUpdateFrame(dt, s.world)

	for i, system := range s.systems {
		start := time.Now()
		for _, query := range s.queries[i] {
			query.Execute()
		}
		system.Execute(frame)
		s.systemStats[i].record(time.Since(start))
	}

	frame.Commands.Flush(s.world)

	for _, hook := range s.hooks {
		start := time.Now()
		hook.fn(s.world)
		hook.stats.record(time.Since(start))
	}
}

// Run executes all systems repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system and hook execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	all := make([]*systemStatsInternal, 0, len(s.systemStats)+len(s.hooks))
	all = append(all, s.systemStats...)
	for _, hook := range s.hooks {
		all = append(all, hook.stats)
	}

	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(all)),
	}

	var totalExecs int64
	for i, internal := range all {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
