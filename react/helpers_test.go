package react_test

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/plus3/cobweb/ecs"
	"github.com/plus3/cobweb/react"
)

// Common test value types
type A struct {
	V int
}

type B struct {
	V int
}

type Ping struct {
	N int
}

type Counter struct {
	Value int
}

func newTestWorld(opts ...react.Option) *ecs.World {
	w := ecs.NewWorld(ecs.NewComponentRegistry())
	react.Install(w, opts...)
	return w
}

func newObservedWorld(opts ...react.Option) (*ecs.World, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	opts = append(opts, react.WithLogger(zap.New(core)))
	return newTestWorld(opts...), logs
}

// history records labels in the order reactors ran
type history struct {
	items []string
}

func (h *history) push(item string) {
	h.items = append(h.items, item)
}

func record(h *history, item string) ecs.System {
	return ecs.SystemFunc(func(*ecs.UpdateFrame) {
		h.push(item)
	})
}

// holderSystem owns an auto-despawn signal and releases it when dropped
type holderSystem struct {
	signal *react.AutoDespawnSignal
	runs   int
}

func (s *holderSystem) Execute(*ecs.UpdateFrame) {
	s.runs++
}

func (s *holderSystem) Drop() {
	s.signal.Release()
}

func countEntities[T any](w *ecs.World) int {
	count := 0
	for range ecs.Each[T](w) {
		count++
	}
	return count
}
