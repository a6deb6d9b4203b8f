package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/cobweb/ecs"
	"github.com/stretchr/testify/assert"
)

type testSpawnSystem struct {
	executed bool
}

func (s *testSpawnSystem) Execute(frame *ecs.UpdateFrame) {
	s.executed = true
	frame.Commands.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	frame.Commands.Spawn(Position{X: 3, Y: 4})
}

type testDespawnSystem struct {
	entityToDespawn ecs.Entity
}

func (s *testDespawnSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Despawn(s.entityToDespawn)
}

type testMixedSystem struct {
	entity ecs.Entity
}

func (s *testMixedSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Spawn(Position{X: 10, Y: 20})
	frame.Commands.AddComponent(s.entity, Velocity{DX: 1, DY: 1})
	frame.Commands.Despawn(s.entity)
	frame.Commands.Spawn(Health{Current: 100, Max: 100})
}

func countView[T any](w *ecs.World) int {
	count := 0
	for range ecs.NewView[T](w).Iter() {
		count++
	}
	return count
}

func TestCommands(t *testing.T) {
	registry := newTestRegistry()

	t.Run("spawn entities", func(t *testing.T) {
		w := ecs.NewWorld(registry)
		scheduler := ecs.NewScheduler(w)

		system := &testSpawnSystem{}
		scheduler.Register(system)

		if countView[struct{ *Position }](w) != 0 {
			t.Error("entities spawned before frame execution")
		}

		scheduler.Once(1.0)

		assert.Equal(t, 2, countView[struct{ *Position }](w))
		assert.True(t, system.executed)
	})

	t.Run("despawn entities", func(t *testing.T) {
		w := ecs.NewWorld(registry)
		e1 := w.Spawn(Position{X: 1, Y: 2})
		e2 := w.Spawn(Position{X: 3, Y: 4})

		scheduler := ecs.NewScheduler(w)
		scheduler.Register(&testDespawnSystem{entityToDespawn: e1})

		if !w.Alive(e1) {
			t.Error("entity despawned before frame execution")
		}

		scheduler.Once(1.0)

		assert.False(t, w.Alive(e1))
		assert.True(t, w.Alive(e2))
	})

	t.Run("add and remove components", func(t *testing.T) {
		w := ecs.NewWorld(registry)
		entity := w.Spawn(Position{X: 1, Y: 2}, Health{Current: 1})

		commands := ecs.NewCommands()
		commands.AddComponent(entity, Velocity{DX: 5, DY: 10})
		commands.RemoveComponent(entity, reflect.TypeOf(Health{}))
		assert.Equal(t, 2, commands.Len())

		commands.Flush(w)
		assert.Equal(t, 0, commands.Len())

		assert.Equal(t, float32(5), ecs.ReadComponent[Velocity](w, entity).DX)
		assert.False(t, ecs.Has[Health](w, entity))
	})

	t.Run("despawn wins over add", func(t *testing.T) {
		w := ecs.NewWorld(registry)
		entity := w.Spawn(Position{})

		scheduler := ecs.NewScheduler(w)
		scheduler.Register(&testMixedSystem{entity: entity})
		scheduler.Once(1.0)

		assert.False(t, w.Alive(entity))
		assert.Equal(t, 0, countView[struct{ *Velocity }](w))
		assert.Equal(t, 1, countView[struct{ *Position }](w))
		assert.Equal(t, 1, countView[struct{ *Health }](w))
	})

	t.Run("spawn then", func(t *testing.T) {
		w := ecs.NewWorld(registry)
		commands := ecs.NewCommands()

		var spawned ecs.Entity
		commands.SpawnThen(func(e ecs.Entity) { spawned = e }, Score(4))
		commands.Flush(w)

		assert.True(t, w.Alive(spawned))
		assert.Equal(t, Score(4), *ecs.ReadComponent[Score](w, spawned))
	})

	t.Run("defer queues more commands", func(t *testing.T) {
		w := ecs.NewWorld(registry)
		commands := ecs.NewCommands()

		var order []string
		commands.Defer(func() {
			order = append(order, "first")
			commands.Spawn(Tag("late"))
			commands.Defer(func() { order = append(order, "second") })
		})
		commands.Flush(w)

		assert.Equal(t, []string{"first", "second"}, order)
		assert.Equal(t, 1, countView[struct{ *Tag }](w))
	})
}
