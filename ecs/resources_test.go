package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/cobweb/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResources(t *testing.T) {
	w := ecs.NewWorld(newTestRegistry())

	assert.Nil(t, ecs.Resource[Config](w))

	cfg := ecs.InsertResource(w, Config{Gravity: 9.8})
	require.NotNil(t, cfg)
	assert.Same(t, cfg, ecs.Resource[Config](w))
	assert.True(t, w.HasResource(reflect.TypeFor[Config]()))

	t.Run("value resources are copied", func(t *testing.T) {
		w.AddResource(Score(7))
		score := ecs.Resource[Score](w)
		require.NotNil(t, score)
		*score = 8
		assert.Equal(t, Score(8), *ecs.Resource[Score](w))
	})

	t.Run("init keeps existing", func(t *testing.T) {
		assert.Same(t, cfg, ecs.InitResource[Config](w))
		tag := ecs.InitResource[Tag](w)
		assert.Equal(t, Tag(""), *tag)
	})

	t.Run("replace and remove drop", func(t *testing.T) {
		var dropped []int
		ecs.InsertResource(w, Lease{ID: 1, Dropped: &dropped})
		ecs.InsertResource(w, Lease{ID: 2, Dropped: &dropped})
		assert.Equal(t, []int{1}, dropped)
		assert.True(t, ecs.RemoveResource[Lease](w))
		assert.Equal(t, []int{1, 2}, dropped)
		assert.False(t, ecs.RemoveResource[Lease](w))
	})
}

type gravitySystem struct {
	Config ecs.Singleton[Config]
	seen   float32
}

func (s *gravitySystem) Execute(frame *ecs.UpdateFrame) {
	s.seen = s.Config.Get().Gravity
}

func TestSingleton(t *testing.T) {
	w := ecs.NewWorld(newTestRegistry())

	t.Run("new singleton initializes", func(t *testing.T) {
		single := ecs.NewSingleton(w, Config{Gravity: 1})
		assert.True(t, single.Exists())
		assert.Equal(t, float32(1), single.Get().Gravity)

		again := ecs.NewSingleton(w, Config{Gravity: 2})
		assert.Equal(t, float32(1), again.Get().Gravity, "existing resource wins")
	})

	t.Run("system field", func(t *testing.T) {
		scheduler := ecs.NewScheduler(w)
		system := &gravitySystem{}
		scheduler.Register(system)

		ecs.InsertResource(w, Config{Gravity: 3})
		scheduler.Once(0)
		assert.Equal(t, float32(3), system.seen)
	})

	t.Run("missing resource", func(t *testing.T) {
		var single ecs.Singleton[Health]
		single.Init(w)
		assert.False(t, single.Exists())
		assert.Nil(t, single.Get())
	})
}
