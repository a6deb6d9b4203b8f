package ecs_test

import (
	"testing"

	"github.com/plus3/cobweb/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView(t *testing.T) {
	w := ecs.NewWorld(newTestRegistry())
	entity := w.Spawn(&Position{
		X: 1,
		Y: 2,
	}, Score(32))

	view := ecs.NewView[struct {
		*Position
		*Score
	}](w)

	item := view.Get(entity)
	require.NotNil(t, item)
	assert.Equal(t, Score(32), *item.Score)
	assert.Equal(t, float32(1), item.Position.X)
	assert.Equal(t, float32(2), item.Position.Y)
}

func TestViewMissingComponent(t *testing.T) {
	w := ecs.NewWorld(newTestRegistry())
	// Entity only has Position, not Velocity
	entity := w.Spawn(&Position{X: 5, Y: 10})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)

	assert.Nil(t, view.Get(entity))

	var result struct {
		*Position
		*Velocity
	}
	assert.False(t, view.Fill(entity, &result))
}

func TestViewDeadEntity(t *testing.T) {
	w := ecs.NewWorld(newTestRegistry())
	entity := w.Spawn(&Position{X: 5, Y: 10})
	w.Despawn(entity)

	view := ecs.NewView[struct{ *Position }](w)
	assert.Nil(t, view.Get(entity))
	assert.Nil(t, view.Get(ecs.Placeholder))
}

func TestViewComponentMutation(t *testing.T) {
	w := ecs.NewWorld(newTestRegistry())
	entity := w.Spawn(&Position{X: 0, Y: 0}, &Velocity{DX: 1, DY: 1})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)

	item := view.Get(entity)
	item.Position.X += item.Velocity.DX
	item.Position.Y += item.Velocity.DY

	again := view.Get(entity)
	assert.Equal(t, float32(1), again.Position.X)
	assert.Equal(t, float32(1), again.Position.Y)
}

func TestViewIterMultipleArchetypes(t *testing.T) {
	w := ecs.NewWorld(newTestRegistry())

	w.Spawn(Position{X: 1}, Velocity{})
	w.Spawn(Position{X: 2}, Velocity{}, Health{})
	w.Spawn(Position{X: 3}, Velocity{}, Name{Value: "c"})
	w.Spawn(Position{X: 4})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)

	var sum float32
	count := 0
	for _, item := range view.Iter() {
		sum += item.Position.X
		count++
	}
	assert.Equal(t, 3, count)
	assert.Equal(t, float32(6), sum)

	t.Run("early break", func(t *testing.T) {
		count := 0
		for range view.Values() {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})
}

func TestViewIterWithDespawnedEntities(t *testing.T) {
	w := ecs.NewWorld(newTestRegistry())

	ids := make([]ecs.Entity, 0, 10)
	for i := range 10 {
		ids = append(ids, w.Spawn(Score(i)))
	}
	for i := 0; i < len(ids); i += 2 {
		w.Despawn(ids[i])
	}

	view := ecs.NewView[struct{ *Score }](w)
	total := Score(0)
	for entity, item := range view.Iter() {
		assert.True(t, w.Alive(entity))
		total += *item.Score
	}
	assert.Equal(t, Score(1+3+5+7+9), total)
}

func TestViewOptionalComponent(t *testing.T) {
	w := ecs.NewWorld(newTestRegistry())

	// Entity with both components
	id1 := w.Spawn(&Position{X: 1, Y: 1}, &Velocity{DX: 0.1, DY: 0.1})
	// Entity with only Position (Velocity optional)
	id2 := w.Spawn(&Position{X: 2, Y: 2})
	w.Spawn(&Velocity{})

	view := ecs.NewView[struct {
		Position *Position
		Velocity *Velocity `ecs:"optional"`
	}](w)

	item1 := view.Get(id1)
	require.NotNil(t, item1)
	assert.NotNil(t, item1.Velocity)
	assert.Equal(t, float32(0.1), item1.Velocity.DX)

	item2 := view.Get(id2)
	require.NotNil(t, item2)
	assert.Nil(t, item2.Velocity)
	assert.Equal(t, float32(2), item2.Position.X)

	count := 0
	for range view.Iter() {
		count++
	}
	assert.Equal(t, 2, count, "optional components do not widen required matching")
}

func TestViewInvalidTag(t *testing.T) {
	defer func() {
		r := recover()
		assert.NotNil(t, r)
		assert.Contains(t, r.(string), "invalid ecs tag value")
	}()

	w := ecs.NewWorld(newTestRegistry())

	_ = ecs.NewView[struct {
		Position *Position
		Velocity *Velocity `ecs:"invalid"`
	}](w)
}

func TestViewSpawn(t *testing.T) {
	w := ecs.NewWorld(newTestRegistry())

	view := ecs.NewView[struct {
		Position *Position
		Health   *Health `ecs:"optional"`
	}](w)

	withHealth := view.Spawn(struct {
		Position *Position
		Health   *Health `ecs:"optional"`
	}{
		Position: &Position{X: 1},
		Health:   &Health{Current: 5},
	})
	withoutHealth := view.Spawn(struct {
		Position *Position
		Health   *Health `ecs:"optional"`
	}{
		Position: &Position{X: 2},
	})

	assert.True(t, ecs.Has[Health](w, withHealth))
	assert.False(t, ecs.Has[Health](w, withoutHealth))
	assert.Equal(t, float32(2), ecs.ReadComponent[Position](w, withoutHealth).X)

	t.Run("nil required component panics", func(t *testing.T) {
		assert.Panics(t, func() {
			view.Spawn(struct {
				Position *Position
				Health   *Health `ecs:"optional"`
			}{})
		})
	})
}
