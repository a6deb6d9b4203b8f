package ecs

import "reflect"

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame
// (or, inside a reaction, after the reactor's cleanup hook).
// This prevents structural changes to the world during system execution.
type Commands struct {
	spawns   []spawnCommand
	despawns []Entity
	adds     []addComponentCommand
	removes  []removeComponentCommand
	defers   []deferCommand
}

// NewCommands creates an empty command buffer
func NewCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	components []any
	spawned    func(Entity)
}

type addComponentCommand struct {
	entity    Entity
	component any
}

type removeComponentCommand struct {
	entity   Entity
	compType reflect.Type
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// SpawnThen queues a spawn and hands the new entity to fn once it exists.
func (c *Commands) SpawnThen(fn func(Entity), components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components, spawned: fn})
}

// Despawn queues an entity despawn operation.
func (c *Commands) Despawn(entity Entity) {
	c.despawns = append(c.despawns, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity Entity, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity Entity, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Len returns the number of queued operations
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.despawns) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush flushes all commands to the provided world, reseting the buffer state.
// Commands queued while flushing (from deferred functions) are applied in a following pass.
func (c *Commands) Flush(w *World) {
	for c.Len() > 0 {
		despawns, removes, adds, spawns, defers := c.despawns, c.removes, c.adds, c.spawns, c.defers
		c.despawns, c.removes, c.adds, c.spawns, c.defers = nil, nil, nil, nil, nil

		despawned := make(map[Entity]bool, len(despawns))
		for _, cmd := range despawns {
			w.Despawn(cmd)
			despawned[cmd] = true
		}

		for _, cmd := range removes {
			if !despawned[cmd.entity] {
				w.RemoveComponent(cmd.entity, cmd.compType)
			}
		}

		for _, cmd := range adds {
			if !despawned[cmd.entity] {
				w.AddComponent(cmd.entity, cmd.component)
			}
		}

		for _, cmd := range spawns {
			entity := w.Spawn(cmd.components...)
			if cmd.spawned != nil {
				cmd.spawned(entity)
			}
		}

		for _, df := range defers {
			df.fn()
		}
	}
}
