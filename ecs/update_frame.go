package ecs

// UpdateFrame is handed to every system execution. Commands are flushed
// after the system (and any hook wrapping it) returns.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	World     *World
}

// NewUpdateFrame creates a frame with an empty command buffer
func NewUpdateFrame(dt float64, w *World) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  NewCommands(),
		World:     w,
	}
}
