package ecs

// Singleton provides efficient access to a single world resource
// that is not associated with any entity. Use this for global state,
// configuration, or other singleton data.
type Singleton[T any] struct {
	world *World
	ptr   *T
}

// NewSingleton creates a new Singleton accessor for the given world.
// If initializer is provided and the resource doesn't exist yet,
// it will be created with the initializer value. Otherwise, a zero value is used.
// This guarantees the resource exists after the call.
func NewSingleton[T any](w *World, initializer ...T) *Singleton[T] {
	ptr := Resource[T](w)
	if ptr == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		ptr = InsertResource(w, value)
	}

	return &Singleton[T]{
		world: w,
		ptr:   ptr,
	}
}

// Init initializes the Singleton with a world reference.
// This is called automatically when a system is registered.
func (s *Singleton[T]) Init(w *World) {
	s.world = w
	s.updateCache()
}

// Get returns a pointer to the resource.
// Returns nil if the resource has not been added to the world.
func (s *Singleton[T]) Get() *T {
	s.updateCache()
	return s.ptr
}

// updateCache refreshes the cached pointer, since resources can be replaced
func (s *Singleton[T]) updateCache() {
	if s.world == nil {
		return
	}
	s.ptr = Resource[T](s.world)
}

// Exists returns true if the resource has been added to the world
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}
