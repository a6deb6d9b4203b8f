package ecs

// iComponentStorage is an interface for a type-erased component storage.
// Slots are addressed by archetype row.
type iComponentStorage interface {
	Put(index int, item any) bool
	Take(index int) any
	Get(index int) any
	Has(index int) bool
}
