package ecs

import "fmt"

// Entity encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Ids stay the same for the entity's whole lifetime,
// including archetype moves. The zero Entity is never issued.
type Entity uint64

// Placeholder is an Entity that never refers to a live entity.
const Placeholder Entity = 0

// NewEntity creates an Entity from an index and generation
func NewEntity(index uint32, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index extracts the slot index from the entity
func (e Entity) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the generation from the entity
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.Index(), e.Generation())
}

// entityPool hands out generational entity ids with a free list.
// Index 0 is reserved so the zero Entity stays invalid.
type entityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func newEntityPool() *entityPool {
	return &entityPool{
		generations: make([]uint32, 1, 1024),
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1,
	}
}

func (p *entityPool) create() Entity {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewEntity(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewEntity(idx, p.generations[idx])
}

func (p *entityPool) alive(e Entity) bool {
	idx := e.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == e.Generation()
}

func (p *entityPool) destroy(e Entity) {
	if !p.alive(e) {
		return
	}
	idx := e.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}

// entityLocation is where an entity's components live
type entityLocation struct {
	archetype *Archetype
	row       uint32
}
