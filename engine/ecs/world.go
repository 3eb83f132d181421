// package ecs implements the entity registry the engine is built around. An
// Entity is an opaque id; components are plain structs attached to entities
// through generic package-level accessors. The registry is not safe for
// concurrent mutation - the engine touches it from the frame thread only.
package ecs

import "reflect"

// Entity is an opaque identifier for an entry in a World. The zero value is
// never a live entity.
type Entity uint64

// NilEntity is the zero Entity, used to express "no entity".
const NilEntity Entity = 0

func makeEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

func (e Entity) index() uint32 {
	return uint32(e)
}

func (e Entity) generation() uint32 {
	return uint32(e >> 32)
}

// World owns entity lifecycles and every component store attached to them.
type World struct {
	generations []uint32
	alive       []bool
	free        []uint32
	stores      map[reflect.Type]componentStore
}

// NewWorld creates an empty entity registry.
//
// Returns:
//   - *World: a ready-to-use registry with no entities
func NewWorld() *World {
	return &World{
		// index 0 is reserved so NilEntity never aliases a live entity
		generations: []uint32{0},
		alive:       []bool{false},
		stores:      make(map[reflect.Type]componentStore),
	}
}

// Create allocates a new live entity with no components attached.
//
// Returns:
//   - Entity: the new entity id
func (w *World) Create() Entity {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.generations))
		w.generations = append(w.generations, 0)
		w.alive = append(w.alive, false)
	}
	w.alive[idx] = true
	return makeEntity(idx, w.generations[idx])
}

// Destroy removes an entity and every component attached to it. Destroying a
// dead or stale entity is a no-op. The entity's slot is recycled with a bumped
// generation so stale ids never resolve to the new occupant.
//
// Parameters:
//   - e: the entity to destroy
func (w *World) Destroy(e Entity) {
	if !w.Alive(e) {
		return
	}
	for _, s := range w.stores {
		s.removeEntity(e)
	}
	idx := e.index()
	w.alive[idx] = false
	w.generations[idx]++
	w.free = append(w.free, idx)
}

// Alive reports whether an entity id refers to a live entity in this World.
//
// Parameters:
//   - e: the entity id to check
//
// Returns:
//   - bool: true if the entity exists and has not been destroyed
func (w *World) Alive(e Entity) bool {
	idx := e.index()
	if idx == 0 || int(idx) >= len(w.generations) {
		return false
	}
	return w.alive[idx] && w.generations[idx] == e.generation()
}

// componentStore is the type-erased view of a store, enough for Destroy to
// strip components without knowing their types.
type componentStore interface {
	removeEntity(e Entity)
}

// store is a sparse-set component container. Iteration follows insertion
// order; removal swaps the last element into the vacated slot.
type store[T any] struct {
	index    map[Entity]int
	entities []Entity
	data     []T
}

func (s *store[T]) removeEntity(e Entity) {
	i, ok := s.index[e]
	if !ok {
		return
	}
	last := len(s.entities) - 1
	if i != last {
		s.entities[i] = s.entities[last]
		s.data[i] = s.data[last]
		s.index[s.entities[i]] = i
	}
	s.entities = s.entities[:last]
	s.data = s.data[:last]
	delete(s.index, e)
}

func storeFor[T any](w *World) *store[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if s, ok := w.stores[t]; ok {
		return s.(*store[T])
	}
	s := &store[T]{index: make(map[Entity]int)}
	w.stores[t] = s
	return s
}

// Set attaches or replaces component value v on entity e. Setting a component
// on a dead entity is a no-op.
func Set[T any](w *World, e Entity, v T) {
	if !w.Alive(e) {
		return
	}
	s := storeFor[T](w)
	if i, ok := s.index[e]; ok {
		s.data[i] = v
		return
	}
	s.index[e] = len(s.entities)
	s.entities = append(s.entities, e)
	s.data = append(s.data, v)
}

// Get returns a copy of entity e's T component, if attached.
func Get[T any](w *World, e Entity) (T, bool) {
	s := storeFor[T](w)
	if i, ok := s.index[e]; ok {
		return s.data[i], true
	}
	var zero T
	return zero, false
}

// GetPtr returns a pointer into the store for in-place mutation of entity e's
// T component. The pointer is invalidated by any Set or Remove of the same
// component type; do not hold it across registry mutations.
func GetPtr[T any](w *World, e Entity) (*T, bool) {
	s := storeFor[T](w)
	if i, ok := s.index[e]; ok {
		return &s.data[i], true
	}
	return nil, false
}

// Has reports whether entity e carries a T component.
func Has[T any](w *World, e Entity) bool {
	s := storeFor[T](w)
	_, ok := s.index[e]
	return ok
}

// Remove detaches the T component from entity e, if attached.
func Remove[T any](w *World, e Entity) {
	storeFor[T](w).removeEntity(e)
}

// Count returns the number of entities carrying a T component.
func Count[T any](w *World) int {
	return len(storeFor[T](w).entities)
}

// Each calls fn for every entity carrying a T component, in store order.
// Returning false from fn stops the iteration. fn must not add or remove T
// components while iterating.
func Each[T any](w *World, fn func(e Entity, v *T) bool) {
	s := storeFor[T](w)
	for i := range s.entities {
		if !fn(s.entities[i], &s.data[i]) {
			return
		}
	}
}

// Each2 calls fn for every entity carrying both an A and a B component,
// iterating the A store in order and joining against B.
func Each2[A, B any](w *World, fn func(e Entity, a *A, b *B) bool) {
	sa := storeFor[A](w)
	sb := storeFor[B](w)
	for i := range sa.entities {
		e := sa.entities[i]
		j, ok := sb.index[e]
		if !ok {
			continue
		}
		if !fn(e, &sa.data[i], &sb.data[j]) {
			return
		}
	}
}

// Each3 calls fn for every entity carrying A, B and C components, iterating
// the A store in order and joining against B and C.
func Each3[A, B, C any](w *World, fn func(e Entity, a *A, b *B, c *C) bool) {
	sa := storeFor[A](w)
	sb := storeFor[B](w)
	sc := storeFor[C](w)
	for i := range sa.entities {
		e := sa.entities[i]
		j, ok := sb.index[e]
		if !ok {
			continue
		}
		k, ok := sc.index[e]
		if !ok {
			continue
		}
		if !fn(e, &sa.data[i], &sb.data[j], &sc.data[k]) {
			return
		}
	}
}
