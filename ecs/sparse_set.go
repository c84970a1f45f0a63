package ecs

import (
	"iter"
	"math"

	"github.com/milk9111/dynecs/ecs/component"
)

const invalidIndex = math.MaxUint32

// SparseSet maps entities to values of type V with O(1) contains, insert and
// remove. Entities are kept densely packed for iteration.
//
// Remove swaps the last element into the removed slot, so iteration order is
// not stable across removals. Callers must not rely on insertion order once
// anything has been removed.
//
// Pointers returned by Emplace, Replace and Get stay valid while other
// entities are inserted. They do not survive removal of any entity from the
// set, since the removed slot is refilled with the last value.
type SparseSet[V any] struct {
	sparse []uint32
	packed []Entity
	values arena[V]
	ver    uint64
}

// NewSparseSet returns an empty set.
func NewSparseSet[V any]() *SparseSet[V] {
	return &SparseSet[V]{}
}

// Contains reports whether e has a value in the set.
func (s *SparseSet[V]) Contains(e Entity) bool {
	if s == nil || e == Null {
		return false
	}
	id := e.id()
	if int(id) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id]
	return idx != invalidIndex && s.packed[idx] == e
}

// Len returns the number of entities in the set.
func (s *SparseSet[V]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.packed)
}

// Emplace inserts v for e. It fails with ErrAlreadyPresent if e is already in
// the set, including under an older generation of the same id.
func (s *SparseSet[V]) Emplace(e Entity, v V) (*V, error) {
	if e == Null || e.id() == invalidIndex {
		return nil, component.ErrInvalidEntity
	}
	id := e.id()
	if int(id) < len(s.sparse) && s.sparse[id] != invalidIndex {
		return nil, component.ErrAlreadyPresent
	}
	if int(id) >= len(s.sparse) {
		grow := int(id) + 1 - len(s.sparse)
		for i := 0; i < grow; i++ {
			s.sparse = append(s.sparse, invalidIndex)
		}
	}
	s.sparse[id] = uint32(len(s.packed))
	s.packed = append(s.packed, e)
	s.ver++
	return s.values.push(v), nil
}

// Replace overwrites the value held by e.
func (s *SparseSet[V]) Replace(e Entity, v V) (*V, error) {
	if !s.Contains(e) {
		return nil, component.ErrNotPresent
	}
	p := s.values.at(int(s.sparse[e.id()]))
	*p = v
	return p, nil
}

// Get returns the value held by e.
func (s *SparseSet[V]) Get(e Entity) (*V, bool) {
	if !s.Contains(e) {
		return nil, false
	}
	return s.values.at(int(s.sparse[e.id()])), true
}

// Remove deletes e from the set by moving the last element into its slot.
func (s *SparseSet[V]) Remove(e Entity) error {
	if !s.Contains(e) {
		return component.ErrNotPresent
	}
	idx := s.sparse[e.id()]
	last := len(s.packed) - 1
	lastEntity := s.packed[last]

	s.packed[idx] = lastEntity
	*s.values.at(int(idx)) = *s.values.at(last)
	s.sparse[lastEntity.id()] = idx
	s.sparse[e.id()] = invalidIndex

	s.packed = s.packed[:last]
	s.values.pop()
	s.ver++
	return nil
}

// Delete removes e if present and reports whether it was.
func (s *SparseSet[V]) Delete(e Entity) bool {
	return s.Remove(e) == nil
}

// Clear empties the set.
func (s *SparseSet[V]) Clear() {
	s.sparse = nil
	s.packed = nil
	s.values.reset()
	s.ver++
}

// Entities returns the packed entity list. The slice is owned by the set and
// must not be modified or retained across mutations.
func (s *SparseSet[V]) Entities() []Entity {
	if s == nil {
		return nil
	}
	return s.packed
}

// All yields every entity and a pointer to its value in packed order.
func (s *SparseSet[V]) All() iter.Seq2[Entity, *V] {
	return func(yield func(Entity, *V) bool) {
		if s == nil {
			return
		}
		for i, e := range s.packed {
			if !yield(e, s.values.at(i)) {
				return
			}
		}
	}
}

func (s *SparseSet[V]) version() uint64 {
	if s == nil {
		return 0
	}
	return s.ver
}

func (s *SparseSet[V]) get(e Entity) (any, bool) {
	v, ok := s.Get(e)
	if !ok {
		return nil, false
	}
	return *v, true
}
