package ecs

import (
	"slices"

	"github.com/milk9111/dynecs/ecs/component"
)

// Table holds one SparseSet per component name. Sets are created on first
// Set for a name and live as long as the table.
type Table[V any] struct {
	sets  map[string]*SparseSet[V]
	names []string
}

// NewTable returns an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{sets: make(map[string]*SparseSet[V])}
}

// Set stores v under name for e, overwriting any existing value in place.
func (t *Table[V]) Set(e Entity, name string, v V) (*V, error) {
	if name == "" {
		return nil, component.ErrEmptyName
	}
	s, ok := t.sets[name]
	if !ok {
		s = NewSparseSet[V]()
		t.sets[name] = s
		t.names = append(t.names, name)
	}
	if s.Contains(e) {
		return s.Replace(e, v)
	}
	return s.Emplace(e, v)
}

// Get returns e's value for name.
func (t *Table[V]) Get(e Entity, name string) (*V, error) {
	s, err := t.lookup(e, name)
	if err != nil {
		return nil, err
	}
	v, ok := s.Get(e)
	if !ok {
		return nil, &component.Error{Name: name, Entity: uint64(e), Err: component.ErrMissingComponent}
	}
	return v, nil
}

// Remove deletes e's value for name.
func (t *Table[V]) Remove(e Entity, name string) error {
	s, err := t.lookup(e, name)
	if err != nil {
		return err
	}
	if err := s.Remove(e); err != nil {
		return &component.Error{Name: name, Entity: uint64(e), Err: component.ErrMissingComponent}
	}
	return nil
}

// Has reports whether e holds name.
func (t *Table[V]) Has(e Entity, name string) bool {
	return t.sets[name].Contains(e)
}

// Destroy removes e from every set in the table.
func (t *Table[V]) Destroy(e Entity) {
	for _, name := range t.names {
		t.sets[name].Delete(e)
	}
}

// Storage returns the set registered under name.
func (t *Table[V]) Storage(name string) (*SparseSet[V], bool) {
	s, ok := t.sets[name]
	return s, ok
}

// Names returns component names in creation order.
func (t *Table[V]) Names() []string {
	return slices.Clone(t.names)
}

// Len returns the number of component names.
func (t *Table[V]) Len() int {
	return len(t.names)
}

func (t *Table[V]) clear() {
	for _, s := range t.sets {
		s.Clear()
	}
	t.sets = make(map[string]*SparseSet[V])
	t.names = nil
}

func (t *Table[V]) lookup(e Entity, name string) (*SparseSet[V], error) {
	s, ok := t.sets[name]
	if !ok {
		return nil, &component.Error{Name: name, Entity: uint64(e), Err: component.ErrUnknownComponent}
	}
	return s, nil
}
