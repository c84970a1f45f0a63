package ecs

import (
	"fmt"

	"github.com/milk9111/dynecs/ecs/component"
)

func poolOf[T any](r *Registry, create bool) *SparseSet[T] {
	id := component.IDOf[T]()
	if p, ok := r.pools[id]; ok {
		return p.(*SparseSet[T])
	}
	if !create {
		return nil
	}
	s := NewSparseSet[T]()
	r.pools[id] = s
	return s
}

// ExposeInternalComponent binds name to T so it can be used in name-based
// views. Each name can be bound once.
func ExposeInternalComponent[T any](r *Registry, name string) error {
	return r.expose(component.IDOf[T](), name)
}

// Emplace adds v to e. It fails if e is not alive or already has a T.
func Emplace[T any](r *Registry, e Entity, v T) (*T, error) {
	if !r.Valid(e) {
		return nil, fmt.Errorf("ecs: emplace %s: %w", e, component.ErrEntityNotAlive)
	}
	return poolOf[T](r, true).Emplace(e, v)
}

// EmplaceOrReplace adds v to e, overwriting any existing T.
func EmplaceOrReplace[T any](r *Registry, e Entity, v T) (*T, error) {
	if !r.Valid(e) {
		return nil, fmt.Errorf("ecs: emplace %s: %w", e, component.ErrEntityNotAlive)
	}
	s := poolOf[T](r, true)
	if s.Contains(e) {
		return s.Replace(e, v)
	}
	return s.Emplace(e, v)
}

// Get returns e's T.
func Get[T any](r *Registry, e Entity) (*T, error) {
	v, ok := poolOf[T](r, false).Get(e)
	if !ok {
		return nil, component.ErrNotPresent
	}
	return v, nil
}

// Has reports whether e holds a T.
func Has[T any](r *Registry, e Entity) bool {
	return poolOf[T](r, false).Contains(e)
}

// Remove deletes e's T. It is a no-op if e has none.
func Remove[T any](r *Registry, e Entity) bool {
	s := poolOf[T](r, false)
	if s == nil {
		return false
	}
	return s.Delete(e)
}

// GetNamed returns the native component exposed as name, checked against T.
func GetNamed[T any](r *Registry, e Entity, name string) (*T, error) {
	id, ok := r.ComponentID(name)
	if !ok {
		return nil, &component.Error{Name: name, Entity: uint64(e), Err: component.ErrUnknownComponent}
	}
	if id != component.IDOf[T]() {
		return nil, &component.Error{Name: name, Entity: uint64(e), Err: component.ErrTypeMismatch}
	}
	v, ok := poolOf[T](r, false).Get(e)
	if !ok {
		return nil, &component.Error{Name: name, Entity: uint64(e), Err: component.ErrMissingComponent}
	}
	return v, nil
}

// ViewOf iterates entities holding an A and none of exclude.
func ViewOf[A any](r *Registry, exclude ...component.ID) *NativeView {
	return r.RuntimeView([]component.ID{component.IDOf[A]()}, exclude)
}

// ViewOf2 iterates entities holding both an A and a B and none of exclude.
func ViewOf2[A, B any](r *Registry, exclude ...component.ID) *NativeView {
	return r.RuntimeView([]component.ID{component.IDOf[A](), component.IDOf[B]()}, exclude)
}

// ViewOf3 iterates entities holding an A, a B and a C and none of exclude.
func ViewOf3[A, B, C any](r *Registry, exclude ...component.ID) *NativeView {
	return r.RuntimeView([]component.ID{component.IDOf[A](), component.IDOf[B](), component.IDOf[C]()}, exclude)
}
