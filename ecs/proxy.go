package ecs

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/milk9111/dynecs/ecs/component"
)

// Proxy gives a scripting layer access to a shared Registry. It owns a Table
// of dynamic components, all holding the same payload type V; native
// components stay in the registry and are reached through exposed names.
//
// A proxy must be closed when no longer needed so the registry stops
// notifying it. A proxy that is dropped without Close is skipped by the
// registry once collected.
type Proxy[V any] struct {
	id     uuid.UUID
	r      *Registry
	table  *Table[V]
	hook   *proxyHook
	closed bool
}

// NewProxy attaches a new proxy to r.
func NewProxy[V any](r *Registry) (*Proxy[V], error) {
	if r == nil {
		return nil, component.ErrNilRegistry
	}
	p := &Proxy[V]{r: r, table: NewTable[V]()}
	table := p.table
	p.hook = &proxyHook{destroy: table.Destroy}
	p.id = r.attach(p.hook)
	return p, nil
}

// ID identifies the proxy within its registry.
func (p *Proxy[V]) ID() uuid.UUID {
	return p.id
}

// Registry returns the shared registry.
func (p *Proxy[V]) Registry() *Registry {
	return p.r
}

// Table returns the dynamic component table.
func (p *Proxy[V]) Table() *Table[V] {
	return p.table
}

// Create allocates a new entity in the shared registry.
func (p *Proxy[V]) Create() Entity {
	return p.r.Create()
}

// Valid reports whether e is alive in the shared registry.
func (p *Proxy[V]) Valid(e Entity) bool {
	return p.r.Valid(e)
}

// Destroy destroys e in the registry, which removes its dynamic components
// from every attached proxy, this one included.
func (p *Proxy[V]) Destroy(e Entity) error {
	if p.closed {
		return component.ErrProxyClosed
	}
	return p.r.Destroy(e)
}

// Set stores v as the dynamic component name of e, replacing any previous
// value.
func (p *Proxy[V]) Set(e Entity, name string, v V) (*V, error) {
	if p.closed {
		return nil, component.ErrProxyClosed
	}
	if !p.r.Valid(e) {
		return nil, fmt.Errorf("ecs: set %q on %s: %w", name, e, component.ErrEntityNotAlive)
	}
	return p.table.Set(e, name, v)
}

// Get returns the dynamic component name of e.
func (p *Proxy[V]) Get(e Entity, name string) (*V, error) {
	if p.closed {
		return nil, component.ErrProxyClosed
	}
	return p.table.Get(e, name)
}

// Has reports whether e holds name, either as a dynamic component of this
// proxy or as an exposed native component. A dynamic name hides a native one
// with the same spelling.
func (p *Proxy[V]) Has(e Entity, name string) bool {
	if s, ok := p.table.Storage(name); ok {
		return s.Contains(e)
	}
	np, ok := p.r.namedPool(name)
	return ok && np.Contains(e)
}

// Remove deletes name from e. Dynamic names take precedence; otherwise an
// exposed native component with that name is removed from the registry.
func (p *Proxy[V]) Remove(e Entity, name string) error {
	if p.closed {
		return component.ErrProxyClosed
	}
	if _, ok := p.table.Storage(name); ok {
		return p.table.Remove(e, name)
	}
	if _, ok := p.r.ComponentID(name); !ok {
		return &component.Error{Name: name, Entity: uint64(e), Err: component.ErrUnknownComponent}
	}
	np, ok := p.r.namedPool(name)
	if !ok || !np.Delete(e) {
		return &component.Error{Name: name, Entity: uint64(e), Err: component.ErrMissingComponent}
	}
	return nil
}

// Close detaches the proxy from the registry and drops its dynamic
// components. Further calls fail with ErrProxyClosed and View returns an
// empty view.
func (p *Proxy[V]) Close() error {
	if p.closed {
		return component.ErrProxyClosed
	}
	p.closed = true
	p.r.detach(p.id)
	p.table.clear()
	return nil
}
