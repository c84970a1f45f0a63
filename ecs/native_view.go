package ecs

import (
	"slices"

	"github.com/milk9111/dynecs/ecs/component"
)

// driver is the sequence a view walks. Every other storage is only probed.
type driver interface {
	Len() int
	cursor() cursor
	version() uint64
}

// cursor walks a driver front to back once.
type cursor interface {
	next() (Entity, bool)
}

type poolDriver struct {
	p pool
}

func (d poolDriver) Len() int        { return d.p.Len() }
func (d poolDriver) cursor() cursor  { return &poolCursor{p: d.p} }
func (d poolDriver) version() uint64 { return d.p.version() }

type poolCursor struct {
	p pool
	i int
}

func (c *poolCursor) next() (Entity, bool) {
	ents := c.p.Entities()
	if c.i >= len(ents) {
		return Null, false
	}
	e := ents[c.i]
	c.i++
	return e, true
}

type aliveDriver struct {
	s *entityStore
}

func (d aliveDriver) Len() int        { return d.s.len() }
func (d aliveDriver) cursor() cursor  { return d.s.cursor() }
func (d aliveDriver) version() uint64 { return d.s.version() }

// guard records storage versions when a view is built and panics if any of
// them changed while the view is being iterated.
type guard struct {
	watched []interface{ version() uint64 }
	seen    []uint64
}

func (g *guard) watch(v interface{ version() uint64 }) {
	g.watched = append(g.watched, v)
	g.seen = append(g.seen, v.version())
}

func (g *guard) check() {
	for i, w := range g.watched {
		if w.version() != g.seen[i] {
			panic("ecs: storage mutated during view iteration")
		}
	}
}

// NativeView iterates entities holding every included native component and
// none of the excluded ones. It walks the smallest included pool and probes
// the rest.
//
// Adding or removing components in any pool the view references, or
// creating and destroying entities when the view walks the live set, is not
// allowed while the view is iterated and panics.
type NativeView struct {
	drv     driver
	include []pool
	exclude []pool
	guard   guard
}

// RuntimeView builds a view over ids known only at runtime. With no include
// ids it walks every live entity.
func (r *Registry) RuntimeView(include, exclude []component.ID) *NativeView {
	return r.nativeView(include, exclude, nil)
}

// nativeView is RuntimeView with an optional fallback driver used when no
// native component is required.
func (r *Registry) nativeView(include, exclude []component.ID, fallback pool) *NativeView {
	v := &NativeView{}
	pools := make([]pool, 0, len(include))
	for _, id := range include {
		p, ok := r.pools[id]
		if !ok || p.Len() == 0 {
			return &NativeView{}
		}
		pools = append(pools, p)
	}
	for _, id := range exclude {
		if p, ok := r.pools[id]; ok {
			v.exclude = append(v.exclude, p)
		}
	}

	switch {
	case len(pools) > 0:
		smallest := 0
		for i, p := range pools {
			if p.Len() < pools[smallest].Len() {
				smallest = i
			}
		}
		v.drv = poolDriver{p: pools[smallest]}
		v.include = slices.Delete(pools, smallest, smallest+1)
	case fallback != nil:
		v.drv = poolDriver{p: fallback}
	default:
		v.drv = aliveDriver{s: &r.entities}
	}

	v.guard.watch(v.drv)
	for _, p := range v.include {
		v.guard.watch(p)
	}
	for _, p := range v.exclude {
		v.guard.watch(p)
	}
	return v
}

func (v *NativeView) accepts(e Entity) bool {
	for _, p := range v.include {
		if !p.Contains(e) {
			return false
		}
	}
	for _, p := range v.exclude {
		if p.Contains(e) {
			return false
		}
	}
	return true
}

// SizeHint is an upper bound on the number of entities the view yields.
func (v *NativeView) SizeHint() int {
	if v == nil || v.drv == nil {
		return 0
	}
	return v.drv.Len()
}

// Begin returns an iterator positioned at the first matching entity.
func (v *NativeView) Begin() NativeIterator {
	it := NativeIterator{view: v, pos: -1}
	if v != nil && v.drv != nil {
		it.cur = v.drv.cursor()
		it.advance()
	}
	return it
}

// Each calls fn for every matching entity.
func (v *NativeView) Each(fn func(Entity)) {
	for it := v.Begin(); it.Valid(); it.Next() {
		fn(it.Entity())
	}
}

// NativeIterator is a position in a NativeView. Copies share the underlying
// walk; call Begin again for an independent iterator.
type NativeIterator struct {
	view  *NativeView
	cur   cursor
	pos   int
	e     Entity
	valid bool
}

// advance moves to the next driver entity the view accepts. pos counts the
// driver entities consumed, so an exhausted iterator sits at the driver
// length.
func (it *NativeIterator) advance() {
	for {
		e, ok := it.cur.next()
		it.pos++
		if !ok {
			it.e, it.valid = Null, false
			return
		}
		if it.view.accepts(e) {
			it.e, it.valid = e, true
			return
		}
	}
}

// Valid reports whether the iterator points at an entity.
func (it *NativeIterator) Valid() bool {
	return it.valid
}

// Entity returns the current entity, or Null when exhausted.
func (it *NativeIterator) Entity() Entity {
	if !it.valid {
		return Null
	}
	return it.e
}

// Next moves to the next matching entity.
func (it *NativeIterator) Next() {
	if !it.valid {
		return
	}
	it.view.guard.check()
	it.advance()
}

// Equal compares positions within the same view.
func (it NativeIterator) Equal(other NativeIterator) bool {
	return it.view == other.view && it.pos == other.pos
}
