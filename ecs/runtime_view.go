package ecs

import (
	"iter"
	"slices"

	"github.com/milk9111/dynecs/ecs/component"
)

// View iterates entities matching a mix of native and dynamic components
// given by name. It is meant to be consumed right after it is built: adding
// or removing components in any storage it references during iteration
// panics.
type View struct {
	native     *NativeView
	required   []pool
	excluded   []pool
	unresolved []string
	guard      guard
}

// View resolves required and excluded names against the proxy's dynamic
// table first and the registry's exposed names second.
//
// If any required name resolves to nothing the view is empty; Unresolved
// reports which names were missing. Excluded names that resolve to nothing
// are ignored.
//
// A closed proxy always returns an empty view.
func (p *Proxy[V]) View(required, excluded []string) *View {
	if p.closed {
		return &View{}
	}
	var (
		nativeInc, nativeExc []component.ID
		dynInc, dynExc       []pool
		unresolved           []string
	)
	for _, name := range required {
		if s, ok := p.table.Storage(name); ok {
			dynInc = append(dynInc, s)
		} else if id, ok := p.r.ComponentID(name); ok {
			nativeInc = append(nativeInc, id)
		} else {
			unresolved = append(unresolved, name)
		}
	}
	if len(unresolved) > 0 {
		p.r.logger.Debug("ecs: view has unresolved names", "proxy", p.id, "names", unresolved)
		return &View{unresolved: unresolved}
	}
	for _, name := range excluded {
		if s, ok := p.table.Storage(name); ok {
			dynExc = append(dynExc, s)
		} else if id, ok := p.r.ComponentID(name); ok {
			nativeExc = append(nativeExc, id)
		}
	}

	// Without a native requirement the smallest dynamic set drives the walk.
	var fallback pool
	if len(nativeInc) == 0 && len(dynInc) > 0 {
		smallest := 0
		for i, s := range dynInc {
			if s.Len() < dynInc[smallest].Len() {
				smallest = i
			}
		}
		fallback = dynInc[smallest]
		dynInc = slices.Delete(dynInc, smallest, smallest+1)
	}

	v := &View{
		native:   p.r.nativeView(nativeInc, nativeExc, fallback),
		required: dynInc,
		excluded: dynExc,
	}
	for _, s := range dynInc {
		v.guard.watch(s)
	}
	for _, s := range dynExc {
		v.guard.watch(s)
	}
	return v
}

// Unresolved returns the required names that matched no component.
func (v *View) Unresolved() []string {
	return slices.Clone(v.unresolved)
}

func (v *View) accepts(e Entity) bool {
	for _, s := range v.required {
		if !s.Contains(e) {
			return false
		}
	}
	for _, s := range v.excluded {
		if s.Contains(e) {
			return false
		}
	}
	return true
}

// Begin returns an iterator positioned at the first matching entity.
func (v *View) Begin() ViewIterator {
	it := ViewIterator{view: v}
	if v.native != nil {
		it.it = v.native.Begin()
	}
	it.skip()
	return it
}

// Empty reports whether the view yields nothing.
func (v *View) Empty() bool {
	it := v.Begin()
	return !it.Valid()
}

// All yields matching entities lazily. The sequence can be ranged over more
// than once.
func (v *View) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for it := v.Begin(); it.Valid(); it.Next() {
			if !yield(it.Entity()) {
				return
			}
		}
	}
}

// Each calls fn for every matching entity.
func (v *View) Each(fn func(Entity)) {
	for e := range v.All() {
		fn(e)
	}
}

// Collect returns all matching entities.
func (v *View) Collect() []Entity {
	var out []Entity
	if v.native != nil {
		out = make([]Entity, 0, v.native.SizeHint())
	}
	for e := range v.All() {
		out = append(out, e)
	}
	return out
}

// ViewIterator walks a View. It is either positioned on a matching entity or
// exhausted. Copies share the underlying walk.
type ViewIterator struct {
	view *View
	it   NativeIterator
}

func (it *ViewIterator) skip() {
	for it.it.Valid() && !it.view.accepts(it.it.Entity()) {
		it.it.Next()
	}
}

// Valid reports whether the iterator is positioned on an entity.
func (it *ViewIterator) Valid() bool {
	return it.it.Valid()
}

// Entity returns the current entity, or Null when exhausted.
func (it *ViewIterator) Entity() Entity {
	return it.it.Entity()
}

// Next advances to the next matching entity.
func (it *ViewIterator) Next() {
	if !it.it.Valid() {
		return
	}
	it.view.guard.check()
	it.it.Next()
	it.skip()
}

// Equal compares the underlying positions only.
func (it ViewIterator) Equal(other ViewIterator) bool {
	return it.it.Equal(other.it)
}
