package ecs

import (
	"fmt"
	"log/slog"
	"slices"
	"weak"

	"github.com/google/uuid"
	"github.com/milk9111/dynecs/ecs/component"
)

// pool is the type-erased view of a SparseSet used by the registry and the
// query engine.
type pool interface {
	Contains(e Entity) bool
	Len() int
	Entities() []Entity
	Delete(e Entity) bool
	version() uint64
	get(e Entity) (any, bool)
}

// proxyHook is owned by a Proxy. The registry only keeps weak pointers to it.
type proxyHook struct {
	destroy func(e Entity)
}

type proxySlot struct {
	id   uuid.UUID
	hook weak.Pointer[proxyHook]
}

// Registry owns the canonical entity lifecycle and the statically-typed
// component pools. It also maps exposed names to component ids so native
// components can be queried by name next to dynamic ones.
//
// A Registry is shared by any number of proxies. It is not safe for
// concurrent use.
type Registry struct {
	entities entityStore
	pools    map[component.ID]pool
	internal map[string]component.ID
	exposed  []string
	proxies  []proxySlot
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for lifecycle diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entities: newEntityStore(),
		pools:    make(map[component.ID]pool),
		internal: make(map[string]component.ID),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Logger returns the registry logger.
func (r *Registry) Logger() *slog.Logger {
	return r.logger
}

// Create allocates a new entity.
func (r *Registry) Create() Entity {
	return r.entities.create()
}

// Valid reports whether e refers to a live entity.
func (r *Registry) Valid(e Entity) bool {
	return r.entities.isAlive(e)
}

// Alive returns the number of live entities.
func (r *Registry) Alive() int {
	return r.entities.len()
}

// Destroy removes every component of e, dynamic ones first, then releases
// the entity. Attached proxies are notified in attachment order.
func (r *Registry) Destroy(e Entity) error {
	if !r.entities.isAlive(e) {
		return fmt.Errorf("ecs: destroy %s: %w", e, component.ErrEntityNotAlive)
	}
	stale := false
	for _, slot := range r.proxies {
		hook := slot.hook.Value()
		if hook == nil {
			stale = true
			continue
		}
		hook.destroy(e)
	}
	if stale {
		r.compactProxies()
	}
	for _, p := range r.pools {
		p.Delete(e)
	}
	r.entities.destroy(e)
	return nil
}

// RemoveIDs removes the components identified by ids from e and returns how
// many were present.
func (r *Registry) RemoveIDs(e Entity, ids ...component.ID) int {
	n := 0
	for _, id := range ids {
		if p, ok := r.pools[id]; ok && p.Delete(e) {
			n++
		}
	}
	return n
}

// ComponentID resolves an exposed component name.
func (r *Registry) ComponentID(name string) (component.ID, bool) {
	id, ok := r.internal[name]
	return id, ok
}

// Exposed returns exposed names in exposure order.
func (r *Registry) Exposed() []string {
	return slices.Clone(r.exposed)
}

// Proxies returns the ids of attached proxies in attachment order.
func (r *Registry) Proxies() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(r.proxies))
	for _, slot := range r.proxies {
		if slot.hook.Value() != nil {
			out = append(out, slot.id)
		}
	}
	return out
}

func (r *Registry) expose(id component.ID, name string) error {
	if name == "" {
		return component.ErrEmptyName
	}
	if _, ok := r.internal[name]; ok {
		return fmt.Errorf("ecs: expose %q: %w", name, component.ErrDuplicateName)
	}
	r.internal[name] = id
	r.exposed = append(r.exposed, name)
	return nil
}

func (r *Registry) namedPool(name string) (pool, bool) {
	id, ok := r.internal[name]
	if !ok {
		return nil, false
	}
	p, ok := r.pools[id]
	return p, ok
}

// Component returns the native component exposed as name for e.
func (r *Registry) Component(e Entity, name string) (any, error) {
	if _, ok := r.internal[name]; !ok {
		return nil, &component.Error{Name: name, Entity: uint64(e), Err: component.ErrUnknownComponent}
	}
	p, ok := r.namedPool(name)
	if !ok {
		return nil, &component.Error{Name: name, Entity: uint64(e), Err: component.ErrMissingComponent}
	}
	v, ok := p.get(e)
	if !ok {
		return nil, &component.Error{Name: name, Entity: uint64(e), Err: component.ErrMissingComponent}
	}
	return v, nil
}

func (r *Registry) attach(hook *proxyHook) uuid.UUID {
	id := uuid.New()
	r.proxies = append(r.proxies, proxySlot{id: id, hook: weak.Make(hook)})
	r.logger.Debug("ecs: proxy attached", "proxy", id, "attached", len(r.proxies))
	return id
}

func (r *Registry) detach(id uuid.UUID) {
	r.proxies = slices.DeleteFunc(r.proxies, func(slot proxySlot) bool {
		return slot.id == id
	})
	r.logger.Debug("ecs: proxy detached", "proxy", id, "attached", len(r.proxies))
}

func (r *Registry) compactProxies() {
	before := len(r.proxies)
	r.proxies = slices.DeleteFunc(r.proxies, func(slot proxySlot) bool {
		return slot.hook.Value() == nil
	})
	r.logger.Debug("ecs: dropped collected proxies", "dropped", before-len(r.proxies))
}
