package prefabs

import (
	"fmt"
	"slices"

	"github.com/milk9111/dynecs/ecs"
	"github.com/milk9111/dynecs/script"
)

type nativeEntry struct {
	expose func(r *ecs.Registry) error
	decode func(r *ecs.Registry, e ecs.Entity, raw any) error
}

// Catalog lists the native component types a scene may reference by name.
type Catalog struct {
	entries map[string]nativeEntry
	order   []string
}

func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]nativeEntry)}
}

// Register adds T to the catalog under name. Scene values for name are
// decoded into T with DecodeComponentSpec.
func Register[T any](c *Catalog, name string) {
	if _, ok := c.entries[name]; !ok {
		c.order = append(c.order, name)
	}
	c.entries[name] = nativeEntry{
		expose: func(r *ecs.Registry) error {
			return ecs.ExposeInternalComponent[T](r, name)
		},
		decode: func(r *ecs.Registry, e ecs.Entity, raw any) error {
			v, err := DecodeComponentSpec[T](raw)
			if err != nil {
				return err
			}
			_, err = ecs.EmplaceOrReplace(r, e, v)
			return err
		},
	}
}

// Names returns registered names in registration order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.order)
}

// Expose binds every catalog name in r.
func (c *Catalog) Expose(r *ecs.Registry) error {
	for _, name := range c.order {
		if err := c.entries[name].expose(r); err != nil {
			return fmt.Errorf("prefabs: expose %s: %w", name, err)
		}
	}
	return nil
}

// Instantiate creates the scene entities through h. The returned map holds
// named entities; unnamed ones are created but not returned.
func Instantiate(s *Scene, h *script.Host, c *Catalog) (map[string]ecs.Entity, error) {
	r := h.Proxy().Registry()
	named := make(map[string]ecs.Entity, len(s.Entities))
	for i, spec := range s.Entities {
		e := h.Proxy().Create()
		if spec.Name != "" {
			named[spec.Name] = e
		}
		for _, name := range sortedKeys(spec.Native) {
			entry, ok := c.entries[name]
			if !ok {
				return nil, fmt.Errorf("prefabs: entity %d: unknown native component %q", i, name)
			}
			if err := entry.decode(r, e, spec.Native[name]); err != nil {
				return nil, fmt.Errorf("prefabs: entity %d: decode %s: %w", i, name, err)
			}
		}
		for _, name := range sortedKeys(spec.Dynamic) {
			obj, err := script.FromAny(spec.Dynamic[name])
			if err != nil {
				return nil, fmt.Errorf("prefabs: entity %d: convert %s: %w", i, name, err)
			}
			if _, err := h.Proxy().Set(e, name, obj); err != nil {
				return nil, fmt.Errorf("prefabs: entity %d: set %s: %w", i, name, err)
			}
		}
	}
	return named, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
