package main

import (
	"github.com/milk9111/dynecs/ecs"
	"github.com/milk9111/dynecs/prefabs"
)

type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type Velocity struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func newCatalog() *prefabs.Catalog {
	c := prefabs.NewCatalog()
	prefabs.Register[Position](c, "Position")
	prefabs.Register[Velocity](c, "Velocity")
	return c
}

// movement integrates velocity into position once per tick.
func movement(r *ecs.Registry) {
	ecs.ViewOf2[Position, Velocity](r).Each(func(e ecs.Entity) {
		p, err := ecs.Get[Position](r, e)
		if err != nil {
			return
		}
		v, err := ecs.Get[Velocity](r, e)
		if err != nil {
			return
		}
		p.X += v.X
		p.Y += v.Y
	})
}
