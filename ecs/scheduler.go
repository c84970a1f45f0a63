package ecs

// System updates a registry once per tick.
type System interface {
	Update(r *Registry)
}

// SystemFunc adapts a function to a System.
type SystemFunc func(r *Registry)

func (f SystemFunc) Update(r *Registry) { f(r) }

type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) Update(r *Registry) {
	for _, system := range s.systems {
		system.Update(r)
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
