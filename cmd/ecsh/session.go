package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/milk9111/dynecs/ecs"
	"github.com/milk9111/dynecs/prefabs"
	"github.com/milk9111/dynecs/script"
)

// session is one loaded scene: a registry, the script host bound to it and
// the systems run on each tick.
type session struct {
	scene   *prefabs.Scene
	r       *ecs.Registry
	host    *script.Host
	sched   *ecs.Scheduler
	systems []*script.System
	named   map[string]ecs.Entity
	tick    int
	logger  *slog.Logger
}

func newSession(ctx context.Context, sceneName string, catalog *prefabs.Catalog, logger *slog.Logger, hostOpts ...script.Option) (*session, error) {
	scene, err := prefabs.LoadScene(sceneName)
	if err != nil {
		return nil, err
	}

	r := ecs.NewRegistry(ecs.WithLogger(logger))
	if err := catalog.Expose(r); err != nil {
		return nil, err
	}
	host, err := script.NewHost(r, append([]script.Option{script.WithLogger(logger)}, hostOpts...)...)
	if err != nil {
		return nil, err
	}

	s := &session{
		scene:  scene,
		r:      r,
		host:   host,
		sched:  ecs.NewScheduler(ecs.SystemFunc(movement)),
		logger: logger,
	}
	if s.named, err = prefabs.Instantiate(scene, host, catalog); err != nil {
		_ = host.Close()
		return nil, err
	}

	for _, sc := range scene.Scripts {
		src, err := prefabs.LoadScript(sc.Path)
		if err != nil {
			_ = host.Close()
			return nil, fmt.Errorf("load script %s: %w", sc.Path, err)
		}
		switch sc.Mode {
		case prefabs.ScriptOnce:
			prog, err := host.Compile(sc.Path, src, nil)
			if err != nil {
				_ = host.Close()
				return nil, err
			}
			if err := prog.Run(ctx); err != nil {
				_ = host.Close()
				return nil, err
			}
		case prefabs.ScriptTick:
			sys, err := host.NewSystem(ctx, sc.Path, src)
			if err != nil {
				_ = host.Close()
				return nil, err
			}
			s.systems = append(s.systems, sys)
			s.sched.Add(sys)
		}
	}

	logger.Info("scene loaded",
		"scene", sceneName,
		"entities", r.Alive(),
		"native", r.Exposed(),
		"systems", len(s.sched.Systems()),
	)
	return s, nil
}

func (s *session) step() {
	s.tick++
	s.sched.Update(s.r)
	s.logger.Debug("tick", "n", s.tick, "alive", s.r.Alive())
}

func (s *session) failures() int {
	n := 0
	for _, sys := range s.systems {
		n += sys.Errors()
	}
	return n
}

// snapshot returns every named entity's components keyed by entity name and
// component name.
func (s *session) snapshot() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.named))
	proxy := s.host.Proxy()
	for _, name := range slices.Sorted(maps.Keys(s.named)) {
		e := s.named[name]
		if !s.r.Valid(e) {
			continue
		}
		comps := make(map[string]any)
		for _, c := range s.r.Exposed() {
			if v, err := s.r.Component(e, c); err == nil {
				comps[c] = v
			}
		}
		for _, c := range proxy.Table().Names() {
			if v, err := proxy.Get(e, c); err == nil {
				comps[c] = script.ToAny(*v)
			}
		}
		out[name] = comps
	}
	return out
}

func (s *session) Close() error {
	return s.host.Close()
}
