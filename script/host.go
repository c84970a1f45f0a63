package script

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/dynecs/ecs"
)

// Host runs tengo scripts against a registry. All dynamic components set by
// its scripts live in a single proxy whose payload type is tengo.Object.
type Host struct {
	proxy    *ecs.Proxy[tengo.Object]
	modules  *tengo.ModuleMap
	stdlib   []string
	maxAlloc int64
	logger   *slog.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger used for script diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithStdlib restricts the tengo standard library modules scripts may
// import. By default every module is available.
func WithStdlib(names ...string) Option {
	return func(h *Host) {
		h.stdlib = names
	}
}

// WithMaxAllocs caps the number of allocations a single run may perform.
func WithMaxAllocs(n int64) Option {
	return func(h *Host) {
		h.maxAlloc = n
	}
}

// NewHost attaches a new proxy to r and prepares the module map scripts
// import from.
func NewHost(r *ecs.Registry, opts ...Option) (*Host, error) {
	proxy, err := ecs.NewProxy[tengo.Object](r)
	if err != nil {
		return nil, fmt.Errorf("script: new host: %w", err)
	}
	h := &Host{
		proxy:    proxy,
		stdlib:   stdlib.AllModuleNames(),
		maxAlloc: -1,
		logger:   r.Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.modules = stdlib.GetModuleMap(h.stdlib...)
	h.modules.AddBuiltinModule(ModuleName, h.buildModule())
	return h, nil
}

// Proxy returns the proxy holding script components.
func (h *Host) Proxy() *ecs.Proxy[tengo.Object] {
	return h.proxy
}

// Close detaches the host's proxy from the registry.
func (h *Host) Close() error {
	return h.proxy.Close()
}

// Program is a compiled script bound to a host.
type Program struct {
	name     string
	compiled *tengo.Compiled
	logger   *slog.Logger
}

// Compile compiles src. Names in globals are defined as script globals and
// can be updated between runs with Set.
func (h *Host) Compile(name string, src []byte, globals map[string]any) (*Program, error) {
	s := tengo.NewScript(src)
	s.SetImports(h.modules)
	s.SetMaxAllocs(h.maxAlloc)
	for k, v := range globals {
		if err := s.Add(k, v); err != nil {
			return nil, fmt.Errorf("script: add global %s to %s: %w", k, name, err)
		}
	}
	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &Program{
		name:     name,
		compiled: compiled,
		logger:   h.logger.With("script", name),
	}, nil
}

func (p *Program) Name() string {
	return p.name
}

// Run executes the program once.
func (p *Program) Run(ctx context.Context) error {
	if err := p.compiled.RunContext(ctx); err != nil {
		return fmt.Errorf("script: run %s: %w", p.name, err)
	}
	return nil
}

// Set updates a global defined at compile time.
func (p *Program) Set(name string, value any) error {
	return p.compiled.Set(name, value)
}

// Get returns a global of the last run converted to a Go value.
func (p *Program) Get(name string) any {
	return toAny(p.compiled.Get(name).Object())
}
