package script

import (
	"context"

	"github.com/milk9111/dynecs/ecs"
)

// TickGlobal is the global every system program sees holding the current
// tick number, starting at 1.
const TickGlobal = "tick"

// System runs a program once per scheduler tick.
type System struct {
	ctx  context.Context
	prog *Program
	tick int64
	errs int
}

// NewSystem compiles src as a per-tick system. The program sees the global
// `tick`.
func (h *Host) NewSystem(ctx context.Context, name string, src []byte) (*System, error) {
	prog, err := h.Compile(name, src, map[string]any{TickGlobal: 0})
	if err != nil {
		return nil, err
	}
	return &System{ctx: ctx, prog: prog}, nil
}

// Update runs the program. Script errors are logged and counted; they do not
// stop the scheduler.
func (s *System) Update(_ *ecs.Registry) {
	s.tick++
	if err := s.prog.Set(TickGlobal, s.tick); err != nil {
		s.prog.logger.Error("script: set tick", "err", err)
		s.errs++
		return
	}
	if err := s.prog.Run(s.ctx); err != nil {
		s.prog.logger.Error("script: update failed", "tick", s.tick, "err", err)
		s.errs++
	}
}

// Errors returns how many updates failed.
func (s *System) Errors() int {
	return s.errs
}

// Program returns the compiled program.
func (s *System) Program() *Program {
	return s.prog
}
