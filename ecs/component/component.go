package component

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	ErrEntityNotAlive   = errors.New("ecs: entity not alive")
	ErrInvalidEntity    = errors.New("ecs: invalid entity")
	ErrAlreadyPresent   = errors.New("ecs: component already present")
	ErrNotPresent       = errors.New("ecs: component not present")
	ErrUnknownComponent = errors.New("ecs: unknown component")
	ErrMissingComponent = errors.New("ecs: missing component")
	ErrDuplicateName    = errors.New("ecs: component name already exposed")
	ErrEmptyName        = errors.New("ecs: empty component name")
	ErrTypeMismatch     = errors.New("ecs: component type mismatch")
	ErrNilRegistry      = errors.New("ecs: registry is nil")
	ErrProxyClosed      = errors.New("ecs: proxy closed")
)

// Error reports a failed access to a component identified by name.
type Error struct {
	Name   string
	Entity uint64
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: name=%q entity=%s", e.Err, e.Name, formatEntity(e.Entity))
}

// formatEntity prints a raw entity handle as id v generation, matching
// ecs.Entity.String.
func formatEntity(e uint64) string {
	if e == math.MaxUint64 {
		return "null"
	}
	return fmt.Sprintf("%dv%d", uint32(e), uint32(e>>32))
}

func (e *Error) Unwrap() error { return e.Err }

// ID identifies a statically-typed component. IDs are process-wide so the
// same Go type maps to the same ID in every registry.
type ID uint32

var (
	types  sync.Map // map[reflect.Type]ID
	nextID atomic.Uint32
)

// IDOf returns the ID for T, assigning one on first use.
func IDOf[T any]() ID {
	return idOfType(reflect.TypeFor[T]())
}

func idOfType(t reflect.Type) ID {
	if id, ok := types.Load(t); ok {
		return id.(ID)
	}
	id := ID(nextID.Add(1))
	actual, _ := types.LoadOrStore(t, id)
	return actual.(ID)
}
