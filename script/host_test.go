package script

import (
	"context"
	"testing"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/dynecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct {
	X, Y float64
	tag  string
}

func newHost(t *testing.T) (*ecs.Registry, *Host) {
	t.Helper()
	r := ecs.NewRegistry()
	h, err := NewHost(r)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return r, h
}

func run(t *testing.T, h *Host, src string) *Program {
	t.Helper()
	p, err := h.Compile(t.Name(), []byte(src), nil)
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))
	return p
}

func TestHostViewScenario(t *testing.T) {
	_, h := newHost(t)
	p := run(t, h, `
ecs := import("ecs")
e0 := ecs.create()
e1 := ecs.create()
e2 := ecs.create()
ecs.set(e0, "A", 1)
ecs.set(e1, "A", 2)
ecs.set(e1, "B", 3)
ecs.set(e2, "B", 4)

both := ecs.view(["A", "B"])
a_not_b := ecs.view(["A"], ["B"])
b_not_a := ecs.view(["B"], ["A"])
missing := ecs.view(["Unregistered"])

ecs.destroy(e1)
after_a := ecs.view(["A"])
after_b := ecs.view(["B"])
ids := [e0, e1, e2]
`)

	ids := p.Get("ids").([]any)
	e0, e1, e2 := ids[0], ids[1], ids[2]
	assert.Equal(t, []any{e1}, p.Get("both"))
	assert.Equal(t, []any{e0}, p.Get("a_not_b"))
	assert.Equal(t, []any{e2}, p.Get("b_not_a"))
	assert.Equal(t, []any{}, p.Get("missing"))
	assert.Equal(t, []any{e0}, p.Get("after_a"))
	assert.Equal(t, []any{e2}, p.Get("after_b"))
}

func TestHostGetSetRemove(t *testing.T) {
	_, h := newHost(t)
	p := run(t, h, `
ecs := import("ecs")
e := ecs.create()
ecs.set(e, "Health", 10)
ecs.set(e, "Health", 7)
health := ecs.get(e, "Health")
unknown := is_error(ecs.get(e, "Mana"))
has_before := ecs.has(e, "Health")
removed := ecs.remove(e, "Health")
has_after := ecs.has(e, "Health")
missing := is_error(ecs.get(e, "Health"))
remove_again := is_error(ecs.remove(e, "Health"))
stats := ecs.set(e, "Stats", {str: 3})
stats.str = 5
stats_after := ecs.get(e, "Stats").str
names := ecs.names()
`)

	assert.Equal(t, 7, p.Get("health"))
	assert.Equal(t, true, p.Get("unknown"))
	assert.Equal(t, true, p.Get("has_before"))
	assert.Equal(t, true, p.Get("removed"))
	assert.Equal(t, false, p.Get("has_after"))
	assert.Equal(t, true, p.Get("missing"))
	assert.Equal(t, true, p.Get("remove_again"))
	assert.Equal(t, 5, p.Get("stats_after"))
	assert.Equal(t, []any{"Health", "Stats"}, p.Get("names"))

	s, ok := h.Proxy().Table().Storage("Health")
	require.True(t, ok)
	assert.Zero(t, s.Len())
}

func TestHostNativeComponents(t *testing.T) {
	r, h := newHost(t)
	require.NoError(t, ecs.ExposeInternalComponent[position](r, "Position"))

	e := r.Create()
	_, err := ecs.Emplace(r, e, position{X: 1.5, Y: 2, tag: "hidden"})
	require.NoError(t, err)
	other := r.Create()

	p, err := h.Compile("native", []byte(`
ecs := import("ecs")
pos := ecs.get(target, "Position")
x := pos.X
hidden := pos.tag
moving := ecs.view(["Position"])
remove := ecs.remove(target, "Position")
missing := is_error(ecs.get(other, "Position"))
`), map[string]any{"target": int64(e), "other": int64(other)})
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, 1.5, p.Get("x"))
	assert.Nil(t, p.Get("hidden"))
	assert.Equal(t, []any{int(e)}, p.Get("moving"))
	assert.Equal(t, true, p.Get("remove"))
	assert.Equal(t, true, p.Get("missing"))
	assert.False(t, ecs.Has[position](r, e))
}

func TestHostArgumentErrors(t *testing.T) {
	_, h := newHost(t)
	tests := []struct {
		name string
		src  string
	}{
		{"create_args", `ecs := import("ecs"); ecs.create(1)`},
		{"set_entity_type", `ecs := import("ecs"); ecs.set("x", "A", 1)`},
		{"set_name_type", `ecs := import("ecs"); ecs.set(ecs.create(), 1, 1)`},
		{"view_type", `ecs := import("ecs"); ecs.view("A")`},
		{"view_item_type", `ecs := import("ecs"); ecs.view([1])`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := h.Compile(tc.name, []byte(tc.src), nil)
			require.NoError(t, err)
			assert.Error(t, p.Run(context.Background()))
		})
	}

	_, err := h.Compile("bad", []byte(`x := `), nil)
	assert.Error(t, err)
}

func TestHostDestroyErrorsOnDeadEntity(t *testing.T) {
	_, h := newHost(t)
	p := run(t, h, `
ecs := import("ecs")
e := ecs.create()
first := ecs.destroy(e)
second := is_error(ecs.destroy(e))
valid := ecs.valid(e)
set_dead := is_error(ecs.set(e, "A", 1))
`)
	assert.Equal(t, true, p.Get("first"))
	assert.Equal(t, true, p.Get("second"))
	assert.Equal(t, false, p.Get("valid"))
	assert.Equal(t, true, p.Get("set_dead"))
}

func TestSystemRunsEachTick(t *testing.T) {
	r, h := newHost(t)
	sys, err := h.NewSystem(context.Background(), "counter", []byte(`
ecs := import("ecs")
for e in ecs.view(["Counter"]) {
	ecs.set(e, "Counter", ecs.get(e, "Counter") + tick)
}
`))
	require.NoError(t, err)

	e := r.Create()
	_, err = h.Proxy().Set(e, "Counter", &tengo.Int{Value: 0})
	require.NoError(t, err)

	sched := ecs.NewScheduler(sys)
	for range 3 {
		sched.Update(r)
	}

	v, err := h.Proxy().Get(e, "Counter")
	require.NoError(t, err)
	assert.Equal(t, 6, ToAny(*v))
	assert.Zero(t, sys.Errors())
}

func TestSystemCountsFailures(t *testing.T) {
	r, h := newHost(t)
	sys, err := h.NewSystem(context.Background(), "broken", []byte(`
ecs := import("ecs")
ecs.create(1)
`))
	require.NoError(t, err)

	sys.Update(r)
	sys.Update(r)
	assert.Equal(t, 2, sys.Errors())
}

func TestNewHostNilRegistry(t *testing.T) {
	_, err := NewHost(nil)
	assert.Error(t, err)
}

func TestFromAnyRoundTrip(t *testing.T) {
	in := map[string]any{"hp": 3, "tags": []any{"a", "b"}, "speed": 1.5, "alive": true}
	obj, err := FromAny(in)
	require.NoError(t, err)
	assert.Equal(t, in, ToAny(obj))

	_, err = FromAny(map[any]any{1: 2})
	assert.Error(t, err)
}

func TestHostRestrictsStdlib(t *testing.T) {
	r := ecs.NewRegistry()
	h, err := NewHost(r, WithStdlib("math"))
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Compile("fmt", []byte(`fmt := import("fmt")`), nil)
	assert.Error(t, err)

	p, err := h.Compile("math", []byte(`
math := import("math")
ecs := import("ecs")
v := math.abs(-2)
`), nil)
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 2.0, p.Get("v"))
}

func TestHostLimitsAllocations(t *testing.T) {
	r := ecs.NewRegistry()
	h, err := NewHost(r, WithMaxAllocs(10))
	require.NoError(t, err)
	defer h.Close()

	p, err := h.Compile("allocs", []byte(`
out := []
for i := 0; i < 100; i++ {
	out = append(out, [i])
}
`), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, p.Run(context.Background()), tengo.ErrObjectAllocLimit)
}
