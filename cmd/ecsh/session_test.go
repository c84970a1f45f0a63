package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/milk9111/dynecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRunsDemoScene(t *testing.T) {
	s, err := newSession(context.Background(), "demo.yaml", newCatalog(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer s.Close()

	for range s.scene.Ticks {
		s.step()
	}
	assert.Zero(t, s.failures())

	snap := s.snapshot()
	require.Contains(t, snap, "player")
	assert.Equal(t, Position{X: 3, Y: 1.5}, snap["player"]["Position"])
	assert.Equal(t, 10, snap["player"]["Health"])
	assert.Equal(t, true, snap["player"]["Mortal"])
	assert.NotContains(t, snap["ghost"], "Mortal")
	assert.NotContains(t, snap["ghost"], "Position")
}

func TestMovementSkipsStationary(t *testing.T) {
	r := ecs.NewRegistry()
	moving := r.Create()
	still := r.Create()
	_, err := ecs.Emplace(r, moving, Position{})
	require.NoError(t, err)
	_, err = ecs.Emplace(r, moving, Velocity{X: 2, Y: -1})
	require.NoError(t, err)
	_, err = ecs.Emplace(r, still, Position{X: 5})
	require.NoError(t, err)

	movement(r)
	movement(r)

	p, err := ecs.Get[Position](r, moving)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 4, Y: -2}, *p)
	p, err = ecs.Get[Position](r, still)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 5}, *p)
}
