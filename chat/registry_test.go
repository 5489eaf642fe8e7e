package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(ttl time.Duration) *Registry {
	return NewRegistry(ttl, func(s *Session) *Controller {
		return NewController(s, &fakeAnswerer{}, time.Second)
	})
}

func TestRegistryIsolatesSessions(t *testing.T) {
	r := newTestRegistry(0)
	a := r.Acquire("alice")
	b := r.Acquire("bob")

	_, err := a.Begin("alice's question")
	require.NoError(t, err)

	assert.Len(t, a.Session().Threads(), 1)
	assert.Empty(t, b.Session().Threads())
	assert.Same(t, a, r.Acquire("alice"))
	assert.Equal(t, 2, r.Len())
}

func TestRegistryDrop(t *testing.T) {
	r := newTestRegistry(0)
	r.Acquire("alice")
	r.Drop("alice")

	_, ok := r.Lookup("alice")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryEvictsIdleSessions(t *testing.T) {
	r := newTestRegistry(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Acquire("idle")
	busy := r.Acquire("busy")
	_, err := busy.Begin("pending question")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	r.Acquire("fresh")

	_, ok := r.Lookup("idle")
	assert.False(t, ok)
	_, ok = r.Lookup("busy")
	assert.True(t, ok, "sessions awaiting a reply are kept")
	assert.Equal(t, 2, r.Len())
}
