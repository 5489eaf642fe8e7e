package chat

import (
	"sync"
	"time"
)

// Registry isolates chat state per connected user. Sessions are created
// on first interaction and removed by Drop or, once idle for longer than
// the TTL, on a later Acquire. There is no background sweeper.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Controller
	ttl     time.Duration
	build   func(*Session) *Controller
	now     func() time.Time
}

// NewRegistry creates a registry. build wires a fresh session to its
// controller; ttl <= 0 disables idle eviction.
func NewRegistry(ttl time.Duration, build func(*Session) *Controller) *Registry {
	return &Registry{
		entries: make(map[string]*Controller),
		ttl:     ttl,
		build:   build,
		now:     time.Now,
	}
}

// Acquire returns the controller for id, creating its session if needed.
func (r *Registry) Acquire(id string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictLocked(now, id)

	c, ok := r.entries[id]
	if !ok {
		c = r.build(NewSession(id))
		r.entries[id] = c
	}
	c.session.touch(now)
	return c
}

// Lookup returns the controller for id without creating one.
func (r *Registry) Lookup(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.entries[id]
	return c, ok
}

// Drop tears down the session for id.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) evictLocked(now time.Time, keep string) {
	if r.ttl <= 0 {
		return
	}
	for id, c := range r.entries {
		if id == keep || c.State() == AwaitingReply {
			continue
		}
		if c.session.idleSince(now) > r.ttl {
			delete(r.entries, id)
		}
	}
}
