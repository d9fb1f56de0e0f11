package search

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// SessionCache keeps one long-lived session and shares it across calls.
// Buffers stay per call; only the device and queue are reused.
type SessionCache struct {
	backend Backend
	group   singleflight.Group

	mu      sync.Mutex
	current *cachedSession
	closed  bool
}

type cachedSession struct {
	Session
	refs    int
	retired bool
}

// NewSessionCache wraps b.
func NewSessionCache(b Backend) *SessionCache {
	return &SessionCache{backend: b}
}

// get returns the shared session, acquiring it if needed. Concurrent first
// calls share one acquisition. The returned session must be handed back with put.
func (c *SessionCache) get(ctx context.Context) (*cachedSession, error) {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, ErrNoAccelerator
		}
		if cs := c.current; cs != nil {
			cs.refs++
			c.mu.Unlock()
			return cs, nil
		}
		c.mu.Unlock()

		cs, err := c.acquireShared(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if !cs.retired {
			cs.refs++
			c.mu.Unlock()
			return cs, nil
		}
		// Retired between acquisition and use; go round again.
		c.mu.Unlock()
	}
}

// acquireShared installs a session as current, or returns the one a flight
// that finished after our unlocked check already installed. Waiters share the
// acquisition, so it does not inherit the first caller's cancellation.
func (c *SessionCache) acquireShared(ctx context.Context) (*cachedSession, error) {
	v, err, _ := c.group.Do("session", func() (any, error) {
		c.mu.Lock()
		if cs := c.current; cs != nil {
			c.mu.Unlock()
			return cs, nil
		}
		c.mu.Unlock()

		s, err := c.backend.Acquire(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		cs := &cachedSession{Session: s}
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			s.Release()
			return nil, ErrNoAccelerator
		}
		c.current = cs
		c.mu.Unlock()
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cachedSession), nil
}

// put hands a session back. broken retires it so the next get acquires a
// fresh one; a retired session is released once nobody holds it.
func (c *SessionCache) put(cs *cachedSession, broken bool) {
	c.mu.Lock()
	cs.refs--
	if broken && !cs.retired {
		cs.retired = true
		if c.current == cs {
			c.current = nil
		}
	}
	release := cs.retired && cs.refs == 0
	c.mu.Unlock()
	if release {
		cs.Session.Release()
	}
}

// Close retires the shared session. Calls already holding it finish normally.
func (c *SessionCache) Close() {
	c.mu.Lock()
	c.closed = true
	cs := c.current
	c.current = nil
	release := false
	if cs != nil && !cs.retired {
		cs.retired = true
		release = cs.refs == 0
	}
	c.mu.Unlock()
	if release {
		cs.Session.Release()
	}
}
