package session

import (
	"sync"
	"time"
)

// cached memoizes one fetched value for a TTL. Data-path reads hit the admin
// API at most once per TTL window no matter how often the UI polls.
type cached[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	at    time.Time
	value T
	ok    bool
	now   func() time.Time
}

func newCached[T any](ttl time.Duration) *cached[T] {
	return &cached[T]{ttl: ttl, now: time.Now}
}

// get returns the memoized value when fresh, otherwise calls fetch and
// stores the result. Fetch errors are never cached.
func (c *cached[T]) get(fetch func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ok && c.now().Sub(c.at) < c.ttl {
		return c.value, nil
	}
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	c.value = v
	c.at = c.now()
	c.ok = true
	return v, nil
}

// clear drops the memoized value.
func (c *cached[T]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.ok = false
}
