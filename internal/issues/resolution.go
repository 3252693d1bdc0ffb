package issues

import (
	"sync"
	"time"
)

// DefaultResolutionTTL is how long an acknowledgment suppresses an issue.
const DefaultResolutionTTL = 60 * time.Second

// ResolutionCache is a time-bounded set of acknowledged (object, code) pairs.
// An entry that has expired is indistinguishable from one never resolved, so
// a still-true condition resurfaces once its acknowledgment lapses.
type ResolutionCache struct {
	ttl time.Duration
	now func() time.Time // injectable clock for tests

	mu      sync.Mutex
	expires map[ResolutionKey]time.Time
}

// NewResolutionCache creates a cache with the given TTL; ttl <= 0 uses
// DefaultResolutionTTL.
func NewResolutionCache(ttl time.Duration) *ResolutionCache {
	if ttl <= 0 {
		ttl = DefaultResolutionTTL
	}
	return &ResolutionCache{
		ttl:     ttl,
		now:     time.Now,
		expires: make(map[ResolutionKey]time.Time),
	}
}

// Resolve records an operator acknowledgment for the pair.
func (c *ResolutionCache) Resolve(objectName string, code Code) {
	key := ResolutionKey{ObjectName: objectName, Code: code}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires[key] = c.now().Add(c.ttl)
}

// IsResolved reports whether the pair has an unexpired acknowledgment.
// Expired entries are removed as a side effect.
func (c *ResolutionCache) IsResolved(objectName string, code Code) bool {
	key := ResolutionKey{ObjectName: objectName, Code: code}
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline, ok := c.expires[key]
	if !ok {
		return false
	}
	if c.now().After(deadline) {
		delete(c.expires, key)
		return false
	}
	return true
}

// Clear wipes all acknowledgments. Used on logout.
func (c *ResolutionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires = make(map[ResolutionKey]time.Time)
}

// FilterUnresolved returns the issues whose keys are not currently resolved.
// Suppressed issues are discarded, not re-queued.
func (c *ResolutionCache) FilterUnresolved(all []Issue) []Issue {
	unresolved := make([]Issue, 0, len(all))
	for _, issue := range all {
		if !c.IsResolved(issue.ObjectName, issue.Code) {
			unresolved = append(unresolved, issue)
		}
	}
	return unresolved
}
