package issues

import (
	"testing"
	"time"
)

func TestResolutionCache_SuppressesMatchingIssue(t *testing.T) {
	c := NewResolutionCache(time.Minute)
	c.Resolve("DEV.QUEUE.1", CodeQueueFull)

	if !c.IsResolved("DEV.QUEUE.1", CodeQueueFull) {
		t.Error("IsResolved = false immediately after Resolve")
	}
	if c.IsResolved("DEV.QUEUE.1", CodeThresholdExceeded) {
		t.Error("different code should not be resolved")
	}
	if c.IsResolved("DEV.QUEUE.2", CodeQueueFull) {
		t.Error("different object should not be resolved")
	}
}

func TestResolutionCache_ExpiresAfterTTL(t *testing.T) {
	c := NewResolutionCache(time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Resolve("DEV.QUEUE.1", CodeQueueFull)

	c.now = func() time.Time { return base.Add(59 * time.Second) }
	if !c.IsResolved("DEV.QUEUE.1", CodeQueueFull) {
		t.Error("resolved entry expired before TTL")
	}

	c.now = func() time.Time { return base.Add(61 * time.Second) }
	if c.IsResolved("DEV.QUEUE.1", CodeQueueFull) {
		t.Error("resolved entry survived past TTL")
	}
}

func TestResolutionCache_Clear(t *testing.T) {
	c := NewResolutionCache(time.Minute)
	c.Resolve("DEV.QUEUE.1", CodeQueueFull)
	c.Clear()

	if c.IsResolved("DEV.QUEUE.1", CodeQueueFull) {
		t.Error("IsResolved = true after Clear")
	}
}

func TestFilterUnresolved(t *testing.T) {
	c := NewResolutionCache(time.Minute)
	c.Resolve("DEV.QUEUE.1", CodeQueueFull)

	all := []Issue{
		{ObjectType: ObjectQueue, ObjectName: "DEV.QUEUE.1", Code: CodeQueueFull},
		{ObjectType: ObjectQueue, ObjectName: "DEV.QUEUE.2", Code: CodeQueueFull},
		{ObjectType: ObjectQueue, ObjectName: "DEV.QUEUE.1", Code: CodeThresholdExceeded},
	}

	got := c.FilterUnresolved(all)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ObjectName != "DEV.QUEUE.2" || got[1].Code != CodeThresholdExceeded {
		t.Errorf("unexpected filter result: %+v", got)
	}
}

func TestFilterUnresolved_ReappearsAfterExpiry(t *testing.T) {
	c := NewResolutionCache(time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Resolve("DEV.QUEUE.1", CodeQueueFull)

	issue := Issue{ObjectType: ObjectQueue, ObjectName: "DEV.QUEUE.1", Code: CodeQueueFull}

	if got := c.FilterUnresolved([]Issue{issue}); len(got) != 0 {
		t.Fatalf("len = %d before expiry, want 0", len(got))
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if got := c.FilterUnresolved([]Issue{issue}); len(got) != 1 {
		t.Fatalf("len = %d after expiry, want 1", len(got))
	}
}

func TestNewResolutionCache_DefaultTTL(t *testing.T) {
	c := NewResolutionCache(0)
	if c.ttl != DefaultResolutionTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultResolutionTTL)
	}
}
