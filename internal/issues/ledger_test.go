package issues

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func testIssue(name string) Issue {
	return Issue{
		ObjectType: ObjectQueue,
		ObjectName: name,
		Code:       CodeThresholdExceeded,
		Message:    "over limit",
		Timestamp:  time.Now(),
	}
}

func TestLedger_AddPreservesOrder(t *testing.T) {
	l := NewLedger()
	for i := range 5 {
		l.Add(testIssue(fmt.Sprintf("Q%d", i)))
	}

	drained := l.DrainAll()
	if len(drained) != 5 {
		t.Fatalf("len(drained) = %d, want 5", len(drained))
	}
	for i, issue := range drained {
		want := fmt.Sprintf("Q%d", i)
		if issue.ObjectName != want {
			t.Errorf("drained[%d].ObjectName = %q, want %q", i, issue.ObjectName, want)
		}
	}
}

func TestLedger_NoDedup(t *testing.T) {
	l := NewLedger()
	l.Add(testIssue("Q1"))
	l.Add(testIssue("Q1"))

	if got := l.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2 (duplicates kept)", got)
	}
}

func TestLedger_DrainIsExhaustive(t *testing.T) {
	l := NewLedger()
	l.AddAll([]Issue{testIssue("Q1"), testIssue("Q2")})

	first := l.DrainAll()
	if len(first) != 2 {
		t.Fatalf("first drain len = %d, want 2", len(first))
	}
	second := l.DrainAll()
	if len(second) != 0 {
		t.Errorf("second drain len = %d, want 0", len(second))
	}
}

func TestLedger_ConcurrentAddDrain(t *testing.T) {
	l := NewLedger()
	const writers = 8
	const perWriter = 100

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range perWriter {
				l.Add(testIssue(fmt.Sprintf("W%d-%d", w, i)))
			}
		}(w)
	}

	var drainedTotal int
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 50 {
			drainedTotal += len(l.DrainAll())
		}
	}()

	wg.Wait()
	<-done
	drainedTotal += len(l.DrainAll())

	if drainedTotal != writers*perWriter {
		t.Errorf("total drained = %d, want %d (no losses or duplicates)", drainedTotal, writers*perWriter)
	}
}
