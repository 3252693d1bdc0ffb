package alerting

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/zulandar/mqsentinel/internal/issues"
)

// sendTimeout bounds one delivery attempt per adapter.
const sendTimeout = 10 * time.Second

// Dispatcher fans events out to every registered adapter. One adapter's
// failure is logged and does not stop delivery to the others.
type Dispatcher struct {
	out io.Writer

	mu       sync.Mutex
	adapters []Adapter
}

// NewDispatcher creates a Dispatcher. out defaults to log.Writer().
func NewDispatcher(out io.Writer) *Dispatcher {
	if out == nil {
		out = log.Writer()
	}
	return &Dispatcher{out: out}
}

// Register connects the adapter and adds it to the fan-out set.
func (d *Dispatcher) Register(ctx context.Context, adapter Adapter) error {
	if err := adapter.Connect(ctx); err != nil {
		return fmt.Errorf("alerting: connect adapter: %w", err)
	}
	d.mu.Lock()
	d.adapters = append(d.adapters, adapter)
	d.mu.Unlock()
	return nil
}

// NotifyIssues formats and delivers each issue to every adapter.
func (d *Dispatcher) NotifyIssues(ctx context.Context, batch []issues.Issue) {
	if len(batch) == 0 {
		return
	}
	d.mu.Lock()
	adapters := make([]Adapter, len(d.adapters))
	copy(adapters, d.adapters)
	d.mu.Unlock()

	for _, issue := range batch {
		event := FromIssue(issue)
		for _, adapter := range adapters {
			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
			if err := adapter.Send(sendCtx, event); err != nil {
				fmt.Fprintf(d.out, "alerting: send %q: %v\n", event.Title, err)
			}
			cancel()
		}
	}
}

// Close shuts down every registered adapter.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	adapters := d.adapters
	d.adapters = nil
	d.mu.Unlock()

	for _, adapter := range adapters {
		if err := adapter.Close(); err != nil {
			fmt.Fprintf(d.out, "alerting: close adapter: %v\n", err)
		}
	}
}
