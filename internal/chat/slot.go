package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrQueryBusy is returned by Submit while another query is outstanding.
// Callers must poll and retry; there is no queueing.
var ErrQueryBusy = errors.New("chat: a query is already pending")

// DefaultAskTimeout bounds one assistant round trip.
const DefaultAskTimeout = 2 * time.Minute

// Status describes the slot's current occupancy.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusAnswered
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusAnswered:
		return "answered"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Slot enforces at most one in-flight assistant question. The answer is
// handed to exactly one poller, which atomically clears the slot.
type Slot struct {
	assistant Assistant
	timeout   time.Duration

	mu     sync.Mutex
	status Status
	answer string
	gen    int // incremented on Reset; stale completions are discarded
}

// NewSlot creates a Slot; timeout <= 0 uses DefaultAskTimeout.
func NewSlot(assistant Assistant, timeout time.Duration) *Slot {
	if timeout <= 0 {
		timeout = DefaultAskTimeout
	}
	return &Slot{assistant: assistant, timeout: timeout}
}

// Submit accepts the question unless one is already outstanding (pending or
// answered-but-unpolled), in which case it returns ErrQueryBusy. The
// assistant runs on its own goroutine; the caller retrieves the answer via Poll.
func (s *Slot) Submit(question string, mode Mode) error {
	if question == "" {
		return fmt.Errorf("chat: question is required")
	}
	if !mode.Valid() {
		return fmt.Errorf("chat: unknown mode %q", mode)
	}

	s.mu.Lock()
	if s.status != StatusIdle {
		s.mu.Unlock()
		return ErrQueryBusy
	}
	s.status = StatusPending
	gen := s.gen
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		answer, err := s.assistant.Ask(ctx, question, mode)
		if err != nil {
			answer = fmt.Sprintf("The assistant could not answer: %v", err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || s.status != StatusPending {
			// Slot was reset while we were asking; discard.
			return
		}
		s.status = StatusAnswered
		s.answer = answer
	}()

	return nil
}

// Poll reports the slot status. When an answer is ready it is returned and
// the slot is cleared in the same critical section, so exactly one poller
// observes it.
func (s *Slot) Poll() (Status, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusAnswered {
		return s.status, ""
	}
	answer := s.answer
	s.status = StatusIdle
	s.answer = ""
	return StatusAnswered, answer
}

// Reset clears any pending or unpolled query. In-flight assistant calls are
// discarded when they complete. Used on logout.
func (s *Slot) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.status = StatusIdle
	s.answer = ""
}
