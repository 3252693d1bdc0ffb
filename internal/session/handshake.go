package session

import (
	"log"
	"sync"
	"time"
)

// HandshakeResult is what the listener's startup callback delivers.
type HandshakeResult struct {
	OK      bool
	Message string
}

// handshake hands a single startup confirmation from the callback endpoint
// to the login attempt waiting on it. Begin replaces the channel so a signal
// for a superseded attempt can never wake a later one.
type handshake struct {
	mu sync.Mutex
	ch chan HandshakeResult
}

func newHandshake() *handshake {
	return &handshake{}
}

// Begin opens a fresh attempt and returns the channel Await should watch.
// Any signal meant for a previous attempt is discarded.
func (h *handshake) Begin() <-chan HandshakeResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ch = make(chan HandshakeResult, 1)
	return h.ch
}

// Signal records the listener's confirmation. If the attempt already received
// a signal the earlier one is dropped, last write wins. Returns false when no
// attempt is in flight.
func (h *handshake) Signal(res HandshakeResult) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ch == nil {
		return false
	}
	select {
	case prev := <-h.ch:
		// Protocol violation: one signal per attempt. Last write wins.
		log.Printf("session: duplicate handshake signal, dropping earlier result (ok=%t)", prev.OK)
	default:
	}
	h.ch <- res
	return true
}

// End closes out the current attempt so late signals report false.
func (h *handshake) End() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ch = nil
}

// awaitHandshake blocks until the channel delivers or the timeout elapses.
// It must be called without holding any orchestrator lock.
func awaitHandshake(ch <-chan HandshakeResult, timeout time.Duration) (HandshakeResult, bool) {
	select {
	case res := <-ch:
		return res, true
	case <-time.After(timeout):
		return HandshakeResult{}, false
	}
}
