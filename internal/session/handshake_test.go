package session

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
	"time"
)

func TestHandshakeSignalWakesAwait(t *testing.T) {
	h := newHandshake()
	ch := h.Begin()

	go func() {
		time.Sleep(10 * time.Millisecond)
		if !h.Signal(HandshakeResult{OK: true}) {
			t.Error("Signal returned false with an attempt in flight")
		}
	}()

	res, ok := awaitHandshake(ch, time.Second)
	if !ok {
		t.Fatal("awaitHandshake timed out despite a signal")
	}
	if !res.OK {
		t.Fatalf("got failure result %+v", res)
	}
}

func TestHandshakePreSignalWakesImmediately(t *testing.T) {
	h := newHandshake()
	ch := h.Begin()
	h.Signal(HandshakeResult{OK: true})

	start := time.Now()
	_, ok := awaitHandshake(ch, time.Second)
	if !ok {
		t.Fatal("awaitHandshake timed out")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("pre-signaled await took %s, expected immediate return", elapsed)
	}
}

func TestHandshakeTimeoutBound(t *testing.T) {
	h := newHandshake()
	ch := h.Begin()

	start := time.Now()
	_, ok := awaitHandshake(ch, 50*time.Millisecond)
	elapsed := time.Since(start)

	if ok {
		t.Fatal("awaitHandshake returned a result without a signal")
	}
	if elapsed < 50*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Fatalf("timeout fired after %s, expected close to 50ms", elapsed)
	}
}

func TestHandshakeLateSignalDiscarded(t *testing.T) {
	h := newHandshake()
	h.Begin()
	h.End()

	if h.Signal(HandshakeResult{OK: true}) {
		t.Fatal("Signal accepted a result after End")
	}
}

func TestHandshakeBeginSupersedesStaleSignal(t *testing.T) {
	h := newHandshake()
	h.Begin()
	h.Signal(HandshakeResult{OK: false, Message: "stale"})

	ch := h.Begin()
	select {
	case res := <-ch:
		t.Fatalf("new attempt received stale result %+v", res)
	default:
	}
}

func TestHandshakeLastWriteWins(t *testing.T) {
	h := newHandshake()
	ch := h.Begin()
	h.Signal(HandshakeResult{OK: false, Message: "first"})
	h.Signal(HandshakeResult{OK: true})

	res, ok := awaitHandshake(ch, time.Second)
	if !ok {
		t.Fatal("awaitHandshake timed out")
	}
	if !res.OK {
		t.Fatalf("expected the second signal to win, got %+v", res)
	}
}

func TestHandshakeDuplicateSignalLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	h := newHandshake()
	h.Begin()
	h.Signal(HandshakeResult{OK: false, Message: "first"})
	h.Signal(HandshakeResult{OK: true})

	if !strings.Contains(buf.String(), "duplicate handshake signal") {
		t.Fatalf("duplicate signal not logged: %q", buf.String())
	}
}

func TestHandshakeSignalWithoutAttempt(t *testing.T) {
	h := newHandshake()
	if h.Signal(HandshakeResult{OK: true}) {
		t.Fatal("Signal reported delivery with no attempt in flight")
	}
}
