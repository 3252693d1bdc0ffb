package listener

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/zulandar/mqsentinel/internal/models"
	"gorm.io/gorm"
)

// defaultFlushInterval is the interval between periodic log flushes.
const defaultFlushInterval = 5 * time.Second

// logWriter implements io.Writer, buffering child output and periodically
// flushing to listener_logs via an injected writeFn.
type logWriter struct {
	sessionID string
	direction string // "out" or "err"

	mu      sync.Mutex
	buf     bytes.Buffer
	writeFn func(models.ListenerLog) error // nil when no store is configured
}

// newLogWriter creates a logWriter that flushes to the store via db.Create.
// With a nil db the writer buffers and discards on flush.
func newLogWriter(db *gorm.DB, sessionID, direction string) *logWriter {
	w := &logWriter{sessionID: sessionID, direction: direction}
	if db != nil {
		w.writeFn = func(row models.ListenerLog) error {
			return db.Create(&row).Error
		}
	}
	return w
}

// Write appends bytes to the internal buffer (implements io.Writer).
func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// Flush writes accumulated buffer contents to listener_logs and resets the buffer.
func (w *logWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return nil
	}
	content := w.buf.String()
	w.buf.Reset()

	if w.writeFn == nil {
		return nil
	}
	return w.writeFn(models.ListenerLog{
		SessionID: w.sessionID,
		Direction: w.direction,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

// Close performs a final flush.
func (w *logWriter) Close() error {
	return w.Flush()
}

// startFlusher launches a goroutine that periodically flushes the logWriter.
func startFlusher(ctx context.Context, w *logWriter, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Flush()
			}
		}
	}()
}
