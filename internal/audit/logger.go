// Package audit writes the tamper-evident, append-only compliance log. Each
// line is the record's deterministic JSON followed by " #" and the hex
// SHA-256 of that JSON. Unlike operational logging, audit writes are fatal to
// the triggering request on failure: the system must not continue processing
// on a broken audit trail.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"security-core/engine/internal/audit/domain"
)

// ErrWriteFailed marks an audit append that did not complete. Callers must
// fail the triggering request; there is no silent continuation.
var ErrWriteFailed = errors.New("audit write failed")

// Appender records one audit event. Implementations must complete the write
// durably before returning so callers can order side effects after it. The
// write itself is not cancellable; ctx is carried for call-graph consistency.
type Appender interface {
	Append(ctx context.Context, event string, payload any) error
}

// Logger is a file-backed Appender. A single mutex serializes appends so
// lines from concurrent tills never interleave; every append is fsynced
// before returning.
type Logger struct {
	mu   sync.Mutex
	f    *os.File
	nowF func() time.Time
}

// Open opens (creating if needed) the append-only audit log at path.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	return NewLogger(f), nil
}

// NewLogger returns a Logger writing to f. The caller retains ownership of f
// only until Close is called.
func NewLogger(f *os.File) *Logger {
	return &Logger{f: f, nowF: func() time.Time { return time.Now().UTC() }}
}

// Append serializes {timestamp, event, payload}, stamps it with the SHA-256
// of the serialized form, and durably appends the line. Returns an
// ErrWriteFailed-wrapped error if the write or flush did not complete.
func (l *Logger) Append(ctx context.Context, event string, payload any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := domain.Record{Timestamp: l.nowF(), Event: event, Payload: payload}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrWriteFailed, event, err)
	}
	line := append(data, []byte(" #"+hashHex(data)+"\n")...)
	if _, err := l.f.Write(line); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %v", ErrWriteFailed, err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type writerLogger struct {
	mu   sync.Mutex
	w    io.Writer
	nowF func() time.Time
}

// NewWriterLogger returns an Appender writing audit lines to w without
// fsync. Intended for tests and the verifier's fixtures; the service binary
// uses Open.
func NewWriterLogger(w io.Writer) Appender {
	return &writerLogger{w: w, nowF: func() time.Time { return time.Now().UTC() }}
}

func (l *writerLogger) Append(ctx context.Context, event string, payload any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := domain.Record{Timestamp: l.nowF(), Event: event, Payload: payload}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrWriteFailed, event, err)
	}
	if _, err := fmt.Fprintf(l.w, "%s #%s\n", data, hashHex(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
