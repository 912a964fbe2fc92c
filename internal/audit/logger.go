// Package audit appends one JSON line per catalog or auth action.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

type Event struct {
	At        string `json:"at"`
	RequestID string `json:"request_id,omitempty"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	Outcome   string `json:"outcome"`
	Detail    string `json:"detail,omitempty"`
}

// Logger writes events to an append-only file opened on first use.
type Logger struct {
	path    string
	nowFunc func() time.Time

	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

func NewLogger(path string) *Logger {
	return &Logger{path: path, nowFunc: time.Now}
}

// Record is a no-op for a nil logger or an empty path.
func (l *Logger) Record(e Event) error {
	if l == nil || l.path == "" {
		return nil
	}
	if e.At == "" {
		e.At = l.nowFunc().UTC().Format(time.RFC3339)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.openLocked(); err != nil {
		return err
	}
	if err := l.enc.Encode(e); err != nil {
		return fmt.Errorf("write audit event %s: %w", e.Action, err)
	}
	return nil
}

func (l *Logger) openLocked() error {
	if l.f != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create audit log dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	l.f = f
	l.enc = json.NewEncoder(f)
	return nil
}

// Close releases the file. A later Record reopens it.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f, l.enc = nil, nil
	return err
}
