// Package testutil provides shared test helpers, mainly a slog handler
// that captures records in memory so tests can assert on pipeline logging.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log record
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// BufferedSlogHandler captures log records for inspection in tests
type BufferedSlogHandler struct {
	mu      sync.Mutex
	records []LogRecord
}

func NewBufferedSlogHandler() *BufferedSlogHandler {
	return &BufferedSlogHandler{}
}

// NewTestLogger returns a logger whose output can be asserted on
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	t.Helper()
	handler := NewBufferedSlogHandler()
	return slog.New(handler), handler
}

func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, LogRecord{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *BufferedSlogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *BufferedSlogHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of everything captured so far
func (h *BufferedSlogHandler) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogRecord, len(h.records))
	copy(out, h.records)
	return out
}

// RecordsByLevel returns captured records at exactly the given level
func (h *BufferedSlogHandler) RecordsByLevel(level slog.Level) []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []LogRecord
	for _, r := range h.records {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// ContainsMessage reports whether any record's message contains message
func (h *BufferedSlogHandler) ContainsMessage(message string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries the attribute
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// AssertLogContains fails the test unless a record at level contains message
func AssertLogContains(t *testing.T, handler *BufferedSlogHandler, level slog.Level, message string) {
	t.Helper()

	for _, r := range handler.RecordsByLevel(level) {
		if strings.Contains(r.Message, message) {
			return
		}
	}
	t.Errorf("expected log at level %s containing %q, captured: %v", level, message, handler.RecordsByLevel(level))
}

// AssertNoErrors fails the test if any error-level record was captured
func AssertNoErrors(t *testing.T, handler *BufferedSlogHandler) {
	t.Helper()

	if errs := handler.RecordsByLevel(slog.LevelError); len(errs) > 0 {
		t.Errorf("unexpected error logs: %v", errs)
	}
}
