package auth

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-ils/core"
)

func errorMessage(err error) string {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return ""
	}
	return rich.Message
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu      sync.Mutex
	records []capturedLog
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) core.Logger { return l }

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := map[string]any{}
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) byLevel(level string) []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []capturedLog{}
	for _, record := range l.records {
		if record.level == level {
			out = append(out, record)
		}
	}
	return out
}

type memoryBackend struct {
	mu      sync.Mutex
	entries map[string]core.CacheEntry
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{entries: map[string]core.CacheEntry{}}
}

func (b *memoryBackend) Get(_ context.Context, key string) (core.CacheEntry, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.entries[key]
	return entry, ok, nil
}

func (b *memoryBackend) Set(_ context.Context, entry core.CacheEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[entry.Key] = entry
	return nil
}

func (b *memoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
	return nil
}

var (
	_ core.Logger       = (*captureLogger)(nil)
	_ core.CacheBackend = (*memoryBackend)(nil)
)
