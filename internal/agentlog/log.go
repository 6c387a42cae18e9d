// Package agentlog is the append-only narrative of what each agent is doing,
// shown to the user while a navigator session waits on Gemini.
package agentlog

import (
	"sync"
	"time"
)

// Entry is one agent activity message.
type Entry struct {
	Agent     string    `json:"agent"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Hook observes appended entries.
type Hook func(Entry)

// Option configures a Log.
type Option func(*Log)

// WithClock replaces time.Now as the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithHook registers a hook called synchronously after each append.
func WithHook(h Hook) Option {
	return func(l *Log) { l.hooks = append(l.hooks, h) }
}

// WithEntries seeds the log with previously recorded entries (restored sessions).
func WithEntries(entries []Entry) Option {
	return func(l *Log) { l.entries = append(l.entries, entries...) }
}

// Log holds entries in insertion order. Entries are never changed or removed.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
	hooks   []Hook
}

func New(opts ...Option) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records a new entry stamped with the current time.
func (l *Log) Append(agent, message string) Entry {
	l.mu.Lock()
	e := Entry{Agent: agent, Message: message, Timestamp: l.now()}
	l.entries = append(l.entries, e)
	hooks := l.hooks
	l.mu.Unlock()

	for _, h := range hooks {
		h(e)
	}
	return e
}

// Entries returns a copy of the full sequence.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Last returns a copy of the n most recent entries, oldest first.
// n <= 0 returns everything.
func (l *Log) Last(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	start := 0
	if n > 0 && n < len(l.entries) {
		start = len(l.entries) - n
	}
	out := make([]Entry, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
