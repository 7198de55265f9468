package calllog

import (
	"sync"
	"time"
)

// Entry is one dial outcome kept for operator diagnostics.
type Entry struct {
	CallSid      string    `json:"call_sid"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	DialStatus   string    `json:"dial_status"`
	DialDuration string    `json:"dial_duration"`
	At           time.Time `json:"at"`
}

// Log is a bounded in-memory ring of recent dial outcomes. It is owned by the
// composition root and injected into the handlers that need it; nothing is
// persisted and the buffer resets on restart.
type Log struct {
	mu      sync.Mutex
	max     int
	entries []Entry
	subs    map[chan Entry]struct{}
}

// New creates a Log holding at most max entries. Sizes below one fall back
// to a single slot.
func New(max int) *Log {
	if max < 1 {
		max = 1
	}
	return &Log{
		max:  max,
		subs: make(map[chan Entry]struct{}),
	}
}

// Append records a dial outcome, evicting the oldest entry when full, and
// fans the entry out to live subscribers. Slow subscribers drop entries
// rather than block webhook handling.
func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}

	for ch := range l.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Recent returns the retained entries, newest first.
func (l *Log) Recent() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Subscribe registers a live feed of new entries. The returned cancel func
// must be called to release the subscription.
func (l *Log) Subscribe() (<-chan Entry, func()) {
	ch := make(chan Entry, 16)

	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subs[ch]; ok {
			delete(l.subs, ch)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel
}
