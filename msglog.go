package voicebridge

import (
	"sync"
	"time"
)

const messageLogCapacity = 25

// MessageLogEntry is one assistant utterance kept for the transcript panel.
type MessageLogEntry struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
}

// messageLog is a bounded FIFO of assistant messages; pushing past capacity
// evicts the oldest entry.
type messageLog struct {
	mu       sync.Mutex
	entries  []MessageLogEntry
	capacity int
}

func newMessageLog(capacity int) *messageLog {
	return &messageLog{capacity: capacity}
}

func (l *messageLog) push(entry MessageLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

func (l *messageLog) snapshot() []MessageLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]MessageLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *messageLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
